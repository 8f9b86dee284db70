package domain

import "context"

// Attachment is an image sent along with a message.
type Attachment struct {
	MessageID string
	MimeType  string
	Caption   string
	Download  func(ctx context.Context) ([]byte, error)
}

type IncomingMessage struct {
	ChatID     string
	UserID     string
	Name       string
	Text       string
	Attachment *Attachment
}

// ProofStore keeps deposit proofs and returns a reference to the stored copy.
type ProofStore interface {
	Save(ctx context.Context, userID string, att *Attachment) (string, error)
	// Remove drops a stored proof that ended up unused.
	Remove(ctx context.Context, ref string) error
}
