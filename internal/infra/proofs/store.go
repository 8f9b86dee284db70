// Package proofs keeps deposit prints on local disk.
package proofs

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/juju/errors"

	"github.com/fardannozami/faccao-bot/internal/domain"
)

type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func extension(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	return ".bin"
}

// safe keeps IDs usable as path elements.
func safe(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
	if s == "" {
		return "_"
	}
	return s
}

// Save downloads the attachment and writes it to dir/<user>/<message><ext>.
// The returned path is the proof reference.
func (s *Store) Save(ctx context.Context, userID string, att *domain.Attachment) (string, error) {
	if att == nil || att.Download == nil {
		return "", errors.NotValidf("attachment without content")
	}
	data, err := att.Download(ctx)
	if err != nil {
		return "", errors.Annotatef(err, "downloading proof %s", att.MessageID)
	}
	if len(data) == 0 {
		return "", errors.NotValidf("empty proof %s", att.MessageID)
	}

	dir := filepath.Join(s.dir, safe(userID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Annotate(err, "proof mkdir")
	}
	p := filepath.Join(dir, safe(att.MessageID)+extension(att.MimeType))
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", errors.Annotate(err, "proof write")
	}
	return p, nil
}

// Remove deletes a proof written by Save. A missing file is not an error.
func (s *Store) Remove(_ context.Context, ref string) error {
	if err := os.Remove(ref); err != nil && !os.IsNotExist(err) {
		return errors.Annotatef(err, "removing proof %s", ref)
	}
	return nil
}
