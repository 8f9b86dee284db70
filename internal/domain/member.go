package domain

import "context"

// Member is a participant of the facção group.
type Member struct {
	UserID string
	Name   string
	Roles  []string
}

type MemberDirectory interface {
	// Member returns nil, nil when the user is no longer in the facção.
	Member(ctx context.Context, userID string) (*Member, error)
	// Members returns every current member keyed by user ID.
	Members(ctx context.Context) (map[string]*Member, error)
}
