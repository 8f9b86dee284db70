package domain

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/juju/errors"
)

// Deposit is the accumulated farm of one member for the current week.
type Deposit struct {
	UserID         string `json:"user_id" db:"user_id"`
	Name           string `json:"name" db:"name"`
	Quantity       int64  `json:"quantity" db:"quantity"`
	ProofReference string `json:"proof_reference" db:"proof_reference"`
}

type DepositRepository interface {
	// GetDeposit returns nil, nil when the user has no deposit this week.
	GetDeposit(ctx context.Context, userID string) (*Deposit, error)
	// AddDeposit atomically adds quantity to the user's total, replaces the proof
	// and returns the new total.
	AddDeposit(ctx context.Context, userID, name string, quantity int64, proofReference string) (int64, error)
	GetAllDeposits(ctx context.Context) ([]*Deposit, error)
	DeleteAllDeposits(ctx context.Context) (int64, error)
}

// MaxQuantity bounds a single deposit.
const MaxQuantity int64 = 1_000_000_000

var groupedQuantity = regexp.MustCompile(`^\d{1,3}(?:([.,_])\d{3})+$`)

// ParseQuantity parses a reported farm quantity: plain digits, or digits in
// groups of three split by one of ".", "," or "_" ("1.500", "10,000").
// Anything else, like the pt-BR decimal "1,5", is not valid.
func ParseQuantity(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.NotValidf("empty quantity")
	}
	clean := s
	if m := groupedQuantity.FindStringSubmatch(s); m != nil {
		clean = strings.ReplaceAll(s, m[1], "")
	}
	for _, r := range clean {
		if r < '0' || r > '9' {
			return 0, errors.NotValidf("quantity %q", s)
		}
	}
	n, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		return 0, errors.NotValidf("quantity %q", s)
	}
	if n > MaxQuantity {
		return 0, errors.NotValidf("quantity %q above %d", s, MaxQuantity)
	}
	return n, nil
}
