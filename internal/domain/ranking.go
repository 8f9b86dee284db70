package domain

import "sort"

type RankingEntry struct {
	Rank           int
	UserID         string
	Name           string
	Quantity       int64
	ProofReference string
}

type Ranking struct {
	Entries []RankingEntry
}

// Empty reports whether nobody deposited yet.
func (r Ranking) Empty() bool {
	return len(r.Entries) == 0
}

// BuildRanking orders deposits by quantity, highest first. Ties keep the
// order the deposits were given in.
func BuildRanking(deposits []*Deposit) Ranking {
	sorted := make([]*Deposit, 0, len(deposits))
	for _, d := range deposits {
		if d != nil {
			sorted = append(sorted, d)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Quantity > sorted[j].Quantity
	})

	entries := make([]RankingEntry, len(sorted))
	for i, d := range sorted {
		entries[i] = RankingEntry{
			Rank:           i + 1,
			UserID:         d.UserID,
			Name:           d.Name,
			Quantity:       d.Quantity,
			ProofReference: d.ProofReference,
		}
	}
	return Ranking{Entries: entries}
}
