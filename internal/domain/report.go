package domain

import (
	"context"

	"github.com/juju/errors"
)

// ErrDestinationUnavailable is returned when a broadcast destination cannot be
// resolved at job time.
const ErrDestinationUnavailable = errors.ConstError("destination unavailable")

// Announcer posts broadcasts to configured destinations.
type Announcer interface {
	// Resolve checks that destination can receive messages and returns its
	// chat ID. Failures wrap ErrDestinationUnavailable.
	Resolve(ctx context.Context, destination string) (string, error)
	Announce(ctx context.Context, chatID, text string) error
}

type ReportLine struct {
	UserID   string
	Name     string
	Quantity int64
	Goal     int64
}

// WeeklyReport splits the week's depositors by whether they met their goal.
type WeeklyReport struct {
	Met     []ReportLine
	Missed  []ReportLine
	Skipped int
}

// ClassifyWeek resolves each depositor's goal from their current roles.
// Depositors missing from members left the facção and are skipped.
func ClassifyWeek(deposits []*Deposit, members map[string]*Member, table GoalTable) WeeklyReport {
	var report WeeklyReport
	for _, d := range deposits {
		m, ok := members[d.UserID]
		if !ok || m == nil {
			report.Skipped++
			continue
		}
		goal, _ := ResolveGoal(m.Roles, table)
		name := d.Name
		if m.Name != "" {
			name = m.Name
		}
		line := ReportLine{UserID: d.UserID, Name: name, Quantity: d.Quantity, Goal: goal}
		if d.Quantity >= goal {
			report.Met = append(report.Met, line)
		} else {
			report.Missed = append(report.Missed, line)
		}
	}
	return report
}
