package usecase

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/fardannozami/faccao-bot/internal/domain"
)

// formatQuantity renders n with dot thousands separators ("1.500").
func formatQuantity(n int64) string {
	return strings.ReplaceAll(humanize.Comma(n), ",", ".")
}

func displayName(name, userID string) string {
	if name == "" {
		return "@" + userID
	}
	return name
}

const emptyRankingText = "Ainda não há depósitos."

func renderRanking(r domain.Ranking) string {
	if r.Empty() {
		return emptyRankingText
	}

	sb := strings.Builder{}
	sb.WriteString("🏆 *Ranking Semanal*\n")
	for _, e := range r.Entries {
		sb.WriteString(fmt.Sprintf("\n%d. %s — *%s*\n", e.Rank, displayName(e.Name, e.UserID), formatQuantity(e.Quantity)))
		if e.ProofReference != "" {
			sb.WriteString(fmt.Sprintf("📸 Print: %s\n", e.ProofReference))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func renderReport(r domain.WeeklyReport) string {
	lines := func(ls []domain.ReportLine) string {
		if len(ls) == 0 {
			return "Ninguém"
		}
		out := make([]string, len(ls))
		for i, l := range ls {
			out[i] = fmt.Sprintf("%s (%s/%s)", displayName(l.Name, l.UserID), formatQuantity(l.Quantity), formatQuantity(l.Goal))
		}
		return strings.Join(out, "\n")
	}

	sb := strings.Builder{}
	sb.WriteString("📊 *Relatório Semanal*\n\n")
	sb.WriteString("✅ *Bateram:*\n")
	sb.WriteString(lines(r.Met))
	sb.WriteString("\n\n❌ *Não bateram:*\n")
	sb.WriteString(lines(r.Missed))
	return sb.String()
}
