// Package report builds the periodic prospect digest and delivers it.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxSignalRunes = 80

// Summary is one line of the new-prospect section.
type Summary struct {
	ProspectID uuid.UUID `json:"prospect_id"`
	Name       string    `json:"name"`
	Score      int       `json:"score"`
	Source     string    `json:"source"`
	Signal     string    `json:"signal"`
}

// Suggestion is an approach script generated for a high-scoring prospect.
type Suggestion struct {
	ProspectID uuid.UUID `json:"prospect_id"`
	Name       string    `json:"name"`
	ScriptID   uuid.UUID `json:"script_id"`
	Text       string    `json:"text"`
}

type Totals struct {
	All       int `json:"all"`
	Qualified int `json:"qualified"`
}

// Report is the outcome of one generation run. Totals is nil for the empty state and when the
// totals lookup failed.
type Report struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Since       time.Time    `json:"since"`
	Lookback    string       `json:"lookback"`
	Prospects   []Summary    `json:"prospects"`
	Suggestions []Suggestion `json:"suggestions"`
	Skipped     int          `json:"skipped"`
	Totals      *Totals      `json:"totals,omitempty"`
}

// Empty reports whether no prospects fell inside the lookback window.
func (r *Report) Empty() bool {
	return len(r.Prospects) == 0
}

// Text renders the report as Slack mrkdwn.
func (r *Report) Text() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "*Prospect report* (last %s)\n", r.Lookback)
	if r.Empty() {
		sb.WriteString("_No new prospects in this window._")
		return sb.String()
	}

	fmt.Fprintf(&sb, "\n*New prospects: %d*\n", len(r.Prospects))
	for i, p := range r.Prospects {
		fmt.Fprintf(&sb, "%d. %s (score %d, %s)", i+1, p.Name, p.Score, p.Source)
		if p.Signal != "" {
			fmt.Fprintf(&sb, ": %s", p.Signal)
		}
		sb.WriteString("\n")
	}

	if len(r.Suggestions) > 0 {
		sb.WriteString("\n*Suggested approaches*\n")
		for _, s := range r.Suggestions {
			fmt.Fprintf(&sb, "*%s*\n> %s\n", s.Name, strings.ReplaceAll(s.Text, "\n", "\n> "))
		}
	}

	if r.Totals != nil {
		fmt.Fprintf(&sb, "\n_Pipeline: %d prospects all-time, %d qualified_", r.Totals.All, r.Totals.Qualified)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
