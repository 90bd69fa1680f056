package doctor

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/obddash/internal/ui"
)

// Report is the JSON form of a doctor run.
type Report struct {
	Categories []CategoryReport `json:"categories"`
	Summary    SummaryReport    `json:"summary"`
}

// CategoryReport holds the results of one category.
type CategoryReport struct {
	Name    string        `json:"name"`
	Results []CheckResult `json:"results"`
}

// SummaryReport counts results by status.
type SummaryReport struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	Fixable  int  `json:"fixable"`
	AllClear bool `json:"all_clear"`
}

// NewReport groups results by category, in CategoryOrder.
func NewReport(checks []Check, results []CheckResult) Report {
	grouped := make(map[string][]CheckResult)
	for i, c := range checks {
		grouped[c.Category()] = append(grouped[c.Category()], results[i])
	}

	var r Report
	for _, cat := range CategoryOrder {
		if len(grouped[cat]) > 0 {
			r.Categories = append(r.Categories, CategoryReport{Name: cat, Results: grouped[cat]})
		}
	}

	counts := CountByStatus(results)
	r.Summary = SummaryReport{
		Pass:     counts[StatusPass],
		Warn:     counts[StatusWarn],
		Fail:     counts[StatusFail],
		Fixable:  FixableCount(results),
		AllClear: !HasIssues(results),
	}
	return r
}

// WriteJSON writes the report as indented JSON.
func (r Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText writes the human-readable report.
func (r Report) WriteText(w io.Writer) {
	successStyle := lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	errorStyle := lipgloss.NewStyle().Foreground(ui.ColorError)
	warnStyle := lipgloss.NewStyle().Foreground(ui.ColorWarning)
	mutedStyle := lipgloss.NewStyle().Foreground(ui.ColorMuted)
	headerStyle := lipgloss.NewStyle().Bold(true)

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("obddash Diagnostic Report"))
	fmt.Fprintln(w)

	var all []CheckResult
	for _, cat := range r.Categories {
		fmt.Fprintln(w, headerStyle.Render(cat.Name))
		for _, res := range cat.Results {
			var icon string
			switch res.Status {
			case StatusPass:
				icon = successStyle.Render(ui.SymbolSuccess)
			case StatusWarn:
				icon = warnStyle.Render(ui.SymbolComplete)
			default:
				icon = errorStyle.Render(ui.SymbolFail)
			}
			fmt.Fprintf(w, "  %s %s\n", icon, res.Message)
			if res.Suggestion != "" && res.Status != StatusPass {
				fmt.Fprintf(w, "    %s\n", mutedStyle.Render(res.Suggestion))
			}
		}
		fmt.Fprintln(w)
		all = append(all, cat.Results...)
	}

	fmt.Fprintln(w, strings.Repeat("━", 60))
	fmt.Fprintln(w)

	if r.Summary.AllClear {
		fmt.Fprintf(w, "%s %s\n", successStyle.Render(ui.SymbolSuccess), Summary(all))
		return
	}
	fmt.Fprintf(w, "%s %s\n", errorStyle.Render(ui.SymbolFail), Summary(all))
	if r.Summary.Fixable > 0 {
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("  Run 'obddash doctor --fix' to fix %d of them", r.Summary.Fixable)))
	}
}
