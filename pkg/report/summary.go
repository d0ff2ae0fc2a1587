package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	sumTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	sumHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	sumDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// maxSummaryRows caps the local table; everything was already shipped
// upstream regardless.
const maxSummaryRows = 15

// RenderSummary prints a styled table of the hottest symbols that were
// attributed upstream, heaviest first.
func RenderSummary(w io.Writer, samples []Sample) {
	if len(samples) == 0 {
		return
	}

	sorted := make([]Sample, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Seconds > sorted[j].Seconds
	})
	if len(sorted) > maxSummaryRows {
		sorted = sorted[:maxSummaryRows]
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, sumTitle.Render("Hot Symbols"))
	fmt.Fprintln(w, sumDim.Render(strings.Repeat("═", 70)))
	fmt.Fprintf(w, "  %s %s %s\n",
		sumHeader.Render("SECONDS   "),
		sumHeader.Render("SHARE  "),
		sumHeader.Render("SYMBOL                                  "))
	fmt.Fprintln(w, "  "+sumDim.Render(strings.Repeat("─", 70)))

	for _, s := range sorted {
		fmt.Fprintf(w, "  %-11s %6.2f%% %s %s\n",
			s.Value(), s.Percent, s.Symbol, sumDim.Render("("+s.Module+")"))
	}
	fmt.Fprintln(w)
}
