package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/kailas-cloud/catalograg/internal/catalog"
	dombatch "github.com/kailas-cloud/catalograg/internal/domain/batch"
	"github.com/kailas-cloud/catalograg/internal/domain/search/result"
	"github.com/kailas-cloud/catalograg/internal/domain/search/score"
	embeddinguc "github.com/kailas-cloud/catalograg/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/catalograg/internal/usecase/health"
	"github.com/kailas-cloud/catalograg/internal/usecase/indexer"
	"github.com/kailas-cloud/catalograg/internal/usecase/retriever"
)

// Palette shared by every view.
var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6C7086")
	colorSuccess = lipgloss.Color("#A6E3A1")
	colorWarning = lipgloss.Color("#F9E2AF")
	colorError   = lipgloss.Color("#F38BA8")
)

// styles are bound to one writer so colour is dropped when it is not a terminal.
type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	err     lipgloss.Style
	answer  lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(colorPrimary),
		label:   r.NewStyle().Bold(true),
		muted:   r.NewStyle().Foreground(colorMuted),
		success: r.NewStyle().Foreground(colorSuccess),
		warning: r.NewStyle().Foreground(colorWarning),
		err:     r.NewStyle().Foreground(colorError),
		answer: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1),
	}
}

func (s styles) level(l score.Level) lipgloss.Style {
	switch l {
	case score.High:
		return s.success
	case score.Medium:
		return s.warning
	default:
		return s.muted
	}
}

// renderSearch prints the recommendation followed by the matched products.
func renderSearch(w io.Writer, res *result.Result) {
	st := newStyles(w)

	if res.OptimizedQuery() != res.OriginalQuery() {
		fmt.Fprintln(w, st.muted.Render("searching for: "+res.OptimizedQuery()))
	}
	fmt.Fprintln(w, st.answer.Render(res.Response()))

	docs := res.Documents()
	if len(docs) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, st.title.Render("Products"))
	for i := range docs {
		d := &docs[i]
		lvl := d.Score.Level()
		fmt.Fprintf(w, "  %d. %s %s\n",
			i+1,
			st.label.Render(d.Product.Name),
			st.level(lvl).Render(fmt.Sprintf("%d%% %s", d.Score.Percent(), lvl)),
		)
		fmt.Fprintf(w, "     %s\n", st.muted.Render(fmt.Sprintf("%s · %s · %s",
			d.Product.Brand, d.Product.Category, d.Product.FormattedPrice())))
	}
}

// renderIndexReport prints the outcome of loading and indexing a catalog.
func renderIndexReport(w io.Writer, invalid []*catalog.ItemError, rep *indexer.Report) {
	st := newStyles(w)

	if len(invalid) > 0 {
		fmt.Fprintln(w, st.warning.Render(fmt.Sprintf("Skipped %d invalid product(s):", len(invalid))))
		for _, ie := range invalid {
			fmt.Fprintf(w, "  - %s\n", ie.Error())
		}
	}
	if rep == nil {
		return
	}

	sum := rep.Summary()
	status := st.success.Render(fmt.Sprintf("Indexed %d product(s)", sum.OK))
	if sum.Failed > 0 {
		status += st.err.Render(fmt.Sprintf(", %d failed", sum.Failed))
	}
	fmt.Fprintln(w, status)

	details := fmt.Sprintf("tokens: %d, duration: %s", rep.Tokens, rep.Duration.Round(time.Millisecond))
	if rep.IndexCreated {
		details = "index created, " + details
	}
	fmt.Fprintln(w, st.muted.Render(details))

	for _, r := range dombatch.Errors(rep.Results) {
		fmt.Fprintf(w, "  - %s: %v\n", r.ID(), r.Err())
	}
}

// renderStats prints index, budget and health state.
func renderStats(
	w io.Writer,
	idx retriever.Stats,
	budget embeddinguc.BudgetStatus,
	hasBudget bool,
	health healthuc.Report,
) {
	st := newStyles(w)

	fmt.Fprintln(w, st.title.Render("Index"))
	fmt.Fprintf(w, "  status:   %s\n", statusStyle(st, idx.Status == retriever.StatusReady).Render(idx.Status))
	fmt.Fprintf(w, "  vectors:  %d\n", idx.VectorCount)
	fmt.Fprintf(w, "  indexed:  %d\n", idx.IndexedCount)
	if idx.Error != "" {
		fmt.Fprintf(w, "  error:    %s\n", st.err.Render(idx.Error))
	}

	if hasBudget {
		fmt.Fprintln(w, st.title.Render("Embedding budget"))
		fmt.Fprintf(w, "  daily:    %s\n", usage(budget.DailyUsed, budget.DailyLimit))
		fmt.Fprintf(w, "  monthly:  %s\n", usage(budget.MonthlyUsed, budget.MonthlyLimit))
	}

	fmt.Fprintln(w, st.title.Render("Health"))
	fmt.Fprintf(w, "  overall:  %s\n", statusStyle(st, health.Status == healthuc.Healthy).Render(string(health.Status)))
	names := make([]string, 0, len(health.Checks))
	for name := range health.Checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v := health.Checks[name]
		fmt.Fprintf(w, "  %-9s %s\n", name+":", statusStyle(st, v == healthuc.CheckOK).Render(string(v)))
	}
}

func statusStyle(st styles, ok bool) lipgloss.Style {
	if ok {
		return st.success
	}
	return st.err
}

func usage(used, limit int64) string {
	if limit <= 0 {
		return fmt.Sprintf("%d tokens (unlimited)", used)
	}
	return fmt.Sprintf("%d / %d tokens", used, limit)
}

// promptLine formats the chat prompt.
func promptLine(w io.Writer) string {
	return newStyles(w).title.Render("> ")
}

// errorLine formats an error for interactive output.
func errorLine(w io.Writer, err error) string {
	return newStyles(w).err.Render("error: " + strings.TrimSpace(err.Error()))
}
