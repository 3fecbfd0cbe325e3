package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rotisserie/eris"

	"github.com/sells-group/abtest-planner/internal/samplesize"
)

// Renderer writes human-readable reports. Plain disables colors and borders
// styling, for pipes and log files.
type Renderer struct {
	st styles
}

// NewRenderer creates a Renderer.
func NewRenderer(plain bool) *Renderer {
	return &Renderer{st: newStyles(plain)}
}

// Scenario writes a result card for one evaluated scenario.
func (r *Renderer) Scenario(w io.Writer, res samplesize.Result) error {
	s := res.Scenario
	var b strings.Builder

	title := "Sample size plan"
	if s.Name != "" {
		title += ": " + s.Name
	}
	b.WriteString(r.st.Title.Render(title) + "\n\n")

	b.WriteString(r.st.Section.Render("Inputs") + "\n")
	r.line(&b, "Metric", fmt.Sprintf("%s, %s", s.Metric, s.Tails))
	r.line(&b, "Control", formatValue(s.Metric, res.Control))
	r.line(&b, "Variation", formatValue(s.Metric, res.Variation))
	r.line(&b, "MDE", formatMDE(s, res.MDE))

	alpha := Percent(s.Alpha, 1)
	if res.AlphaUsed != s.Alpha {
		alpha += fmt.Sprintf(" (%s per comparison, Bonferroni)", Percent(res.AlphaUsed, 2))
	}
	r.line(&b, "Significance", alpha+"  "+r.band(res.Band).Render(string(res.Band)))
	r.line(&b, "Power", Percent(s.Power, 0))
	if s.Ratio != 1 {
		r.line(&b, "Allocation", "1:"+strconv.FormatFloat(s.Ratio, 'g', -1, 64))
	}

	b.WriteString("\n" + r.st.Section.Render("Sample size") + "\n")
	r.line(&b, "n (control)", Count(res.NControl))
	r.line(&b, "n (per variation)", Count(res.NPerVariation))
	r.line(&b, "Variations", strconv.Itoa(s.Variations))
	r.line(&b, "Total", r.st.Emphasis.Render(Count(res.Subtotal)))

	if s.Dropoff > 0 {
		b.WriteString("\n" + r.st.Section.Render(fmt.Sprintf("With %s drop-off", Percent(s.Dropoff, 1))) + "\n")
		r.line(&b, "n (control)", Count(res.NControlAdjusted))
		r.line(&b, "n (per variation)", Count(res.NPerVariationAdjusted))
		r.line(&b, "Total", r.st.Emphasis.Render(Count(res.TotalAdjusted)))
	}

	b.WriteString("\n" + r.st.Section.Render("Duration") + "\n")
	if s.DailyTraffic > 0 {
		r.line(&b, "Daily traffic", Number(s.DailyTraffic, 0))
		r.line(&b, "Total needed", Count(res.Total))
		r.line(&b, "Days", Number(res.DaysNeeded, 1))
		r.line(&b, "Weeks", Number(res.WeeksNeeded, 1))
	}
	for _, a := range res.Advisories {
		b.WriteString(r.advisory(a) + "\n")
	}

	_, err := fmt.Fprintln(w, r.st.Card.Render(strings.TrimRight(b.String(), "\n")))
	return eris.Wrap(err, "report: write scenario")
}

func (r *Renderer) line(b *strings.Builder, label, value string) {
	b.WriteString(r.st.Label.Render(fmt.Sprintf("  %-18s", label)) + r.st.Value.Render(value) + "\n")
}

func (r *Renderer) advisory(a samplesize.Advisory) string {
	switch a.Kind {
	case samplesize.AdvisoryShortTest:
		return r.st.Warning.Render("! Short test: " + a.Message)
	case samplesize.AdvisoryLongTest:
		return r.st.Muted.Render("i Long test: " + a.Message)
	default:
		return r.st.Muted.Render("i " + a.Message)
	}
}

func (r *Renderer) band(b samplesize.Band) lipgloss.Style {
	switch b {
	case samplesize.BandConservative:
		return r.st.Conservative
	case samplesize.BandStandard:
		return r.st.Standard
	default:
		return r.st.Liberal
	}
}

var sweepHeaders = []string{
	"Alpha", "MDE", "Control", "Variation", "# Var",
	"n (Control)", "n (per Var)", "Total", "Days", "Weeks",
}

// Sweep writes a scenario-sweep table, one row per (alpha, MDE) pair, colored
// by significance band.
func (r *Renderer) Sweep(w io.Writer, title string, base samplesize.Scenario, rows []samplesize.SweepRow) error {
	var b strings.Builder
	b.WriteString(r.st.Title.Render(fmt.Sprintf("%s (%d scenarios)", title, len(rows))) + "\n")

	if len(rows) == 0 {
		b.WriteString(r.st.Warning.Render("No valid scenarios generated. Check the alpha and MDE lists.") + "\n")
		_, err := io.WriteString(w, b.String())
		return eris.Wrap(err, "report: write sweep")
	}

	data := make([][]string, len(rows))
	var notes []string
	for i, row := range rows {
		data[i] = r.sweepCells(base, row)
		if row.Error != "" {
			notes = append(notes, fmt.Sprintf("row %d (alpha %s, MDE %s): %s",
				i+1, Percent(row.Alpha, 1), formatEffect(base, row.Effect), row.Error))
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.st.Border).
		Headers(sweepHeaders...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.st.Header
			}
			if row < 0 || row >= len(rows) {
				return r.st.Cell
			}
			if rows[row].Error != "" {
				return r.st.Error.Padding(0, 1)
			}
			return r.band(rows[row].Band)
		})

	b.WriteString(t.Render() + "\n")
	b.WriteString(r.legend() + "\n")
	for _, n := range notes {
		b.WriteString(r.st.Error.Render(n) + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return eris.Wrap(err, "report: write sweep")
}

func (r *Renderer) sweepCells(base samplesize.Scenario, row samplesize.SweepRow) []string {
	cells := []string{
		Percent(row.Alpha, 1),
		formatEffect(base, row.Effect),
	}
	if row.Error != "" {
		return append(cells, "-", "-", strconv.Itoa(row.Variations), "-", "-", "invalid", "-", "-")
	}
	return append(cells,
		formatValue(base.Metric, row.Control),
		formatValue(base.Metric, row.Variation),
		strconv.Itoa(row.Variations),
		Count(row.NControl),
		Count(row.NPerVariation),
		Count(row.Total),
		Count(row.DaysNeeded),
		Number(row.WeeksNeeded, 1),
	)
}

func (r *Renderer) legend() string {
	return strings.Join([]string{
		r.st.Label.Render("Legend:"),
		r.st.Conservative.Render("alpha <= 1% (very conservative)"),
		r.st.Standard.Render("alpha <= 5% (standard)"),
		r.st.Liberal.Render("alpha > 5% (liberal)"),
	}, " ")
}

// Checks writes pass/fail badges for the built-in sanity checks.
func (r *Renderer) Checks(w io.Writer, checks []samplesize.Check) error {
	var b strings.Builder
	for _, c := range checks {
		if c.Pass {
			b.WriteString(r.st.Success.Render("PASS ") + c.Name + "\n")
		} else {
			b.WriteString(r.st.Error.Render("FAIL ") + c.Name + "\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return eris.Wrap(err, "report: write checks")
}

func formatValue(m samplesize.Metric, v float64) string {
	if m == samplesize.MetricMean {
		return Number(v, 2)
	}
	return Percent(v, 2)
}

func formatEffect(s samplesize.Scenario, e float64) string {
	if samplesize.EffectsArePercent(s) {
		return Percent(e, 1)
	}
	return Number(e, 2)
}

func formatMDE(s samplesize.Scenario, mde float64) string {
	if s.Metric == samplesize.MetricMean {
		return Number(mde, 2)
	}
	abs := Number(mde*100, 2) + " pp"
	if s.EffectType == samplesize.EffectRelative {
		return fmt.Sprintf("%s relative (%s)", Percent(s.Effect, 1), abs)
	}
	return abs
}
