package report

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Sumatoshi-tech/repogrowth/pkg/cloc"
	"github.com/Sumatoshi-tech/repogrowth/pkg/growth"
	"github.com/Sumatoshi-tech/repogrowth/pkg/timeline"
)

// TopLanguages is the number of language rows shown per breakdown.
const TopLanguages = 6

// Style controls console presentation.
type Style struct {
	// NoColor disables ANSI colors regardless of the terminal.
	NoColor bool
	// ReverseDates renders dates as DD-MM-YYYY.
	ReverseDates bool
}

// palette holds the cell painters for one Style.
type palette struct {
	heading func(a ...any) string
	name    func(a ...any) string
	date    func(a ...any) string
	commit  func(a ...any) string
	bold    func(a ...any) string
	muted   func(a ...any) string
	day     func(t time.Time) string
}

func newPalette(style Style) palette {
	paint := func(attrs ...color.Attribute) func(a ...any) string {
		c := color.New(attrs...)
		if style.NoColor {
			c.DisableColor()
		}

		return c.SprintFunc()
	}

	day := timeline.Format
	if style.ReverseDates {
		day = timeline.FormatReversed
	}

	return palette{
		heading: paint(color.FgCyan),
		name:    paint(color.FgMagenta),
		date:    paint(color.FgMagenta),
		commit:  paint(color.FgYellow),
		bold:    paint(color.Bold),
		muted:   paint(color.Faint),
		day:     day,
	}
}

func plainPalette() palette {
	return newPalette(Style{NoColor: true})
}

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Format.Header = text.FormatDefault

	return tbl
}

func rightAligned(columns ...int) []table.ColumnConfig {
	configs := make([]table.ColumnConfig, 0, len(columns))
	for _, n := range columns {
		configs = append(configs, table.ColumnConfig{Number: n, Align: text.AlignRight})
	}

	return configs
}

func breakdownTable(b cloc.Breakdown, p palette) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Language", "File Count", "Code Lines", "Comment Lines", "Blank Lines"})
	tbl.SetColumnConfigs(rightAligned(2, 3, 4, 5))

	row := func(name string, c cloc.Counts) table.Row {
		return table.Row{name, comma(c.NFiles), comma(c.Code), comma(c.Comment), comma(c.Blank)}
	}

	for _, lang := range b.Top(TopLanguages) {
		tbl.AppendRow(row(p.name(lang.Name), lang.Counts))
	}

	total := row("Total", b.Sum)
	for i := range total {
		total[i] = p.bold(total[i])
	}

	tbl.AppendRow(total)

	return tbl.Render()
}

func summaryTable(results []growth.PeriodResult, p palette) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Period", "Total Files", "Total Lines of Code"})
	tbl.SetColumnConfigs(rightAligned(2, 3))

	for i, r := range results {
		var olderFiles, olderCode *int

		if i+1 < len(results) {
			older := results[i+1].Results.Sum
			olderFiles, olderCode = &older.NFiles, &older.Code
		}

		tbl.AppendRow(table.Row{
			p.date(p.day(r.Date)) + " " + p.commit(ShortHash(r.Commit)),
			FormatValue(r.Results.Sum.NFiles, olderFiles),
			FormatValue(r.Results.Sum.Code, olderCode),
		})
	}

	return tbl.Render()
}

func writePeriods(w io.Writer, periods []growth.Period, p palette) error {
	_, err := fmt.Fprintf(w, "%s\n\n", p.heading("Matched Commits:"))
	if err != nil {
		return fmt.Errorf("write periods: %w", err)
	}

	for _, period := range periods {
		_, err = fmt.Fprintf(w, "%s %s\n", p.date(p.day(period.Date)), p.commit(period.Commit))
		if err != nil {
			return fmt.Errorf("write periods: %w", err)
		}
	}

	return nil
}

// Breakdown writes the per-language table of b: the first TopLanguages
// languages in the tool's order, then a Total row.
func Breakdown(w io.Writer, b cloc.Breakdown) error {
	_, err := fmt.Fprintln(w, breakdownTable(b, plainPalette()))
	if err != nil {
		return fmt.Errorf("write breakdown: %w", err)
	}

	return nil
}

// Summary writes one row per result, in the given order, with each value
// compared to the following (older) row.
func Summary(w io.Writer, results []growth.PeriodResult) error {
	_, err := fmt.Fprintln(w, summaryTable(results, plainPalette()))
	if err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	return nil
}

// Periods writes the list of matched commits.
func Periods(w io.Writer, periods []growth.Period) error {
	return writePeriods(w, periods, plainPalette())
}
