package report

import (
	"fmt"
	"io"

	"github.com/Sumatoshi-tech/repogrowth/pkg/growth"
)

// Renderer prints pipeline progress as it happens. It implements
// growth.Observer.
type Renderer struct {
	out     io.Writer
	palette palette
	err     error
}

var _ growth.Observer = (*Renderer)(nil)

// NewRenderer creates a Renderer writing to out.
func NewRenderer(out io.Writer, style Style) *Renderer {
	return &Renderer{out: out, palette: newPalette(style)}
}

// Err returns the first write error, if any.
func (r *Renderer) Err() error {
	return r.err
}

// Periods implements growth.Observer.
func (r *Renderer) Periods(periods []growth.Period) {
	r.keep(writePeriods(r.out, periods, r.palette))
	r.printf("\n")
}

// Breakdown implements growth.Observer.
func (r *Renderer) Breakdown(result growth.PeriodResult) {
	r.printf("%s %s\n%s\n\n",
		r.palette.date(r.palette.day(result.Date)),
		r.palette.commit(ShortHash(result.Commit)),
		breakdownTable(result.Results, r.palette))
}

// Skipped implements growth.Observer.
func (r *Renderer) Skipped(period growth.Period) {
	r.printf("%s\n\n", r.palette.muted(fmt.Sprintf("%s %s: no files to count, skipped",
		r.palette.day(period.Date), ShortHash(period.Commit))))
}

// Summary implements growth.Observer.
func (r *Renderer) Summary(results []growth.PeriodResult) {
	r.printf("%s\n\n%s\n", r.palette.heading("Results:"), summaryTable(results, r.palette))
}

func (r *Renderer) printf(format string, args ...any) {
	_, err := fmt.Fprintf(r.out, format, args...)
	r.keep(err)
}

func (r *Renderer) keep(err error) {
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("render: %w", err)
	}
}
