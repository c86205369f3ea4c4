package report_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/repogrowth/pkg/growth"
	"github.com/Sumatoshi-tech/repogrowth/pkg/report"
)

var errClosed = errors.New("closed pipe")

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errClosed }

func TestRenderer_Sequence(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	r := report.NewRenderer(&buf, report.Style{NoColor: true})
	results := scenarioResults()

	r.Periods([]growth.Period{results[0].Period(), results[1].Period(), results[2].Period()})
	r.Breakdown(results[2])
	r.Skipped(growth.Period{Date: day(2020, time.February, 1), Commit: "dddddddd44444444"})
	r.Summary(results)

	require.NoError(t, r.Err())

	out := buf.String()
	assert.Contains(t, out, "Matched Commits:")
	assert.Contains(t, out, "Language")
	assert.Contains(t, out, "2020-02-01 44444444: no files to count, skipped")
	assert.Contains(t, out, "Results:")
	assert.NotContains(t, out, "\x1b[", "colors are disabled")

	assert.Less(t, bytes.Index(buf.Bytes(), []byte("Matched Commits:")), bytes.Index(buf.Bytes(), []byte("Results:")))
}

func TestRenderer_ReverseDates(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	r := report.NewRenderer(&buf, report.Style{NoColor: true, ReverseDates: true})
	r.Summary(scenarioResults())

	assert.Contains(t, buf.String(), "31-01-2020 22222222")
	assert.NotContains(t, buf.String(), "2020-01-31")
}

func TestRenderer_KeepsFirstWriteError(t *testing.T) {
	t.Parallel()

	r := report.NewRenderer(failingWriter{}, report.Style{NoColor: true})
	r.Summary(scenarioResults())
	r.Periods(nil)

	require.ErrorIs(t, r.Err(), errClosed)
}
