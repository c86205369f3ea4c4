package report_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/repogrowth/pkg/cloc"
	"github.com/Sumatoshi-tech/repogrowth/pkg/growth"
	"github.com/Sumatoshi-tech/repogrowth/pkg/report"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.Local)
}

func breakdownOf(code int) cloc.Breakdown {
	sum := cloc.Counts{NFiles: code / 5, Code: code, Comment: 2, Blank: 1}

	return cloc.Breakdown{
		Languages: []cloc.Language{{Name: "Go", Counts: sum}},
		Sum:       sum,
	}
}

// scenarioResults is newest first: 15, 20, 10 lines.
func scenarioResults() []growth.PeriodResult {
	return []growth.PeriodResult{
		{Date: day(2020, time.March, 1), Commit: "cccccccc33333333", Results: breakdownOf(15)},
		{Date: day(2020, time.January, 31), Commit: "bbbbbbbb22222222", Results: breakdownOf(20)},
		{Date: day(2020, time.January, 1), Commit: "aaaaaaaa11111111", Results: breakdownOf(10)},
	}
}

func lineContaining(t *testing.T, out, needle string) string {
	t.Helper()

	for line := range strings.SplitSeq(out, "\n") {
		if strings.Contains(line, needle) {
			return line
		}
	}

	t.Fatalf("no line contains %q in:\n%s", needle, out)

	return ""
}

func TestBreakdown_TopSixAndTotal(t *testing.T) {
	t.Parallel()

	names := []string{"Go", "YAML", "Markdown", "JSON", "Bourne Shell", "make", "Dockerfile"}

	var b cloc.Breakdown

	for i, name := range names {
		counts := cloc.Counts{NFiles: 1, Code: 100 - i}
		b.Languages = append(b.Languages, cloc.Language{Name: name, Counts: counts})
		b.Sum.Add(counts)
	}

	var buf bytes.Buffer

	require.NoError(t, report.Breakdown(&buf, b))

	out := buf.String()
	for _, header := range []string{"Language", "File Count", "Code Lines", "Comment Lines", "Blank Lines"} {
		assert.Contains(t, out, header)
	}

	for _, name := range names[:report.TopLanguages] {
		assert.Contains(t, out, name)
	}

	assert.NotContains(t, out, "Dockerfile")
	assert.Contains(t, lineContaining(t, out, "Total"), "679")

	assert.Less(t, strings.Index(out, "Go"), strings.Index(out, "YAML"), "tool order is kept")
	assert.Less(t, strings.Index(out, "make"), strings.Index(out, "Total"))
}

func TestBreakdownAndSummary_ShareThousandsSeparators(t *testing.T) {
	t.Parallel()

	big := cloc.Counts{NFiles: 1200, Code: 12345, Comment: 6789, Blank: 1001}
	b := cloc.Breakdown{Languages: []cloc.Language{{Name: "Go", Counts: big}}, Sum: big}

	var buf bytes.Buffer

	require.NoError(t, report.Breakdown(&buf, b))

	total := lineContaining(t, buf.String(), "Total")
	for _, want := range []string{"1,200", "12,345", "6,789", "1,001"} {
		assert.Contains(t, total, want)
	}

	buf.Reset()

	require.NoError(t, report.Summary(&buf, []growth.PeriodResult{
		{Date: day(2020, time.February, 1), Commit: "bbbbbbbb22222222", Results: b},
	}))

	assert.Contains(t, lineContaining(t, buf.String(), "22222222"), "12,345")
}

func TestSummary_DeltasAgainstOlderRow(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, report.Summary(&buf, scenarioResults()))

	out := buf.String()
	assert.Contains(t, out, "Total Lines of Code")

	assert.Contains(t, lineContaining(t, out, "2020-03-01 33333333"), "15 (-5)")
	assert.Contains(t, lineContaining(t, out, "2020-01-31 22222222"), "20 (+10)")

	oldest := lineContaining(t, out, "2020-01-01 11111111")
	assert.Contains(t, oldest, "10")
	assert.NotContains(t, oldest, "(")
}

func TestPeriods(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, report.Periods(&buf, []growth.Period{
		{Date: day(2020, time.March, 1), Commit: "cccccccc33333333"},
		{Date: day(2020, time.January, 1), Commit: "aaaaaaaa11111111"},
	}))

	assert.Equal(t, "Matched Commits:\n\n2020-03-01 cccccccc33333333\n2020-01-01 aaaaaaaa11111111\n", buf.String())
}
