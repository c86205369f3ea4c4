package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/repogrowth/pkg/cloc"
	"github.com/Sumatoshi-tech/repogrowth/pkg/growth"
	"github.com/Sumatoshi-tech/repogrowth/pkg/timeline"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// ErrUnknownFormat is returned by Encode for formats other than JSON and YAML.
var ErrUnknownFormat = errors.New("unknown output format")

const yamlIndent = 2

// Record is the machine-readable shape of one growth.PeriodResult.
type Record struct {
	Date    string         `json:"date"    yaml:"date"`
	Commit  string         `json:"commit"  yaml:"commit"`
	Results cloc.Breakdown `json:"results" yaml:"results"`
}

// Records converts results, keeping their order.
func Records(results []growth.PeriodResult) []Record {
	records := make([]Record, 0, len(results))
	for _, r := range results {
		records = append(records, Record{Date: timeline.Format(r.Date), Commit: r.Commit, Results: r.Results})
	}

	return records
}

// Encode writes results to w as a JSON or YAML list.
func Encode(w io.Writer, format string, results []growth.PeriodResult) error {
	records := Records(results)

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		err := enc.Encode(records)
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}

		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(yamlIndent)

		err := enc.Encode(records)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		err = enc.Close()
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
