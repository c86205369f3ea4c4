package cloc

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// ErrMalformedOutput is returned when cloc printed something that is not a
// valid JSON report.
var ErrMalformedOutput = errors.New("malformed cloc output")

// ErrNoFileLister is returned when a glob match is requested without a way
// to list tracked files.
var ErrNoFileLister = errors.New("glob match requires a file lister")

// reportSchema describes the shape of `cloc --json`: an object whose
// entries, apart from "header", carry non-negative integer counts.
const reportSchema = `{
  "type": "object",
  "properties": {
    "header": {"type": "object"}
  },
  "additionalProperties": {
    "type": "object",
    "required": ["nFiles", "blank", "comment", "code"],
    "properties": {
      "nFiles":  {"type": "integer", "minimum": 0},
      "blank":   {"type": "integer", "minimum": 0},
      "comment": {"type": "integer", "minimum": 0},
      "code":    {"type": "integer", "minimum": 0}
    }
  }
}`

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(reportSchema))
})

// Parse validates and decodes a cloc JSON report. Any failure wraps
// ErrMalformedOutput.
func Parse(data []byte) (Breakdown, error) {
	schema, err := compiledSchema()
	if err != nil {
		return Breakdown{}, fmt.Errorf("compile report schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return Breakdown{}, fmt.Errorf("%w: %w", ErrMalformedOutput, err)
	}

	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}

		return Breakdown{}, fmt.Errorf("%w: %s", ErrMalformedOutput, strings.Join(problems, "; "))
	}

	breakdown, err := decodeOrdered(data)
	if err != nil {
		return Breakdown{}, fmt.Errorf("%w: %w", ErrMalformedOutput, err)
	}

	return breakdown, nil
}
