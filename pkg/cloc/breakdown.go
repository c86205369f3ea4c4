// Package cloc runs the cloc line counter against a working tree and decodes
// its per-language JSON report.
package cloc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Reserved report keys.
const (
	KeyHeader = "header"
	KeySum    = "SUM"
)

var (
	errExpectedObject = errors.New("expected a JSON object")
	errTrailingData   = errors.New("trailing data after report")
)

// Counts are the line totals for one language or for the whole tree.
type Counts struct {
	NFiles  int `json:"nFiles"  yaml:"nFiles"`
	Blank   int `json:"blank"   yaml:"blank"`
	Comment int `json:"comment" yaml:"comment"`
	Code    int `json:"code"    yaml:"code"`
}

// Add accumulates other into c.
func (c *Counts) Add(other Counts) {
	c.NFiles += other.NFiles
	c.Blank += other.Blank
	c.Comment += other.Comment
	c.Code += other.Code
}

// Language is one per-language entry of a report.
type Language struct {
	Name string
	Counts
}

// Header is cloc's run metadata.
type Header struct {
	ClocURL        string  `json:"cloc_url,omitempty"         yaml:"cloc_url,omitempty"`
	ClocVersion    string  `json:"cloc_version,omitempty"     yaml:"cloc_version,omitempty"`
	ElapsedSeconds float64 `json:"elapsed_seconds,omitempty"  yaml:"elapsed_seconds,omitempty"`
	NFiles         int     `json:"n_files,omitempty"          yaml:"n_files,omitempty"`
	NLines         int     `json:"n_lines,omitempty"          yaml:"n_lines,omitempty"`
	FilesPerSecond float64 `json:"files_per_second,omitempty" yaml:"files_per_second,omitempty"`
	LinesPerSecond float64 `json:"lines_per_second,omitempty" yaml:"lines_per_second,omitempty"`
}

// Breakdown is a decoded cloc report. Languages keep the order in which the
// tool emitted them; the reserved header and SUM entries live in their own
// fields.
type Breakdown struct {
	Header    Header
	Languages []Language
	Sum       Counts
}

// Top returns at most n languages in report order.
func (b Breakdown) Top(n int) []Language {
	if n < 0 || n >= len(b.Languages) {
		return b.Languages
	}

	return b.Languages[:n]
}

// MarshalJSON encodes the breakdown as cloc does: one object keyed by
// "header", each language name, then "SUM".
func (b Breakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	first := true

	writeEntry := func(key string, value any) error {
		if !first {
			buf.WriteByte(',')
		}

		first = false

		keyJSON, err := json.Marshal(key)
		if err != nil {
			return err
		}

		valueJSON, err := json.Marshal(value)
		if err != nil {
			return err
		}

		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(valueJSON)

		return nil
	}

	if b.Header != (Header{}) {
		err := writeEntry(KeyHeader, b.Header)
		if err != nil {
			return nil, fmt.Errorf("encode header: %w", err)
		}
	}

	for _, lang := range b.Languages {
		err := writeEntry(lang.Name, lang.Counts)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", lang.Name, err)
		}
	}

	err := writeEntry(KeySum, b.Sum)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", KeySum, err)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a cloc-shaped object, preserving key order.
func (b *Breakdown) UnmarshalJSON(data []byte) error {
	decoded, err := decodeOrdered(data)
	if err != nil {
		return err
	}

	*b = decoded

	return nil
}

// MarshalYAML encodes the breakdown as an ordered mapping.
func (b Breakdown) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}

	appendEntry := func(key string, value any) error {
		valueNode := &yaml.Node{}

		err := valueNode.Encode(value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}

		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			valueNode,
		)

		return nil
	}

	if b.Header != (Header{}) {
		err := appendEntry(KeyHeader, b.Header)
		if err != nil {
			return nil, err
		}
	}

	for _, lang := range b.Languages {
		err := appendEntry(lang.Name, lang.Counts)
		if err != nil {
			return nil, err
		}
	}

	err := appendEntry(KeySum, b.Sum)
	if err != nil {
		return nil, err
	}

	return node, nil
}

// decodeOrdered walks the top-level object token by token so that language
// order survives decoding. A missing SUM entry is computed from the
// languages.
func decodeOrdered(data []byte) (Breakdown, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return Breakdown{}, fmt.Errorf("read report: %w", err)
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return Breakdown{}, errExpectedObject
	}

	var (
		result Breakdown
		sawSum bool
	)

	for dec.More() {
		keyTok, keyErr := dec.Token()
		if keyErr != nil {
			return Breakdown{}, fmt.Errorf("read key: %w", keyErr)
		}

		key, ok := keyTok.(string)
		if !ok {
			return Breakdown{}, fmt.Errorf("unexpected token %v", keyTok)
		}

		switch key {
		case KeyHeader:
			err = dec.Decode(&result.Header)
		case KeySum:
			sawSum = true
			err = dec.Decode(&result.Sum)
		default:
			var counts Counts

			err = dec.Decode(&counts)
			result.Languages = append(result.Languages, Language{Name: key, Counts: counts})
		}

		if err != nil {
			return Breakdown{}, fmt.Errorf("decode %q: %w", key, err)
		}
	}

	_, err = dec.Token()
	if err != nil {
		return Breakdown{}, fmt.Errorf("read report end: %w", err)
	}

	_, err = dec.Token()
	if !errors.Is(err, io.EOF) {
		return Breakdown{}, errTrailingData
	}

	if !sawSum {
		for _, lang := range result.Languages {
			result.Sum.Add(lang.Counts)
		}
	}

	return result, nil
}
