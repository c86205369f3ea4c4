package report_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/repogrowth/pkg/report"
)

func TestEncode_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, report.Encode(&buf, report.FormatJSON, scenarioResults()))

	var decoded []map[string]any

	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 3)

	assert.Equal(t, "2020-03-01", decoded[0]["date"])
	assert.Equal(t, "cccccccc33333333", decoded[0]["commit"])

	results, ok := decoded[0]["results"].(map[string]any)
	require.True(t, ok)

	sum, ok := results["SUM"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 15, sum["code"], 0)
	assert.Contains(t, results, "Go")
	assert.NotContains(t, results, "header", "zero header is omitted")
}

func TestEncode_JSONEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, report.Encode(&buf, report.FormatJSON, nil))
	assert.JSONEq(t, "[]", buf.String())
}

func TestEncode_YAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, report.Encode(&buf, report.FormatYAML, scenarioResults()))

	var decoded []struct {
		Date    string                    `yaml:"date"`
		Commit  string                    `yaml:"commit"`
		Results map[string]map[string]int `yaml:"results"`
	}

	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 3)

	assert.Equal(t, "2020-01-01", decoded[2].Date)
	assert.Equal(t, 10, decoded[2].Results["SUM"]["code"])
	assert.Equal(t, 2, decoded[2].Results["Go"]["nFiles"])

	goIdx := bytes.Index(buf.Bytes(), []byte("Go:"))
	sumIdx := bytes.Index(buf.Bytes(), []byte("SUM:"))
	assert.Less(t, goIdx, sumIdx, "languages precede SUM")
}

func TestEncode_UnknownFormat(t *testing.T) {
	t.Parallel()

	err := report.Encode(&bytes.Buffer{}, "xml", scenarioResults())
	require.ErrorIs(t, err, report.ErrUnknownFormat)
}
