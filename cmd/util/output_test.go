package util

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/learningorchestra/orchestra/pkg/client"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintEnvelope(t *testing.T) {
	tcs := []struct {
		name     string
		output   string
		envelope string
		expected string
	}{
		{
			name:     "TextMessage",
			envelope: `{"result": "deleted iris"}`,
			expected: "deleted iris\n",
		},
		{
			name:     "TextRecords",
			envelope: `{"result": [{"datasetName": "iris", "finished": "false", "type": "dataset", "timeCreated": "now"}]}`,
			expected: "NAME  TYPE     FINISHED  CREATED\niris  dataset  false     now\n",
		},
		{
			name:     "JSON",
			output:   "json",
			envelope: `{"result": "ok", "total": 1}`,
			expected: "{\n  \"result\": \"ok\",\n  \"total\": 1\n}\n",
		},
		{
			name:     "YAML",
			output:   "yaml",
			envelope: `{"result": [{"datasetName": "iris", "finished": "true"}]}`,
			expected: "result:\n  - datasetName: iris\n    finished: \"true\"\n",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			stdout := &bytes.Buffer{}

			cmd := &cobra.Command{Use: "test"}
			cmd.SetOut(stdout)
			if tc.output != "" {
				cmd.Flags().String("output", tc.output, "")
			}

			var e client.Envelope
			require.NoError(t, json.Unmarshal([]byte(tc.envelope), &e))

			require.NoError(t, PrintEnvelope(cmd, &e))
			assert.Equal(t, tc.expected, stdout.String())
		})
	}
}

func TestPrintEnvelopeUnknownFormat(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("output", "xml", "")

	assert.Error(t, PrintEnvelope(cmd, &client.Envelope{}))
}

func TestParams(t *testing.T) {
	assert.Equal(t, map[string]any{
		"n_clusters": float64(3),
		"algorithm":  "lloyd",
		"copy":       true,
		"quoted":     "3",
		"shape":      []any{float64(1), float64(2)},
	}, Params(map[string]string{
		"n_clusters": "3",
		"algorithm":  "lloyd",
		"copy":       "true",
		"quoted":     `"3"`,
		"shape":      "[1,2]",
	}))
}
