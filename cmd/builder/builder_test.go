package builder

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/learningorchestra/orchestra/cmd/util"
	"github.com/learningorchestra/orchestra/pkg/client"
	"github.com/learningorchestra/orchestra/pkg/orchestra"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var config = &client.Config{
	Address: "http://localhost:5000",
	Routes: map[string]string{
		orchestra.BuilderService: "/api/learningOrchestra/v1/builder/",
	},
	PendingMarker: " please wait",
	StatusSuffix:  "/metadata",
	PollInterval:  time.Millisecond,
}

func envelope(t *testing.T, data string) *client.Envelope {
	t.Helper()

	var e client.Envelope
	require.NoError(t, json.Unmarshal([]byte(data), &e))
	return &e
}

func TestBuilderCmds(t *testing.T) {
	// Set Gomock controller
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	code := filepath.Join(t.TempDir(), "preprocess.py")
	require.NoError(t, os.WriteFile(code, []byte("features_training = training_df"), 0o600))
	missing := filepath.Join(filepath.Dir(code), "missing.py")

	body := func(tool string) client.Request {
		return client.Request{
			"tool":             tool,
			"builderName":      "titanic_model",
			"trainDatasetName": "titanic_training",
			"testDatasetName":  "titanic_testing",
			"modelingCode":     "features_training = training_df",
			"classifiersList":  []string{"LR", "DT"},
		}
	}
	pending := `{"result": "/api/learningOrchestra/v1/builder/titanic_model please wait"}`

	// Set test cases
	tcs := []struct {
		name       string
		cmd        func(*util.Orchestra) *cobra.Command
		args       []string
		expect     func(*client.MockGateway)
		wantStdout string
		wantStderr string
	}{
		{
			name: "RunSparkML",
			cmd:  RunCmd,
			args: []string{"titanic_model", "--train", "titanic_training", "--test", "titanic_testing", "--code-file", code, "--classifier", "LR", "--classifier", "DT", "--async"},
			expect: func(mock *client.MockGateway) {
				mock.
					EXPECT().
					Submit(gomock.Any(), "POST", orchestra.BuilderService, false, gomock.Eq(body(orchestra.SparkML))).
					Return(envelope(t, pending), nil).
					Times(1)
			},
			wantStdout: "Pending: titanic_model\n",
		},
		{
			name: "RunTensorFlow",
			cmd:  RunCmd,
			args: []string{"titanic_model", "--tool", "tensorflow", "--train", "titanic_training", "--test", "titanic_testing", "--code", "features_training = training_df", "--classifier", "LR", "--classifier", "DT", "--async"},
			expect: func(mock *client.MockGateway) {
				mock.
					EXPECT().
					Submit(gomock.Any(), "POST", orchestra.BuilderService, false, gomock.Eq(body(orchestra.TensorFlow))).
					Return(envelope(t, pending), nil).
					Times(1)
			},
			wantStdout: "Pending: titanic_model\n",
		},
		{
			name:       "RunUnknownTool",
			cmd:        RunCmd,
			args:       []string{"titanic_model", "--tool", "pytorch", "--train", "titanic_training", "--test", "titanic_testing", "--code", "x", "--classifier", "LR"},
			expect:     func(*client.MockGateway) {},
			wantStderr: "Error: tool must be one of sparkml, tensorflow\n",
		},
		{
			name:       "RunMissingCodeFile",
			cmd:        RunCmd,
			args:       []string{"titanic_model", "--train", "titanic_training", "--test", "titanic_testing", "--code-file", missing, "--classifier", "LR"},
			expect:     func(*client.MockGateway) {},
			wantStderr: "Error: open " + missing + ": no such file or directory\n",
		},
		{
			name: "Predictions",
			cmd:  PredictionsCmd,
			args: []string{"titanic_model"},
			expect: func(mock *client.MockGateway) {
				mock.
					EXPECT().
					Fetch(gomock.Any(), "titanic_model/predictions", "GET", orchestra.BuilderService).
					Return(envelope(t, `{"result": "ok"}`), nil).
					Times(1)
			},
			wantStdout: "ok\n",
		},
		{
			name: "PredictionsPage",
			cmd:  PredictionsCmd,
			args: []string{"titanic_model", "--limit", "5"},
			expect: func(mock *client.MockGateway) {
				mock.
					EXPECT().
					Fetch(gomock.Any(), "titanic_model/predictions?query=%7B%7D&limit=5&skip=0", "GET", orchestra.BuilderService).
					Return(envelope(t, `{"result": "ok"}`), nil).
					Times(1)
			},
			wantStdout: "ok\n",
		},
		{
			name: "Get",
			cmd:  GetCmd,
			args: []string{"titanic_model"},
			expect: func(mock *client.MockGateway) {
				mock.
					EXPECT().
					Fetch(gomock.Any(), "titanic_model", "GET", orchestra.BuilderService).
					Return(envelope(t, `{"result": "ok"}`), nil).
					Times(1)
			},
			wantStdout: "ok\n",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Create buffer writer
			stdout := &bytes.Buffer{}
			stderr := &bytes.Buffer{}

			// Create mock gateway
			mock := client.NewMockGateway(ctrl)
			tc.expect(mock)

			// Create commands in test
			cmd := tc.cmd(util.MockOrchestra(config, mock))

			// Set streams for command
			cmd.SetOut(stdout)
			cmd.SetErr(stderr)
			cmd.SilenceUsage = true

			// Set args for command
			cmd.SetArgs(tc.args)

			// Execute command
			if err := cmd.Execute(); err != nil {
				assert.Equal(t, tc.wantStderr, stderr.String())
			} else {
				assert.Equal(t, tc.wantStdout, stdout.String())
			}
		})
	}
}
