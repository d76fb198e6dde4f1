package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/processors/minsev"

	"github.com/meshcloud/meshstack-auth/internal/action/actiontest"
)

// restoreDefault resets the process-wide logger after a test.
func restoreDefault(t *testing.T) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
}

func TestResolveFormat(t *testing.T) {
	inActions := actiontest.New(nil)
	inActions.Env["GITHUB_ACTIONS"] = "true"

	tests := []struct {
		name     string
		host     *actiontest.Recorder
		terminal bool
		expected string
	}{
		{name: "github actions", host: inActions, terminal: true, expected: FormatActions},
		{name: "terminal", host: actiontest.New(nil), terminal: true, expected: FormatText},
		{name: "piped", host: actiontest.New(nil), terminal: false, expected: FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveFormat(tt.host, tt.terminal))
		})
	}
}

func TestInstrumentJSON(t *testing.T) {
	restoreDefault(t)
	var buf bytes.Buffer

	shutdown, err := Instrument(context.Background(), Options{
		Level:  slog.LevelInfo,
		Format: FormatJSON,
		Writer: &buf,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	slog.Debug("hidden")
	slog.Info("Login was successful.")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "Login was successful.", rec["msg"])
	assert.NotEmpty(t, rec["run_id"])
}

func TestInstrumentActions(t *testing.T) {
	restoreDefault(t)
	host := actiontest.New(nil)

	_, err := Instrument(context.Background(), Options{
		Level:  slog.LevelDebug,
		Format: FormatActions,
		Host:   host,
	})
	require.NoError(t, err)

	slog.Debug("token", "token", "T")

	logs := host.Logs("debug")
	require.Len(t, logs, 1)
	assert.True(t, strings.HasPrefix(logs[0].Message, "token run_id="))
	assert.True(t, strings.HasSuffix(logs[0].Message, " token=T"))
}

func TestInstrumentStdoutTelemetry(t *testing.T) {
	restoreDefault(t)
	var buf bytes.Buffer

	shutdown, err := Instrument(context.Background(), Options{
		Level:    slog.LevelInfo,
		Format:   FormatText,
		Exporter: ExporterStdout,
		Writer:   &buf,
	})
	require.NoError(t, err)

	slog.Info("exported line")
	require.NoError(t, shutdown(context.Background()))

	out := buf.String()
	// once from the text handler, once from the exporter
	assert.Equal(t, 2, strings.Count(out, "exported line"))
}

func TestInstrumentErrors(t *testing.T) {
	restoreDefault(t)

	_, err := Instrument(context.Background(), Options{Format: "xml", Writer: &bytes.Buffer{}})
	require.Error(t, err)

	_, err = Instrument(context.Background(), Options{Format: FormatActions})
	require.Error(t, err)

	_, err = Instrument(context.Background(), Options{Format: FormatText, Exporter: "kafka", Writer: &bytes.Buffer{}})
	require.Error(t, err)
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, minsev.SeverityDebug, severity(slog.LevelDebug))
	assert.Equal(t, minsev.SeverityInfo, severity(slog.LevelInfo))
	assert.Equal(t, minsev.SeverityWarn, severity(slog.LevelWarn))
	assert.Equal(t, minsev.SeverityError, severity(slog.LevelError+4))
}
