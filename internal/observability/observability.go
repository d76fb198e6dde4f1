package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	slogmulti "github.com/samber/slog-multi"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/processors/minsev"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"golang.org/x/term"

	"github.com/meshcloud/meshstack-auth/internal/action"
)

// instrumentationName identifies this module as the OpenTelemetry log scope.
const instrumentationName = "github.com/meshcloud/meshstack-auth"

// Log formats.
const (
	FormatAuto    = "auto"
	FormatActions = "actions"
	FormatText    = "text"
	FormatJSON    = "json"
)

// Telemetry exporters.
const (
	ExporterNone     = "none"
	ExporterStdout   = "stdout"
	ExporterOTLPHTTP = "otlphttp"
	ExporterOTLPGRPC = "otlpgrpc"
)

// Options configures Instrument.
type Options struct {
	Level    slog.Level
	Format   string
	Exporter string

	// Host receives records in the actions format and answers GITHUB_ACTIONS for auto detection.
	Host action.Host

	// Writer receives text/json records and stdout telemetry. Defaults to os.Stderr.
	Writer io.Writer
}

// ShutdownFunc flushes and stops telemetry export.
type ShutdownFunc func(context.Context) error

// Instrument installs the default slog logger. The returned ShutdownFunc must
// be called before the process exits to flush exported records.
func Instrument(ctx context.Context, opts Options) (ShutdownFunc, error) {
	if opts.Writer == nil {
		opts.Writer = os.Stderr
	}

	format := opts.Format
	if format == "" || format == FormatAuto {
		format = ResolveFormat(opts.Host, isTerminal(opts.Writer))
	}

	primary, err := newPrimaryHandler(format, opts)
	if err != nil {
		return nil, err
	}

	handler := primary
	shutdown := func(context.Context) error { return nil }

	if opts.Exporter != "" && opts.Exporter != ExporterNone {
		provider, err := newLoggerProvider(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("creating telemetry exporter: %w", err)
		}
		global.SetLoggerProvider(provider)

		// Exporter failures are reported through the primary handler only, never re-exported
		errLogger := slog.New(primary)
		otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
			errLogger.Warn("telemetry export failed", "error", err)
		}))

		handler = slogmulti.Fanout(primary, otelslog.NewHandler(instrumentationName, otelslog.WithLoggerProvider(provider)))
		shutdown = provider.Shutdown
	}

	slog.SetDefault(slog.New(handler).With("run_id", uuid.NewString()))
	return shutdown, nil
}

// ResolveFormat picks the log format for "auto": workflow commands inside
// GitHub Actions, text on a terminal, JSON otherwise.
func ResolveFormat(host action.Host, terminal bool) string {
	if host != nil && host.Getenv("GITHUB_ACTIONS") == "true" {
		return FormatActions
	}
	if terminal {
		return FormatText
	}
	return FormatJSON
}

func newPrimaryHandler(format string, opts Options) (slog.Handler, error) {
	handlerOpts := &slog.HandlerOptions{Level: opts.Level}

	switch format {
	case FormatActions:
		if opts.Host == nil {
			return nil, fmt.Errorf("log format %s requires a host", format)
		}
		// The runner hides ::debug:: lines unless step debugging is enabled
		return action.NewHandler(opts.Host, min(opts.Level, slog.LevelDebug)), nil
	case FormatText:
		return slog.NewTextHandler(opts.Writer, handlerOpts), nil
	case FormatJSON:
		return slog.NewJSONHandler(opts.Writer, handlerOpts), nil
	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}
}

func newLoggerProvider(ctx context.Context, opts Options) (*sdklog.LoggerProvider, error) {
	var (
		exporter sdklog.Exporter
		err      error
	)

	// OTLP endpoints and headers come from the standard OTEL_EXPORTER_OTLP_* variables
	switch opts.Exporter {
	case ExporterStdout:
		exporter, err = stdoutlog.New(stdoutlog.WithWriter(opts.Writer))
	case ExporterOTLPHTTP:
		exporter, err = otlploghttp.New(ctx)
	case ExporterOTLPGRPC:
		exporter, err = otlploggrpc.New(ctx)
	default:
		return nil, fmt.Errorf("unsupported telemetry exporter: %s", opts.Exporter)
	}
	if err != nil {
		return nil, err
	}

	processor := minsev.NewLogProcessor(sdklog.NewBatchProcessor(exporter), severity(opts.Level))
	return sdklog.NewLoggerProvider(sdklog.WithProcessor(processor)), nil
}

// severity maps an slog level onto the closest minsev threshold.
func severity(level slog.Level) minsev.Severity {
	switch {
	case level < slog.LevelInfo:
		return minsev.SeverityDebug
	case level < slog.LevelWarn:
		return minsev.SeverityInfo
	case level < slog.LevelError:
		return minsev.SeverityWarn
	default:
		return minsev.SeverityError
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
