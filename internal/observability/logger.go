package observability

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type ctxKey string

const (
	ctxKeyRequestID ctxKey = "request_id"
)

// basic global logger, JSON to stdout until Init says otherwise.
var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Init configures the global logger. Development gets a console writer.
func Init(development bool, level string) {
	var out io.Writer = os.Stdout
	if development {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	logger = zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// SetOutput replaces the global logger, mostly for tests and the CLI.
func SetOutput(w io.Writer, lvl zerolog.Level) {
	logger = zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

func Logger() *zerolog.Logger {
	return &logger
}

// WithFields returns a logger with additional string fields.
func WithFields(kv map[string]string) zerolog.Logger {
	ctx := logger.With()
	for k, v := range kv {
		ctx = ctx.Str(k, v)
	}
	return ctx.Logger()
}

// WithRequestID stores a request_id in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, requestID)
}

// LoggerFromContext adds request_id if present.
func LoggerFromContext(ctx context.Context) *zerolog.Logger {
	reqID, _ := ctx.Value(ctxKeyRequestID).(string)
	if reqID == "" {
		return &logger
	}
	l := logger.With().Str("request_id", reqID).Logger()
	return &l
}
