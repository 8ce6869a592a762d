package logging

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/masq"
)

var (
	mu            sync.RWMutex
	defaultLogger = newConsoleLogger()
)

// newConsoleLogger builds the fallback console logger used before the CLI
// configures logging.
func newConsoleLogger() *slog.Logger {
	return slog.New(clog.New(
		clog.WithWriter(os.Stderr),
		clog.WithLevel(slog.LevelInfo),
		clog.WithReplaceAttr(Redactor()),
	))
}

// Redactor masks secret material (private keys, signed payloads) so it never
// reaches log output regardless of handler.
func Redactor() func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(
		masq.WithFieldName("PrivateKey"),
		masq.WithFieldName("private_key"),
		masq.WithFieldName("Raw"),
		masq.WithFieldPrefix("secret_"),
	)
}

// Default returns the process-wide logger.
func Default() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the process-wide logger.
func SetDefault(logger *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = logger
}

type ctxLoggerKey struct{}

// With returns a context carrying the given logger.
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, logger)
}

// From returns the logger carried by the context, or the default logger.
func From(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxLoggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return Default()
}
