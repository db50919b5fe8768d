package logger

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gruzdev-dev/codex-recipes/configs"
)

type ctxKey struct{}

const requestIDKey = "requestID"

// New builds the application logger with the level taken from LOG_LEVEL.
// An unparsable level falls back to info.
func New(cfg *configs.Config) *logrus.Logger {
	log := logrus.New()
	formatter := new(logrus.TextFormatter)
	formatter.TimestampFormat = "2006-01-02 15:04:05"
	formatter.FullTimestamp = true
	log.SetFormatter(formatter)

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.WithError(err).Warnf("invalid log level %q, using info", cfg.Log.Level)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

// WithRequest attaches a request scoped entry with a fresh request ID, unless
// the context already carries one.
func WithRequest(ctx context.Context, base logrus.FieldLogger) (context.Context, logrus.FieldLogger) {
	if rlog, ok := ctx.Value(ctxKey{}).(logrus.FieldLogger); ok {
		return ctx, rlog
	}
	rlog := base.WithField(requestIDKey, uuid.New().String())
	return context.WithValue(ctx, ctxKey{}, rlog), rlog
}

// FromContext returns the request logger, or the standard logger outside a request.
func FromContext(ctx context.Context) logrus.FieldLogger {
	if rlog, ok := ctx.Value(ctxKey{}).(logrus.FieldLogger); ok {
		return rlog
	}
	return logrus.StandardLogger()
}
