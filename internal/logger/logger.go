// Package logger builds the zap logger shared by the server and the CLI.
package logger

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a production JSON logger, or a console logger when dev is true.
func New(level string, dev bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "parse log level %q", level)
	}

	cfg := zap.NewProductionConfig()
	if dev {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true

	log, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build zap logger")
	}
	return log, nil
}

// GooseAdapter routes goose migration output to zap.
type GooseAdapter struct {
	Log *zap.SugaredLogger
}

// Printf implements goose.Logger.
func (g GooseAdapter) Printf(format string, v ...interface{}) {
	g.Log.Infof(format, v...)
}

// Fatalf implements goose.Logger.
func (g GooseAdapter) Fatalf(format string, v ...interface{}) {
	g.Log.Fatalf(format, v...)
}
