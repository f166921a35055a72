// Package logging builds the process-wide structured logger used by cmd/als,
// a leveled zap logger so default and verbose (-v) output share one call
// site instead of ad hoc fmt.Printf calls.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a console-encoded zap.SugaredLogger writing to stderr so
// stdout stays reserved for command output (compressed documents, stats,
// decoded tables). verbose lowers the level from Info to Debug.
func New(verbose bool) *zap.SugaredLogger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = ""

	logger, err := cfg.Build()
	if err != nil {
		// cfg is a fixed, known-valid literal; Build only fails on bad
		// paths or encoder config, neither of which varies here.
		panic(err)
	}
	return logger.Sugar()
}
