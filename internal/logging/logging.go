// Package logging builds the zap logger used across svnquery.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New constructs a logger writing to stderr. level is one of debug, info,
// warn, error; format is "console" or "json".
func New(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("logging: invalid level %q: %w", level, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	switch format {
	case "console":
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encoderCfg)
	case "json":
		enc = zapcore.NewJSONEncoder(encoderCfg)
	default:
		return nil, fmt.Errorf("logging: unknown format %q", format)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(os.Stderr), lvl)
	return zap.New(core), nil
}
