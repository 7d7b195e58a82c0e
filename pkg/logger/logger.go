package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// SetupLogger builds the application logger: readable console output for
// local development, production JSON otherwise. An empty level keeps the
// config default.
func SetupLogger(env, level string) *zap.Logger {
	var cfg zap.Config
	if env == "local" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	if level != "" {
		if parsed, err := zapcore.ParseLevel(level); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(parsed)
		}
	}

	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}
