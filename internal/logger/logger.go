package logger

import (
	"fmt"

	"github.com/limaJavier/lptimetabling/internal/config"
	"github.com/limaJavier/lptimetabling/pkg/model"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a zap logger from the log section of the config. Logs go to standard
// error so that timetables written to standard output stay parseable.
func NewLogger(cfg *config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	switch cfg.Format {
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.OutputPaths = []string{"stderr"}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("cannot build logger: %w", err)
	}
	return logger, nil
}

// ModelFields summarizes a built model for structured logging
func ModelFields(built *model.Model) []zap.Field {
	registry := built.Registry()
	fields := []zap.Field{
		zap.Uint64("variables", registry.NumVariables()),
		zap.Uint64("booleans", registry.NumBoolean()),
		zap.Int("constraints", built.NumConstraints()),
	}
	counts := built.CountByKind()
	for _, kind := range model.ConstraintKinds() {
		fields = append(fields, zap.Int(kind.String(), counts[kind]))
	}
	return fields
}
