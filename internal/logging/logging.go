// Package logging builds the zap logger used across tierscope.
package logging

import (
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/tierscope/internal/model"
)

// New builds a console or json logger writing to stderr
func New(cfg model.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	switch strings.ToLower(cfg.Format) {
	case "", "console":
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.DisableStacktrace = true
	case "json":
		zapCfg = zap.NewProductionConfig()
	default:
		return nil, eris.Errorf("logging: unknown format %q (supported: console, json)", cfg.Format)
	}

	levelText := cfg.Level
	if levelText == "" {
		levelText = "info"
	}
	level, err := zapcore.ParseLevel(levelText)
	if err != nil {
		return nil, eris.Wrap(err, "logging: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, eris.Wrap(err, "logging: build logger")
	}
	return logger, nil
}
