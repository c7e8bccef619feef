package entrypoint

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level      string `help:"logging level" default:"info"`
	Format     string `help:"logging format (${enum})" enum:"console,json" default:"json"`
	File       string `help:"write logs to this file with rotation instead of stderr" type:"path"`
	MaxSizeMB  int    `help:"rotate the log file at this size" default:"100"`
	MaxBackups int    `help:"rotated log files to keep" default:"3"`
	MaxAgeDays int    `help:"days to keep rotated log files" default:"28"`
}

// buildLogger returns the configured logger. Level parse failures fall back to info and are
// reported through the deferred log lines.
func buildLogger(cfg LoggingConfig) (*zap.Logger, []string, error) {
	deferredLogs := []string{}

	logConfig := zap.NewProductionConfig()
	if err := logConfig.Level.UnmarshalText([]byte(cfg.Level)); err != nil {
		deferredLogs = append(deferredLogs, err.Error())
	}
	logConfig.Encoding = cfg.Format

	if cfg.File == "" {
		logger, err := logConfig.Build()
		return logger, deferredLogs, errors.Wrap(err, "buildLogger")
	}

	var encoder zapcore.Encoder
	if cfg.Format == "console" {
		encoder = zapcore.NewConsoleEncoder(logConfig.EncoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(logConfig.EncoderConfig)
	}
	sink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	})
	core := zapcore.NewCore(encoder, sink, logConfig.Level)
	return zap.New(core, zap.AddCaller(), zap.ErrorOutput(zapcore.Lock(zapcore.AddSync(sink)))), deferredLogs, nil
}
