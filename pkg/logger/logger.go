package logger

import (
	"os"
	"path/filepath"

	"github.com/Payphone-Digital/bilemo/config"
	"github.com/Payphone-Digital/bilemo/internal/constants"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	Logger = zap.NewNop()
	Sugar  = Logger.Sugar()
)

// InitLogger initializes Zap logger with configuration
func InitLogger(cfg *config.Config) error {
	zapLevel := levelFor(cfg)

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	encoder := zapcore.NewJSONEncoder(encoderConfig)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), zapLevel),
	}

	// File outputs are optional, containers usually only want stdout
	if cfg.Log.Path != "" {
		if err := os.MkdirAll(cfg.Log.Path, 0755); err != nil {
			return err
		}

		infoFile, err := os.OpenFile(filepath.Join(cfg.Log.Path, "info.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}

		errorFile, err := os.OpenFile(filepath.Join(cfg.Log.Path, "error.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			infoFile.Close()
			return err
		}

		cores = append(cores,
			zapcore.NewCore(encoder, zapcore.AddSync(infoFile), zapLevel),
			zapcore.NewCore(encoder, zapcore.AddSync(errorFile), zapcore.ErrorLevel),
		)
	}

	SetLogger(zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)))
	return nil
}

func levelFor(cfg *config.Config) zapcore.Level {
	if cfg.Log.Level != "" {
		if lvl, err := zapcore.ParseLevel(cfg.Log.Level); err == nil {
			return lvl
		}
	}

	switch cfg.App.Environment {
	case constants.EnvProduction, constants.EnvStaging:
		return zapcore.InfoLevel
	case constants.EnvTest:
		return zapcore.WarnLevel
	default:
		return zapcore.DebugLevel
	}
}

// SetLogger swaps the global logger, tests use it with zaptest/observer
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	Logger = l
	Sugar = l.Sugar()
}

// GetLogger returns the structured logger
func GetLogger() *zap.Logger {
	return Logger
}

// GetSugarLogger returns the sugared logger
func GetSugarLogger() *zap.SugaredLogger {
	return Sugar
}

// Sync syncs all logs (call this before application exits)
func Sync() {
	_ = Logger.Sync()
}

// LogPanic logs panic and recovers
func LogPanic(recovered interface{}) {
	Logger.Error("Panic recovered",
		zap.Any("panic", recovered),
		zap.Stack("stack"),
	)
}
