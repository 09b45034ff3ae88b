package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logging interface used across the pipeline.
// Each call carries a short event tag and an optional payload object.
type Logger interface {
	DebugObj(msg, event string, obj map[string]any)
	InfoObj(msg, event string, obj map[string]any)
	WarnObj(msg, event string, obj map[string]any)
	ErrorObj(msg, event string, obj map[string]any)
}

type zapLogger struct {
	log *zap.Logger
}

// New builds a console logger writing to stderr. Verbose enables debug
// output; the default level is info.
func New(verbose bool) Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)

	return &zapLogger{log: zap.New(core)}
}

func (l *zapLogger) DebugObj(msg, event string, obj map[string]any) {
	l.log.Debug(msg, fields(event, obj)...)
}

func (l *zapLogger) InfoObj(msg, event string, obj map[string]any) {
	l.log.Info(msg, fields(event, obj)...)
}

func (l *zapLogger) WarnObj(msg, event string, obj map[string]any) {
	l.log.Warn(msg, fields(event, obj)...)
}

func (l *zapLogger) ErrorObj(msg, event string, obj map[string]any) {
	l.log.Error(msg, fields(event, obj)...)
}

func fields(event string, obj map[string]any) []zap.Field {
	fs := make([]zap.Field, 0, len(obj)+1)
	fs = append(fs, zap.String("event", event))
	for k, v := range obj {
		fs = append(fs, zap.Any(k, v))
	}
	return fs
}

// NopLogger discards all log output.
type NopLogger struct{}

func (NopLogger) DebugObj(string, string, map[string]any) {}
func (NopLogger) InfoObj(string, string, map[string]any)  {}
func (NopLogger) WarnObj(string, string, map[string]any)  {}
func (NopLogger) ErrorObj(string, string, map[string]any) {}
