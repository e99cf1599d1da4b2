package logger

import (
	"go.uber.org/zap"
)

// zapLogger implementation of Logger interface based on zap sugared logger
type zapLogger struct {
	logger *zap.SugaredLogger
}

func (l *zapLogger) Debug(msg string, args ...any) {
	l.logger.Debugw(msg, args...)
}

func (l *zapLogger) Info(msg string, args ...any) {
	l.logger.Infow(msg, args...)
}

func (l *zapLogger) Warn(msg string, args ...any) {
	l.logger.Warnw(msg, args...)
}

func (l *zapLogger) Error(msg string, args ...any) {
	l.logger.Errorw(msg, args...)
}

// With returns a logger with additional key-value pairs
func (l *zapLogger) With(args ...any) Logger {
	return &zapLogger{logger: l.logger.With(args...)}
}
