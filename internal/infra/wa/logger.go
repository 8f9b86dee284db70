package wa

import (
	walog "go.mau.fi/whatsmeow/util/log"
	"go.uber.org/zap"
)

// zapLogger lets whatsmeow log through the bot's zap logger.
type zapLogger struct {
	l *zap.SugaredLogger
}

// NewLogger adapts logger to whatsmeow's logging interface.
func NewLogger(logger *zap.Logger, module string) walog.Logger {
	return &zapLogger{l: logger.Named(module).Sugar()}
}

func (z *zapLogger) Warnf(msg string, args ...interface{})  { z.l.Warnf(msg, args...) }
func (z *zapLogger) Errorf(msg string, args ...interface{}) { z.l.Errorf(msg, args...) }
func (z *zapLogger) Infof(msg string, args ...interface{})  { z.l.Infof(msg, args...) }
func (z *zapLogger) Debugf(msg string, args ...interface{}) { z.l.Debugf(msg, args...) }

func (z *zapLogger) Sub(module string) walog.Logger {
	return &zapLogger{l: z.l.Named(module)}
}
