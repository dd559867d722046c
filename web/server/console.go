package server

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ConsoleMessage is a log entry forwarded to the browser console
type ConsoleMessage struct {
	Message   string                 `json:"message"`
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// consoleCore is a zapcore.Core that sends entries to a channel. Sends never block; when the
// channel is full the entry is dropped.
type consoleCore struct {
	zapcore.LevelEnabler
	fields []zapcore.Field
	out    chan<- ConsoleMessage
}

// NewConsoleLogger returns a logger writing to base and, at info level and above, to out
func NewConsoleLogger(base *zap.Logger, out chan<- ConsoleMessage) *zap.Logger {
	console := &consoleCore{LevelEnabler: zapcore.InfoLevel, out: out}
	return zap.New(zapcore.NewTee(base.Core(), console))
}

func (c *consoleCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = append(append([]zapcore.Field(nil), c.fields...), fields...)
	return &clone
}

func (c *consoleCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *consoleCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}

	msg := ConsoleMessage{
		Message:   entry.Message,
		Timestamp: entry.Time,
		Level:     entry.Level.String(),
		Fields:    enc.Fields,
	}

	select {
	case c.out <- msg:
	default:
	}
	return nil
}

func (c *consoleCore) Sync() error {
	return nil
}
