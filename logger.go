package ilink3

import "github.com/sirupsen/logrus"

// Logger is the leveled logging interface the core uses for operational
// tracing (disconnect requests, ignored NotApplied messages, inbound
// messages discarded outside Established). It mirrors the teacher's ServerLogger shape so a
// host application can plug in whatever logger it already has.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// logrusLogger is the default Logger, backed by logrus rather than the
// standard log package so session-layer tracing gets structured fields
// (uuid, connectionId) for free via WithSession below.
type logrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger wraps a *logrus.Logger (or nil, for a sane default) as
// a Logger.
func NewLogrusLogger(base *logrus.Logger) Logger {
	if base == nil {
		base = logrus.New()
	}
	return &logrusLogger{entry: logrus.NewEntry(base)}
}

func (l *logrusLogger) Debug(msg string, args ...interface{}) { l.entry.Debugf(msg, args...) }
func (l *logrusLogger) Info(msg string, args ...interface{})  { l.entry.Infof(msg, args...) }
func (l *logrusLogger) Warn(msg string, args ...interface{})  { l.entry.Warnf(msg, args...) }
func (l *logrusLogger) Error(msg string, args ...interface{}) { l.entry.Errorf(msg, args...) }

// WithSession returns a Logger whose entries are tagged with the
// session's uuid and connection id, used by session.go so every log line
// for a given session is easy to filter on.
func WithSession(l Logger, uuid, connectionID uint64) Logger {
	ll, ok := l.(*logrusLogger)
	if !ok {
		return l
	}
	return &logrusLogger{entry: ll.entry.WithFields(logrus.Fields{
		"uuid":         uuid,
		"connectionId": connectionID,
	})}
}

// NullLogger discards all log messages. Useful for tests and for hosts
// that don't want session-layer tracing.
type NullLogger struct{}

func (NullLogger) Debug(msg string, args ...interface{}) {}
func (NullLogger) Info(msg string, args ...interface{})  {}
func (NullLogger) Warn(msg string, args ...interface{})  {}
func (NullLogger) Error(msg string, args ...interface{}) {}
