package logging

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/sirupsen/logrus"
)

// WatermillLogger adapts a logrus entry to watermill.LoggerAdapter.
type WatermillLogger struct {
	entry *logrus.Entry
}

func NewWatermillLogger(entry *logrus.Entry) *WatermillLogger {
	return &WatermillLogger{entry: entry}
}

func (l *WatermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).WithError(err).Error(msg)
}

func (l *WatermillLogger) Info(msg string, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).Info(msg)
}

func (l *WatermillLogger) Debug(msg string, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).Debug(msg)
}

func (l *WatermillLogger) Trace(msg string, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).Trace(msg)
}

func (l *WatermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &WatermillLogger{entry: l.entry.WithFields(logrus.Fields(fields))}
}
