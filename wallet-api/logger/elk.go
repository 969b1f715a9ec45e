package logger

import (
	"fmt"
	"net"
	"strings"

	logstash "github.com/bshuster-repo/logrus-logstash-hook"
	"github.com/sirupsen/logrus"
)

type ELKLogger struct {
	logger *logrus.Logger
}

var _ Logger = (*ELKLogger)(nil)

// NewELKLogger ships every entry to the logstash endpoint at address, tagged with service.
func NewELKLogger(service, address string) (Logger, error) {
	logger := logrus.New()
	conn, err := net.Dial("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to logstash at %s: %w", address, err)
	}
	hook := logstash.New(conn, logstash.DefaultFormatter(logrus.Fields{
		"service": service,
	}))
	logger.Hooks.Add(hook)
	return &ELKLogger{logger: logger}, nil
}

func (l *ELKLogger) SetLogLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		l.logger.SetLevel(logrus.DebugLevel)
	case "info":
		l.logger.SetLevel(logrus.InfoLevel)
	case "warn":
		l.logger.SetLevel(logrus.WarnLevel)
	case "error":
		l.logger.SetLevel(logrus.ErrorLevel)
	case "fatal":
		l.logger.SetLevel(logrus.FatalLevel)
	default:
		l.logger.SetLevel(logrus.InfoLevel)
	}
}

func (l *ELKLogger) Info(msg string, fields ...Field) {
	l.logger.WithFields(l.fmtFields(fields...)).Info(msg)
}

func (l *ELKLogger) Warn(msg string, fields ...Field) {
	l.logger.WithFields(l.fmtFields(fields...)).Warn(msg)
}

func (l *ELKLogger) Error(msg string, fields ...Field) {
	l.logger.WithFields(l.fmtFields(fields...)).Error(msg)
}

func (l *ELKLogger) Fatal(msg string, fields ...Field) {
	l.logger.WithFields(l.fmtFields(fields...)).Fatal(msg)
}

func (l *ELKLogger) Debug(msg string, fields ...Field) {
	l.logger.WithFields(l.fmtFields(fields...)).Debug(msg)
}

func (l *ELKLogger) Infof(format string, args ...interface{}) {
	l.logger.Infof(format, args...)
}

func (l *ELKLogger) Warnf(format string, args ...interface{}) {
	l.logger.Warnf(format, args...)
}

func (l *ELKLogger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf(format, args...)
}

func (l *ELKLogger) Fatalf(format string, args ...interface{}) {
	l.logger.Fatalf(format, args...)
}

func (l *ELKLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf(format, args...)
}

func (l *ELKLogger) SweetenFields(args []interface{}) []Field {
	return sweetenFields(args)
}

func (l *ELKLogger) fmtFields(fields ...Field) logrus.Fields {
	fieldsMap := make(logrus.Fields, len(fields))
	for _, field := range fields {
		fieldsMap[field.Key] = field.Val
	}
	return fieldsMap
}
