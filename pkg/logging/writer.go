package logging

import (
	"bytes"
	"log"
)

// Writer adapts a Logger to io.Writer, logging each written line at a fixed
// level. It lets components that only accept a *log.Logger, such as
// http.Server.ErrorLog, report through the structured logger.
type Writer struct {
	logger Logger
	level  Level
}

// NewWriter creates a Writer that logs at level.
func NewWriter(logger Logger, level Level) *Writer {
	return &Writer{logger: logger, level: level}
}

// Write logs every non-empty line in p.
func (w *Writer) Write(p []byte) (int, error) {
	for _, line := range bytes.Split(p, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		msg := string(line)
		switch w.level {
		case DebugLevel:
			w.logger.Debug(msg)
		case WarnLevel:
			w.logger.Warn(msg)
		case ErrorLevel, FatalLevel:
			w.logger.Error(msg)
		default:
			w.logger.Info(msg)
		}
	}
	return len(p), nil
}

// StdLogger returns a standard library logger that forwards to logger.
func StdLogger(logger Logger, level Level) *log.Logger {
	return log.New(NewWriter(logger, level), "", 0)
}
