//
// Copyright (c) 2024, 2025 Oracle and/or its affiliates. All rights reserved.
//
// Licensed under the Universal Permissive License v 1.0 as shown at
//  https://oss.oracle.com/licenses/upl/
//

// Package logger provides logging functionality for the Data API SDK.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
)

// LogLevel defines a set of logging levels used to control logging output.
//
// The logging levels are ordered. The available levels in ascending order are:
//
//	Fine
//	Debug
//	Info
//	Warning
//	Error
//
// Enabling logging at a given level also enables logging at all higher levels.
// For example, if the desired logging level is set to Debug, messages of Debug
// level, as well as Info, Warning and Error levels are all logged.
//
// In addition there is a level Off that can be used to turn off logging.
type LogLevel int

const (
	// Fine represents a level used to log tracing messages, including
	// per-request lines with URL, headers and payload.
	Fine LogLevel = 10

	// Debug represents a level used to log debug messages.
	Debug LogLevel = 20

	// Info represents a level used to log informative messages.
	Info LogLevel = 30

	// Warning represents a level used to log warning messages, including
	// warnings reported by the API inside successful responses.
	Warning LogLevel = 40

	// Error represents a level used to log error messages.
	Error LogLevel = 50

	// Off turns off logging.
	Off LogLevel = 99
)

// String returns a string representation for the log level.
//
// This implements the fmt.Stringer interface.
func (level LogLevel) String() string {
	switch level {
	case Fine:
		return "Fine"
	case Debug:
		return "Debug"
	case Info:
		return "Info"
	case Warning:
		return "Warning"
	case Error:
		return "Error"
	case Off:
		return "Off"
	default:
		return "N/A"
	}
}

// Logger is a wrapper for log.Logger, adding capabilities to control the
// desired level of messages to log and whether the log entry time is
// displayed in local time zone or UTC.
type Logger struct {
	logger *log.Logger

	// level specifies the desired logging level.
	level LogLevel

	// timezone is the suffix displayed for log entry time.
	// It is empty when using local time zone, "UTC " when using UTC time.
	timezone string
}

// New creates a logger that writes messages of the specified logging level
// to the specified io.Writer. If useLocalTime is set to false, the log entry
// displays UTC time.
//
// If the specified level is Off or not an available value, New returns nil,
// which represents a logger with logging disabled. All Logger methods are
// safe to call on a nil receiver.
func New(out io.Writer, level LogLevel, useLocalTime bool) *Logger {
	if out == nil {
		return nil
	}

	switch level {
	case Fine, Debug, Info, Warning, Error:
	default:
		return nil
	}

	var tz string
	flag := log.LstdFlags | log.Lmicroseconds
	if !useLocalTime {
		flag |= log.LUTC
		tz = "UTC "
	}

	return &Logger{
		level:    level,
		logger:   log.New(out, "", flag),
		timezone: tz,
	}
}

// Fine writes the specified message to the logger if the desired logging
// level is set to Fine.
//
// The arguments for the logging message are handled in the manner of fmt.Printf.
func (l *Logger) Fine(messageFormat string, messageArgs ...interface{}) {
	l.Log(Fine, messageFormat, messageArgs...)
}

// Debug writes the specified message to the logger if the desired logging
// level is set to Debug or lower.
//
// The arguments for the logging message are handled in the manner of fmt.Printf.
func (l *Logger) Debug(messageFormat string, messageArgs ...interface{}) {
	l.Log(Debug, messageFormat, messageArgs...)
}

// Info writes the specified message to the logger if the desired logging
// level is set to Info or lower.
//
// The arguments for the logging message are handled in the manner of fmt.Printf.
func (l *Logger) Info(messageFormat string, messageArgs ...interface{}) {
	l.Log(Info, messageFormat, messageArgs...)
}

// Warning writes the specified message to the logger if the desired logging
// level is set to Warning or lower.
//
// The arguments for the logging message are handled in the manner of fmt.Printf.
func (l *Logger) Warning(messageFormat string, messageArgs ...interface{}) {
	l.Log(Warning, messageFormat, messageArgs...)
}

// Error writes the specified message to the logger if the desired logging
// level is set to Error or lower.
//
// The arguments for the logging message are handled in the manner of fmt.Printf.
func (l *Logger) Error(messageFormat string, messageArgs ...interface{}) {
	l.Log(Error, messageFormat, messageArgs...)
}

// Log writes the specified message to the logger if the specified logging
// level is the same as or higher than the logger's desired level.
//
// The arguments for the logging message are handled in the manner of fmt.Printf.
func (l *Logger) Log(level LogLevel, messageFormat string, messageArgs ...interface{}) {
	if l == nil || level == Off || l.level > level {
		return
	}

	l.logger.Print(l.timezone+label(level), fmt.Sprintf(messageFormat, messageArgs...))
}

// LogWithFn calls the function fn if the specified logging level is the same
// as or higher than the logger's desired level, and writes the message
// returned from fn to the logger.
//
// This is used for messages that are expensive to build, such as normalized
// payload dumps, so that the cost is only paid when the level is enabled.
func (l *Logger) LogWithFn(level LogLevel, fn func() string) {
	if l == nil || level == Off || l.level > level {
		return
	}

	l.logger.Print(l.timezone+label(level), fn())
}

// label returns a label for the specified logging level used in log entries.
func label(level LogLevel) string {
	switch level {
	case Fine:
		return "[FINE]  "
	case Debug:
		return "[DEBUG] "
	case Info:
		return "[INFO]  "
	case Warning:
		return "[WARN]  "
	case Error:
		return "[ERROR] "
	default:
		return ""
	}
}

// DefaultLogger represents a default logger that writes warning and higher
// priority events to stderr.
var DefaultLogger *Logger = New(os.Stderr, Warning, false)
