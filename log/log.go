//  Copyright (c) 2014 Couchbase, Inc.

// Package log supplies leveled logging for mpool packages. Applications
// can integrate their own logging by supplying an object implementing the
// Logger interface to SetLogger, else a default logger writing to console
// is used.
package log

import "io"
import "os"
import "fmt"
import "sync"
import "time"
import "strings"

func init() {
	setts := map[string]interface{}{
		"log.level": "info",
		"log.file":  "",
	}
	SetLogger(nil, setts)
}

// Logger interface for mpool logging.
type Logger interface {
	SetLogLevel(string)
	Fatalf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Verbosef(format string, v ...interface{})
	Debugf(format string, v ...interface{})
	Tracef(format string, v ...interface{})
	Printlf(loglevel LogLevel, format string, v ...interface{})
}

// LogLevel defines mpool log level.
type LogLevel int

const (
	logLevelIgnore LogLevel = iota + 1
	logLevelFatal
	logLevelError
	logLevelWarn
	logLevelInfo
	logLevelVerbose
	logLevelDebug
	logLevelTrace
)

var log Logger // object used by mpool components for logging.

// SetLogger to integrate mpool logging with application logging.
// Importing this package will initialize the logger with info level
// logging to console. Settings:
//
// "log.level" (string, default: "info")
//		One of ignore, fatal, error, warn, info, verbose, debug, trace.
//
// "log.file" (string, default: "")
//		Append log lines to this file, empty string logs to stdout.
func SetLogger(logger Logger, setts map[string]interface{}) Logger {
	if logger != nil {
		log = logger
		return log
	}

	level, logfile := logLevelInfo, ""
	if val, ok := setts["log.level"]; ok {
		level = string2logLevel(val.(string))
	}
	if val, ok := setts["log.file"]; ok {
		logfile = val.(string)
	}

	var err error
	var logfd io.Writer = os.Stdout
	if logfile != "" {
		flags := os.O_RDWR | os.O_APPEND | os.O_CREATE
		if logfd, err = os.OpenFile(logfile, flags, 0660); err != nil {
			panic(err)
		}
	}
	log = &defaultLogger{level: level, output: logfd}
	return log
}

// defaultLogger with default log-file as os.Stdout and,
// default log-level as logLevelInfo. Writes are serialized so that
// lines from concurrent goroutines are not interleaved.
type defaultLogger struct {
	mu     sync.Mutex
	level  LogLevel
	output io.Writer
}

func (l *defaultLogger) SetLogLevel(level string) {
	l.mu.Lock()
	l.level = string2logLevel(level)
	l.mu.Unlock()
}

func (l *defaultLogger) Fatalf(format string, v ...interface{}) {
	l.Printlf(logLevelFatal, format, v...)
}

func (l *defaultLogger) Errorf(format string, v ...interface{}) {
	l.Printlf(logLevelError, format, v...)
}

func (l *defaultLogger) Warnf(format string, v ...interface{}) {
	l.Printlf(logLevelWarn, format, v...)
}

func (l *defaultLogger) Infof(format string, v ...interface{}) {
	l.Printlf(logLevelInfo, format, v...)
}

func (l *defaultLogger) Verbosef(format string, v ...interface{}) {
	l.Printlf(logLevelVerbose, format, v...)
}

func (l *defaultLogger) Debugf(format string, v ...interface{}) {
	l.Printlf(logLevelDebug, format, v...)
}

func (l *defaultLogger) Tracef(format string, v ...interface{}) {
	l.Printlf(logLevelTrace, format, v...)
}

func (l *defaultLogger) Printlf(level LogLevel, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.canlog(level) {
		ts := time.Now().Format("2006-01-02T15:04:05.999Z-07:00")
		fmt.Fprintf(l.output, ts+" ["+level.String()+"] "+format, v...)
	}
}

func (l *defaultLogger) canlog(level LogLevel) bool {
	return level <= l.level
}

func (l LogLevel) String() string {
	switch l {
	case logLevelIgnore:
		return "Ignor"
	case logLevelFatal:
		return "Fatal"
	case logLevelError:
		return "Error"
	case logLevelWarn:
		return "Warng"
	case logLevelInfo:
		return "Infom"
	case logLevelVerbose:
		return "Verbs"
	case logLevelDebug:
		return "Debug"
	case logLevelTrace:
		return "Trace"
	}
	panic("unexpected log level") // should never reach here
}

func string2logLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "ignore":
		return logLevelIgnore
	case "fatal":
		return logLevelFatal
	case "error":
		return logLevelError
	case "warn":
		return logLevelWarn
	case "info":
		return logLevelInfo
	case "verbose":
		return logLevelVerbose
	case "debug":
		return logLevelDebug
	case "trace":
		return logLevelTrace
	}
	panic(fmt.Errorf("unexpected log level %q", s))
}

// SetLogLevel on the package logger.
func SetLogLevel(level string) {
	log.SetLogLevel(level)
}

// Fatalf log at fatal level, does not exit the program.
func Fatalf(format string, v ...interface{}) {
	log.Printlf(logLevelFatal, format, v...)
}

// Errorf log at error level.
func Errorf(format string, v ...interface{}) {
	log.Printlf(logLevelError, format, v...)
}

// Warnf log at warning level.
func Warnf(format string, v ...interface{}) {
	log.Printlf(logLevelWarn, format, v...)
}

// Infof log at info level.
func Infof(format string, v ...interface{}) {
	log.Printlf(logLevelInfo, format, v...)
}

// Verbosef log at verbose level.
func Verbosef(format string, v ...interface{}) {
	log.Printlf(logLevelVerbose, format, v...)
}

// Debugf log at debug level.
func Debugf(format string, v ...interface{}) {
	log.Printlf(logLevelDebug, format, v...)
}

// Tracef log at trace level.
func Tracef(format string, v ...interface{}) {
	log.Printlf(logLevelTrace, format, v...)
}
