package utils

import (
	"log"
	"os"
)

// Logger leveled logger shared by every service
type Logger struct {
	debugEnabled bool
	debugLogger  *log.Logger
	infoLogger   *log.Logger
	warnLogger   *log.Logger
	errorLogger  *log.Logger
	fatalLogger  *log.Logger
}

// NewLogger creates a new logger; debug lines are emitted only when enabled
func NewLogger(debugEnabled bool) *Logger {
	return &Logger{
		debugEnabled: debugEnabled,
		debugLogger:  log.New(os.Stdout, "DEBUG: ", log.Ldate|log.Ltime|log.Lshortfile),
		infoLogger:   log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile),
		warnLogger:   log.New(os.Stdout, "WARN: ", log.Ldate|log.Ltime|log.Lshortfile),
		errorLogger:  log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile),
		fatalLogger:  log.New(os.Stderr, "FATAL: ", log.Ldate|log.Ltime|log.Lshortfile),
	}
}

// Debug debug log output
func (l *Logger) Debug(msg string) {
	if l.debugEnabled {
		l.debugLogger.Println(msg)
	}
}

// Debugf formatted debug log output
func (l *Logger) Debugf(format string, args ...interface{}) {
	if l.debugEnabled {
		l.debugLogger.Printf(format, args...)
	}
}

// Info info log output
func (l *Logger) Info(msg string) {
	l.infoLogger.Println(msg)
}

// Infof formatted info log output
func (l *Logger) Infof(format string, args ...interface{}) {
	l.infoLogger.Printf(format, args...)
}

// Warn warning log output
func (l *Logger) Warn(msg string) {
	l.warnLogger.Println(msg)
}

// Warnf formatted warning log output
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.warnLogger.Printf(format, args...)
}

// Error error log output
func (l *Logger) Error(msg string) {
	l.errorLogger.Println(msg)
}

// Errorf formatted error log output
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.errorLogger.Printf(format, args...)
}

// Fatal fatal log output, exits the process
func (l *Logger) Fatal(msg string) {
	l.fatalLogger.Fatal(msg)
}

// Fatalf formatted fatal log output, exits the process
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.fatalLogger.Fatalf(format, args...)
}
