// jsonlog.go - Structured logging with an optional JSON output mode.
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// LogLevel represents the severity of a log entry.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var levelOrder = map[LogLevel]int{
	LogLevelDebug: 0,
	LogLevelInfo:  1,
	LogLevelWarn:  2,
	LogLevelError: 3,
}

// Logger writes structured log lines. JSON mode is meant for production;
// the plain key=value form reads better during development.
type Logger struct {
	output     io.Writer
	minLevel   LogLevel
	enableJSON bool
}

type logEntry struct {
	Level   LogLevel       `json:"level"`
	Time    string         `json:"time"`
	Message string         `json:"msg"`
	Fields  map[string]any `json:"fields,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// NewLogger builds a logger from the configured format ("json" or plain) and
// minimum level. Unknown levels fall back to info.
func NewLogger(format, level string) *Logger {
	min := LogLevel(level)
	if _, ok := levelOrder[min]; !ok {
		min = LogLevelInfo
	}
	return &Logger{
		output:     os.Stdout,
		minLevel:   min,
		enableJSON: format == "json",
	}
}

func (l *Logger) log(level LogLevel, msg string, fields map[string]any, err error) {
	if levelOrder[level] < levelOrder[l.minLevel] {
		return
	}

	entry := logEntry{
		Level:   level,
		Time:    time.Now().UTC().Format(time.RFC3339),
		Message: msg,
		Fields:  fields,
	}
	if err != nil {
		entry.Error = err.Error()
	}

	if l.enableJSON {
		data, _ := json.Marshal(entry)
		fmt.Fprintln(l.output, string(data))
		return
	}

	fmt.Fprintf(l.output, "[%s] %s %s", entry.Level, entry.Time, entry.Message)
	for k, v := range entry.Fields {
		fmt.Fprintf(l.output, " %s=%v", k, v)
	}
	if entry.Error != "" {
		fmt.Fprintf(l.output, " error=%s", entry.Error)
	}
	fmt.Fprintln(l.output)
}

func (l *Logger) Debug(msg string, fields map[string]any) {
	l.log(LogLevelDebug, msg, fields, nil)
}

func (l *Logger) Info(msg string, fields map[string]any) {
	l.log(LogLevelInfo, msg, fields, nil)
}

func (l *Logger) Warn(msg string, fields map[string]any) {
	l.log(LogLevelWarn, msg, fields, nil)
}

func (l *Logger) Error(msg string, fields map[string]any, err error) {
	l.log(LogLevelError, msg, fields, err)
}
