package logging

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"strings"

	"github.com/fatih/color"
)

// writer is an io.Writer that splits its input stream into lines and writes
// those lines to an underlying logger.
type writer struct {
	// callback is the logging callback.
	callback func(string)
	// buffer is any incomplete line fragment left over from a previous write.
	buffer []byte
}

// trimCarriageReturn trims any single trailing carriage return from the end
// of a byte slice.
func trimCarriageReturn(buffer []byte) []byte {
	if len(buffer) > 0 && buffer[len(buffer)-1] == '\r' {
		return buffer[:len(buffer)-1]
	}
	return buffer
}

// Write implements io.Writer.Write.
func (w *writer) Write(buffer []byte) (int, error) {
	w.buffer = append(w.buffer, buffer...)

	var processed int
	remaining := w.buffer
	for {
		index := bytes.IndexByte(remaining, '\n')
		if index == -1 {
			break
		}
		w.callback(string(trimCarriageReturn(remaining[:index])))
		processed += index + 1
		remaining = remaining[index+1:]
	}

	if processed > 0 {
		leftover := len(w.buffer) - processed
		if leftover > 0 {
			copy(w.buffer[:leftover], w.buffer[processed:])
		}
		w.buffer = w.buffer[:leftover]
	}

	return len(buffer), nil
}

// Logger is the main logger type. It has the novel property that it still
// functions if nil, but it doesn't log anything. The zero value is a valid
// logger, but (like a nil *Logger) it logs nothing, since its level defaults
// to LevelDisabled; use RootLogger or NewLogger to obtain a logger that
// actually emits output. It is safe for concurrent usage.
type Logger struct {
	// prefix is any prefix specified for the logger.
	prefix string
	// level is the minimum level at which this logger (and its subloggers)
	// emit output. A zero value is LevelDisabled.
	level Level
	// output is the destination for log lines. A nil value defers to the
	// standard library's log package (and hence log.SetOutput).
	output io.Writer
}

// RootLogger is the root logger from which all other loggers derive.
var RootLogger = &Logger{level: LevelInfo}

// NewLogger creates a root logger at the specified level, writing to the
// specified destination.
func NewLogger(level Level, output io.Writer) *Logger {
	return &Logger{level: level, output: output}
}

// Sublogger creates a new sublogger with the specified name.
func (l *Logger) Sublogger(name string) *Logger {
	if l == nil {
		return nil
	}
	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "." + name
	}
	return &Logger{prefix: prefix, level: l.level, output: l.output}
}

// enabled reports whether the logger emits output at the specified level.
func (l *Logger) enabled(level Level) bool {
	if l == nil {
		return false
	}
	return level <= l.level || (level == LevelDebug && debugEnabled)
}

// output the formatted line, either through the standard logger or directly
// to a configured destination.
func (l *Logger) emit(line string) {
	if l.prefix != "" {
		line = fmt.Sprintf("[%s] %s", l.prefix, line)
	}
	if l.output != nil {
		fmt.Fprintln(l.output, line)
		return
	}
	log.Output(4, line)
}

// Print logs information with semantics equivalent to fmt.Print.
func (l *Logger) Print(v ...interface{}) {
	if l.enabled(LevelInfo) {
		l.emit(fmt.Sprint(v...))
	}
}

// Printf logs information with semantics equivalent to fmt.Printf.
func (l *Logger) Printf(format string, v ...interface{}) {
	if l.enabled(LevelInfo) {
		l.emit(fmt.Sprintf(format, v...))
	}
}

// Println logs information with semantics equivalent to fmt.Println.
func (l *Logger) Println(v ...interface{}) {
	if l.enabled(LevelInfo) {
		l.emit(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
	}
}

// Writer returns an io.Writer that writes lines using Println.
func (l *Logger) Writer() io.Writer {
	if l == nil {
		return ioutil.Discard
	}
	return &writer{callback: func(s string) { l.Println(s) }}
}

// Debug logs information with semantics equivalent to fmt.Print, but only if
// debugging is enabled for this logger (or globally via SUBSTRATE_DEBUG).
func (l *Logger) Debug(v ...interface{}) {
	if l.enabled(LevelDebug) {
		l.emit(fmt.Sprint(v...))
	}
}

// Debugf logs information with semantics equivalent to fmt.Printf, gated as
// Debug is.
func (l *Logger) Debugf(format string, v ...interface{}) {
	if l.enabled(LevelDebug) {
		l.emit(fmt.Sprintf(format, v...))
	}
}

// Warn logs a warning, colorized in yellow when writing to a terminal.
func (l *Logger) Warn(err error) {
	if l.enabled(LevelWarn) {
		l.emit(color.YellowString("Warning: %v", err))
	}
}

// Warnf logs a formatted warning message, colorized in yellow.
func (l *Logger) Warnf(format string, v ...interface{}) {
	if l.enabled(LevelWarn) {
		l.emit(color.YellowString("Warning: "+format, v...))
	}
}

// Error logs error information, colorized in red.
func (l *Logger) Error(err error) {
	if l.enabled(LevelError) {
		l.emit(color.RedString("Error: %v", err))
	}
}

// Errorf logs a formatted error message, colorized in red.
func (l *Logger) Errorf(format string, v ...interface{}) {
	if l.enabled(LevelError) {
		l.emit(color.RedString("Error: "+format, v...))
	}
}
