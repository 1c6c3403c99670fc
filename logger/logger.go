package logger

import (
	"log"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// LoggerEnabled silences every DefaultLogger when false.
var LoggerEnabled = true

type DefaultLogger struct {
	name string
	out  *log.Logger
}

func NewDefaultLogger(name string) *DefaultLogger {
	return &DefaultLogger{name: name}
}

// Named returns a logger for a sub component, e.g. "decorator.repeat".
func (d *DefaultLogger) Named(child string) *DefaultLogger {
	if child == "" {
		return d
	}
	name := child
	if d.name != "" {
		name = d.name + "." + child
	}
	return &DefaultLogger{name: name, out: d.out}
}

// WithOutput routes log lines to out instead of the standard logger.
func (d *DefaultLogger) WithOutput(out *log.Logger) *DefaultLogger {
	d.out = out
	return d
}

func (d *DefaultLogger) Debug(format string, args ...any) {
	d.print("DEBUG", format, args...)
}

func (d *DefaultLogger) Info(format string, args ...any) {
	d.print("INFO", format, args...)
}

func (d *DefaultLogger) Error(format string, args ...any) {
	d.print("ERROR", format, args...)
}

func (d *DefaultLogger) print(level, format string, args ...any) {
	if !LoggerEnabled {
		return
	}
	line := "[" + level + "] " + d.name + " | " + format + "\n"
	if d.out != nil {
		d.out.Printf(line, args...)
		return
	}
	log.Printf(line, args...)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Debug(string, ...any) {}
func (Nop) Info(string, ...any)  {}
func (Nop) Error(string, ...any) {}

// Or returns l, or a DefaultLogger named name when l is nil.
func Or(l Logger, name string) Logger {
	if l != nil {
		return l
	}
	return NewDefaultLogger(name)
}
