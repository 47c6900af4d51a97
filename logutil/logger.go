// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package logutil

import (
	"log/slog"
	"time"
)

// ComponentLogger is a slog.Logger bound to one npmkit component. Derived
// loggers keep the component and add attributes for the operation, package
// or command line they describe.
type ComponentLogger struct {
	slogger   *slog.Logger
	component string
	now       func() time.Time
}

// NewLogger creates a logger scoped to a named component.
func NewLogger(component string) *ComponentLogger {
	return &ComponentLogger{
		slogger:   Logger().With("component", component),
		component: component,
		now:       time.Now,
	}
}

func (l *ComponentLogger) derive(args ...any) *ComponentLogger {
	d := *l
	d.slogger = l.slogger.With(args...)
	return &d
}

// WithOperation names the npm operation (install, view, update).
func (l *ComponentLogger) WithOperation(name string) *ComponentLogger {
	return l.derive("operation", name)
}

// WithPackage adds a package spec. An empty spec adds nothing.
func (l *ComponentLogger) WithPackage(spec string) *ComponentLogger {
	if spec == "" {
		return l
	}
	return l.derive("package", spec)
}

// WithFields adds alternating key-value pairs.
func (l *ComponentLogger) WithFields(fields ...any) *ComponentLogger {
	return l.derive(fields...)
}

// Component returns the component name for this logger.
func (l *ComponentLogger) Component() string {
	return l.component
}

// Rejected records input refused by a validation rule. The input is logged
// as given, including when it is empty.
func (l *ComponentLogger) Rejected(input, rule, reason string) {
	l.slogger.Warn("rejected input", "input", input, "rule", rule, "error", reason)
}

// Command logs the start of an external command at debug level. Call Finish
// on the result once the command returns.
func (l *ComponentLogger) Command(line, dir string) *CommandLog {
	l.slogger.Debug("running command", "command", line, "dir", dir)
	return &CommandLog{log: l, line: line, start: l.now()}
}

// CommandLog tracks one running command.
type CommandLog struct {
	log   *ComponentLogger
	line  string
	start time.Time
}

// Finish logs how the command ended and returns how long it ran. A non-nil
// err means the command produced no exit code.
func (c *CommandLog) Finish(code int, err error) time.Duration {
	elapsed := c.log.now().Sub(c.start)
	if err != nil {
		c.log.slogger.Debug("command failed", "command", c.line, "error", err, "duration", elapsed)
		return elapsed
	}
	c.log.slogger.Debug("command finished", "code", code, "duration", elapsed)
	return elapsed
}

func (l *ComponentLogger) Debug(msg string, args ...any) {
	l.slogger.Debug(msg, args...)
}

func (l *ComponentLogger) Info(msg string, args ...any) {
	l.slogger.Info(msg, args...)
}

func (l *ComponentLogger) Warn(msg string, args ...any) {
	l.slogger.Warn(msg, args...)
}

func (l *ComponentLogger) Error(msg string, args ...any) {
	l.slogger.Error(msg, args...)
}
