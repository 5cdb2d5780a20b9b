// Package slogx carries small slog.Attr helpers shared by the library and
// the examples.
package slogx

import (
	"log/slog"
)

// KeyLoggerName is the attribute key identifying which component logged.
const KeyLoggerName = "logger"

// Error returns a slog.Attr with key "error" holding the error's message.
func Error(err error) slog.Attr {
	return slog.String("error", err.Error())
}

// LoggerName returns the component-name attribute under KeyLoggerName.
func LoggerName(name string) slog.Attr {
	return slog.String(KeyLoggerName, name)
}
