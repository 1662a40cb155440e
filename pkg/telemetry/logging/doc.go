// Package logging configures structured logging for the routing layer.
//
// It builds a log/slog logger from configuration (level, format, source
// annotation). Components take scoped child loggers via
// slog.Logger.With("component", ...) so every record carries its origin.
package logging
