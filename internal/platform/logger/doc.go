// Package logger provides structured logging for the application using
// log/slog. It configures a JSON handler from the server configuration,
// scrubs sensitive attribute values through the redact package and carries
// request-scoped loggers through context.Context.
package logger
