// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and an optional rotating log file,
//   - key-value helpers (DebugKV, InfoKV, WarnKV, ErrorKV).
//
// The installer and the CLI pass a context around and take the logger from it,
// so every message carries the name of the step that produced it.
package logger
