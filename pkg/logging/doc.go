// Package logging provides the structured logging facade for composer.
//
// All composer components log through the subsystem-first helpers
// (Debug, Info, Warn, Error) so that every record carries a "subsystem"
// attribute identifying which component produced it. The facade is backed
// by log/slog; Init selects the handler (text for CLI use, JSON when
// serving) and the minimum level.
package logging
