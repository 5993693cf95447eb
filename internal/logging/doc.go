package logging

// Package logging builds the process slog.Logger on top of a tint handler.
