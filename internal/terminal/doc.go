package terminal

// Package terminal is the line-oriented front end. A Session reads commands
// and URLs from an input stream, starts jobs on the shared orchestrator and
// renders their progress and result on its own goroutine.
