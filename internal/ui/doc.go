package ui

// Package ui contains the Fyne-based desktop front end. It plays the same
// consumer role as the terminal and web front ends: submit one request to the
// orchestrator, follow its events on a worker goroutine and marshal every
// widget update onto the Fyne thread with fyne.Do.
