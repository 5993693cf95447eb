package config

// Package config loads process configuration from a yaml file, the
// environment and an optional .env file, and persists desktop preferences
// through Fyne preferences.
