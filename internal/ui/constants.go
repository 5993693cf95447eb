package ui

import "image/color"

// Window sizing
const (
	WindowWidth  float32 = 560
	WindowHeight float32 = 520

	LogMinHeight float32 = 160
)

// LogMaxLines bounds the log pane
const LogMaxLines = 200

// AccentColor is used for primary actions and focus
var AccentColor = color.RGBA{R: 0, G: 170, B: 255, A: 255}

// Log and status line formats
const (
	StatusPercentFormat = "%s %.0f%%"
	MiddleDotSeparator  = " · "
)
