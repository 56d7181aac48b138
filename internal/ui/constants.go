package ui

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconError    = "❌"
)

// Text fragments
const (
	ProgressLabelFormat = "%d%%"
)

// List caps
const (
	HistoryUICap = 100
	LogLineCap   = 200
)

// Window sizing
const (
	WindowDefaultWidth  float32 = 760
	WindowDefaultHeight float32 = 520
)
