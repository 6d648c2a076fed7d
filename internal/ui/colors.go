package ui

// Color accessors read the active theme on every call, so switching themes
// takes effect immediately for all callers.

// ColorReset clears all formatting.
func ColorReset() string { return GetCurrentTheme().Reset }

// ColorRed is used for errors.
func ColorRed() string { return GetCurrentTheme().Error }

// ColorGreen is used for success.
func ColorGreen() string { return GetCurrentTheme().Success }

// ColorYellow is used for warnings and highlighted values.
func ColorYellow() string { return GetCurrentTheme().Warning }

// ColorBlue is the primary accent.
func ColorBlue() string { return GetCurrentTheme().Primary }

// ColorMagenta is used for informational text.
func ColorMagenta() string { return GetCurrentTheme().Info }

// ColorCyan is used for labels and secondary text.
func ColorCyan() string { return GetCurrentTheme().Secondary }

// ColorBold starts bold text.
func ColorBold() string { return GetCurrentTheme().Bold }

// ColorUnderline starts underlined text.
func ColorUnderline() string { return GetCurrentTheme().Underline }
