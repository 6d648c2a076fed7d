package ui

import (
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// ThemeEnv selects a named theme when colors are enabled.
const ThemeEnv = "MANDELPART_THEME"

// Theme is a set of ANSI escape sequences, one per role in the output.
type Theme struct {
	Name      string
	Primary   string // headings and the strategy column
	Secondary string // labels, rank roles
	Success   string // "ok" rows and matching digests
	Warning   string // highlighted values
	Error     string // failures and disagreements
	Info      string
	Bold      string
	Underline string
	Reset     string
}

func fg(code int) string { return "\033[38;5;" + strconv.Itoa(code) + "m" }

func ansiTheme(name string, primary, secondary, success, warning, errColor, info int) Theme {
	return Theme{
		Name:      name,
		Primary:   fg(primary),
		Secondary: fg(secondary),
		Success:   fg(success),
		Warning:   fg(warning),
		Error:     fg(errColor),
		Info:      fg(info),
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}
}

var (
	// DarkTheme suits dark terminal backgrounds.
	DarkTheme = ansiTheme("dark", 39, 245, 82, 220, 196, 141)
	// LightTheme suits light terminal backgrounds.
	LightTheme = ansiTheme("light", 27, 240, 28, 130, 124, 54)
	// OrangeTheme is a warm variant of DarkTheme.
	OrangeTheme = ansiTheme("orange", 208, 245, 82, 214, 196, 69)
	// NoColorTheme emits no escape sequences at all.
	NoColorTheme = Theme{Name: "none"}

	themes = map[string]Theme{
		DarkTheme.Name:    DarkTheme,
		LightTheme.Name:   LightTheme,
		OrangeTheme.Name:  OrangeTheme,
		NoColorTheme.Name: NoColorTheme,
	}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// ThemeNames lists the accepted theme names in sorted order.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LookupTheme returns the theme called name.
func LookupTheme(name string) (Theme, bool) {
	t, ok := themes[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// GetCurrentTheme returns the active theme.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme replaces the active theme. Tests use it to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// SetTheme activates the theme called name, falling back to DarkTheme for
// unknown names.
func SetTheme(name string) {
	t, ok := LookupTheme(name)
	if !ok {
		t = DarkTheme
	}
	SetCurrentTheme(t)
}

// InitTheme picks the theme for a run. noColor and a set NO_COLOR variable
// (https://no-color.org/) both disable colors; otherwise ThemeEnv may name
// a theme.
func InitTheme(noColor bool) {
	if _, set := os.LookupEnv("NO_COLOR"); noColor || set {
		SetCurrentTheme(NoColorTheme)
		return
	}
	SetTheme(os.Getenv(ThemeEnv))
}
