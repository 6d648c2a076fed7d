package ui

import (
	"os"
	"strings"
	"testing"
)

func TestInitThemeNoColor(t *testing.T) {
	saved := GetCurrentTheme()
	t.Cleanup(func() { SetCurrentTheme(saved) })

	InitTheme(true)
	if ColorRed() != "" || ColorReset() != "" {
		t.Error("no-color theme must produce empty escape codes")
	}
	if CurrentStyles().Title.Render("x") != "x" {
		t.Error("no-color styles must not decorate text")
	}
}

func TestInitThemeRespectsNoColorEnv(t *testing.T) {
	saved := GetCurrentTheme()
	t.Cleanup(func() { SetCurrentTheme(saved) })

	t.Setenv("NO_COLOR", "1")
	InitTheme(false)
	if GetCurrentTheme().Name != "none" {
		t.Errorf("theme = %q, want none", GetCurrentTheme().Name)
	}
}

func TestSetTheme(t *testing.T) {
	saved := GetCurrentTheme()
	t.Cleanup(func() { SetCurrentTheme(saved) })

	for _, name := range []string{"dark", "light", "orange", "none"} {
		SetTheme(name)
		if got := GetCurrentTheme().Name; got != name {
			t.Errorf("SetTheme(%q) -> %q", name, got)
		}
	}
	SetTheme("neon")
	if GetCurrentTheme().Name != "dark" {
		t.Error("unknown theme must fall back to dark")
	}
	if ColorGreen() != DarkTheme.Success {
		t.Error("ColorGreen must follow the active theme")
	}
}

func TestTable(t *testing.T) {
	saved := GetCurrentTheme()
	t.Cleanup(func() { SetCurrentTheme(saved) })
	SetTheme("none")

	got := Table([]string{"Rank", "Rows"}, [][]string{{"0", "4"}, {"12", "3"}})
	want := "Rank  Rows\n0     4\n12    3"
	if got != want {
		t.Errorf("Table =\n%s\nwant\n%s", got, want)
	}
	if strings.Count(got, "\n") != 2 {
		t.Errorf("unexpected line count in %q", got)
	}
}

func TestInitThemeFromEnv(t *testing.T) {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		t.Skip("NO_COLOR is set in the environment")
	}
	saved := GetCurrentTheme()
	t.Cleanup(func() { SetCurrentTheme(saved) })

	t.Setenv(ThemeEnv, " Light ")
	InitTheme(false)
	if GetCurrentTheme().Name != "light" {
		t.Errorf("theme = %q, want light", GetCurrentTheme().Name)
	}

	t.Setenv(ThemeEnv, "")
	InitTheme(false)
	if GetCurrentTheme().Name != "dark" {
		t.Errorf("empty %s must select dark, got %q", ThemeEnv, GetCurrentTheme().Name)
	}
}

func TestThemeNames(t *testing.T) {
	got := strings.Join(ThemeNames(), ",")
	if got != "dark,light,none,orange" {
		t.Errorf("ThemeNames = %s", got)
	}
	if DarkTheme.Primary != "\033[38;5;39m" {
		t.Errorf("DarkTheme.Primary = %q", DarkTheme.Primary)
	}
}
