package config

import (
	"log/slog"

	dark "github.com/thiagokokada/dark-mode-go"

	"github.com/sjoeboo/peek/internal/logging"
	"github.com/sjoeboo/peek/internal/platform"
)

// Theme names accepted by ui.theme.
const (
	ThemeDark   = "dark"
	ThemeLight  = "light"
	ThemeSystem = "system"
)

func validTheme(name string) bool {
	switch name {
	case ThemeDark, ThemeLight, ThemeSystem:
		return true
	default:
		return false
	}
}

// isDarkMode is swapped in tests.
var isDarkMode = dark.IsDarkMode

// ResolveTheme turns the configured theme into "dark" or "light". "system"
// follows the OS appearance and falls back to dark when it cannot be read.
func ResolveTheme(name string) string {
	switch name {
	case ThemeLight:
		return ThemeLight
	case ThemeSystem:
		if !platform.SupportsSystemTheme() {
			return ThemeDark
		}
		isDark, err := isDarkMode()
		if err != nil {
			logging.ForComponent(logging.CompConfig).Warn("system_theme_unavailable",
				slog.String("error", err.Error()))
			return ThemeDark
		}
		if isDark {
			return ThemeDark
		}
		return ThemeLight
	default:
		return ThemeDark
	}
}
