// Package platform detects the host OS flavor where it changes how peek
// runs commands or resolves the terminal theme.
package platform

import (
	"os"
	"runtime"
	"strings"
	"sync"
)

// Platform represents the detected platform
type Platform string

const (
	PlatformMacOS   Platform = "macos"
	PlatformLinux   Platform = "linux"
	PlatformWSL     Platform = "wsl"
	PlatformWindows Platform = "windows"
	PlatformUnknown Platform = "unknown"
)

var (
	detectOnce sync.Once
	detected   Platform
)

// Detect returns the current platform, caching the result
func Detect() Platform {
	detectOnce.Do(func() {
		detected = detect(runtime.GOOS, os.Getenv("WSL_DISTRO_NAME"), readProcVersion())
	})
	return detected
}

func readProcVersion() string {
	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return ""
	}
	return string(data)
}

// detect classifies the platform from its raw signals.
func detect(goos, wslDistro, procVersion string) Platform {
	switch goos {
	case "darwin":
		return PlatformMacOS
	case "windows":
		return PlatformWindows
	case "linux":
		if wslDistro != "" || strings.Contains(strings.ToLower(procVersion), "microsoft") {
			return PlatformWSL
		}
		return PlatformLinux
	default:
		return PlatformUnknown
	}
}

// IsWSL returns true if running under Windows Subsystem for Linux
func IsWSL() bool {
	return Detect() == PlatformWSL
}

// Shell returns the default shell and the flag that makes it run a command
// string: "sh -c" everywhere except native Windows ("cmd /c").
func Shell() (name, flag string) {
	if Detect() == PlatformWindows {
		return "cmd", "/c"
	}
	return "sh", "-c"
}

// SupportsSystemTheme reports whether the OS appearance setting can be
// queried. WSL has no desktop session to ask.
func SupportsSystemTheme() bool {
	switch Detect() {
	case PlatformMacOS, PlatformWindows, PlatformLinux:
		return true
	default:
		return false
	}
}

// String returns a human-readable platform name
func (p Platform) String() string {
	switch p {
	case PlatformMacOS:
		return "macOS"
	case PlatformLinux:
		return "Linux"
	case PlatformWSL:
		return "WSL"
	case PlatformWindows:
		return "Windows"
	default:
		return "Unknown"
	}
}
