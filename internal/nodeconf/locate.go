package nodeconf

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
)

// ConfFileName is the daemon's config file name.
const ConfFileName = "anon.conf"

// Locator resolves the daemon config path when none is given explicitly.
type Locator interface {
	Locate() string
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func() string

// Locate calls f.
func (f LocatorFunc) Locate() string { return f() }

// PlatformLocator resolves the daemon's default config path for an OS.
// Zero fields fall back to the running platform.
//
//	Linux:   ~/.anon/anon.conf
//	macOS:   ~/Library/Application Support/Anon/anon.conf
//	Windows: %APPDATA%\Anon\anon.conf
type PlatformLocator struct {
	GOOS    string
	Home    string
	AppData string
}

// DefaultLocator locates the config for the running platform.
var DefaultLocator Locator = PlatformLocator{}

// Locate returns the platform default config path.
func (l PlatformLocator) Locate() string {
	return filepath.Join(l.DataDir(), ConfFileName)
}

// DataDir returns the daemon's default data directory.
func (l PlatformLocator) DataDir() string {
	goos := l.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	home := l.Home
	if home == "" {
		home = xdg.Home
	}

	switch goos {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Anon")
	case "windows":
		appData := l.AppData
		if appData == "" {
			appData = os.Getenv("APPDATA")
		}
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(appData, "Anon")
	default:
		return filepath.Join(home, ".anon")
	}
}
