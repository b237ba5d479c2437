// ABOUTME: Durable string-keyed storage for client state (token, locale, theme)
// ABOUTME: Defines the Store interface plus file-backed and in-memory implementations

package storage

import (
	"os"
	"path/filepath"
)

// Well-known keys persisted by the client
const (
	KeyAuthToken = "authToken"
	KeyLocale    = "locale"
	KeyTheme     = "theme"
	KeyLang      = "lang"
)

// Store is the persistence surface shared by the session core.
// Get distinguishes an absent key (ok == false) from a key holding "".
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}

// DefaultConfigDir returns the default config directory following XDG conventions
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "rerng-admin")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "rerng-admin")
}
