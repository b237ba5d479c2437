// ABOUTME: Tests for locale resolution
// ABOUTME: Validates the en default, locale-key-only reads, and rejection of unknown codes on Set

package locale

import (
	"testing"

	"github.com/rerng-addicted/rerng-admin/internal/storage"
)

func TestLocaleDefault(t *testing.T) {
	r := Resolver{Store: storage.NewMemoryStore(nil)}

	if got := r.Locale(); got != "en" {
		t.Errorf("expected default en, got %s", got)
	}
}

func TestLocaleReadsLocaleKeyOnly(t *testing.T) {
	tests := []struct {
		name string
		seed map[string]string
		want string
	}{
		{"locale wins", map[string]string{storage.KeyLocale: "km", storage.KeyLang: "zh"}, "km"},
		{"lang alone is ignored", map[string]string{storage.KeyLang: "zh"}, "en"},
		{"unsupported locale sent as stored", map[string]string{storage.KeyLocale: "fr", storage.KeyLang: "km"}, "fr"},
		{"empty locale ignored", map[string]string{storage.KeyLocale: ""}, "en"},
		{"regional variant kept", map[string]string{storage.KeyLocale: "en-GB"}, "en-GB"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := Resolver{Store: storage.NewMemoryStore(tc.seed)}
			if got := r.Locale(); got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestSet(t *testing.T) {
	store := storage.NewMemoryStore(nil)
	r := Resolver{Store: store}

	got, err := r.Set("km")
	if err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if got != "km" {
		t.Errorf("expected km, got %s", got)
	}
	if v, _ := store.Get(storage.KeyLocale); v != "km" {
		t.Errorf("expected locale key km, got %q", v)
	}
	if v, _ := store.Get(storage.KeyLang); v != "km" {
		t.Errorf("expected lang key km, got %q", v)
	}
}

func TestSetUnsupported(t *testing.T) {
	store := storage.NewMemoryStore(nil)
	r := Resolver{Store: store}

	if _, err := r.Set("fr"); err == nil {
		t.Error("expected error for unsupported locale")
	}
	if _, ok := store.Get(storage.KeyLocale); ok {
		t.Error("expected nothing persisted")
	}
}
