// ABOUTME: Active language resolution for outbound Accept-Language headers
// ABOUTME: Reads the persisted locale/lang keys and matches them against supported tags

package locale

import (
	"fmt"
	"strings"

	"github.com/rerng-addicted/rerng-admin/internal/storage"
	"golang.org/x/text/language"
)

// Default is used when nothing is persisted
const Default = "en"

var supportedTags = []language.Tag{
	language.English,
	language.Khmer,
	language.Chinese,
}

var tagMatcher = language.NewMatcher(supportedTags)

// Supported returns the supported language codes
func Supported() []string {
	codes := make([]string, len(supportedTags))
	for i, tag := range supportedTags {
		codes[i] = tag.String()
	}
	return codes
}

// Normalize maps value to a supported code. ok is false when value is not
// a parseable tag or only matches with low confidence.
func Normalize(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	tag, err := language.Parse(value)
	if err != nil {
		return "", false
	}
	_, index, confidence := tagMatcher.Match(tag)
	if confidence < language.High {
		return "", false
	}
	return supportedTags[index].String(), true
}

// Resolver reads and writes the active locale through the persistence surface
type Resolver struct {
	Store storage.Store
}

// Locale returns the persisted locale as stored, or Default when it is absent
// or blank. The lang key belongs to the UI and never feeds request headers.
func (r Resolver) Locale() string {
	if v, ok := r.Store.Get(storage.KeyLocale); ok {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return Default
}

// Set validates code and persists it as both the request and UI locale
func (r Resolver) Set(code string) (string, error) {
	normalized, ok := Normalize(code)
	if !ok {
		return "", fmt.Errorf("unsupported locale %q (supported: %s)", code, strings.Join(Supported(), ", "))
	}
	if err := r.Store.Set(storage.KeyLocale, normalized); err != nil {
		return "", fmt.Errorf("persist locale: %w", err)
	}
	if err := r.Store.Set(storage.KeyLang, normalized); err != nil {
		return "", fmt.Errorf("persist lang: %w", err)
	}
	return normalized, nil
}
