// ABOUTME: Manages the recent search keywords shown on the home screen
// ABOUTME: Stores keywords as JSON in the client config directory

package recentsearches

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// MaxRecentSearches is the maximum number of keywords to keep
const MaxRecentSearches = 5

// RecentSearches manages the list of recently searched keywords
type RecentSearches struct {
	configDir string
	keywords  []string
}

type recentData struct {
	Keywords []string `json:"keywords"`
}

// New creates a new RecentSearches manager with the given config directory
func New(configDir string) *RecentSearches {
	return &RecentSearches{
		configDir: configDir,
		keywords:  nil,
	}
}

// configFile returns the path to the recent searches JSON
func (rs *RecentSearches) configFile() string {
	return filepath.Join(rs.configDir, "recent_searches.json")
}

// Load reads the keyword list from disk
func (rs *RecentSearches) Load() ([]string, error) {
	data, err := os.ReadFile(rs.configFile())
	if os.IsNotExist(err) {
		rs.keywords = []string{}
		return rs.keywords, nil
	}
	if err != nil {
		return nil, err
	}

	var recent recentData
	if err := json.Unmarshal(data, &recent); err != nil {
		// Invalid JSON, start fresh
		rs.keywords = []string{}
		return rs.keywords, nil
	}

	rs.keywords = make([]string, 0, len(recent.Keywords))
	for _, kw := range recent.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			rs.keywords = append(rs.keywords, kw)
		}
	}
	return rs.keywords, nil
}

// Save writes the keyword list to disk
func (rs *RecentSearches) Save(keywords []string) error {
	if err := os.MkdirAll(rs.configDir, 0700); err != nil {
		return err
	}

	if len(keywords) > MaxRecentSearches {
		keywords = keywords[:MaxRecentSearches]
	}
	rs.keywords = keywords

	data, err := json.MarshalIndent(recentData{Keywords: keywords}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(rs.configFile(), data, 0600)
}

// Add puts keyword at the front of the list. Matching is case-insensitive
// and blank keywords are ignored.
func (rs *RecentSearches) Add(keyword string) error {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil
	}
	if rs.keywords == nil {
		if _, err := rs.Load(); err != nil {
			rs.keywords = []string{}
		}
	}

	next := make([]string, 0, len(rs.keywords)+1)
	next = append(next, keyword)
	for _, kw := range rs.keywords {
		if !strings.EqualFold(kw, keyword) {
			next = append(next, kw)
		}
	}
	return rs.Save(next)
}

// List returns the current list of keywords
func (rs *RecentSearches) List() []string {
	if rs.keywords == nil {
		rs.Load()
	}
	return rs.keywords
}

// Clear removes every stored keyword
func (rs *RecentSearches) Clear() error {
	rs.keywords = []string{}
	err := os.Remove(rs.configFile())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
