// ABOUTME: Tests for recent search management
// ABOUTME: Validates config storage, max limit, and case-insensitive deduplication

package recentsearches

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	tmpDir := t.TempDir()
	rs := New(tmpDir)

	if rs == nil {
		t.Fatal("New() returned nil")
	}
	if rs.configDir != tmpDir {
		t.Errorf("expected configDir %s, got %s", tmpDir, rs.configDir)
	}
}

func TestLoadEmpty(t *testing.T) {
	rs := New(t.TempDir())

	keywords, err := rs.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(keywords) != 0 {
		t.Errorf("expected empty list, got %d keywords", len(keywords))
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	rs := New(tmpDir)

	if err := rs.Save([]string{"goblin", "vincenzo"}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := New(tmpDir).Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(loaded) != 2 || loaded[0] != "goblin" {
		t.Errorf("unexpected keywords %v", loaded)
	}
}

func TestAddMoveToFront(t *testing.T) {
	rs := New(t.TempDir())

	rs.Add("goblin")
	rs.Add("vincenzo")

	keywords, _ := rs.Load()
	if len(keywords) != 2 || keywords[0] != "vincenzo" {
		t.Fatalf("expected vincenzo first, got %v", keywords)
	}

	// Re-adding with different case moves it to the front without duplicating
	rs.Add("GOBLIN")
	keywords, _ = rs.Load()
	if len(keywords) != 2 {
		t.Fatalf("expected 2 keywords after re-add, got %v", keywords)
	}
	if keywords[0] != "GOBLIN" {
		t.Errorf("expected GOBLIN first after re-add, got %s", keywords[0])
	}
}

func TestAddIgnoresBlank(t *testing.T) {
	rs := New(t.TempDir())

	if err := rs.Add("   "); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if len(rs.List()) != 0 {
		t.Errorf("expected blank keyword ignored, got %v", rs.List())
	}
}

func TestMaxLimit(t *testing.T) {
	rs := New(t.TempDir())

	for i := 1; i <= 7; i++ {
		rs.Add(fmt.Sprintf("keyword %d", i))
	}

	keywords, _ := rs.Load()
	if len(keywords) != MaxRecentSearches {
		t.Errorf("expected %d keywords max, got %d", MaxRecentSearches, len(keywords))
	}
	if keywords[0] != "keyword 7" {
		t.Errorf("expected newest first, got %s", keywords[0])
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	os.WriteFile(filepath.Join(tmpDir, "recent_searches.json"), []byte("{broken"), 0600)

	keywords, err := New(tmpDir).Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(keywords) != 0 {
		t.Errorf("expected fresh list, got %v", keywords)
	}
}

func TestCreatesConfigDir(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "rerng-admin")
	rs := New(configDir)

	if _, err := os.Stat(configDir); !os.IsNotExist(err) {
		t.Fatal("config dir should not exist yet")
	}

	rs.Add("goblin")

	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		t.Error("config dir should have been created")
	}
}

func TestClear(t *testing.T) {
	rs := New(t.TempDir())
	rs.Add("goblin")

	if err := rs.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if err := rs.Clear(); err != nil {
		t.Fatalf("second Clear() error: %v", err)
	}
	keywords, _ := rs.Load()
	if len(keywords) != 0 {
		t.Errorf("expected empty after clear, got %v", keywords)
	}
}
