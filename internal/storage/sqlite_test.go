package storage

import (
	"path/filepath"
	"testing"
)

func TestSQLiteSetAndGet(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "storage.db")

	s, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	defer s.Close()

	if _, ok, err := s.GetItem("missing"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := s.SetItem("weather-app-history", `[{"name":"Paris"}]`); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}
	if err := s.SetItem("weather-app-history", `[{"name":"Tokyo"}]`); err != nil {
		t.Fatalf("SetItem overwrite failed: %v", err)
	}

	v, ok, err := s.GetItem("weather-app-history")
	if err != nil || !ok {
		t.Fatalf("GetItem failed: ok=%v err=%v", ok, err)
	}
	if v != `[{"name":"Tokyo"}]` {
		t.Errorf("expected overwritten value, got %q", v)
	}

	if err := s.RemoveItem("weather-app-history"); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if _, ok, _ := s.GetItem("weather-app-history"); ok {
		t.Errorf("expected key to be removed")
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "storage.db")

	s, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	if err := s.SetItem("weather-app-favorites", "[]"); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	v, ok, err := reopened.GetItem("weather-app-favorites")
	if err != nil || !ok || v != "[]" {
		t.Fatalf("expected persisted value, got %q ok=%v err=%v", v, ok, err)
	}
}

func TestMemoryStorage(t *testing.T) {
	m := NewMemoryStorage()

	if err := m.SetItem("k", "v"); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}
	if v, ok, _ := m.GetItem("k"); !ok || v != "v" {
		t.Fatalf("expected v, got %q ok=%v", v, ok)
	}
	_ = m.RemoveItem("k")
	if _, ok, _ := m.GetItem("k"); ok {
		t.Fatalf("expected key to be removed")
	}
}
