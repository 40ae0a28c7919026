package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glls/rankPrivateVPNServers/serverpool/model"
)

func sampleData() *model.ServerData {
	return &model.ServerData{
		Title:     "PrivateVPN Server list",
		Version:   1,
		Headers:   []string{"Country", "Server address"},
		LastCheck: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Total:     2,
		Servers: []*model.Endpoint{
			{Country: "Sweden", CountryCode: "SE", URL: "se.pvdata.host"},
			{Country: "Canada", CountryCode: "CA", URL: "ca.pvdata.host"},
		},
	}
}

func TestFileCache_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	fc := NewFileCache(path)

	if err := fc.Save(sampleData()); err != nil {
		t.Fatalf("Save() returned an error: %v", err)
	}

	data, mtime, err := fc.Load(time.Hour)
	if err != nil {
		t.Fatalf("Load() returned an error: %v", err)
	}
	if data == nil {
		t.Fatal("expected a cache hit")
	}
	if mtime.IsZero() {
		t.Error("expected a non-zero retrieval time")
	}
	if len(data.Servers) != 2 || data.Servers[1].URL != "ca.pvdata.host" {
		t.Errorf("unexpected cached servers: %+v", data.Servers)
	}
	if !data.LastCheck.Equal(sampleData().LastCheck) {
		t.Errorf("last check time not preserved: %v", data.LastCheck)
	}
}

func TestFileCache_MissWhenAbsent(t *testing.T) {
	fc := NewFileCache(filepath.Join(t.TempDir(), "never-written.json"))
	data, _, err := fc.Load(time.Hour)
	if err != nil {
		t.Fatalf("Load() on a missing file must not error, got %v", err)
	}
	if data != nil {
		t.Fatal("expected a miss for a missing file")
	}
}

func TestFileCache_MissWhenExpired(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	fc := NewFileCache(path)
	if err := fc.Save(sampleData()); err != nil {
		t.Fatal(err)
	}

	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}

	data, _, err := fc.Load(5 * time.Minute)
	if err != nil {
		t.Fatalf("Load() returned an error: %v", err)
	}
	if data != nil {
		t.Fatal("expected a miss for an expired cache file")
	}
}

func TestFileCache_MissOnCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	data, _, err := NewFileCache(path).Load(time.Hour)
	if err != nil {
		t.Fatalf("Load() on a corrupt file must not error, got %v", err)
	}
	if data != nil {
		t.Fatal("expected a corrupt cache file to be ignored")
	}
}
