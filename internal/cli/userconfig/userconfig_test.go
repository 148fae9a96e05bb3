package userconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ServerURL != DefaultServerURL {
		t.Errorf("unexpected server URL: %s", cfg.ServerURL)
	}
	if cfg.DemoLogin {
		t.Error("demo login must default to off")
	}
}

func TestSaveAndLoad(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := Save(&UserConfig{ServerURL: "https://insights.example.com", DemoLogin: true}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ServerURL != "https://insights.example.com" {
		t.Errorf("unexpected server URL: %s", cfg.ServerURL)
	}
	if !cfg.DemoLogin {
		t.Error("demo login flag not persisted")
	}
}

func TestSetServerURL(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := SetServerURL("http://10.0.0.5:8080"); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ServerURL != "http://10.0.0.5:8080" {
		t.Errorf("unexpected server URL: %s", cfg.ServerURL)
	}
}

func TestLoad_EmptyServerURLFallsBack(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(home, ".config", "insight", "config.json")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"server_url":""}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ServerURL != DefaultServerURL {
		t.Errorf("expected fallback to default, got %s", cfg.ServerURL)
	}
}
