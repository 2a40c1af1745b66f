package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadCreatesDefaultFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RECIPE_EXPLORER_CONFIG_DIR", dir)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Catalog != "builtin" || cfg.Columns != 4 || cfg.DebounceMS != 250 || cfg.NotFound != NotFoundHome {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.toml")); err != nil {
		t.Fatalf("default config not written: %v", err)
	}

	again, err := Load("")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if *again != *cfg {
		t.Fatalf("reloaded config differs: %+v vs %+v", again, cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	body := `
catalog = "recipes.yaml"
columns = 0
debounce_ms = 100
not_found = "MESSAGE"
log_level = "verbose"
max_concurrent_downloads = 0
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"catalog", cfg.Catalog, "recipes.yaml"},
		{"columns", cfg.Columns, 0},
		{"debounce", cfg.DebounceMS, 100},
		{"not found", cfg.NotFound, NotFoundMessage},
		{"log level", cfg.LogLevel, LogVerbose},
		{"downloads fall back", cfg.MaxConcurrentDownloads, 2},
		{"rps default kept", cfg.RequestsPerSecond, 5.0},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Fatalf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("columns = [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil || !strings.HasPrefix(err.Error(), "parse config:") {
		t.Fatalf("expected parse config error, got %v", err)
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatalf("expected error for missing explicit config")
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{Columns: -2, NotFound: "explode", LogLevel: "loud", DownloadDir: "~/pics"}
	cfg.Validate()

	home, _ := os.UserHomeDir()
	if cfg.Columns != 4 || cfg.NotFound != NotFoundHome || cfg.LogLevel != LogNormal {
		t.Fatalf("Validate did not normalise: %+v", cfg)
	}
	if home != "" && cfg.DownloadDir != filepath.Join(home, "pics") {
		t.Fatalf("DownloadDir = %q, want ~ expanded", cfg.DownloadDir)
	}
}

func TestPathsFollowConfigDir(t *testing.T) {
	t.Setenv("RECIPE_EXPLORER_CONFIG_DIR", "/tmp/rx")
	if DBPath() != "/tmp/rx/recipes.db" || LogPath() != "/tmp/rx/recipe-explorer.log" {
		t.Fatalf("unexpected paths %q %q", DBPath(), LogPath())
	}
}
