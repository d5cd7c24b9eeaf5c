package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "extdiscovery.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Run("full file", func(t *testing.T) {
		path := writeConfig(t, `search_paths:
  - core
  - /srv/www/sites/default
filter:
  extra_skipped_names: [node_modules, bower_components]
  include_test_directories: true
  manifest_suffix: .info.yml
max_entries_per_second: 500
index: index.db
`)
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		dir := filepath.Dir(path)
		wantPaths := []string{filepath.Join(dir, "core"), "/srv/www/sites/default"}
		if !slices.Equal(cfg.SearchPaths, wantPaths) {
			t.Errorf("SearchPaths = %v, want %v", cfg.SearchPaths, wantPaths)
		}
		if !slices.Equal(cfg.Filter.ExtraSkippedNames, []string{"node_modules", "bower_components"}) {
			t.Errorf("ExtraSkippedNames = %v", cfg.Filter.ExtraSkippedNames)
		}
		if !cfg.Filter.IncludeTestDirectories {
			t.Error("IncludeTestDirectories = false, want true")
		}
		if cfg.MaxEntriesPerSecond != 500 {
			t.Errorf("MaxEntriesPerSecond = %d, want 500", cfg.MaxEntriesPerSecond)
		}
		if cfg.Index != filepath.Join(dir, "index.db") {
			t.Errorf("Index = %q, want %q", cfg.Index, filepath.Join(dir, "index.db"))
		}
	})

	t.Run("empty file gives defaults", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, ""))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if len(cfg.SearchPaths) != 0 || cfg.Index != "" || cfg.MaxEntriesPerSecond != 0 {
			t.Errorf("Load(empty) = %+v, want defaults", cfg)
		}
	})

	t.Run("memory index kept", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "index: \":memory:\"\n"))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Index != ":memory:" {
			t.Errorf("Index = %q, want :memory:", cfg.Index)
		}
	})
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Load() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := Load(writeConfig(t, "serach_paths: [a]\n"))
		if err == nil {
			t.Fatal("Load() error = nil, want error for unknown key")
		}
	})

	t.Run("negative rate", func(t *testing.T) {
		_, err := Load(writeConfig(t, "max_entries_per_second: -1\n"))
		if err == nil || !strings.Contains(err.Error(), "max_entries_per_second") {
			t.Errorf("Load() error = %v, want max_entries_per_second error", err)
		}
	})

	t.Run("empty search path", func(t *testing.T) {
		_, err := Load(writeConfig(t, "search_paths: [\"\"]\n"))
		if err == nil {
			t.Error("Load() error = nil, want error for empty search path")
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "search_paths: [unterminated\n"))
		if err == nil {
			t.Error("Load() error = nil, want parse error")
		}
	})
}

func TestResolve(t *testing.T) {
	t.Run("defaults without file", func(t *testing.T) {
		t.Setenv(EnvConfig, "")
		t.Setenv(EnvIndex, "")
		cfg, err := Resolve("")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if cfg.Index != "" {
			t.Errorf("Index = %q, want empty", cfg.Index)
		}
	})

	t.Run("env config path", func(t *testing.T) {
		path := writeConfig(t, "max_entries_per_second: 7\n")
		t.Setenv(EnvConfig, path)
		t.Setenv(EnvIndex, "")
		cfg, err := Resolve("")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if cfg.MaxEntriesPerSecond != 7 {
			t.Errorf("MaxEntriesPerSecond = %d, want 7", cfg.MaxEntriesPerSecond)
		}
	})

	t.Run("env index overrides file", func(t *testing.T) {
		path := writeConfig(t, "index: file.db\n")
		t.Setenv(EnvIndex, "/tmp/override.db")
		cfg, err := Resolve(path)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if cfg.Index != "/tmp/override.db" {
			t.Errorf("Index = %q, want /tmp/override.db", cfg.Index)
		}
	})
}

func TestConfig_MarshalRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.SearchPaths = []string{"/a", "/b"}
	cfg.Filter.ExtraSkippedNames = []string{"node_modules"}

	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	path := writeConfig(t, string(data))
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !slices.Equal(got.SearchPaths, cfg.SearchPaths) {
		t.Errorf("SearchPaths = %v, want %v", got.SearchPaths, cfg.SearchPaths)
	}
	if !slices.Equal(got.Filter.ExtraSkippedNames, cfg.Filter.ExtraSkippedNames) {
		t.Errorf("ExtraSkippedNames = %v, want %v", got.Filter.ExtraSkippedNames, cfg.Filter.ExtraSkippedNames)
	}
}
