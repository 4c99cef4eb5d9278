package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFailsWithoutStdlibPath(t *testing.T) {
	t.Setenv("BON_STDLIB_PATH", "")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected an error when BON_STDLIB_PATH is unset and no project file overrides it")
	}
}

func TestLoadPrefersEnvVarOverProjectFile(t *testing.T) {
	dir := t.TempDir()
	projectFile := filepath.Join(dir, "bon.yaml")
	if err := os.WriteFile(projectFile, []byte("stdlib_path: /from/yaml\nmax_errors: 5\n"), 0o644); err != nil {
		t.Fatalf("writing project file: %v", err)
	}

	t.Setenv("BON_STDLIB_PATH", "/from/env")
	cfg, err := Load(projectFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.StdlibPath != "/from/env" {
		t.Fatalf("expected env var to win over project file, got %q", cfg.StdlibPath)
	}
	if cfg.MaxErrors != 5 {
		t.Fatalf("expected project file to still set max_errors, got %d", cfg.MaxErrors)
	}
}

func TestLoadFallsBackToDefaultsAndProjectFile(t *testing.T) {
	dir := t.TempDir()
	projectFile := filepath.Join(dir, "bon.yaml")
	if err := os.WriteFile(projectFile, []byte("stdlib_path: /from/yaml\n"), 0o644); err != nil {
		t.Fatalf("writing project file: %v", err)
	}

	t.Setenv("BON_STDLIB_PATH", "")
	cfg, err := Load(projectFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.StdlibPath != "/from/yaml" {
		t.Fatalf("expected project file's stdlib_path, got %q", cfg.StdlibPath)
	}
	if cfg.MaxErrors != defaultMaxErrors {
		t.Fatalf("expected default max_errors, got %d", cfg.MaxErrors)
	}
}
