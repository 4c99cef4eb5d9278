package imports

import (
	"os"
	"path/filepath"
	"testing"
)

func writeModule(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name+".bon")
	if err := os.WriteFile(path, []byte("def id x =\n    x\n"), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestResolvePrefersImporterDirOverStdlib(t *testing.T) {
	importerDir := t.TempDir()
	stdlibDir := t.TempDir()
	local := writeModule(t, importerDir, "util")
	writeModule(t, stdlibDir, "util")

	r := New(stdlibDir)
	got, err := r.Resolve(importerDir, "util")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != local {
		t.Fatalf("expected importer-local module to win, got %q want %q", got, local)
	}
}

func TestResolveFallsBackToStdlib(t *testing.T) {
	importerDir := t.TempDir()
	stdlibDir := t.TempDir()
	stdlibModule := writeModule(t, stdlibDir, "list")

	r := New(stdlibDir)
	got, err := r.Resolve(importerDir, "list")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != stdlibModule {
		t.Fatalf("expected stdlib fallback %q, got %q", stdlibModule, got)
	}
}

func TestResolveMissingModuleReturnsError(t *testing.T) {
	r := New(t.TempDir())
	if _, err := r.Resolve(t.TempDir(), "does_not_exist"); err == nil {
		t.Fatalf("expected an error resolving a nonexistent module")
	}
}

func TestAlreadyVisitedDedupsDiamondImports(t *testing.T) {
	r := New("")
	path := "/some/shared/dep.bon"
	if r.AlreadyVisited(path) {
		t.Fatalf("expected first visit to report false")
	}
	if !r.AlreadyVisited(path) {
		t.Fatalf("expected second visit of the same path to report true")
	}
}

func TestListStdlibFindsNestedModules(t *testing.T) {
	stdlibDir := t.TempDir()
	writeModule(t, stdlibDir, "top")
	nested := filepath.Join(stdlibDir, "collections")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeModule(t, nested, "vector")

	r := New(stdlibDir)
	modules, err := r.ListStdlib()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(modules) != 2 {
		t.Fatalf("expected 2 modules (top-level + nested), got %d: %v", len(modules), modules)
	}
}

func TestListStdlibRequiresConfiguredPath(t *testing.T) {
	r := New("")
	if _, err := r.ListStdlib(); err == nil {
		t.Fatalf("expected an error when no stdlib path is configured")
	}
}
