// Package imports resolves Bon's `import <name>` statements against the
// importing file's own directory first, then BON_STDLIB_PATH, and
// de-duplicates diamond imports within a single compile. The filename
// contract (resolve a bare module name to a path) follows the reference
// compiler's parse_import; the parser does not call this package. Stdlib
// module discovery (for the `list-stdlib` subcommand) uses doublestar glob
// matching, the same way termfx-morfx's own path-matching code does.
package imports

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Resolver resolves module names to file paths and remembers which
// files have already been parsed, so a diamond-shaped import graph
// parses each file exactly once per compile (not across invocations —
// this cache is not persisted, unlike the excluded "incremental
// recompilation" Non-goal).
type Resolver struct {
	stdlibPath string
	resolved   map[string]string
	visited    map[string]bool
}

// New creates a Resolver rooted at stdlibPath (typically
// os.Getenv("BON_STDLIB_PATH")).
func New(stdlibPath string) *Resolver {
	return &Resolver{
		stdlibPath: stdlibPath,
		resolved:   map[string]string{},
		visited:    map[string]bool{},
	}
}

// Resolve finds the file implementing module name, searching
// importerDir (the directory of the file containing the import
// statement) before falling back to stdlibPath. Returns the same path
// every time for a given name from a given importer, so repeated
// imports of a shared dependency resolve identically.
func (r *Resolver) Resolve(importerDir, name string) (string, error) {
	candidates := []string{
		filepath.Join(importerDir, name+".bon"),
	}
	if r.stdlibPath != "" {
		candidates = append(candidates, filepath.Join(r.stdlibPath, name+".bon"))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			r.resolved[name] = c
			return c, nil
		}
	}
	return "", fmt.Errorf("imports: module %q not found (searched %v)", name, candidates)
}

// AlreadyVisited reports whether path has already been parsed in this
// compile, and marks it visited for subsequent calls.
func (r *Resolver) AlreadyVisited(path string) bool {
	if r.visited[path] {
		return true
	}
	r.visited[path] = true
	return false
}

// ListStdlib returns every `*.bon` module available under stdlibPath,
// including nested directories, for the `bon list-stdlib` debug
// subcommand.
func (r *Resolver) ListStdlib() ([]string, error) {
	if r.stdlibPath == "" {
		return nil, fmt.Errorf("imports: BON_STDLIB_PATH is not set")
	}
	pattern := filepath.Join(r.stdlibPath, "**", "*.bon")
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("imports: listing stdlib: %w", err)
	}
	return matches, nil
}
