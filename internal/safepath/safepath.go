package safepath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mediafind/internal/logging"
	"mediafind/internal/metrics"
)

var (
	// ErrTraversal is returned when a requested path escapes the allowed
	// root, cannot be canonicalized, or resolves to a non-regular file.
	ErrTraversal = errors.New("path escapes allowed root")

	// ErrNotFound is returned when a requested path stays within the
	// allowed root but does not exist.
	ErrNotFound = errors.New("file not found")
)

// Guard canonicalizes request-supplied paths and enforces containment
// within a single allowed root directory.
type Guard struct {
	root string // canonicalized at construction
}

// NewGuard creates a Guard for the given root directory. The root itself
// is canonicalized (absolute, symlinks resolved) once up front so that
// every Resolve compares against the real directory.
func NewGuard(root string) (*Guard, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize root %s: %w", abs, err)
	}
	return &Guard{root: resolved}, nil
}

// Root returns the canonicalized root directory.
func (g *Guard) Root() string {
	return g.root
}

// Resolve canonicalizes requested (resolving relative segments and
// symbolic links) and verifies the result is a regular file inside the
// guard's root. Relative paths are interpreted relative to the root.
//
// It fails closed: any escape or canonicalization failure yields
// ErrTraversal; a path that stays inside the root but does not exist
// yields ErrNotFound.
func (g *Guard) Resolve(requested string) (string, error) {
	candidate := requested
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(g.root, candidate)
	}

	abs, err := filepath.Abs(candidate)
	if err != nil {
		return "", g.reject(requested, err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) && g.contains(abs) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, requested)
		}
		return "", g.reject(requested, err)
	}

	if !g.contains(resolved) {
		return "", g.reject(requested, nil)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, requested)
		}
		return "", g.reject(requested, err)
	}
	if !info.Mode().IsRegular() {
		return "", g.reject(requested, nil)
	}

	return resolved, nil
}

// contains reports whether path is the root or lies beneath it. Both
// inputs must already be absolute and cleaned.
func (g *Guard) contains(path string) bool {
	rel, err := filepath.Rel(g.root, path)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, ".."+string(filepath.Separator)) && rel != "..")
}

func (g *Guard) reject(requested string, cause error) error {
	metrics.PathTraversalRejections.Inc()
	if cause != nil {
		logging.Warn("Path guard rejected %q: %v", requested, cause)
		return fmt.Errorf("%w: %s", ErrTraversal, requested)
	}
	logging.Warn("Path guard rejected %q", requested)
	return fmt.Errorf("%w: %s", ErrTraversal, requested)
}
