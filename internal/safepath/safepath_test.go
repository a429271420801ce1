package safepath

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestGuard(t *testing.T) (*Guard, string) {
	t.Helper()

	root := t.TempDir()
	g, err := NewGuard(root)
	if err != nil {
		t.Fatalf("NewGuard failed: %v", err)
	}
	return g, g.Root()
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func TestResolveAcceptsFilesInsideRoot(t *testing.T) {
	t.Parallel()

	g, root := newTestGuard(t)
	writeFile(t, filepath.Join(root, "sub", "a.jpg"))

	tests := []struct {
		name      string
		requested string
	}{
		{"relative path", "sub/a.jpg"},
		{"absolute path", filepath.Join(root, "sub", "a.jpg")},
		{"redundant segments", "sub/./a.jpg"},
		{"dotdot staying inside", "sub/../sub/a.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, err := g.Resolve(tt.requested)
			if err != nil {
				t.Fatalf("Resolve(%q) failed: %v", tt.requested, err)
			}
			want := filepath.Join(root, "sub", "a.jpg")
			if resolved != want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.requested, resolved, want)
			}
		})
	}
}

func TestResolveRejectsTraversal(t *testing.T) {
	t.Parallel()

	g, _ := newTestGuard(t)

	tests := []string{
		"../../etc/passwd",
		"../outside.txt",
		"sub/../../outside.txt",
		"/etc/passwd",
	}

	for _, requested := range tests {
		t.Run(requested, func(t *testing.T) {
			_, err := g.Resolve(requested)
			if !errors.Is(err, ErrTraversal) {
				t.Errorf("Resolve(%q) = %v, want ErrTraversal", requested, err)
			}
		})
	}
}

func TestResolveMissingFileInsideRoot(t *testing.T) {
	t.Parallel()

	g, _ := newTestGuard(t)

	_, err := g.Resolve("does-not-exist.jpg")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve(missing) = %v, want ErrNotFound", err)
	}
}

func TestResolveRejectsDirectories(t *testing.T) {
	t.Parallel()

	g, root := newTestGuard(t)
	if err := os.MkdirAll(filepath.Join(root, "dir"), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}

	_, err := g.Resolve("dir")
	if !errors.Is(err, ErrTraversal) {
		t.Errorf("Resolve(directory) = %v, want ErrTraversal", err)
	}
}

func TestResolveRejectsSymlinkEscape(t *testing.T) {
	t.Parallel()

	g, root := newTestGuard(t)

	outside := t.TempDir()
	target := filepath.Join(outside, "secret.txt")
	writeFile(t, target)

	link := filepath.Join(root, "escape.txt")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	_, err := g.Resolve("escape.txt")
	if !errors.Is(err, ErrTraversal) {
		t.Errorf("Resolve(symlink escape) = %v, want ErrTraversal", err)
	}
}

func TestResolveFollowsSymlinkInsideRoot(t *testing.T) {
	t.Parallel()

	g, root := newTestGuard(t)
	target := filepath.Join(root, "real.jpg")
	writeFile(t, target)

	link := filepath.Join(root, "alias.jpg")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	resolved, err := g.Resolve("alias.jpg")
	if err != nil {
		t.Fatalf("Resolve(internal symlink) failed: %v", err)
	}
	if resolved != target {
		t.Errorf("Resolve(internal symlink) = %q, want %q", resolved, target)
	}
}

func TestNewGuardMissingRoot(t *testing.T) {
	t.Parallel()

	if _, err := NewGuard(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("NewGuard on missing root should fail")
	}
}
