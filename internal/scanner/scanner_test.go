package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"mediafind/internal/database"
)

func sidecarXML(tags ...string) string {
	body := `<?xml version="1.0"?>
<x:xmpmeta xmlns:x="adobe:ns:meta/">
 <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description rdf:about=""
    xmlns:xmp="http://ns.adobe.com/xap/1.0/"
    xmlns:digiKam="http://www.digikam.org/ns/1.0/"
    xmp:ModifyDate="2024-01-01T00:00:00">
   <digiKam:TagsList>
    <rdf:Seq>
`
	for _, tag := range tags {
		body += "     <rdf:li>" + tag + "</rdf:li>\n"
	}
	body += `    </rdf:Seq>
   </digiKam:TagsList>
  </rdf:Description>
 </rdf:RDF>
</x:xmpmeta>`
	return body
}

func setupScanner(t *testing.T) (*Scanner, *database.Database, string) {
	t.Helper()

	scanDir := t.TempDir()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s := New(db, scanDir, 0, 2)
	t.Cleanup(s.Stop)
	return s, db, scanDir
}

func writeSidecar(t *testing.T, dir, relPath, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", relPath, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", relPath, err)
	}
}

func TestScanIndexesSidecars(t *testing.T) {
	s, db, scanDir := setupScanner(t)

	writeSidecar(t, scanDir, "photos/a.jpg.xmp", sidecarXML("cat", "outdoor"))
	writeSidecar(t, scanDir, "photos/nested/b.jpg.XMP", sidecarXML("dog"))
	writeSidecar(t, scanDir, "photos/ignore.txt", "not a sidecar")

	if err := s.Scan(); err != nil {
		t.Fatalf("Scan() failed: %v", err)
	}

	matches, err := db.Search(context.Background(), []string{"cat"})
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(matches) != 1 || matches[0].SidecarPath != "photos/a.jpg.xmp" {
		t.Errorf("Search(cat) = %v, want photos/a.jpg.xmp", matches)
	}

	// Extension match is case-insensitive.
	matches, err = db.Search(context.Background(), []string{"dog"})
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(matches) != 1 || matches[0].SidecarPath != "photos/nested/b.jpg.XMP" {
		t.Errorf("Search(dog) = %v, want photos/nested/b.jpg.XMP", matches)
	}

	progress := s.GetProgress()
	if progress.SidecarsSeen != 2 || progress.SidecarsUpdated != 2 {
		t.Errorf("Progress = %+v, want 2 seen and 2 updated", progress)
	}
	if !s.IsReady() {
		t.Error("IsReady() = false after completed scan")
	}
}

func TestScanSkipsUnchangedSidecars(t *testing.T) {
	s, _, scanDir := setupScanner(t)

	writeSidecar(t, scanDir, "a.jpg.xmp", sidecarXML("cat"))

	if err := s.Scan(); err != nil {
		t.Fatalf("First Scan() failed: %v", err)
	}
	if err := s.Scan(); err != nil {
		t.Fatalf("Second Scan() failed: %v", err)
	}

	progress := s.GetProgress()
	if progress.SidecarsUpdated != 0 || progress.SidecarsSkipped != 1 {
		t.Errorf("Second scan progress = %+v, want 0 updated and 1 skipped", progress)
	}
}

func TestScanDetectsChangedContent(t *testing.T) {
	s, db, scanDir := setupScanner(t)
	ctx := context.Background()

	writeSidecar(t, scanDir, "a.jpg.xmp", sidecarXML("cat"))
	if err := s.Scan(); err != nil {
		t.Fatalf("First Scan() failed: %v", err)
	}

	writeSidecar(t, scanDir, "a.jpg.xmp", sidecarXML("dog"))
	if err := s.Scan(); err != nil {
		t.Fatalf("Second Scan() failed: %v", err)
	}

	matches, err := db.Search(ctx, []string{"cat"})
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("Search(cat) after content change = %v, want empty", matches)
	}

	matches, err = db.Search(ctx, []string{"dog"})
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(matches) != 1 {
		t.Errorf("Search(dog) after content change = %v, want one match", matches)
	}
}

func TestScanReconcilesDeletedSidecars(t *testing.T) {
	s, db, scanDir := setupScanner(t)
	ctx := context.Background()

	writeSidecar(t, scanDir, "keep.jpg.xmp", sidecarXML("cat"))
	writeSidecar(t, scanDir, "gone.jpg.xmp", sidecarXML("dog"))
	if err := s.Scan(); err != nil {
		t.Fatalf("First Scan() failed: %v", err)
	}

	if err := os.Remove(filepath.Join(scanDir, "gone.jpg.xmp")); err != nil {
		t.Fatalf("Failed to remove sidecar: %v", err)
	}
	if err := s.Scan(); err != nil {
		t.Fatalf("Second Scan() failed: %v", err)
	}

	matches, err := db.Search(ctx, nil)
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(matches) != 1 || matches[0].SidecarPath != "keep.jpg.xmp" {
		t.Errorf("Search() after reconciliation = %v, want only keep.jpg.xmp", matches)
	}
}

func TestScanMalformedSidecarKeepsOldEntries(t *testing.T) {
	s, db, scanDir := setupScanner(t)
	ctx := context.Background()

	writeSidecar(t, scanDir, "a.jpg.xmp", sidecarXML("cat"))
	if err := s.Scan(); err != nil {
		t.Fatalf("First Scan() failed: %v", err)
	}

	// Corrupt the sidecar; the indexed entries must survive, and
	// reconciliation must not drop the row.
	writeSidecar(t, scanDir, "a.jpg.xmp", "<broken")
	if err := s.Scan(); err != nil {
		t.Fatalf("Second Scan() failed: %v", err)
	}

	matches, err := db.Search(ctx, []string{"cat"})
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(matches) != 1 {
		t.Errorf("Search(cat) after corrupting sidecar = %v, want the old entries preserved", matches)
	}

	progress := s.GetProgress()
	if progress.Errors != 1 {
		t.Errorf("Progress.Errors = %d, want 1", progress.Errors)
	}
}

func TestScanSkipsHiddenFiles(t *testing.T) {
	s, db, scanDir := setupScanner(t)

	writeSidecar(t, scanDir, ".hidden.jpg.xmp", sidecarXML("secret"))
	writeSidecar(t, scanDir, ".trash/a.jpg.xmp", sidecarXML("secret"))

	if err := s.Scan(); err != nil {
		t.Fatalf("Scan() failed: %v", err)
	}

	matches, err := db.Search(context.Background(), nil)
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("Search() = %v, want hidden files excluded", matches)
	}
}

func TestFingerprintOf(t *testing.T) {
	t.Parallel()

	a := fingerprintOf([]byte("hello"))
	b := fingerprintOf([]byte("hello"))
	c := fingerprintOf([]byte("world"))

	if a != b {
		t.Errorf("fingerprintOf is not deterministic: %q != %q", a, b)
	}
	if a == c {
		t.Errorf("fingerprintOf collided on different content: %q", a)
	}
	if len(a) != 16 {
		t.Errorf("fingerprintOf length = %d, want 16 hex chars", len(a))
	}
}
