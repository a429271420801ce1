package query

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"mediafind/internal/database"
	"mediafind/internal/xmp"
)

func TestParseTerms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"single term", "cat", []string{"cat"}},
		{"two terms", "cat AND dog", []string{"cat", "dog"}},
		{"three terms", "cat AND dog AND beach", []string{"cat", "dog", "beach"}},
		{"whitespace trimmed", "  cat  AND  dog  ", []string{"cat", "dog"}},
		{"empty terms dropped", "cat AND  AND dog", []string{"cat", "dog"}},
		{"empty query", "", nil},
		{"whitespace query", "   ", nil},
		{"lowercase and is literal", "sand and sea", []string{"sand and sea"}},
		{"AND requires spaces", "catANDdog", []string{"catANDdog"}},
		{"term containing spaces", "golden hour AND beach", []string{"golden hour", "beach"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ParseTerms(tt.raw)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseTerms(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestEngineSearch(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	defer db.Close()

	sidecars := map[string][]xmp.Entry{
		"a/cat.jpg.xmp": {
			{Key: xmp.KeyTagsList, Value: "cat"},
			{Key: xmp.KeyTagsList, Value: "outdoor"},
		},
		"b/dogcat.jpg.xmp": {
			{Key: xmp.KeyTagsList, Value: "cat"},
			{Key: xmp.KeyTagsList, Value: "dog"},
		},
	}
	for path, entries := range sidecars {
		if err := db.UpsertSidecar(path, "fp", entries); err != nil {
			t.Fatalf("UpsertSidecar(%s) failed: %v", path, err)
		}
	}

	engine := NewEngine(db)
	ctx := context.Background()

	matches, err := engine.Search(ctx, "cat AND dog")
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(matches) != 1 || matches[0].SidecarPath != "b/dogcat.jpg.xmp" {
		t.Errorf("Search(cat AND dog) = %v, want only b/dogcat.jpg.xmp", matches)
	}

	matches, err = engine.Search(ctx, "")
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("Search(\"\") = %v, want all indexed sidecars", matches)
	}
}
