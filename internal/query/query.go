package query

import (
	"context"
	"strings"

	"mediafind/internal/database"
	"mediafind/internal/logging"
)

// conjunction is the literal separator between search terms. It is
// matched case-sensitively so a query like "sand and sea" stays a
// single term.
const conjunction = " AND "

// Engine executes metadata searches against the index.
type Engine struct {
	db *database.Database
}

// NewEngine returns an Engine backed by db.
func NewEngine(db *database.Database) *Engine {
	return &Engine{db: db}
}

// ParseTerms splits a raw query into its conjunctive terms. Terms are
// trimmed of surrounding whitespace and empty terms are dropped, so
// "cat AND  AND dog" parses the same as "cat AND dog". An empty or
// all-whitespace query yields no terms.
func ParseTerms(raw string) []string {
	parts := strings.Split(raw, conjunction)
	terms := make([]string, 0, len(parts))
	for _, part := range parts {
		term := strings.TrimSpace(part)
		if term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

// Search runs a conjunctive substring search: a sidecar matches when
// every term appears (case-insensitively) in at least one of its
// metadata values. A query with no terms matches the whole index.
// Results are ordered by sidecar path and never contain duplicates.
func (e *Engine) Search(ctx context.Context, raw string) ([]database.SearchMatch, error) {
	terms := ParseTerms(raw)
	logging.Debug("Search query %q parsed into %d terms", raw, len(terms))
	return e.db.Search(ctx, terms)
}
