package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"mediafind/internal/xmp"
)

// UpsertSidecar replaces the indexed state of one sidecar atomically:
// the sidecar row is inserted or updated with the new fingerprint, its
// old metadata rows are deleted, and the new entries are inserted. A
// reader never observes a sidecar with a mix of old and new entries.
func (d *Database) UpsertSidecar(path, fingerprint string, entries []xmp.Entry) (err error) {
	start := time.Now()
	defer func() { recordQuery("upsert_sidecar", start, err) }()

	tx, err := d.BeginBatch()
	if err != nil {
		return fmt.Errorf("failed to begin sidecar transaction: %w", err)
	}
	defer func() { err = d.EndBatch(tx, start, err) }()

	ctx := context.Background()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sidecars (path, fingerprint, updated_at)
		VALUES (?, ?, strftime('%s', 'now'))
		ON CONFLICT(path) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			updated_at = strftime('%s', 'now')
	`, path, fingerprint)
	if err != nil {
		return fmt.Errorf("failed to upsert sidecar %s: %w", path, err)
	}

	var sidecarID int64
	err = tx.QueryRowContext(ctx, "SELECT id FROM sidecars WHERE path = ?", path).Scan(&sidecarID)
	if err != nil {
		return fmt.Errorf("failed to resolve sidecar id for %s: %w", path, err)
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM metadata WHERE sidecar_id = ?", sidecarID)
	if err != nil {
		return fmt.Errorf("failed to clear old metadata for %s: %w", path, err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO metadata (sidecar_id, key, value) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare metadata insert: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for _, entry := range entries {
		if _, err = stmt.ExecContext(ctx, sidecarID, entry.Key, entry.Value); err != nil {
			return fmt.Errorf("failed to insert metadata for %s: %w", path, err)
		}
	}

	return err
}

// MarkSeen bumps a sidecar's last-seen timestamp without touching its
// metadata. The scanner calls this for unchanged sidecars so the
// reconciliation pass doesn't mistake them for deleted files.
func (d *Database) MarkSeen(ctx context.Context, path string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("mark_seen", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx,
		"UPDATE sidecars SET updated_at = strftime('%s', 'now') WHERE path = ?", path)
	return err
}

// AllFingerprints returns the fingerprint of every indexed sidecar,
// keyed by path. The scanner loads this once per run to decide which
// sidecars can be skipped without re-reading them from the database.
func (d *Database) AllFingerprints(ctx context.Context) (_ map[string]string, err error) {
	start := time.Now()
	defer func() { recordQuery("all_fingerprints", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, "SELECT path, fingerprint FROM sidecars")
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	fingerprints := make(map[string]string)
	for rows.Next() {
		var path, fingerprint string
		if err = rows.Scan(&path, &fingerprint); err != nil {
			return nil, err
		}
		fingerprints[path] = fingerprint
	}
	err = rows.Err()
	return fingerprints, err
}

// GetFingerprint returns the stored fingerprint for one sidecar path.
// found is false when the path has never been indexed.
func (d *Database) GetFingerprint(ctx context.Context, path string) (fingerprint string, found bool, err error) {
	start := time.Now()
	defer func() { recordQuery("get_fingerprint", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err = d.db.QueryRowContext(ctx,
		"SELECT fingerprint FROM sidecars WHERE path = ?", path).Scan(&fingerprint)
	if err == sql.ErrNoRows {
		err = nil
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return fingerprint, true, nil
}

// Search returns the sidecars whose metadata matches every term, as a
// case-insensitive substring match against entry values. Each match
// carries one representative matched value: the first stored value
// matching the first term, or the first stored value at all for an
// empty term list. Results are ordered by sidecar path ascending and
// contain no duplicates. An empty term list matches every indexed
// sidecar.
func (d *Database) Search(ctx context.Context, terms []string) (_ []SearchMatch, err error) {
	start := time.Now()
	defer func() { recordQuery("search", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var sb strings.Builder
	args := make([]any, 0, len(terms)+1)

	sb.WriteString(`SELECT s.path, COALESCE((
		SELECT m.value FROM metadata m
		WHERE m.sidecar_id = s.id`)
	if len(terms) > 0 {
		sb.WriteString(` AND m.value LIKE ? ESCAPE '\' COLLATE NOCASE`)
		args = append(args, "%"+escapeLike(terms[0])+"%")
	}
	sb.WriteString(` ORDER BY m.id ASC LIMIT 1), '')
		FROM sidecars s WHERE 1=1`)

	for _, term := range terms {
		sb.WriteString(` AND EXISTS (
			SELECT 1 FROM metadata m
			WHERE m.sidecar_id = s.id
			AND m.value LIKE ? ESCAPE '\' COLLATE NOCASE)`)
		args = append(args, "%"+escapeLike(term)+"%")
	}
	sb.WriteString(" ORDER BY s.path ASC")

	rows, err := d.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	var matches []SearchMatch
	for rows.Next() {
		var path, value string
		if err = rows.Scan(&path, &value); err != nil {
			return nil, err
		}
		matches = append(matches, SearchMatch{
			SidecarPath: path,
			MediaPath:   MediaPathFor(path),
			Value:       value,
		})
	}
	err = rows.Err()
	return matches, err
}

// MediaPathFor maps a sidecar path to the media file it describes by
// stripping the .xmp suffix (any case). Paths without the suffix are
// returned unchanged.
func MediaPathFor(sidecarPath string) string {
	if strings.EqualFold(".xmp", sidecarPath[maxInt(0, len(sidecarPath)-4):]) {
		return sidecarPath[:len(sidecarPath)-4]
	}
	return sidecarPath
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// escapeLike escapes the SQL LIKE wildcards in a search term so terms
// containing % or _ match literally.
func escapeLike(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}

// DeleteMissing removes sidecars (and, via cascade, their metadata)
// whose last-seen timestamp is older than cutoff. Called after a scan
// completes to drop files deleted from disk.
func (d *Database) DeleteMissing(ctx context.Context, cutoff time.Time) (int64, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("delete_missing", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	result, err := d.db.ExecContext(ctx,
		"DELETE FROM sidecars WHERE updated_at < ?", cutoff.Unix())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Stats reports the current size and freshness of the index.
func (d *Database) Stats(ctx context.Context) (IndexStats, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("stats", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var stats IndexStats
	var lastUpdated sql.NullInt64
	err = d.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM sidecars),
			(SELECT COUNT(*) FROM metadata),
			(SELECT COUNT(DISTINCT key) FROM metadata),
			(SELECT MAX(updated_at) FROM sidecars)
	`).Scan(&stats.SidecarCount, &stats.EntryCount, &stats.KeyCount, &lastUpdated)
	if err != nil {
		return IndexStats{}, err
	}
	if lastUpdated.Valid {
		stats.LastUpdated = time.Unix(lastUpdated.Int64, 0)
	}
	return stats, nil
}
