package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// Store provides read-only catalogue queries backed by Postgres.
type Store struct {
	db *sql.DB
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// SortColumn names the revision column a listing is ranked by. The set
// is closed: the column name is interpolated into the ORDER BY
// sub-select, so it must never be derived from caller input.
type SortColumn int

const (
	SortPlayCount SortColumn = iota
	SortDownloadCount
	SortCreatedAt
)

func (c SortColumn) column() string {
	switch c {
	case SortPlayCount:
		return "play_count"
	case SortDownloadCount:
		return "download_count"
	case SortCreatedAt:
		return "created_at"
	}
	panic(fmt.Sprintf("store: unknown sort column %d", int(c)))
}

// SongKey identifies a song together with its winning revision as
// "<songID>-<revisionID>". It is derived per query, handed to the
// resolver, and never persisted.
type SongKey string

// Parse splits the key into its song and revision IDs.
func (k SongKey) Parse() (songID, revisionID int64, err error) {
	idx := strings.IndexByte(string(k), '-')
	if idx <= 0 || idx == len(k)-1 {
		return 0, 0, fmt.Errorf("malformed song key %q", string(k))
	}
	songID, err = strconv.ParseInt(string(k[:idx]), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed song key %q: %w", string(k), err)
	}
	revisionID, err = strconv.ParseInt(string(k[idx+1:]), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed song key %q: %w", string(k), err)
	}
	return songID, revisionID, nil
}

// keyQuery accumulates the variable pieces of a latest-revision key
// query. Conditions must already carry their $n placeholders, aligned
// with args; offset and limit take the next two indexes.
type keyQuery struct {
	order     SortColumn
	joinUsers bool
	conds     []string
	args      []any
}

// build assembles the base query: revisions left-joined to their song,
// both soft-delete markers filtered, one row per song via MAX(d.id),
// ranked by the order column read from the winning revision itself.
func (q keyQuery) build(offset, limit int) (string, []any) {
	query := `
		SELECT s.id::text || '-' || MAX(d.id)::text AS song_key
		FROM song_details d
		LEFT JOIN songs s ON d.song_id = s.id`
	if q.joinUsers {
		query += `
		LEFT JOIN users u ON s.user_id = u.id`
	}
	query += `
		WHERE d.deleted_at IS NULL AND s.deleted_at IS NULL`
	for _, cond := range q.conds {
		query += " AND " + cond
	}

	args := append([]any{}, q.args...)
	argIdx := len(args) + 1
	query += fmt.Sprintf(`
		GROUP BY s.id
		ORDER BY (SELECT w.%s FROM song_details w WHERE w.id = MAX(d.id)) DESC
		OFFSET $%d LIMIT $%d`, q.order.column(), argIdx, argIdx+1)
	args = append(args, offset, limit)

	return query, args
}

func (s *Store) songKeys(ctx context.Context, q keyQuery, offset, limit int) ([]SongKey, error) {
	query, args := q.build(offset, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query song keys: %w", err)
	}
	defer rows.Close()

	var keys []SongKey
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan song key: %w", err)
		}
		keys = append(keys, SongKey(key))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate song keys: %w", err)
	}

	return keys, nil
}
