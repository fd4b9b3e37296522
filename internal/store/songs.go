package store

import (
	"context"
	"fmt"
	"strings"
)

// searchField maps a caller-facing search field to the columns it
// matches against. Columns within one field are OR'd together; distinct
// supplied fields are AND'd. The slice order fixes the order conditions
// appear in the query.
type searchField struct {
	name    string
	columns []string
}

var searchFields = []searchField{
	{"song", []string{"d.song_name", "d.song_sub_name"}},
	{"author", []string{"d.author_name"}},
	{"hash", []string{"d.hash_md5"}},
	{"name", []string{"s.name"}},
	{"user", []string{"u.name"}},
	{"all", []string{"d.song_name", "d.song_sub_name", "d.author_name", "s.name", "u.name"}},
}

// SongCount returns the total number of song rows. Soft-deleted songs
// are included: the figure is an all-time catalogue total, unlike every
// other operation here.
func (s *Store) SongCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM songs
	`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count songs: %w", err)
	}
	return count, nil
}

// UserSongCount returns how many non-deleted songs the user owns.
// Revision state is not consulted.
func (s *Store) UserSongCount(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM songs
		WHERE user_id = $1 AND deleted_at IS NULL
	`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count user songs: %w", err)
	}
	return count, nil
}

// TopSongKeys lists song keys ranked descending by the given column of
// each song's winning revision.
func (s *Store) TopSongKeys(ctx context.Context, order SortColumn, offset, limit int) ([]SongKey, error) {
	return s.songKeys(ctx, keyQuery{order: order}, offset, limit)
}

// UserSongKeys lists the user's song keys newest first. Songs whose
// owning user row is itself soft-deleted are excluded, even when the
// songs themselves are not.
func (s *Store) UserSongKeys(ctx context.Context, userID int64, offset, limit int) ([]SongKey, error) {
	q := keyQuery{
		order:     SortCreatedAt,
		joinUsers: true,
		conds:     []string{"s.user_id = $1", "u.deleted_at IS NULL"},
		args:      []any{userID},
	}
	return s.songKeys(ctx, q, offset, limit)
}

// SearchSongKeys lists song keys whose whitelisted fields contain the
// supplied terms as case-insensitive substrings, newest first.
// Unrecognized field names are ignored; if nothing recognizable was
// supplied no query is issued and the result is empty.
func (s *Store) SearchSongKeys(ctx context.Context, terms map[string]string, offset, limit int) ([]SongKey, error) {
	q := keyQuery{order: SortCreatedAt, joinUsers: true}

	argIdx := 1
	for _, field := range searchFields {
		term, ok := terms[field.name]
		if !ok {
			continue
		}

		parts := make([]string, 0, len(field.columns))
		for _, col := range field.columns {
			parts = append(parts, fmt.Sprintf("%s ILIKE $%d", col, argIdx))
		}
		cond := parts[0]
		if len(parts) > 1 {
			cond = "(" + strings.Join(parts, " OR ") + ")"
		}

		q.conds = append(q.conds, cond)
		q.args = append(q.args, "%"+term+"%")
		argIdx++
	}

	if len(q.conds) == 0 {
		return nil, nil
	}

	return s.songKeys(ctx, q, offset, limit)
}
