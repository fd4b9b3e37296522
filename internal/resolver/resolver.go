package resolver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"songvault/internal/app/catalog"
	"songvault/internal/store"
)

// ErrNotFound signals the key no longer points at a stored revision.
var ErrNotFound = errors.New("song not found")

// SQLResolver hydrates song keys straight from the database.
type SQLResolver struct {
	db      *sql.DB
	baseURL string
}

// NewSQL builds a resolver reading from the given handle. baseURL is
// the public prefix used for the API-shape links.
func NewSQL(db *sql.DB, baseURL string) *SQLResolver {
	return &SQLResolver{db: db, baseURL: baseURL}
}

// Resolve re-fetches the song and its winning revision named by key.
func (r *SQLResolver) Resolve(ctx context.Context, key store.SongKey, apiFormat bool) (catalog.Song, error) {
	songID, revisionID, err := key.Parse()
	if err != nil {
		return catalog.Song{}, err
	}

	var (
		song     catalog.Song
		userName sql.NullString
	)
	err = r.db.QueryRowContext(ctx, `
		SELECT s.id, s.user_id, u.name, s.name,
		       d.song_name, d.song_sub_name, d.author_name, d.hash_md5,
		       d.play_count, d.download_count, d.created_at
		FROM song_details d
		JOIN songs s ON d.song_id = s.id
		LEFT JOIN users u ON s.user_id = u.id
		WHERE d.id = $1 AND d.song_id = $2
	`, revisionID, songID).Scan(
		&song.ID, &song.UserID, &userName, &song.Name,
		&song.SongName, &song.SongSubName, &song.AuthorName, &song.HashMD5,
		&song.PlayCount, &song.DownloadCount, &song.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Song{}, ErrNotFound
	}
	if err != nil {
		return catalog.Song{}, fmt.Errorf("resolve song %s: %w", key, err)
	}

	if userName.Valid {
		song.UserName = userName.String
	}

	if apiFormat {
		song.Links = &catalog.Links{
			Download: fmt.Sprintf("%s/download/%s", r.baseURL, key),
			Cover:    fmt.Sprintf("%s/cover/%s.jpg", r.baseURL, key),
			Page:     fmt.Sprintf("%s/songs/%d", r.baseURL, songID),
		}
	}

	return song, nil
}
