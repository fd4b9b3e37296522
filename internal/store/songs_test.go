package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

const baseKeyQuery = `
	SELECT s.id::text || '-' || MAX(d.id)::text AS song_key
	FROM song_details d
	LEFT JOIN songs s ON d.song_id = s.id`

func TestSongKeyParse(t *testing.T) {
	tests := []struct {
		name       string
		key        SongKey
		songID     int64
		revisionID int64
		wantErr    bool
	}{
		{name: "valid", key: "12-345", songID: 12, revisionID: 345},
		{name: "missing separator", key: "12345", wantErr: true},
		{name: "missing revision", key: "12-", wantErr: true},
		{name: "missing song", key: "-345", wantErr: true},
		{name: "not numeric", key: "a-b", wantErr: true},
		{name: "empty", key: "", wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			songID, revisionID, err := tc.key.Parse()
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.key)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q): %v", tc.key, err)
			}
			if songID != tc.songID || revisionID != tc.revisionID {
				t.Fatalf("Parse(%q) = (%d, %d), want (%d, %d)", tc.key, songID, revisionID, tc.songID, tc.revisionID)
			}
		})
	}
}

func TestSongCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	// Deliberately no deletion filter: the total includes soft-deleted songs.
	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT COUNT(*)
		FROM songs
	`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(120)))

	count, err := s.SongCount(context.Background())
	if err != nil {
		t.Fatalf("SongCount: %v", err)
	}
	if count != 120 {
		t.Fatalf("expected 120, got %d", count)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserSongCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT COUNT(*)
		FROM songs
		WHERE user_id = $1 AND deleted_at IS NULL
	`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))

	count, err := s.UserSongCount(context.Background(), 7)
	if err != nil {
		t.Fatalf("UserSongCount: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3, got %d", count)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTopSongKeys(t *testing.T) {
	tests := []struct {
		name   string
		order  SortColumn
		column string
	}{
		{name: "by play count", order: SortPlayCount, column: "play_count"},
		{name: "by download count", order: SortDownloadCount, column: "download_count"},
		{name: "by creation date", order: SortCreatedAt, column: "created_at"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("sqlmock.New: %v", err)
			}
			defer db.Close()

			s := New(db)

			mock.ExpectQuery(regexp.QuoteMeta(baseKeyQuery+`
				WHERE d.deleted_at IS NULL AND s.deleted_at IS NULL
				GROUP BY s.id
				ORDER BY (SELECT w.`+tc.column+` FROM song_details w WHERE w.id = MAX(d.id)) DESC
				OFFSET $1 LIMIT $2`)).
				WithArgs(5, 2).
				WillReturnRows(sqlmock.NewRows([]string{"song_key"}).
					AddRow("1-9").
					AddRow("2-4"))

			keys, err := s.TopSongKeys(context.Background(), tc.order, 5, 2)
			if err != nil {
				t.Fatalf("TopSongKeys: %v", err)
			}

			if len(keys) != 2 || keys[0] != "1-9" || keys[1] != "2-4" {
				t.Fatalf("unexpected keys: %#v", keys)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestTopSongKeysQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	queryErr := errors.New("connection reset")
	mock.ExpectQuery("SELECT").WillReturnError(queryErr)

	if _, err := s.TopSongKeys(context.Background(), SortPlayCount, 0, 15); !errors.Is(err, queryErr) {
		t.Fatalf("expected wrapped query error, got %v", err)
	}
}

func TestUserSongKeys(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(baseKeyQuery + `
		LEFT JOIN users u ON s.user_id = u.id
		WHERE d.deleted_at IS NULL AND s.deleted_at IS NULL AND s.user_id = $1 AND u.deleted_at IS NULL
		GROUP BY s.id
		ORDER BY (SELECT w.created_at FROM song_details w WHERE w.id = MAX(d.id)) DESC
		OFFSET $2 LIMIT $3`)).
		WithArgs(int64(7), 0, 15).
		WillReturnRows(sqlmock.NewRows([]string{"song_key"}).AddRow("3-11"))

	keys, err := s.UserSongKeys(context.Background(), 7, 0, 15)
	if err != nil {
		t.Fatalf("UserSongKeys: %v", err)
	}
	if len(keys) != 1 || keys[0] != "3-11" {
		t.Fatalf("unexpected keys: %#v", keys)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSearchSongKeysSingleField(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(baseKeyQuery + `
		LEFT JOIN users u ON s.user_id = u.id
		WHERE d.deleted_at IS NULL AND s.deleted_at IS NULL AND s.name ILIKE $1
		GROUP BY s.id
		ORDER BY (SELECT w.created_at FROM song_details w WHERE w.id = MAX(d.id)) DESC
		OFFSET $2 LIMIT $3`)).
		WithArgs("%Foo%", 0, 15).
		WillReturnRows(sqlmock.NewRows([]string{"song_key"}).
			AddRow("5-8").
			AddRow("2-2"))

	keys, err := s.SearchSongKeys(context.Background(), map[string]string{"name": "Foo"}, 0, 15)
	if err != nil {
		t.Fatalf("SearchSongKeys: %v", err)
	}
	if len(keys) != 2 || keys[0] != "5-8" || keys[1] != "2-2" {
		t.Fatalf("unexpected keys: %#v", keys)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSearchSongKeysMultiField(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	// Multi-column fields OR within the field, distinct fields AND
	// together. The "song" field precedes "author" in the whitelist.
	mock.ExpectQuery(regexp.QuoteMeta(baseKeyQuery + `
		LEFT JOIN users u ON s.user_id = u.id
		WHERE d.deleted_at IS NULL AND s.deleted_at IS NULL AND (d.song_name ILIKE $1 OR d.song_sub_name ILIKE $1) AND d.author_name ILIKE $2
		GROUP BY s.id
		ORDER BY (SELECT w.created_at FROM song_details w WHERE w.id = MAX(d.id)) DESC
		OFFSET $3 LIMIT $4`)).
		WithArgs("%B%", "%A%", 0, 15).
		WillReturnRows(sqlmock.NewRows([]string{"song_key"}).AddRow("9-14"))

	keys, err := s.SearchSongKeys(context.Background(), map[string]string{
		"author": "A",
		"song":   "B",
	}, 0, 15)
	if err != nil {
		t.Fatalf("SearchSongKeys: %v", err)
	}
	if len(keys) != 1 || keys[0] != "9-14" {
		t.Fatalf("unexpected keys: %#v", keys)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSearchSongKeysAllField(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(baseKeyQuery + `
		LEFT JOIN users u ON s.user_id = u.id
		WHERE d.deleted_at IS NULL AND s.deleted_at IS NULL AND (d.song_name ILIKE $1 OR d.song_sub_name ILIKE $1 OR d.author_name ILIKE $1 OR s.name ILIKE $1 OR u.name ILIKE $1)
		GROUP BY s.id
		ORDER BY (SELECT w.created_at FROM song_details w WHERE w.id = MAX(d.id)) DESC
		OFFSET $2 LIMIT $3`)).
		WithArgs("%neon%", 0, 15).
		WillReturnRows(sqlmock.NewRows([]string{"song_key"}))

	keys, err := s.SearchSongKeys(context.Background(), map[string]string{"all": "neon"}, 0, 15)
	if err != nil {
		t.Fatalf("SearchSongKeys: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("expected no keys, got %#v", keys)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSearchSongKeysNoRecognizedFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	// Unknown field names fall through the whitelist; no query at all.
	keys, err := s.SearchSongKeys(context.Background(), map[string]string{"bogus": "x"}, 0, 15)
	if err != nil {
		t.Fatalf("SearchSongKeys: %v", err)
	}
	if keys != nil {
		t.Fatalf("expected nil keys, got %#v", keys)
	}

	keys, err = s.SearchSongKeys(context.Background(), map[string]string{}, 0, 15)
	if err != nil {
		t.Fatalf("SearchSongKeys: %v", err)
	}
	if keys != nil {
		t.Fatalf("expected nil keys, got %#v", keys)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSearchSongKeysIgnoresUnknownAmongKnown(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(baseKeyQuery + `
		LEFT JOIN users u ON s.user_id = u.id
		WHERE d.deleted_at IS NULL AND s.deleted_at IS NULL AND d.hash_md5 ILIKE $1
		GROUP BY s.id
		ORDER BY (SELECT w.created_at FROM song_details w WHERE w.id = MAX(d.id)) DESC
		OFFSET $2 LIMIT $3`)).
		WithArgs("%abc123%", 10, 5).
		WillReturnRows(sqlmock.NewRows([]string{"song_key"}).AddRow("4-7"))

	keys, err := s.SearchSongKeys(context.Background(), map[string]string{
		"hash":  "abc123",
		"bogus": "ignored",
	}, 10, 5)
	if err != nil {
		t.Fatalf("SearchSongKeys: %v", err)
	}
	if len(keys) != 1 || keys[0] != "4-7" {
		t.Fatalf("unexpected keys: %#v", keys)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
