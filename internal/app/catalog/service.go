package catalog

import (
	"context"
	"time"

	"songvault/internal/store"
)

// DefaultLimit is the page size used when the caller supplies none.
const DefaultLimit = 15

// Song is a fully hydrated listing entry as produced by the resolver.
type Song struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"userId"`
	UserName      string    `json:"userName"`
	Name          string    `json:"name"`
	SongName      string    `json:"songName"`
	SongSubName   string    `json:"songSubName"`
	AuthorName    string    `json:"authorName"`
	HashMD5       string    `json:"hashMd5"`
	PlayCount     int64     `json:"playCount"`
	DownloadCount int64     `json:"downloadCount"`
	CreatedAt     time.Time `json:"createdAt"`
	Links         *Links    `json:"links,omitempty"`
}

// Links carries the API-shape URLs, filled only when the caller asked
// for API format.
type Links struct {
	Download string `json:"downloadUrl"`
	Cover    string `json:"coverUrl"`
	Page     string `json:"pageUrl"`
}

// Page bundles the pagination and shaping parameters shared by every
// listing operation.
type Page struct {
	Offset    int
	Limit     int
	APIFormat bool
}

func (p Page) normalized() Page {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	return p
}

// SongStore captures the catalogue queries the service composes.
type SongStore interface {
	SongCount(ctx context.Context) (int64, error)
	UserSongCount(ctx context.Context, userID int64) (int64, error)
	TopSongKeys(ctx context.Context, order store.SortColumn, offset, limit int) ([]store.SongKey, error)
	UserSongKeys(ctx context.Context, userID int64, offset, limit int) ([]store.SongKey, error)
	SearchSongKeys(ctx context.Context, terms map[string]string, offset, limit int) ([]store.SongKey, error)
}

// Resolver hydrates a song key into a full record. The strategy behind
// it (direct SQL, cache, remote call) is up to the implementation.
type Resolver interface {
	Resolve(ctx context.Context, key store.SongKey, apiFormat bool) (Song, error)
}

// Service exposes the read-only catalogue operations.
type Service interface {
	SongCount(ctx context.Context) (int64, error)
	UserSongCount(ctx context.Context, userID int64) (int64, error)
	TopPlayed(ctx context.Context, page Page) ([]Song, error)
	TopDownloaded(ctx context.Context, page Page) ([]Song, error)
	Newest(ctx context.Context, page Page) ([]Song, error)
	ByUser(ctx context.Context, userID int64, page Page) ([]Song, error)
	Search(ctx context.Context, terms map[string]string, page Page) ([]Song, error)
}

type service struct {
	songs    SongStore
	resolver Resolver
}

// New constructs a catalogue Service backed by the given store and
// resolver.
func New(songs SongStore, resolver Resolver) Service {
	return &service{songs: songs, resolver: resolver}
}

func (s *service) SongCount(ctx context.Context) (int64, error) {
	return s.songs.SongCount(ctx)
}

func (s *service) UserSongCount(ctx context.Context, userID int64) (int64, error) {
	return s.songs.UserSongCount(ctx, userID)
}

func (s *service) TopPlayed(ctx context.Context, page Page) ([]Song, error) {
	return s.top(ctx, store.SortPlayCount, page)
}

func (s *service) TopDownloaded(ctx context.Context, page Page) ([]Song, error) {
	return s.top(ctx, store.SortDownloadCount, page)
}

func (s *service) Newest(ctx context.Context, page Page) ([]Song, error) {
	return s.top(ctx, store.SortCreatedAt, page)
}

func (s *service) top(ctx context.Context, order store.SortColumn, page Page) ([]Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page = page.normalized()

	keys, err := s.songs.TopSongKeys(ctx, order, page.Offset, page.Limit)
	if err != nil {
		return nil, err
	}
	return s.resolveAll(ctx, keys, page.APIFormat)
}

func (s *service) ByUser(ctx context.Context, userID int64, page Page) ([]Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page = page.normalized()

	keys, err := s.songs.UserSongKeys(ctx, userID, page.Offset, page.Limit)
	if err != nil {
		return nil, err
	}
	return s.resolveAll(ctx, keys, page.APIFormat)
}

func (s *service) Search(ctx context.Context, terms map[string]string, page Page) ([]Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(terms) == 0 {
		return nil, nil
	}
	page = page.normalized()

	keys, err := s.songs.SearchSongKeys(ctx, terms, page.Offset, page.Limit)
	if err != nil {
		return nil, err
	}
	return s.resolveAll(ctx, keys, page.APIFormat)
}

// resolveAll maps keys through the resolver, keeping the query order.
func (s *service) resolveAll(ctx context.Context, keys []store.SongKey, apiFormat bool) ([]Song, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	songs := make([]Song, 0, len(keys))
	for _, key := range keys {
		song, err := s.resolver.Resolve(ctx, key, apiFormat)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	return songs, nil
}
