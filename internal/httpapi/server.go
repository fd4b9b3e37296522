package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"songvault/internal/app/catalog"
)

// CatalogService captures the catalogue operations served over HTTP.
type CatalogService interface {
	SongCount(ctx context.Context) (int64, error)
	UserSongCount(ctx context.Context, userID int64) (int64, error)
	TopPlayed(ctx context.Context, page catalog.Page) ([]catalog.Song, error)
	TopDownloaded(ctx context.Context, page catalog.Page) ([]catalog.Song, error)
	Newest(ctx context.Context, page catalog.Page) ([]catalog.Song, error)
	ByUser(ctx context.Context, userID int64, page catalog.Page) ([]catalog.Song, error)
	Search(ctx context.Context, terms map[string]string, page catalog.Page) ([]catalog.Song, error)
}

// Server bundles the HTTP handlers for the catalogue API.
type Server struct {
	catalog CatalogService
}

// New creates a Server around the given catalogue service.
func New(catalogSvc CatalogService) *Server {
	return &Server{catalog: catalogSvc}
}

// Routes exposes the HTTP handlers for the catalogue listings.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("GET /api/v1/songs/count", s.handleSongCount)
	mux.HandleFunc("GET /api/v1/songs/search", s.handleSearch)
	mux.HandleFunc("GET /api/v1/songs/top/played", s.handleTopPlayed)
	mux.HandleFunc("GET /api/v1/songs/top/downloaded", s.handleTopDownloaded)
	mux.HandleFunc("GET /api/v1/songs/newest", s.handleNewest)
	mux.HandleFunc("GET /api/v1/users/{id}/songs", s.handleUserSongs)
	mux.HandleFunc("GET /api/v1/users/{id}/songs/count", s.handleUserSongCount)

	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
