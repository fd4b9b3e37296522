package httpapi

import (
	"net/http"
	"strconv"

	"songvault/internal/app/catalog"
)

// reservedParams are query parameters consumed by pagination/shaping
// rather than treated as search fields.
var reservedParams = map[string]bool{
	"offset": true,
	"limit":  true,
	"format": true,
}

func pageFromRequest(r *http.Request) catalog.Page {
	query := r.URL.Query()

	var page catalog.Page
	if v, err := strconv.Atoi(query.Get("offset")); err == nil {
		page.Offset = v
	}
	if v, err := strconv.Atoi(query.Get("limit")); err == nil {
		page.Limit = v
	}
	page.APIFormat = query.Get("format") == "api"

	return page
}

func (s *Server) handleSongCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.catalog.SongCount(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, struct {
		Count int64 `json:"count"`
	}{Count: count})
}

func (s *Server) handleUserSongCount(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	count, err := s.catalog.UserSongCount(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, struct {
		Count int64 `json:"count"`
	}{Count: count})
}

func (s *Server) handleTopPlayed(w http.ResponseWriter, r *http.Request) {
	songs, err := s.catalog.TopPlayed(r.Context(), pageFromRequest(r))
	s.writeSongs(w, songs, err)
}

func (s *Server) handleTopDownloaded(w http.ResponseWriter, r *http.Request) {
	songs, err := s.catalog.TopDownloaded(r.Context(), pageFromRequest(r))
	s.writeSongs(w, songs, err)
}

func (s *Server) handleNewest(w http.ResponseWriter, r *http.Request) {
	songs, err := s.catalog.Newest(r.Context(), pageFromRequest(r))
	s.writeSongs(w, songs, err)
}

func (s *Server) handleUserSongs(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	songs, err := s.catalog.ByUser(r.Context(), userID, pageFromRequest(r))
	s.writeSongs(w, songs, err)
}

// handleSearch treats every non-reserved single-valued query parameter
// as a search field. Unrecognized fields are dropped downstream, so a
// bogus parameter yields an empty listing rather than an error.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	terms := make(map[string]string)
	for name, values := range r.URL.Query() {
		if reservedParams[name] || len(values) == 0 {
			continue
		}
		terms[name] = values[0]
	}

	songs, err := s.catalog.Search(r.Context(), terms, pageFromRequest(r))
	s.writeSongs(w, songs, err)
}

func (s *Server) writeSongs(w http.ResponseWriter, songs []catalog.Song, err error) {
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if songs == nil {
		songs = []catalog.Song{}
	}
	writeJSON(w, struct {
		Songs []catalog.Song `json:"songs"`
	}{Songs: songs})
}
