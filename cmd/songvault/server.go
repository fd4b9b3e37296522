package main

import (
	"database/sql"
	"net/http"

	"songvault/internal/app/catalog"
	"songvault/internal/http/middleware"
	"songvault/internal/httpapi"
	"songvault/internal/resolver"
	"songvault/internal/store"
)

func newHTTPHandler(cfg Config, db *sql.DB) http.Handler {
	songStore := store.New(db)
	songResolver := resolver.NewSQL(db, cfg.BaseURL)
	catalogSvc := catalog.New(songStore, songResolver)

	handler := httpapi.New(catalogSvc).Routes()
	handler = middleware.CORS(cfg.AllowedOrigin)(handler)
	handler = middleware.RequestLogging()(handler)
	handler = middleware.Recovery()(handler)

	return handler
}
