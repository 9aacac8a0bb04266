package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/akarpov/lifefeed/internal/snapshot"
)

func newTestServer() *server {
	return &server{
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		store: snapshot.NewStore(),
	}
}

func TestHandleFeedNotFoundBeforeFirstCycle(t *testing.T) {
	srv := newTestServer()

	rec := httptest.NewRecorder()
	srv.handleFeed(rec, httptest.NewRequest(http.MethodGet, "/feed.xml", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleFeedServesSnapshot(t *testing.T) {
	srv := newTestServer()
	builtAt := time.Date(2024, 6, 10, 21, 0, 0, 0, time.UTC)
	srv.store.Publish(&snapshot.Snapshot{
		XML:     []byte(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel></channel></rss>`),
		BuiltAt: builtAt,
	})

	rec := httptest.NewRecorder()
	srv.handleFeed(rec, httptest.NewRequest(http.MethodGet, "/feed.xml", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/xml; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Body.String(), `<rss version="2.0">`)
	require.Equal(t, builtAt.Format(http.TimeFormat), rec.Header().Get("Last-Modified"))
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer()

	rec := httptest.NewRecorder()
	srv.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	srv.store.Publish(&snapshot.Snapshot{XML: []byte("<rss/>"), BuiltAt: time.Now()})

	rec = httptest.NewRecorder()
	srv.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
