package server

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"wvw-dashboard/internal/errsink"
	"wvw-dashboard/internal/snapshot"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func publish(t *testing.T, cache *snapshot.Cache, data *snapshot.Data) *snapshot.Published {
	t.Helper()
	p, err := snapshot.Publish(data, time.Unix(0, 0))
	require.NoError(t, err)
	cache.Store(p)
	return p
}

func newTestHandler(t *testing.T, cache *snapshot.Cache) http.Handler {
	t.Helper()
	dash := NewDashboardServer(cache, snapshot.ImportantGuilds{"Alpha", "Bravo"}, zerolog.Nop())
	h, err := NewHandler(dash, errsink.Nop, zerolog.Nop())
	require.NoError(t, err)
	return h
}

func TestGetDataBeforeFirstSnapshot(t *testing.T) {
	h := newTestHandler(t, snapshot.NewCache())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, DataPath, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "{}", rec.Body.String())
	assert.Empty(t, rec.Header().Get("ETag"))
}

func TestGetDataWithETag(t *testing.T) {
	cache := snapshot.NewCache()
	p := publish(t, cache, &snapshot.Data{OwnTeam: "Bava Nisos", ImportantGuilds: []string{}})
	h := newTestHandler(t, cache)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, DataPath, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `"`+p.ETag+`"`, rec.Header().Get("ETag"))
	assert.JSONEq(t, string(p.Body), rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, DataPath, nil)
	req.Header.Set("If-None-Match", rec.Header().Get("ETag"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestGetDataStaleETag(t *testing.T) {
	cache := snapshot.NewCache()
	publish(t, cache, &snapshot.Data{OwnTeam: "one"})
	h := newTestHandler(t, cache)

	req := httptest.NewRequest(http.MethodGet, DataPath, nil)
	req.Header.Set("If-None-Match", `"outdated"`)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetDataGzip(t *testing.T) {
	cache := snapshot.NewCache()
	guilds := make([]string, 200)
	for i := range guilds {
		guilds[i] = "Some Rather Long Guild Name"
	}
	p := publish(t, cache, &snapshot.Data{ImportantGuilds: guilds})
	h := newTestHandler(t, cache)

	req := httptest.NewRequest(http.MethodGet, DataPath, nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, string(p.Body), string(body))
}

func TestGetImportantGuilds(t *testing.T) {
	h := newTestHandler(t, snapshot.NewCache())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, ImportantGuildsPath, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["Alpha","Bravo"]`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	cache := snapshot.NewCache()
	h := newTestHandler(t, cache)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, HealthPath, nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	publish(t, cache, &snapshot.Data{})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, HealthPath, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestHandler(t, snapshot.NewCache())

	req := httptest.NewRequest(http.MethodOptions, DataPath, nil)
	req.Header.Set("Origin", "https://example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, rec.Code == http.StatusNoContent || rec.Code == http.StatusOK)
}

func TestETagMatches(t *testing.T) {
	assert.True(t, etagMatches(`"abc"`, "abc"))
	assert.True(t, etagMatches(`W/"abc"`, "abc"))
	assert.True(t, etagMatches(`"x", "abc"`, "abc"))
	assert.True(t, etagMatches("*", "abc"))
	assert.True(t, etagMatches("abc", "abc"))
	assert.False(t, etagMatches("", "abc"))
	assert.False(t, etagMatches(`"abd"`, "abc"))
}

func TestGetOwnTeam(t *testing.T) {
	cache := snapshot.NewCache()
	h := newTestHandler(t, cache)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, OwnTeamPath, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"guild not found"}`, rec.Body.String())

	publish(t, cache, &snapshot.Data{OwnTeam: "Bava Nisos", ImportantGuilds: []string{}})

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, OwnTeamPath, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `"Bava Nisos"`, rec.Body.String())
}
