package server

import (
	"net/http"
	"strings"
	"wvw-dashboard/internal/snapshot"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

const (
	DataPath            = "/data/"
	ImportantGuildsPath = "/importantguilds/"
	HealthPath          = "/healthz"
	OwnTeamPath         = "/ownteam/"
)

var emptySnapshot = []byte("{}")

type DashboardServer struct {
	cache     *snapshot.Cache
	important snapshot.ImportantGuilds
	logger    zerolog.Logger
}

func NewDashboardServer(cache *snapshot.Cache, important snapshot.ImportantGuilds, logger zerolog.Logger) *DashboardServer {
	return &DashboardServer{cache: cache, important: important, logger: logger}
}

func (s *DashboardServer) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+DataPath, s.GetData)
	mux.HandleFunc("GET "+ImportantGuildsPath, s.GetImportantGuilds)
	mux.HandleFunc("GET "+OwnTeamPath, s.GetOwnTeam)
	mux.HandleFunc("GET "+HealthPath, s.Health)
	return mux
}

// GetData serves the published snapshot. Clients holding the current ETag
// get 304 Not Modified.
func (s *DashboardServer) GetData(w http.ResponseWriter, r *http.Request) {
	p := s.cache.Load()
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")

	if p == nil {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(emptySnapshot)
		return
	}

	etag := `"` + p.ETag + `"`
	w.Header().Set("ETag", etag)

	if etagMatches(r.Header.Get("If-None-Match"), p.ETag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(p.Body); err != nil {
		zerolog.Ctx(r.Context()).Debug().Err(err).Msg("client went away")
	}
}

func (s *DashboardServer) GetImportantGuilds(w http.ResponseWriter, r *http.Request) {
	body, err := json.Marshal(s.important)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to encode important guilds")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

// GetOwnTeam serves the own guild's team name from the current snapshot.
func (s *DashboardServer) GetOwnTeam(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	p := s.cache.Load()
	if p == nil || p.Data == nil || p.Data.OwnTeam == "" {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"guild not found"}`))
		return
	}

	body, err := json.Marshal(p.Data.OwnTeam)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to encode own team")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	_, _ = w.Write(body)
}

// Health reports 200 once a snapshot has been published.
func (s *DashboardServer) Health(w http.ResponseWriter, r *http.Request) {
	if s.cache.Load() == nil {
		http.Error(w, "snapshot not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// etagMatches accepts quoted, weak and bare tags, comma separated lists and *.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" {
			return true
		}
		candidate = strings.TrimPrefix(candidate, "W/")
		candidate = strings.Trim(candidate, `"`)
		if candidate == etag {
			return true
		}
	}
	return false
}
