package api

import (
	"log"
	"net/http"

	"github.com/Stockmasterflex/legend-ai-scanner/cache"
	"github.com/Stockmasterflex/legend-ai-scanner/database/patterns"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// handlePatterns serves the paginated pattern listing. Un-cursored
// first pages are cached in Redis; deeper pages always hit Postgres.
func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	minLimit, maxLimit := 1, maxPageLimit
	limit := getIntParam(r, "limit", defaultPageLimit, &minLimit, &maxLimit)
	cursor := r.URL.Query().Get("cursor")

	cacheable := cursor == "" && s.redis != nil
	if cacheable {
		var page patterns.Page
		if err := s.redis.Get(r.Context(), cache.PatternsPageKey(limit), &page); err == nil {
			writeJSON(w, http.StatusOK, &page)
			return
		}
	}

	page, err := s.store.FetchPage(limit, cursor)
	if err != nil {
		log.Printf("⚠️  Failed to fetch patterns: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch patterns")
		return
	}

	if cacheable {
		if err := s.redis.Set(r.Context(), cache.PatternsPageKey(limit), page, cache.ResponseTTL); err != nil {
			log.Printf("⚠️  Failed to cache patterns page: %v", err)
		}
	}
	writeJSON(w, http.StatusOK, page)
}

// handleStatus serves scan recency and row counts.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if s.redis != nil {
		var status patterns.Status
		if err := s.redis.Get(r.Context(), cache.StatusKey, &status); err == nil {
			writeJSON(w, http.StatusOK, &status)
			return
		}
	}

	status, err := s.store.Status()
	if err != nil {
		log.Printf("⚠️  Failed to fetch status: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch status")
		return
	}

	if s.redis != nil {
		if err := s.redis.Set(r.Context(), cache.StatusKey, status, cache.ResponseTTL); err != nil {
			log.Printf("⚠️  Failed to cache status: %v", err)
		}
	}
	writeJSON(w, http.StatusOK, status)
}

// handleScanTrigger queues a universe scan. When an admin token is
// configured the request must carry it as a bearer token.
func (s *Server) handleScanTrigger(w http.ResponseWriter, r *http.Request) {
	if s.adminToken != "" && r.Header.Get("Authorization") != "Bearer "+s.adminToken {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if s.triggerFn == nil {
		writeError(w, http.StatusServiceUnavailable, "scanner not available")
		return
	}
	if !s.triggerFn() {
		writeError(w, http.StatusConflict, "scan already running")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// handleHealth reports liveness, including database reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		if err := s.ping(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
