package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/msaleem/trendwatch/pkg/keywords"
	"github.com/msaleem/trendwatch/pkg/trend"
)

// statusHandler returns server status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":  "ok",
		"version": s.version,
		"time":    time.Now().UTC(),
	}
	renderJSON(w, r, http.StatusOK, status)
}

// getKeywordsHandler returns the tracked keyword list
func (s *Server) getKeywordsHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"keywords": s.keywords.All(),
		"limit":    keywords.MaxKeywords,
	}
	if updated := s.keywords.LastUpdated(); !updated.IsZero() {
		resp["last_updated"] = updated
	}
	renderJSON(w, r, http.StatusOK, resp)
}

// addKeywordHandler adds a single keyword
func (s *Server) addKeywordHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Keyword string `json:"keyword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body"), http.StatusBadRequest)
		return
	}

	if err := s.keywords.Add(r.Context(), req.Keyword); err != nil {
		renderKeywordError(w, r, err)
		return
	}
	renderJSON(w, r, http.StatusCreated, map[string]interface{}{"keywords": s.keywords.All()})
}

// setKeywordsHandler replaces the whole list
func (s *Server) setKeywordsHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Keywords []string `json:"keywords"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body"), http.StatusBadRequest)
		return
	}

	result, err := s.keywords.SetAll(r.Context(), req.Keywords)
	if err != nil {
		renderKeywordError(w, r, err)
		return
	}
	renderJSON(w, r, http.StatusOK, result)
}

// removeKeywordHandler deletes one keyword
func (s *Server) removeKeywordHandler(w http.ResponseWriter, r *http.Request) {
	keyword := r.PathValue("keyword")
	if err := s.keywords.Remove(r.Context(), keyword); err != nil {
		renderKeywordError(w, r, err)
		return
	}
	renderJSON(w, r, http.StatusOK, map[string]interface{}{"keywords": s.keywords.All()})
}

// resetKeywordsHandler restores the default keyword set
func (s *Server) resetKeywordsHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.keywords.ResetDefaults(r.Context()); err != nil {
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, map[string]interface{}{"keywords": s.keywords.All()})
}

// validateKeywordsHandler reports per-candidate validity without mutating
func (s *Server) validateKeywordsHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Keywords []string `json:"keywords"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body"), http.StatusBadRequest)
		return
	}
	renderJSON(w, r, http.StatusOK, map[string]interface{}{"report": s.keywords.Validate(req.Keywords)})
}

// renderKeywordError maps keyword store errors to HTTP status codes
func renderKeywordError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, keywords.ErrValidation):
		renderError(w, r, err, http.StatusBadRequest)
	case errors.Is(err, keywords.ErrCapacity), errors.Is(err, keywords.ErrDuplicate):
		renderError(w, r, err, http.StatusConflict)
	case errors.Is(err, keywords.ErrNotFound):
		renderError(w, r, err, http.StatusNotFound)
	default:
		lgr.Printf("[ERROR] keyword operation failed: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
	}
}

// trendingHandler returns the latest snapshot, optionally truncated by limit
func (s *Server) trendingHandler(w http.ResponseWriter, r *http.Request) {
	snap, err := s.trending.Latest(r.Context())
	if err != nil {
		lgr.Printf("[ERROR] failed to load snapshot: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	if snap == nil {
		renderError(w, r, fmt.Errorf("no collection has completed yet"), http.StatusNotFound)
		return
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			renderError(w, r, fmt.Errorf("invalid limit"), http.StatusBadRequest)
			return
		}
		if limit < len(snap.Records) {
			snap.Records = snap.Records[:limit]
		}
	}
	renderJSON(w, r, http.StatusOK, snap)
}

// collectHandler starts a collection run in the background
func (s *Server) collectHandler(w http.ResponseWriter, r *http.Request) {
	go func() {
		// the run outlives the request, concurrent triggers are coalesced
		if _, err := s.collector.Run(context.Background()); err != nil {
			lgr.Printf("[WARN] manual collection failed: %v", err)
		}
	}()
	renderJSON(w, r, http.StatusAccepted, map[string]string{"status": "collection started"})
}

// frequencyChartHandler returns per-keyword per-source mention counts
func (s *Server) frequencyChartHandler(w http.ResponseWriter, r *http.Request) {
	items, err := s.trending.LatestItems(r.Context())
	if err != nil {
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, trend.Frequency(s.keywords.All(), items))
}

// interestChartHandler returns the search interest time series
func (s *Server) interestChartHandler(w http.ResponseWriter, r *http.Request) {
	items, err := s.trending.LatestItems(r.Context())
	if err != nil {
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, map[string]interface{}{"points": trend.InterestSeries(s.keywords.All(), items)})
}

// engagementChartHandler returns total raw engagement per source
func (s *Server) engagementChartHandler(w http.ResponseWriter, r *http.Request) {
	items, err := s.trending.LatestItems(r.Context())
	if err != nil {
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, map[string]interface{}{"engagement": trend.EngagementSums(items)})
}

// schedulerStatusHandler returns scheduler state
func (s *Server) schedulerStatusHandler(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, r, http.StatusOK, s.scheduler.Status())
}

// schedulerTriggerHandler fires a scheduled collection immediately
func (s *Server) schedulerTriggerHandler(w http.ResponseWriter, r *http.Request) {
	s.scheduler.TriggerNow()
	renderJSON(w, r, http.StatusAccepted, map[string]string{"status": "collection triggered"})
}

// renderJSON sends JSON response
func renderJSON(w http.ResponseWriter, _ *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			lgr.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// renderError sends error response as JSON
func renderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	renderJSON(w, r, code, map[string]string{"error": errMsg})
}
