package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/FocuswithJustin/pubid/core/cache"
	errs "github.com/FocuswithJustin/pubid/core/errors"
	"github.com/FocuswithJustin/pubid/core/grammar"
	"github.com/FocuswithJustin/pubid/core/pubid"
	"github.com/FocuswithJustin/pubid/internal/logging"
)

// ParseRequest is the body of POST /api/v1/parse.
type ParseRequest struct {
	Input string `json:"input"`
	Full  bool   `json:"full"`
}

// ParseResponse carries the canonical rendering, plus the full rendering
// when it was requested.
type ParseResponse struct {
	Input     string `json:"input"`
	Canonical string `json:"canonical"`
	Full      string `json:"full,omitempty"`
}

// ErrorResponse describes a failed request. Offset and Expected are set
// for syntax errors only.
type ErrorResponse struct {
	Error    string   `json:"error"`
	Offset   *int     `json:"offset,omitempty"`
	Expected []string `json:"expected,omitempty"`
}

// HealthInfo is the health check response.
type HealthInfo struct {
	Status  string       `json:"status"`
	Uptime  string       `json:"uptime"`
	Catalog bool         `json:"catalog"`
	Cache   *cache.Stats `json:"cache,omitempty"`
}

type statser interface {
	Stats() cache.Stats
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := HealthInfo{
		Status:  "ok",
		Uptime:  time.Since(s.started).Round(time.Second).String(),
		Catalog: s.catalog != nil,
	}
	if c, ok := s.parser.(statser); ok {
		stats := c.Stats()
		info.Cache = &stats
	}
	respond(w, http.StatusOK, info)
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.maxBody())
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	resp, status, errResp := s.parse(r, req)
	if errResp != nil {
		respond(w, status, errResp)
		return
	}
	respond(w, http.StatusOK, resp)
}

// parse runs one request through the parser, shared by the REST and
// websocket endpoints.
func (s *Server) parse(r *http.Request, req ParseRequest) (*ParseResponse, int, *ErrorResponse) {
	input := strings.TrimSpace(req.Input)
	if input == "" {
		return nil, http.StatusBadRequest, &ErrorResponse{Error: "input is required"}
	}

	id, err := s.parser.Parse(input)
	if err != nil {
		logging.ParseFailure(r.Context(), input, err)
		return nil, http.StatusUnprocessableEntity, parseErrorResponse(err)
	}

	resp := &ParseResponse{Input: req.Input, Canonical: id.String()}
	if req.Full {
		resp.Full = id.Full()
	}
	return resp, http.StatusOK, nil
}

func parseErrorResponse(err error) *ErrorResponse {
	resp := &ErrorResponse{Error: err.Error()}
	var syn *grammar.SyntaxError
	if errors.As(err, &syn) {
		offset := syn.Offset
		resp.Offset = &offset
		resp.Expected = syn.Expected
	}
	return resp
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		respondError(w, http.StatusServiceUnavailable, "no catalog configured")
		return
	}
	raw := r.URL.Query().Get("raw")
	if raw == "" {
		respondError(w, http.StatusBadRequest, "raw query parameter is required")
		return
	}
	entry, err := s.catalog.Lookup(r.Context(), raw)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respond(w, http.StatusOK, entry)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		respondError(w, http.StatusServiceUnavailable, "no catalog configured")
		return
	}
	runs, err := s.catalog.Runs(r.Context())
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respond(w, http.StatusOK, runs)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		respondError(w, http.StatusServiceUnavailable, "no catalog configured")
		return
	}
	run, err := s.catalog.Run(r.Context(), r.PathValue("id"))
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respond(w, http.StatusOK, run)
}

func respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errs.ErrNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	logging.ErrorContext(r.Context(), "catalog query failed", "error", err)
	respondError(w, http.StatusInternalServerError, "catalog query failed")
}

func respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respond(w, status, ErrorResponse{Error: message})
}

// Ensure the cached parser keeps satisfying the health probe.
var _ statser = (*pubid.CachedParser)(nil)
