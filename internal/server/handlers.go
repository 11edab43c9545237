package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Kavirubc/ticketrag/internal/tickets"
	"github.com/Kavirubc/ticketrag/pkg/models"
)

const (
	maxSearchBody    = 64 << 10
	maxTopK          = 50
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// searchRequest.Mode is "answer" (default), "search" for hits only, or "insight"
type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
	Mode  string `json:"mode"`
}

type searchResponse struct {
	*models.Answer
	Count int `json:"count"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxSearchBody))
	if err := dec.Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, "query is required")
		return
	}

	topK := req.TopK
	if topK == 0 {
		topK = s.cfg.Retrieval.TopK
	}
	if topK > maxTopK {
		topK = maxTopK
	}

	var (
		res *models.Answer
		err error
	)
	switch req.Mode {
	case "", "answer":
		res, err = s.processor.Answer(r.Context(), req.Query, topK)
	case "insight":
		res, err = s.processor.Insight(r.Context(), req.Query, topK)
	case "search":
		var hits []models.Hit
		hits, err = s.processor.Search(r.Context(), req.Query, topK)
		res = &models.Answer{Query: strings.TrimSpace(req.Query), Hits: hits}
	default:
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, "mode must be answer, search or insight")
		return
	}
	if err != nil {
		s.logger.Warn("search failed", zap.String("request_id", requestIDFrom(r.Context())), zap.Error(err))
		respondQueryError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{Answer: res, Count: len(res.Hits)})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	c := s.holder.Load()
	if c == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeIndexUnavailable, "data not loaded")
		return
	}
	writeJSON(w, http.StatusOK, tickets.ComputeStats(c.Store, c.Index.Len()))
}

type healthResponse struct {
	Status       string `json:"status"`
	CorpusLoaded bool   `json:"corpus_loaded"`
	Tickets      int    `json:"tickets"`
	Generation   uint64 `json:"generation"`
	Source       string `json:"source,omitempty"`
	Generator    string `json:"generator"`
	Reason       string `json:"reason,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Generator: s.generatorName}

	c := s.holder.Load()
	if c == nil {
		resp.Status = "unhealthy"
		resp.Reason = "no corpus loaded"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	resp.CorpusLoaded = true
	resp.Tickets = c.Len()
	resp.Generation = c.Generation()
	resp.Source = c.Source

	if s.embedderDims > 0 {
		if err := c.CheckDimensions(s.embedderDims); err != nil {
			resp.Status = "unhealthy"
			resp.Reason = err.Error()
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	c := s.holder.Load()
	if c == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeIndexUnavailable, "data not loaded")
		return
	}
	writeJSON(w, http.StatusOK, s.categorizer.Count(c.Store))
}

type ticketPage struct {
	Tickets []models.Ticket `json:"tickets"`
	Total   int             `json:"total"`
	Offset  int             `json:"offset"`
	Limit   int             `json:"limit"`
}

func (s *Server) handleListTickets(w http.ResponseWriter, r *http.Request) {
	c := s.holder.Load()
	if c == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeIndexUnavailable, "data not loaded")
		return
	}

	q := r.URL.Query()
	offset, err := intParam(q.Get("offset"), 0)
	if err != nil || offset < 0 {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, "offset must be a non-negative integer")
		return
	}
	limit, err := intParam(q.Get("limit"), defaultPageLimit)
	if err != nil || limit < 1 {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, "limit must be a positive integer")
		return
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	page, total := c.Store.Page(offset, limit, strings.TrimSpace(q.Get("status")))
	if page == nil {
		page = []models.Ticket{}
	}
	writeJSON(w, http.StatusOK, ticketPage{Tickets: page, Total: total, Offset: offset, Limit: limit})
}

func (s *Server) handleGetTicket(w http.ResponseWriter, r *http.Request) {
	c := s.holder.Load()
	if c == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeIndexUnavailable, "data not loaded")
		return
	}

	id := mux.Vars(r)["id"]
	t, ok := c.Store.FindByID(id)
	if !ok {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "ticket "+id+" not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	c, err := s.Reload(r.Context())
	if err != nil {
		if errors.Is(err, errReloadDisabled) {
			respondError(w, r, http.StatusNotImplemented, ErrCodeReloadDisabled, err.Error())
			return
		}
		s.logger.Error("reload failed", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "reload failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "reloaded",
		"tickets":    c.Len(),
		"generation": c.Generation(),
		"source":     c.Source,
	})
}

func intParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
