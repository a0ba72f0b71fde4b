package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/MikeSquared-Agency/hive/internal/hive"
	"github.com/MikeSquared-Agency/hive/internal/prospect"
	"github.com/MikeSquared-Agency/hive/internal/report"
	"github.com/MikeSquared-Agency/hive/internal/script"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// POST /api/v1/scripts
func (s *Server) generateScript(w http.ResponseWriter, r *http.Request) {
	var req GenerateScriptRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	prospectID, err := uuid.Parse(req.ProspectID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid prospect_id")
		return
	}
	t, err := script.ParseType(req.ScriptType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sc, err := s.deps.Scripts.Generate(r.Context(), prospectID, t)
	var genErr *script.GenerationError
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, sc)
	case errors.Is(err, prospect.ErrNotFound):
		writeError(w, http.StatusNotFound, "prospect not found")
	case errors.As(err, &genErr):
		writeError(w, http.StatusBadGateway, "script generation failed")
	default:
		s.logger.Error("generate script", "prospect_id", prospectID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// GET /api/v1/scripts/{id}
func (s *Server) getScript(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	sc, err := s.deps.Scripts.Get(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, sc)
	case errors.Is(err, script.ErrNotFound):
		writeError(w, http.StatusNotFound, "script not found")
	default:
		s.logger.Error("get script", "script_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// POST /api/v1/scripts/{id}/feedback
func (s *Server) submitFeedback(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req FeedbackRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sc, err := s.deps.Scripts.SubmitFeedback(r.Context(), id, req.Feedback)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, sc)
	case errors.Is(err, script.ErrInvalidFeedback):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, script.ErrNotFound):
		writeError(w, http.StatusNotFound, "script not found")
	default:
		s.logger.Error("submit feedback", "script_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// PATCH /api/v1/prospects/{id}/status
func (s *Server) updateProspectStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	status, _ := prospect.ParseStatus(req.Status)

	err := s.deps.Prospects.UpdateProspectStatus(r.Context(), id, status)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, prospect.ErrNotFound):
		writeError(w, http.StatusNotFound, "prospect not found")
	default:
		s.logger.Error("update prospect status", "prospect_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// GET /api/v1/learnings?type=&limit=
func (s *Server) listLearnings(w http.ResponseWriter, r *http.Request) {
	f := hive.Filter{Type: r.URL.Query().Get("type")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		f.Limit = n
	}

	ls, err := s.deps.Learnings.List(r.Context(), f)
	if err != nil {
		s.logger.Error("list learnings", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if ls == nil {
		ls = []hive.Learning{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"learnings": ls, "count": len(ls)})
}

// GET /api/v1/leaderboard
func (s *Server) leaderboard(w http.ResponseWriter, r *http.Request) {
	ls, err := s.deps.Learnings.Leaderboard(r.Context())
	if err != nil {
		s.logger.Error("leaderboard", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if ls == nil {
		ls = []hive.Learning{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": ls})
}

// POST /api/v1/reports
func (s *Server) triggerReport(w http.ResponseWriter, r *http.Request) {
	if s.deps.Reports == nil {
		writeError(w, http.StatusServiceUnavailable, "reports not configured")
		return
	}
	// A started report runs to completion even if the caller hangs up.
	rep, err := s.deps.Reports.Trigger(context.WithoutCancel(r.Context()), report.TriggerManual)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"report": rep, "text": rep.Text()})
	case errors.Is(err, report.ErrRunInProgress):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusServiceUnavailable, "report generation failed")
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
