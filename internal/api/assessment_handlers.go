package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/soaringjerry/Resilience/internal/middleware"
	"github.com/soaringjerry/Resilience/internal/services"
	"github.com/soaringjerry/Resilience/internal/utils"
)

type sessionResponse struct {
	*services.SessionView
	Advice  string `json:"advice,omitempty"`
	Message string `json:"message,omitempty"`
}

func (rt *Router) respondSession(w http.ResponseWriter, r *http.Request, status int, view *services.SessionView) {
	locale := middleware.LocaleFromContext(r.Context())
	resp := sessionResponse{SessionView: view}
	if view.Result.Complete {
		resp.Advice = tierAdvice(locale, view.Result.Tier)
	}
	if view.State == services.StateSubmitted {
		resp.Message = utils.T(locale, "assessment.saved")
	}
	writeJSON(w, status, resp)
}

func userID(r *http.Request) string {
	uid, _ := middleware.UserIDFromContext(r.Context())
	return uid
}

// POST /api/sessions
func (rt *Router) handleStartSession(w http.ResponseWriter, r *http.Request) {
	view, err := rt.Assessments.StartSession(r.Context(), userID(r))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	rt.respondSession(w, r, http.StatusCreated, view)
}

// GET /api/sessions/{id}
func (rt *Router) handleGetSession(w http.ResponseWriter, r *http.Request) {
	view, err := rt.Assessments.Session(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	rt.respondSession(w, r, http.StatusOK, view)
}

// PUT /api/sessions/{id}/answers
func (rt *Router) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := rt.decode(w, r, &req); err != nil {
		rt.writeError(w, r, err)
		return
	}
	view, err := rt.Assessments.Answer(r.Context(), userID(r), chi.URLParam(r, "id"), req.QuestionID, req.Value)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	rt.respondSession(w, r, http.StatusOK, view)
}

// DELETE /api/sessions/{id}
func (rt *Router) handleDiscardSession(w http.ResponseWriter, r *http.Request) {
	if err := rt.Assessments.Discard(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/sessions/{id}/submit
func (rt *Router) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := rt.decode(w, r, &req); err != nil {
		rt.writeError(w, r, err)
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	view, err := rt.Assessments.Submit(r.Context(), services.SubmitRequest{
		SessionID:        chi.URLParam(r, "id"),
		OrganizationName: req.OrganizationName,
		DefaultName:      utils.T(locale, "org.default"),
	})
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	rt.respondSession(w, r, http.StatusCreated, view)
}
