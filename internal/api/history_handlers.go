package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/soaringjerry/Resilience/internal/middleware"
	"github.com/soaringjerry/Resilience/internal/services"
	"github.com/soaringjerry/Resilience/internal/utils"
)

type dashboardResponse struct {
	*services.Dashboard
	Advice  string `json:"advice,omitempty"`
	Message string `json:"message,omitempty"`
}

func (rt *Router) respondDashboard(w http.ResponseWriter, r *http.Request, d *services.Dashboard) {
	locale := middleware.LocaleFromContext(r.Context())
	resp := dashboardResponse{Dashboard: d}
	if d.LatestTier != nil {
		resp.Advice = tierAdvice(locale, *d.LatestTier)
	}
	if d.Count == 0 {
		resp.Message = utils.T(locale, "history.empty")
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /api/assessments
func (rt *Router) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := rt.History.Dashboard(r.Context(), userID(r))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	rt.respondDashboard(w, r, d)
}

type trendResponse struct {
	Points   []services.TrendPoint `json:"points"`
	HasTrend bool                  `json:"has_trend"`
	Message  string                `json:"message,omitempty"`
}

// GET /api/assessments/trend
func (rt *Router) handleTrend(w http.ResponseWriter, r *http.Request) {
	recs, err := rt.History.Records(r.Context(), userID(r))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	resp := trendResponse{Points: []services.TrendPoint{}, HasTrend: services.HasTrend(recs)}
	for p := range services.TrendSeries(recs) {
		resp.Points = append(resp.Points, p)
	}
	if !resp.HasTrend {
		resp.Message = utils.T(middleware.LocaleFromContext(r.Context()), "trend.insufficient")
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /api/assessments/export?format=wide|long
func (rt *Router) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	b, err := rt.History.Export(r.Context(), userID(r), format)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	name := "assessments.csv"
	if format == "long" {
		name = "assessment_answers.csv"
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	_, _ = w.Write(b)
}

// DELETE /api/assessments/{id} returns the dashboard without the deleted record.
func (rt *Router) handleDeleteAssessment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		rt.writeError(w, r, services.NewInvalidError("invalid assessment id"))
		return
	}
	uid := userID(r)
	view, err := rt.History.Records(r.Context(), uid)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	view, err = rt.History.Delete(r.Context(), uid, id, view)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	rt.respondDashboard(w, r, rt.History.Summarize(view))
}
