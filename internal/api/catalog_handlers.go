package api

import (
	"net/http"

	"github.com/soaringjerry/Resilience/internal/middleware"
	"github.com/soaringjerry/Resilience/internal/models"
	"github.com/soaringjerry/Resilience/internal/services"
	"github.com/soaringjerry/Resilience/internal/utils"
)

type categoryView struct {
	models.Category
	Questions []models.Question `json:"questions"`
}

type tierView struct {
	models.Tier
	Advice string `json:"advice"`
}

type catalogView struct {
	Likert        []models.LikertOption `json:"likert"`
	Categories    []categoryView        `json:"categories"`
	Tiers         []tierView            `json:"tiers"`
	QuestionCount int                   `json:"question_count"`
	MinScore      int                   `json:"min_score"`
	MaxScore      int                   `json:"max_score"`
}

func tierAdvice(locale string, t models.Tier) string {
	if t.Color == "" {
		return ""
	}
	return utils.T(locale, "tier."+t.Color)
}

// GET /api/catalog
func (rt *Router) handleCatalog(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	cat := rt.Engine.Catalog()
	view := catalogView{
		Likert:        cat.LikertOptions(),
		QuestionCount: cat.QuestionCount(),
		MinScore:      cat.MinScore(),
		MaxScore:      cat.MaxScore(),
	}
	for _, c := range cat.Categories() {
		view.Categories = append(view.Categories, categoryView{Category: c, Questions: cat.QuestionsFor(c.ID)})
	}
	for _, t := range cat.Tiers() {
		view.Tiers = append(view.Tiers, tierView{Tier: t, Advice: tierAdvice(locale, t)})
	}
	writeJSON(w, http.StatusOK, view)
}

type resultView struct {
	services.Result
	Advice string `json:"advice,omitempty"`
}

// POST /api/score scores answers without storing anything.
func (rt *Router) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := rt.decode(w, r, &req); err != nil {
		rt.writeError(w, r, err)
		return
	}
	res, err := rt.Assessments.Preview(req.Answers)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resultView{Result: res, Advice: tierAdvice(middleware.LocaleFromContext(r.Context()), res.Tier)})
}
