package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/soaringjerry/Resilience/internal/catalog"
	"github.com/soaringjerry/Resilience/internal/models"
)

// Engine scores answer sets against a catalog. All methods are pure.
type Engine struct {
	cat *catalog.Catalog
}

func NewEngine(cat *catalog.Catalog) *Engine {
	return &Engine{cat: cat}
}

func (e *Engine) Catalog() *catalog.Catalog { return e.cat }

// CategoryScore is the subtotal of one category.
type CategoryScore struct {
	CategoryID int    `json:"category_id"`
	Title      string `json:"title"`
	Score      int    `json:"score"`
	Max        int    `json:"max"`
	Answered   int    `json:"answered"`
	Questions  int    `json:"questions"`
}

// Complete reports whether every question of the category is answered.
func (c CategoryScore) Complete() bool { return c.Answered == c.Questions }

// Result bundles everything derived from one answer set.
type Result struct {
	TotalScore     int             `json:"total_score"`
	MaxScore       int             `json:"max_score"`
	Percentage     int             `json:"percentage"`
	Progress       int             `json:"progress"`
	Answered       int             `json:"answered"`
	QuestionCount  int             `json:"question_count"`
	Complete       bool            `json:"complete"`
	Missing        []int           `json:"missing,omitempty"`
	CategoryScores []CategoryScore `json:"category_scores"`
	Tier           models.Tier     `json:"tier"`
}

// RecordAnswer returns a copy of set with questionID answered by value.
func (e *Engine) RecordAnswer(set models.AnswerSet, questionID, value int) (models.AnswerSet, error) {
	if _, ok := e.cat.Question(questionID); !ok {
		return set, fmt.Errorf("%w: %d", ErrUnknownQuestion, questionID)
	}
	if !e.cat.IsLikertValue(value) {
		return set, fmt.Errorf("%w: %d", ErrInvalidAnswerValue, value)
	}
	return set.With(questionID, value), nil
}

// IsComplete reports whether every catalog question has an answer.
func (e *Engine) IsComplete(set models.AnswerSet) bool {
	for _, q := range e.cat.Questions() {
		if _, ok := set.Value(q.ID); !ok {
			return false
		}
	}
	return true
}

// Missing lists unanswered question ids in catalog order.
func (e *Engine) Missing(set models.AnswerSet) []int {
	var out []int
	for _, q := range e.cat.Questions() {
		if _, ok := set.Value(q.ID); !ok {
			out = append(out, q.ID)
		}
	}
	return out
}

// TotalScore sums the values present in set. Unanswered questions add nothing.
func TotalScore(set models.AnswerSet) int {
	total := 0
	for _, v := range set.Snapshot() {
		total += v
	}
	return total
}

// CategoryScores returns one entry per category, in catalog order.
// Answers for ids outside the catalog are ignored.
func (e *Engine) CategoryScores(set models.AnswerSet) []CategoryScore {
	cats := e.cat.Categories()
	out := make([]CategoryScore, 0, len(cats))
	for _, cat := range cats {
		qs := e.cat.QuestionsFor(cat.ID)
		cs := CategoryScore{CategoryID: cat.ID, Title: cat.Title, Questions: len(qs), Max: len(qs) * e.cat.MaxValue()}
		for _, q := range qs {
			if v, ok := set.Value(q.ID); ok {
				cs.Score += v
				cs.Answered++
			}
		}
		out = append(out, cs)
	}
	return out
}

// ScoresByTitle keys category subtotals by category title, the shape stored
// on assessment records.
func ScoresByTitle(scores []CategoryScore) map[string]int {
	out := make(map[string]int, len(scores))
	for _, cs := range scores {
		out[cs.Title] = cs.Score
	}
	return out
}

// Classify returns the first tier, in configured order, containing total.
// When none matches it falls back to the tier with the lowest Min; catalog
// validation makes that unreachable for scores inside the domain.
func Classify(total int, tiers []models.Tier) models.Tier {
	for _, t := range tiers {
		if t.Contains(total) {
			return t
		}
	}
	if len(tiers) == 0 {
		return models.Tier{}
	}
	lowest := append([]models.Tier(nil), tiers...)
	sort.SliceStable(lowest, func(i, j int) bool { return lowest[i].Min < lowest[j].Min })
	return lowest[0]
}

// Matches counts the tiers containing total.
func Matches(total int, tiers []models.Tier) int {
	n := 0
	for _, t := range tiers {
		if t.Contains(total) {
			n++
		}
	}
	return n
}

// Progress is the rounded percentage of catalog questions answered.
func (e *Engine) Progress(set models.AnswerSet) int {
	n := e.cat.QuestionCount()
	if n == 0 {
		return 0
	}
	answered := n - len(e.Missing(set))
	return int(math.Round(float64(answered) * 100 / float64(n)))
}

// Percentage is total as a rounded percentage of the maximum score.
func (e *Engine) Percentage(total int) int {
	return percentOf(total, e.cat.MaxScore())
}

func percentOf(score, maxScore int) int {
	if maxScore <= 0 {
		return 0
	}
	return int(math.Round(float64(score) * 100 / float64(maxScore)))
}

func (e *Engine) Evaluate(set models.AnswerSet) Result {
	total := TotalScore(set)
	missing := e.Missing(set)
	return Result{
		TotalScore:     total,
		MaxScore:       e.cat.MaxScore(),
		Percentage:     e.Percentage(total),
		Progress:       e.Progress(set),
		Answered:       e.cat.QuestionCount() - len(missing),
		QuestionCount:  e.cat.QuestionCount(),
		Complete:       len(missing) == 0,
		Missing:        missing,
		CategoryScores: e.CategoryScores(set),
		Tier:           Classify(total, e.cat.Tiers()),
	}
}
