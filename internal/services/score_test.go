package services

import (
	"errors"
	"testing"

	"github.com/soaringjerry/Resilience/internal/catalog"
	"github.com/soaringjerry/Resilience/internal/models"
)

const oneCategoryCatalog = `
likert:
  - {value: 1, label: "1"}
  - {value: 2, label: "2"}
  - {value: 3, label: "3"}
  - {value: 4, label: "4"}
  - {value: 5, label: "5"}
categories:
  - {id: 1, title: "Only"}
questions:
  - {id: 1, category_id: 1, text: "q1"}
  - {id: 2, category_id: 1, text: "q2"}
tiers:
  - {min: 2, max: 5, title: "Low", color: red}
  - {min: 6, max: 10, title: "High", color: green}
`

func mustCatalog(t *testing.T, src string) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Parse([]byte(src))
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	return c
}

func defaultEngine(t *testing.T) *Engine {
	t.Helper()
	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	return NewEngine(c)
}

func fill(t *testing.T, e *Engine, value int, skip ...int) models.AnswerSet {
	t.Helper()
	skipped := map[int]bool{}
	for _, id := range skip {
		skipped[id] = true
	}
	set := models.AnswerSet{}
	for _, q := range e.Catalog().Questions() {
		if skipped[q.ID] {
			continue
		}
		var err error
		set, err = e.RecordAnswer(set, q.ID, value)
		if err != nil {
			t.Fatalf("record answer %d: %v", q.ID, err)
		}
	}
	return set
}

func TestScenarioSingleCategoryAllFives(t *testing.T) {
	e := NewEngine(mustCatalog(t, oneCategoryCatalog))
	set := fill(t, e, 5)

	if got := TotalScore(set); got != 10 {
		t.Fatalf("total = %d, want 10", got)
	}
	byTitle := ScoresByTitle(e.CategoryScores(set))
	if len(byTitle) != 1 || byTitle["Only"] != 10 {
		t.Fatalf("category scores = %v, want map[Only:10]", byTitle)
	}
	if tier := Classify(10, e.Catalog().Tiers()); tier.Title != "High" {
		t.Fatalf("tier = %q, want High", tier.Title)
	}
}

func TestScenarioFortyQuestionBounds(t *testing.T) {
	e := defaultEngine(t)
	cases := []struct {
		value     int
		wantTotal int
		wantTier  string
	}{
		{1, 40, "Critical"},
		{5, 200, "Highly Resilient"},
	}
	for _, c := range cases {
		set := fill(t, e, c.value)
		total := TotalScore(set)
		if total != c.wantTotal {
			t.Fatalf("all %d: total = %d, want %d", c.value, total, c.wantTotal)
		}
		tier := Classify(total, e.Catalog().Tiers())
		if tier.Title != c.wantTier || !tier.Contains(total) {
			t.Fatalf("all %d: tier = %+v, want %s", c.value, tier, c.wantTier)
		}
	}
}

func TestRecordAnswerValidation(t *testing.T) {
	e := defaultEngine(t)
	set := models.AnswerSet{}.With(1, 3)

	got, err := e.RecordAnswer(set, 1, 6)
	if !errors.Is(err, ErrInvalidAnswerValue) {
		t.Fatalf("value 6: err = %v, want ErrInvalidAnswerValue", err)
	}
	if !got.Equal(set) {
		t.Fatalf("rejected answer changed the set")
	}

	_, err = e.RecordAnswer(set, 999, 3)
	if !errors.Is(err, ErrUnknownQuestion) {
		t.Fatalf("question 999: err = %v, want ErrUnknownQuestion", err)
	}

	next, err := e.RecordAnswer(set, 1, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := next.Value(1); v != 4 {
		t.Fatalf("last write should win, got %d", v)
	}
	if v, _ := set.Value(1); v != 3 {
		t.Fatalf("original set mutated, got %d", v)
	}
}

func TestRecordAnswerIdempotent(t *testing.T) {
	e := defaultEngine(t)
	once, _ := e.RecordAnswer(models.AnswerSet{}, 7, 2)
	twice, _ := e.RecordAnswer(once, 7, 2)
	if !once.Equal(twice) {
		t.Fatalf("repeated identical answer changed the set")
	}
}

func TestIsCompleteAndMissing(t *testing.T) {
	e := defaultEngine(t)
	partial := fill(t, e, 3, 40)
	if partial.Len() != 39 {
		t.Fatalf("len = %d, want 39", partial.Len())
	}
	if e.IsComplete(partial) {
		t.Fatalf("39 of 40 answered should not be complete")
	}
	if m := e.Missing(partial); len(m) != 1 || m[0] != 40 {
		t.Fatalf("missing = %v, want [40]", m)
	}
	full, _ := e.RecordAnswer(partial, 40, 3)
	if !e.IsComplete(full) {
		t.Fatalf("full set should be complete")
	}
	if e.IsComplete(models.AnswerSet{}) {
		t.Fatalf("empty set should not be complete")
	}
}

func TestCategoryScoresPartial(t *testing.T) {
	e := defaultEngine(t)
	set := models.AnswerSet{}
	set, _ = e.RecordAnswer(set, 1, 5)
	set, _ = e.RecordAnswer(set, 6, 2)

	scores := e.CategoryScores(set)
	if len(scores) != 8 {
		t.Fatalf("categories = %d, want 8", len(scores))
	}
	sum := 0
	for _, cs := range scores {
		sum += cs.Score
	}
	if sum != TotalScore(set) {
		t.Fatalf("category sum %d != total %d", sum, TotalScore(set))
	}
	if scores[0].Score != 5 || scores[0].Answered != 1 || scores[0].Complete() {
		t.Fatalf("first category = %+v", scores[0])
	}
	if scores[2].Score != 0 || scores[2].Answered != 0 {
		t.Fatalf("unanswered category = %+v", scores[2])
	}
	if scores[0].Max != 25 {
		t.Fatalf("category max = %d, want 25", scores[0].Max)
	}
}

func TestClassifyAdjacentBoundaries(t *testing.T) {
	tiers := defaultEngine(t).Catalog().Tiers()
	for i := 0; i+1 < len(tiers); i++ {
		a, b := tiers[i], tiers[i+1]
		if got := Classify(a.Max, tiers); got != a {
			t.Fatalf("Classify(%d) = %q, want %q", a.Max, got.Title, a.Title)
		}
		if got := Classify(a.Max+1, tiers); got != b {
			t.Fatalf("Classify(%d) = %q, want %q", a.Max+1, got.Title, b.Title)
		}
	}
}

func TestClassifyFallbackAndOrder(t *testing.T) {
	tiers := []models.Tier{
		{Min: 10, Max: 20, Title: "B"},
		{Min: 0, Max: 9, Title: "A"},
		{Min: 5, Max: 15, Title: "overlap"},
	}
	if got := Classify(12, tiers); got.Title != "B" {
		t.Fatalf("first match should win, got %q", got.Title)
	}
	if got := Classify(99, tiers); got.Title != "A" {
		t.Fatalf("fallback should pick lowest min, got %q", got.Title)
	}
	if got := Classify(5, nil); got != (models.Tier{}) {
		t.Fatalf("no tiers should give zero tier, got %+v", got)
	}
}

func TestEvaluate(t *testing.T) {
	e := defaultEngine(t)
	set := fill(t, e, 4, 1, 2)
	res := e.Evaluate(set)
	if res.TotalScore != 152 || res.Answered != 38 || res.Complete {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Progress != 95 {
		t.Fatalf("progress = %d, want 95", res.Progress)
	}
	if res.Percentage != 76 {
		t.Fatalf("percentage = %d, want 76", res.Percentage)
	}
	if len(res.Missing) != 2 || res.Tier.Title != "Resilient" {
		t.Fatalf("missing=%v tier=%q", res.Missing, res.Tier.Title)
	}
}
