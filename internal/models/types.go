package models

import (
	"encoding/json"
	"sort"
	"time"
)

// Category groups questions on the assessment form.
type Category struct {
	ID          int    `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

// Question belongs to exactly one category.
type Question struct {
	ID         int    `json:"id" yaml:"id"`
	CategoryID int    `json:"category_id" yaml:"category_id"`
	Text       string `json:"text" yaml:"text"`
}

// LikertOption is one allowed answer value (e.g. 1..5) with its label.
type LikertOption struct {
	Value int    `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
	Class string `json:"class,omitempty" yaml:"class"`
}

// Tier is a named band over the total score domain. Bounds are inclusive.
type Tier struct {
	Min         int    `json:"min" yaml:"min"`
	Max         int    `json:"max" yaml:"max"`
	Title       string `json:"title" yaml:"title"`
	Color       string `json:"color" yaml:"color"`
	Description string `json:"description,omitempty" yaml:"description"`
}

// Contains reports whether score falls inside the tier bounds.
func (t Tier) Contains(score int) bool { return score >= t.Min && score <= t.Max }

// AnswerSet maps question ids to chosen Likert values. The zero value is an
// empty set. Values are never mutated in place; With returns a copy.
type AnswerSet struct {
	values map[int]int
}

// NewAnswerSet copies m into a new set.
func NewAnswerSet(m map[int]int) AnswerSet {
	if len(m) == 0 {
		return AnswerSet{}
	}
	cp := make(map[int]int, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return AnswerSet{values: cp}
}

// With returns a new set where questionID maps to value.
func (a AnswerSet) With(questionID, value int) AnswerSet {
	cp := make(map[int]int, len(a.values)+1)
	for k, v := range a.values {
		cp[k] = v
	}
	cp[questionID] = value
	return AnswerSet{values: cp}
}

// Value returns the answer for questionID, if any.
func (a AnswerSet) Value(questionID int) (int, bool) {
	v, ok := a.values[questionID]
	return v, ok
}

func (a AnswerSet) Len() int { return len(a.values) }

// Snapshot returns a copy of the underlying mapping.
func (a AnswerSet) Snapshot() map[int]int {
	out := make(map[int]int, len(a.values))
	for k, v := range a.values {
		out[k] = v
	}
	return out
}

// QuestionIDs returns the answered question ids in ascending order.
func (a AnswerSet) QuestionIDs() []int {
	ids := make([]int, 0, len(a.values))
	for k := range a.values {
		ids = append(ids, k)
	}
	sort.Ints(ids)
	return ids
}

// Equal reports whether both sets hold the same answers.
func (a AnswerSet) Equal(b AnswerSet) bool {
	if len(a.values) != len(b.values) {
		return false
	}
	for k, v := range a.values {
		if bv, ok := b.values[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

func (a AnswerSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Snapshot())
}

func (a *AnswerSet) UnmarshalJSON(b []byte) error {
	var m map[int]int
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*a = NewAnswerSet(m)
	return nil
}

// AssessmentRecordInput is what the submission path hands to a record store.
type AssessmentRecordInput struct {
	UserID           string
	OrganizationName string
	Score            int
	Answers          AnswerSet
	CategoryScores   map[string]int
}

// AssessmentRecord is a persisted, completed assessment.
type AssessmentRecord struct {
	ID               int64          `json:"id"`
	UserID           string         `json:"user_id,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	OrganizationName string         `json:"organization_name"`
	Score            int            `json:"score"`
	Answers          AnswerSet      `json:"answers"`
	CategoryScores   map[string]int `json:"category_scores"`
}
