// Package catalog holds the fixed question battery, the Likert scale and the
// score tiers. A Catalog is loaded and validated once at process start and is
// read-only afterwards, so it is safe for concurrent use.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/soaringjerry/Resilience/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

// ErrMalformed wraps every integrity problem found while loading a catalog.
var ErrMalformed = errors.New("malformed catalog")

var tierColors = map[string]struct{}{"green": {}, "blue": {}, "orange": {}, "red": {}}

type document struct {
	Likert     []models.LikertOption `yaml:"likert"`
	Categories []models.Category     `yaml:"categories"`
	Questions  []models.Question     `yaml:"questions"`
	Tiers      []models.Tier         `yaml:"tiers"`
}

type Catalog struct {
	categories []models.Category
	questions  []models.Question
	likert     []models.LikertOption
	tiers      []models.Tier

	categoryIdx map[int]int
	questionIdx map[int]int
	byCategory  map[int][]models.Question
	likertSet   map[int]struct{}
	minValue    int
	maxValue    int
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads the catalog at path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	return LoadFile(path)
}

func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog and runs the integrity checks.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse: %v", ErrMalformed, err)
	}
	c := build(doc)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func build(doc document) *Catalog {
	c := &Catalog{
		categories:  doc.Categories,
		questions:   doc.Questions,
		likert:      doc.Likert,
		tiers:       doc.Tiers,
		categoryIdx: make(map[int]int, len(doc.Categories)),
		questionIdx: make(map[int]int, len(doc.Questions)),
		byCategory:  make(map[int][]models.Question, len(doc.Categories)),
		likertSet:   make(map[int]struct{}, len(doc.Likert)),
	}
	for i, cat := range c.categories {
		if _, dup := c.categoryIdx[cat.ID]; !dup {
			c.categoryIdx[cat.ID] = i
		}
	}
	for i, q := range c.questions {
		if _, dup := c.questionIdx[q.ID]; !dup {
			c.questionIdx[q.ID] = i
		}
		c.byCategory[q.CategoryID] = append(c.byCategory[q.CategoryID], q)
	}
	for i, opt := range c.likert {
		c.likertSet[opt.Value] = struct{}{}
		if i == 0 || opt.Value < c.minValue {
			c.minValue = opt.Value
		}
		if i == 0 || opt.Value > c.maxValue {
			c.maxValue = opt.Value
		}
	}
	return c
}

// Validate checks cross references, the Likert set and the tier partition.
// All problems are reported together.
func (c *Catalog) Validate() error {
	var errs []error
	add := func(format string, args ...any) { errs = append(errs, fmt.Errorf(format, args...)) }

	if len(c.categories) == 0 {
		add("no categories defined")
	}
	if len(c.questions) == 0 {
		add("no questions defined")
	}
	if len(c.likert) == 0 {
		add("no likert options defined")
	}

	seenCat := map[int]bool{}
	seenTitle := map[string]bool{}
	for _, cat := range c.categories {
		if cat.ID <= 0 {
			add("category %q: id must be positive", cat.Title)
		}
		if seenCat[cat.ID] {
			add("category %d: duplicate id", cat.ID)
		}
		seenCat[cat.ID] = true
		title := strings.TrimSpace(cat.Title)
		if title == "" {
			add("category %d: title required", cat.ID)
		} else if seenTitle[title] {
			add("category %d: duplicate title %q", cat.ID, title)
		}
		seenTitle[title] = true
		if len(c.byCategory[cat.ID]) == 0 {
			add("category %d: has no questions", cat.ID)
		}
	}

	seenQ := map[int]bool{}
	for _, q := range c.questions {
		if q.ID <= 0 {
			add("question %q: id must be positive", q.Text)
		}
		if seenQ[q.ID] {
			add("question %d: duplicate id", q.ID)
		}
		seenQ[q.ID] = true
		if !seenCat[q.CategoryID] {
			add("question %d: unknown category %d", q.ID, q.CategoryID)
		}
	}

	if len(c.likertSet) != len(c.likert) {
		add("likert: duplicate values")
	}

	errs = append(errs, c.validateTiers()...)
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrMalformed, errors.Join(errs...))
	}
	return nil
}

func (c *Catalog) validateTiers() []error {
	if len(c.tiers) == 0 {
		return []error{errors.New("no tiers defined")}
	}
	var errs []error
	sorted := append([]models.Tier(nil), c.tiers...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Min < sorted[j].Min })
	for i, t := range sorted {
		if t.Min > t.Max {
			errs = append(errs, fmt.Errorf("tier %q: min %d > max %d", t.Title, t.Min, t.Max))
		}
		if _, ok := tierColors[t.Color]; !ok {
			errs = append(errs, fmt.Errorf("tier %q: unknown color %q", t.Title, t.Color))
		}
		if i == 0 {
			continue
		}
		prev := sorted[i-1]
		switch {
		case t.Min > prev.Max+1:
			errs = append(errs, fmt.Errorf("tiers %q and %q: gap between %d and %d", prev.Title, t.Title, prev.Max, t.Min))
		case t.Min <= prev.Max:
			errs = append(errs, fmt.Errorf("tiers %q and %q: overlap at %d", prev.Title, t.Title, t.Min))
		}
	}
	if len(c.questions) > 0 && len(c.likert) > 0 {
		if lo := sorted[0].Min; lo > c.MinScore() {
			errs = append(errs, fmt.Errorf("tiers: scores %d..%d not covered", c.MinScore(), lo-1))
		}
		if hi := sorted[len(sorted)-1].Max; hi < c.MaxScore() {
			errs = append(errs, fmt.Errorf("tiers: scores %d..%d not covered", hi+1, c.MaxScore()))
		}
	}
	return errs
}

// Categories returns the categories in definition order.
func (c *Catalog) Categories() []models.Category {
	return append([]models.Category(nil), c.categories...)
}

func (c *Catalog) Category(id int) (models.Category, bool) {
	i, ok := c.categoryIdx[id]
	if !ok {
		return models.Category{}, false
	}
	return c.categories[i], true
}

// QuestionsFor returns the questions of one category in definition order.
func (c *Catalog) QuestionsFor(categoryID int) []models.Question {
	return append([]models.Question(nil), c.byCategory[categoryID]...)
}

func (c *Catalog) Questions() []models.Question {
	return append([]models.Question(nil), c.questions...)
}

func (c *Catalog) Question(id int) (models.Question, bool) {
	i, ok := c.questionIdx[id]
	if !ok {
		return models.Question{}, false
	}
	return c.questions[i], true
}

func (c *Catalog) LikertOptions() []models.LikertOption {
	return append([]models.LikertOption(nil), c.likert...)
}

func (c *Catalog) IsLikertValue(v int) bool {
	_, ok := c.likertSet[v]
	return ok
}

// Tiers returns the tiers in configured order.
func (c *Catalog) Tiers() []models.Tier {
	return append([]models.Tier(nil), c.tiers...)
}

func (c *Catalog) QuestionCount() int { return len(c.questions) }

// MinScore is the total for a fully answered set using the lowest value.
func (c *Catalog) MinScore() int { return len(c.questions) * c.minValue }

// MaxScore is the total for a fully answered set using the highest value.
func (c *Catalog) MaxScore() int { return len(c.questions) * c.maxValue }

func (c *Catalog) MinValue() int { return c.minValue }
func (c *Catalog) MaxValue() int { return c.maxValue }
