package domain

import (
	"fmt"
	"time"
)

// Category classifies a question by topic. The set is fixed; content for a
// category comes from the matching fields of the country fact record.
type Category string

const (
	CategoryGeography    Category = "geography"
	CategoryHistory      Category = "history"
	CategoryCulture      Category = "culture"
	CategoryEconomy      Category = "economy"
	CategoryNature       Category = "nature"
	CategoryLanguage     Category = "language"
	CategoryDemographics Category = "demographics"
)

// Categories lists every valid category.
func Categories() []Category {
	return []Category{
		CategoryGeography, CategoryHistory, CategoryCulture, CategoryEconomy,
		CategoryNature, CategoryLanguage, CategoryDemographics,
	}
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Difficulty is the target difficulty bucket for a question. It governs which
// question templates are eligible; the eligible set grows monotonically from
// easy to hard.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists the buckets in ascending order.
func Difficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
}

// Valid reports whether d is a known difficulty bucket.
func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// Rank returns the ordinal of the bucket (easy=0, medium=1, hard=2), or -1
// for unknown values. Used for monotonic template eligibility.
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyEasy:
		return 0
	case DifficultyMedium:
		return 1
	case DifficultyHard:
		return 2
	}
	return -1
}

// CountryFact is the immutable reference record for one country. It is the
// source of truth for generating and validating questions and is never
// mutated at runtime.
type CountryFact struct {
	ID               string   `json:"id" yaml:"id"`
	Name             string   `json:"name" yaml:"name"`
	Capital          string   `json:"capital" yaml:"capital"`
	Continent        string   `json:"continent" yaml:"continent"`
	Languages        []string `json:"languages" yaml:"languages"` // primary first
	Currency         string   `json:"currency" yaml:"currency"`
	IndependenceYear *int     `json:"independenceYear,omitempty" yaml:"independenceYear,omitempty"`
	Neighbors        []string `json:"neighbors" yaml:"neighbors"`
	Landmarks        []string `json:"landmarks" yaml:"landmarks"`
	Population       int64    `json:"population" yaml:"population"`
	AreaKm2          int64    `json:"areaKm2" yaml:"areaKm2"`
}

// Validate checks the record at the boundary where external data enters the
// pipeline. Shape is never trusted implicitly further in.
func (f CountryFact) Validate() error {
	switch {
	case f.ID == "":
		return fmt.Errorf("country fact: %w: missing id", ErrInvalidFact)
	case f.Name == "":
		return fmt.Errorf("country fact %s: %w: missing name", f.ID, ErrInvalidFact)
	case f.Capital == "":
		return fmt.Errorf("country fact %s: %w: missing capital", f.ID, ErrInvalidFact)
	case f.Continent == "":
		return fmt.Errorf("country fact %s: %w: missing continent", f.ID, ErrInvalidFact)
	case f.Population < 0:
		return fmt.Errorf("country fact %s: %w: negative population", f.ID, ErrInvalidFact)
	case f.AreaKm2 < 0:
		return fmt.Errorf("country fact %s: %w: negative area", f.ID, ErrInvalidFact)
	}
	return nil
}

// QuestionCandidate is a generated question that has not yet passed
// validation. It has no identity until it is persisted.
type QuestionCandidate struct {
	CountryID     string     `json:"countryId"`
	Text          string     `json:"text"`
	Options       []string   `json:"options"` // exactly 4 when well formed
	CorrectAnswer string     `json:"correctAnswer"`
	Explanation   string     `json:"explanation"`
	Category      Category   `json:"category"`
	Difficulty    Difficulty `json:"difficulty"`
}

// PersistedQuestion is a candidate that passed validation and dedup gating,
// was assigned a stable id, and was written to durable storage.
type PersistedQuestion struct {
	QuestionCandidate
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// QuestionFilter narrows a store read to one scope. Zero-value fields are
// ignored; the zero filter selects everything.
type QuestionFilter struct {
	CountryID  string
	Difficulty Difficulty
	Category   Category
}

// ValidationResult carries the outcome of running the full check battery over
// one question. All failing checks are recorded; evaluation never
// short-circuits, so callers always see the complete issue list.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues,omitempty"`
}

// QualityReport is a read-only aggregate over persisted questions for one
// country, or globally when CountryID is empty.
type QualityReport struct {
	CountryID     string             `json:"countryId,omitempty"`
	Total         int                `json:"total"`
	Valid         int                `json:"valid"`
	PerDifficulty map[Difficulty]int `json:"perDifficulty"`
	Issues        []string           `json:"issues,omitempty"`
	// Score is valid/total scaled to 0-100, and 0 when total is 0.
	Score int `json:"score"`
	// Coverage is the fraction of the country catalog with at least one
	// question. Populated only for global reports.
	Coverage    float64   `json:"coverage,omitempty"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// DedupResult reports one deduplication pass. Removed lists only ids whose
// delete batch was confirmed; batches that failed are listed by index so the
// caller sees partial success rather than an all-or-nothing outcome.
type DedupResult struct {
	RunID         string   `json:"runId"`
	CountryID     string   `json:"countryId,omitempty"`
	Kept          []string `json:"kept"`
	Removed       []string `json:"removed"`
	FailedBatches []int    `json:"failedBatches,omitempty"`
}

// CleanupResult reports one invalid-question removal pass. Issues is capped
// to bound report size; Removed is always complete for confirmed batches.
type CleanupResult struct {
	RunID         string   `json:"runId"`
	CountryID     string   `json:"countryId,omitempty"`
	Removed       []string `json:"removed"`
	Issues        []string `json:"issues,omitempty"`
	FailedBatches []int    `json:"failedBatches,omitempty"`
}
