package pipeline

import (
	"fmt"
	"math/rand"
	"strings"

	"geoquiz-pipeline/internal/domain"
)

// optionCount is the fixed number of answer options per question.
const optionCount = 4

// Generator produces question candidates from country facts. It is a pure
// producer: output candidates are neither validated nor deduplicated here;
// that gating belongs to the caller.
type Generator struct {
	facts []domain.CountryFact
	byID  map[string]int
	rng   *rand.Rand
}

// NewGenerator builds a generator over the full country catalog. The caller
// supplies the random source so option shuffling is reproducible in tests.
func NewGenerator(facts []domain.CountryFact, rng *rand.Rand) *Generator {
	byID := make(map[string]int, len(facts))
	for i, f := range facts {
		byID[f.ID] = i
	}
	return &Generator{facts: facts, byID: byID, rng: rng}
}

// Generate produces up to count candidates for one country, category, and
// difficulty bucket. Templates that cannot assemble three valid distractors
// yield nothing; the result may therefore be shorter than requested, which is
// a legitimate generation gap and not an error.
func (g *Generator) Generate(countryID string, category domain.Category, difficulty domain.Difficulty, count int) ([]domain.QuestionCandidate, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
	}
	if !difficulty.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownDifficulty, difficulty)
	}
	idx, ok := g.byID[countryID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrCountryNotFound, countryID)
	}

	fact := g.facts[idx]
	others := make([]domain.CountryFact, 0, len(g.facts)-1)
	for i, f := range g.facts {
		if i != idx {
			others = append(others, f)
		}
	}

	kinds := eligibleKinds(category, difficulty)
	if len(kinds) == 0 || count <= 0 {
		return nil, nil
	}

	candidates := make([]domain.QuestionCandidate, 0, count)
	misses := 0
	for i := 0; len(candidates) < count && misses < len(kinds); i++ {
		kind := kinds[i%len(kinds)]
		parts, ok := buildTemplate(kind, fact, others)
		if !ok {
			misses++
			continue
		}
		distractors, ok := g.drawDistractors(parts.correct, parts.pool)
		if !ok {
			misses++
			continue
		}
		misses = 0

		options := append(distractors, parts.correct)
		g.rng.Shuffle(len(options), func(a, b int) {
			options[a], options[b] = options[b], options[a]
		})

		candidates = append(candidates, domain.QuestionCandidate{
			CountryID:     countryID,
			Text:          parts.text,
			Options:       options,
			CorrectAnswer: parts.correct,
			Explanation:   parts.explanation,
			Category:      category,
			Difficulty:    difficulty,
		})
	}
	return candidates, nil
}

// eligibleKinds returns the template kinds usable for the category at the
// given bucket. The set grows monotonically with difficulty.
func eligibleKinds(category domain.Category, difficulty domain.Difficulty) []templateKind {
	var kinds []templateKind
	for _, kind := range kindsByCategory[category] {
		if minDifficulty[kind].Rank() <= difficulty.Rank() {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// drawDistractors picks exactly three distinct distractors from the pool,
// excluding anything case-insensitively equal to the correct value. Reports
// false when fewer than three remain.
func (g *Generator) drawDistractors(correct string, pool []string) ([]string, bool) {
	seen := map[string]bool{strings.ToLower(correct): true}
	distinct := make([]string, 0, len(pool))
	for _, v := range pool {
		key := strings.ToLower(v)
		if seen[key] {
			continue
		}
		seen[key] = true
		distinct = append(distinct, v)
	}
	if len(distinct) < optionCount-1 {
		return nil, false
	}
	g.rng.Shuffle(len(distinct), func(a, b int) {
		distinct[a], distinct[b] = distinct[b], distinct[a]
	})
	return distinct[:optionCount-1], true
}
