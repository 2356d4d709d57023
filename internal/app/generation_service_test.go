package app_test

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"geoquiz-pipeline/internal/app"
	"geoquiz-pipeline/internal/domain"
	"geoquiz-pipeline/internal/infra/memory"
)

func year(y int) *int { return &y }

func testFacts() []domain.CountryFact {
	return []domain.CountryFact{
		{
			ID: "ke", Name: "Kenya", Capital: "Nairobi", Continent: "Africa",
			Languages: []string{"Swahili", "English"}, Currency: "Kenyan shilling",
			IndependenceYear: year(1963),
			Neighbors:        []string{"Tanzania", "Uganda", "Ethiopia"},
			Landmarks:        []string{"Maasai Mara"}, Population: 54_000_000, AreaKm2: 580_367,
		},
		{
			ID: "fr", Name: "France", Capital: "Paris", Continent: "Europe",
			Languages: []string{"French"}, Currency: "Euro",
			IndependenceYear: year(843),
			Neighbors:        []string{"Spain", "Italy"},
			Landmarks:        []string{"Eiffel Tower"}, Population: 68_000_000, AreaKm2: 643_801,
		},
		{
			ID: "eg", Name: "Egypt", Capital: "Cairo", Continent: "Africa",
			Languages: []string{"Arabic"}, Currency: "Egyptian pound",
			IndependenceYear: year(1922),
			Neighbors:        []string{"Libya", "Sudan"},
			Landmarks:        []string{"Pyramids of Giza"}, Population: 110_000_000, AreaKm2: 1_010_408,
		},
		{
			ID: "pe", Name: "Peru", Capital: "Lima", Continent: "South America",
			Languages: []string{"Spanish"}, Currency: "Sol",
			IndependenceYear: year(1821),
			Neighbors:        []string{"Brazil", "Chile"},
			Landmarks:        []string{"Machu Picchu"}, Population: 34_000_000, AreaKm2: 1_285_216,
		},
		{
			ID: "jp", Name: "Japan", Capital: "Tokyo", Continent: "Asia",
			Languages: []string{"Japanese"}, Currency: "Yen",
			Landmarks: []string{"Mount Fuji"}, Population: 124_000_000, AreaKm2: 377_975,
		},
	}
}

func testCatalog(t *testing.T) *memory.StaticCatalog {
	t.Helper()
	catalog, err := memory.NewStaticCatalog(testFacts())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return catalog
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestGenerateAndPersistWritesValidQuestions(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuestionStore()
	service := app.NewGenerationServiceWithClock(store, testCatalog(t), memory.NewFingerprintIndex(), nil, 0,
		rand.New(rand.NewSource(1)), fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))

	result, err := service.GenerateAndPersist(ctx, "ke", domain.CategoryGeography, domain.DifficultyEasy, 2)
	if err != nil {
		t.Fatalf("generate and persist: %v", err)
	}
	if len(result.Persisted) != 2 {
		t.Fatalf("expected 2 persisted, got %+v", result)
	}
	if len(result.Rejected) != 0 {
		t.Fatalf("expected no rejections, got %+v", result.Rejected)
	}

	rows, _ := store.List(ctx, domain.QuestionFilter{CountryID: "ke"})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows in store, got %d", len(rows))
	}
	for _, q := range rows {
		if q.ID == "" || q.CreatedAt.IsZero() {
			t.Fatalf("expected assigned id and timestamp, got %+v", q)
		}
	}
}

func TestGenerateAndPersistSkipsWriteTimeDuplicates(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuestionStore()
	service := app.NewGenerationServiceWithClock(store, testCatalog(t), memory.NewFingerprintIndex(), nil, 0,
		rand.New(rand.NewSource(1)), time.Now)

	// The independence-year template is fully deterministic with this catalog
	// (exactly three distractor years exist), so a second run regenerates an
	// identical question.
	first, err := service.GenerateAndPersist(ctx, "ke", domain.CategoryHistory, domain.DifficultyHard, 1)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(first.Persisted) != 1 {
		t.Fatalf("expected 1 persisted on first run, got %+v", first)
	}

	second, err := service.GenerateAndPersist(ctx, "ke", domain.CategoryHistory, domain.DifficultyHard, 1)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(second.Persisted) != 0 || second.DuplicatesSkipped != 1 {
		t.Fatalf("expected duplicate skipped on second run, got %+v", second)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 row in store, got %d", store.Len())
	}
}

func TestGenerateAndPersistToleratesGenerationGap(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuestionStore()
	service := app.NewGenerationServiceWithClock(store, testCatalog(t), nil, nil, 0,
		rand.New(rand.NewSource(1)), time.Now)

	// Nature has no template backing, so the run completes with nothing
	// persisted and no error.
	result, err := service.GenerateAndPersist(ctx, "ke", domain.CategoryNature, domain.DifficultyHard, 3)
	if err != nil {
		t.Fatalf("generate and persist: %v", err)
	}
	if len(result.Persisted) != 0 || len(result.Rejected) != 0 {
		t.Fatalf("expected empty result for nature, got %+v", result)
	}
}

func TestGenerateAndPersistUnknownCountry(t *testing.T) {
	service := app.NewGenerationServiceWithClock(memory.NewQuestionStore(), testCatalog(t), nil, nil, 0,
		rand.New(rand.NewSource(1)), time.Now)
	if _, err := service.GenerateAndPersist(context.Background(), "zz", domain.CategoryGeography, domain.DifficultyEasy, 1); err == nil {
		t.Fatalf("expected error for unknown country")
	}
}

func TestPickQuestionsAvoidsRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuestionStore()
	recent := memory.NewRecentCache(time.Hour)
	service := app.NewGenerationServiceWithClock(store, testCatalog(t), nil, recent, 0,
		rand.New(rand.NewSource(1)), time.Now)

	now := time.Now()
	texts := []string{
		"What is the capital city of Kenya?",
		"On which continent is Kenya located?",
		"Which language is primarily spoken in Kenya?",
		"What is the official currency of Kenya?",
	}
	seed := make([]domain.PersistedQuestion, 0, len(texts))
	for i, text := range texts {
		seed = append(seed, domain.PersistedQuestion{
			QuestionCandidate: domain.QuestionCandidate{
				CountryID:     "ke",
				Text:          text,
				Options:       []string{"Nairobi", "Paris", "Cairo", "Lima"},
				CorrectAnswer: "Nairobi",
				Category:      domain.CategoryGeography,
				Difficulty:    domain.DifficultyEasy,
			},
			ID:        fmt.Sprintf("seed-%d", i),
			CreatedAt: now,
		})
	}
	if err := store.Upsert(ctx, seed); err != nil {
		t.Fatalf("seed questions: %v", err)
	}

	first, err := service.PickQuestions(ctx, "session-1", "ke", domain.DifficultyEasy, 2)
	if err != nil {
		t.Fatalf("first pick: %v", err)
	}
	second, err := service.PickQuestions(ctx, "session-1", "ke", domain.DifficultyEasy, 2)
	if err != nil {
		t.Fatalf("second pick: %v", err)
	}

	seen := make(map[string]bool)
	for _, q := range first {
		seen[q.ID] = true
	}
	for _, q := range second {
		if seen[q.ID] {
			t.Fatalf("question %s repeated while fresh questions remained", q.ID)
		}
	}
}
