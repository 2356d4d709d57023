package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"geoquiz-pipeline/internal/app"
	"geoquiz-pipeline/internal/domain"
	"geoquiz-pipeline/internal/infra/memory"
)

func persisted(id, countryID, text string, options []string, correct string, createdAt time.Time) domain.PersistedQuestion {
	return domain.PersistedQuestion{
		QuestionCandidate: domain.QuestionCandidate{
			CountryID:     countryID,
			Text:          text,
			Options:       options,
			CorrectAnswer: correct,
			Explanation:   "Explanation.",
			Category:      domain.CategoryGeography,
			Difficulty:    domain.DifficultyEasy,
		},
		ID:        id,
		CreatedAt: createdAt,
	}
}

func kenyaCapital(id string, createdAt time.Time) domain.PersistedQuestion {
	return persisted(id, "ke", "What is the capital city of Kenya?",
		[]string{"Nairobi", "Paris", "Cairo", "Lima"}, "Nairobi", createdAt)
}

func TestDeduplicateRetainsOldest(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuestionStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Same fingerprint despite different option order and punctuation.
	older := kenyaCapital("q-old", base)
	newer := persisted("q-new", "ke", "What is the capital city of Kenya??",
		[]string{"Lima", "Cairo", "Paris", "Nairobi"}, "Nairobi", base.Add(time.Hour))
	distinct := persisted("q-other", "ke", "On which continent is Kenya located?",
		[]string{"Africa", "Europe", "Asia", "South America"}, "Africa", base)
	_ = store.Upsert(ctx, []domain.PersistedQuestion{newer, older, distinct})

	service := app.NewCleanupService(store, testCatalog(t), nil, 0)
	result, err := service.Deduplicate(ctx, "ke")
	if err != nil {
		t.Fatalf("deduplicate: %v", err)
	}

	if len(result.Removed) != 1 || result.Removed[0] != "q-new" {
		t.Fatalf("expected q-new removed, got %+v", result)
	}
	if len(result.Kept) != 2 {
		t.Fatalf("expected 2 kept, got %v", result.Kept)
	}
	if result.RunID == "" {
		t.Fatalf("expected a run id")
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 rows remaining, got %d", store.Len())
	}
}

func TestDeduplicateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuestionStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	_ = store.Upsert(ctx, []domain.PersistedQuestion{
		kenyaCapital("q1", base),
		kenyaCapital("q2", base.Add(time.Minute)),
	})

	service := app.NewCleanupService(store, testCatalog(t), nil, 0)
	first, err := service.Deduplicate(ctx, "ke")
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	if len(first.Removed) != 1 {
		t.Fatalf("expected 1 removed on first pass, got %v", first.Removed)
	}

	second, err := service.Deduplicate(ctx, "ke")
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if len(second.Removed) != 0 {
		t.Fatalf("expected nothing removed on second pass, got %v", second.Removed)
	}
}

func TestDeduplicateTieBreaksOnReturnedOrder(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuestionStore()
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Identical timestamps: the store returns ids in lexical order, so q-a is
	// first in returned order and survives.
	_ = store.Upsert(ctx, []domain.PersistedQuestion{
		kenyaCapital("q-b", ts),
		kenyaCapital("q-a", ts),
	})

	service := app.NewCleanupService(store, testCatalog(t), nil, 0)
	result, err := service.Deduplicate(ctx, "ke")
	if err != nil {
		t.Fatalf("deduplicate: %v", err)
	}
	if len(result.Kept) != 1 || result.Kept[0] != "q-a" {
		t.Fatalf("expected q-a kept, got %+v", result)
	}
	if len(result.Removed) != 1 || result.Removed[0] != "q-b" {
		t.Fatalf("expected q-b removed, got %+v", result)
	}
}

func TestDeduplicateReportsPartialBatchFailure(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuestionStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	_ = store.Upsert(ctx, []domain.PersistedQuestion{
		kenyaCapital("q1", base),
		kenyaCapital("q2", base.Add(time.Minute)),
		kenyaCapital("q3", base.Add(2*time.Minute)),
	})

	// Batch size 1 produces one batch per duplicate; fail only q2's batch.
	store.OnDelete = func(ids []string) error {
		if len(ids) == 1 && ids[0] == "q2" {
			return errors.New("quota exceeded")
		}
		return nil
	}

	service := app.NewCleanupService(store, testCatalog(t), nil, 1)
	result, err := service.Deduplicate(ctx, "ke")
	if err != nil {
		t.Fatalf("deduplicate: %v", err)
	}
	if len(result.Removed) != 1 || result.Removed[0] != "q3" {
		t.Fatalf("expected only q3 confirmed removed, got %+v", result)
	}
	if len(result.FailedBatches) != 1 {
		t.Fatalf("expected 1 failed batch, got %v", result.FailedBatches)
	}
}

func TestRemoveInvalidDeletesFailingRows(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuestionStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	good := kenyaCapital("q-good", base)
	// Never mentions Kenya, so the relevance check fails.
	bad := persisted("q-bad", "ke", "What is the capital of this nation?",
		[]string{"Nairobi", "Paris", "Cairo", "Lima"}, "Nairobi", base)
	_ = store.Upsert(ctx, []domain.PersistedQuestion{good, bad})

	service := app.NewCleanupService(store, testCatalog(t), nil, 0)
	result, err := service.RemoveInvalid(ctx, "ke")
	if err != nil {
		t.Fatalf("remove invalid: %v", err)
	}
	if len(result.Removed) != 1 || result.Removed[0] != "q-bad" {
		t.Fatalf("expected q-bad removed, got %+v", result)
	}
	if len(result.Issues) == 0 {
		t.Fatalf("expected issue strings")
	}

	// Idempotent: the surviving set is self-consistent.
	again, err := service.RemoveInvalid(ctx, "ke")
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if len(again.Removed) != 0 {
		t.Fatalf("expected nothing removed on second pass, got %v", again.Removed)
	}
}

func TestRemoveInvalidCapsIssueList(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuestionStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	rows := make([]domain.PersistedQuestion, 0, 30)
	for i := 0; i < 30; i++ {
		rows = append(rows, persisted(fmt.Sprintf("q-%02d", i), "ke", "What is the capital of this nation?",
			[]string{"Nairobi", "Paris", "Cairo", "Lima"}, "Nairobi", base.Add(time.Duration(i)*time.Second)))
	}
	_ = store.Upsert(ctx, rows)

	service := app.NewCleanupService(store, testCatalog(t), nil, 0)
	result, err := service.RemoveInvalid(ctx, "ke")
	if err != nil {
		t.Fatalf("remove invalid: %v", err)
	}
	if len(result.Removed) != 30 {
		t.Fatalf("expected all 30 removed, got %d", len(result.Removed))
	}
	if len(result.Issues) != 20 {
		t.Fatalf("expected issue list capped at 20, got %d", len(result.Issues))
	}
}

func TestEndToEndDoubleGenerationCleanup(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuestionStore()
	catalog := testCatalog(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Simulate accidental double generation of the same Kenya capital
	// question under two ids.
	_ = store.Upsert(ctx, []domain.PersistedQuestion{
		kenyaCapital("ke-easy-geography-001", base),
		kenyaCapital("ke-easy-geography-002", base.Add(time.Second)),
	})

	service := app.NewCleanupService(store, catalog, memory.NewFingerprintIndex(), 0)
	result, err := service.Deduplicate(ctx, "ke")
	if err != nil {
		t.Fatalf("deduplicate: %v", err)
	}
	if len(result.Removed) != 1 || result.Removed[0] != "ke-easy-geography-002" {
		t.Fatalf("expected exactly the newer copy removed, got %+v", result)
	}
	if store.Len() != 1 {
		t.Fatalf("expected a single surviving question, got %d", store.Len())
	}
}
