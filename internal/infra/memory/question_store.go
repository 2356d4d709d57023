package memory

import (
	"context"
	"sort"
	"sync"

	"geoquiz-pipeline/internal/domain"
)

// QuestionStore is an in-memory implementation of app.QuestionStore, used in
// tests and as the fallback when no Postgres URL is configured.
type QuestionStore struct {
	mu        sync.RWMutex
	questions map[string]domain.PersistedQuestion

	// OnDelete, when set, is consulted before each delete batch; returning an
	// error fails that batch without touching the stored rows. Tests use it
	// to exercise partial-failure reporting.
	OnDelete func(ids []string) error
}

func NewQuestionStore() *QuestionStore {
	return &QuestionStore{questions: make(map[string]domain.PersistedQuestion)}
}

func (s *QuestionStore) List(_ context.Context, filter domain.QuestionFilter) ([]domain.PersistedQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]domain.PersistedQuestion, 0, len(s.questions))
	for _, q := range s.questions {
		if filter.CountryID != "" && q.CountryID != filter.CountryID {
			continue
		}
		if filter.Difficulty != "" && q.Difficulty != filter.Difficulty {
			continue
		}
		if filter.Category != "" && q.Category != filter.Category {
			continue
		}
		rows = append(rows, q)
	}
	// Creation time ascending, id as the stable tie-break, matching the
	// ordering contract of the Postgres store.
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.Before(rows[j].CreatedAt)
		}
		return rows[i].ID < rows[j].ID
	})
	return rows, nil
}

func (s *QuestionStore) Upsert(_ context.Context, batch []domain.PersistedQuestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range batch {
		s.questions[q.ID] = q
	}
	return nil
}

func (s *QuestionStore) Delete(_ context.Context, ids []string) error {
	if s.OnDelete != nil {
		if err := s.OnDelete(ids); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.questions, id)
	}
	return nil
}

// Len reports the number of stored questions.
func (s *QuestionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.questions)
}
