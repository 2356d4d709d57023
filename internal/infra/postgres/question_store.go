package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"geoquiz-pipeline/internal/domain"
)

// questionRow is the bun mapping of the questions table. Options live in
// four fixed columns, matching the external store's row shape.
type questionRow struct {
	bun.BaseModel `bun:"table:questions,alias:q"`

	ID            string    `bun:"id,pk"`
	CountryID     string    `bun:"country_id,notnull"`
	Text          string    `bun:"text,notnull"`
	OptionA       string    `bun:"option_a,notnull"`
	OptionB       string    `bun:"option_b,notnull"`
	OptionC       string    `bun:"option_c,notnull"`
	OptionD       string    `bun:"option_d,notnull"`
	CorrectAnswer string    `bun:"correct_answer,notnull"`
	Category      string    `bun:"category,notnull"`
	Difficulty    string    `bun:"difficulty,notnull"`
	Explanation   string    `bun:"explanation"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
}

// QuestionStore is the bun-backed implementation of app.QuestionStore.
type QuestionStore struct {
	db *bun.DB
}

func NewQuestionStore(db *bun.DB) *QuestionStore {
	return &QuestionStore{db: db}
}

// List returns the scope ordered by creation time then id, the ordering the
// deduplication pass relies on for its "keep oldest" and tie-break rules.
func (s *QuestionStore) List(ctx context.Context, filter domain.QuestionFilter) ([]domain.PersistedQuestion, error) {
	var rows []questionRow
	q := s.db.NewSelect().Model(&rows)
	if filter.CountryID != "" {
		q = q.Where("country_id = ?", filter.CountryID)
	}
	if filter.Difficulty != "" {
		q = q.Where("difficulty = ?", string(filter.Difficulty))
	}
	if filter.Category != "" {
		q = q.Where("category = ?", string(filter.Category))
	}
	if err := q.Order("created_at ASC").Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	questions := make([]domain.PersistedQuestion, len(rows))
	for i, row := range rows {
		questions[i] = row.toDomain()
	}
	return questions, nil
}

func (s *QuestionStore) Upsert(ctx context.Context, batch []domain.PersistedQuestion) error {
	if len(batch) == 0 {
		return nil
	}
	rows := make([]questionRow, len(batch))
	for i, q := range batch {
		rows[i] = fromDomain(q)
	}
	_, err := s.db.NewInsert().
		Model(&rows).
		On("CONFLICT (id) DO UPDATE").
		Set("country_id = EXCLUDED.country_id").
		Set("text = EXCLUDED.text").
		Set("option_a = EXCLUDED.option_a").
		Set("option_b = EXCLUDED.option_b").
		Set("option_c = EXCLUDED.option_c").
		Set("option_d = EXCLUDED.option_d").
		Set("correct_answer = EXCLUDED.correct_answer").
		Set("category = EXCLUDED.category").
		Set("difficulty = EXCLUDED.difficulty").
		Set("explanation = EXCLUDED.explanation").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert questions: %w", err)
	}
	return nil
}

func (s *QuestionStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.NewDelete().
		Model((*questionRow)(nil)).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete questions: %w", err)
	}
	return nil
}

func (row questionRow) toDomain() domain.PersistedQuestion {
	return domain.PersistedQuestion{
		QuestionCandidate: domain.QuestionCandidate{
			CountryID:     row.CountryID,
			Text:          row.Text,
			Options:       []string{row.OptionA, row.OptionB, row.OptionC, row.OptionD},
			CorrectAnswer: row.CorrectAnswer,
			Explanation:   row.Explanation,
			Category:      domain.Category(row.Category),
			Difficulty:    domain.Difficulty(row.Difficulty),
		},
		ID:        row.ID,
		CreatedAt: row.CreatedAt,
	}
}

func fromDomain(q domain.PersistedQuestion) questionRow {
	row := questionRow{
		ID:            q.ID,
		CountryID:     q.CountryID,
		Text:          q.Text,
		CorrectAnswer: q.CorrectAnswer,
		Category:      string(q.Category),
		Difficulty:    string(q.Difficulty),
		Explanation:   q.Explanation,
		CreatedAt:     q.CreatedAt,
	}
	opts := q.Options
	for len(opts) < 4 {
		opts = append(opts, "")
	}
	row.OptionA, row.OptionB, row.OptionC, row.OptionD = opts[0], opts[1], opts[2], opts[3]
	return row
}
