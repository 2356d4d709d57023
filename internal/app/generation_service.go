package app

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"geoquiz-pipeline/internal/domain"
	"geoquiz-pipeline/internal/pipeline"
)

// defaultWriteBatchSize bounds upsert batches to respect external-store limits.
const defaultWriteBatchSize = 25

// GenerationResult reports one generate-and-persist run. Persisted lists only
// ids whose upsert batch was confirmed; FailedBatches enumerates batches that
// could not be written.
type GenerationResult struct {
	CountryID         string              `json:"countryId"`
	Category          domain.Category     `json:"category"`
	Difficulty        domain.Difficulty   `json:"difficulty"`
	Requested         int                 `json:"requested"`
	Persisted         []string            `json:"persisted"`
	Rejected          []RejectedCandidate `json:"rejected,omitempty"`
	DuplicatesSkipped int                 `json:"duplicatesSkipped"`
	FailedBatches     []int               `json:"failedBatches,omitempty"`
}

// RejectedCandidate pairs a rejected question text with its full issue list.
type RejectedCandidate struct {
	Text   string   `json:"text"`
	Issues []string `json:"issues"`
}

// GenerationService runs the write path of the pipeline: template generation,
// the validation gate, write-time fingerprint deduplication, id assignment,
// and batched persistence. It also serves session question selection backed
// by the advisory recently-used cache.
type GenerationService struct {
	store     QuestionStore
	catalog   CountryCatalog
	index     FingerprintIndex // optional; nil disables the write-time index
	recent    RecentCache      // optional; nil disables repeat avoidance
	batchSize int
	rng       *rand.Rand
	now       func() time.Time
}

// NewGenerationService wires the write path. index and recent may be nil;
// batchSize <= 0 selects the default.
func NewGenerationService(store QuestionStore, catalog CountryCatalog, index FingerprintIndex, recent RecentCache, batchSize int) *GenerationService {
	return newGenerationService(store, catalog, index, recent, batchSize,
		rand.New(rand.NewSource(time.Now().UnixNano())), time.Now)
}

// NewGenerationServiceWithClock is test-only for deterministic shuffles and
// timestamps.
func NewGenerationServiceWithClock(store QuestionStore, catalog CountryCatalog, index FingerprintIndex, recent RecentCache, batchSize int, rng *rand.Rand, now func() time.Time) *GenerationService {
	return newGenerationService(store, catalog, index, recent, batchSize, rng, now)
}

func newGenerationService(store QuestionStore, catalog CountryCatalog, index FingerprintIndex, recent RecentCache, batchSize int, rng *rand.Rand, now func() time.Time) *GenerationService {
	if batchSize <= 0 {
		batchSize = defaultWriteBatchSize
	}
	return &GenerationService{
		store:     store,
		catalog:   catalog,
		index:     index,
		recent:    recent,
		batchSize: batchSize,
		rng:       rng,
		now:       now,
	}
}

// GenerateAndPersist produces candidates, gates them through validation and
// fingerprint deduplication, and writes survivors in bounded batches. A
// shorter-than-requested result is a legitimate generation gap.
func (s *GenerationService) GenerateAndPersist(ctx context.Context, countryID string, category domain.Category, difficulty domain.Difficulty, count int) (GenerationResult, error) {
	result := GenerationResult{
		CountryID:  countryID,
		Category:   category,
		Difficulty: difficulty,
		Requested:  count,
		Persisted:  []string{},
	}

	facts, err := s.catalog.All(ctx)
	if err != nil {
		return result, fmt.Errorf("load country catalog: %w", err)
	}
	if len(facts) == 0 {
		return result, domain.ErrCatalogEmpty
	}

	generator := pipeline.NewGenerator(facts, s.rng)
	candidates, err := generator.Generate(countryID, category, difficulty, count)
	if err != nil {
		return result, err
	}

	existing, err := s.store.List(ctx, domain.QuestionFilter{CountryID: countryID})
	if err != nil {
		return result, fmt.Errorf("load existing questions: %w", err)
	}
	knownFingerprints := make(map[string]bool, len(existing))
	knownIDs := make(map[string]bool, len(existing))
	for _, q := range existing {
		knownFingerprints[pipeline.Fingerprint(q.Text, q.Options)] = true
		knownIDs[q.ID] = true
	}

	validator := pipeline.NewValidator(facts)
	var accepted []domain.PersistedQuestion
	newIndexEntries := make(map[string]string)
	seq := len(existing) + 1

	for _, candidate := range candidates {
		if res := validator.Validate(candidate); !res.Valid {
			result.Rejected = append(result.Rejected, RejectedCandidate{Text: candidate.Text, Issues: res.Issues})
			continue
		}

		fp := pipeline.Fingerprint(candidate.Text, candidate.Options)
		if knownFingerprints[fp] {
			result.DuplicatesSkipped++
			continue
		}
		if s.index != nil {
			hits, err := s.index.Lookup(ctx, countryID, []string{fp})
			if err == nil && len(hits) > 0 {
				result.DuplicatesSkipped++
				continue
			}
		}
		knownFingerprints[fp] = true

		id := s.assignID(candidate, seq, knownIDs)
		seq++
		knownIDs[id] = true
		newIndexEntries[fp] = id
		accepted = append(accepted, domain.PersistedQuestion{
			QuestionCandidate: candidate,
			ID:                id,
			CreatedAt:         s.now(),
		})
	}

	for batchIdx, batch := range chunkQuestions(accepted, s.batchSize) {
		if err := s.store.Upsert(ctx, batch); err != nil {
			result.FailedBatches = append(result.FailedBatches, batchIdx)
			for _, q := range batch {
				delete(newIndexEntries, pipeline.Fingerprint(q.Text, q.Options))
			}
			continue
		}
		for _, q := range batch {
			result.Persisted = append(result.Persisted, q.ID)
		}
	}

	if s.index != nil && len(newIndexEntries) > 0 {
		// Best effort: a stale index only costs an extra store scan later.
		_ = s.index.Store(ctx, countryID, newIndexEntries)
	}
	return result, nil
}

// PickQuestions selects up to count questions for a session, avoiding ids the
// session has recently seen. The cache is advisory: when filtering would
// leave too few questions, or the cache is unavailable, selection falls back
// to the full pool.
func (s *GenerationService) PickQuestions(ctx context.Context, sessionID, countryID string, difficulty domain.Difficulty, count int) ([]domain.PersistedQuestion, error) {
	pool, err := s.store.List(ctx, domain.QuestionFilter{CountryID: countryID, Difficulty: difficulty})
	if err != nil {
		return nil, fmt.Errorf("load question pool: %w", err)
	}
	if len(pool) == 0 || count <= 0 {
		return nil, nil
	}

	selected := pool
	if s.recent != nil {
		if used, err := s.recent.RecentlyUsed(ctx, sessionID); err == nil && len(used) > 0 {
			fresh := make([]domain.PersistedQuestion, 0, len(pool))
			for _, q := range pool {
				if !used[q.ID] {
					fresh = append(fresh, q)
				}
			}
			if len(fresh) >= count {
				selected = fresh
			}
		}
	}

	picked := make([]domain.PersistedQuestion, len(selected))
	copy(picked, selected)
	s.rng.Shuffle(len(picked), func(a, b int) {
		picked[a], picked[b] = picked[b], picked[a]
	})
	if len(picked) > count {
		picked = picked[:count]
	}

	if s.recent != nil {
		ids := make([]string, len(picked))
		for i, q := range picked {
			ids[i] = q.ID
		}
		_ = s.recent.MarkUsed(ctx, sessionID, ids)
	}
	return picked, nil
}

// assignID composes a stable id from country, difficulty, category, and a
// rotation number, bumping the sequence past any collision with existing ids.
func (s *GenerationService) assignID(candidate domain.QuestionCandidate, seq int, taken map[string]bool) string {
	for {
		id := fmt.Sprintf("%s-%s-%s-%03d", candidate.CountryID, candidate.Difficulty, candidate.Category, seq)
		if !taken[id] {
			return id
		}
		seq++
	}
}

func chunkQuestions(questions []domain.PersistedQuestion, size int) [][]domain.PersistedQuestion {
	var batches [][]domain.PersistedQuestion
	for start := 0; start < len(questions); start += size {
		end := start + size
		if end > len(questions) {
			end = len(questions)
		}
		batches = append(batches, questions[start:end])
	}
	return batches
}
