package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"geoquiz-pipeline/internal/domain"
	"geoquiz-pipeline/internal/pipeline"
)

const (
	// defaultDeleteBatchSize bounds delete batches; the external store offers
	// no multi-row transaction, so batches fail or succeed independently.
	defaultDeleteBatchSize = 25

	// issueCap bounds the issue list in cleanup results.
	issueCap = 20
)

// CleanupService performs the corrective passes over persisted questions:
// fingerprint deduplication and invalid-row removal. Both operations are
// idempotent; re-running after a fully successful pass finds nothing to do.
type CleanupService struct {
	store     QuestionStore
	catalog   CountryCatalog
	index     FingerprintIndex // optional
	batchSize int
}

// NewCleanupService wires the corrective path. index may be nil; batchSize
// <= 0 selects the default.
func NewCleanupService(store QuestionStore, catalog CountryCatalog, index FingerprintIndex, batchSize int) *CleanupService {
	if batchSize <= 0 {
		batchSize = defaultDeleteBatchSize
	}
	return &CleanupService{store: store, catalog: catalog, index: index, batchSize: batchSize}
}

// Deduplicate groups the scope's questions by fingerprint, keeps the oldest
// row of each duplicate cluster, and deletes the rest in bounded batches.
// countryID empty means global scope. Deletion is not transactional across
// batches: a failed batch is recorded by index and later batches are still
// attempted, so the result enumerates exactly which ids were confirmed
// removed.
func (s *CleanupService) Deduplicate(ctx context.Context, countryID string) (domain.DedupResult, error) {
	result := domain.DedupResult{
		RunID:     uuid.NewString(),
		CountryID: countryID,
		Kept:      []string{},
		Removed:   []string{},
	}

	rows, err := s.store.List(ctx, domain.QuestionFilter{CountryID: countryID})
	if err != nil {
		return result, fmt.Errorf("load questions: %w", err)
	}

	// Stable sort preserves store order for identical timestamps, making the
	// documented tie-break (first in returned order) hold.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].CreatedAt.Before(rows[j].CreatedAt)
	})

	groups := make(map[string][]domain.PersistedQuestion)
	order := make([]string, 0, len(rows))
	for _, q := range rows {
		fp := pipeline.Fingerprint(q.Text, q.Options)
		if _, seen := groups[fp]; !seen {
			order = append(order, fp)
		}
		groups[fp] = append(groups[fp], q)
	}

	var doomed []string
	keptByFingerprint := make(map[string]map[string]string) // country -> fp -> kept id
	for _, fp := range order {
		cluster := groups[fp]
		keeper := cluster[0]
		result.Kept = append(result.Kept, keeper.ID)
		if s.index != nil {
			byCountry, ok := keptByFingerprint[keeper.CountryID]
			if !ok {
				byCountry = make(map[string]string)
				keptByFingerprint[keeper.CountryID] = byCountry
			}
			byCountry[fp] = keeper.ID
		}
		for _, dup := range cluster[1:] {
			doomed = append(doomed, dup.ID)
		}
	}

	result.Removed, result.FailedBatches = s.deleteBatched(ctx, doomed)

	if s.index != nil {
		// Refresh the write-time index so it points at the surviving rows.
		for country, entries := range keptByFingerprint {
			_ = s.index.Store(ctx, country, entries)
		}
	}
	return result, nil
}

// RemoveInvalid runs the validator over the scope and deletes every failing
// row, batched with the same partial-failure reporting as Deduplicate. The
// aggregated issue list is capped to bound report size; the removed-id list
// is always complete for confirmed batches.
func (s *CleanupService) RemoveInvalid(ctx context.Context, countryID string) (domain.CleanupResult, error) {
	result := domain.CleanupResult{
		RunID:     uuid.NewString(),
		CountryID: countryID,
		Removed:   []string{},
	}

	facts, err := s.catalog.All(ctx)
	if err != nil {
		return result, fmt.Errorf("load country catalog: %w", err)
	}
	rows, err := s.store.List(ctx, domain.QuestionFilter{CountryID: countryID})
	if err != nil {
		return result, fmt.Errorf("load questions: %w", err)
	}

	validator := pipeline.NewValidator(facts)
	var doomed []string
	for _, q := range rows {
		res := validator.Validate(q.QuestionCandidate)
		if res.Valid {
			continue
		}
		doomed = append(doomed, q.ID)
		for _, issue := range res.Issues {
			if len(result.Issues) < issueCap {
				result.Issues = append(result.Issues, fmt.Sprintf("%s: %s", q.ID, issue))
			}
		}
	}

	result.Removed, result.FailedBatches = s.deleteBatched(ctx, doomed)
	return result, nil
}

// deleteBatched removes ids in bounded batches, tolerating per-batch failure.
// It returns the confirmed-removed ids and the indexes of failed batches.
func (s *CleanupService) deleteBatched(ctx context.Context, ids []string) ([]string, []int) {
	removed := []string{}
	var failed []int
	for batchIdx, batch := range chunkIDs(ids, s.batchSize) {
		if err := s.store.Delete(ctx, batch); err != nil {
			failed = append(failed, batchIdx)
			continue
		}
		removed = append(removed, batch...)
	}
	return removed, failed
}

func chunkIDs(ids []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[start:end])
	}
	return batches
}
