package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"geoquiz-pipeline/internal/domain"
	"geoquiz-pipeline/internal/pipeline"
)

const (
	// defaultAuditConcurrency bounds the per-country fan-out of a global audit.
	defaultAuditConcurrency = 4

	// auditIssueCap bounds the issue list in a quality report.
	auditIssueCap = 50
)

// AuditService is the read-only half of the quality loop: it summarizes
// question health without mutating anything. Remediation is a separate,
// explicit call into CleanupService or GenerationService, never a side effect
// of auditing.
type AuditService struct {
	store       QuestionStore
	catalog     CountryCatalog
	concurrency int
	now         func() time.Time
}

// NewAuditService wires the audit path. concurrency <= 0 selects the default.
func NewAuditService(store QuestionStore, catalog CountryCatalog, concurrency int) *AuditService {
	if concurrency <= 0 {
		concurrency = defaultAuditConcurrency
	}
	return &AuditService{store: store, catalog: catalog, concurrency: concurrency, now: time.Now}
}

// Audit produces a quality report for one country, or globally when countryID
// is empty. Global reports additionally carry catalog coverage and fan out
// per country with bounded concurrency, since the store read API is scoped.
func (s *AuditService) Audit(ctx context.Context, countryID string) (domain.QualityReport, error) {
	facts, err := s.catalog.All(ctx)
	if err != nil {
		return domain.QualityReport{}, fmt.Errorf("load country catalog: %w", err)
	}
	validator := pipeline.NewValidator(facts)

	if countryID != "" {
		rows, err := s.store.List(ctx, domain.QuestionFilter{CountryID: countryID})
		if err != nil {
			return domain.QualityReport{}, fmt.Errorf("load questions: %w", err)
		}
		report := tally(countryID, rows, validator)
		report.GeneratedAt = s.now()
		return report, nil
	}

	var (
		mu      sync.Mutex
		reports = make([]domain.QualityReport, 0, len(facts))
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)
	for _, fact := range facts {
		fact := fact
		group.Go(func() error {
			rows, err := s.store.List(groupCtx, domain.QuestionFilter{CountryID: fact.ID})
			if err != nil {
				return fmt.Errorf("load questions for %s: %w", fact.ID, err)
			}
			report := tally(fact.ID, rows, validator)
			mu.Lock()
			reports = append(reports, report)
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return domain.QualityReport{}, err
	}

	global := domain.QualityReport{
		PerDifficulty: make(map[domain.Difficulty]int),
		GeneratedAt:   s.now(),
	}
	covered := 0
	for _, r := range reports {
		global.Total += r.Total
		global.Valid += r.Valid
		for d, n := range r.PerDifficulty {
			global.PerDifficulty[d] += n
		}
		for _, issue := range r.Issues {
			if len(global.Issues) < auditIssueCap {
				global.Issues = append(global.Issues, issue)
			}
		}
		if r.Total > 0 {
			covered++
		}
	}
	if global.Total > 0 {
		global.Score = global.Valid * 100 / global.Total
	}
	if len(facts) > 0 {
		global.Coverage = float64(covered) / float64(len(facts))
	}
	return global, nil
}

// tally validates every row in one country scope and aggregates the counts.
func tally(countryID string, rows []domain.PersistedQuestion, validator *pipeline.Validator) domain.QualityReport {
	report := domain.QualityReport{
		CountryID:     countryID,
		Total:         len(rows),
		PerDifficulty: make(map[domain.Difficulty]int),
	}
	for _, q := range rows {
		report.PerDifficulty[q.Difficulty]++
		res := validator.Validate(q.QuestionCandidate)
		if res.Valid {
			report.Valid++
			continue
		}
		for _, issue := range res.Issues {
			if len(report.Issues) < auditIssueCap {
				report.Issues = append(report.Issues, fmt.Sprintf("%s: %s", q.ID, issue))
			}
		}
	}
	// Score is defined as 0 when the scope holds no questions.
	if report.Total > 0 {
		report.Score = report.Valid * 100 / report.Total
	}
	return report
}
