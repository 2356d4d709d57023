package pipeline

import (
	"fmt"
	"strings"

	"geoquiz-pipeline/internal/domain"
)

// minTextLength guards against degenerate auto-generated stubs.
const minTextLength = 20

// Validator applies the full content-rule battery to a question. It is
// stateless apart from the country-name table and safe for concurrent use.
// Used both as a write-time gate and as a read-time audit tool.
type Validator struct {
	// lower-cased country name by country id
	names map[string]string
}

// NewValidator builds a validator that can resolve the owning country of a
// question for the relevance check.
func NewValidator(facts []domain.CountryFact) *Validator {
	names := make(map[string]string, len(facts))
	for _, f := range facts {
		names[f.ID] = strings.ToLower(f.Name)
	}
	return &Validator{names: names}
}

// Validate runs every check and records all failures. Evaluation does not
// short-circuit, so the caller always receives the complete issue list.
func (v *Validator) Validate(q domain.QuestionCandidate) domain.ValidationResult {
	var issues []string

	issues = append(issues, v.checkPlaceholders(q)...)
	issues = append(issues, v.checkRelevance(q)...)
	issues = append(issues, v.checkShape(q)...)
	issues = append(issues, v.checkCorrectness(q)...)
	issues = append(issues, v.checkLength(q)...)

	return domain.ValidationResult{Valid: len(issues) == 0, Issues: issues}
}

func (v *Validator) checkPlaceholders(q domain.QuestionCandidate) []string {
	var issues []string
	for _, pattern := range scanPlaceholders(q.Text) {
		issues = append(issues, fmt.Sprintf("question text matches placeholder pattern %s", pattern))
	}
	for i, opt := range q.Options {
		for _, pattern := range scanPlaceholders(opt) {
			issues = append(issues, fmt.Sprintf("option %d matches placeholder pattern %s", i+1, pattern))
		}
	}
	return issues
}

func (v *Validator) checkRelevance(q domain.QuestionCandidate) []string {
	name, ok := v.names[q.CountryID]
	if !ok {
		return []string{fmt.Sprintf("unknown country id %q", q.CountryID)}
	}
	if !strings.Contains(strings.ToLower(q.Text), name) {
		return []string{fmt.Sprintf("question text does not mention country %q", name)}
	}
	return nil
}

func (v *Validator) checkShape(q domain.QuestionCandidate) []string {
	var issues []string
	if len(q.Options) != 4 {
		issues = append(issues, fmt.Sprintf("expected 4 options, got %d", len(q.Options)))
	}
	distinct := make(map[string]bool, len(q.Options))
	for i, opt := range q.Options {
		if opt == "" {
			issues = append(issues, fmt.Sprintf("option %d is empty", i+1))
			continue
		}
		distinct[strings.ToLower(strings.TrimSpace(opt))] = true
	}
	if len(q.Options) == 4 && len(distinct) < 4 {
		issues = append(issues, fmt.Sprintf("options are not pairwise distinct: %d unique values", len(distinct)))
	}
	return issues
}

// checkCorrectness requires the stored correct answer to equal one of the
// options verbatim. Normalized equality does not count; a drifted correct
// value is a generation bug, not a formatting difference.
func (v *Validator) checkCorrectness(q domain.QuestionCandidate) []string {
	for _, opt := range q.Options {
		if opt == q.CorrectAnswer {
			return nil
		}
	}
	return []string{fmt.Sprintf("correct answer %q is not among the options", q.CorrectAnswer)}
}

func (v *Validator) checkLength(q domain.QuestionCandidate) []string {
	if len(q.Text) < minTextLength {
		return []string{fmt.Sprintf("question text is %d characters, minimum is %d", len(q.Text), minTextLength)}
	}
	return nil
}
