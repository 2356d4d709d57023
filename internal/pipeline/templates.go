package pipeline

import (
	"fmt"
	"strconv"

	"geoquiz-pipeline/internal/domain"
)

// templateKind identifies one question template. Each kind reads its correct
// value from a single field of the target country's fact record and draws
// distractors from the same field of other countries.
type templateKind string

const (
	kindCapital      templateKind = "capital"
	kindContinent    templateKind = "continent"
	kindLanguage     templateKind = "language"
	kindCurrency     templateKind = "currency"
	kindIndependence templateKind = "independence-year"
	kindNeighbor     templateKind = "neighbor"
	kindPopulation   templateKind = "population-bucket"
	kindLandmark     templateKind = "landmark"
)

// kindsByCategory maps each question category to its template kinds, in the
// order they are tried. Nature has no backing field in the fact record, so it
// legitimately generates nothing.
var kindsByCategory = map[domain.Category][]templateKind{
	domain.CategoryGeography:    {kindCapital, kindContinent, kindNeighbor},
	domain.CategoryHistory:      {kindIndependence},
	domain.CategoryCulture:      {kindLandmark},
	domain.CategoryEconomy:      {kindCurrency},
	domain.CategoryLanguage:     {kindLanguage},
	domain.CategoryDemographics: {kindPopulation},
	domain.CategoryNature:       {},
}

// minDifficulty is the lowest bucket at which a template kind becomes
// eligible. Eligibility is monotonic: everything usable at a lower bucket
// stays usable at a higher one.
var minDifficulty = map[templateKind]domain.Difficulty{
	kindCapital:      domain.DifficultyEasy,
	kindContinent:    domain.DifficultyEasy,
	kindLanguage:     domain.DifficultyMedium,
	kindCurrency:     domain.DifficultyMedium,
	kindNeighbor:     domain.DifficultyMedium,
	kindIndependence: domain.DifficultyHard,
	kindPopulation:   domain.DifficultyHard,
	kindLandmark:     domain.DifficultyHard,
}

// templateParts is the raw material for one candidate before distractor
// selection and option shuffling. Explanation is deterministic prose derived
// from the fact record alone.
type templateParts struct {
	text        string
	correct     string
	explanation string
	pool        []string
}

// buildTemplate assembles the parts for one kind, or reports false when the
// target country lacks the backing field (a generation gap, not an error).
func buildTemplate(kind templateKind, fact domain.CountryFact, others []domain.CountryFact) (templateParts, bool) {
	switch kind {
	case kindCapital:
		return templateParts{
			text:        fmt.Sprintf("What is the capital city of %s?", fact.Name),
			correct:     fact.Capital,
			explanation: fmt.Sprintf("The capital city of %s is %s.", fact.Name, fact.Capital),
			pool:        fieldPool(others, func(f domain.CountryFact) []string { return []string{f.Capital} }),
		}, true

	case kindContinent:
		return templateParts{
			text:        fmt.Sprintf("On which continent is %s located?", fact.Name),
			correct:     fact.Continent,
			explanation: fmt.Sprintf("%s is located on the continent of %s.", fact.Name, fact.Continent),
			pool:        fieldPool(others, func(f domain.CountryFact) []string { return []string{f.Continent} }),
		}, true

	case kindLanguage:
		if len(fact.Languages) == 0 {
			return templateParts{}, false
		}
		primary := fact.Languages[0]
		return templateParts{
			text:        fmt.Sprintf("Which language is primarily spoken in %s?", fact.Name),
			correct:     primary,
			explanation: fmt.Sprintf("The primary language spoken in %s is %s.", fact.Name, primary),
			pool: fieldPool(others, func(f domain.CountryFact) []string {
				if len(f.Languages) == 0 {
					return nil
				}
				return f.Languages[:1]
			}),
		}, true

	case kindCurrency:
		if fact.Currency == "" {
			return templateParts{}, false
		}
		return templateParts{
			text:        fmt.Sprintf("What is the official currency of %s?", fact.Name),
			correct:     fact.Currency,
			explanation: fmt.Sprintf("The official currency of %s is the %s.", fact.Name, fact.Currency),
			pool:        fieldPool(others, func(f domain.CountryFact) []string { return []string{f.Currency} }),
		}, true

	case kindIndependence:
		if fact.IndependenceYear == nil {
			return templateParts{}, false
		}
		year := strconv.Itoa(*fact.IndependenceYear)
		return templateParts{
			text:        fmt.Sprintf("In which year did %s gain independence?", fact.Name),
			correct:     year,
			explanation: fmt.Sprintf("%s gained independence in %s.", fact.Name, year),
			pool: fieldPool(others, func(f domain.CountryFact) []string {
				if f.IndependenceYear == nil {
					return nil
				}
				return []string{strconv.Itoa(*f.IndependenceYear)}
			}),
		}, true

	case kindNeighbor:
		if len(fact.Neighbors) == 0 {
			return templateParts{}, false
		}
		neighbor := fact.Neighbors[0]
		isNeighbor := make(map[string]bool, len(fact.Neighbors))
		for _, n := range fact.Neighbors {
			isNeighbor[Normalize(n)] = true
		}
		// Distractors must not actually border the target country.
		return templateParts{
			text:        fmt.Sprintf("Which of these countries shares a border with %s?", fact.Name),
			correct:     neighbor,
			explanation: fmt.Sprintf("%s shares a land border with %s.", fact.Name, neighbor),
			pool: fieldPool(others, func(f domain.CountryFact) []string {
				if isNeighbor[Normalize(f.Name)] {
					return nil
				}
				return []string{f.Name}
			}),
		}, true

	case kindPopulation:
		bucket := PopulationBucket(fact.Population)
		return templateParts{
			text:        fmt.Sprintf("Which population range does %s fall into?", fact.Name),
			correct:     bucket,
			explanation: fmt.Sprintf("The population of %s is in the %s range.", fact.Name, bucket),
			pool:        populationBucketLabels(),
		}, true

	case kindLandmark:
		if len(fact.Landmarks) == 0 {
			return templateParts{}, false
		}
		landmark := fact.Landmarks[0]
		return templateParts{
			text:        fmt.Sprintf("Which famous landmark is located in %s?", fact.Name),
			correct:     landmark,
			explanation: fmt.Sprintf("%s is home to the landmark %s.", fact.Name, landmark),
			pool: fieldPool(others, func(f domain.CountryFact) []string {
				if len(f.Landmarks) == 0 {
					return nil
				}
				return f.Landmarks[:1]
			}),
		}, true
	}

	return templateParts{}, false
}

// fieldPool collects distractor values for one field across other countries.
func fieldPool(others []domain.CountryFact, extract func(domain.CountryFact) []string) []string {
	var pool []string
	for _, f := range others {
		for _, v := range extract(f) {
			if v != "" {
				pool = append(pool, v)
			}
		}
	}
	return pool
}
