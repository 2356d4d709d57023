package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"geoquiz-pipeline/internal/domain"
)

const factColumns = `id, name, capital, continent, languages, currency, independence_year, neighbors, landmarks, population, area_km2`

// FactCatalog reads the country fact table from Postgres. Every record is
// boundary-validated before it enters the pipeline.
type FactCatalog struct {
	pool *pgxpool.Pool
}

func NewFactCatalog(pool *pgxpool.Pool) *FactCatalog {
	return &FactCatalog{pool: pool}
}

func (c *FactCatalog) All(ctx context.Context) ([]domain.CountryFact, error) {
	rows, err := c.pool.Query(ctx, `SELECT `+factColumns+` FROM country_facts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query country facts: %w", err)
	}
	defer rows.Close()

	var facts []domain.CountryFact
	for rows.Next() {
		fact, err := scanFact(rows)
		if err != nil {
			return nil, err
		}
		facts = append(facts, fact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate country facts: %w", err)
	}
	return facts, nil
}

func (c *FactCatalog) Get(ctx context.Context, id string) (domain.CountryFact, error) {
	row := c.pool.QueryRow(ctx, `SELECT `+factColumns+` FROM country_facts WHERE id=$1`, id)
	fact, err := scanFact(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CountryFact{}, fmt.Errorf("%w: %q", domain.ErrCountryNotFound, id)
	}
	return fact, err
}

// Seed upserts fact records, validating each at the boundary. Used by the
// seed command to load a catalog file.
func (c *FactCatalog) Seed(ctx context.Context, facts []domain.CountryFact) error {
	for _, fact := range facts {
		if err := fact.Validate(); err != nil {
			return err
		}
		languages, err := json.Marshal(fact.Languages)
		if err != nil {
			return fmt.Errorf("marshal languages for %s: %w", fact.ID, err)
		}
		neighbors, err := json.Marshal(fact.Neighbors)
		if err != nil {
			return fmt.Errorf("marshal neighbors for %s: %w", fact.ID, err)
		}
		landmarks, err := json.Marshal(fact.Landmarks)
		if err != nil {
			return fmt.Errorf("marshal landmarks for %s: %w", fact.ID, err)
		}

		_, err = c.pool.Exec(ctx, `
			INSERT INTO country_facts (`+factColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				capital = EXCLUDED.capital,
				continent = EXCLUDED.continent,
				languages = EXCLUDED.languages,
				currency = EXCLUDED.currency,
				independence_year = EXCLUDED.independence_year,
				neighbors = EXCLUDED.neighbors,
				landmarks = EXCLUDED.landmarks,
				population = EXCLUDED.population,
				area_km2 = EXCLUDED.area_km2`,
			fact.ID, fact.Name, fact.Capital, fact.Continent, languages, fact.Currency,
			fact.IndependenceYear, neighbors, landmarks, fact.Population, fact.AreaKm2)
		if err != nil {
			return fmt.Errorf("seed country fact %s: %w", fact.ID, err)
		}
	}
	return nil
}

func scanFact(row pgx.Row) (domain.CountryFact, error) {
	var (
		fact      domain.CountryFact
		languages []byte
		neighbors []byte
		landmarks []byte
	)
	err := row.Scan(&fact.ID, &fact.Name, &fact.Capital, &fact.Continent, &languages,
		&fact.Currency, &fact.IndependenceYear, &neighbors, &landmarks,
		&fact.Population, &fact.AreaKm2)
	if err != nil {
		return domain.CountryFact{}, err
	}
	if err := json.Unmarshal(languages, &fact.Languages); err != nil {
		return domain.CountryFact{}, fmt.Errorf("unmarshal languages for %s: %w", fact.ID, err)
	}
	if err := json.Unmarshal(neighbors, &fact.Neighbors); err != nil {
		return domain.CountryFact{}, fmt.Errorf("unmarshal neighbors for %s: %w", fact.ID, err)
	}
	if err := json.Unmarshal(landmarks, &fact.Landmarks); err != nil {
		return domain.CountryFact{}, fmt.Errorf("unmarshal landmarks for %s: %w", fact.ID, err)
	}
	if err := fact.Validate(); err != nil {
		return domain.CountryFact{}, err
	}
	return fact, nil
}
