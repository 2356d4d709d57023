package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"geoquiz-pipeline/internal/app"
	"geoquiz-pipeline/internal/config"
	"geoquiz-pipeline/internal/domain"
	"geoquiz-pipeline/internal/infra/memory"
	pg "geoquiz-pipeline/internal/infra/postgres"
	redisinfra "geoquiz-pipeline/internal/infra/redis"
)

// environment holds the wired repositories for one command invocation.
// Postgres and Redis back the stores when configured; otherwise commands run
// against in-memory fallbacks and the built-in sample catalog.
type environment struct {
	cfg     config.Config
	log     *slog.Logger
	store   app.QuestionStore
	catalog app.CountryCatalog
	index   app.FingerprintIndex
	recent  app.RecentCache
	facts   *pg.FactCatalog // nil without Postgres
	closers []func()
}

func newEnvironment(ctx context.Context, configPath string) (*environment, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	env := &environment{
		cfg: cfg,
		log: slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	if cfg.Postgres.URL != "" {
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		db := bun.NewDB(sqldb, pgdialect.New())
		env.store = pg.NewQuestionStore(db)
		env.closers = append(env.closers, func() { _ = db.Close() })

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			env.close()
			return nil, err
		}
		env.facts = pg.NewFactCatalog(pool)
		env.catalog = memory.NewCatalogCache(env.facts, catalogTTL)
		env.closers = append(env.closers, pool.Close)
	} else {
		env.log.Info("postgres not configured, using in-memory store and sample catalog")
		env.store = memory.NewQuestionStore()
		catalog, err := memory.NewStaticCatalog(sampleCountryFacts())
		if err != nil {
			return nil, err
		}
		env.catalog = catalog
	}

	recentTTL := config.TTLDuration(cfg.Redis.RecentTTL, 30*time.Minute)
	fingerprintTTL := config.TTLDuration(cfg.Redis.FingerprintTTL, 24*time.Hour)
	if cfg.Redis.Addr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		env.index = redisinfra.NewFingerprintIndex(client, fingerprintTTL)
		env.recent = redisinfra.NewRecentCache(client, recentTTL)
		env.closers = append(env.closers, func() { _ = client.Close() })
	} else {
		env.index = memory.NewFingerprintIndex()
		env.recent = memory.NewRecentCache(recentTTL)
	}

	return env, nil
}

func (e *environment) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

func (e *environment) generationService() *app.GenerationService {
	return app.NewGenerationService(e.store, e.catalog, e.index, e.recent, e.cfg.Pipeline.WriteBatchSize)
}

func (e *environment) cleanupService() *app.CleanupService {
	return app.NewCleanupService(e.store, e.catalog, e.index, e.cfg.Pipeline.DeleteBatchSize)
}

func (e *environment) auditService() *app.AuditService {
	return app.NewAuditService(e.store, e.catalog, e.cfg.Pipeline.AuditConcurrency)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// sampleCountryFacts provides a small catalog for running the pipeline
// without Postgres; seed a real fact table for production use.
func sampleCountryFacts() []domain.CountryFact {
	year := func(y int) *int { return &y }
	return []domain.CountryFact{
		{
			ID: "ke", Name: "Kenya", Capital: "Nairobi", Continent: "Africa",
			Languages: []string{"Swahili", "English"}, Currency: "Kenyan shilling",
			IndependenceYear: year(1963),
			Neighbors:        []string{"Ethiopia", "Somalia", "Tanzania", "Uganda", "South Sudan"},
			Landmarks:        []string{"Maasai Mara", "Mount Kenya"},
			Population:       54_000_000, AreaKm2: 580_367,
		},
		{
			ID: "fr", Name: "France", Capital: "Paris", Continent: "Europe",
			Languages: []string{"French"}, Currency: "Euro",
			IndependenceYear: year(843),
			Neighbors:        []string{"Belgium", "Germany", "Italy", "Spain", "Switzerland"},
			Landmarks:        []string{"Eiffel Tower", "Mont Saint-Michel"},
			Population:       68_000_000, AreaKm2: 551_695,
		},
		{
			ID: "eg", Name: "Egypt", Capital: "Cairo", Continent: "Africa",
			Languages: []string{"Arabic"}, Currency: "Egyptian pound",
			IndependenceYear: year(1922),
			Neighbors:        []string{"Libya", "Sudan", "Israel"},
			Landmarks:        []string{"Pyramids of Giza", "Karnak Temple"},
			Population:       109_000_000, AreaKm2: 1_010_408,
		},
		{
			ID: "pe", Name: "Peru", Capital: "Lima", Continent: "South America",
			Languages: []string{"Spanish", "Quechua"}, Currency: "Sol",
			IndependenceYear: year(1821),
			Neighbors:        []string{"Brazil", "Chile", "Colombia", "Ecuador", "Bolivia"},
			Landmarks:        []string{"Machu Picchu", "Nazca Lines"},
			Population:       34_000_000, AreaKm2: 1_285_216,
		},
		{
			ID: "jp", Name: "Japan", Capital: "Tokyo", Continent: "Asia",
			Languages: []string{"Japanese"}, Currency: "Yen",
			Landmarks: []string{"Mount Fuji", "Fushimi Inari Shrine"},
			Population: 124_000_000, AreaKm2: 377_975,
		},
	}
}
