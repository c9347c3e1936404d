// Command seed fills the catalogue tables with deterministic sample products.
//
// Run: go run ./cmd/seed
// It reads the same POSTGRES_* variables as the producer, plus SEED_PRODUCTS.
package main

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/trickreich/SuluSyliusProducerPlugin/internal/config"
	"github.com/trickreich/SuluSyliusProducerPlugin/internal/repository/postgres"
	"github.com/trickreich/SuluSyliusProducerPlugin/internal/seed"
	pkgconfig "github.com/trickreich/SuluSyliusProducerPlugin/pkg/config"
	"github.com/trickreich/SuluSyliusProducerPlugin/pkg/database"
	"github.com/trickreich/SuluSyliusProducerPlugin/pkg/logger"
)

type seedConfig struct {
	Products int    `env:"SEED_PRODUCTS" envDefault:"1000"`
	RandSeed uint64 `env:"SEED_RANDOM" envDefault:"42"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	var sc seedConfig
	if err := pkgconfig.Load(&sc); err != nil {
		slog.Error("failed to load seed config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New("sylius-seed", cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPoolWithLogger(ctx, cfg.Postgres(), log)
	if err != nil {
		log.Error("connect to postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, postgres.Migrations(), log); err != nil {
		log.Error("run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	products := seed.Generate(rand.New(rand.NewPCG(sc.RandSeed, sc.RandSeed)), sc.Products)
	if err := seed.NewSeeder(pool, log).Run(ctx, products); err != nil {
		log.Error("seed catalogue", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
