package main

import (
	"context"
	"flag"
	"log"

	"lexdesk/internal/config"
	"lexdesk/internal/repository/postgres"
	"lexdesk/internal/seed"

	"github.com/joho/godotenv"
)

func main() {
	file := flag.String("file", "", "Seed fixture YAML (defaults to SEED_FILE, then the bundled fixtures)")
	schemaOnly := flag.Bool("schema-only", false, "Only run migrations, don't seed")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()
	if *file == "" {
		*file = cfg.SeedFile
	}

	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()

	if cfg.DatabaseURL == "" {
		log.Fatalf("DATABASE_URL is required: the memory store lives inside the server process, use `server --seed` for it")
	}

	ctx := context.Background()

	log.Printf("📋 Migrating schema (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	if err := postgres.Migrate(ctx, cfg.DatabaseURL, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		return
	}

	fx, err := seed.Load(*file)
	if err != nil {
		log.Fatalf("Failed to load fixtures: %v", err)
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	store := postgres.NewStore(&postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	})

	counts, err := seed.NewSeeder(store, logger).Seed(ctx, fx)
	if err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}

	log.Printf("🌱 Seeded %d clients, %d templates, %d documents, %d feed posts, %d queries, %d alerts",
		counts.Clients, counts.Templates, counts.Documents, counts.Activity, counts.Queries, counts.Alerts)
	log.Println("🎉 Seeding complete!")
}
