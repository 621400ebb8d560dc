package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/TINANOROUZI/24hr-stories/internal/migrations"
	"github.com/TINANOROUZI/24hr-stories/pkg/config"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate [up|down|status|reset]")
	}
	command := os.Args[1]

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, dialect, err := open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	provider, err := migrations.NewProvider(db, dialect)
	if err != nil {
		log.Fatalf("Failed to create migration provider: %v", err)
	}

	ctx := context.Background()
	fmt.Printf("Running %s migrations against the %s store\n", command, cfg.Storage.Driver)

	switch command {
	case "up":
		results, err := provider.Up(ctx)
		if err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		printResults(results)
		fmt.Println("Migrations applied successfully")
	case "down":
		result, err := provider.Down(ctx)
		if err != nil {
			log.Fatalf("Failed to rollback migration: %v", err)
		}
		printResults([]*goose.MigrationResult{result})
		fmt.Println("Migration rollback successful")
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			log.Fatalf("Failed to get migration status: %v", err)
		}
		for _, s := range statuses {
			fmt.Printf("%-8s %d %s\n", s.State, s.Source.Version, s.Source.Path)
		}
	case "reset":
		results, err := provider.DownTo(ctx, 0)
		if err != nil {
			log.Fatalf("Failed to reset migrations: %v", err)
		}
		printResults(results)
		fmt.Println("All migrations have been rolled back")
	default:
		log.Fatalf("Unknown command: %s", command)
	}
}

// open connects to the relational store named by STORAGE_DRIVER. Redis and
// memory stores have no schema.
func open(cfg *config.Config) (*sql.DB, goose.Dialect, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		db, err := sql.Open("postgres", cfg.GetDSN())
		return db, goose.DialectPostgres, err
	case "sqlite", "":
		db, err := sql.Open("sqlite", "file:"+cfg.Storage.Path)
		return db, goose.DialectSQLite3, err
	default:
		return nil, "", fmt.Errorf("driver %q has no migrations", cfg.Storage.Driver)
	}
}

func printResults(results []*goose.MigrationResult) {
	for _, r := range results {
		if r == nil {
			continue
		}
		fmt.Printf("%s %d %s (%s)\n", r.Direction, r.Source.Version, r.Source.Path, r.Duration)
	}
}
