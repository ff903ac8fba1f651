package main

import (
	"context"
	"log"
	"os"

	"gophi/adapters/sqlstore"
	"gophi/internal/migration"

	"github.com/jmoiron/sqlx"
)

func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: migrate <sqlite|postgres> <dsn>")
	}

	driver := os.Args[1]
	dsn := os.Args[2]
	ctx := context.Background()

	log.Printf("Migrating %s cache store", driver)

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	runner := migration.NewRunner(driver)
	if err := runner.Run(ctx, db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	n, err := sqlstore.NewSIAStore(db).Count(ctx)
	if err != nil {
		log.Fatalf("Failed to count stored SIAs: %v", err)
	}
	log.Printf("Migration %s complete: %d stored SIAs", runner.Version(), n)
}
