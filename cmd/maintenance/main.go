// Command maintenance prunes the revocation ledger. Meant to run from
// cron, daily; it only deletes rows old enough that every token they name
// has long expired.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/rlammers/microblog-api/internal/config"
	"github.com/rlammers/microblog-api/internal/db"
	"github.com/rlammers/microblog-api/internal/repo"
)

func main() {
	// The default keeps a margin above the 7-day refresh TTL.
	retention := flag.Duration("retention", 8*24*time.Hour, "delete revoked-token rows older than this")
	flag.Parse()

	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	gormRepo := &repo.GormRepo{DB: gdb}
	count, err := gormRepo.PruneRevoked(ctx, *retention)
	if err != nil {
		log.Fatalf("prune error: %v", err)
	}
	log.Printf("pruned %d revoked token(s) older than %s", count, retention)
}
