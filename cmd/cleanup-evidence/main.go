// Command cleanup-evidence garbage-collects evidence objects that no
// contribution references anymore. Objects younger than the configured
// orphan retention are skipped so an upload racing a contribution insert is
// never deleted. Intended to be invoked by an external cron job.
//
// Flags:
//
//	--dry-run  report orphans without deleting them
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/ihsanfoundation/ihsan-backend/internal/adapter/postgres"
	"github.com/ihsanfoundation/ihsan-backend/internal/adapter/postgres/contribution"
	"github.com/ihsanfoundation/ihsan-backend/internal/adapter/s3"
	"github.com/ihsanfoundation/ihsan-backend/internal/app"
	"github.com/ihsanfoundation/ihsan-backend/internal/config"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report orphans without deleting them")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	storage, err := s3.NewStorage(ctx, cfg.Storage)
	if err != nil {
		logger.Error("connect to object storage", slog.String("error", err.Error()))
		os.Exit(1)
	}

	contributionRepo := contribution.New(pool)

	uris, err := contributionRepo.ListEvidenceURIs(ctx)
	if err != nil {
		logger.Error("list referenced evidence", slog.String("error", err.Error()))
		os.Exit(1)
	}

	referenced := make(map[string]struct{}, len(uris))
	for _, uri := range uris {
		if key, ok := storage.KeyFor(uri); ok {
			referenced[key] = struct{}{}
		}
	}

	objects, err := storage.ListObjects(ctx)
	if err != nil {
		logger.Error("list stored evidence", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cutoff := time.Now().Add(-cfg.Storage.OrphanRetention)

	var deleted, skipped int
	for _, obj := range objects {
		if _, ok := referenced[obj.Key]; ok {
			continue
		}
		if obj.LastModified.After(cutoff) {
			skipped++
			continue
		}
		if *dryRun {
			logger.Info("orphan found", slog.String("key", obj.Key))
			deleted++
			continue
		}
		if err := storage.Delete(ctx, obj.Key); err != nil {
			logger.Error("delete orphan", slog.String("key", obj.Key), slog.String("error", err.Error()))
			os.Exit(1)
		}
		deleted++
	}

	logger.Info("evidence cleanup completed",
		slog.Int("referenced", len(referenced)),
		slog.Int("stored", len(objects)),
		slog.Int("orphans", deleted),
		slog.Int("skipped_recent", skipped),
		slog.Bool("dry_run", *dryRun),
	)
}
