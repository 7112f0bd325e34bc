// Command cleanup removes abandoned draft cases and expired sessions older
// than the configured retention periods. It is intended to be invoked by an
// external cron job, not as an in-process goroutine.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/ihsanfoundation/ihsan-backend/internal/adapter/postgres"
	"github.com/ihsanfoundation/ihsan-backend/internal/adapter/postgres/casefile"
	"github.com/ihsanfoundation/ihsan-backend/internal/adapter/postgres/session"
	"github.com/ihsanfoundation/ihsan-backend/internal/app"
	"github.com/ihsanfoundation/ihsan-backend/internal/config"
	"github.com/ihsanfoundation/ihsan-backend/internal/service/cases"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	caseSvc := cases.NewService(logger, casefile.New(pool))
	sessionRepo := session.New(pool)

	drafts, err := caseSvc.PurgeAbandonedDrafts(ctx, cfg.Cases.DraftRetention)
	if err != nil {
		logger.Error("delete abandoned drafts failed",
			slog.String("error", err.Error()),
			slog.Duration("retention", cfg.Cases.DraftRetention),
		)
		os.Exit(1)
	}

	// Keep expired rows for a day so a just-expired refresh still produces a
	// clean "session expired" error instead of "not found".
	sessions, err := sessionRepo.DeleteExpired(ctx, 24*time.Hour)
	if err != nil {
		logger.Error("delete expired sessions failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("cleanup completed",
		slog.Int64("drafts_deleted", drafts),
		slog.Int64("sessions_deleted", sessions),
	)
}
