// Command seed-admin creates the initial administrator account. It is meant
// to be run once against a fresh database; an existing account with the same
// email makes it fail.
//
// Flags:
//
//	--email     admin email (required)
//	--name      display name (default "Administrator")
//	--password  plaintext password; read from SEED_ADMIN_PASSWORD if empty
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ihsanfoundation/ihsan-backend/internal/adapter/postgres"
	userrepo "github.com/ihsanfoundation/ihsan-backend/internal/adapter/postgres/user"
	"github.com/ihsanfoundation/ihsan-backend/internal/app"
	"github.com/ihsanfoundation/ihsan-backend/internal/auth"
	"github.com/ihsanfoundation/ihsan-backend/internal/config"
	"github.com/ihsanfoundation/ihsan-backend/internal/domain"
)

func main() {
	email := flag.String("email", "", "admin email (required)")
	name := flag.String("name", "Administrator", "display name")
	password := flag.String("password", "", "plaintext password (or SEED_ADMIN_PASSWORD)")
	flag.Parse()

	if *password == "" {
		*password = os.Getenv("SEED_ADMIN_PASSWORD")
	}
	if *email == "" || *password == "" {
		log.Fatal("both --email and a password (flag or SEED_ADMIN_PASSWORD) are required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	hasher := auth.NewHasher(cfg.Auth.BcryptCost)
	hash, err := hasher.Hash(*password)
	if err != nil {
		logger.Error("hash password", slog.String("error", err.Error()))
		os.Exit(1)
	}

	users := userrepo.New(pool)
	admin, err := users.Create(ctx, &domain.User{
		Email:        strings.ToLower(strings.TrimSpace(*email)),
		Name:         *name,
		PasswordHash: hash,
		Role:         domain.UserRoleAdmin,
	})
	if err != nil {
		logger.Error("create admin", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("admin account created",
		slog.String("id", admin.ID.String()),
		slog.String("email", admin.Email),
	)
}
