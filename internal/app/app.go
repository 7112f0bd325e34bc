// Package app wires configuration, storage, services, and the HTTP server
// into a runnable application.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ihsanfoundation/ihsan-backend/internal/adapter/postgres"
	auditrepo "github.com/ihsanfoundation/ihsan-backend/internal/adapter/postgres/audit"
	caserepo "github.com/ihsanfoundation/ihsan-backend/internal/adapter/postgres/casefile"
	contributionrepo "github.com/ihsanfoundation/ihsan-backend/internal/adapter/postgres/contribution"
	paymentmethodrepo "github.com/ihsanfoundation/ihsan-backend/internal/adapter/postgres/paymentmethod"
	sessionrepo "github.com/ihsanfoundation/ihsan-backend/internal/adapter/postgres/session"
	userrepo "github.com/ihsanfoundation/ihsan-backend/internal/adapter/postgres/user"
	"github.com/ihsanfoundation/ihsan-backend/internal/adapter/s3"
	authpkg "github.com/ihsanfoundation/ihsan-backend/internal/auth"
	"github.com/ihsanfoundation/ihsan-backend/internal/config"
	"github.com/ihsanfoundation/ihsan-backend/internal/rbac"
	authservice "github.com/ihsanfoundation/ihsan-backend/internal/service/auth"
	"github.com/ihsanfoundation/ihsan-backend/internal/service/cases"
	"github.com/ihsanfoundation/ihsan-backend/internal/service/contribution"
	"github.com/ihsanfoundation/ihsan-backend/internal/service/paymentmethod"
	"github.com/ihsanfoundation/ihsan-backend/internal/service/review"
	"github.com/ihsanfoundation/ihsan-backend/internal/service/revision"
	"github.com/ihsanfoundation/ihsan-backend/internal/service/user"
	"github.com/ihsanfoundation/ihsan-backend/internal/transport/middleware"
	"github.com/ihsanfoundation/ihsan-backend/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, connects to
// the database and object storage, wires the services, and serves HTTP
// until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)
	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	storage, err := s3.NewStorage(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("connect to object storage: %w", err)
	}

	contributions := contributionrepo.New(pool)
	charityCases := caserepo.New(pool)
	users := userrepo.New(pool)
	sessions := sessionrepo.New(pool)
	paymentMethods := paymentmethodrepo.New(pool)
	audit := auditrepo.New(pool)
	tx := postgres.NewTxManager(pool)

	jwt := authpkg.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)
	hasher := authpkg.NewHasher(cfg.Auth.BcryptCost)
	broadcaster := rbac.NewBroadcaster()

	paymentMethodSvc := paymentmethod.NewService(logger, paymentMethods)
	reviewSvc := review.NewService(logger, contributions, charityCases, audit, tx)
	revisionSvc := revision.NewService(logger, contributions, storage, paymentMethodSvc, audit, tx)
	contributionSvc := contribution.NewService(logger, contributions, charityCases, storage, paymentMethodSvc)
	caseSvc := cases.NewService(logger, charityCases)
	userSvc := user.NewService(logger, users, sessions, audit, tx, broadcaster)
	authSvc := authservice.NewService(logger, users, sessions, jwt, hasher, cfg.Auth.RefreshTokenTTL)

	mux := rest.NewRouter(rest.Handlers{
		Health:         rest.NewHealthHandler(pool, BuildVersion()),
		Auth:           rest.NewAuthHandler(authSvc, logger),
		Contributions:  rest.NewContributionHandler(contributionSvc, reviewSvc, revisionSvc, logger),
		Cases:          rest.NewCaseHandler(caseSvc, logger),
		Admin:          rest.NewAdminHandler(userSvc, audit, logger),
		PaymentMethods: rest.NewPaymentMethodHandler(paymentMethodSvc, logger),
	})

	limiter := middleware.NewRateLimiter(time.Minute)
	defer limiter.Stop()

	handler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID,
		middleware.CORS(cfg.CORS),
		middleware.Auth(jwt),
		middleware.Logger(logger),
		limiter.Limit(300),
	)(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
