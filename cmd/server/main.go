// @title         accounts API
// @version       1.0
// @description   Account signup and email verification service.
// @BasePath      /api
// @schemes       http
// @host          localhost:8080
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Session token. Both "Bearer <JWT>" and "<JWT>" are accepted.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	swagger "github.com/gofiber/swagger"
	"go.uber.org/zap"

	_ "github.com/artem13815/accounts/docs"

	// internal imports
	"github.com/artem13815/accounts/api/http"
	"github.com/artem13815/accounts/api/http/handlers"
	"github.com/artem13815/accounts/api/http/middleware"
	"github.com/artem13815/accounts/pkg/auth"
	"github.com/artem13815/accounts/pkg/config"
	"github.com/artem13815/accounts/pkg/health"
	healthcheckers "github.com/artem13815/accounts/pkg/health/checkers"
	"github.com/artem13815/accounts/pkg/logger"
	"github.com/artem13815/accounts/pkg/notify"
	"github.com/artem13815/accounts/pkg/repository/sqldb"
	"github.com/artem13815/accounts/pkg/security/jwt"
	"github.com/artem13815/accounts/pkg/storage/migrations"
	"github.com/artem13815/accounts/pkg/storage/postgres"
	"github.com/artem13815/accounts/pkg/storage/sqlite"
)

func main() {
	// Load configuration from env/.env; missing mail or URL settings stop here.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logg, err := logger.New(cfg.IsDevelopment(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	if err := run(cfg, logg); err != nil {
		logg.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logg *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()
	logg.Info("store ready", zap.String("driver", st.dialect.Name))

	// Wire dependencies (Clean Architecture)
	userRepo := sqldb.NewUserRepository(st.db, st.dialect)
	jwtGen := jwt.NewGenerator(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWTTTL())

	transport := notify.NewSMTPTransport(notify.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Secure:   cfg.Mail.Secure,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		Timeout:  cfg.Mail.Timeout,
	})
	sender, err := notify.NewSender(notify.Config{
		BaseURL:         cfg.BaseURL(),
		From:            cfg.MailFrom(),
		VerificationTTL: cfg.VerificationTTL,
	}, transport, logg.Named("notify"))
	if err != nil {
		return fmt.Errorf("init mailer: %w", err)
	}

	authUC := auth.NewAuthService(userRepo, jwtGen, sender,
		auth.WithVerificationTTL(cfg.VerificationTTL),
		auth.WithBcryptCost(cfg.BcryptCost),
	)
	successURL, err := resolveURL(cfg.BaseURL(), cfg.VerifySuccessPath)
	if err != nil {
		return fmt.Errorf("verification success url: %w", err)
	}
	authHandler := handlers.NewAuthHandler(authUC, successURL, logg.Named("http"))
	pageHandler := handlers.NewPageHandler(sender.SignInLink())

	// Health service: compose checkers
	readiness := health.NewService(st.checker)
	healthHandler := handlers.NewHealthHandler(readiness)

	// JWT auth middleware for protected routes
	authMW := jwt.NewAuthMiddleware(cfg.JWT.Secret, cfg.JWT.Issuer)

	app := fiber.New(fiber.Config{DisableStartupMessage: !cfg.IsDevelopment()})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(logg.Named("access")))

	// Register routes
	http.Register(app, authHandler, healthHandler, pageHandler, authMW, cfg.VerifySuccessPath)

	// Swagger UI
	app.Get("/swagger/*", swagger.HandlerDefault)

	errCh := make(chan error, 1)
	go func() {
		logg.Info("HTTP server listening", zap.String("port", cfg.Port))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

type store struct {
	db      *sql.DB
	dialect sqldb.Dialect
	checker health.Checker
	close   func()
}

// openStore connects the configured backend and applies migrations.
func openStore(ctx context.Context, cfg config.Config) (*store, error) {
	dialect, err := sqldb.DialectByName(cfg.Store.Driver)
	if err != nil {
		return nil, err
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var st *store
	switch dialect.Name {
	case sqldb.Postgres.Name:
		pool, err := postgres.Connect(connectCtx, cfg.Store.DatabaseURL, postgres.PoolOptions{MaxConns: cfg.Store.MaxConns})
		if err != nil {
			return nil, fmt.Errorf("postgres connect: %w", err)
		}
		db := postgres.OpenDB(pool)
		st = &store{
			db:      db,
			dialect: dialect,
			checker: healthcheckers.NewPostgresChecker(pool),
			close: func() {
				db.Close()
				pool.Close()
			},
		}
	default:
		db, err := sqlite.Open(connectCtx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		st = &store{
			db:      db,
			dialect: dialect,
			checker: healthcheckers.NewSQLChecker("sqlite", db),
			close:   func() { db.Close() },
		}
	}

	if err := migrations.Up(connectCtx, st.db, dialect.Name); err != nil {
		st.close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return st, nil
}

// resolveURL joins an absolute base URL and a path; an absolute path
// argument wins over the base.
func resolveURL(base, path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", err
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(ref.Path, "/")
	u.RawQuery = ref.RawQuery
	return u.String(), nil
}
