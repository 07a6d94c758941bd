package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/gran-oriente/logia-engine/pkg/auth"
	"github.com/gran-oriente/logia-engine/pkg/config"
	"github.com/gran-oriente/logia-engine/pkg/crypto"
	"github.com/gran-oriente/logia-engine/pkg/database"
	"github.com/gran-oriente/logia-engine/pkg/handlers"
	"github.com/gran-oriente/logia-engine/pkg/logging"
	"github.com/gran-oriente/logia-engine/pkg/middleware"
	"github.com/gran-oriente/logia-engine/pkg/repositories"
	"github.com/gran-oriente/logia-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.URL())))

	ctx := context.Background()

	// Migrations run over database/sql; the application pool is pgx native.
	migrationDB, err := sql.Open("pgx", cfg.Database.URL())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = migrationDB.Close()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.URL(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	encryptor, err := crypto.NewFieldEncryptor(cfg.MemberCredentialsKey)
	if err != nil {
		logger.Fatal("Failed to create field encryptor", zap.Error(err))
	}

	// Repositories
	memberRepo := repositories.NewMemberRepository(db, encryptor)
	accountRepo := repositories.NewAccountRepository(db)
	eventRepo := repositories.NewEventRepository(db)
	attendanceRepo := repositories.NewAttendanceRepository(db)
	documentRepo := repositories.NewDocumentRepository(db)
	planchaRepo := repositories.NewPlanchaRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)

	// Services
	authService := services.NewAuthService(accountRepo, memberRepo, logger)
	accountService := services.NewAccountService(db, accountRepo, memberRepo, notificationRepo, logger)
	memberService := services.NewMemberService(memberRepo, logger)
	eventService := services.NewEventService(db, eventRepo, attendanceRepo, memberRepo, logger)
	attendanceService := services.NewAttendanceService(attendanceRepo, memberRepo, logger)
	documentService := services.NewDocumentService(documentRepo, logger)
	planchaService := services.NewPlanchaService(db, planchaRepo, notificationRepo, logger)
	notificationService := services.NewNotificationService(notificationRepo, logger)

	// Auth
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	auth.InitSessionStore(cfg.Auth.SessionSecret, int(cfg.Auth.TokenTTL.Seconds()))
	authMiddleware := auth.NewMiddleware(tokens, logger)

	mux := http.NewServeMux()

	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewAuthHandler(authService, accountService, tokens, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewMembersHandler(memberService, accountService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewAccountsHandler(accountService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewEventsHandler(eventService, attendanceService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewDocumentsHandler(documentService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewPlanchasHandler(planchaService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewNotificationsHandler(notificationService, logger).RegisterRoutes(mux, authMiddleware)

	server := &http.Server{
		Addr:              cfg.BindAddr + ":" + cfg.Port,
		Handler:           middleware.RequestLogger(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting logia-engine",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}
	logger.Info("Server stopped")
}

// newLogger builds a production logger, or a development one for local runs.
func newLogger(env string) (*zap.Logger, error) {
	if env == "local" || env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
