package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Autonom664/hr-performance-dstchemicals/internal"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/auth"
	authPostgres "github.com/Autonom664/hr-performance-dstchemicals/internal/auth/postgres"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/auth/redisstore"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/conversation"
	conversationPostgres "github.com/Autonom664/hr-performance-dstchemicals/internal/conversation/postgres"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/cycle"
	cyclePostgres "github.com/Autonom664/hr-performance-dstchemicals/internal/cycle/postgres"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/report"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/transport/rest"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/user"
	userPostgres "github.com/Autonom664/hr-performance-dstchemicals/internal/user/postgres"
	"github.com/Autonom664/hr-performance-dstchemicals/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	sessionStore, err := buildSessionStore(config.Session, gormDB)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session store: %w", err)
	}

	directory := authPostgres.NewDirectory(gormDB)
	userRepo := userPostgres.NewUserRepository(gormDB)
	cycleRepo := cyclePostgres.NewCycleRepository(gormDB)
	conversationRepo := conversationPostgres.NewConversationRepository(gormDB)

	sessionTTL := config.Session.EffectiveTTL()
	bcryptCost := config.Security.BCryptCost
	minPasswordLen := config.Security.MinPasswordLen()

	authService := auth.NewService(sessionStore, directory, sessionTTL, bcryptCost, minPasswordLen, lg)
	userService := user.NewService(userRepo, sessionStore, conversationRepo, bcryptCost, lg)
	cycleService := cycle.NewService(cycleRepo, conversationRepo, lg)
	conversationService := conversation.NewService(conversationRepo, userRepo, cycleService, lg)
	renderer := report.NewChromeRenderer(30 * time.Second)
	reportService := report.NewService(conversationService, userRepo, cycleService, renderer, lg)

	handlers := rest.Handlers{
		Auth:         auth.NewHandler(authService, sessionTTL, config.Session.CookieSecure),
		User:         user.NewHandler(userService, lg),
		Cycle:        cycle.NewHandler(cycleService, lg),
		Conversation: conversation.NewHandler(conversationService, lg),
		Report:       report.NewHandler(reportService, lg),
	}

	router := chi.NewRouter()
	authz := auth.NewAuthorization(lg)
	rest.RegisterAllRoutes(router, db.DB, handlers, authz, config.Server.AllowedOrigins, lg)

	return &Dependencies{
		Config: config,
		DB:     db,
		Router: router,
		Logger: lg,
	}, nil
}

func buildSessionStore(cfg internal.SessionConfig, gormDB *gorm.DB) (auth.SessionStore, error) {
	if cfg.Store == "redis" {
		return redisstore.New(cfg.RedisURL)
	}
	return authPostgres.NewSessionRepository(gormDB), nil
}

func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
