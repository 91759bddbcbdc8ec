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

	"github.com/sgdocumental/document-tracking/internal"
	"github.com/sgdocumental/document-tracking/internal/alert"
	alertPostgres "github.com/sgdocumental/document-tracking/internal/alert/postgres"
	"github.com/sgdocumental/document-tracking/internal/area"
	areaPostgres "github.com/sgdocumental/document-tracking/internal/area/postgres"
	"github.com/sgdocumental/document-tracking/internal/auth"
	authPostgres "github.com/sgdocumental/document-tracking/internal/auth/postgres"
	"github.com/sgdocumental/document-tracking/internal/core/events"
	"github.com/sgdocumental/document-tracking/internal/doctype"
	doctypePostgres "github.com/sgdocumental/document-tracking/internal/doctype/postgres"
	"github.com/sgdocumental/document-tracking/internal/document"
	documentPostgres "github.com/sgdocumental/document-tracking/internal/document/postgres"
	"github.com/sgdocumental/document-tracking/internal/history"
	historyPostgres "github.com/sgdocumental/document-tracking/internal/history/postgres"
	"github.com/sgdocumental/document-tracking/internal/movement"
	movementPostgres "github.com/sgdocumental/document-tracking/internal/movement/postgres"
	"github.com/sgdocumental/document-tracking/internal/permission"
	permissionPostgres "github.com/sgdocumental/document-tracking/internal/permission/postgres"
	"github.com/sgdocumental/document-tracking/internal/transport"
	"github.com/sgdocumental/document-tracking/internal/transport/rest"
	"github.com/sgdocumental/document-tracking/internal/user"
	userPostgres "github.com/sgdocumental/document-tracking/internal/user/postgres"
	"github.com/sgdocumental/document-tracking/pkg/cache"
	"github.com/sgdocumental/document-tracking/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Cache  *cache.Cache
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
	slog.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
		if deps.Cache != nil {
			if err := deps.Cache.Close(); err != nil {
				slog.Error("cache close error", "error", err)
			}
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("server stopped")
}

func initializeDependencies() (*dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	log := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	var cacheClient *cache.Cache
	if config.Cache.Enabled {
		cacheClient = cache.New(cache.Config{
			Addr:     config.Cache.Addr,
			Password: config.Cache.Password,
			DB:       config.Cache.DB,
		}, log)

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := cacheClient.Ping(ctx); err != nil {
			log.Warn("redis unavailable, continuing without permission cache", "error", err)
			cacheClient = nil
		}
		cancel()
	}

	router := chi.NewRouter()
	setupRoutes(router, db, gormDB, cacheClient, config, log)

	return &dependencies{
		Config: config,
		DB:     db,
		Cache:  cacheClient,
		Router: router,
		Logger: log,
	}, nil
}

func setupRoutes(router *chi.Mux, db *sqlx.DB, gormDB *gorm.DB, cacheClient *cache.Cache, config *internal.Config, log *slog.Logger) {
	baseHandler := transport.NewBaseHandler(log)
	bus := events.NewEventBus(log)

	areaRepo := areaPostgres.NewAreaRepository(gormDB)
	tipoRepo := doctypePostgres.NewTipoRepository(gormDB)
	historyRepo := historyPostgres.NewHistoryRepository(gormDB)
	documentRepo := documentPostgres.NewDocumentRepository(gormDB)
	movementRepo := movementPostgres.NewMovementRepository(gormDB)
	permissionRepo := permissionPostgres.NewPermissionRepository(gormDB)
	userRepo := userPostgres.NewUserRepository(gormDB)
	authRepo := authPostgres.NewRepository(gormDB)
	alertRepo := alertPostgres.NewAlertRepository(gormDB)

	areaService := area.NewService(areaRepo, log)
	tipoService := doctype.NewService(tipoRepo, log)
	historyService := history.NewService(historyRepo, log)
	documentService := document.NewService(documentRepo, areaRepo, tipoRepo, historyService, log)
	movementService := movement.NewService(movementRepo, areaRepo, bus, log)
	userService := user.NewService(userRepo, log)
	alertService := alert.NewService(alertRepo, areaRepo, log)
	alertService.Subscribe(bus)

	var grantCache permission.GrantCache
	if cacheClient != nil {
		grantCache = cacheClient
	}
	permissionService := permission.NewService(permissionRepo, grantCache, config.Cache.TTL, log)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authRepo, tokenGen,
		config.Security.MaxLoginAttempts, config.Security.LockoutDuration, log)

	handlers := rest.Handlers{
		Auth:       auth.NewHandler(baseHandler, authService),
		Document:   document.NewHandler(baseHandler, documentService),
		Movement:   movement.NewHandler(baseHandler, movementService),
		Area:       area.NewHandler(baseHandler, areaService),
		DocType:    doctype.NewHandler(baseHandler, tipoService),
		User:       user.NewHandler(baseHandler, userService),
		Permission: permission.NewHandler(baseHandler, permissionService),
		Alert:      alert.NewHandler(baseHandler, alertService),
	}

	rest.RegisterAllRoutes(router, db.DB, handlers, log)
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

// initGorm layers the ORM over the already opened pgx connection pool so
// both share one pool and one set of limits.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
}
