package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/ignatzorin/gig-escrow/internal/cache"
	"github.com/ignatzorin/gig-escrow/internal/config"
	"github.com/ignatzorin/gig-escrow/internal/db"
	"github.com/ignatzorin/gig-escrow/internal/goroutine"
	"github.com/ignatzorin/gig-escrow/internal/http/handlers"
	"github.com/ignatzorin/gig-escrow/internal/http/middleware"
	"github.com/ignatzorin/gig-escrow/internal/http/router"
	"github.com/ignatzorin/gig-escrow/internal/logger"
	"github.com/ignatzorin/gig-escrow/internal/repository"
	"github.com/ignatzorin/gig-escrow/internal/service"
	"github.com/ignatzorin/gig-escrow/internal/storage"
	"github.com/ignatzorin/gig-escrow/internal/ws"
)

var (
	// envFileFlag - путь к .env файлу.
	envFileFlag = &cli.StringFlag{
		Name:  "env-file",
		Usage: "Path to a .env file with configuration overrides",
		Value: ".env",
	}

	// logLevelFlag переопределяет LOG_LEVEL.
	logLevelFlag = &cli.StringFlag{
		Name:  "log-level",
		Usage: "Logging level (trace, debug, info, warn, error), overrides LOG_LEVEL",
	}

	// logFormatFlag задаёт формат логов.
	logFormatFlag = &cli.StringFlag{
		Name:  "log-format",
		Usage: "Log output format: json or text (text by default outside production)",
	}
)

func main() {
	app := &cli.App{
		Name:   "gig-escrow",
		Usage:  "freelance marketplace backend with escrow contracts and chat relay",
		Flags:  []cli.Flag{envFileFlag, logLevelFlag, logFormatFlag},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "apply migrations and start the HTTP server",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply pending database migrations and exit",
				Action: migrate,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Component("main").WithError(err).Error("сервис завершился с ошибкой")
		os.Exit(1)
	}
}

// bootstrap загружает конфигурацию и настраивает логгер.
func bootstrap(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.Context, c.String(envFileFlag.Name))
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if c.IsSet(logLevelFlag.Name) {
		level = c.String(logLevelFlag.Name)
	}
	format := c.String(logFormatFlag.Name)
	if format == "" {
		format = "json"
		if !cfg.IsProduction() {
			format = "text"
		}
	}
	logger.Init(level, format)
	return cfg, nil
}

func connectDB(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	return db.NewPostgres(ctx, cfg.DatabaseURL, db.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
	})
}

func migrate(c *cli.Context) error {
	cfg, err := bootstrap(c)
	if err != nil {
		return err
	}

	dbConn, err := connectDB(c.Context, cfg)
	if err != nil {
		return err
	}
	defer safeClose(dbConn)

	applied, err := db.RunMigrations(c.Context, dbConn, cfg.MigrationsPath)
	if err != nil {
		return err
	}
	logger.Component("main").WithField("applied", len(applied)).Info("миграции применены")
	return nil
}

func serve(c *cli.Context) error {
	cfg, err := bootstrap(c)
	if err != nil {
		return err
	}
	log := logger.Component("main")

	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbConn, err := connectDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer safeClose(dbConn)

	// Схема регистрируется до приёма запросов.
	if _, err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = cache.Connect(ctx, cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Timeout:  cfg.Redis.Timeout,
		})
		if err != nil {
			return err
		}
		defer redisClient.Close()
	}

	limiterStore, err := middleware.NewLimiterStore(redisClient)
	if err != nil {
		return err
	}

	deliverables, err := storage.NewDeliverableStorage(cfg.DeliverableStoragePath, router.DeliverablesPath, cfg.MaxUploadSizeMB)
	if err != nil {
		return err
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)

	// Репозитории.
	store := repository.NewStore(dbConn)
	userRepo := repository.NewUserRepository(dbConn)
	gigRepo := repository.NewGigRepository(dbConn)
	proposalRepo := repository.NewProposalRepository(dbConn)
	contractRepo := repository.NewContractRepository(dbConn)
	ledgerRepo := repository.NewLedgerRepository(dbConn)
	chatRepo := repository.NewChatRepository(dbConn)

	// Сервисы.
	authService := service.NewAuthService(userRepo, tokenManager)
	gigService := service.NewGigService(gigRepo)
	proposalService := service.NewProposalService(store, gigRepo, proposalRepo)
	escrowService := service.NewEscrowService(store)
	contractService := service.NewContractService(store, contractRepo, ledgerRepo, deliverables)
	chatService := service.NewChatService(contractRepo, chatRepo)
	walletService := service.NewWalletService(userRepo, ledgerRepo)

	// Вебсокеты.
	hub := ws.NewHub(chatService)
	goroutine.SafeGoWithContext(ctx, "ws-hub", hub.Run)

	proposalService.SetHub(hub)
	escrowService.SetHub(hub)
	contractService.SetHub(hub)

	engine := router.SetupRouter(cfg, router.Handlers{
		Auth:     handlers.NewAuthHandler(authService),
		Gig:      handlers.NewGigHandler(gigService),
		Proposal: handlers.NewProposalHandler(proposalService, escrowService),
		Contract: handlers.NewContractHandler(contractService, escrowService),
		Chat:     handlers.NewChatHandler(chatService),
		Wallet:   handlers.NewWalletHandler(walletService),
		Health:   handlers.NewHealthHandler(dbConn, redisClient),
		WS:       handlers.NewWSHandler(hub, tokenManager, cfg.AllowedOrigins),
	}, tokenManager, limiterStore)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	goroutine.SafeGo("http-shutdown", func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("ошибка остановки http сервера")
		}
	})

	log.WithFields(logrus.Fields{
		"port":  cfg.HTTPPort,
		"env":   cfg.Env,
		"redis": redisClient != nil,
	}).Info("HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http сервер: %w", err)
	}
	return nil
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		logger.Component("main").WithError(err).Warn("ошибка закрытия базы")
	}
}
