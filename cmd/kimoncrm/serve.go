package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudzeus/kimoncrm-sub005/common/database"
	commonmqtt "github.com/cloudzeus/kimoncrm-sub005/common/mqtt"
	commonredis "github.com/cloudzeus/kimoncrm-sub005/common/redis"
	"github.com/cloudzeus/kimoncrm-sub005/internal/cdn"
	"github.com/cloudzeus/kimoncrm-sub005/internal/config"
	"github.com/cloudzeus/kimoncrm-sub005/internal/events"
	"github.com/cloudzeus/kimoncrm-sub005/internal/graph"
	httpapi "github.com/cloudzeus/kimoncrm-sub005/internal/http"
	"github.com/cloudzeus/kimoncrm-sub005/internal/migrations"
	"github.com/cloudzeus/kimoncrm-sub005/internal/repository"
	"github.com/cloudzeus/kimoncrm-sub005/internal/service"
	"github.com/cloudzeus/kimoncrm-sub005/internal/store"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "Apply pending migrations before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		return err
	}

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer database.Close(db)

	if migrateOnStart {
		n, err := migrations.Up(db)
		if err != nil {
			return err
		}
		logger.Info("Migrations applied", zap.Int("count", n))
	}

	var redisClient *redis.Client
	var kv store.KV
	if cfg.Redis.Enabled {
		redisClient = commonredis.NewRedisClient(&cfg.Redis.RedisConfig)
		defer commonredis.Close(redisClient)
		kv = store.NewRedisKV(redisClient)
	}

	publisher, closePublisher, err := newPublisher(cfg, redisClient, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	var files service.FileStore
	if cfg.Bunny.Enabled {
		files = cdn.NewClient(cfg.Bunny, logger)
	} else {
		logger.Warn("Bunny storage disabled; uploads and document publishing will answer 503")
	}
	var mailer service.Mailer
	if cfg.Graph.Enabled {
		mailer = graph.NewClient(cfg.Graph, logger)
	} else {
		logger.Warn("Microsoft Graph disabled; mail endpoints will answer 503")
	}

	usersRepo := repository.NewPostgresUsersRepository(db)
	customersRepo := repository.NewPostgresCustomersRepository(db)
	surveysRepo := repository.NewPostgresSiteSurveysRepository(db)
	productsRepo := repository.NewPostgresProductsRepository(db)
	documentsRepo := repository.NewPostgresDocumentsRepository(db)
	leadsRepo := repository.NewPostgresLeadsRepository(db)

	auth := service.NewAuthService(usersRepo, cfg.Auth, logger)
	cabling := service.NewCablingService(surveysRepo, repository.NewPostgresCablingRepository(db), productsRepo, publisher, logger)

	router := httpapi.NewRouter(auth, cfg.HTTP.CORSOrigins, logger)
	b := httpapi.NewBase(logger, 0)
	router.RegisterHealthRoutes(httpapi.NewHealthHandler(b, readinessChecks(db, redisClient)))
	router.RegisterAuthRoutes(httpapi.NewAuthHandler(b, auth, cfg.Auth.SecureCookie))
	router.RegisterUserRoutes(httpapi.NewUserHandler(b, service.NewUserService(usersRepo, logger)))
	router.RegisterCustomerRoutes(httpapi.NewCustomerHandler(b, service.NewCustomerService(customersRepo, logger)))
	router.RegisterCatalogRoutes(httpapi.NewCatalogHandler(b,
		service.NewBrandService(repository.NewPostgresBrandsRepository(db), logger),
		service.NewCategoryService(repository.NewPostgresCategoriesRepository(db), logger),
		service.NewProductService(productsRepo, logger),
	))
	router.RegisterMenuRoutes(httpapi.NewMenuHandler(b,
		service.NewMenuService(repository.NewPostgresMenuRepository(db), kv, cfg.Redis.MenuCacheTTL, logger)))
	router.RegisterLeadRoutes(httpapi.NewLeadHandler(b,
		service.NewLeadService(leadsRepo, surveysRepo, publisher, logger)))
	router.RegisterSiteSurveyRoutes(httpapi.NewSiteSurveyHandler(b,
		service.NewSiteSurveyService(surveysRepo, publisher, logger),
		cabling,
		service.NewDocumentService(surveysRepo, customersRepo, documentsRepo, cabling, files, cfg.Company, publisher, logger),
	))
	router.RegisterUploadRoutes(httpapi.NewUploadHandler(b,
		service.NewUploadService(documentsRepo, files, cfg.HTTP.MaxUploadBytes, logger)))
	router.RegisterEmailRoutes(httpapi.NewEmailHandler(b,
		service.NewEmailService(repository.NewPostgresEmailsRepository(db), leadsRepo, customersRepo, mailer, cfg.Graph.SenderMail, publisher, logger)))

	srv := service.NewServer(cfg.HTTP, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-sigCh:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
	case serveErr = <-errCh:
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
	return serveErr
}

// newPublisher picks the event driver. The returned close func is never nil.
func newPublisher(cfg *config.Config, redisClient *redis.Client, logger *zap.Logger) (events.Publisher, func(), error) {
	noop := func() {}
	switch cfg.Events.Driver {
	case "", "none":
		return events.Nop{}, noop, nil
	case "redis":
		if redisClient == nil {
			return nil, noop, errors.New("events driver redis needs redis enabled")
		}
		p := events.NewRedisStreamPublisher(redisClient, cfg.Events.Stream, cfg.Events.StreamMaxLen)
		return events.NewSafePublisher(p, logger), noop, nil
	case "mqtt":
		client, err := commonmqtt.NewClient(&cfg.Events.MQTT, logger)
		if err != nil {
			return nil, noop, fmt.Errorf("connect mqtt: %w", err)
		}
		p := events.NewMQTTPublisher(client, cfg.Events.TopicPrefix)
		return events.NewSafePublisher(p, logger), client.Disconnect, nil
	default:
		return nil, noop, fmt.Errorf("unknown events driver %q", cfg.Events.Driver)
	}
}

func readinessChecks(db *sql.DB, redisClient *redis.Client) map[string]httpapi.Check {
	checks := map[string]httpapi.Check{
		"postgres": db.PingContext,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return commonredis.Ping(ctx, redisClient)
		}
	}
	return checks
}
