package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/chimehq/roi-capture/internal/application"
	appleads "github.com/chimehq/roi-capture/internal/application/leads"
	"github.com/chimehq/roi-capture/internal/config"
	"github.com/chimehq/roi-capture/internal/domain/crm"
	domain "github.com/chimehq/roi-capture/internal/domain/leads"
	"github.com/chimehq/roi-capture/internal/domain/mail"
	rediscache "github.com/chimehq/roi-capture/internal/infra/cache"
	"github.com/chimehq/roi-capture/internal/infra/crm/hubspot"
	mysqlp "github.com/chimehq/roi-capture/internal/infra/db/mysql"
	postgresp "github.com/chimehq/roi-capture/internal/infra/db/postgres"
	"github.com/chimehq/roi-capture/internal/infra/httpserver"
	"github.com/chimehq/roi-capture/internal/infra/mailer"
	"github.com/chimehq/roi-capture/internal/infra/queue"
	minioStore "github.com/chimehq/roi-capture/internal/infra/storage"
	"github.com/chimehq/roi-capture/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// connect database (mysql by default)
	var db *sql.DB
	var repo domain.Repository
	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			logger.Fatal("postgres connect error", zap.Error(err))
		}
		repo = postgresp.NewSubmissionRepository(db)
	case "mysql", "":
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			logger.Fatal("mysql connect error", zap.Error(err))
		}
		repo = mysqlp.NewSubmissionRepository(db)
	default:
		logger.Fatal("unknown database driver", zap.String("driver", cfg.Database.Driver))
	}
	defer db.Close()

	healthCheckers := map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	}

	// optional status cache
	var statusCache domain.StatusCache
	if cfg.Redis.Enabled {
		rc, err := rediscache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("redis connect error", zap.Error(err))
		}
		defer rc.Close()
		statusCache = rc
		healthCheckers["redis"] = middleware.CheckerFunc(rc.Ping)
	}

	// optional payload archive
	var archive domain.Archiver
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			logger.Fatal("minio init error", zap.Error(err))
		}
		archive = store
	}

	// optional CRM sync
	var crmClient crm.Client
	if cfg.HubSpot.Enabled {
		hc, err := hubspot.NewClient(cfg.HubSpot.APIKey, logger)
		if err != nil {
			logger.Fatal("hubspot init error", zap.Error(err))
		}
		crmClient = hc
	}

	// optional email delivery
	var mailQueue mail.Queue
	if cfg.SMTP.Enabled {
		sender, err := mailer.NewSMTPSender(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Username,
			cfg.SMTP.Password,
			cfg.SMTP.FromEmail,
			cfg.SMTP.FromName,
		)
		if err != nil {
			logger.Fatal("smtp init error", zap.Error(err))
		}
		q := queue.New(sender, logger)
		defer q.Stop()
		mailQueue = q
	}

	svc := &appleads.Service{
		Repo:          repo,
		CRM:           crmClient,
		Mail:          mailQueue,
		Archive:       archive,
		Cache:         statusCache,
		Clock:         application.SystemClock{},
		Log:           logger,
		InternalEmail: cfg.SMTP.InternalEmail,
	}

	handler := httpserver.NewRouter(svc, logger, httpserver.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		InternalKeys:   cfg.Auth.InternalKeys,
		RateCapacity:   cfg.RateLimit.Capacity,
		RateRefill:     cfg.RateLimit.RefillRate,
		HealthCheckers: healthCheckers,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down server")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
