package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/obsidianatelier/storefront/internal/ai"
	"github.com/obsidianatelier/storefront/internal/checkout"
	"github.com/obsidianatelier/storefront/internal/config"
	"github.com/obsidianatelier/storefront/internal/db"
	"github.com/obsidianatelier/storefront/internal/events"
	"github.com/obsidianatelier/storefront/internal/httpserver"
	"github.com/obsidianatelier/storefront/internal/logging"
	"github.com/obsidianatelier/storefront/internal/mail"
	"github.com/obsidianatelier/storefront/internal/middleware/auth"
	loggingmw "github.com/obsidianatelier/storefront/internal/middleware/logging"
	"github.com/obsidianatelier/storefront/internal/repo"
	"github.com/obsidianatelier/storefront/internal/search"
	"github.com/obsidianatelier/storefront/internal/service"
	"github.com/obsidianatelier/storefront/internal/storage"
)

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	ctx := logging.IntoContext(context.Background(), logger)

	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db_open_error", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(gdb); err != nil {
		logger.Error("db_migrate_error", "error", err)
		os.Exit(1)
	}

	store, err := storage.NewS3Store(ctx, cfg.AWSRegion, cfg.S3Bucket)
	if err != nil {
		logger.Error("s3_init_error", "error", err)
		os.Exit(1)
	}

	var indexer *search.ESIndex
	if cfg.ESURL != "" {
		esClient, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			logger.Error("es_init_error", "error", err)
			os.Exit(1)
		}
		indexer = &search.ESIndex{ES: esClient, Index: cfg.ESIndex}
	} else {
		logger.Warn("es_disabled", "reason", "ES_URL is not set")
	}

	var producer *events.KafkaProducer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewKafkaProducer(cfg.KafkaBrokers)
		defer producer.Close()
	} else {
		logger.Warn("kafka_disabled", "reason", "KAFKA_BROKERS is not set")
	}

	r := &repo.GormRepo{DB: gdb}

	catalogSvc := &service.CatalogService{Repo: r}
	if indexer != nil {
		catalogSvc.Indexer = indexer
	}
	if producer != nil {
		catalogSvc.Producer = producer
	}

	cartSvc := &service.CartService{Repo: r}

	tryOnSvc := &service.TryOnService{
		Repo:       r,
		Store:      store,
		Generator:  ai.NewGeminiGenerator(cfg.GeminiAPIKey),
		DailyLimit: cfg.TryOnDailyLimit,
	}
	if producer != nil {
		tryOnSvc.Producer = producer
	}

	orderSvc := &service.OrderService{Repo: r, Cart: cartSvc}
	if producer != nil {
		orderSvc.Producer = producer
	}

	authSvc := &service.AuthService{
		Repo: r,
		Mailer: &mail.SendGridMailer{
			APIKey:   cfg.SendGridAPIKey,
			FromName: cfg.MailFromName,
			FromAddr: cfg.MailFromAddr,
		},
		JWTSecret:   cfg.JWTSecret,
		AdminEmails: cfg.AdminEmails,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORS())
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		Products: &httpserver.ProductHTTP{Svc: catalogSvc, Store: store},
		Cart:     &httpserver.CartHTTP{Svc: cartSvc},
		TryOns:   &httpserver.TryOnHTTP{Svc: tryOnSvc, Store: store},
		Orders:   &httpserver.OrderHTTP{Svc: orderSvc},
		Checkout: &httpserver.CheckoutHTTP{
			Checkout: checkout.NewClient(cfg.CheckoutAPIURL, cfg.CheckoutAPIKey, cfg.ReturnDomain),
			Catalog:  catalogSvc,
			Cart:     cartSvc,
			Orders:   orderSvc,
		},
		Auth:    &httpserver.AuthHTTP{Svc: authSvc},
		Search:  &httpserver.SearchHTTP{Index: indexer},
		Uploads: &httpserver.UploadHTTP{Store: store},
		Guard:   auth.New(cfg.JWTSecret),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("server_started", "port", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server_error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	logger.Info("server_stopped")
}
