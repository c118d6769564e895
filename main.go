// main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"go-storefront/cart"
	"go-storefront/controllers"
	"go-storefront/models"
	"go-storefront/routes"
	"go-storefront/storage"
	"go-storefront/utils"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, foundEnv, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := utils.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	if !foundEnv {
		logger.Info("No .env file found. Proceeding with environment variables.")
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg utils.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := utils.ConnectDB(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	db := client.Database(cfg.Database)

	var mailer utils.Mailer = utils.LogMailer{Logger: logger}
	if emailService, err := utils.NewEmailService(cfg.PostmarkToken, cfg.EmailSender); err == nil {
		mailer = emailService
	} else {
		logger.Warn("e-mail disabled", zap.Error(err))
	}

	tokens := utils.NewTokenManager(cfg.JWTSecret)
	sessions := cart.NewSessions(storage.NewMongoMirror(db),
		cart.WithTaxRate(cfg.TaxRate),
		cart.WithLogger(logger.Named("cart")),
	)

	docs, err := controllers.NewDocsController()
	if err != nil {
		return err
	}
	products := controllers.NewProductController(db)
	handlers := routes.Handlers{
		Users:        controllers.NewUserController(db, tokens, mailer, cfg.BaseURL, logger),
		Products:     products,
		Brands:       controllers.NewCatalogController[models.Brand](db, "brands", "brand"),
		Categories:   controllers.NewCatalogController[models.Category](db, "categories", "category"),
		Certificates: controllers.NewCatalogController[models.Certificate](db, "certificates", "certificate"),
		Contacts:     controllers.NewContactController(db, mailer, cfg.AdminEmail, logger),
		Settings:     controllers.NewSettingsController(db),
		Cart:         controllers.NewCartController(sessions, products),
		Orders:       controllers.NewOrderController(storage.NewOrderRepository(db), sessions, mailer, logger),
		Docs:         docs,
	}

	router := mux.NewRouter()
	routes.RegisterRoutes(router, handlers, tokens, logger)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sessions.RunEviction(gctx, cfg.CartIdleTime/2, cfg.CartIdleTime, logger.Named("cart"))
		return nil
	})
	g.Go(func() error {
		logger.Info("server is running", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		if cerr := sessions.Close(shutdownCtx); cerr != nil {
			logger.Error("failed to flush carts", zap.Error(cerr))
		}
		if derr := client.Disconnect(shutdownCtx); derr != nil {
			logger.Error("failed to disconnect from mongodb", zap.Error(derr))
		}
		return err
	})
	return g.Wait()
}
