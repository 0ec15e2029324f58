package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vorve-checkout-api/config"
	"vorve-checkout-api/database"
	"vorve-checkout-api/handlers"
	"vorve-checkout-api/logger"
	"vorve-checkout-api/middleware"
	"vorve-checkout-api/services/email"
	"vorve-checkout-api/services/fulfillment"
	"vorve-checkout-api/services/paddle"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
			if err != nil {
				return fmt.Errorf("failed to build logger: %w", err)
			}
			defer log.Sync()

			return serve(cfg, log)
		},
	}
}

func serve(cfg *config.Config, log *zap.Logger) error {
	startTime := time.Now()

	for _, w := range cfg.Warnings {
		log.Warn("configuration warning", zap.String("detail", w))
	}
	for _, c := range cfg.Validate() {
		if !c.OK {
			log.Warn("configuration check failed", zap.String("check", c.Name), zap.String("detail", c.Detail))
		}
	}

	// Redis is optional. Without it the form endpoints are not rate limited
	// and webhook deduplication stays off.
	var redisConn *database.Connection
	if cfg.Redis.URL != "" {
		conn, err := database.NewConnection(cfg.Redis.URL, log)
		if err != nil {
			log.Error("redis unavailable, continuing without rate limiting and dedup", zap.Error(err))
		} else {
			redisConn = conn
			defer redisConn.Close()
			log.Info("successfully connected to redis")
		}
	}

	paddleClient := paddle.NewLazyClient(cfg.Paddle.APIKey, cfg.Paddle.Environment, log)
	mailClient := email.NewLazyClient(cfg.Mail.APIKey, log)

	sender := email.NewSender(mailClient, email.SenderConfig{
		Domain:    cfg.Mail.Domain,
		BrandName: cfg.Mail.BrandName,
	}, log)

	var ledger fulfillment.Ledger
	if cfg.Webhook.DedupEnabled {
		if redisConn != nil {
			ledger = fulfillment.NewRedisLedger(redisConn.Client(), cfg.Webhook.DedupTTL)
			log.Info("webhook deduplication enabled", zap.Duration("ttl", cfg.Webhook.DedupTTL))
		} else {
			log.Warn("WEBHOOK_DEDUP_ENABLED is set but redis is unavailable, deduplication disabled")
		}
	}

	dispatcher := fulfillment.NewDispatcher(paddleClient, sender, ledger, fulfillment.Config{
		SalesAddress: cfg.Mail.SalesAddress,
		PublicDomain: cfg.Server.PublicDomain,
	}, log)

	routes := handlers.Routes{
		Webhook: handlers.NewWebhookHandler(
			paddle.NewVerifier(cfg.Paddle.WebhookSecret, cfg.Paddle.SignatureTolerance),
			dispatcher,
			log,
		),
		Checkout: handlers.NewCheckoutHandler(paddle.OverlaySettings{
			PriceID:      cfg.Paddle.PriceID,
			Environment:  cfg.Paddle.Environment,
			ClientToken:  cfg.Paddle.ClientToken,
			PublicDomain: cfg.Server.PublicDomain,
		}, log),
		Contact: handlers.NewContactHandler(sender, handlers.ContactConfig{
			Inbox:     cfg.Mail.ContactInbox,
			HasAPIKey: mailClient.Configured(),
		}, log),
		Confirmation: handlers.NewConfirmationHandler(sender, log),
	}

	if redisConn != nil {
		limiter := middleware.NewRateLimiter(
			redisConn.Client(),
			middleware.DefaultRateLimitConfig(cfg.Redis.RateLimitRequests, cfg.Redis.RateLimitWindow),
			log,
		)
		routes.Limit = limiter.Limit
		routes.Health = handlers.NewHealthHandler(redisConn, startTime)
	} else {
		routes.Health = handlers.NewHealthHandler(nil, startTime)
	}

	router := handlers.NewRouter(routes,
		mux.MiddlewareFunc(middleware.CORS(cfg.Server.AllowOrigin)),
		mux.MiddlewareFunc(middleware.Logging(log)),
	)

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting",
			zap.String("port", cfg.Server.Port),
			zap.String("env", cfg.Server.Env),
			zap.String("paddle_environment", cfg.Paddle.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}

	log.Info("shutdown signal received, gracefully shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		return err
	}

	log.Info("server exited properly")
	return nil
}
