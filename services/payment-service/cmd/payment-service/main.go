package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/navalha-app/navalha/libs/config"
	"github.com/navalha-app/navalha/libs/db"
	"github.com/navalha-app/navalha/libs/httpx"
	"github.com/navalha-app/navalha/libs/kafkax"
	otelx "github.com/navalha-app/navalha/libs/otel"
	"github.com/navalha-app/navalha/libs/runtime"
	"github.com/navalha-app/navalha/services/payment-service/internal/confirm"
	"github.com/navalha-app/navalha/services/payment-service/internal/handlers"
	"github.com/navalha-app/navalha/services/payment-service/internal/outbox"
	"github.com/navalha-app/navalha/services/payment-service/internal/provider"
	"github.com/navalha-app/navalha/services/payment-service/internal/storage"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	service := config.String("SERVICE_NAME", "payment-service")
	port, err := config.Port("PORT", "8083")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}

	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	repo := storage.NewRepository(pool)
	outboxRepo := outbox.NewRepository(pool)

	publisher := outbox.NewPublisher(pool, logger,
		config.String("KAFKA_BROKERS", ""),
		config.Seconds("OUTBOX_POLL_SECONDS", 2*time.Second),
	)
	go publisher.Run(ctx)

	card := provider.NewStripe(
		config.String("STRIPE_SECRET_KEY", ""),
		config.String("STRIPE_SUCCESS_URL", ""),
		config.String("STRIPE_CANCEL_URL", ""),
	)
	pix := provider.NewAbacatePay(
		config.String("ABACATEPAY_BASE_URL", ""),
		config.String("ABACATEPAY_TOKEN", ""),
	)
	poller := confirm.New(
		config.Int("CONFIRM_ATTEMPTS", 5),
		config.Seconds("CONFIRM_DELAY_SECONDS", 2*time.Second),
		config.Seconds("CONFIRM_SETTLE_SECONDS", time.Second),
	)

	paymentHandler := handlers.New(repo, outboxRepo, logger, handlers.Config{
		Card:                          card,
		Pix:                           pix,
		Poller:                        poller,
		StripeWebhookSecret:           config.String("STRIPE_WEBHOOK_SECRET", ""),
		StripeWebhookToleranceSeconds: config.Int("STRIPE_WEBHOOK_TOLERANCE_SECONDS", 300),
	})

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	mux.HandleFunc("/api/v1/payments/checkout", paymentHandler.Checkout)
	mux.HandleFunc("/api/v1/payments/confirm", paymentHandler.Confirm)
	mux.HandleFunc("/api/v1/payments/status", paymentHandler.Status)
	mux.HandleFunc("/api/v1/payments/webhooks/stripe", paymentHandler.StripeWebhook)

	httpHandler := httpx.Chain(mux,
		corsFromEnv(),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(1<<20),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "payment")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

// corsFromEnv is a no-op until CORS_ALLOWED_ORIGINS is set, so server-to-
// server deployments pay nothing for it.
func corsFromEnv() httpx.Middleware {
	return httpx.WithCORS(httpx.CORSPolicy{
		AllowedOrigins:   splitList(config.String("CORS_ALLOWED_ORIGINS", "")),
		AllowedMethods:   splitList(config.String("CORS_ALLOWED_METHODS", "GET,POST,PUT,PATCH,DELETE,OPTIONS")),
		AllowedHeaders:   splitList(config.String("CORS_ALLOWED_HEADERS", "Content-Type,X-Request-Id")),
		AllowCredentials: config.Bool("CORS_ALLOW_CREDENTIALS", false),
		MaxAge:           config.Seconds("CORS_MAX_AGE_SECONDS", 10*time.Minute),
	})
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
