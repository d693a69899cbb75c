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
	"github.com/navalha-app/navalha/services/agenda-service/internal/consumer"
	"github.com/navalha-app/navalha/services/agenda-service/internal/handlers"
	"github.com/navalha-app/navalha/services/agenda-service/internal/inbox"
	"github.com/navalha-app/navalha/services/agenda-service/internal/outbox"
	"github.com/navalha-app/navalha/services/agenda-service/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	service := config.String("SERVICE_NAME", "agenda-service")
	port, err := config.Port("PORT", "8081")
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

	repo := storage.NewAgendaRepository(pool)
	outboxRepo := outbox.NewRepository(pool)

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: config.Seconds("OUTBOX_POLL_SECONDS", 2*time.Second),
		BatchSize: config.Int("OUTBOX_BATCH_SIZE", 50),
	})
	go outboxPublisher.Run(ctx)

	if brokers := config.String("KAFKA_BROKERS", ""); brokers != "" {
		inboxRepo := inbox.NewRepository(pool)
		chargeHandler := consumer.ChargeHandler(repo, logger)
		eventConsumer := consumer.New(logger, inboxRepo, consumer.Config{
			Brokers: brokers,
			GroupID: config.String("KAFKA_GROUP_ID", "agenda-service"),
		}, map[string]consumer.Handler{
			outbox.TopicBusinessProfileUpdated:      consumer.ProfileHandler(repo),
			outbox.TopicBusinessCatalogUpdated:      consumer.CatalogHandler(repo),
			outbox.TopicBusinessProfessionalUpdated: consumer.ProfessionalHandler(repo),
			outbox.TopicChargeConfirmed:             chargeHandler,
			outbox.TopicChargeExpired:               chargeHandler,
			outbox.TopicChargeFailed:                chargeHandler,
		})
		go eventConsumer.Run(ctx)
	}

	agendaHandler := handlers.NewAgendaHandler(repo, outboxRepo, logger,
		config.String("DEFAULT_TIMEZONE", "America/Sao_Paulo"),
		config.Int("DEFAULT_SLOT_BUFFER_MINUTES", 30),
	)

	// Public booking endpoints are rate limited per client IP. With Redis the
	// window is shared across replicas; without it each replica counts alone.
	publicLimit := config.Int("PUBLIC_RATE_LIMIT", 60)
	publicWindow := config.Seconds("PUBLIC_RATE_WINDOW_SECONDS", time.Minute)
	var limit httpx.Middleware
	if redisURL := config.String("REDIS_URL", ""); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL", "err", err)
			panic(err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		limit = httpx.NewRedisRateLimiter(rdb, publicLimit, publicWindow, service).Middleware(logger, true)
	} else {
		limit = httpx.NewRateLimiter(publicLimit, publicWindow).Middleware()
	}

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	mux.Handle("/api/v1/public/slots", httpx.Chain(http.HandlerFunc(agendaHandler.Slots), limit))
	mux.Handle("/api/v1/public/book", httpx.Chain(http.HandlerFunc(agendaHandler.Book), limit))
	mux.HandleFunc("/api/v1/appointments", agendaHandler.List)
	mux.HandleFunc("/api/v1/appointments/reschedule", agendaHandler.Reschedule)
	mux.HandleFunc("/api/v1/appointments/cancel", agendaHandler.Cancel)
	mux.HandleFunc("/api/v1/appointments/complete", agendaHandler.Complete)
	mux.HandleFunc("/api/v1/appointments/no-show", agendaHandler.NoShow)
	mux.HandleFunc("/api/v1/hours", agendaHandler.Hours)
	mux.HandleFunc("/api/v1/availability", agendaHandler.Availability)
	mux.HandleFunc("/api/v1/blocks", agendaHandler.Blocks)
	mux.HandleFunc("/api/v1/reports/revenue", agendaHandler.Revenue)

	httpHandler := httpx.Chain(mux,
		corsFromEnv(),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(1<<20),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "agenda")
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
