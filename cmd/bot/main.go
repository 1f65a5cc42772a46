package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"balneario/internal/api"
	"balneario/internal/availability"
	"balneario/internal/booking"
	"balneario/internal/bot"
	"balneario/internal/config"
	"balneario/internal/database"
	"balneario/internal/events"
	"balneario/internal/export"
	"balneario/internal/logging"
	"balneario/internal/metrics"
	"balneario/internal/models"
	"balneario/internal/pricing"
	"balneario/internal/repository"
	"balneario/internal/session"
	"balneario/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	db, err := database.NewDB(cfg.Cache.Path)
	if err != nil {
		logger.Error().Err(err).Msg("cache database init failed")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, stateRepo := initStateRepository(ctx, cfg, &logger)

	sessionManager := session.NewManager(stateRepo, &logger)

	eventBus := events.NewEventBus()
	backend := api.New(cfg.Backend, sessionManager, &logger)
	backend.SetEventBus(eventBus)

	syncWorker := worker.NewSyncWorker(db, backend, redisClient, worker.RetryPolicy{}, &logger)
	go syncWorker.Start(ctx)

	subscribeReservationEvents(ctx, eventBus, db, backend, &logger)
	subscribeSessionEvents(eventBus, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		go serveMetrics(cfg.Monitoring.PrometheusPort, &logger)
	}

	return startBot(ctx, cfg, stateRepo, sessionManager, backend, syncWorker, eventBus, db, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "bot-main").Logger()

	return cfg, logger, closer, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if cfg == nil {
		return os.ErrInvalid
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Cache.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("cache directory create failed")
		return err
	}
	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("exports directory create failed")
		return err
	}
	return nil
}

func initStateRepository(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, repository.StateRepository) {
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if errPing := repository.Ping(ctx, redisClient); errPing != nil {
			logger.Warn().Err(errPing).Msg("redis unavailable, memory fallback will carry state")
		}
	}

	ttl := time.Duration(models.DefaultSessionTTL) * time.Second
	primary := repository.NewRedisStateRepository(redisClient, ttl)
	fallback := repository.NewMemoryStateRepository(ttl)
	return redisClient, repository.NewFailoverStateRepository(primary, fallback, logger)
}

func serveMetrics(port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info().Str("addr", addr).Msg("metrics server listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

func startBot(
	ctx context.Context,
	cfg *config.Config,
	stateRepo repository.StateRepository,
	sessionManager *session.Manager,
	backend *api.Client,
	syncWorker *worker.SyncWorker,
	eventBus *events.EventBus,
	db *database.DB,
	logger *zerolog.Logger,
) error {
	if cfg.Telegram.BotToken == "" || cfg.Telegram.BotToken == "YOUR_BOT_TOKEN_HERE" {
		logger.Error().Msg("telegram bot_token is not set in config.yaml")
		return os.ErrInvalid
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Error().Err(err).Msg("BotAPI init failed")
		return err
	}
	botAPI.Debug = cfg.Telegram.Debug

	telegramBot, err := bot.NewBot(
		botAPI, cfg, stateRepo, sessionManager, backend,
		pricing.NewEngine(cfg.Pricing, cfg.Venue, cfg.ServiceCatalog()),
		availability.NewChecker(backend, cfg.Availability, cfg.Venue, logger),
		booking.NewValidator(cfg.Venue),
		syncWorker, eventBus,
		export.New(cfg.Exports, logger),
		logger,
	)
	if err != nil {
		logger.Error().Err(err).Msg("bot init failed")
		return err
	}

	logger.Info().Msg("bot started")
	telegramBot.Start(ctx)

	logger.Info().Msg("shutdown complete")
	return nil
}

// subscribeReservationEvents keeps the local reservation cache warm: every
// reservation mutation triggers a snapshot refresh, so exports and offline
// reads survive a backend outage.
func subscribeReservationEvents(
	ctx context.Context,
	bus *events.EventBus,
	db *database.DB,
	backend *api.Client,
	logger *zerolog.Logger,
) {
	if bus == nil || db == nil || backend == nil {
		return
	}

	refresh := func(ev *events.Event) error {
		var payload events.ReservationEventPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}

		reservations, err := backend.Reservations(ctx)
		if err != nil {
			logger.Warn().Err(err).Int64("reservation_id", payload.ReservationID).Msg("event bus: snapshot fetch failed")
			return nil
		}

		if err := db.ReplaceReservations(ctx, reservations); err != nil {
			logger.Error().Err(err).Msg("event bus: cache refresh failed")
		}
		return nil
	}

	bus.Subscribe(events.EventReservationCreated, refresh)
	bus.Subscribe(events.EventReservationConfirmed, refresh)
	bus.Subscribe(events.EventReservationCancelled, refresh)
	bus.Subscribe(events.EventReservationCompleted, refresh)
}

func subscribeSessionEvents(bus *events.EventBus, logger *zerolog.Logger) {
	bus.Subscribe(events.EventSessionExpired, func(ev *events.Event) error {
		var payload events.SessionEventPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}
		logger.Warn().
			Str("request_id", payload.RequestID).
			Str("path", payload.Path).
			Msg("session expired against the backend")
		return nil
	})
}
