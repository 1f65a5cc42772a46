// Package bot is the Telegram front end: login, the reservation and
// ticket wizards, staff tooling. All business rules live in the pricing,
// booking and availability packages; the bot only renders and routes.
package bot

import (
	"context"
	"os"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"balneario/internal/api"
	"balneario/internal/availability"
	"balneario/internal/booking"
	"balneario/internal/config"
	"balneario/internal/events"
	"balneario/internal/export"
	"balneario/internal/metrics"
	"balneario/internal/pricing"
	"balneario/internal/repository"
	"balneario/internal/session"
	"balneario/internal/worker"
)

// TelegramAPI is the slice of tgbotapi the bot uses, extracted so tests
// can substitute a recorder.
type TelegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(u tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Bot struct {
	tg           TelegramAPI
	config       *config.Config
	state        repository.StateRepository
	session      *session.Manager
	backend      *api.Client
	pricing      *pricing.Engine
	availability *availability.Checker
	validator    *booking.Validator
	syncWorker   *worker.SyncWorker
	eventBus     *events.EventBus
	exporter     *export.Exporter
	logger       *zerolog.Logger
}

func NewBot(
	tg TelegramAPI,
	cfg *config.Config,
	state repository.StateRepository,
	sessionManager *session.Manager,
	backend *api.Client,
	pricingEngine *pricing.Engine,
	checker *availability.Checker,
	validator *booking.Validator,
	syncWorker *worker.SyncWorker,
	eventBus *events.EventBus,
	exporter *export.Exporter,
	logger *zerolog.Logger,
) (*Bot, error) {
	if eventBus == nil {
		eventBus = events.NewEventBus()
	}

	if logger == nil {
		l := zerolog.New(os.Stdout).With().Timestamp().Logger()
		logger = &l
	}

	return &Bot{
		tg:           tg,
		config:       cfg,
		state:        state,
		session:      sessionManager,
		backend:      backend,
		pricing:      pricingEngine,
		availability: checker,
		validator:    validator,
		syncWorker:   syncWorker,
		eventBus:     eventBus,
		exporter:     exporter,
		logger:       logger,
	}, nil
}

// Wizard steps persisted in chat state.
const (
	StateMainMenu = "main_menu"

	StateLoginEmail    = "login_email"
	StateLoginPassword = "login_password"

	StateForgotEmail    = "forgot_email"
	StateForgotToken    = "forgot_token"
	StateForgotPassword = "forgot_password"

	StateRegisterName     = "register_name"
	StateRegisterEmail    = "register_email"
	StateRegisterDocument = "register_document"
	StateRegisterPassword = "register_password"

	StateReserveKind      = "reserve_kind"
	StateReserveDateStart = "reserve_date_start"
	StateReserveDateEnd   = "reserve_date_end"
	StateReserveSchedule  = "reserve_schedule"
	StateReservePeriod    = "reserve_period"
	StateReserveHeadcount = "reserve_headcount"
	StateReserveServices  = "reserve_services"
	StateReserveConfirm   = "reserve_confirm"

	StateTicketDate      = "ticket_date"
	StateTicketSchedule  = "ticket_schedule"
	StateTicketPeriod    = "ticket_period"
	StateTicketHeadcount = "ticket_headcount"
	StateTicketConfirm   = "ticket_confirm"

	StateWalkInName      = "walkin_name"
	StateWalkInDocument  = "walkin_document"
	StateWalkInPhone     = "walkin_phone"
	StateWalkInHeadcount = "walkin_headcount"
	StateWalkInConfirm   = "walkin_confirm"

	StateShiftStaff = "shift_staff"
	StateShiftDate  = "shift_date"
)

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.tg.GetUpdatesChan(u)

	b.logger.Info().Msg("bot update loop started")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("bot stopping")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.processUpdate(ctx, update)
		}
	}
}

func (b *Bot) processUpdate(ctx context.Context, update tgbotapi.Update) {
	updateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	requestID := uuid.New().String()
	l := b.logger.With().Str("request_id", requestID).Logger()
	updateCtx = l.WithContext(updateCtx)

	b.withRecovery(func() {
		var chatID int64
		switch {
		case update.Message != nil:
			chatID = update.Message.Chat.ID
			metrics.IncBotUpdate("message")
		case update.CallbackQuery != nil:
			chatID = update.CallbackQuery.Message.Chat.ID
			metrics.IncBotUpdate("callback")
		default:
			return
		}

		allowed, err := b.state.CheckRateLimit(updateCtx, chatID,
			b.config.Bot.RateLimitMessages,
			time.Duration(b.config.Bot.RateLimitWindow)*time.Second)
		if err != nil {
			l.Error().Err(err).Int64("chat_id", chatID).Msg("rate limit check failed")
		} else if !allowed {
			l.Warn().Int64("chat_id", chatID).Msg("rate limit exceeded")
			if update.Message != nil {
				b.sendMessage(chatID, "⚠️ Estás enviando mensajes demasiado rápido. Espera un momento.")
			}
			return
		}

		if update.CallbackQuery != nil {
			b.handleCallbackQuery(updateCtx, update)
			return
		}

		b.handleMessage(updateCtx, update)
	})
}

func (b *Bot) withRecovery(handler func()) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().Interface("panic", r).Msg("recovered from panic in update handler")
		}
	}()
	handler()
}
