package bot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"balneario/internal/api"
	"balneario/internal/availability"
	"balneario/internal/booking"
	"balneario/internal/config"
	"balneario/internal/database"
	"balneario/internal/events"
	"balneario/internal/export"
	"balneario/internal/models"
	"balneario/internal/pricing"
	"balneario/internal/repository"
	"balneario/internal/session"
	"balneario/internal/worker"
)

type fakeTG struct {
	sent []tgbotapi.Chattable
}

func (f *fakeTG) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeTG) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeTG) GetUpdatesChan(u tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	ch := make(chan tgbotapi.Update)
	close(ch)
	return ch
}

func (f *fakeTG) StopReceivingUpdates() {}

// lastText returns the text of the last sent message, if any.
func (f *fakeTG) lastText() string {
	for i := len(f.sent) - 1; i >= 0; i-- {
		if msg, ok := f.sent[i].(tgbotapi.MessageConfig); ok {
			return msg.Text
		}
	}
	return ""
}

func (f *fakeTG) allTexts() []string {
	var texts []string
	for _, c := range f.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			texts = append(texts, msg.Text)
		}
	}
	return texts
}

func testConfig(baseURL string, exportPath string) *config.Config {
	return &config.Config{
		Backend: config.BackendConfig{
			BaseURL:        baseURL,
			TimeoutSeconds: 5,
			RateRPS:        1000,
			RateBurst:      100,
		},
		Pricing: config.PricingConfig{
			GeneralDay:       5000,
			GeneralNight:     10000,
			PrivateWeekday:   20000,
			PrivateWeekend:   25000,
			MinimumSurcharge: 100000,
		},
		Venue: config.VenueConfig{
			Capacity:          120,
			MinPrivateWeekday: 10,
			MinPrivateWeekend: 15,
			MinAdvanceDays:    1,
			MaxAdvanceDays:    90,
		},
		Availability: config.AvailabilityConfig{FailOpen: true},
		Bot: config.BotConfig{
			PaginationSize:    5,
			RateLimitMessages: 100,
			RateLimitWindow:   60,
		},
		Exports: config.ExportConfig{Path: exportPath},
		Services: []models.Service{
			{ID: models.ServiceKitchen, Name: "Cocina", DayRate: 25000},
			{ID: models.ServiceRoom, Name: "Cuarto", DayRate: 50000},
		},
	}
}

func newTestBot(t *testing.T, handler http.Handler) (*Bot, *fakeTG, *session.Manager) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := testConfig(server.URL, t.TempDir())
	logger := zerolog.Nop()

	repo := repository.NewMemoryStateRepository(time.Hour)
	manager := session.NewManager(repo, &logger)
	backend := api.New(cfg.Backend, manager, &logger)

	db, err := database.NewDB(filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tg := &fakeTG{}
	bot, err := NewBot(
		tg, cfg, repo, manager, backend,
		pricing.NewEngine(cfg.Pricing, cfg.Venue, cfg.ServiceCatalog()),
		availability.NewChecker(backend, cfg.Availability, cfg.Venue, &logger),
		booking.NewValidator(cfg.Venue),
		worker.NewSyncWorker(db, backend, nil, worker.RetryPolicy{}, &logger),
		nil,
		export.New(cfg.Exports, &logger),
		&logger,
	)
	require.NoError(t, err)
	return bot, tg, manager
}

func loginAs(t *testing.T, manager *session.Manager, role string) {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":     float64(7),
		"nombre": "Laura",
		"rol":    role,
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = manager.Establish(context.Background(), token)
	require.NoError(t, err)
}

// futureWeekday picks a Monday-to-Friday date about a week out, so
// weekday pricing applies regardless of when the test runs.
func futureWeekday() time.Time {
	d := time.Now().AddDate(0, 0, 7)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func message(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			Chat: &tgbotapi.Chat{ID: chatID},
			From: &tgbotapi.User{ID: chatID},
			Text: text,
		},
	}
}

func TestMainMenuKeyboardByRole(t *testing.T) {
	countButtons := func(kb tgbotapi.ReplyKeyboardMarkup) map[string]bool {
		found := make(map[string]bool)
		for _, row := range kb.Keyboard {
			for _, btn := range row {
				found[btn.Text] = true
			}
		}
		return found
	}

	t.Run("customer", func(t *testing.T) {
		buttons := countButtons(mainMenuKeyboard(models.User{Role: models.RoleCustomer}))
		assert.True(t, buttons[btnReserve])
		assert.True(t, buttons[btnTicket])
		assert.False(t, buttons[btnWalkIn])
		assert.False(t, buttons[btnExport])
		assert.False(t, buttons[btnAllBookings])
	})

	t.Run("staff", func(t *testing.T) {
		buttons := countButtons(mainMenuKeyboard(models.User{Role: models.RoleStaff}))
		assert.True(t, buttons[btnWalkIn])
		assert.True(t, buttons[btnShifts])
		assert.True(t, buttons[btnAllBookings])
		assert.False(t, buttons[btnExport])
	})

	t.Run("admin", func(t *testing.T) {
		buttons := countButtons(mainMenuKeyboard(models.User{Role: models.RoleAdmin}))
		assert.True(t, buttons[btnExport])
		assert.True(t, buttons[btnStats])
		assert.True(t, buttons[btnShifts])
	})
}

func TestStartShowsAnonymousMenuWhenLoggedOut(t *testing.T) {
	bot, tg, _ := newTestBot(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))

	bot.handleMessage(context.Background(), message(1, "/start"))

	assert.Contains(t, tg.lastText(), "Inicia sesión")
}

func TestWizardRequiresSession(t *testing.T) {
	bot, tg, _ := newTestBot(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))

	bot.handleMessage(context.Background(), message(1, btnReserve))

	assert.Contains(t, tg.lastText(), "iniciar sesión")
}

func TestReservationWizardHappyPath(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/ocupacion", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"disponible": true, "ocupacion": 10, "bloqueadoPorPrivada": false}`))
	})
	mux.HandleFunc("/api/reservas", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 42, "tipo": "privada", "estado": "pendiente", "personas": 8,
			"fecha_inicio": "2026-09-02", "fecha_fin": "2026-09-02", "horario": "diurno",
			"jornada": "completa", "precio_base": 160000, "cargo_adicional": 100000,
			"precio_total": 260000}`))
	})

	bot, tg, manager := newTestBot(t, mux)
	loginAs(t, manager, "cliente")
	ctx := context.Background()

	bot.handleMessage(ctx, message(1, btnReserve))
	assert.Contains(t, tg.lastText(), "tipo de reserva")

	bot.handleMessage(ctx, message(1, btnKindPrivate))
	assert.Contains(t, tg.lastText(), "fecha de inicio")

	bot.handleMessage(ctx, message(1, futureWeekday().Format(userDateFormat)))
	assert.Contains(t, tg.lastText(), "Hasta qué fecha")

	bot.handleMessage(ctx, message(1, btnSingleDay))
	assert.Contains(t, tg.lastText(), "diurno o nocturno")

	bot.handleMessage(ctx, message(1, btnScheduleDay))
	assert.Contains(t, tg.lastText(), "jornada")

	bot.handleMessage(ctx, message(1, btnPeriodFull))
	assert.Contains(t, tg.lastText(), "Cuántas personas")

	bot.handleMessage(ctx, message(1, "8"))
	assert.Contains(t, tg.lastText(), "servicios")

	bot.handleMessage(ctx, message(1, btnSkipServices))
	summary := tg.lastText()
	assert.Contains(t, summary, "Resumen")
	// 8 people on a weekday at 20000, below the minimum of 10, so the
	// flat surcharge applies.
	assert.Contains(t, summary, "$160.000")
	assert.Contains(t, summary, "$100.000")
	assert.Contains(t, summary, "$260.000")

	bot.handleMessage(ctx, message(1, btnConfirm))
	assert.Contains(t, tg.lastText(), "¡Reserva creada!")
}

func TestReservationRejectedOnPrivateBlock(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/ocupacion", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"disponible": true, "ocupacion": 0, "bloqueadoPorPrivada": true}`))
	})

	bot, tg, manager := newTestBot(t, mux)
	loginAs(t, manager, "cliente")
	ctx := context.Background()

	bot.handleMessage(ctx, message(1, btnReserve))
	bot.handleMessage(ctx, message(1, btnKindGeneral))
	bot.handleMessage(ctx, message(1, futureWeekday().Format(userDateFormat)))
	bot.handleMessage(ctx, message(1, btnSingleDay))
	bot.handleMessage(ctx, message(1, btnScheduleDay))
	bot.handleMessage(ctx, message(1, btnPeriodFull))
	bot.handleMessage(ctx, message(1, "4"))

	assert.Contains(t, tg.lastText(), "evento privado")
}

func TestWalkInFallsBackToQueueWhenBackendDown(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/entradas", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	bot, tg, manager := newTestBot(t, mux)
	loginAs(t, manager, "personal")
	ctx := context.Background()

	bot.handleMessage(ctx, message(1, btnWalkIn))
	bot.handleMessage(ctx, message(1, "Pedro Gómez"))
	bot.handleMessage(ctx, message(1, "12345678"))
	bot.handleMessage(ctx, message(1, "-"))
	bot.handleMessage(ctx, message(1, "3"))
	assert.Contains(t, tg.lastText(), "Resumen de la venta")

	bot.handleMessage(ctx, message(1, btnConfirm))
	assert.Contains(t, tg.lastText(), "se sincronizará")
}

func TestWalkInDeniedForCustomer(t *testing.T) {
	bot, tg, manager := newTestBot(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	loginAs(t, manager, "cliente")

	bot.handleMessage(context.Background(), message(1, btnWalkIn))

	assert.Contains(t, tg.lastText(), "Solo el personal")
}

func TestCancelResetsWizard(t *testing.T) {
	bot, tg, manager := newTestBot(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	loginAs(t, manager, "cliente")
	ctx := context.Background()

	bot.handleMessage(ctx, message(1, btnReserve))
	bot.handleMessage(ctx, message(1, btnCancel))

	texts := tg.allTexts()
	require.NotEmpty(t, texts)
	assert.Contains(t, texts[len(texts)-2], "cancelada")

	state := bot.getState(ctx, 1)
	assert.Nil(t, state)
}

func TestPaymentConfirmsReservationSnapshot(t *testing.T) {
	future := futureWeekday().Format("2006-01-02")
	mux := http.NewServeMux()
	mux.HandleFunc("/api/pagos", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 1, "reserva_id": 42, "metodo_pago": "efectivo"}`))
	})
	mux.HandleFunc("/api/reservas", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": 42, "tipo": "general", "estado": "pendiente",
			"fecha_inicio": "` + future + `", "personas": 4, "cliente_id": 7}]`))
	})

	bot, tg, manager := newTestBot(t, mux)
	loginAs(t, manager, "cliente")
	ctx := context.Background()

	var payments, confirmed int
	bot.eventBus.Subscribe(events.EventPaymentRegistered, func(ev *events.Event) error {
		payments++
		return nil
	})
	bot.eventBus.Subscribe(events.EventReservationConfirmed, func(ev *events.Event) error {
		var payload events.ReservationEventPayload
		require.NoError(t, json.Unmarshal(ev.Payload, &payload))
		assert.Equal(t, int64(42), payload.ReservationID)
		assert.Equal(t, models.StatusConfirmed, payload.Status)
		confirmed++
		return nil
	})

	bot.registerPayment(ctx, 1, 42, "efectivo")

	assert.Equal(t, 1, payments)
	assert.Equal(t, 1, confirmed)
	assert.Contains(t, tg.lastText(), "queda confirmada")
}

func TestCompleteRejectedBeforeDateElapsed(t *testing.T) {
	future := futureWeekday().Format("2006-01-02")
	mux := http.NewServeMux()
	mux.HandleFunc("/api/reservas", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": 42, "tipo": "general", "estado": "confirmada",
			"fecha_inicio": "` + future + `", "personas": 4, "cliente_id": 7}]`))
	})

	bot, tg, manager := newTestBot(t, mux)
	loginAs(t, manager, "personal")

	bot.markCompleted(context.Background(), 1, 42)

	assert.Contains(t, tg.lastText(), "fecha ya pasó")
}

func TestPasswordRecoveryFlow(t *testing.T) {
	var forgotBody, resetBody map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/forgot-password", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&forgotBody))
		w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/api/auth/reset-password", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&resetBody))
		w.Write([]byte(`{}`))
	})

	bot, tg, manager := newTestBot(t, mux)
	ctx := context.Background()

	bot.handleMessage(ctx, message(1, btnForgot))
	assert.Contains(t, tg.lastText(), "correo de tu cuenta")

	bot.handleMessage(ctx, message(1, "laura@example.com"))
	assert.Contains(t, tg.lastText(), "código")
	assert.Equal(t, "laura@example.com", forgotBody["email"])

	bot.handleMessage(ctx, message(1, "abc123"))
	assert.Contains(t, tg.lastText(), "contraseña nueva")

	bot.handleMessage(ctx, message(1, "nueva"))
	assert.Contains(t, tg.lastText(), "Contraseña actualizada")
	assert.Equal(t, "abc123", resetBody["token"])
	assert.Equal(t, "nueva", resetBody["password"])

	assert.Nil(t, bot.getState(ctx, 1))
	assert.False(t, manager.IsAuthenticated(ctx))
}

func TestRateLimitStopsFlood(t *testing.T) {
	bot, tg, manager := newTestBot(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	loginAs(t, manager, "cliente")
	bot.config.Bot.RateLimitMessages = 1

	ctx := context.Background()
	bot.processUpdate(ctx, message(1, "/start"))
	bot.processUpdate(ctx, message(1, "/start"))

	assert.Contains(t, tg.lastText(), "demasiado rápido")
}
