package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"balneario/internal/api"
	"balneario/internal/booking"
	"balneario/internal/models"
	"balneario/internal/pricing"
)

const userDateFormat = "02.01.2006"

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.tg.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send message failed")
	}
}

func (b *Bot) sendWithKeyboard(chatID int64, text string, keyboard interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	if _, err := b.tg.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send message failed")
	}
}

// State helpers. Every wizard step round-trips through the repository so
// a restart or failover never strands a chat mid-flow.

func (b *Bot) getState(ctx context.Context, chatID int64) *models.ChatState {
	state, err := b.state.GetState(ctx, chatID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("get chat state failed")
		return nil
	}
	return state
}

func (b *Bot) setState(ctx context.Context, chatID int64, step string, data map[string]string) {
	if data == nil {
		data = make(map[string]string)
	}
	state := &models.ChatState{ChatID: chatID, Step: step, Data: data, UpdatedAt: time.Now()}
	if err := b.state.SetState(ctx, state); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("set chat state failed")
	}
}

func (b *Bot) clearState(ctx context.Context, chatID int64) {
	if err := b.state.ClearState(ctx, chatID); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("clear chat state failed")
	}
}

// parseUserDate accepts DD.MM.YYYY, the format the keyboards ask for.
func parseUserDate(text string) (time.Time, error) {
	date, err := time.Parse(userDateFormat, strings.TrimSpace(text))
	if err != nil {
		return time.Time{}, fmt.Errorf("fecha inválida: %q", text)
	}
	return date, nil
}

// formatMoney renders whole pesos with thousands separators: 750000
// becomes "$750.000".
func formatMoney(amount int64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	digits := strconv.FormatInt(amount, 10)
	var sb strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			sb.WriteByte('.')
		}
		sb.WriteRune(d)
	}

	if negative {
		return "-$" + sb.String()
	}
	return "$" + sb.String()
}

func parseHeadcount(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("número de personas inválido: %q", text)
	}
	return n, nil
}

var statusText = map[string]string{
	models.StatusPending:             "⏳ Pendiente",
	models.StatusConfirmed:           "✅ Confirmada",
	models.StatusCancellationPending: "🔄 Cancelación pendiente",
	models.StatusCancelled:           "❌ Cancelada",
	models.StatusCompleted:           "🏁 Completada",
}

var kindText = map[string]string{
	models.KindGeneral: "General",
	models.KindPrivate: "Privada",
}

var serviceText = map[string]string{
	models.ServiceKitchen: "Cocina",
	models.ServiceRoom:    "Cuarto",
}

func scheduleText(schedule, period string) string {
	if schedule == models.ScheduleNight {
		return "🌙 Nocturno (18:00-23:00)"
	}
	switch period {
	case models.PeriodMorning:
		return "🌅 Mañana (09:00-12:00)"
	case models.PeriodAfternoon:
		return "🌇 Tarde (14:00-18:00)"
	default:
		return "☀️ Día completo (09:00-18:00)"
	}
}

// reservationSummary is the card shown in lists and confirmations.
func reservationSummary(r *models.Reservation) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Reserva #%d · %s\n", r.ID, kindText[r.Kind]))
	if r.SingleDay() {
		sb.WriteString(fmt.Sprintf("📅 %s\n", r.DateStart.Format(userDateFormat)))
	} else {
		sb.WriteString(fmt.Sprintf("📅 %s - %s (%d días)\n",
			r.DateStart.Format(userDateFormat), r.DateEnd.Format(userDateFormat), r.Days()))
	}
	sb.WriteString(scheduleText(r.Schedule, r.Period) + "\n")
	sb.WriteString(fmt.Sprintf("👥 %d personas\n", r.Headcount))

	if len(r.Services) > 0 {
		labels := make([]string, 0, len(r.Services))
		for _, svc := range r.Services {
			labels = append(labels, serviceText[svc])
		}
		sb.WriteString("🛎 " + strings.Join(labels, ", ") + "\n")
	}

	if r.Surcharge > 0 {
		sb.WriteString(fmt.Sprintf("➕ Cargo por mínimo: %s\n", formatMoney(r.Surcharge)))
	}
	sb.WriteString(fmt.Sprintf("💰 Total: %s\n", formatMoney(r.TotalPrice)))
	sb.WriteString(statusText[r.Status])
	return sb.String()
}

func quoteSummary(q pricing.Quote) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("💵 Precio base: %s", formatMoney(q.BasePrice)))
	if q.Days > 1 {
		sb.WriteString(fmt.Sprintf(" (%s × %d días)", formatMoney(q.UnitPrice), q.Days))
	}
	sb.WriteString("\n")
	if q.ServicesCost > 0 {
		sb.WriteString(fmt.Sprintf("🛎 Servicios: %s\n", formatMoney(q.ServicesCost)))
	}
	if q.Surcharge > 0 {
		sb.WriteString(fmt.Sprintf("➕ Cargo por mínimo de %d personas: %s\n", q.MinHeadcount, formatMoney(q.Surcharge)))
	}
	sb.WriteString(fmt.Sprintf("💰 Total: %s", formatMoney(q.Total)))
	return sb.String()
}

// errorMessage maps domain errors to user-facing Spanish text.
func (b *Bot) errorMessage(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, api.ErrSessionExpired):
		return "🔒 Tu sesión expiró. Inicia sesión de nuevo con /start."
	case errors.Is(err, booking.ErrPastDate):
		return "⚠️ No se puede reservar una fecha pasada."
	case errors.Is(err, booking.ErrDateTooFar):
		return fmt.Sprintf("⚠️ Solo se puede reservar con hasta %d días de anticipación.", b.config.Venue.MaxAdvanceDays)
	case errors.Is(err, booking.ErrMissingDate):
		return "⚠️ Falta la fecha de la reserva."
	case errors.Is(err, pricing.ErrHeadcountTooHigh):
		return fmt.Sprintf("⚠️ La capacidad máxima del balneario es de %d personas.", b.config.Venue.Capacity)
	case errors.Is(err, pricing.ErrHeadcountTooLow):
		return "⚠️ Indica al menos una persona."
	case errors.Is(err, booking.ErrInvalidTransition):
		return "⚠️ Esa reserva ya no admite ese cambio de estado."
	case errors.Is(err, booking.ErrNotModifiable):
		return "⚠️ Esa reserva ya no se puede modificar."
	case errors.Is(err, booking.ErrNotElapsed):
		return "⚠️ La reserva solo se puede completar cuando su fecha ya pasó."
	}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return "⚠️ " + apiErr.Message
	}

	return "❌ Ocurrió un error procesando tu solicitud. Intenta de nuevo más tarde."
}

// currentUser resolves the session, prompting for login when absent.
func (b *Bot) currentUser(ctx context.Context, chatID int64) (models.User, bool) {
	s, err := b.session.Current(ctx)
	if err != nil {
		b.sendMessage(chatID, "🔒 Necesitas iniciar sesión primero. Usa /start.")
		return models.User{}, false
	}
	return s.User, true
}
