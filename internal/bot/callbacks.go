package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"balneario/internal/booking"
	"balneario/internal/events"
	"balneario/internal/models"
)

// Callback data grammar: "resv:<action>:<args...>".
const (
	cbPage     = "page"
	cbPay      = "pay"
	cbPayWith  = "paym"
	cbCancel   = "cancel"
	cbComplete = "complete"

	scopeMine = "mine"
	scopeAll  = "all"
)

func (b *Bot) handleCallbackQuery(ctx context.Context, update tgbotapi.Update) {
	query := update.CallbackQuery
	chatID := query.Message.Chat.ID
	l := zerolog.Ctx(ctx)

	callback := tgbotapi.NewCallback(query.ID, "")
	if _, err := b.tg.Request(callback); err != nil {
		l.Error().Err(err).Msg("answer callback failed")
	}

	parts := strings.Split(query.Data, ":")
	if len(parts) < 2 || parts[0] != "resv" {
		return
	}

	switch parts[1] {
	case cbPage:
		if len(parts) != 4 {
			return
		}
		page, err := strconv.Atoi(parts[2])
		if err != nil {
			return
		}
		b.showReservations(ctx, chatID, page, query.Message.MessageID, parts[3] == scopeAll)

	case cbPay:
		if len(parts) != 3 {
			return
		}
		b.askPaymentMethod(chatID, parts[2])

	case cbPayWith:
		if len(parts) != 4 {
			return
		}
		id, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return
		}
		b.registerPayment(ctx, chatID, id, parts[3])

	case cbCancel:
		if len(parts) != 3 {
			return
		}
		id, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return
		}
		b.requestCancellation(ctx, chatID, id)

	case cbComplete:
		if len(parts) != 3 {
			return
		}
		id, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return
		}
		b.markCompleted(ctx, chatID, id)
	}
}

// showReservations renders one page of the reservation list. messageID 0
// sends a new message, otherwise the existing one is edited in place.
func (b *Bot) showReservations(ctx context.Context, chatID int64, page, messageID int, all bool) {
	user, ok := b.currentUser(ctx, chatID)
	if !ok {
		return
	}

	reservations, err := b.backend.Reservations(ctx)
	if err != nil {
		b.sendMessage(chatID, b.errorMessage(err))
		return
	}

	if !all {
		mine := reservations[:0]
		for _, r := range reservations {
			if r.OwnerID == user.ID {
				mine = append(mine, r)
			}
		}
		reservations = mine
	}

	if len(reservations) == 0 {
		b.sendMessage(chatID, "No hay reservas para mostrar.")
		return
	}

	perPage := b.config.Bot.PaginationSize
	if perPage <= 0 {
		perPage = models.DefaultPaginationSize
	}

	totalPages := (len(reservations) + perPage - 1) / perPage
	if page >= totalPages {
		page = totalPages - 1
	}
	if page < 0 {
		page = 0
	}

	startIdx := page * perPage
	endIdx := startIdx + perPage
	if endIdx > len(reservations) {
		endIdx = len(reservations)
	}

	title := "📊 Tus reservas"
	scope := scopeMine
	if all {
		title = "🗂 Todas las reservas"
		scope = scopeAll
	}

	var sb strings.Builder
	sb.WriteString(title + "\n")
	if totalPages > 1 {
		sb.WriteString(fmt.Sprintf("Página %d de %d\n", page+1, totalPages))
	}
	sb.WriteString("\n")

	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, r := range reservations[startIdx:endIdx] {
		sb.WriteString(reservationSummary(r))
		sb.WriteString("\n\n")

		var row []tgbotapi.InlineKeyboardButton
		if r.Status == models.StatusPending {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("💳 Pagar #%d", r.ID),
				fmt.Sprintf("resv:%s:%d", cbPay, r.ID)))
		}
		if booking.IsActive(r.Status) {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("❌ Cancelar #%d", r.ID),
				fmt.Sprintf("resv:%s:%d", cbCancel, r.ID)))
		}
		if all && booking.CanComplete(r, time.Now()) == nil {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("🏁 Completar #%d", r.ID),
				fmt.Sprintf("resv:%s:%d", cbComplete, r.ID)))
		}
		if len(row) > 0 {
			keyboard = append(keyboard, row)
		}
	}

	var nav []tgbotapi.InlineKeyboardButton
	if page > 0 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("⬅️ Anterior",
			fmt.Sprintf("resv:%s:%d:%s", cbPage, page-1, scope)))
	}
	if endIdx < len(reservations) {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("Siguiente ➡️",
			fmt.Sprintf("resv:%s:%d:%s", cbPage, page+1, scope)))
	}
	if len(nav) > 0 {
		keyboard = append(keyboard, nav)
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(keyboard...)

	if messageID != 0 {
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, sb.String(), markup)
		if _, err := b.tg.Send(edit); err != nil {
			b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("edit message failed")
		}
		return
	}

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = markup
	if _, err := b.tg.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send message failed")
	}
}

func (b *Bot) askPaymentMethod(chatID int64, reservationID string) {
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💵 Efectivo",
				fmt.Sprintf("resv:%s:%s:efectivo", cbPayWith, reservationID)),
			tgbotapi.NewInlineKeyboardButtonData("💳 Transferencia",
				fmt.Sprintf("resv:%s:%s:transferencia", cbPayWith, reservationID)),
		),
	)
	msg := tgbotapi.NewMessage(chatID, "¿Cómo quieres pagar?")
	msg.ReplyMarkup = markup
	if _, err := b.tg.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send message failed")
	}
}

func (b *Bot) registerPayment(ctx context.Context, chatID, reservationID int64, method string) {
	payment, err := b.backend.CreatePayment(ctx, reservationID, method)
	if err != nil {
		b.sendMessage(chatID, b.errorMessage(err))
		return
	}

	if err := b.eventBus.PublishJSON(events.EventPaymentRegistered, payment); err != nil {
		b.logger.Error().Err(err).Msg("publish payment event failed")
	}

	// The backend confirms the reservation as a side effect of the payment,
	// so the cached snapshot has to be refreshed too.
	if r, err := b.findReservation(ctx, reservationID); err == nil {
		r.Status = models.StatusConfirmed
		b.publishReservationEvent(events.EventReservationConfirmed, r, 0)
	} else {
		b.logger.Warn().Err(err).Int64("reservation_id", reservationID).
			Msg("reservation lookup after payment failed")
	}

	b.sendMessage(chatID, fmt.Sprintf(
		"✅ Pago registrado para la reserva #%d. La reserva queda confirmada.", reservationID))
}

// requestCancellation validates the transition locally before asking the
// backend, so the user gets an immediate answer for impossible moves.
func (b *Bot) requestCancellation(ctx context.Context, chatID, reservationID int64) {
	r, err := b.findReservation(ctx, reservationID)
	if err != nil {
		b.sendMessage(chatID, b.errorMessage(err))
		return
	}

	if err := booking.RequestTransition(r.Status, models.StatusCancellationPending); err != nil {
		b.sendMessage(chatID, b.errorMessage(err))
		return
	}

	if err := b.backend.SetReservationState(ctx, reservationID, models.StatusCancellationPending); err != nil {
		b.sendMessage(chatID, b.errorMessage(err))
		return
	}

	r.Status = models.StatusCancellationPending
	b.publishReservationEvent(events.EventReservationCancelled, r, 0)
	b.sendMessage(chatID, fmt.Sprintf(
		"🔄 Solicitud de cancelación enviada para la reserva #%d. El balneario la revisará.", reservationID))
}

func (b *Bot) markCompleted(ctx context.Context, chatID, reservationID int64) {
	user, ok := b.currentUser(ctx, chatID)
	if !ok {
		return
	}

	r, err := b.findReservation(ctx, reservationID)
	if err != nil {
		b.sendMessage(chatID, b.errorMessage(err))
		return
	}

	if err := booking.CanComplete(r, time.Now()); err != nil {
		b.sendMessage(chatID, b.errorMessage(err))
		return
	}

	if err := b.backend.SetReservationState(ctx, reservationID, models.StatusCompleted); err != nil {
		b.sendMessage(chatID, b.errorMessage(err))
		return
	}

	r.Status = models.StatusCompleted
	b.publishReservationEvent(events.EventReservationCompleted, r, user.ID)
	b.sendMessage(chatID, fmt.Sprintf("🏁 Reserva #%d marcada como completada.", reservationID))
}

func (b *Bot) findReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	reservations, err := b.backend.Reservations(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range reservations {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("reserva #%d no encontrada", id)
}
