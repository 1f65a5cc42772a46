package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"balneario/internal/availability"
	"balneario/internal/events"
	"balneario/internal/models"
	"balneario/internal/pricing"
)

func (b *Bot) startTicketWizard(ctx context.Context, chatID int64) {
	b.setState(ctx, chatID, StateTicketDate, nil)
	b.sendWithKeyboard(chatID,
		"🎫 Compra de entrada general.\n\n📅 ¿Para qué fecha? (DD.MM.AAAA):",
		cancelKeyboard())
}

func (b *Bot) handleTicketStep(ctx context.Context, chatID int64, text string, state *models.ChatState) {
	switch state.Step {
	case StateTicketDate:
		b.stepTicketDate(ctx, chatID, text, state)
	case StateTicketSchedule:
		b.stepTicketSchedule(ctx, chatID, text, state)
	case StateTicketPeriod:
		b.stepTicketPeriod(ctx, chatID, text, state)
	case StateTicketHeadcount:
		b.stepTicketHeadcount(ctx, chatID, text, state)
	case StateTicketConfirm:
		b.stepTicketConfirm(ctx, chatID, text, state)
	}
}

func (b *Bot) stepTicketDate(ctx context.Context, chatID int64, text string, state *models.ChatState) {
	date, err := parseUserDate(text)
	if err != nil {
		b.sendMessage(chatID, "⚠️ Formato de fecha inválido. Usa DD.MM.AAAA:")
		return
	}

	if err := b.validator.ValidateDates(date, date, time.Now()); err != nil {
		b.sendMessage(chatID, b.errorMessage(err))
		return
	}

	state.Data["date"] = date.Format(stateDateFormat)
	b.setState(ctx, chatID, StateTicketSchedule, state.Data)
	b.sendWithKeyboard(chatID, "🕐 ¿Horario diurno o nocturno?", scheduleKeyboard())
}

func (b *Bot) stepTicketSchedule(ctx context.Context, chatID int64, text string, state *models.ChatState) {
	switch text {
	case btnScheduleDay:
		state.Data["schedule"] = models.ScheduleDay
		b.setState(ctx, chatID, StateTicketPeriod, state.Data)
		b.sendWithKeyboard(chatID, "🕐 ¿Qué jornada?", periodKeyboard())
	case btnScheduleNight:
		state.Data["schedule"] = models.ScheduleNight
		state.Data["period"] = models.PeriodFull
		b.setState(ctx, chatID, StateTicketHeadcount, state.Data)
		b.sendWithKeyboard(chatID, "👥 ¿Cuántas personas?", cancelKeyboard())
	default:
		b.sendMessage(chatID, "Elige una opción del teclado.")
	}
}

func (b *Bot) stepTicketPeriod(ctx context.Context, chatID int64, text string, state *models.ChatState) {
	switch text {
	case btnPeriodFull:
		state.Data["period"] = models.PeriodFull
	case btnPeriodMorning:
		state.Data["period"] = models.PeriodMorning
	case btnPeriodAfternoon:
		state.Data["period"] = models.PeriodAfternoon
	default:
		b.sendMessage(chatID, "Elige una opción del teclado.")
		return
	}

	b.setState(ctx, chatID, StateTicketHeadcount, state.Data)
	b.sendWithKeyboard(chatID, "👥 ¿Cuántas personas?", cancelKeyboard())
}

func (b *Bot) stepTicketHeadcount(ctx context.Context, chatID int64, text string, state *models.ChatState) {
	headcount, err := parseHeadcount(text)
	if err != nil {
		b.sendMessage(chatID, "⚠️ Escribe un número de personas válido:")
		return
	}

	date, _ := time.Parse(stateDateFormat, state.Data["date"])
	schedule := state.Data["schedule"]

	result, err := b.availability.Check(ctx, date, schedule, models.KindGeneral, headcount)
	if err != nil {
		if errors.Is(err, availability.ErrStale) {
			return
		}
		b.sendMessage(chatID, b.errorMessage(err))
		return
	}

	if result.BlockedByPrivate {
		b.sendMessage(chatID, "⛔ Ese día está reservado para un evento privado. Elige otra fecha.")
		b.setState(ctx, chatID, StateTicketDate, nil)
		return
	}
	if !result.Available {
		b.sendMessage(chatID, fmt.Sprintf("⚠️ No hay cupo para %d personas ese día (quedan %d lugares).",
			headcount, result.Remaining))
		return
	}

	quote, err := b.pricing.Quote(pricing.Input{
		Kind:      models.KindGeneral,
		Schedule:  schedule,
		DateStart: date,
		DateEnd:   date,
		Headcount: headcount,
	})
	if err != nil {
		b.sendMessage(chatID, b.errorMessage(err))
		return
	}

	state.Data["headcount"] = strconv.Itoa(headcount)
	state.Data["total_price"] = strconv.FormatInt(quote.Total, 10)
	state.Data["unit_price"] = strconv.FormatInt(quote.UnitPrice, 10)
	b.setState(ctx, chatID, StateTicketConfirm, state.Data)

	var sb strings.Builder
	sb.WriteString("🎫 Resumen de tu entrada:\n\n")
	sb.WriteString(fmt.Sprintf("📅 %s\n", date.Format(userDateFormat)))
	sb.WriteString(scheduleText(schedule, state.Data["period"]) + "\n")
	sb.WriteString(fmt.Sprintf("👥 %d personas × %s\n", headcount, formatMoney(quote.UnitPrice)))
	sb.WriteString(fmt.Sprintf("💰 Total: %s", formatMoney(quote.Total)))

	b.sendWithKeyboard(chatID, sb.String(), confirmKeyboard())
}

func (b *Bot) stepTicketConfirm(ctx context.Context, chatID int64, text string, state *models.ChatState) {
	if text != btnConfirm {
		b.sendMessage(chatID, "Toca \"✅ Confirmar\" para comprar o \"❌ Cancelar\" para salir.")
		return
	}

	user, ok := b.currentUser(ctx, chatID)
	if !ok {
		return
	}

	ticket, err := ticketFromState(state.Data)
	if err != nil {
		b.sendMessage(chatID, b.errorMessage(err))
		return
	}
	ticket.OwnerID = user.ID

	created, err := b.backend.CreateTicket(ctx, ticket)
	if err != nil {
		b.sendMessage(chatID, b.errorMessage(err))
		return
	}

	b.publishTicketEvent(created)
	b.clearState(ctx, chatID)

	b.sendWithKeyboard(chatID,
		fmt.Sprintf("🎉 ¡Entrada #%d creada! Total: %s.\n\nRegistra el pago para confirmarla.",
			created.ID, formatMoney(created.TotalPrice)),
		mainMenuKeyboard(user))
}

func ticketFromState(data map[string]string) (*models.Ticket, error) {
	date, err := time.Parse(stateDateFormat, data["date"])
	if err != nil {
		return nil, fmt.Errorf("fecha inválida: %w", err)
	}
	headcount, err := strconv.Atoi(data["headcount"])
	if err != nil {
		return nil, fmt.Errorf("número de personas inválido: %w", err)
	}
	totalPrice, _ := strconv.ParseInt(data["total_price"], 10, 64)
	unitPrice, _ := strconv.ParseInt(data["unit_price"], 10, 64)

	return &models.Ticket{
		Date:       date,
		Schedule:   data["schedule"],
		Period:     data["period"],
		Headcount:  headcount,
		UnitPrice:  unitPrice,
		TotalPrice: totalPrice,
		Status:     models.StatusPending,
	}, nil
}

func (b *Bot) publishTicketEvent(t *models.Ticket) {
	payload := events.TicketEventPayload{
		TicketID:   t.ID,
		Date:       t.Date,
		Headcount:  t.Headcount,
		TotalPrice: t.TotalPrice,
		WalkIn:     t.WalkIn,
	}
	if err := b.eventBus.PublishJSON(events.EventTicketSold, payload); err != nil {
		b.logger.Error().Err(err).Msg("publish ticket event failed")
	}
}
