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

const stateDateFormat = "2006-01-02"

func (b *Bot) startReservationWizard(ctx context.Context, chatID int64) {
	b.setState(ctx, chatID, StateReserveKind, nil)
	b.sendWithKeyboard(chatID,
		"¿Qué tipo de reserva quieres?\n\n"+
			"🏊 General: acceso individual por persona.\n"+
			"🎉 Privada: el balneario completo para tu evento.",
		kindKeyboard())
}

func (b *Bot) handleReservationStep(ctx context.Context, chatID int64, text string, state *models.ChatState) {
	switch state.Step {
	case StateReserveKind:
		b.stepReserveKind(ctx, chatID, text, state)
	case StateReserveDateStart:
		b.stepReserveDateStart(ctx, chatID, text, state)
	case StateReserveDateEnd:
		b.stepReserveDateEnd(ctx, chatID, text, state)
	case StateReserveSchedule:
		b.stepReserveSchedule(ctx, chatID, text, state)
	case StateReservePeriod:
		b.stepReservePeriod(ctx, chatID, text, state)
	case StateReserveHeadcount:
		b.stepReserveHeadcount(ctx, chatID, text, state)
	case StateReserveServices:
		b.stepReserveServices(ctx, chatID, text, state)
	case StateReserveConfirm:
		b.stepReserveConfirm(ctx, chatID, text, state)
	}
}

func (b *Bot) stepReserveKind(ctx context.Context, chatID int64, text string, state *models.ChatState) {
	switch text {
	case btnKindGeneral:
		state.Data["kind"] = models.KindGeneral
	case btnKindPrivate:
		state.Data["kind"] = models.KindPrivate
	default:
		b.sendMessage(chatID, "Elige una opción del teclado.")
		return
	}

	b.setState(ctx, chatID, StateReserveDateStart, state.Data)
	b.sendWithKeyboard(chatID,
		fmt.Sprintf("📅 Escribe la fecha de inicio en formato DD.MM.AAAA (por ejemplo, %s):",
			time.Now().AddDate(0, 0, 7).Format(userDateFormat)),
		cancelKeyboard())
}

func (b *Bot) stepReserveDateStart(ctx context.Context, chatID int64, text string, state *models.ChatState) {
	date, err := parseUserDate(text)
	if err != nil {
		b.sendMessage(chatID, "⚠️ Formato de fecha inválido. Usa DD.MM.AAAA:")
		return
	}

	if err := b.validator.ValidateDates(date, date, time.Now()); err != nil {
		b.sendMessage(chatID, b.errorMessage(err))
		return
	}

	state.Data["date_start"] = date.Format(stateDateFormat)
	b.setState(ctx, chatID, StateReserveDateEnd, state.Data)
	b.sendWithKeyboard(chatID,
		"📅 ¿Hasta qué fecha? Escribe la fecha final o elige \"Un solo día\":",
		singleDayKeyboard())
}

func (b *Bot) stepReserveDateEnd(ctx context.Context, chatID int64, text string, state *models.ChatState) {
	start, _ := time.Parse(stateDateFormat, state.Data["date_start"])

	end := start
	if text != btnSingleDay {
		parsed, err := parseUserDate(text)
		if err != nil {
			b.sendMessage(chatID, "⚠️ Formato de fecha inválido. Usa DD.MM.AAAA:")
			return
		}
		end = parsed
	}

	if end.Before(start) {
		b.sendMessage(chatID, "⚠️ La fecha final no puede ser anterior a la inicial.")
		return
	}
	if err := b.validator.ValidateDates(start, end, time.Now()); err != nil {
		b.sendMessage(chatID, b.errorMessage(err))
		return
	}

	state.Data["date_end"] = end.Format(stateDateFormat)
	b.setState(ctx, chatID, StateReserveSchedule, state.Data)
	b.sendWithKeyboard(chatID, "🕐 ¿Horario diurno o nocturno?", scheduleKeyboard())
}

func (b *Bot) stepReserveSchedule(ctx context.Context, chatID int64, text string, state *models.ChatState) {
	switch text {
	case btnScheduleDay:
		state.Data["schedule"] = models.ScheduleDay
		b.setState(ctx, chatID, StateReservePeriod, state.Data)
		b.sendWithKeyboard(chatID, "🕐 ¿Qué jornada?", periodKeyboard())
	case btnScheduleNight:
		state.Data["schedule"] = models.ScheduleNight
		state.Data["period"] = models.PeriodFull
		b.setState(ctx, chatID, StateReserveHeadcount, state.Data)
		b.sendWithKeyboard(chatID, "👥 ¿Cuántas personas?", cancelKeyboard())
	default:
		b.sendMessage(chatID, "Elige una opción del teclado.")
	}
}

func (b *Bot) stepReservePeriod(ctx context.Context, chatID int64, text string, state *models.ChatState) {
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

	b.setState(ctx, chatID, StateReserveHeadcount, state.Data)
	b.sendWithKeyboard(chatID, "👥 ¿Cuántas personas?", cancelKeyboard())
}

func (b *Bot) stepReserveHeadcount(ctx context.Context, chatID int64, text string, state *models.ChatState) {
	headcount, err := parseHeadcount(text)
	if err != nil {
		b.sendMessage(chatID, "⚠️ Escribe un número de personas válido:")
		return
	}

	start, _ := time.Parse(stateDateFormat, state.Data["date_start"])
	kind := state.Data["kind"]
	schedule := state.Data["schedule"]

	result, err := b.availability.Check(ctx, start, schedule, kind, headcount)
	if err != nil {
		if errors.Is(err, availability.ErrStale) {
			return
		}
		b.sendMessage(chatID, b.errorMessage(err))
		return
	}

	if result.BlockedByPrivate {
		b.sendMessage(chatID, "⛔ Ese día está reservado para un evento privado. Elige otra fecha.")
		b.setState(ctx, chatID, StateReserveDateStart, map[string]string{"kind": kind})
		return
	}
	if !result.Available {
		b.sendMessage(chatID, fmt.Sprintf(
			"⚠️ No hay cupo para %d personas ese día (quedan %d lugares). Elige otra fecha o reduce el grupo.",
			headcount, result.Remaining))
		return
	}
	if result.Degraded {
		b.sendMessage(chatID, "ℹ️ No pudimos verificar la ocupación en este momento; la disponibilidad se confirmará al crear la reserva.")
	}

	state.Data["headcount"] = strconv.Itoa(headcount)

	if kind == models.KindPrivate {
		b.setState(ctx, chatID, StateReserveServices, state.Data)
		b.sendWithKeyboard(chatID,
			"🛎 ¿Quieres agregar servicios? Toca para seleccionar y luego \"Listo\":",
			servicesKeyboard(selectedServices(state.Data)))
		return
	}

	b.showReservationQuote(ctx, chatID, state)
}

func (b *Bot) stepReserveServices(ctx context.Context, chatID int64, text string, state *models.ChatState) {
	selected := selectedServices(state.Data)

	switch strings.TrimPrefix(text, "✅ ") {
	case serviceText[models.ServiceKitchen]:
		selected[models.ServiceKitchen] = !selected[models.ServiceKitchen]
	case serviceText[models.ServiceRoom]:
		selected[models.ServiceRoom] = !selected[models.ServiceRoom]
	case btnSkipServices:
		state.Data["services"] = ""
		b.showReservationQuote(ctx, chatID, state)
		return
	case btnDone:
		b.showReservationQuote(ctx, chatID, state)
		return
	default:
		b.sendMessage(chatID, "Elige una opción del teclado.")
		return
	}

	state.Data["services"] = encodeServices(selected)
	b.setState(ctx, chatID, StateReserveServices, state.Data)
	b.sendWithKeyboard(chatID, "Selección actualizada. Toca \"Listo\" cuando termines.", servicesKeyboard(selected))
}

func (b *Bot) showReservationQuote(ctx context.Context, chatID int64, state *models.ChatState) {
	input, err := reservationInput(state.Data)
	if err != nil {
		b.sendMessage(chatID, b.errorMessage(err))
		return
	}

	quote, err := b.pricing.Quote(input)
	if err != nil {
		b.sendMessage(chatID, b.errorMessage(err))
		return
	}

	state.Data["base_price"] = strconv.FormatInt(quote.BasePrice, 10)
	state.Data["services_cost"] = strconv.FormatInt(quote.ServicesCost, 10)
	state.Data["surcharge"] = strconv.FormatInt(quote.Surcharge, 10)
	state.Data["total_price"] = strconv.FormatInt(quote.Total, 10)
	b.setState(ctx, chatID, StateReserveConfirm, state.Data)

	var sb strings.Builder
	sb.WriteString("📋 Resumen de tu reserva:\n\n")
	sb.WriteString(fmt.Sprintf("Tipo: %s\n", kindText[input.Kind]))
	if input.DateEnd.Equal(input.DateStart) {
		sb.WriteString(fmt.Sprintf("📅 %s\n", input.DateStart.Format(userDateFormat)))
	} else {
		sb.WriteString(fmt.Sprintf("📅 %s - %s (%d días)\n",
			input.DateStart.Format(userDateFormat), input.DateEnd.Format(userDateFormat), quote.Days))
	}
	sb.WriteString(scheduleText(input.Schedule, state.Data["period"]) + "\n")
	sb.WriteString(fmt.Sprintf("👥 %d personas\n\n", input.Headcount))
	sb.WriteString(quoteSummary(quote))
	if quote.Surcharge > 0 {
		sb.WriteString(fmt.Sprintf("\n\nℹ️ El cargo aplica porque el grupo no llega al mínimo de %d personas.", quote.MinHeadcount))
	}

	b.sendWithKeyboard(chatID, sb.String(), confirmKeyboard())
}

func (b *Bot) stepReserveConfirm(ctx context.Context, chatID int64, text string, state *models.ChatState) {
	if text != btnConfirm {
		b.sendMessage(chatID, "Toca \"✅ Confirmar\" para crear la reserva o \"❌ Cancelar\" para salir.")
		return
	}

	user, ok := b.currentUser(ctx, chatID)
	if !ok {
		return
	}

	input, err := reservationInput(state.Data)
	if err != nil {
		b.sendMessage(chatID, b.errorMessage(err))
		return
	}

	basePrice, _ := strconv.ParseInt(state.Data["base_price"], 10, 64)
	servicesCost, _ := strconv.ParseInt(state.Data["services_cost"], 10, 64)
	surcharge, _ := strconv.ParseInt(state.Data["surcharge"], 10, 64)
	totalPrice, _ := strconv.ParseInt(state.Data["total_price"], 10, 64)

	reservation := &models.Reservation{
		Kind:         input.Kind,
		DateStart:    input.DateStart,
		DateEnd:      input.DateEnd,
		Schedule:     input.Schedule,
		Period:       state.Data["period"],
		Headcount:    input.Headcount,
		Services:     input.Services,
		BasePrice:    basePrice,
		ServicesCost: servicesCost,
		Surcharge:    surcharge,
		TotalPrice:   totalPrice,
		OwnerID:      user.ID,
	}

	created, err := b.backend.CreateReservation(ctx, reservation)
	if err != nil {
		b.sendMessage(chatID, b.errorMessage(err))
		return
	}

	b.publishReservationEvent(events.EventReservationCreated, created, user.ID)
	b.clearState(ctx, chatID)

	b.sendWithKeyboard(chatID,
		"🎉 ¡Reserva creada!\n\n"+reservationSummary(created)+
			"\n\nRegistra el pago para confirmarla.",
		mainMenuKeyboard(user))
}

// reservationInput rebuilds the pricing input from wizard state.
func reservationInput(data map[string]string) (pricing.Input, error) {
	start, err := time.Parse(stateDateFormat, data["date_start"])
	if err != nil {
		return pricing.Input{}, fmt.Errorf("fecha de inicio inválida: %w", err)
	}
	end, err := time.Parse(stateDateFormat, data["date_end"])
	if err != nil {
		end = start
	}

	headcount, err := strconv.Atoi(data["headcount"])
	if err != nil {
		return pricing.Input{}, fmt.Errorf("número de personas inválido: %w", err)
	}

	return pricing.Input{
		Kind:      data["kind"],
		Schedule:  data["schedule"],
		DateStart: start,
		DateEnd:   end,
		Headcount: headcount,
		Services:  decodeServices(data["services"]),
	}, nil
}

func selectedServices(data map[string]string) map[string]bool {
	selected := make(map[string]bool)
	for _, id := range decodeServices(data["services"]) {
		selected[id] = true
	}
	return selected
}

func encodeServices(selected map[string]bool) string {
	var ids []string
	for _, id := range []string{models.ServiceKitchen, models.ServiceRoom} {
		if selected[id] {
			ids = append(ids, id)
		}
	}
	return strings.Join(ids, ",")
}

func decodeServices(encoded string) []string {
	if encoded == "" {
		return nil
	}
	return strings.Split(encoded, ",")
}
