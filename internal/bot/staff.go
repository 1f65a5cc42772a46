package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"balneario/internal/booking"
	"balneario/internal/models"
	"balneario/internal/pricing"
)

// Walk-in sales are always for today; the gate does not sell ahead.

func (b *Bot) startWalkInWizard(ctx context.Context, chatID int64) {
	b.setState(ctx, chatID, StateWalkInName, nil)
	b.sendWithKeyboard(chatID,
		"🧾 Venta presencial para hoy.\n\n👤 Nombre del cliente:",
		cancelKeyboard())
}

func (b *Bot) handleWalkInStep(ctx context.Context, chatID int64, text string, state *models.ChatState) {
	switch state.Step {
	case StateWalkInName:
		if len(strings.TrimSpace(text)) < 2 {
			b.sendMessage(chatID, "⚠️ El nombre es demasiado corto. Intenta de nuevo:")
			return
		}
		state.Data["name"] = strings.TrimSpace(text)
		b.setState(ctx, chatID, StateWalkInDocument, state.Data)
		b.sendMessage(chatID, "🪪 Documento del cliente:")

	case StateWalkInDocument:
		state.Data["document"] = strings.TrimSpace(text)
		b.setState(ctx, chatID, StateWalkInPhone, state.Data)
		b.sendMessage(chatID, "📱 Teléfono del cliente (o \"-\" si no tiene):")

	case StateWalkInPhone:
		phone := strings.TrimSpace(text)
		if phone == "-" {
			phone = ""
		}
		state.Data["phone"] = phone

		customer := models.WalkInCustomer{
			Name:     state.Data["name"],
			Document: state.Data["document"],
			Phone:    phone,
		}
		if err := b.validator.ValidateWalkIn(customer); err != nil {
			b.sendMessage(chatID, "⚠️ Faltan el nombre o el documento del cliente.")
			b.setState(ctx, chatID, StateWalkInName, nil)
			return
		}

		b.setState(ctx, chatID, StateWalkInHeadcount, state.Data)
		b.sendWithKeyboard(chatID, "👥 ¿Cuántas personas entran?", cancelKeyboard())

	case StateWalkInHeadcount:
		b.stepWalkInHeadcount(ctx, chatID, text, state)

	case StateWalkInConfirm:
		b.stepWalkInConfirm(ctx, chatID, text, state)
	}
}

func (b *Bot) stepWalkInHeadcount(ctx context.Context, chatID int64, text string, state *models.ChatState) {
	headcount, err := parseHeadcount(text)
	if err != nil {
		b.sendMessage(chatID, "⚠️ Escribe un número de personas válido:")
		return
	}

	now := time.Now()
	schedule, period := currentWindow(now)

	quote, err := b.pricing.Quote(pricing.Input{
		Kind:      models.KindGeneral,
		Schedule:  schedule,
		DateStart: now,
		DateEnd:   now,
		Headcount: headcount,
	})
	if err != nil {
		b.sendMessage(chatID, b.errorMessage(err))
		return
	}

	state.Data["headcount"] = strconv.Itoa(headcount)
	state.Data["schedule"] = schedule
	state.Data["period"] = period
	state.Data["date"] = now.Format(stateDateFormat)
	state.Data["total_price"] = strconv.FormatInt(quote.Total, 10)
	state.Data["unit_price"] = strconv.FormatInt(quote.UnitPrice, 10)
	b.setState(ctx, chatID, StateWalkInConfirm, state.Data)

	var sb strings.Builder
	sb.WriteString("🧾 Resumen de la venta:\n\n")
	sb.WriteString(fmt.Sprintf("👤 %s · %s\n", state.Data["name"], state.Data["document"]))
	sb.WriteString(scheduleText(schedule, period) + "\n")
	sb.WriteString(fmt.Sprintf("👥 %d personas × %s\n", headcount, formatMoney(quote.UnitPrice)))
	sb.WriteString(fmt.Sprintf("💰 Total: %s", formatMoney(quote.Total)))

	b.sendWithKeyboard(chatID, sb.String(), confirmKeyboard())
}

func (b *Bot) stepWalkInConfirm(ctx context.Context, chatID int64, text string, state *models.ChatState) {
	if text != btnConfirm {
		b.sendMessage(chatID, "Toca \"✅ Confirmar\" para registrar la venta o \"❌ Cancelar\" para salir.")
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
	ticket.WalkIn = true
	ticket.Status = models.StatusConfirmed
	ticket.Customer = models.WalkInCustomer{
		Name:     state.Data["name"],
		Document: state.Data["document"],
		Phone:    state.Data["phone"],
	}

	created, err := b.backend.CreateTicket(ctx, ticket)
	if err != nil {
		// The customer is at the gate; queue the sale locally and let the
		// sync worker replay it.
		if queueErr := b.syncWorker.EnqueueTicket(ctx, ticket); queueErr != nil {
			b.logger.Error().Err(queueErr).Msg("walk-in ticket could not be queued")
			b.sendMessage(chatID, b.errorMessage(err))
			return
		}

		b.clearState(ctx, chatID)
		b.sendWithKeyboard(chatID,
			"⚠️ Sin conexión con el sistema. La venta quedó guardada localmente y se sincronizará automáticamente.",
			mainMenuKeyboard(user))
		b.publishTicketEvent(ticket)
		return
	}

	b.publishTicketEvent(created)
	b.clearState(ctx, chatID)
	b.sendWithKeyboard(chatID,
		fmt.Sprintf("✅ Venta registrada. Entrada #%d · Total %s.",
			created.ID, formatMoney(created.TotalPrice)),
		mainMenuKeyboard(user))
}

// currentWindow picks the access window the walk-in customer is entering.
func currentWindow(now time.Time) (string, string) {
	if now.Hour() >= 18 {
		return models.ScheduleNight, models.PeriodFull
	}
	if now.Hour() < 12 {
		return models.ScheduleDay, models.PeriodMorning
	}
	return models.ScheduleDay, models.PeriodAfternoon
}

// Shift assignment.

func (b *Bot) startShiftWizard(ctx context.Context, chatID int64) {
	staff, err := b.backend.Staff(ctx)
	if err != nil {
		b.sendMessage(chatID, b.errorMessage(err))
		return
	}
	if len(staff) == 0 {
		b.sendMessage(chatID, "No hay personal registrado.")
		return
	}

	var rows [][]tgbotapi.KeyboardButton
	for _, member := range staff {
		rows = append(rows, []tgbotapi.KeyboardButton{
			tgbotapi.NewKeyboardButton(fmt.Sprintf("%d · %s", member.ID, member.Name)),
		})
	}
	rows = append(rows, []tgbotapi.KeyboardButton{tgbotapi.NewKeyboardButton(btnCancel)})

	b.setState(ctx, chatID, StateShiftStaff, nil)
	b.sendWithKeyboard(chatID, "👷 ¿A quién asignas el turno?", tgbotapi.NewReplyKeyboard(rows...))
}

func (b *Bot) handleShiftStep(ctx context.Context, chatID int64, text string, state *models.ChatState) {
	switch state.Step {
	case StateShiftStaff:
		idPart, _, found := strings.Cut(text, " · ")
		staffID, err := strconv.ParseInt(strings.TrimSpace(idPart), 10, 64)
		if !found || err != nil {
			b.sendMessage(chatID, "Elige una persona del teclado.")
			return
		}

		state.Data["staff_id"] = strconv.FormatInt(staffID, 10)
		b.setState(ctx, chatID, StateShiftDate, state.Data)
		b.sendWithKeyboard(chatID, "📅 ¿Para qué fecha? (DD.MM.AAAA):", cancelKeyboard())

	case StateShiftDate:
		date, err := parseUserDate(text)
		if err != nil {
			b.sendMessage(chatID, "⚠️ Formato de fecha inválido. Usa DD.MM.AAAA:")
			return
		}

		staffID, _ := strconv.ParseInt(state.Data["staff_id"], 10, 64)
		shift, err := b.backend.CreateShift(ctx, staffID, date)
		if err != nil {
			b.sendMessage(chatID, b.errorMessage(err))
			return
		}

		b.clearState(ctx, chatID)
		user, ok := b.currentUser(ctx, chatID)
		if !ok {
			return
		}
		b.sendWithKeyboard(chatID,
			fmt.Sprintf("✅ Turno #%d asignado para el %s.", shift.ID, shift.Date.Format(userDateFormat)),
			mainMenuKeyboard(user))
	}
}

// Export and stats.

func (b *Bot) handleExport(ctx context.Context, chatID int64) {
	reservations, err := b.backend.Reservations(ctx)
	if err != nil {
		b.sendMessage(chatID, b.errorMessage(err))
		return
	}

	path, err := b.exporter.ExportReservations(reservations)
	if err != nil {
		b.logger.Error().Err(err).Msg("export failed")
		b.sendMessage(chatID, "❌ No se pudo generar el archivo de exportación.")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = fmt.Sprintf("📤 Exportación de reservas (%d filas)", len(reservations))
	if _, err := b.tg.Send(doc); err != nil {
		b.logger.Error().Err(err).Str("path", path).Msg("send export failed")
		b.sendMessage(chatID, "❌ No se pudo enviar el archivo.")
	}
}

func (b *Bot) computeStats(reservations []*models.Reservation) string {
	stats := booking.ComputeStats(reservations, time.Now(), 5)

	var sb strings.Builder
	sb.WriteString("📈 Estadísticas de reservas:\n\n")
	sb.WriteString(fmt.Sprintf("📦 Total: %d\n", stats.Total))
	sb.WriteString(fmt.Sprintf("⏳ Pendientes: %d\n", stats.Pending))
	sb.WriteString(fmt.Sprintf("✅ Confirmadas: %d\n", stats.Confirmed))
	sb.WriteString(fmt.Sprintf("❌ Canceladas: %d\n", stats.Cancelled))
	sb.WriteString(fmt.Sprintf("🏁 Completadas: %d\n", stats.Completed))

	if len(stats.Upcoming) > 0 {
		sb.WriteString("\n🔜 Próximas confirmadas:\n")
		for _, r := range stats.Upcoming {
			sb.WriteString(fmt.Sprintf("• #%d · %s · %d personas · %s\n",
				r.ID, r.DateStart.Format(userDateFormat), r.Headcount, kindText[r.Kind]))
		}
	}
	return sb.String()
}
