package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"balneario/internal/api"
	"balneario/internal/events"
	"balneario/internal/models"
	"balneario/internal/session"
)

func (b *Bot) handleMessage(ctx context.Context, update tgbotapi.Update) {
	chatID := update.Message.Chat.ID
	text := update.Message.Text
	l := zerolog.Ctx(ctx)

	l.Debug().Int64("chat_id", chatID).Str("text", text).Msg("handling message")

	state := b.getState(ctx, chatID)

	switch text {
	case "/start":
		b.clearState(ctx, chatID)
		b.showMainMenu(ctx, chatID)
		return

	case btnCancel:
		b.clearState(ctx, chatID)
		b.sendMessage(chatID, "Operación cancelada.")
		b.showMainMenu(ctx, chatID)
		return

	case btnLogin:
		b.setState(ctx, chatID, StateLoginEmail, nil)
		b.sendWithKeyboard(chatID, "📧 Escribe tu correo electrónico:", cancelKeyboard())
		return

	case btnRegister:
		b.setState(ctx, chatID, StateRegisterName, nil)
		b.sendWithKeyboard(chatID, "👤 Escribe tu nombre completo:", cancelKeyboard())
		return

	case btnForgot:
		b.setState(ctx, chatID, StateForgotEmail, nil)
		b.sendWithKeyboard(chatID, "📧 Escribe el correo de tu cuenta:", cancelKeyboard())
		return

	case btnRates:
		b.showRates(chatID)
		return

	case btnLogout:
		b.session.Clear(ctx)
		b.clearState(ctx, chatID)
		b.sendWithKeyboard(chatID, "👋 Sesión cerrada.", anonymousMenuKeyboard())
		return

	case btnReserve:
		if user, ok := b.currentUser(ctx, chatID); ok && session.Can(user, session.CapCreateReservation) {
			b.startReservationWizard(ctx, chatID)
		}
		return

	case btnTicket:
		if user, ok := b.currentUser(ctx, chatID); ok && session.Can(user, session.CapCreateTicket) {
			b.startTicketWizard(ctx, chatID)
		}
		return

	case btnMyBookings:
		if _, ok := b.currentUser(ctx, chatID); ok {
			b.showReservations(ctx, chatID, 0, 0, false)
		}
		return

	case btnAllBookings:
		if user, ok := b.currentUser(ctx, chatID); ok {
			if !session.Can(user, session.CapViewAllReservations) {
				b.sendMessage(chatID, "⚠️ No tienes permiso para ver todas las reservas.")
				return
			}
			b.showReservations(ctx, chatID, 0, 0, true)
		}
		return

	case btnWalkIn:
		if user, ok := b.currentUser(ctx, chatID); ok {
			if !session.Can(user, session.CapRegisterWalkIn) {
				b.sendMessage(chatID, "⚠️ Solo el personal puede registrar ventas presenciales.")
				return
			}
			b.startWalkInWizard(ctx, chatID)
		}
		return

	case btnShifts:
		if user, ok := b.currentUser(ctx, chatID); ok {
			if !session.Can(user, session.CapManageShifts) {
				b.sendMessage(chatID, "⚠️ No tienes permiso para gestionar turnos.")
				return
			}
			b.startShiftWizard(ctx, chatID)
		}
		return

	case btnExport:
		if user, ok := b.currentUser(ctx, chatID); ok {
			if !session.Can(user, session.CapExportReservations) {
				b.sendMessage(chatID, "⚠️ No tienes permiso para exportar.")
				return
			}
			b.handleExport(ctx, chatID)
		}
		return

	case btnStats:
		if user, ok := b.currentUser(ctx, chatID); ok {
			if !session.Can(user, session.CapExportReservations) {
				b.sendMessage(chatID, "⚠️ No tienes permiso para ver estadísticas.")
				return
			}
			b.showStats(ctx, chatID)
		}
		return
	}

	if state == nil {
		b.showMainMenu(ctx, chatID)
		return
	}

	switch state.Step {
	case StateLoginEmail, StateLoginPassword:
		b.handleLoginStep(ctx, chatID, text, state)
	case StateForgotEmail, StateForgotToken, StateForgotPassword:
		b.handleForgotStep(ctx, chatID, text, state)
	case StateRegisterName, StateRegisterEmail, StateRegisterDocument, StateRegisterPassword:
		b.handleRegisterStep(ctx, chatID, text, state)
	case StateReserveKind, StateReserveDateStart, StateReserveDateEnd, StateReserveSchedule,
		StateReservePeriod, StateReserveHeadcount, StateReserveServices, StateReserveConfirm:
		b.handleReservationStep(ctx, chatID, text, state)
	case StateTicketDate, StateTicketSchedule, StateTicketPeriod, StateTicketHeadcount, StateTicketConfirm:
		b.handleTicketStep(ctx, chatID, text, state)
	case StateWalkInName, StateWalkInDocument, StateWalkInPhone, StateWalkInHeadcount, StateWalkInConfirm:
		b.handleWalkInStep(ctx, chatID, text, state)
	case StateShiftStaff, StateShiftDate:
		b.handleShiftStep(ctx, chatID, text, state)
	default:
		b.showMainMenu(ctx, chatID)
	}
}

func (b *Bot) showMainMenu(ctx context.Context, chatID int64) {
	s, err := b.session.Current(ctx)
	if err != nil {
		b.sendWithKeyboard(chatID,
			"🏖 Bienvenido al Balneario.\n\nInicia sesión o regístrate para reservar.",
			anonymousMenuKeyboard())
		return
	}

	b.sendWithKeyboard(chatID,
		fmt.Sprintf("🏖 Hola, %s. ¿Qué deseas hacer?", s.User.Name),
		mainMenuKeyboard(s.User))
}

func (b *Bot) handleLoginStep(ctx context.Context, chatID int64, text string, state *models.ChatState) {
	switch state.Step {
	case StateLoginEmail:
		email := strings.TrimSpace(text)
		if !strings.Contains(email, "@") {
			b.sendMessage(chatID, "⚠️ Ese correo no parece válido. Intenta de nuevo:")
			return
		}
		state.Data["email"] = email
		b.setState(ctx, chatID, StateLoginPassword, state.Data)
		b.sendWithKeyboard(chatID, "🔑 Escribe tu contraseña:", cancelKeyboard())

	case StateLoginPassword:
		user, err := b.backend.Login(ctx, state.Data["email"], text)
		if err != nil {
			b.sendMessage(chatID, b.errorMessage(err))
			b.setState(ctx, chatID, StateLoginEmail, nil)
			b.sendWithKeyboard(chatID, "📧 Escribe tu correo electrónico:", cancelKeyboard())
			return
		}

		b.clearState(ctx, chatID)
		b.sendWithKeyboard(chatID,
			fmt.Sprintf("✅ Sesión iniciada. Bienvenido, %s.", user.Name),
			mainMenuKeyboard(user))
	}
}

// handleForgotStep walks the account recovery: the backend mails a reset
// token to the given address, the user types it back with a new password.
func (b *Bot) handleForgotStep(ctx context.Context, chatID int64, text string, state *models.ChatState) {
	switch state.Step {
	case StateForgotEmail:
		email := strings.TrimSpace(text)
		if !strings.Contains(email, "@") {
			b.sendMessage(chatID, "⚠️ Ese correo no parece válido. Intenta de nuevo:")
			return
		}
		if err := b.backend.ForgotPassword(ctx, email); err != nil {
			b.sendMessage(chatID, b.errorMessage(err))
			return
		}
		b.setState(ctx, chatID, StateForgotToken, state.Data)
		b.sendWithKeyboard(chatID,
			"📨 Te enviamos un código de recuperación al correo.\n\n🔢 Escribe el código:",
			cancelKeyboard())

	case StateForgotToken:
		token := strings.TrimSpace(text)
		if token == "" {
			b.sendMessage(chatID, "⚠️ El código no puede estar vacío. Intenta de nuevo:")
			return
		}
		state.Data["token"] = token
		b.setState(ctx, chatID, StateForgotPassword, state.Data)
		b.sendWithKeyboard(chatID, "🔑 Elige una contraseña nueva:", cancelKeyboard())

	case StateForgotPassword:
		if err := b.backend.ResetPassword(ctx, state.Data["token"], text); err != nil {
			b.sendMessage(chatID, b.errorMessage(err))
			b.setState(ctx, chatID, StateForgotToken, nil)
			b.sendWithKeyboard(chatID, "🔢 Escribe el código de recuperación:", cancelKeyboard())
			return
		}

		b.clearState(ctx, chatID)
		b.sendWithKeyboard(chatID,
			"✅ Contraseña actualizada. Ahora inicia sesión.",
			anonymousMenuKeyboard())
	}
}

func (b *Bot) handleRegisterStep(ctx context.Context, chatID int64, text string, state *models.ChatState) {
	switch state.Step {
	case StateRegisterName:
		if len(strings.TrimSpace(text)) < 2 {
			b.sendMessage(chatID, "⚠️ El nombre es demasiado corto. Intenta de nuevo:")
			return
		}
		state.Data["name"] = strings.TrimSpace(text)
		b.setState(ctx, chatID, StateRegisterEmail, state.Data)
		b.sendMessage(chatID, "📧 Escribe tu correo electrónico:")

	case StateRegisterEmail:
		email := strings.TrimSpace(text)
		if !strings.Contains(email, "@") {
			b.sendMessage(chatID, "⚠️ Ese correo no parece válido. Intenta de nuevo:")
			return
		}
		state.Data["email"] = email
		b.setState(ctx, chatID, StateRegisterDocument, state.Data)
		b.sendMessage(chatID, "🪪 Escribe tu número de documento:")

	case StateRegisterDocument:
		state.Data["document"] = strings.TrimSpace(text)
		b.setState(ctx, chatID, StateRegisterPassword, state.Data)
		b.sendMessage(chatID, "🔑 Elige una contraseña:")

	case StateRegisterPassword:
		err := b.backend.Register(ctx, api.RegisterInput{
			Name:     state.Data["name"],
			Email:    state.Data["email"],
			Document: state.Data["document"],
			Password: text,
		})
		if err != nil {
			b.sendMessage(chatID, b.errorMessage(err))
			return
		}

		b.clearState(ctx, chatID)
		b.sendWithKeyboard(chatID,
			"✅ Registro completado. Ahora inicia sesión.",
			anonymousMenuKeyboard())
	}
}

func (b *Bot) showRates(chatID int64) {
	p := b.config.Pricing
	v := b.config.Venue
	catalog := b.config.ServiceCatalog()

	var sb strings.Builder
	sb.WriteString("💲 Tarifas por persona:\n\n")
	sb.WriteString(fmt.Sprintf("🏊 General diurno: %s\n", formatMoney(p.GeneralDay)))
	sb.WriteString(fmt.Sprintf("🌙 General nocturno: %s\n", formatMoney(p.GeneralNight)))
	sb.WriteString(fmt.Sprintf("🎉 Privada (L-V): %s · mínimo %d personas\n", formatMoney(p.PrivateWeekday), v.MinPrivateWeekday))
	sb.WriteString(fmt.Sprintf("🎉 Privada (S-D): %s · mínimo %d personas\n", formatMoney(p.PrivateWeekend), v.MinPrivateWeekend))
	sb.WriteString(fmt.Sprintf("\n➕ Cargo por no llegar al mínimo: %s (fijo)\n", formatMoney(p.MinimumSurcharge)))

	if len(catalog) > 0 {
		sb.WriteString("\n🛎 Servicios adicionales (por día):\n")
		for _, id := range []string{models.ServiceKitchen, models.ServiceRoom} {
			if svc, ok := catalog[id]; ok {
				sb.WriteString(fmt.Sprintf("• %s: %s\n", svc.Name, formatMoney(svc.DayRate)))
			}
		}
	}

	sb.WriteString(fmt.Sprintf("\n👥 Capacidad máxima: %d personas", v.Capacity))
	b.sendMessage(chatID, sb.String())
}

func (b *Bot) showStats(ctx context.Context, chatID int64) {
	reservations, err := b.backend.Reservations(ctx)
	if err != nil {
		b.sendMessage(chatID, b.errorMessage(err))
		return
	}

	stats := b.computeStats(reservations)
	b.sendMessage(chatID, stats)
}

func (b *Bot) publishReservationEvent(eventType string, r *models.Reservation, changedBy int64) {
	payload := events.ReservationEventPayload{
		ReservationID: r.ID,
		OwnerID:       r.OwnerID,
		Kind:          r.Kind,
		Status:        r.Status,
		DateStart:     r.DateStart,
		Headcount:     r.Headcount,
		TotalPrice:    r.TotalPrice,
		ChangedBy:     changedBy,
	}
	if err := b.eventBus.PublishJSON(eventType, payload); err != nil {
		b.logger.Error().Err(err).Str("event", eventType).Msg("publish event failed")
	}
}
