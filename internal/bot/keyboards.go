package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"balneario/internal/models"
	"balneario/internal/session"
)

// Menu button labels. The dispatch in handleMessage matches on these
// exact strings.
const (
	btnLogin        = "🔑 Iniciar sesión"
	btnRegister     = "📝 Registrarme"
	btnForgot       = "🤔 Olvidé mi contraseña"
	btnReserve      = "📋 Nueva reserva"
	btnTicket       = "🎫 Comprar entrada"
	btnMyBookings   = "📊 Mis reservas"
	btnRates        = "💲 Tarifas"
	btnWalkIn       = "🧾 Venta presencial"
	btnAllBookings  = "🗂 Todas las reservas"
	btnShifts       = "👷 Turnos"
	btnExport       = "📤 Exportar"
	btnStats        = "📈 Estadísticas"
	btnLogout       = "🚪 Cerrar sesión"
	btnCancel       = "❌ Cancelar"
	btnBack         = "⬅️ Volver"
	btnConfirm      = "✅ Confirmar"
	btnSkipServices = "Sin servicios"
	btnDone         = "Listo"

	btnKindGeneral = "🏊 General"
	btnKindPrivate = "🎉 Privada"

	btnScheduleDay   = "☀️ Diurno"
	btnScheduleNight = "🌙 Nocturno"

	btnPeriodFull      = "Día completo"
	btnPeriodMorning   = "Mañana"
	btnPeriodAfternoon = "Tarde"

	btnSingleDay = "Un solo día"
)

func anonymousMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnLogin),
			tgbotapi.NewKeyboardButton(btnRegister),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnRates),
			tgbotapi.NewKeyboardButton(btnForgot),
		),
	)
}

// mainMenuKeyboard builds the menu from the capability set, evaluated
// once per navigation.
func mainMenuKeyboard(user models.User) tgbotapi.ReplyKeyboardMarkup {
	caps := session.Capabilities(user)

	var rows [][]tgbotapi.KeyboardButton

	var first []tgbotapi.KeyboardButton
	if caps[session.CapCreateReservation] {
		first = append(first, tgbotapi.NewKeyboardButton(btnReserve))
	}
	if caps[session.CapCreateTicket] {
		first = append(first, tgbotapi.NewKeyboardButton(btnTicket))
	}
	if len(first) > 0 {
		rows = append(rows, first)
	}

	second := []tgbotapi.KeyboardButton{tgbotapi.NewKeyboardButton(btnMyBookings)}
	if caps[session.CapViewAllReservations] {
		second = append(second, tgbotapi.NewKeyboardButton(btnAllBookings))
	}
	rows = append(rows, second)

	var staffRow []tgbotapi.KeyboardButton
	if caps[session.CapRegisterWalkIn] {
		staffRow = append(staffRow, tgbotapi.NewKeyboardButton(btnWalkIn))
	}
	if caps[session.CapManageShifts] {
		staffRow = append(staffRow, tgbotapi.NewKeyboardButton(btnShifts))
	}
	if len(staffRow) > 0 {
		rows = append(rows, staffRow)
	}

	var adminRow []tgbotapi.KeyboardButton
	if caps[session.CapExportReservations] {
		adminRow = append(adminRow, tgbotapi.NewKeyboardButton(btnExport))
		adminRow = append(adminRow, tgbotapi.NewKeyboardButton(btnStats))
	}
	if len(adminRow) > 0 {
		rows = append(rows, adminRow)
	}

	rows = append(rows, []tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButton(btnRates),
		tgbotapi.NewKeyboardButton(btnLogout),
	})

	return tgbotapi.NewReplyKeyboard(rows...)
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)),
	)
}

func kindKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnKindGeneral),
			tgbotapi.NewKeyboardButton(btnKindPrivate),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)),
	)
}

func scheduleKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnScheduleDay),
			tgbotapi.NewKeyboardButton(btnScheduleNight),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)),
	)
}

func periodKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnPeriodFull),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnPeriodMorning),
			tgbotapi.NewKeyboardButton(btnPeriodAfternoon),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)),
	)
}

func singleDayKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnSingleDay)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)),
	)
}

func confirmKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnConfirm),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
}

// servicesKeyboard toggles services; selected ones carry a check mark.
func servicesKeyboard(selected map[string]bool) tgbotapi.ReplyKeyboardMarkup {
	label := func(id, name string) string {
		if selected[id] {
			return "✅ " + name
		}
		return name
	}
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(label(models.ServiceKitchen, serviceText[models.ServiceKitchen])),
			tgbotapi.NewKeyboardButton(label(models.ServiceRoom, serviceText[models.ServiceRoom])),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnDone),
			tgbotapi.NewKeyboardButton(btnSkipServices),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)),
	)
}
