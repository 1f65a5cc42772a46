package api

import (
	"time"

	"balneario/internal/models"
)

// The backend speaks a Spanish dialect with inconsistent casing between
// endpoints (camelCase on create, snake_case on read). Every translation
// to and from the canonical models lives in this file.

const wireDate = "2006-01-02"

var statusToWire = map[string]string{
	models.StatusPending:             "pendiente",
	models.StatusConfirmed:           "confirmada",
	models.StatusCancellationPending: "cancelacion_pendiente",
	models.StatusCancelled:           "cancelada",
	models.StatusCompleted:           "completada",
}

var statusFromWire = map[string]string{
	"pendiente":             models.StatusPending,
	"confirmada":            models.StatusConfirmed,
	"cancelacion_pendiente": models.StatusCancellationPending,
	"cancelada":             models.StatusCancelled,
	"completada":            models.StatusCompleted,
}

var scheduleToWire = map[string]string{
	models.ScheduleDay:   "diurno",
	models.ScheduleNight: "nocturno",
}

var scheduleFromWire = map[string]string{
	"diurno":   models.ScheduleDay,
	"nocturno": models.ScheduleNight,
}

var periodToWire = map[string]string{
	models.PeriodFull:      "completa",
	models.PeriodMorning:   "manana",
	models.PeriodAfternoon: "tarde",
}

var periodFromWire = map[string]string{
	"completa": models.PeriodFull,
	"manana":   models.PeriodMorning,
	"tarde":    models.PeriodAfternoon,
}

var kindToWireID = map[string]int{
	models.KindGeneral: 1,
	models.KindPrivate: 2,
}

var serviceToWire = map[string]string{
	models.ServiceKitchen: "cocina",
	models.ServiceRoom:    "cuarto",
}

var serviceFromWire = map[string]string{
	"cocina": models.ServiceKitchen,
	"cuarto": models.ServiceRoom,
}

// reservaWire is the read shape of GET /api/reservas.
type reservaWire struct {
	ID             int64    `json:"id"`
	Tipo           string   `json:"tipo"`
	FechaInicio    string   `json:"fecha_inicio"`
	FechaFin       string   `json:"fecha_fin"`
	Horario        string   `json:"horario"`
	Jornada        string   `json:"jornada"`
	Personas       int      `json:"personas"`
	Servicios      []string `json:"servicios"`
	PrecioBase     int64    `json:"precio_base"`
	PrecioServicio int64    `json:"precio_servicios"`
	CargoAdicional int64    `json:"cargo_adicional"`
	PrecioTotal    int64    `json:"precio_total"`
	Estado         string   `json:"estado"`
	Observaciones  string   `json:"observaciones"`
	ClienteID      int64    `json:"cliente_id"`
	CreatedAt      string   `json:"created_at"`
	UpdatedAt      string   `json:"updated_at"`
}

// crearReservaRequest is the create shape of POST /api/reservas. The
// backend expects camelCase here.
type crearReservaRequest struct {
	TipoReservaID  int      `json:"tipoReservaId"`
	FechaInicio    string   `json:"fechaInicio"`
	FechaFin       string   `json:"fechaFin"`
	HorarioInicio  string   `json:"horarioInicio"`
	HorarioFin     string   `json:"horarioFin"`
	Personas       int      `json:"personas"`
	Servicios      []string `json:"servicios"`
	Observaciones  string   `json:"observaciones,omitempty"`
	Documento      string   `json:"documento,omitempty"`
	ClienteNombre  string   `json:"clienteNombre,omitempty"`
	ClienteEmail   string   `json:"clienteEmail,omitempty"`
	PrecioBase     int64    `json:"precioBase"`
	CargoAdicional int64    `json:"cargoAdicional"`
	PrecioTotal    int64    `json:"precioTotal"`
	Estado         string   `json:"estado"`
	ClienteID      int64    `json:"clienteId,omitempty"`
}

type entradaWire struct {
	ID          int64  `json:"id"`
	Fecha       string `json:"fecha"`
	Horario     string `json:"horario"`
	Jornada     string `json:"jornada"`
	Personas    int    `json:"numero_personas"`
	PrecioTotal int64  `json:"precio_total"`
	Estado      string `json:"estado"`
	Presencial  bool   `json:"es_presencial"`
	Cliente     struct {
		Nombre    string `json:"nombre"`
		Documento string `json:"documento"`
		Telefono  string `json:"telefono"`
	} `json:"cliente_presencial"`
	ClienteID int64  `json:"cliente_id"`
	CreatedAt string `json:"created_at"`
}

type crearEntradaRequest struct {
	Tipo              string             `json:"tipo"`
	Fecha             string             `json:"fecha"`
	Horario           string             `json:"horario"`
	Jornada           string             `json:"jornada"`
	NumeroPersonas    int                `json:"numeroPersonas"`
	EsPresencial      bool               `json:"esPresencial"`
	ClientePresencial *clientePresencial `json:"clientePresencial,omitempty"`
	PrecioTotal       int64              `json:"precioTotal"`
	Estado            string             `json:"estado"`
}

type clientePresencial struct {
	Nombre    string `json:"nombre"`
	Documento string `json:"documento"`
	Telefono  string `json:"telefono"`
}

type ocupacionWire struct {
	Disponible          bool `json:"disponible"`
	Ocupacion           int  `json:"ocupacion"`
	BloqueadoPorPrivada bool `json:"bloqueadoPorPrivada"`
}

type pagoWire struct {
	ID        int64  `json:"id"`
	ReservaID int64  `json:"reserva_id"`
	Metodo    string `json:"metodo_pago"`
	Monto     int64  `json:"monto"`
	CreatedAt string `json:"created_at"`
}

type crearPagoRequest struct {
	ReservaID  int64  `json:"reservaId"`
	MetodoPago string `json:"metodo_pago"`
}

type userWire struct {
	ID        int64  `json:"id"`
	Nombre    string `json:"nombre"`
	Email     string `json:"email"`
	Documento string `json:"documento"`
	Role      string `json:"role"`
}

type crearTurnoRequest struct {
	PersonalID int64  `json:"personalId"`
	Fecha      string `json:"fecha"`
}

type turnoWire struct {
	ID         int64  `json:"id"`
	PersonalID int64  `json:"personal_id"`
	Fecha      string `json:"fecha"`
}

var wireUserRoles = map[string]string{
	"administrador": models.RoleAdmin,
	"personal":      models.RoleStaff,
	"cliente":       models.RoleCustomer,
}

func parseWireDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	// Some endpoints return full timestamps, others bare dates.
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse(wireDate, s); err == nil {
		return t
	}
	return time.Time{}
}

func (w *reservaWire) toModel() *models.Reservation {
	r := &models.Reservation{
		ID:           w.ID,
		DateStart:    parseWireDate(w.FechaInicio),
		DateEnd:      parseWireDate(w.FechaFin),
		Schedule:     scheduleFromWire[w.Horario],
		Period:       periodFromWire[w.Jornada],
		Headcount:    w.Personas,
		BasePrice:    w.PrecioBase,
		ServicesCost: w.PrecioServicio,
		Surcharge:    w.CargoAdicional,
		TotalPrice:   w.PrecioTotal,
		Status:       statusFromWire[w.Estado],
		Observations: w.Observaciones,
		OwnerID:      w.ClienteID,
		CreatedAt:    parseWireDate(w.CreatedAt),
		UpdatedAt:    parseWireDate(w.UpdatedAt),
	}

	switch w.Tipo {
	case "privada":
		r.Kind = models.KindPrivate
	default:
		r.Kind = models.KindGeneral
	}

	for _, svc := range w.Servicios {
		if id, ok := serviceFromWire[svc]; ok {
			r.Services = append(r.Services, id)
		}
	}
	return r
}

func (w *entradaWire) toModel() *models.Ticket {
	t := &models.Ticket{
		ID:         w.ID,
		Date:       parseWireDate(w.Fecha),
		Schedule:   scheduleFromWire[w.Horario],
		Period:     periodFromWire[w.Jornada],
		Headcount:  w.Personas,
		TotalPrice: w.PrecioTotal,
		Status:     statusFromWire[w.Estado],
		WalkIn:     w.Presencial,
		OwnerID:    w.ClienteID,
		CreatedAt:  parseWireDate(w.CreatedAt),
	}
	t.Customer = models.WalkInCustomer{
		Name:     w.Cliente.Nombre,
		Document: w.Cliente.Documento,
		Phone:    w.Cliente.Telefono,
	}
	if t.Headcount > 0 {
		t.UnitPrice = t.TotalPrice / int64(t.Headcount)
	}
	return t
}

func (w *pagoWire) toModel() *models.Payment {
	return &models.Payment{
		ID:            w.ID,
		ReservationID: w.ReservaID,
		Method:        w.Metodo,
		Amount:        w.Monto,
		CreatedAt:     parseWireDate(w.CreatedAt),
	}
}

func (w *userWire) toModel() *models.User {
	role, ok := wireUserRoles[w.Role]
	if !ok {
		role = models.RoleCustomer
	}
	return &models.User{
		ID:       w.ID,
		Name:     w.Nombre,
		Email:    w.Email,
		Document: w.Documento,
		Role:     role,
	}
}

func (w *ocupacionWire) toModel() *models.Occupancy {
	return &models.Occupancy{
		Available:        w.Disponible,
		Count:            w.Ocupacion,
		BlockedByPrivate: w.BloqueadoPorPrivada,
	}
}

// scheduleWindow returns the access window sent on create.
func scheduleWindow(schedule, period string) (string, string) {
	if schedule == models.ScheduleNight {
		return models.NightOpen, models.NightClose
	}
	switch period {
	case models.PeriodMorning:
		return models.DayOpen, models.MorningClose
	case models.PeriodAfternoon:
		return models.AfternoonOpen, models.DayClose
	default:
		return models.DayOpen, models.DayClose
	}
}
