package export

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"balneario/internal/config"
	"balneario/internal/models"
)

func newExporter(t *testing.T) *Exporter {
	t.Helper()
	logger := zerolog.Nop()
	return New(config.ExportConfig{Path: t.TempDir()}, &logger)
}

func TestExportReservations(t *testing.T) {
	exporter := newExporter(t)

	path, err := exporter.ExportReservations([]*models.Reservation{
		{
			ID:        1,
			Kind:      models.KindPrivate,
			DateStart: time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC),
			DateEnd:   time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC),
			Schedule:  models.ScheduleDay,
			Period:    models.PeriodFull,
			Headcount: 15,
			Services:  []string{models.ServiceKitchen},
			BasePrice: 750000, ServicesCost: 50000, TotalPrice: 800000,
			Status: models.StatusConfirmed,
		},
	})
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	kind, err := f.GetCellValue("Reservas", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Privada", kind)

	days, err := f.GetCellValue("Reservas", "E2")
	require.NoError(t, err)
	assert.Equal(t, "2", days)

	status, err := f.GetCellValue("Reservas", "M2")
	require.NoError(t, err)
	assert.Equal(t, "Confirmada", status)
}

func TestExportTickets(t *testing.T) {
	exporter := newExporter(t)

	path, err := exporter.ExportTickets([]*models.Ticket{
		{
			ID:         7,
			Date:       time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC),
			Schedule:   models.ScheduleDay,
			Period:     models.PeriodMorning,
			Headcount:  3,
			TotalPrice: 15000,
			Status:     models.StatusConfirmed,
			WalkIn:     true,
			Customer:   models.WalkInCustomer{Name: "Pedro", Document: "123"},
		},
	})
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	walkIn, err := f.GetCellValue("Entradas", "G2")
	require.NoError(t, err)
	assert.Equal(t, "Sí", walkIn)

	schedule, err := f.GetCellValue("Entradas", "C2")
	require.NoError(t, err)
	assert.Equal(t, "Diurno (mañana)", schedule)
}

func TestExportEmptyListStillWritesFile(t *testing.T) {
	exporter := newExporter(t)

	path, err := exporter.ExportReservations(nil)
	require.NoError(t, err)
	assert.FileExists(t, path)
}
