// Package export writes reservation and ticket reports as xlsx files.
// Headings stay in Spanish because the files go straight to the venue's
// administration.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"balneario/internal/config"
	"balneario/internal/models"
)

type Exporter struct {
	path   string
	logger *zerolog.Logger
}

func New(cfg config.ExportConfig, logger *zerolog.Logger) *Exporter {
	return &Exporter{path: cfg.Path, logger: logger}
}

var statusLabels = map[string]string{
	models.StatusPending:             "Pendiente",
	models.StatusConfirmed:           "Confirmada",
	models.StatusCancellationPending: "Cancelación pendiente",
	models.StatusCancelled:           "Cancelada",
	models.StatusCompleted:           "Completada",
}

var kindLabels = map[string]string{
	models.KindGeneral: "General",
	models.KindPrivate: "Privada",
}

var serviceLabels = map[string]string{
	models.ServiceKitchen: "Cocina",
	models.ServiceRoom:    "Cuarto",
}

// ExportReservations writes one row per reservation and returns the file path.
func (e *Exporter) ExportReservations(reservations []*models.Reservation) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Reservas"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"ID", "Tipo", "Inicio", "Fin", "Días", "Horario", "Personas",
		"Servicios", "Precio base", "Servicios $", "Cargo adicional", "Total", "Estado",
	}
	writeHeaderRow(f, sheetName, headers)

	for i, r := range reservations {
		row := i + 2
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.ID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), kindLabels[r.Kind])
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.DateStart.Format("02.01.2006"))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.DateEnd.Format("02.01.2006"))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), r.Days())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), scheduleLabel(r.Schedule, r.Period))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), r.Headcount)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), serviceList(r.Services))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), r.BasePrice)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("J%d", row), r.ServicesCost)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("K%d", row), r.Surcharge)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("L%d", row), r.TotalPrice)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("M%d", row), statusLabels[r.Status])
	}

	_ = f.SetColWidth(sheetName, "A", "A", 8)
	_ = f.SetColWidth(sheetName, "B", "F", 14)
	_ = f.SetColWidth(sheetName, "G", "G", 10)
	_ = f.SetColWidth(sheetName, "H", "H", 22)
	_ = f.SetColWidth(sheetName, "I", "L", 16)
	_ = f.SetColWidth(sheetName, "M", "M", 22)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("reservas_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(e.path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	e.logger.Info().Str("file_path", filePath).Int("rows", len(reservations)).Msg("reservations export created")
	return filePath, nil
}

// ExportTickets writes one row per general-entry sale.
func (e *Exporter) ExportTickets(tickets []*models.Ticket) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Entradas"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"ID", "Fecha", "Horario", "Personas", "Total", "Estado", "Presencial", "Cliente", "Documento",
	}
	writeHeaderRow(f, sheetName, headers)

	for i, t := range tickets {
		row := i + 2
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), t.ID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), t.Date.Format("02.01.2006"))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), scheduleLabel(t.Schedule, t.Period))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), t.Headcount)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), t.TotalPrice)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), statusLabels[t.Status])
		_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), boolToSiNo(t.WalkIn))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), t.Customer.Name)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), t.Customer.Document)
	}

	_ = f.SetColWidth(sheetName, "A", "A", 8)
	_ = f.SetColWidth(sheetName, "B", "G", 14)
	_ = f.SetColWidth(sheetName, "H", "H", 24)
	_ = f.SetColWidth(sheetName, "I", "I", 16)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("entradas_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(e.path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	e.logger.Info().Str("file_path", filePath).Int("rows", len(tickets)).Msg("tickets export created")
	return filePath, nil
}

func writeHeaderRow(f *excelize.File, sheetName string, headers []string) {
	style, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, style)
	}
}

func scheduleLabel(schedule, period string) string {
	if schedule == models.ScheduleNight {
		return "Nocturno"
	}
	switch period {
	case models.PeriodMorning:
		return "Diurno (mañana)"
	case models.PeriodAfternoon:
		return "Diurno (tarde)"
	default:
		return "Diurno"
	}
}

func serviceList(services []string) string {
	if len(services) == 0 {
		return "-"
	}
	labels := make([]string, 0, len(services))
	for _, svc := range services {
		if label, ok := serviceLabels[svc]; ok {
			labels = append(labels, label)
		} else {
			labels = append(labels, svc)
		}
	}
	return strings.Join(labels, ", ")
}

func boolToSiNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}
