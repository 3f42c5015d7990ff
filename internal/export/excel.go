package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"schedly/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	sheetName          = "Appointments"
	serviceUnavailable = "service unavailable"
	headerRow          = 2
)

var columns = []struct {
	title string
	width float64
}{
	{"Date", 12},
	{"Time", 8},
	{"Service", 25},
	{"Customer", 20},
	{"Phone", 16},
	{"Email", 25},
	{"Status", 12},
	{"Payment", 10},
	{"Method", 10},
	{"Notes", 40},
}

// FileName returns the workbook name for an export taken at now.
func FileName(now time.Time) string {
	return fmt.Sprintf("appointments_%s.xlsx", now.Format("2006-01-02_150405"))
}

// AppointmentsWorkbook writes one row per appointment to an .xlsx file at
// path. Appointments are written in the order given.
func AppointmentsWorkbook(path string, appointments []*models.Appointment, services []*models.Service) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error creating export directory: %w", err)
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Appointments (%d)", len(appointments)))
	lastCol, _ := excelize.ColumnNumberToName(len(columns))
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		_ = f.SetCellValue(sheetName, cell, col.title)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
		name, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheetName, name, name, col.width)
	}

	paidStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#C6EFCE"}, Pattern: 1},
	})

	for i, a := range appointments {
		row := headerRow + 1 + i
		title := serviceUnavailable
		for _, s := range services {
			if s.ID == a.ServiceID {
				title = s.Title
				break
			}
		}

		values := []interface{}{
			a.Date, a.Time, title, a.CustomerName, a.CustomerPhone, a.CustomerEmail,
			string(a.Status), string(a.PaymentStatus), string(a.PaymentMethod), a.Notes,
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("error writing row %d: %w", row, err)
		}
		if a.IsPaid() {
			payCell, _ := excelize.CoordinatesToCellName(8, row)
			_ = f.SetCellStyle(sheetName, payCell, payCell, paidStyle)
		}
	}

	_ = f.DeleteSheet("Sheet1")

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}
	return nil
}
