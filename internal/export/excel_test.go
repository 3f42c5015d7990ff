package export

import (
	"path/filepath"
	"testing"
	"time"

	"schedly/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestAppointmentsWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "appointments.xlsx")
	services := []*models.Service{{ID: "s1", Title: "Haircut"}}
	appointments := []*models.Appointment{
		{ID: "a1", ServiceID: "s1", CustomerName: "Ann", Date: "2030-01-01", Time: "10:00", Status: models.StatusScheduled, PaymentStatus: models.PaymentPaid, PaymentMethod: models.PaymentMethodCash},
		{ID: "a2", ServiceID: "gone", CustomerName: "Bo", Date: "2030-01-02", Time: "11:00", Status: models.StatusCancelled, PaymentStatus: models.PaymentPending, Notes: "call first"},
	}

	require.NoError(t, AppointmentsWorkbook(path, appointments, services))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetName}, f.GetSheetList())

	title, _ := f.GetCellValue(sheetName, "A1")
	assert.Equal(t, "Appointments (2)", title)

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Date", rows[1][0])
	assert.Equal(t, "Notes", rows[1][9])
	assert.Equal(t, []string{"2030-01-01", "10:00", "Haircut", "Ann", "", "", "scheduled", "paid", "cash"}, rows[2][:9])
	assert.Equal(t, "service unavailable", rows[3][2])
	assert.Equal(t, "call first", rows[3][9])
}

func TestFileName(t *testing.T) {
	now := time.Date(2030, 3, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, "appointments_2030-03-04_050607.xlsx", FileName(now))
}
