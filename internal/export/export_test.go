package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"venuebook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWorkbook(t *testing.T) {
	bookings := []*models.BookingDetails{
		{Reference: "b", VenueID: "hall", StartDate: "2025-11-14", EndDate: "2025-11-14", StartTime: "10:00", EndTime: "12:00", Attendees: 5, TotalHours: 2, TotalCost: 270, PriceModel: models.PriceModelHourly, Status: "requested"},
		{Reference: "a", VenueID: "hall", StartDate: "2025-11-12", EndDate: "2025-11-12", StartTime: "14:00", EndTime: "17:00", Attendees: 10, TotalHours: 3, TotalCost: 380, PriceModel: models.PriceModelHourly, Status: "forwarded"},
		{Reference: "c", VenueID: "loft", StartDate: "2025-11-13", EndDate: "2025-11-13", StartTime: "09:00", EndTime: "18:00", Attendees: 40, TotalHours: 9, TotalCost: 1150, PriceModel: models.PriceModelFixed, Status: "requested"},
	}

	from := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	data, err := Workbook(bookings, map[string]string{"hall": "Garden Hall"}, from, time.Time{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{bookingsSheet, summarySheet}, f.GetSheetList())

	title, err := f.GetCellValue(bookingsSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Period: 2025-11-01 - open", title)

	rows, err := f.GetRows(bookingsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "Reference", rows[1][0])
	// sorted by start date
	assert.Equal(t, "a", rows[2][0])
	assert.Equal(t, "Garden Hall", rows[2][1])
	assert.Equal(t, "c", rows[3][0])
	assert.Equal(t, "loft", rows[3][1])
	assert.Equal(t, "b", rows[4][0])

	summary, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, []string{"Garden Hall", "2", "5", "GH₵650.00"}, summary[1])
	assert.Equal(t, "loft", summary[2][0])
}

func TestWorkbookEmpty(t *testing.T) {
	data, err := Workbook(nil, nil, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestFileNameAndSave(t *testing.T) {
	assert.Equal(t, "bookings.xlsx", FileName(time.Time{}, time.Time{}))
	assert.Equal(t, "bookings_2025-11-01_to_2025-11-30.xlsx",
		FileName(time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC)))

	dir := filepath.Join(t.TempDir(), "exports")
	path, err := Save(dir, "../escape.xlsx", []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "escape.xlsx"), path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "data", string(got))
}
