// Package export renders booking requests as an xlsx workbook for hosts.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"venuebook/internal/models"
	"venuebook/internal/pricing"

	"github.com/xuri/excelize/v2"
)

const (
	bookingsSheet = "Bookings"
	summarySheet  = "Summary"
)

var bookingHeaders = []string{
	"Reference", "Venue", "Start date", "End date", "Start time", "End time",
	"Attendees", "Hours", "Price model", "Total", "Status", "Created",
}

// FileName names an export for the given period.
func FileName(from, to time.Time) string {
	if from.IsZero() && to.IsZero() {
		return "bookings.xlsx"
	}
	return fmt.Sprintf("bookings_%s_to_%s.xlsx", formatOrOpen(from), formatOrOpen(to))
}

func formatOrOpen(t time.Time) string {
	if t.IsZero() {
		return "open"
	}
	return models.FormatDate(t)
}

// Workbook builds the xlsx document. venueNames maps venue ids to display
// names; unknown ids are shown as is.
func Workbook(bookings []*models.BookingDetails, venueNames map[string]string, from, to time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(bookingsSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	// Заголовок периода
	_ = f.SetCellValue(bookingsSheet, "A1", fmt.Sprintf("Period: %s - %s", formatOrOpen(from), formatOrOpen(to)))
	lastCol, _ := excelize.ColumnNumberToName(len(bookingHeaders))
	_ = f.MergeCell(bookingsSheet, "A1", lastCol+"1")
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(bookingsSheet, "A1", "A1", titleStyle)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, h := range bookingHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(bookingsSheet, cell, h)
		_ = f.SetCellStyle(bookingsSheet, cell, cell, headerStyle)
	}

	sorted := append([]*models.BookingDetails(nil), bookings...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].StartDate == sorted[j].StartDate {
			return sorted[i].StartTime < sorted[j].StartTime
		}
		return sorted[i].StartDate < sorted[j].StartDate
	})

	type venueTotal struct {
		count int
		hours float64
		total float64
	}
	totals := map[string]*venueTotal{}

	for i, b := range sorted {
		name := venueName(venueNames, b.VenueID)
		row := []any{
			b.Reference, name, b.StartDate, b.EndDate, b.StartTime, b.EndTime,
			b.Attendees, b.TotalHours, string(b.PriceModel), b.TotalCost, b.Status,
			b.CreatedAt.UTC().Format("2006-01-02 15:04"),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+3)
		if err := f.SetSheetRow(bookingsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+3, err)
		}

		vt, ok := totals[name]
		if !ok {
			vt = &venueTotal{}
			totals[name] = vt
		}
		vt.count++
		vt.hours += b.TotalHours
		vt.total += b.TotalCost
	}

	_ = f.SetColWidth(bookingsSheet, "A", "A", 38)
	_ = f.SetColWidth(bookingsSheet, "B", "B", 25)
	_ = f.SetColWidth(bookingsSheet, "C", lastCol, 14)

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	header := []any{"Venue", "Bookings", "Hours", "Total"}
	_ = f.SetSheetRow(summarySheet, "A1", &header)
	_ = f.SetCellStyle(summarySheet, "A1", "D1", headerStyle)

	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)
	for i, name := range names {
		vt := totals[name]
		row := []any{name, vt.count, vt.hours, pricing.FormatCurrency(vt.total)}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		_ = f.SetSheetRow(summarySheet, cell, &row)
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 25)
	_ = f.SetColWidth(summarySheet, "B", "D", 14)

	_ = f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes data under dir and returns the file path.
func Save(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}

func venueName(names map[string]string, id string) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return id
}
