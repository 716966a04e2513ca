// Package export renders booking listings as spreadsheets.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/campushub/resource-hub/internal/application"
)

// BookingsSheet is the name of the worksheet written by WriteBookingsXLSX.
const BookingsSheet = "Bookings"

var bookingHeaders = []string{"ID", "Resource", "Requester", "Start", "End", "Status", "Recurrence", "Notes", "Created"}

// WriteBookingsXLSX writes bookings as a single-sheet workbook to w. Status is
// the display status, so finished approved bookings read as completed.
func WriteBookingsXLSX(w io.Writer, bookings []application.BookingView) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(BookingsSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}

	header := make([]any, len(bookingHeaders))
	for i, h := range bookingHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(BookingsSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(bookingHeaders), 1)
	if err := f.SetCellStyle(BookingsSheet, "A1", last, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, b := range bookings {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			b.ID,
			b.ResourceTitle,
			b.UserName,
			formatTime(b.Start),
			formatTime(b.End),
			string(b.DisplayStatus),
			string(b.Recurrence.Normalize()),
			b.Notes,
			formatTime(b.CreatedAt),
		}
		if err := f.SetSheetRow(BookingsSheet, cell, &row); err != nil {
			return fmt.Errorf("write booking %s: %w", b.ID, err)
		}
	}

	_ = f.SetColWidth(BookingsSheet, "A", "C", 24)
	_ = f.SetColWidth(BookingsSheet, "D", "E", 22)
	_ = f.SetColWidth(BookingsSheet, "H", "H", 40)
	_ = f.SetColWidth(BookingsSheet, "I", "I", 22)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04")
}
