package service

import (
	"fmt"
	"io"

	"bookvideolink/internal/models"

	"github.com/xuri/excelize/v2"
)

const scheduleSheet = "Bookings"

var courtScheduleHeaders = []string{"Date", "Start", "End", "Court", "Hearing type", "Appointment", "Prison", "Room", "Prisoner number", "Video link", "Status"}

var probationScheduleHeaders = []string{"Date", "Start", "End", "Probation team", "Meeting type", "Appointment", "Prison", "Room", "Prisoner number", "Video link", "Status"}

// WriteScheduleXLSX renders schedule rows as a single sheet workbook.
func WriteScheduleXLSX(w io.Writer, bookingType models.BookingType, title string, items []models.ScheduleItem) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(scheduleSheet)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headers := courtScheduleHeaders
	if bookingType == models.BookingTypeProbation {
		headers = probationScheduleHeaders
	}

	_ = f.SetCellValue(scheduleSheet, "A1", title)
	titleStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	_ = f.SetCellStyle(scheduleSheet, "A1", "A1", titleStyle)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(scheduleSheet, cell, h)
		_ = f.SetCellStyle(scheduleSheet, cell, cell, headerStyle)
	}

	for r, item := range items {
		row := []any{
			item.AppointmentDate,
			item.StartTime,
			item.EndTime,
			item.AgencyDescription(),
			hearingDescription(item),
			item.AppointmentTypeDescription,
			item.PrisonName,
			item.PrisonLocDesc,
			item.PrisonerNumber,
			item.VideoURL,
			item.StatusCode,
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+3)
		if err := f.SetSheetRow(scheduleSheet, cell, &row); err != nil {
			return fmt.Errorf("error writing row %d: %w", r+3, err)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.SetColWidth(scheduleSheet, "A", lastCol, 18)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

func hearingDescription(item models.ScheduleItem) string {
	if item.BookingType == models.BookingTypeProbation {
		return item.ProbationMeetingTypeDescription
	}
	return item.HearingTypeDescription
}
