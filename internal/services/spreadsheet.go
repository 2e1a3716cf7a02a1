package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Spreadsheet export of OpenAgenda events: a fixed French column layout
// shared by the XLSX and CSV writers.

type exportColumn struct {
	title string
	width float64
}

var exportColumns = []exportColumn{
	{"Titre", 30},
	{"Description", 50},
	{"Dates", 20},
	{"Heure de début", 20},
	{"Heure de fin", 20},
	{"Mode de participation", 30},
	{"Lieu", 30},
	{"Adresse", 30},
	{"Ville", 20},
	{"Latitude", 20},
	{"Longitude", 20},
	{"Mots-clés", 30},
	{"Agenda d'origine", 30},
	{"Image", 30},
}

// ExportHeaders returns the column titles in output order.
func ExportHeaders() []string {
	headers := make([]string, len(exportColumns))
	for i, col := range exportColumns {
		headers[i] = col.title
	}
	return headers
}

// FlattenEvents turns OpenAgenda events into export rows. Rows with an empty
// title are dropped, and near-identical listings are deduplicated on the
// lowercased (title, dates, description) natural key.
func FlattenEvents(events []AgendaEvent) [][]string {
	var rows [][]string
	seen := make(map[string]struct{})

	for _, event := range events {
		row := flattenEvent(event)
		if row[0] == "" {
			continue
		}
		key := strings.ToLower(row[0]) + "|" + strings.ToLower(row[2]) + "|" + strings.ToLower(row[1])
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		rows = append(rows, row)
	}
	return rows
}

func flattenEvent(event AgendaEvent) []string {
	row := make([]string, len(exportColumns))
	row[0] = event.Title["fr"]
	row[1] = event.Description["fr"]
	row[2] = event.DateRange["fr"]
	if event.LastTiming != nil {
		row[3] = formatTime(event.LastTiming.Begin)
		row[4] = formatTime(event.LastTiming.End)
	}
	if event.AttendanceMode != 0 {
		row[5] = strconv.Itoa(event.AttendanceMode)
	}
	if event.Location != nil {
		row[6] = event.Location.Name
		row[7] = event.Location.Address
		row[8] = event.Location.City
		if event.Location.Latitude != 0 {
			row[9] = strconv.FormatFloat(event.Location.Latitude, 'f', -1, 64)
		}
		if event.Location.Longitude != 0 {
			row[10] = strconv.FormatFloat(event.Location.Longitude, 'f', -1, 64)
		}
	}
	row[11] = strings.Join(event.Keywords["fr"], ", ")
	if event.OriginAgenda != nil {
		row[12] = event.OriginAgenda.Title
	}
	row[13] = event.Image.URL()
	return row
}

// formatTime renders an ISO 8601 timestamp as a 12-hour clock time. Strings
// that do not parse pass through unchanged.
func formatTime(iso string) string {
	if iso == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return iso
	}
	return t.Format("03:04 PM")
}

// WriteXLSX writes export rows to an Excel workbook with the styled header
// row and alternating row fill of the historical export.
func WriteXLSX(path string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Événements"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"483D8B"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	stripeStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"D3D3D3"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("create stripe style: %w", err)
	}

	for i, col := range exportColumns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("column name: %w", err)
		}
		cell := name + "1"
		if err := f.SetCellValue(sheet, cell, col.title); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
		if err := f.SetColWidth(sheet, name, name, col.width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("write cell: %w", err)
			}
			if r%2 == 0 {
				if err := f.SetCellStyle(sheet, cell, cell, stripeStyle); err != nil {
					return fmt.Errorf("style cell: %w", err)
				}
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// WriteCSV writes export rows, header first, to w.
func WriteCSV(w io.Writer, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ExportHeaders()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
