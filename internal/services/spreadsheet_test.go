package services

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func exportableEvent(title string) AgendaEvent {
	return AgendaEvent{
		UID:         1,
		Title:       map[string]string{"fr": title},
		Description: map[string]string{"fr": "Marché et bal populaire"},
		DateRange:   map[string]string{"fr": "Du 20 au 21 juillet"},
		LastTiming: &EventTiming{
			Begin: "2026-07-20T14:00:00+02:00",
			End:   "2026-07-20T23:30:00+02:00",
		},
		AttendanceMode: 1,
		Location: &EventLocation{
			Name:      "Place du marché",
			Address:   "1 place du Marché",
			City:      "Gérardmer",
			Latitude:  48.07,
			Longitude: 6.87,
		},
		Keywords:     map[string][]string{"fr": {"fête", "terroir"}},
		OriginAgenda: &OriginAgenda{UID: 100, Title: "Fêtes des Vosges"},
		Image:        &EventImage{Filename: "abc123.jpg"},
	}
}

func TestExportHeaders(t *testing.T) {
	headers := ExportHeaders()
	if len(headers) != 14 {
		t.Fatalf("Expected 14 columns, got %d", len(headers))
	}
	if headers[0] != "Titre" || headers[13] != "Image" {
		t.Errorf("Unexpected header order: %v", headers)
	}
}

func TestFlattenEvents(t *testing.T) {
	events := []AgendaEvent{exportableEvent("Fête de la myrtille")}

	rows := FlattenEvents(events)
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}

	row := rows[0]
	if len(row) != len(ExportHeaders()) {
		t.Fatalf("Expected %d cells, got %d", len(ExportHeaders()), len(row))
	}
	if row[0] != "Fête de la myrtille" {
		t.Errorf("Expected title cell, got %q", row[0])
	}
	if row[3] != "02:00 PM" || row[4] != "11:30 PM" {
		t.Errorf("Expected 12-hour times, got %q and %q", row[3], row[4])
	}
	if row[8] != "Gérardmer" {
		t.Errorf("Expected city cell, got %q", row[8])
	}
	if row[11] != "fête, terroir" {
		t.Errorf("Expected joined keywords, got %q", row[11])
	}
	if row[13] != ImageBucketURL+"abc123.jpg" {
		t.Errorf("Expected image url cell, got %q", row[13])
	}
}

func TestFlattenEventsDropsEmptyTitles(t *testing.T) {
	events := []AgendaEvent{
		exportableEvent("Fête de la myrtille"),
		{Title: map[string]string{"fr": ""}},
		{Title: nil},
	}

	if rows := FlattenEvents(events); len(rows) != 1 {
		t.Errorf("Expected untitled events dropped, got %d rows", len(rows))
	}
}

func TestFlattenEventsDeduplicates(t *testing.T) {
	// Same listing published twice, casing aside
	a := exportableEvent("Fête de la myrtille")
	b := exportableEvent("FÊTE DE LA MYRTILLE")
	distinct := exportableEvent("Guinguette du lac")

	rows := FlattenEvents([]AgendaEvent{a, b, distinct})
	if len(rows) != 2 {
		t.Errorf("Expected 2 rows after dedup, got %d", len(rows))
	}
}

func TestFlattenEventsSparseEvent(t *testing.T) {
	// Only a title: everything optional must come out empty, not panic
	rows := FlattenEvents([]AgendaEvent{{Title: map[string]string{"fr": "Fête minimale"}}})
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	for i, cell := range rows[0][1:] {
		if cell != "" {
			t.Errorf("Expected empty cell %d, got %q", i+1, cell)
		}
	}
}

func TestFormatTime(t *testing.T) {
	if got := formatTime("2026-07-20T09:05:00+02:00"); got != "09:05 AM" {
		t.Errorf("Expected 09:05 AM, got %q", got)
	}
	if got := formatTime(""); got != "" {
		t.Errorf("Expected empty passthrough, got %q", got)
	}
	if got := formatTime("pas une heure"); got != "pas une heure" {
		t.Errorf("Expected unparsable passthrough, got %q", got)
	}
}

func TestWriteCSV(t *testing.T) {
	rows := FlattenEvents([]AgendaEvent{exportableEvent("Fête de la myrtille")})

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read CSV back: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected header plus 1 row, got %d records", len(records))
	}
	if records[0][0] != "Titre" {
		t.Errorf("Expected header row first, got %v", records[0])
	}
	if records[1][0] != "Fête de la myrtille" {
		t.Errorf("Expected event row, got %v", records[1])
	}
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evenements.xlsx")
	rows := FlattenEvents([]AgendaEvent{exportableEvent("Fête de la myrtille")})

	if err := WriteXLSX(path, rows); err != nil {
		t.Fatalf("WriteXLSX failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("Failed to reopen workbook: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue("Événements", "A1")
	if err != nil {
		t.Fatalf("GetCellValue failed: %v", err)
	}
	if got != "Titre" {
		t.Errorf("Expected header in A1, got %q", got)
	}
	got, err = f.GetCellValue("Événements", "A2")
	if err != nil {
		t.Fatalf("GetCellValue failed: %v", err)
	}
	if got != "Fête de la myrtille" {
		t.Errorf("Expected title in A2, got %q", got)
	}
}
