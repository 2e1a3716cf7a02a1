package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"festa-events-pipeline/internal/models"
)

// Warehouse is the columnar sink: a DuckDB database holding the evenement
// table. Implements EventSink.
type Warehouse struct {
	db    *sql.DB
	table string
}

// OpenWarehouse opens (or creates) the DuckDB database at path and ensures
// the evenement table exists. An empty path opens an in-memory database.
func OpenWarehouse(path string) (*Warehouse, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open warehouse: %w", err)
	}

	w := &Warehouse{db: db, table: "evenement"}
	if err := w.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return w, nil
}

// Close releases the underlying database handle.
func (w *Warehouse) Close() error {
	return w.db.Close()
}

func (w *Warehouse) ensureSchema() error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id          VARCHAR PRIMARY KEY,
		titre       VARCHAR NOT NULL,
		ville       VARCHAR,
		cp          VARCHAR,
		region      VARCHAR,
		latitude    VARCHAR,
		longitude   VARCHAR,
		date_debut  DATE,
		date_fin    DATE,
		description VARCHAR,
		motscles    VARCHAR,
		categorie   VARCHAR,
		source      VARCHAR,
		image_url   VARCHAR,
		ts_entree   TIMESTAMP
	)`, w.table)

	if _, err := w.db.Exec(ddl); err != nil {
		return fmt.Errorf("create %s table: %w", w.table, err)
	}
	return nil
}

// InsertEvent stores one adapted event as a warehouse row.
func (w *Warehouse) InsertEvent(ctx context.Context, event *models.Event) error {
	query := fmt.Sprintf(`INSERT INTO %s
		(id, titre, ville, cp, region, latitude, longitude, date_debut, date_fin,
		 description, motscles, categorie, source, image_url, ts_entree)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, w.table)

	_, err := w.db.ExecContext(ctx, query,
		event.ID, event.Title, event.City, event.PostalCode, event.Region,
		event.Latitude, event.Longitude, event.StartDate, event.EndDate,
		event.Description, strings.Join(event.Keywords, ", "), event.Category,
		event.SourceID, event.ImageURL, event.IngestedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// ExistingSourceIDs returns the set of source identifiers already stored,
// used by the pipeline's pre-adaptation dedup.
func (w *Warehouse) ExistingSourceIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := w.db.QueryContext(ctx, fmt.Sprintf("SELECT source FROM %s", w.table))
	if err != nil {
		return nil, fmt.Errorf("query source ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var source sql.NullString
		if err := rows.Scan(&source); err != nil {
			return nil, fmt.Errorf("scan source id: %w", err)
		}
		if source.Valid && source.String != "" {
			ids[source.String] = struct{}{}
		}
	}
	return ids, rows.Err()
}

// DeleteExpiredEvents removes events whose end date passed before today and
// that were not ingested today, and returns how many rows went away.
func (w *Warehouse) DeleteExpiredEvents(ctx context.Context) (int64, error) {
	today := time.Now().Format("2006-01-02")
	where := fmt.Sprintf("date_fin < DATE '%s' AND CAST(ts_entree AS DATE) < DATE '%s'", today, today)

	var before int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", w.table, where)
	if err := w.db.QueryRowContext(ctx, countQuery).Scan(&before); err != nil {
		return 0, fmt.Errorf("count expired events: %w", err)
	}

	if _, err := w.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s", w.table, where)); err != nil {
		return 0, fmt.Errorf("delete expired events: %w", err)
	}

	log.Printf("warehouse: deleted %d expired events", before)
	return before, nil
}

// CountEvents returns the number of stored events.
func (w *Warehouse) CountEvents(ctx context.Context) (int64, error) {
	var count int64
	err := w.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", w.table)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}

// ListEvents returns all stored events, used by the offline duplicate review.
func (w *Warehouse) ListEvents(ctx context.Context) ([]*models.Event, error) {
	query := fmt.Sprintf(`SELECT id, titre, ville, cp, region, latitude, longitude,
		CAST(date_debut AS VARCHAR), CAST(date_fin AS VARCHAR),
		description, motscles, categorie, source, image_url, ts_entree
		FROM %s`, w.table)

	rows, err := w.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		var e models.Event
		var lat, lon, desc, keywords, image sql.NullString
		if err := rows.Scan(&e.ID, &e.Title, &e.City, &e.PostalCode, &e.Region,
			&lat, &lon, &e.StartDate, &e.EndDate, &desc, &keywords,
			&e.Category, &e.SourceID, &image, &e.IngestedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Latitude = lat.String
		e.Longitude = lon.String
		e.Description = desc.String
		e.ImageURL = image.String
		if keywords.String != "" {
			e.Keywords = strings.Split(keywords.String, ", ")
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}
