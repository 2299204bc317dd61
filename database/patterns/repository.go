// Package patterns persists and serves detected pattern records.
package patterns

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Stockmasterflex/legend-ai-scanner/database"
)

// APIVersion is reported by the status endpoint.
const APIVersion = "0.1.0"

// Repository handles database operations for pattern records.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new patterns repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// InitSchema creates or migrates the patterns table.
func (r *Repository) InitSchema() error {
	if err := r.db.AutoMigrate(&database.PatternRecord{}); err != nil {
		return fmt.Errorf("InitSchema: %w", err)
	}
	return nil
}

// Upsert writes the records, updating non-key columns on conflicts of
// (ticker, pattern, as_of). Re-persisting the same batch leaves the
// table unchanged.
func (r *Repository) Upsert(records []database.PatternRecord) error {
	if len(records) == 0 {
		return nil
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "ticker"}, {Name: "pattern"}, {Name: "as_of"}},
		DoUpdates: clause.AssignmentColumns([]string{"confidence", "rs", "price", "meta"}),
	}).Create(&records).Error
	if err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}
	return nil
}

// Page is one page of pattern rows plus the cursor for the next one.
type Page struct {
	Items      []database.PatternRecord `json:"items"`
	NextCursor string                   `json:"next_cursor,omitempty"`
}

// FetchPage returns patterns ordered by (as_of DESC, ticker ASC) using
// keyset pagination. A malformed cursor is treated as absent so stale
// bookmarks degrade to the first page instead of an error.
func (r *Repository) FetchPage(limit int, cursor string) (*Page, error) {
	if limit <= 0 {
		limit = 50
	}

	query := r.db.Model(&database.PatternRecord{}).
		Order("as_of DESC").Order("ticker ASC").Limit(limit)

	if after, ok := decodeCursor(cursor); ok {
		// Rows on the next page satisfy, under (as_of DESC, ticker ASC):
		// as_of < last OR (as_of = last AND ticker > last_ticker).
		query = query.Where("(as_of < ?) OR (as_of = ? AND ticker > ?)",
			after.AsOf, after.AsOf, after.Ticker)
	}

	var items []database.PatternRecord
	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("FetchPage: %w", err)
	}

	page := &Page{Items: items}
	if len(items) == limit {
		last := items[len(items)-1]
		page.NextCursor = encodeCursor(last.AsOf, last.Ticker)
	}
	return page, nil
}

// Status summarizes the store for the API and dashboard.
type Status struct {
	LastScanTime          *time.Time `json:"last_scan_time"`
	RowsTotal             int64      `json:"rows_total"`
	PatternsDailySpanDays *int       `json:"patterns_daily_span_days"`
	Version               string     `json:"version"`
}

// Status aggregates scan recency and row counts.
func (r *Repository) Status() (*Status, error) {
	var row struct {
		LastAsOf  *time.Time
		FirstAsOf *time.Time
		Total     int64
	}
	err := r.db.Model(&database.PatternRecord{}).
		Select("MAX(as_of) AS last_as_of, MIN(as_of) AS first_as_of, COUNT(*) AS total").
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("Status: %w", err)
	}

	status := &Status{
		LastScanTime: row.LastAsOf,
		RowsTotal:    row.Total,
		Version:      APIVersion,
	}
	if row.LastAsOf != nil && row.FirstAsOf != nil {
		span := int(row.LastAsOf.Sub(*row.FirstAsOf).Hours() / 24)
		status.PatternsDailySpanDays = &span
	}
	return status, nil
}
