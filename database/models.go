package database

import "time"

// PatternRecord is one persisted detection. The composite primary key
// (Ticker, Pattern, AsOf) makes repeated writes of the same detection
// idempotent: conflicting rows update their non-key columns with
// last-writer-wins semantics.
type PatternRecord struct {
	Ticker     string    `gorm:"primaryKey;size:16" json:"ticker"`
	Pattern    string    `gorm:"primaryKey;size:32" json:"pattern"`
	AsOf       time.Time `gorm:"primaryKey" json:"as_of"`
	Confidence float64   `gorm:"not null" json:"confidence"`
	RS         *float64  `gorm:"column:rs" json:"rs,omitempty"`
	Price      *float64  `json:"price,omitempty"`
	Meta       string    `gorm:"type:jsonb;default:'{}'" json:"meta"`
}

// TableName specifies the table name for PatternRecord.
func (PatternRecord) TableName() string {
	return "patterns"
}
