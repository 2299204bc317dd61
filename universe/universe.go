// Package universe loads the symbol universe the daily scan iterates.
package universe

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strings"
)

// Fallback is the universe used when no CSV file is available.
var Fallback = []string{"AAPL", "MSFT", "NVDA", "AMZN", "TSLA"}

// Load reads symbols from a CSV file. Cell layout is free-form: every
// non-empty cell is a symbol. Symbols are trimmed, uppercased and
// de-duplicated preserving first occurrence. A missing file falls back
// to the built-in list; a malformed file is an error.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("⚠️  Universe file %s not found, using fallback list (%d symbols)", path, len(Fallback))
			return append([]string(nil), Fallback...), nil
		}
		return nil, fmt.Errorf("open universe file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // rows may have ragged lengths

	var symbols []string
	seen := make(map[string]bool)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse universe file: %w", err)
	}
	for _, row := range rows {
		for _, cell := range row {
			sym := strings.ToUpper(strings.TrimSpace(cell))
			if sym == "" || seen[sym] {
				continue
			}
			seen[sym] = true
			symbols = append(symbols, sym)
		}
	}
	if len(symbols) == 0 {
		log.Printf("⚠️  Universe file %s is empty, using fallback list", path)
		return append([]string(nil), Fallback...), nil
	}
	return symbols, nil
}
