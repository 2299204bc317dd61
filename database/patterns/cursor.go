package patterns

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

// cursorPayload is the opaque bookmark handed to API clients. It pins
// the sort key of the last row served so the next page resumes after
// it regardless of concurrent inserts.
type cursorPayload struct {
	AsOfISO string `json:"as_of_iso"`
	Ticker  string `json:"ticker"`
}

// cursorKey is the decoded form used in the keyset predicate.
type cursorKey struct {
	AsOf   time.Time
	Ticker string
}

func encodeCursor(asOf time.Time, ticker string) string {
	payload, err := json.Marshal(cursorPayload{
		AsOfISO: asOf.UTC().Format(time.RFC3339Nano),
		Ticker:  ticker,
	})
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(payload)
}

// decodeCursor parses an opaque cursor. Any malformed input reports
// false, which callers treat as "no cursor".
func decodeCursor(cursor string) (cursorKey, bool) {
	if cursor == "" {
		return cursorKey{}, false
	}
	raw, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return cursorKey{}, false
	}
	var payload cursorPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return cursorKey{}, false
	}
	if payload.AsOfISO == "" || payload.Ticker == "" {
		return cursorKey{}, false
	}
	asOf, err := time.Parse(time.RFC3339Nano, payload.AsOfISO)
	if err != nil {
		return cursorKey{}, false
	}
	return cursorKey{AsOf: asOf, Ticker: payload.Ticker}, true
}
