package api

import "time"

// APIKey grants a caller access to the verification endpoints.
type APIKey struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UsageEntry records one verification call for statistics. Only the
// outcome is kept; retrieved documents and extracted receipts are
// never persisted.
type UsageEntry struct {
	ID          string    `json:"id"`
	KeyID       string    `json:"key_id"`
	Institution string    `json:"institution"`
	Success     bool      `json:"success"`
	CreatedAt   time.Time `json:"created_at"`
}

// UsageStats is the aggregated view served to operators.
type UsageStats struct {
	Total         int            `json:"total"`
	Succeeded     int            `json:"succeeded"`
	Failed        int            `json:"failed"`
	ByInstitution map[string]int `json:"by_institution"`
}
