// Package audit defines the calculation audit trail consumed by storage
// backends. The calculators themselves never touch it; finished envelopes
// are handed over at the serving layer.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Record is one finished calculation, success or failure.
type Record struct {
	ID         uuid.UUID       `json:"id"`
	Operation  string          `json:"operation"`
	Success    bool            `json:"success"`
	ErrorCode  string          `json:"error_code"`
	DurationMs int64           `json:"duration_ms"`
	Input      json.RawMessage `json:"input"`
	Output     json.RawMessage `json:"output"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Recorder persists calculation records.
type Recorder interface {
	Record(ctx context.Context, rec *Record) error
	ListRecent(ctx context.Context, limit int) ([]*Record, error)
	Ping(ctx context.Context) error
	Close() error
}
