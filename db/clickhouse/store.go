// Package clickhouse persists the calculation audit trail. Append-only
// columnar rows suit the workload: every row is one finished calculation,
// queries are recency scans and per-operation aggregates.
package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"

	"claimcalc/internal/audit"
)

// Config holds connection settings.
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Debug    bool
}

// DefaultConfig returns development defaults.
func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     9000,
		Database: "claimcalc",
		Username: "default",
		Password: "",
	}
}

// Store implements audit.Recorder on ClickHouse.
type Store struct {
	conn clickhouse.Conn
	cfg  *Config
}

var _ audit.Recorder = (*Store)(nil)

// NewStore opens a connection.
func NewStore(cfg *Config) (*Store, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: cfg.Debug,
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	return &Store{conn: conn, cfg: cfg}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

// Close closes the connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// InitSchema creates the audit table if it does not exist.
func (s *Store) InitSchema(ctx context.Context) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS calculation_audit (
			id          UUID,
			operation   LowCardinality(String),
			success     UInt8,
			error_code  LowCardinality(String),
			duration_ms Int64,
			input       String,
			output      String,
			created_at  DateTime64(3, 'UTC')
		)
		ENGINE = MergeTree
		PARTITION BY toYYYYMM(created_at)
		ORDER BY (operation, created_at)
	`
	if err := s.conn.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create calculation_audit: %w", err)
	}
	return nil
}

// Record inserts one finished calculation.
func (s *Store) Record(ctx context.Context, rec *audit.Record) error {
	query := `
		INSERT INTO calculation_audit (
			id, operation, success, error_code, duration_ms, input, output, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return s.conn.Exec(ctx, query,
		rec.ID,
		rec.Operation,
		boolToUInt8(rec.Success),
		rec.ErrorCode,
		rec.DurationMs,
		string(rec.Input),
		string(rec.Output),
		createdAt,
	)
}

// ListRecent returns the latest records, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]*audit.Record, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, operation, success, error_code, duration_ms, input, output, created_at
		FROM calculation_audit
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := s.conn.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit records: %w", err)
	}
	defer rows.Close()

	var records []*audit.Record
	for rows.Next() {
		var (
			rec     audit.Record
			success uint8
			input   string
			output  string
		)
		if err := rows.Scan(
			&rec.ID, &rec.Operation, &success, &rec.ErrorCode,
			&rec.DurationMs, &input, &output, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		rec.Success = success == 1
		rec.Input = []byte(input)
		rec.Output = []byte(output)
		records = append(records, &rec)
	}
	return records, nil
}

// CountByOperation aggregates record counts per operation since a cutoff.
func (s *Store) CountByOperation(ctx context.Context, since time.Time) (map[string]uint64, error) {
	query := `
		SELECT operation, count() AS n
		FROM calculation_audit
		WHERE created_at >= ?
		GROUP BY operation
	`
	rows, err := s.conn.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count audit records: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]uint64)
	for rows.Next() {
		var (
			op string
			n  uint64
		)
		if err := rows.Scan(&op, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[op] = n
	}
	return counts, nil
}

// GetRecord fetches a single record by calculation id.
func (s *Store) GetRecord(ctx context.Context, id uuid.UUID) (*audit.Record, error) {
	query := `
		SELECT id, operation, success, error_code, duration_ms, input, output, created_at
		FROM calculation_audit
		WHERE id = ?
		LIMIT 1
	`
	rows, err := s.conn.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit record: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil
	}
	var (
		rec     audit.Record
		success uint8
		input   string
		output  string
	)
	if err := rows.Scan(
		&rec.ID, &rec.Operation, &success, &rec.ErrorCode,
		&rec.DurationMs, &input, &output, &rec.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to scan audit record: %w", err)
	}
	rec.Success = success == 1
	rec.Input = []byte(input)
	rec.Output = []byte(output)
	return &rec, nil
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
