package audit

import "context"

// Noop is the recorder used when no audit store is configured.
type Noop struct{}

var _ Recorder = Noop{}

func (Noop) Record(ctx context.Context, rec *Record) error { return nil }

func (Noop) ListRecent(ctx context.Context, limit int) ([]*Record, error) {
	return nil, nil
}

func (Noop) Ping(ctx context.Context) error { return nil }

func (Noop) Close() error { return nil }
