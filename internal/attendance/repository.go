package attendance

import (
	"context"
	"time"
)

// Repository persists the attendance collections.
//
// Load methods return (nil, nil) when a collection has never been stored and
// an error wrapping ErrCorruptData when the stored value cannot be decoded.
type Repository interface {
	LoadWorkers(ctx context.Context) ([]Worker, error)
	LoadRecords(ctx context.Context) ([]WorkRecord, error)
	SaveWorkers(ctx context.Context, workers []Worker) error
	SaveRecords(ctx context.Context, records []WorkRecord) error
	// ReplaceAll stores both collections and the sync time atomically.
	ReplaceAll(ctx context.Context, ds Dataset, syncedAt time.Time) error
	LastSync(ctx context.Context) (time.Time, bool, error)
	SetLastSync(ctx context.Context, t time.Time) error
	Clear(ctx context.Context) error
}
