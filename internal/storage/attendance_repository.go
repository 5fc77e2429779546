package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"shiftbook/internal/attendance"
)

var _ attendance.Repository = (*AttendanceRepository)(nil)

// AttendanceRepository stores the attendance collections as JSON arrays in
// the key-value table.
type AttendanceRepository struct {
	kv *Repo
}

// NewAttendanceRepository wraps a Repo.
func NewAttendanceRepository(kv *Repo) *AttendanceRepository {
	return &AttendanceRepository{kv: kv}
}

func (r *AttendanceRepository) LoadWorkers(ctx context.Context) ([]attendance.Worker, error) {
	var workers []attendance.Worker
	if err := r.loadJSON(ctx, KeyWorkers, &workers); err != nil {
		return nil, err
	}
	return workers, nil
}

func (r *AttendanceRepository) LoadRecords(ctx context.Context) ([]attendance.WorkRecord, error) {
	var records []attendance.WorkRecord
	if err := r.loadJSON(ctx, KeyWorkRecords, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *AttendanceRepository) SaveWorkers(ctx context.Context, workers []attendance.Worker) error {
	return r.saveJSON(ctx, KeyWorkers, nonNil(workers))
}

func (r *AttendanceRepository) SaveRecords(ctx context.Context, records []attendance.WorkRecord) error {
	return r.saveJSON(ctx, KeyWorkRecords, nonNil(records))
}

func (r *AttendanceRepository) ReplaceAll(ctx context.Context, ds attendance.Dataset, syncedAt time.Time) error {
	workers, err := json.Marshal(nonNil(ds.Workers))
	if err != nil {
		return fmt.Errorf("encode workers: %w", err)
	}
	records, err := json.Marshal(nonNil(ds.WorkRecords))
	if err != nil {
		return fmt.Errorf("encode work records: %w", err)
	}

	return r.kv.SetMany(ctx, map[string]string{
		KeyWorkers:     string(workers),
		KeyWorkRecords: string(records),
		KeyLastSync:    syncedAt.UTC().Format(time.RFC3339Nano),
	})
}

func (r *AttendanceRepository) LastSync(ctx context.Context) (time.Time, bool, error) {
	raw, ok, err := r.kv.Get(ctx, KeyLastSync)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%s: %w", KeyLastSync, attendance.ErrCorruptData)
	}
	return t, true, nil
}

func (r *AttendanceRepository) SetLastSync(ctx context.Context, t time.Time) error {
	return r.kv.Set(ctx, KeyLastSync, t.UTC().Format(time.RFC3339Nano))
}

func (r *AttendanceRepository) Clear(ctx context.Context) error {
	return r.kv.Remove(ctx, KeyWorkers, KeyWorkRecords, KeyLastSync)
}

// StoredBytes reports how much space the attendance collections occupy.
func (r *AttendanceRepository) StoredBytes(ctx context.Context) (int64, error) {
	return r.kv.Size(ctx, KeyWorkers, KeyWorkRecords)
}

func (r *AttendanceRepository) loadJSON(ctx context.Context, key string, dst any) error {
	raw, ok, err := r.kv.Get(ctx, key)
	if err != nil || !ok {
		return err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("%s: %v: %w", key, err, attendance.ErrCorruptData)
	}
	return nil
}

func (r *AttendanceRepository) saveJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return r.kv.Set(ctx, key, string(b))
}

// nil slices would be stored as "null"
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
