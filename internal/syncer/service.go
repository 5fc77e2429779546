package syncer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"shiftbook/internal/attendance"
)

// Store is the part of attendance.Store the sync service relies on.
type Store interface {
	Snapshot() attendance.Dataset
	Replace(ctx context.Context, ds attendance.Dataset) (time.Time, error)
	LastSync(ctx context.Context) (time.Time, bool, error)
	TouchLastSync(ctx context.Context) (time.Time, error)
}

// Sizer reports the stored size of the dataset.
type Sizer interface {
	StoredBytes(ctx context.Context) (int64, error)
}

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// Service exports and imports the whole dataset. Imports always replace the
// current state; a rejected payload leaves it untouched.
type Service struct {
	store   Store
	sizer   Sizer
	clock   Clock
	appName string
	logger  *zap.Logger
}

// NewService builds a Service. sizer and clock may be nil.
func NewService(store Store, sizer Sizer, clock Clock, appName string, logger *zap.Logger) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, sizer: sizer, clock: clock, appName: appName, logger: logger}
}

// Result describes an applied import.
type Result struct {
	Workers  int
	Records  int
	SyncedAt time.Time
}

// Status summarizes the local dataset for the sync screen.
type Status struct {
	Workers     int
	Records     int
	UniqueDays  int
	StoredBytes int64
	LastSync    *time.Time
}

// StoredKiB is the stored size rounded to whole KiB.
func (s Status) StoredKiB() int64 {
	return (s.StoredBytes + 512) / 1024
}

func (s *Service) document() Document {
	return NewDocument(s.store.Snapshot(), s.clock.Now(), s.appName)
}

// ExportCode returns the current dataset as a text sync code.
func (s *Service) ExportCode() (string, error) {
	doc := s.document()
	code, err := EncodeCode(doc)
	if err != nil {
		return "", err
	}
	s.logger.Info("sync code generated",
		zap.Int("workers", len(doc.Workers)),
		zap.Int("records", len(doc.WorkRecords)),
		zap.Int("length", len(code)))
	return code, nil
}

// ImportCode replaces the dataset with the one carried by a sync code.
func (s *Service) ImportCode(ctx context.Context, code string) (Result, error) {
	doc, err := DecodeCode(code)
	if err != nil {
		s.logger.Warn("sync code rejected", zap.Error(err))
		return Result{}, err
	}
	return s.apply(ctx, doc)
}

// ExportFile writes a backup document and records the sync time.
func (s *Service) ExportFile(ctx context.Context, w io.Writer) error {
	doc := s.document()
	if err := WriteDocument(w, doc); err != nil {
		return err
	}
	if _, err := s.store.TouchLastSync(ctx); err != nil {
		return err
	}
	s.logger.Info("backup exported",
		zap.Int("workers", len(doc.Workers)),
		zap.Int("records", len(doc.WorkRecords)))
	return nil
}

// ImportFile replaces the dataset with a backup document.
func (s *Service) ImportFile(ctx context.Context, r io.Reader) (Result, error) {
	doc, err := ReadDocument(r)
	if err != nil {
		s.logger.Warn("backup file rejected", zap.Error(err))
		return Result{}, err
	}
	return s.apply(ctx, doc)
}

func (s *Service) apply(ctx context.Context, doc Document) (Result, error) {
	syncedAt, err := s.store.Replace(ctx, doc.Dataset())
	if err != nil {
		return Result{}, fmt.Errorf("apply import: %w", err)
	}
	// duplicate slots collapse on replace, so count what the store kept
	kept := s.store.Snapshot()
	res := Result{Workers: len(kept.Workers), Records: len(kept.WorkRecords), SyncedAt: syncedAt}
	s.logger.Info("dataset imported",
		zap.Int("workers", res.Workers),
		zap.Int("records", res.Records),
		zap.Time("exported_at", doc.Timestamp))
	return res, nil
}

// Status reports counts, stored size and the last sync time.
func (s *Service) Status(ctx context.Context) (Status, error) {
	ds := s.store.Snapshot()
	sum := attendance.Summarize(ds, "")
	st := Status{Workers: sum.Workers, Records: sum.Records, UniqueDays: sum.UniqueDays}

	if s.sizer != nil {
		n, err := s.sizer.StoredBytes(ctx)
		if err != nil {
			return Status{}, err
		}
		st.StoredBytes = n
	}

	last, ok, err := s.store.LastSync(ctx)
	switch {
	case errors.Is(err, attendance.ErrCorruptData):
		s.logger.Warn("stored last sync time is corrupt, reporting never synced", zap.Error(err))
		ok = false
	case err != nil:
		return Status{}, err
	}
	if ok {
		st.LastSync = &last
	}
	return st, nil
}

// BackupFileName is the default file name for a backup taken at t.
func BackupFileName(t time.Time) string {
	return fmt.Sprintf("atlant_backup_%s.json", t.Format("2006-01-02"))
}
