package attendance

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// IDGenerator issues identifiers for new entities.
type IDGenerator interface {
	NewID() string
}

// uuid v7 ids sort by creation time
type uuidGenerator struct{}

func (uuidGenerator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Store owns workers and work records and writes every change through to
// its Repository.
type Store struct {
	mu      sync.Mutex
	repo    Repository
	catalog *Catalog
	clock   Clock
	ids     IDGenerator
	logger  *zap.Logger

	workers []Worker
	records []WorkRecord
	index   map[recordKey]int
}

// NewStore builds a Store. Nil collaborators fall back to defaults.
func NewStore(repo Repository, catalog *Catalog, clock Clock, ids IDGenerator, logger *zap.Logger) *Store {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if clock == nil {
		clock = realClock{}
	}
	if ids == nil {
		ids = uuidGenerator{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		repo:    repo,
		catalog: catalog,
		clock:   clock,
		ids:     ids,
		logger:  logger,
		index:   make(map[recordKey]int),
	}
}

// Catalog returns the shift catalog used by the store.
func (s *Store) Catalog() *Catalog {
	return s.catalog
}

// Load reads persisted state. A missing or corrupt worker collection is
// replaced by the default workers, and a corrupt record collection by an
// empty one; both replacements are persisted.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	workers, err := s.repo.LoadWorkers(ctx)
	if err != nil {
		if !errors.Is(err, ErrCorruptData) {
			return fmt.Errorf("load workers: %w", err)
		}
		s.logger.Warn("stored workers are corrupt, restoring defaults", zap.Error(err))
		workers = nil
	}
	if workers == nil {
		workers = defaultWorkers(s.clock.Now())
		if err := s.repo.SaveWorkers(ctx, workers); err != nil {
			return fmt.Errorf("save default workers: %w", err)
		}
	}

	records, err := s.repo.LoadRecords(ctx)
	if err != nil {
		if !errors.Is(err, ErrCorruptData) {
			return fmt.Errorf("load records: %w", err)
		}
		s.logger.Warn("stored work records are corrupt, starting empty", zap.Error(err))
		records = []WorkRecord{}
		if err := s.repo.SaveRecords(ctx, records); err != nil {
			return fmt.Errorf("reset records: %w", err)
		}
	}

	s.workers = workers
	s.records, s.index = s.buildIndex(records)
	s.logger.Debug("attendance loaded",
		zap.Int("workers", len(s.workers)),
		zap.Int("records", len(s.records)))
	return nil
}

// NewWorkerInput holds the fields of a worker to add.
type NewWorkerInput struct {
	Name     string
	Position string
	Phone    string
}

// AddWorker creates a worker. Name and position are required.
func (s *Store) AddWorker(ctx context.Context, in NewWorkerInput) (Worker, error) {
	name := strings.TrimSpace(in.Name)
	position := strings.TrimSpace(in.Position)
	if name == "" || position == "" {
		return Worker{}, ErrInvalidWorker
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w := Worker{
		ID:        s.ids.NewID(),
		Name:      name,
		Position:  position,
		Phone:     strings.TrimSpace(in.Phone),
		CreatedAt: s.clock.Now(),
	}

	next := append(slices.Clone(s.workers), w)
	if err := s.repo.SaveWorkers(ctx, next); err != nil {
		return Worker{}, fmt.Errorf("save workers: %w", err)
	}
	s.workers = next

	s.logger.Info("worker added", zap.String("id", w.ID), zap.String("name", w.Name))
	return w, nil
}

// DeleteWorker removes a worker together with all of its work records.
func (s *Store) DeleteWorker(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.workers, func(w Worker) bool { return w.ID == id })
	if idx < 0 {
		return fmt.Errorf("%q: %w", id, ErrWorkerNotFound)
	}

	workers := slices.Delete(slices.Clone(s.workers), idx, idx+1)
	records := make([]WorkRecord, 0, len(s.records))
	for _, r := range s.records {
		if r.WorkerID != id {
			records = append(records, r)
		}
	}
	removed := len(s.records) - len(records)

	if err := s.repo.SaveWorkers(ctx, workers); err != nil {
		return fmt.Errorf("save workers: %w", err)
	}
	if removed > 0 {
		if err := s.repo.SaveRecords(ctx, records); err != nil {
			return fmt.Errorf("save records: %w", err)
		}
	}

	s.workers = workers
	s.records, s.index = s.buildIndex(records)

	s.logger.Info("worker deleted", zap.String("id", id), zap.Int("records_removed", removed))
	return nil
}

// Workers returns all workers in insertion order.
func (s *Store) Workers() []Worker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.workers)
}

// Worker returns a single worker by id.
func (s *Store) Worker(id string) (Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.workers {
		if w.ID == id {
			return w, nil
		}
	}
	return Worker{}, fmt.Errorf("%q: %w", id, ErrWorkerNotFound)
}

// MarkInput describes one attendance mark. Empty time strings and nil
// pointers leave the existing value in place.
type MarkInput struct {
	WorkerID      string
	Date          string
	Shift         string
	Status        Status
	ArrivalTime   string
	DepartureTime string
	LunchBreak    *int
	Notes         *string
}

// MarkAttendance creates or updates the single record for the
// (worker, date, shift) slot.
func (s *Store) MarkAttendance(ctx context.Context, in MarkInput) (WorkRecord, error) {
	if !in.Status.Valid() {
		return WorkRecord{}, fmt.Errorf("%q: %w", in.Status, ErrInvalidStatus)
	}
	if _, err := ParseDate(in.Date); err != nil {
		return WorkRecord{}, err
	}
	shift, err := s.catalog.Lookup(in.Shift)
	if err != nil {
		return WorkRecord{}, err
	}
	for _, clock := range []string{in.ArrivalTime, in.DepartureTime} {
		if clock == "" {
			continue
		}
		if _, err := parseClock(clock); err != nil {
			return WorkRecord{}, err
		}
	}
	if in.LunchBreak != nil && *in.LunchBreak < 0 {
		return WorkRecord{}, fmt.Errorf("%d: %w", *in.LunchBreak, ErrInvalidLunch)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.ContainsFunc(s.workers, func(w Worker) bool { return w.ID == in.WorkerID }) {
		return WorkRecord{}, fmt.Errorf("%q: %w", in.WorkerID, ErrWorkerNotFound)
	}

	now := s.clock.Now()
	key := recordKey{workerID: in.WorkerID, date: in.Date, shift: shift.Name}
	records := slices.Clone(s.records)

	var rec WorkRecord
	if pos, ok := s.index[key]; ok {
		rec = mergeRecord(cloneRecord(records[pos]), in, now)
		records[pos] = rec
	} else {
		rec = WorkRecord{
			ID:            s.ids.NewID(),
			WorkerID:      in.WorkerID,
			Date:          in.Date,
			Shift:         shift.Name,
			Status:        in.Status,
			DepartureTime: in.DepartureTime,
			LunchBreak:    intPtr(DefaultLunchBreak),
			CreatedAt:     now,
		}
		if in.Status.ImpliesPresence() {
			rec.ArrivalTime = in.ArrivalTime
			if rec.ArrivalTime == "" {
				rec.ArrivalTime = FormatClock(now)
			}
		}
		if in.LunchBreak != nil {
			rec.LunchBreak = intPtr(*in.LunchBreak)
		}
		if in.Notes != nil {
			rec.Notes = *in.Notes
		}
		records = append(records, rec)
	}

	if err := s.repo.SaveRecords(ctx, records); err != nil {
		return WorkRecord{}, fmt.Errorf("save records: %w", err)
	}
	s.records, s.index = s.buildIndex(records)

	s.logger.Debug("attendance marked",
		zap.String("worker_id", rec.WorkerID),
		zap.String("date", rec.Date),
		zap.String("shift", rec.Shift),
		zap.String("status", string(rec.Status)))
	return cloneRecord(rec), nil
}

// explicit input > existing value > auto-stamped now for presence statuses
func mergeRecord(rec WorkRecord, in MarkInput, now time.Time) WorkRecord {
	rec.Status = in.Status
	switch {
	case in.ArrivalTime != "":
		rec.ArrivalTime = in.ArrivalTime
	case rec.ArrivalTime != "":
	case in.Status.ImpliesPresence():
		rec.ArrivalTime = FormatClock(now)
	}
	if in.DepartureTime != "" {
		rec.DepartureTime = in.DepartureTime
	}
	switch {
	case in.LunchBreak != nil:
		rec.LunchBreak = intPtr(*in.LunchBreak)
	case rec.LunchBreak == nil:
		rec.LunchBreak = intPtr(DefaultLunchBreak)
	}
	if in.Notes != nil {
		rec.Notes = *in.Notes
	}
	return rec
}

// Record returns the record for a slot, if any.
func (s *Store) Record(workerID, date, shift string) (WorkRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos, ok := s.index[s.keyFor(WorkRecord{WorkerID: workerID, Date: date, Shift: shift})]
	if !ok {
		return WorkRecord{}, false
	}
	return cloneRecord(s.records[pos]), true
}

// Records returns every work record.
func (s *Store) Records() []WorkRecord {
	return s.filter(func(WorkRecord) bool { return true })
}

// RecordsForWorker returns the records owned by a worker.
func (s *Store) RecordsForWorker(workerID string) []WorkRecord {
	return s.filter(func(r WorkRecord) bool { return r.WorkerID == workerID })
}

// RecordsOn returns the records of a single date.
func (s *Store) RecordsOn(date string) []WorkRecord {
	return s.filter(func(r WorkRecord) bool { return r.Date == date })
}

// RecordsBetween returns records dated within [from, to] inclusive.
func (s *Store) RecordsBetween(from, to string) []WorkRecord {
	return s.filter(func(r WorkRecord) bool { return r.Date >= from && r.Date <= to })
}

func (s *Store) filter(keep func(WorkRecord) bool) []WorkRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]WorkRecord, 0, len(s.records))
	for _, r := range s.records {
		if keep(r) {
			out = append(out, cloneRecord(r))
		}
	}
	return out
}

// Snapshot returns a copy of the whole dataset.
func (s *Store) Snapshot() Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := make([]WorkRecord, len(s.records))
	for i, r := range s.records {
		records[i] = cloneRecord(r)
	}
	return Dataset{Workers: slices.Clone(s.workers), WorkRecords: records}
}

// Replace overwrites the whole dataset and records the sync time. Nothing
// changes if persisting fails.
func (s *Store) Replace(ctx context.Context, ds Dataset) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	workers := slices.Clone(ds.Workers)
	if workers == nil {
		workers = []Worker{}
	}
	records, index := s.buildIndex(ds.WorkRecords)

	syncedAt := s.clock.Now()
	if err := s.repo.ReplaceAll(ctx, Dataset{Workers: workers, WorkRecords: records}, syncedAt); err != nil {
		return time.Time{}, fmt.Errorf("replace dataset: %w", err)
	}

	s.workers = workers
	s.records = records
	s.index = index

	s.logger.Info("dataset replaced",
		zap.Int("workers", len(workers)),
		zap.Int("records", len(records)))
	return syncedAt, nil
}

// Clear removes every worker, record and the last sync time.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("clear storage: %w", err)
	}
	s.workers = []Worker{}
	s.records = []WorkRecord{}
	s.index = make(map[recordKey]int)

	s.logger.Info("all data cleared")
	return nil
}

// LastSync returns the time of the last import or file export.
func (s *Store) LastSync(ctx context.Context) (time.Time, bool, error) {
	return s.repo.LastSync(ctx)
}

// TouchLastSync records now as the last sync time.
func (s *Store) TouchLastSync(ctx context.Context) (time.Time, error) {
	now := s.clock.Now()
	if err := s.repo.SetLastSync(ctx, now); err != nil {
		return time.Time{}, fmt.Errorf("save last sync: %w", err)
	}
	return now, nil
}

// keyFor maps legacy shift aliases onto the canonical shift name.
func (s *Store) keyFor(r WorkRecord) recordKey {
	if shift, err := s.catalog.Lookup(r.Shift); err == nil {
		r.Shift = shift.Name
	}
	return r.key()
}

// buildIndex copies records and indexes them by slot, rewriting legacy
// shift names to the catalog name. When several records share a slot the
// later one wins.
func (s *Store) buildIndex(in []WorkRecord) ([]WorkRecord, map[recordKey]int) {
	records := make([]WorkRecord, 0, len(in))
	index := make(map[recordKey]int, len(in))
	for _, r := range in {
		if shift, err := s.catalog.Lookup(r.Shift); err == nil {
			r.Shift = shift.Name
		}
		key := r.key()
		if pos, ok := index[key]; ok {
			s.logger.Warn("duplicate work record for slot, keeping the later one",
				zap.String("kept_id", r.ID),
				zap.String("dropped_id", records[pos].ID))
			records[pos] = cloneRecord(r)
			continue
		}
		index[key] = len(records)
		records = append(records, cloneRecord(r))
	}
	return records, index
}

func defaultWorkers(now time.Time) []Worker {
	return []Worker{
		{ID: "1", Name: "Іван Петренко", Position: "Комплектувальник", Phone: "+380501234567", CreatedAt: now},
		{ID: "2", Name: "Марія Коваленко", Position: "Комплектувальник", Phone: "+380671234567", CreatedAt: now},
		{ID: "3", Name: "Олександр Сидоренко", Position: "Старший комплектувальник", Phone: "+380931234567", CreatedAt: now},
	}
}
