package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"shiftbook/internal/attendance"
	"shiftbook/internal/config"
	"shiftbook/internal/logger"
	"shiftbook/internal/report"
	"shiftbook/internal/storage"
	"shiftbook/internal/syncer"
)

var (
	errNoShift        = errors.New("no shift scheduled on that date")
	errChoiceRequired = errors.New("value required")
	errNotConfirmed   = errors.New("clear aborted, pass --yes to confirm")
)

type App struct {
	store    *attendance.Store
	sync     *syncer.Service
	exporter *report.Exporter
	logger   *zap.Logger
	closer   io.Closer

	out io.Writer
	in  io.Reader
	now func() time.Time
	// choose is nil when no terminal is attached
	choose func(prompt string, items []choice) (string, error)
}

func NewApp() *App {
	a := &App{
		logger: zap.NewNop(),
		out:    os.Stdout,
		in:     os.Stdin,
		now:    time.Now,
	}
	if isTerminal() {
		a.choose = menuChooser
	}
	return a
}

// Open loads the configuration and wires storage, logging and services.
func (a *App) Open(ctx context.Context, configPath string) error {
	cfg, err := config.Resolve(configPath)
	if err != nil {
		return err
	}

	log, err := logger.NewLogger(cfg.Log)
	if err != nil {
		return err
	}

	repo, err := storage.NewRepo(cfg.Storage.Path)
	if err != nil {
		return err
	}
	records := storage.NewAttendanceRepository(repo)

	store := attendance.NewStore(records, nil, nil, nil, log)
	if err := store.Load(ctx); err != nil {
		repo.Close()
		return err
	}

	a.attach(store, syncer.NewService(store, records, nil, cfg.Sync.AppName, log), report.NewExporter(store.Catalog(), log), log)
	a.closer = repo
	log.Debug("storage opened", zap.String("path", cfg.Storage.Path))
	return nil
}

func (a *App) attach(store *attendance.Store, sync *syncer.Service, exporter *report.Exporter, log *zap.Logger) {
	a.store = store
	a.sync = sync
	a.exporter = exporter
	a.logger = log
}

func (a *App) Opened() bool {
	return a.store != nil
}

func (a *App) Close() error {
	_ = a.logger.Sync()
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

func (a *App) today() string {
	return attendance.FormatDate(a.now())
}

// +---------------+
// |               |
// |    Workers    |
// |               |
// +---------------+

func (a *App) AddWorker(ctx context.Context, name, position, phone string) error {
	w, err := a.store.AddWorker(ctx, attendance.NewWorkerInput{Name: name, Position: position, Phone: phone})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Added worker: %s (%s)\n", w.Name, w.ID)
	return nil
}

func (a *App) ListWorkers() error {
	workers := a.store.Workers()
	if len(workers) == 0 {
		fmt.Fprintln(a.out, "No workers yet, use 'worker add' to create one")
		return nil
	}

	headers := []string{"ID", "Name", "Position", "Phone", "Days", "Present", "Rate"}
	var rows [][]string
	for _, w := range workers {
		st := attendance.ComputeWorkerStats(a.store.RecordsForWorker(w.ID))
		rows = append(rows, []string{
			w.ID,
			w.Name,
			w.Position,
			orDash(w.Phone),
			strconv.Itoa(st.TotalDays),
			strconv.Itoa(st.PresentDays),
			fmt.Sprintf("%d%%", st.AttendanceRate),
		})
	}

	footers := []string{"", "Total:", strconv.Itoa(len(workers))}
	PrintTable(a.out, headers, rows, footers)
	return nil
}

func (a *App) DeleteWorker(ctx context.Context, ref string) error {
	w, err := a.resolveWorker(ref)
	if err != nil {
		return err
	}
	if err := a.store.DeleteWorker(ctx, w.ID); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Deleted worker: %s\n", w.Name)
	return nil
}

// resolveWorker accepts a worker id or a case-insensitive name. With an
// empty reference the worker is picked from a menu.
func (a *App) resolveWorker(ref string) (attendance.Worker, error) {
	workers := a.store.Workers()

	if ref == "" {
		items := make([]choice, 0, len(workers))
		for _, w := range workers {
			items = append(items, choice{Label: fmt.Sprintf("%s (%s)", w.Name, w.Position), Value: w.ID})
		}
		picked, err := a.pick("Select worker", "worker", items)
		if err != nil {
			return attendance.Worker{}, err
		}
		ref = picked
	}

	for _, w := range workers {
		if w.ID == ref {
			return w, nil
		}
	}
	var found []attendance.Worker
	for _, w := range workers {
		if strings.EqualFold(w.Name, ref) {
			found = append(found, w)
		}
	}
	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return attendance.Worker{}, fmt.Errorf("%q: %w", ref, attendance.ErrWorkerNotFound)
	default:
		return attendance.Worker{}, fmt.Errorf("%q matches %d workers, use the id", ref, len(found))
	}
}

// pick asks through the menu when a terminal is attached and fails otherwise.
func (a *App) pick(prompt, flag string, items []choice) (string, error) {
	if a.choose == nil || len(items) == 0 {
		return "", fmt.Errorf("--%s: %w", flag, errChoiceRequired)
	}
	v, err := a.choose(prompt, items)
	if err != nil {
		return "", fmt.Errorf("--%s: %w", flag, err)
	}
	if v == "" {
		return "", fmt.Errorf("--%s: %w", flag, errChoiceRequired)
	}
	return v, nil
}

// +------------------+
// |                  |
// |    Attendance    |
// |                  |
// +------------------+

func (a *App) Mark(ctx context.Context, opts MarkOptions) error {
	w, err := a.resolveWorker(opts.Worker)
	if err != nil {
		return err
	}

	date := opts.Date
	if date == "" {
		date = a.today()
	}

	shift, err := a.resolveShift(date, opts.Shift)
	if err != nil {
		return err
	}

	rawStatus := opts.Status
	if rawStatus == "" {
		items := make([]choice, 0, len(attendance.Statuses()))
		for _, s := range attendance.Statuses() {
			items = append(items, choice{Label: string(s), Value: string(s)})
		}
		if rawStatus, err = a.pick("Select status", "status", items); err != nil {
			return err
		}
	}
	status, err := attendance.ParseStatus(rawStatus)
	if err != nil {
		return err
	}

	rec, err := a.store.MarkAttendance(ctx, attendance.MarkInput{
		WorkerID:      w.ID,
		Date:          date,
		Shift:         shift,
		Status:        status,
		ArrivalTime:   opts.Arrival,
		DepartureTime: opts.Departure,
		LunchBreak:    opts.Lunch,
		Notes:         opts.Notes,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Marked %s as %s for %s on %s\n", w.Name, rec.Status, rec.Shift, rec.Date)
	if sch, err := a.store.Catalog().Lookup(rec.Shift); err == nil {
		if wh, err := attendance.CalculateWorkedHours(rec, sch); err == nil && wh.TotalMinutes > 0 {
			fmt.Fprintf(a.out, "Worked: %s\n", wh)
		}
	}
	return nil
}

// resolveShift validates the named shift or, when omitted, takes the only
// shift of the day or asks for one.
func (a *App) resolveShift(date, name string) (string, error) {
	if name != "" {
		sch, err := a.store.Catalog().Lookup(name)
		if err != nil {
			return "", err
		}
		return sch.Name, nil
	}

	shifts, err := a.store.Catalog().ForDate(date)
	if err != nil {
		return "", err
	}
	switch len(shifts) {
	case 0:
		return "", fmt.Errorf("%s: %w", date, errNoShift)
	case 1:
		return shifts[0].Name, nil
	}

	items := make([]choice, 0, len(shifts))
	for _, s := range shifts {
		items = append(items, choice{Label: fmt.Sprintf("%s (%s-%s)", s.Name, s.Start, s.End), Value: s.Name})
	}
	return a.pick("Select shift", "shift", items)
}

// Day prints every worker's attendance for each shift of a date.
func (a *App) Day(date string) error {
	if date == "" {
		date = a.today()
	}
	shifts, err := a.store.Catalog().ForDate(date)
	if err != nil {
		return err
	}
	if len(shifts) == 0 {
		fmt.Fprintf(a.out, "No shifts scheduled on %s\n", date)
		return nil
	}

	workers := a.store.Workers()
	for _, sch := range shifts {
		fmt.Fprintf(a.out, "Shift - %s (%s-%s)\n", sch.Name, sch.Start, sch.End)

		headers := []string{"Worker", "Status", "Arrival", "Departure", "Lunch", "Worked", "Notes"}
		var rows [][]string
		total := 0

		for _, w := range workers {
			rec, ok := a.store.Record(w.ID, date, sch.Name)
			if !ok {
				rows = append(rows, []string{w.Name, "-", "-", "-", "-", "-", ""})
				continue
			}

			worked := "-"
			if wh, err := attendance.CalculateWorkedHours(rec, sch); err == nil {
				worked = wh.String()
				total += wh.TotalMinutes
			} else {
				a.logger.Warn("cannot compute worked hours", zap.String("record", rec.ID), zap.Error(err))
			}

			rows = append(rows, []string{
				w.Name,
				string(rec.Status),
				orDash(rec.ArrivalTime),
				orDash(rec.DepartureTime),
				strconv.Itoa(rec.LunchMinutes()),
				worked,
				rec.Notes,
			})
		}

		footers := []string{"", "", "", "", "Total:", attendance.NewWorkedHours(total).String(), ""}
		PrintTable(a.out, headers, rows, footers)
		fmt.Fprintln(a.out)
	}

	sum := attendance.Summarize(a.store.Snapshot(), date)
	fmt.Fprintf(a.out, "Present: %d  Absent: %d\n", sum.PresentOnDate, sum.AbsentOnDate)
	return nil
}

// Stats prints per-worker statistics, or the details of one worker.
func (a *App) Stats(ref string) error {
	if ref != "" {
		return a.workerStats(ref)
	}

	headers := []string{"Worker", "Days", "Present", "Absent", "Late", "Rate", "Worked"}
	var rows [][]string
	for _, w := range a.store.Workers() {
		records := a.store.RecordsForWorker(w.ID)
		st := attendance.ComputeWorkerStats(records)
		rows = append(rows, []string{
			w.Name,
			strconv.Itoa(st.TotalDays),
			strconv.Itoa(st.PresentDays),
			strconv.Itoa(st.AbsentDays),
			strconv.Itoa(st.LateDays),
			fmt.Sprintf("%d%%", st.AttendanceRate),
			a.workedText(records),
		})
	}
	PrintTable(a.out, headers, rows, nil)
	fmt.Fprintln(a.out)

	sum := attendance.Summarize(a.store.Snapshot(), a.today())
	fmt.Fprintf(a.out, "Workers: %d\n", sum.Workers)
	fmt.Fprintf(a.out, "Records: %d over %d days\n", sum.Records, sum.UniqueDays)
	fmt.Fprintf(a.out, "Today (%s): %d present, %d absent\n", sum.Date, sum.PresentOnDate, sum.AbsentOnDate)
	fmt.Fprintf(a.out, "Average attendance: %d%%\n", sum.AverageAttendanceRate)
	return nil
}

func (a *App) workerStats(ref string) error {
	w, err := a.resolveWorker(ref)
	if err != nil {
		return err
	}
	records := a.store.RecordsForWorker(w.ID)
	st := attendance.ComputeWorkerStats(records)

	fmt.Fprintf(a.out, "%s - %s\n", w.Name, w.Position)
	fmt.Fprintf(a.out, "Days: %d  Present: %d  Absent: %d  Late: %d  Rate: %d%%\n",
		st.TotalDays, st.PresentDays, st.AbsentDays, st.LateDays, st.AttendanceRate)
	fmt.Fprintf(a.out, "Worked: %s\n", a.workedText(records))
	return nil
}

func (a *App) workedText(records []attendance.WorkRecord) string {
	wh, err := attendance.SumWorked(records, a.store.Catalog())
	if err != nil {
		a.logger.Warn("cannot sum worked hours", zap.Error(err))
		return "-"
	}
	return wh.String()
}

func (a *App) Shifts() error {
	headers := []string{"Shift", "Start", "End", "Days"}
	var rows [][]string
	for _, s := range a.store.Catalog().Shifts() {
		rows = append(rows, []string{s.Name, s.Start, s.End, strings.Join(s.Days, ",")})
	}
	PrintTable(a.out, headers, rows, nil)
	return nil
}

// Report writes an xlsx timesheet for a period or explicit date range.
func (a *App) Report(opts ReportOptions) error {
	rng := report.Range{From: opts.From, To: opts.To}
	if rng.From == "" || rng.To == "" {
		period := opts.Period
		if period == "" {
			period = PeriodMonth
		}
		from, to, err := period.Range(a.now())
		if err != nil {
			return err
		}
		if rng.From == "" {
			rng.From = from
		}
		if rng.To == "" {
			rng.To = to
		}
	}

	path := opts.Output
	if path == "" {
		path = report.FileName(rng)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := a.exporter.WriteTimesheet(f, a.store.Snapshot(), rng); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	fmt.Fprintf(a.out, "Timesheet %s..%s written to %s\n", rng.From, rng.To, path)
	return nil
}

// +---------------------+
// |                     |
// |    Sync & Backup    |
// |                     |
// +---------------------+

func (a *App) SyncCode() error {
	code, err := a.sync.ExportCode()
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, code)
	return nil
}

// ImportCode applies a sync code. An empty code is read from stdin.
func (a *App) ImportCode(ctx context.Context, code string) error {
	if strings.TrimSpace(code) == "" {
		b, err := io.ReadAll(a.in)
		if err != nil {
			return fmt.Errorf("read code: %w", err)
		}
		code = string(b)
	}

	res, err := a.sync.ImportCode(ctx, code)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Imported %d workers and %d records\n", res.Workers, res.Records)
	return nil
}

func (a *App) Export(ctx context.Context, path string) error {
	if path == "" {
		path = syncer.BackupFileName(a.now())
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := a.sync.ExportFile(ctx, f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	fmt.Fprintf(a.out, "Backup written to %s\n", path)
	return nil
}

func (a *App) Import(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	res, err := a.sync.ImportFile(ctx, f)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Imported %d workers and %d records from %s\n", res.Workers, res.Records, path)
	return nil
}

func (a *App) SyncStatus(ctx context.Context) error {
	st, err := a.sync.Status(ctx)
	if err != nil {
		return err
	}

	last := "never"
	if st.LastSync != nil {
		last = st.LastSync.In(a.now().Location()).Format("2006-01-02 15:04")
	}

	fmt.Fprintf(a.out, "Workers:     %d\n", st.Workers)
	fmt.Fprintf(a.out, "Records:     %d\n", st.Records)
	fmt.Fprintf(a.out, "Days:        %d\n", st.UniqueDays)
	fmt.Fprintf(a.out, "Stored:      %d KiB\n", st.StoredKiB())
	fmt.Fprintf(a.out, "Last sync:   %s\n", last)
	return nil
}

// Clear wipes all data. Without confirm the user is asked through the menu.
func (a *App) Clear(ctx context.Context, confirm bool) error {
	if !confirm {
		answer, err := a.pick("Delete ALL workers and records?", "yes", []choice{
			{Label: "No", Value: "no"},
			{Label: "Yes, delete everything", Value: "yes"},
		})
		if err != nil || answer != "yes" {
			return errNotConfirmed
		}
	}

	if err := a.store.Clear(ctx); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "All data cleared")
	return nil
}
