package report

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"shiftbook/internal/attendance"
)

const (
	TimesheetSheet  = "Timesheet"
	StatisticsSheet = "Statistics"
)

var (
	ErrNoRecords    = errors.New("report: no records in range")
	ErrInvalidRange = errors.New("report: range end is before its start")
)

// Exporter renders attendance data as an xlsx workbook.
type Exporter struct {
	catalog *attendance.Catalog
	logger  *zap.Logger
}

func NewExporter(catalog *attendance.Catalog, logger *zap.Logger) *Exporter {
	if catalog == nil {
		catalog = attendance.DefaultCatalog()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{catalog: catalog, logger: logger}
}

// Range is an inclusive span of ISO dates.
type Range struct {
	From string
	To   string
}

func (r Range) contains(date string) bool {
	return date >= r.From && date <= r.To
}

// +---------------------+
// |                     |
// |      Timesheet      |
// |                     |
// +---------------------+

// WriteTimesheet writes a workbook with two sheets. "Timesheet" has one row
// per record in the range, ordered by date, worker name and shift.
// "Statistics" has one row per worker with counts over the same range and
// the total worked time.
func (e *Exporter) WriteTimesheet(w io.Writer, ds attendance.Dataset, rng Range) error {
	if _, err := attendance.ParseDate(rng.From); err != nil {
		return err
	}
	if _, err := attendance.ParseDate(rng.To); err != nil {
		return err
	}
	if rng.To < rng.From {
		return ErrInvalidRange
	}

	names := make(map[string]attendance.Worker, len(ds.Workers))
	for _, wk := range ds.Workers {
		names[wk.ID] = wk
	}

	var records []attendance.WorkRecord
	for _, r := range ds.WorkRecords {
		if rng.contains(r.Date) {
			records = append(records, r)
		}
	}
	if len(records) == 0 {
		return ErrNoRecords
	}
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if na, nb := names[a.WorkerID].Name, names[b.WorkerID].Name; na != nb {
			return na < nb
		}
		return a.Shift < b.Shift
	})

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(TimesheetSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")
	if _, err := f.NewSheet(StatisticsSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	worked := make(map[string]int)
	e.writeHeader(f, TimesheetSheet, headerStyle, []string{
		"Date", "Worker", "Position", "Shift", "Status", "Arrival", "Departure", "Lunch (min)", "Worked", "Notes",
	})
	for i, r := range records {
		row := i + 2
		wk, ok := names[r.WorkerID]
		name := wk.Name
		if !ok {
			name = r.WorkerID
		}

		workedText := "-"
		if shift, err := e.catalog.Lookup(r.Shift); err != nil {
			e.logger.Warn("record with unknown shift", zap.String("record", r.ID), zap.String("shift", r.Shift))
		} else if wh, err := attendance.CalculateWorkedHours(r, shift); err != nil {
			e.logger.Warn("record with malformed time", zap.String("record", r.ID), zap.Error(err))
		} else {
			workedText = wh.String()
			worked[r.WorkerID] += wh.TotalMinutes
		}

		values := []any{
			r.Date, name, wk.Position, r.Shift, string(r.Status),
			dash(r.ArrivalTime), dash(r.DepartureTime), r.LunchMinutes(), workedText, r.Notes,
		}
		if err := f.SetSheetRow(TimesheetSheet, cell("A", row), &values); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
	}
	f.SetColWidth(TimesheetSheet, "A", "A", 12)
	f.SetColWidth(TimesheetSheet, "B", "C", 24)
	f.SetColWidth(TimesheetSheet, "D", "D", 14)
	f.SetColWidth(TimesheetSheet, "J", "J", 30)

	byWorker := make(map[string][]attendance.WorkRecord)
	for _, r := range records {
		byWorker[r.WorkerID] = append(byWorker[r.WorkerID], r)
	}
	e.writeHeader(f, StatisticsSheet, headerStyle, []string{
		"Worker", "Position", "Days", "Present", "Absent", "Late", "Attendance %", "Worked",
	})
	for i, wk := range ds.Workers {
		row := i + 2
		st := attendance.ComputeWorkerStats(byWorker[wk.ID])
		total := worked[wk.ID]
		values := []any{
			wk.Name, wk.Position, st.TotalDays, st.PresentDays, st.AbsentDays, st.LateDays, st.AttendanceRate,
			attendance.NewWorkedHours(total).String(),
		}
		if err := f.SetSheetRow(StatisticsSheet, cell("A", row), &values); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
	}
	f.SetColWidth(StatisticsSheet, "A", "B", 24)

	if err := f.Write(w); err != nil {
		e.logger.Error("write workbook failed", zap.Error(err))
		return fmt.Errorf("write workbook: %w", err)
	}

	e.logger.Info("timesheet exported",
		zap.String("from", rng.From),
		zap.String("to", rng.To),
		zap.Int("records", len(records)))
	return nil
}

func (e *Exporter) writeHeader(f *excelize.File, sheet string, style int, titles []string) {
	for i, title := range titles {
		name := cell(colName(i), 1)
		f.SetCellValue(sheet, name, title)
		f.SetCellStyle(sheet, name, name, style)
	}
}

// FileName is the suggested workbook name for a range.
func FileName(rng Range) string {
	if rng.From == rng.To {
		return fmt.Sprintf("timesheet_%s.xlsx", rng.From)
	}
	return fmt.Sprintf("timesheet_%s_%s.xlsx", rng.From, rng.To)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
