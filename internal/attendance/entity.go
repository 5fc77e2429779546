package attendance

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"

	// DefaultLunchBreak is applied when a record carries no lunch break.
	DefaultLunchBreak = 60
)

// Status is the attendance state of a work record.
type Status string

const (
	StatusPresent   Status = "present"
	StatusAbsent    Status = "absent"
	StatusLate      Status = "late"
	StatusSickLeave Status = "sick-leave"
	StatusVacation  Status = "vacation"
)

// legacy labels written by the browser version of the tracker
var legacyStatuses = map[string]Status{
	"присутній":  StatusPresent,
	"відсутній":  StatusAbsent,
	"запізнення": StatusLate,
	"лікарняний": StatusSickLeave,
	"відпустка":  StatusVacation,
}

// Statuses lists every status in display order.
func Statuses() []Status {
	return []Status{StatusPresent, StatusAbsent, StatusLate, StatusSickLeave, StatusVacation}
}

// ParseStatus resolves a canonical or legacy status label.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if s.Valid() {
		return s, nil
	}
	if legacy, ok := legacyStatuses[raw]; ok {
		return legacy, nil
	}
	return "", fmt.Errorf("%q: %w", raw, ErrInvalidStatus)
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusSickLeave, StatusVacation:
		return true
	default:
		return false
	}
}

// ImpliesPresence is true for statuses that stamp an arrival time.
func (s Status) ImpliesPresence() bool {
	return s == StatusPresent || s == StatusLate
}

// counts toward worked time
func (s Status) working() bool {
	return s != StatusAbsent && s != StatusSickLeave && s != StatusVacation
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Worker is a person tracked for attendance.
type Worker struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Position  string    `json:"position"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

// WorkRecord is one attendance entry for a worker on a date and shift.
type WorkRecord struct {
	ID            string    `json:"id"`
	WorkerID      string    `json:"workerId"`
	Date          string    `json:"date"`
	Shift         string    `json:"shift"`
	Status        Status    `json:"status"`
	ArrivalTime   string    `json:"arrivalTime,omitempty"`
	DepartureTime string    `json:"departureTime,omitempty"`
	LunchBreak    *int      `json:"lunchBreak,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// LunchMinutes returns the recorded lunch break. A missing or zero value
// means the default break, as in backups from the browser version.
func (r WorkRecord) LunchMinutes() int {
	if r.LunchBreak == nil || *r.LunchBreak <= 0 {
		return DefaultLunchBreak
	}
	return *r.LunchBreak
}

func (r WorkRecord) key() recordKey {
	return recordKey{workerID: r.WorkerID, date: r.Date, shift: r.Shift}
}

// Dataset is the complete persisted state.
type Dataset struct {
	Workers     []Worker
	WorkRecords []WorkRecord
}

type recordKey struct {
	workerID string
	date     string
	shift    string
}

func cloneRecord(r WorkRecord) WorkRecord {
	if r.LunchBreak != nil {
		lunch := *r.LunchBreak
		r.LunchBreak = &lunch
	}
	return r
}

func intPtr(v int) *int {
	return &v
}

// ParseDate validates an ISO calendar day.
func ParseDate(raw string) (time.Time, error) {
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q: %w", raw, ErrInvalidDate)
	}
	return d, nil
}

// FormatDate renders t as an ISO calendar day.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// FormatClock renders t as a wall-clock time.
func FormatClock(t time.Time) string {
	return t.Format(clockLayout)
}
