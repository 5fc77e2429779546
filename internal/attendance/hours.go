package attendance

import (
	"fmt"
	"time"
)

// WorkedHours is the worked duration net of lunch.
type WorkedHours struct {
	Hours        int
	Minutes      int
	TotalMinutes int
}

// NewWorkedHours splits a minute total into hours and minutes.
func NewWorkedHours(total int) WorkedHours {
	return WorkedHours{Hours: total / 60, Minutes: total % 60, TotalMinutes: total}
}

// String renders worked time as "8h 05m".
func (w WorkedHours) String() string {
	return fmt.Sprintf("%dh %02dm", w.Hours, w.Minutes)
}

// Duration converts the worked time into a time.Duration.
func (w WorkedHours) Duration() time.Duration {
	return time.Duration(w.TotalMinutes) * time.Minute
}

// CalculateWorkedHours computes the time worked for a record within its shift.
// Absent, sick-leave and vacation records, and records without an arrival time,
// count as zero. A missing departure falls back to the shift end.
func CalculateWorkedHours(r WorkRecord, shift ShiftSchedule) (WorkedHours, error) {
	if r.ArrivalTime == "" || !r.Status.working() {
		return WorkedHours{}, nil
	}

	arrival, err := clockOn(r.Date, r.ArrivalTime)
	if err != nil {
		return WorkedHours{}, err
	}

	departureClock := r.DepartureTime
	if departureClock == "" {
		departureClock = shift.End
	}
	departure, err := clockOn(r.Date, departureClock)
	if err != nil {
		return WorkedHours{}, err
	}

	worked := int(departure.Sub(arrival) / time.Minute)
	if worked < 0 {
		worked = 0
	}
	total := worked - r.LunchMinutes()
	if total < 0 {
		total = 0
	}
	return NewWorkedHours(total), nil
}

// clockOn anchors a HH:MM (or HH:MM:SS) wall-clock time to an ISO date.
func clockOn(date, clock string) (time.Time, error) {
	day, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	c, err := parseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(c.Hour())*time.Hour +
		time.Duration(c.Minute())*time.Minute +
		time.Duration(c.Second())*time.Second), nil
}

func parseClock(raw string) (time.Time, error) {
	for _, layout := range []string{clockLayout, "15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q: %w", raw, ErrInvalidTime)
}

// SumWorked totals the worked time of several records, resolving each
// record's shift through the catalog.
func SumWorked(records []WorkRecord, catalog *Catalog) (WorkedHours, error) {
	total := 0
	for _, r := range records {
		shift, err := catalog.Lookup(r.Shift)
		if err != nil {
			return WorkedHours{}, fmt.Errorf("record %s: %w", r.ID, err)
		}
		w, err := CalculateWorkedHours(r, shift)
		if err != nil {
			return WorkedHours{}, fmt.Errorf("record %s: %w", r.ID, err)
		}
		total += w.TotalMinutes
	}
	return NewWorkedHours(total), nil
}
