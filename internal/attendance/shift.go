package attendance

import (
	"fmt"
	"slices"
	"time"
)

// ShiftSchedule is a named work period.
type ShiftSchedule struct {
	Name  string
	Start string
	End   string
	Days  []string
	// Aliases are alternative names that resolve to this shift.
	Aliases []string
}

var weekdayAbbrev = map[time.Weekday]string{
	time.Monday:    "Mon",
	time.Tuesday:   "Tue",
	time.Wednesday: "Wed",
	time.Thursday:  "Thu",
	time.Friday:    "Fri",
	time.Saturday:  "Sat",
	time.Sunday:    "Sun",
}

// AppliesOn reports whether the shift runs on the given weekday.
func (s ShiftSchedule) AppliesOn(day time.Weekday) bool {
	return slices.Contains(s.Days, weekdayAbbrev[day])
}

func (s ShiftSchedule) matches(name string) bool {
	return s.Name == name || slices.Contains(s.Aliases, name)
}

// Catalog is the immutable set of shifts.
type Catalog struct {
	shifts []ShiftSchedule
}

// DefaultCatalog returns the three fixed shifts.
func DefaultCatalog() *Catalog {
	weekdays := []string{"Mon", "Tue", "Wed", "Thu", "Fri"}
	return &Catalog{shifts: []ShiftSchedule{
		{Name: "First shift", Start: "08:00", End: "17:00", Days: weekdays, Aliases: []string{"Перша зміна"}},
		{Name: "Second shift", Start: "11:00", End: "20:00", Days: weekdays, Aliases: []string{"Друга зміна"}},
		{Name: "Saturday", Start: "09:00", End: "16:00", Days: []string{"Sat"}, Aliases: []string{"Субота"}},
	}}
}

// Shifts returns a copy of all shifts in catalog order.
func (c *Catalog) Shifts() []ShiftSchedule {
	out := make([]ShiftSchedule, len(c.shifts))
	copy(out, c.shifts)
	return out
}

// Lookup resolves a shift by name or alias.
func (c *Catalog) Lookup(name string) (ShiftSchedule, error) {
	for _, s := range c.shifts {
		if s.matches(name) {
			return s, nil
		}
	}
	return ShiftSchedule{}, fmt.Errorf("%q: %w", name, ErrUnknownShift)
}

// ForDate lists the shifts scheduled on an ISO date.
func (c *Catalog) ForDate(date string) ([]ShiftSchedule, error) {
	d, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	var out []ShiftSchedule
	for _, s := range c.shifts {
		if s.AppliesOn(d.Weekday()) {
			out = append(out, s)
		}
	}
	return out, nil
}
