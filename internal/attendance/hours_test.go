package attendance

import (
	"errors"
	"testing"
)

func TestCalculateWorkedHours(t *testing.T) {
	t.Parallel()

	first := DefaultCatalog().Shifts()[0]

	tests := []struct {
		name   string
		record WorkRecord
		want   WorkedHours
	}{
		{
			name:   "full day with default lunch",
			record: WorkRecord{Date: "2025-03-03", Status: StatusPresent, ArrivalTime: "08:00", DepartureTime: "17:00"},
			want:   WorkedHours{Hours: 8, Minutes: 0, TotalMinutes: 480},
		},
		{
			name:   "departure defaults to shift end",
			record: WorkRecord{Date: "2025-03-03", Status: StatusLate, ArrivalTime: "08:25", LunchBreak: intPtr(30)},
			want:   WorkedHours{Hours: 8, Minutes: 5, TotalMinutes: 485},
		},
		{
			name:   "zero lunch falls back to the default",
			record: WorkRecord{Date: "2025-03-03", Status: StatusPresent, ArrivalTime: "09:00", DepartureTime: "10:30", LunchBreak: intPtr(0)},
			want:   WorkedHours{Hours: 0, Minutes: 30, TotalMinutes: 30},
		},
		{
			name:   "lunch longer than stay floors at zero",
			record: WorkRecord{Date: "2025-03-03", Status: StatusPresent, ArrivalTime: "09:00", DepartureTime: "09:45"},
			want:   WorkedHours{},
		},
		{
			name:   "departure before arrival",
			record: WorkRecord{Date: "2025-03-03", Status: StatusPresent, ArrivalTime: "18:00", DepartureTime: "07:00", LunchBreak: intPtr(0)},
			want:   WorkedHours{},
		},
		{
			name:   "no arrival",
			record: WorkRecord{Date: "2025-03-03", Status: StatusPresent},
			want:   WorkedHours{},
		},
		{
			name:   "seconds are accepted",
			record: WorkRecord{Date: "2025-03-03", Status: StatusPresent, ArrivalTime: "08:00:00", DepartureTime: "12:00:59", LunchBreak: intPtr(15)},
			want:   WorkedHours{Hours: 3, Minutes: 45, TotalMinutes: 225},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := CalculateWorkedHours(tc.record, first)
			if err != nil {
				t.Fatalf("CalculateWorkedHours returned error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("want %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestCalculateWorkedHours_NonWorkingStatusesAreZero(t *testing.T) {
	t.Parallel()

	first := DefaultCatalog().Shifts()[0]
	for _, status := range []Status{StatusAbsent, StatusSickLeave, StatusVacation} {
		rec := WorkRecord{Date: "2025-03-03", Status: status, ArrivalTime: "08:00", DepartureTime: "17:00"}
		got, err := CalculateWorkedHours(rec, first)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", status, err)
		}
		if got != (WorkedHours{}) {
			t.Fatalf("%s: expected zero duration, got %+v", status, got)
		}
	}
}

func TestCalculateWorkedHours_InvalidTime(t *testing.T) {
	t.Parallel()

	first := DefaultCatalog().Shifts()[0]
	rec := WorkRecord{Date: "2025-03-03", Status: StatusPresent, ArrivalTime: "8 o'clock"}
	if _, err := CalculateWorkedHours(rec, first); !errors.Is(err, ErrInvalidTime) {
		t.Fatalf("expected ErrInvalidTime, got %v", err)
	}

	rec = WorkRecord{Date: "03/03/2025", Status: StatusPresent, ArrivalTime: "08:00"}
	if _, err := CalculateWorkedHours(rec, first); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestSumWorked(t *testing.T) {
	t.Parallel()

	catalog := DefaultCatalog()
	records := []WorkRecord{
		{ID: "a", Date: "2025-03-03", Shift: "First shift", Status: StatusPresent, ArrivalTime: "08:00", DepartureTime: "17:00"},
		{ID: "b", Date: "2025-03-04", Shift: "Друга зміна", Status: StatusLate, ArrivalTime: "11:30", DepartureTime: "20:00"},
		{ID: "c", Date: "2025-03-05", Shift: "First shift", Status: StatusAbsent},
	}

	got, err := SumWorked(records, catalog)
	if err != nil {
		t.Fatalf("SumWorked returned error: %v", err)
	}
	if got.TotalMinutes != 480+450 {
		t.Fatalf("expected 930 minutes, got %d", got.TotalMinutes)
	}
	if got.Hours != 15 || got.Minutes != 30 {
		t.Fatalf("unexpected split: %+v", got)
	}

	records = append(records, WorkRecord{ID: "d", Date: "2025-03-06", Shift: "Night", Status: StatusPresent, ArrivalTime: "22:00"})
	if _, err := SumWorked(records, catalog); !errors.Is(err, ErrUnknownShift) {
		t.Fatalf("expected ErrUnknownShift, got %v", err)
	}
}

func TestWorkedHours_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		total int
		want  string
	}{
		{0, "0h 00m"},
		{425, "7h 05m"},
		{510, "8h 30m"},
	}
	for _, tt := range tests {
		wh := NewWorkedHours(tt.total)
		if got := wh.String(); got != tt.want {
			t.Fatalf("NewWorkedHours(%d).String() = %q, want %q", tt.total, got, tt.want)
		}
		if wh.Hours*60+wh.Minutes != tt.total || wh.TotalMinutes != tt.total {
			t.Fatalf("inconsistent parts for %d: %+v", tt.total, wh)
		}
	}
}
