package attendance

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseStatus(t *testing.T) {
	t.Parallel()

	tests := map[string]Status{
		"present":    StatusPresent,
		"sick-leave": StatusSickLeave,
		"присутній":  StatusPresent,
		"відсутній":  StatusAbsent,
		"запізнення": StatusLate,
		"лікарняний": StatusSickLeave,
		"відпустка":  StatusVacation,
	}
	for raw, want := range tests {
		got, err := ParseStatus(raw)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("%s: want %s got %s", raw, want, got)
		}
	}

	if _, err := ParseStatus("holiday"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestWorkRecord_DecodesLegacyJSON(t *testing.T) {
	t.Parallel()

	raw := `{"id":"1700000000000","workerId":"1","date":"2024-11-14","shift":"Перша зміна",` +
		`"status":"запізнення","arrivalTime":"08:40","lunchBreak":60,"createdAt":"2024-11-14T06:40:00.000Z"}`

	var rec WorkRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if rec.Status != StatusLate {
		t.Fatalf("expected legacy status mapped to late, got %s", rec.Status)
	}
	if rec.LunchMinutes() != 60 || rec.DepartureTime != "" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	out, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if back["status"] != "late" {
		t.Fatalf("expected canonical status on encode, got %v", back["status"])
	}
	if _, ok := back["departureTime"]; ok {
		t.Fatalf("expected unset departure to be omitted")
	}
}

func TestCatalog(t *testing.T) {
	t.Parallel()

	c := DefaultCatalog()
	if len(c.Shifts()) != 3 {
		t.Fatalf("expected three shifts")
	}

	s, err := c.Lookup("Субота")
	if err != nil || s.Name != "Saturday" {
		t.Fatalf("expected alias lookup to resolve Saturday, got %+v %v", s, err)
	}
	if _, err := c.Lookup("Sunday"); !errors.Is(err, ErrUnknownShift) {
		t.Fatalf("expected ErrUnknownShift, got %v", err)
	}

	// 2025-03-08 is a Saturday, 2025-03-09 a Sunday.
	sat, err := c.ForDate("2025-03-08")
	if err != nil || len(sat) != 1 || sat[0].Name != "Saturday" {
		t.Fatalf("unexpected shifts for Saturday: %+v %v", sat, err)
	}
	sun, err := c.ForDate("2025-03-09")
	if err != nil || len(sun) != 0 {
		t.Fatalf("expected no shifts on Sunday, got %+v %v", sun, err)
	}
	mon, _ := c.ForDate("2025-03-10")
	if len(mon) != 2 {
		t.Fatalf("expected two weekday shifts, got %d", len(mon))
	}
}
