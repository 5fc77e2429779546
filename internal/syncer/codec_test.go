package syncer

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"shiftbook/internal/attendance"
)

func sampleDataset() attendance.Dataset {
	created := time.Date(2025, 3, 3, 7, 0, 0, 0, time.UTC)
	lunch := 45
	return attendance.Dataset{
		Workers: []attendance.Worker{
			{ID: "1", Name: "Іван Петренко", Position: "Комплектувальник", Phone: "+380501234567", CreatedAt: created},
			{ID: "2", Name: "Zoë", Position: "Driver", CreatedAt: created},
		},
		WorkRecords: []attendance.WorkRecord{
			{ID: "r1", WorkerID: "1", Date: "2025-03-03", Shift: "First shift", Status: attendance.StatusPresent,
				ArrivalTime: "08:00", DepartureTime: "17:00", LunchBreak: &lunch, Notes: "склад №2", CreatedAt: created},
			{ID: "r2", WorkerID: "2", Date: "2025-03-03", Shift: "First shift", Status: attendance.StatusAbsent, CreatedAt: created},
		},
	}
}

func TestCode_RoundTripNonASCII(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)
	doc := NewDocument(sampleDataset(), now, "Atlant")

	code, err := EncodeCode(doc)
	if err != nil {
		t.Fatalf("EncodeCode returned error: %v", err)
	}
	for _, r := range code {
		if r > 127 {
			t.Fatalf("expected printable ASCII code, found %q", r)
		}
	}

	// simulate a code wrapped by a messenger
	wrapped := code[:10] + "\n  " + code[10:] + "\n"
	back, err := DecodeCode(wrapped)
	if err != nil {
		t.Fatalf("DecodeCode returned error: %v", err)
	}

	if back.Workers[0].Name != "Іван Петренко" || back.WorkRecords[0].Notes != "склад №2" {
		t.Fatalf("non-ASCII text did not survive: %+v", back)
	}
	if !back.Timestamp.Equal(now) || back.Version != FormatVersion || back.AppName != "Atlant" {
		t.Fatalf("unexpected metadata: %+v", back)
	}
	if mustJSON(t, back.Dataset()) != mustJSON(t, doc.Dataset()) {
		t.Fatalf("dataset changed across round trip")
	}
}

func TestDecodeCode_LegacyCode(t *testing.T) {
	t.Parallel()

	legacy := `{"workers":[{"id":"1","name":"Марія Коваленко","position":"Комплектувальник","phone":"+380671234567","createdAt":"2024-11-14T06:00:00.000Z"}],` +
		`"workRecords":[{"id":"1731567600000","workerId":"1","date":"2024-11-14","shift":"Друга зміна","status":"присутній","arrivalTime":"11:00","lunchBreak":60,"createdAt":"2024-11-14T09:00:00.000Z"}],` +
		`"timestamp":"2024-11-14T10:00:00.000Z"}`
	code := base64.StdEncoding.EncodeToString([]byte(legacy))

	doc, err := DecodeCode(code)
	if err != nil {
		t.Fatalf("DecodeCode returned error: %v", err)
	}
	if len(doc.Workers) != 1 || doc.Workers[0].Name != "Марія Коваленко" {
		t.Fatalf("unexpected workers: %+v", doc.Workers)
	}
	if doc.WorkRecords[0].Status != attendance.StatusPresent {
		t.Fatalf("expected legacy status mapped, got %s", doc.WorkRecords[0].Status)
	}
	if doc.Version != "" {
		t.Fatalf("expected no version on legacy code")
	}
}

func TestDecodeCode_Invalid(t *testing.T) {
	t.Parallel()

	encode := func(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

	tests := map[string]string{
		"empty":               "   ",
		"not base64":          "%%%not-base64%%%",
		"not json":            encode("hello"),
		"missing workRecords": encode(`{"workers":[]}`),
		"missing workers":     encode(`{"workRecords":[]}`),
		"null workers":        encode(`{"workers":null,"workRecords":[]}`),
		"workers not array":   encode(`{"workers":{"id":"1"},"workRecords":[]}`),
		"unknown status":      encode(`{"workers":[],"workRecords":[{"id":"1","status":"asleep"}]}`),
	}

	for name, code := range tests {
		if _, err := DecodeCode(code); !errors.Is(err, ErrInvalidFormat) {
			t.Fatalf("%s: expected ErrInvalidFormat, got %v", name, err)
		}
	}
}

func TestDocumentFile_RoundTrip(t *testing.T) {
	t.Parallel()

	doc := NewDocument(sampleDataset(), time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC), "Atlant")

	var buf bytes.Buffer
	if err := WriteDocument(&buf, doc); err != nil {
		t.Fatalf("WriteDocument returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "\n  \"workers\"") {
		t.Fatalf("expected indented JSON, got %s", buf.String())
	}
	if !strings.Contains(buf.String(), `"version": "1.0"`) {
		t.Fatalf("expected version tag in file")
	}

	back, err := ReadDocument(&buf)
	if err != nil {
		t.Fatalf("ReadDocument returned error: %v", err)
	}
	if mustJSON(t, back) != mustJSON(t, doc) {
		t.Fatalf("document changed across file round trip")
	}
}

func TestNewDocument_EmptyDatasetEncodesArrays(t *testing.T) {
	t.Parallel()

	code, err := EncodeCode(NewDocument(attendance.Dataset{}, time.Now(), ""))
	if err != nil {
		t.Fatalf("EncodeCode returned error: %v", err)
	}
	doc, err := DecodeCode(code)
	if err != nil {
		t.Fatalf("empty dataset should decode, got %v", err)
	}
	if len(doc.Workers) != 0 || len(doc.WorkRecords) != 0 {
		t.Fatalf("expected empty dataset")
	}
}
