package syncer

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"shiftbook/internal/attendance"
)

// FormatVersion tags every exported document.
const FormatVersion = "1.0"

var ErrInvalidFormat = errors.New("syncer: invalid data format")

// Document is the portable form of the whole dataset, shared by the text
// code and the backup file.
type Document struct {
	Workers     []attendance.Worker     `json:"workers"`
	WorkRecords []attendance.WorkRecord `json:"workRecords"`
	Timestamp   time.Time               `json:"timestamp"`
	Version     string                  `json:"version,omitempty"`
	AppName     string                  `json:"appName,omitempty"`
}

// NewDocument wraps a dataset for export.
func NewDocument(ds attendance.Dataset, now time.Time, appName string) Document {
	workers := ds.Workers
	if workers == nil {
		workers = []attendance.Worker{}
	}
	records := ds.WorkRecords
	if records == nil {
		records = []attendance.WorkRecord{}
	}
	return Document{
		Workers:     workers,
		WorkRecords: records,
		Timestamp:   now.UTC(),
		Version:     FormatVersion,
		AppName:     appName,
	}
}

// Dataset returns the attendance data carried by the document.
func (d Document) Dataset() attendance.Dataset {
	return attendance.Dataset{Workers: d.Workers, WorkRecords: d.WorkRecords}
}

// EncodeCode renders a document as a copy/paste-safe text code.
func EncodeCode(doc Document) (string, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// DecodeCode reverses EncodeCode. Whitespace picked up while copying is
// ignored, as is missing padding.
func DecodeCode(code string) (Document, error) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, code)
	if cleaned == "" {
		return Document{}, fmt.Errorf("%w: empty code", ErrInvalidFormat)
	}

	b, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		b, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(cleaned, "="))
		if err != nil {
			return Document{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
	}
	return parseDocument(b)
}

// WriteDocument writes a document as indented JSON.
func WriteDocument(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// ReadDocument parses a document written by WriteDocument.
func ReadDocument(r io.Reader) (Document, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("read document: %w", err)
	}
	return parseDocument(b)
}

func parseDocument(b []byte) (Document, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(b, &probe); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	for _, key := range []string{"workers", "workRecords"} {
		raw, ok := probe[key]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return Document{}, fmt.Errorf("%w: missing %q", ErrInvalidFormat, key)
		}
	}

	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return doc, nil
}
