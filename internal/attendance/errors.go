package attendance

import "errors"

var (
	ErrInvalidWorker  = errors.New("attendance: name and position are required")
	ErrWorkerNotFound = errors.New("attendance: worker not found")
	ErrInvalidStatus  = errors.New("attendance: invalid status")
	ErrInvalidDate    = errors.New("attendance: invalid date")
	ErrInvalidTime    = errors.New("attendance: invalid time")
	ErrInvalidLunch   = errors.New("attendance: invalid lunch break")
	ErrUnknownShift   = errors.New("attendance: unknown shift")
	ErrCorruptData    = errors.New("attendance: stored data is corrupt")
)
