package main

import (
	"fmt"
	"time"

	"shiftbook/internal/attendance"
)

// Period is a reporting window that contains today.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Range returns the first and last ISO date of the period around now.
// Weeks start on Monday.
func (p Period) Range(now time.Time) (string, string, error) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var start, end time.Time

	switch p {
	case PeriodDay:
		start, end = day, day
	case PeriodWeek:
		offset := (int(day.Weekday()) + 6) % 7
		start = day.AddDate(0, 0, -offset)
		end = start.AddDate(0, 0, 6)
	case PeriodMonth:
		start = time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		end = start.AddDate(0, 1, -1)
	case PeriodYear:
		start = time.Date(day.Year(), 1, 1, 0, 0, 0, 0, day.Location())
		end = start.AddDate(1, 0, -1)
	default:
		return "", "", fmt.Errorf("invalid period: %s", p)
	}

	return attendance.FormatDate(start), attendance.FormatDate(end), nil
}

// MarkOptions carries the mark command flags. Nil pointers were not given.
type MarkOptions struct {
	Worker    string
	Date      string
	Shift     string
	Status    string
	Arrival   string
	Departure string
	Lunch     *int
	Notes     *string
}

type ReportOptions struct {
	Period Period
	From   string
	To     string
	Output string
}

// choice is one entry of an interactive menu.
type choice struct {
	Label string
	Value string
}
