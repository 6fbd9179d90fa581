package models

import (
	"errors"
	"time"

	"github.com/rocjay1/rm-finance/internal/money"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

var (
	ErrNotFound = errors.New("not found")
	// ErrInvalidAmount is shared with money.Parse so parse failures and
	// validation failures match the same sentinel.
	ErrInvalidAmount = money.ErrInvalidAmount
	ErrInvalidType   = errors.New("invalid type")
	ErrInvalidPeriod = errors.New("invalid period")
	ErrMissingField  = errors.New("missing required field")

	// ErrVersionConflict is returned by a store when a conditional write lost
	// a race with another writer. Callers retry it.
	ErrVersionConflict = errors.New("version conflict")

	// ErrAlreadyExists is returned by a store when an insert finds the ID taken.
	ErrAlreadyExists = errors.New("already exists")
)

// DateOf strips the clock time from t and returns the date at midnight UTC.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// DaysBetween returns the whole number of days from a to b, negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}
