package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates (ISO-8601, no time component)
const DateLayout = "2006-01-02"

// Date represents a calendar date with no time or timezone component.
// It is stored as a DATE column and serialized as "YYYY-MM-DD" in JSON.
type Date struct {
	time.Time
}

// NewDate creates a Date for the given calendar day
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// ParseDate parses a date in ISO-8601 format (YYYY-MM-DD)
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected format %s", s, DateLayout)
	}
	return Date{t}, nil
}

// AddDays returns the date shifted by the given number of days
func (d Date) AddDays(days int) Date {
	return Date{d.Time.AddDate(0, 0, days)}
}

// DaysUntil returns the number of whole days from d to other.
// The result is negative when other is before d.
func (d Date) DaysUntil(other Date) int {
	return int(other.Time.Sub(d.Time).Hours() / 24)
}

// String returns the date in ISO-8601 format
func (d Date) String() string {
	return d.Time.Format(DateLayout)
}

// GormDataType tells GORM to use a DATE column
func (Date) GormDataType() string {
	return "date"
}

// Value implements driver.Valuer so the date persists as YYYY-MM-DD
func (d Date) Value() (driver.Value, error) {
	return d.Time.Format(DateLayout), nil
}

// Scan implements sql.Scanner. Postgres returns time.Time for DATE columns,
// SQLite returns the stored string.
func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		d.Time = time.Time{}
		return nil
	case time.Time:
		d.Time = time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
		return nil
	case string:
		parsed, err := ParseDate(strings.SplitN(v, "T", 2)[0])
		if err != nil {
			return err
		}
		d.Time = parsed.Time
		return nil
	case []byte:
		parsed, err := ParseDate(strings.SplitN(string(v), "T", 2)[0])
		if err != nil {
			return err
		}
		d.Time = parsed.Time
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", value)
	}
}

// MarshalJSON serializes the date as "YYYY-MM-DD"
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format(DateLayout) + `"`), nil
}

// UnmarshalJSON parses a "YYYY-MM-DD" JSON string
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = parsed.Time
	return nil
}
