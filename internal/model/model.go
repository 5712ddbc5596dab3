package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and display layout for task dates.
const DateLayout = "2006-01-02"

// TimeLayout is the expected layout of a task's time of day.
const TimeLayout = "15:04"

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CategoryRef is the snapshot of a category embedded in a task.
type CategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Task struct {
	ID         int64       `json:"id"`
	Task       string      `json:"task"`
	Date       Date        `json:"date"`
	Time       string      `json:"time"`
	IsComplete bool        `json:"is_complete"`
	Category   CategoryRef `json:"category"`
}

// User is the account returned by the auth endpoints.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Due returns the task's date combined with its time of day in loc.
// A task without a parseable time is due at midnight.
func (t Task) Due(loc *time.Location) (time.Time, bool) {
	if t.Date.IsZero() {
		return time.Time{}, false
	}
	y, m, d := t.Date.Time().Date()
	hh, mm := 0, 0
	if clock, err := time.Parse(TimeLayout, strings.TrimSpace(t.Time)); err == nil {
		hh, mm = clock.Hour(), clock.Minute()
	}
	return time.Date(y, m, d, hh, mm, 0, 0, loc), true
}

// Date is a calendar day. The service emits dates either as plain
// "2006-01-02" or in the RFC1123 form produced by its JSON encoder.
type Date struct {
	t time.Time
}

var dateLayouts = []string{
	DateLayout,
	time.RFC1123,
	time.RFC1123Z,
	time.RFC3339,
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts any layout the service is known to emit.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t.Year(), t.Month(), t.Day()), nil
		}
	}
	return Date{}, fmt.Errorf("parse date %q", s)
}

func (d Date) IsZero() bool   { return d.t.IsZero() }
func (d Date) Time() time.Time { return d.t }

// Equal reports whether d and o are the same day.
func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

func (d Date) String() string {
	if d.t.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("decode date: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
