package model

import (
	"database/sql/driver"
	"fmt"
	"sort"
	"strings"
	"time"
)

type Weekday string

const (
	Monday    Weekday = "mon"
	Tuesday   Weekday = "tue"
	Wednesday Weekday = "wed"
	Thursday  Weekday = "thu"
	Friday    Weekday = "fri"
	Saturday  Weekday = "sat"
	Sunday    Weekday = "sun"
)

var weekdayOrder = map[Weekday]int{
	Monday: 0, Tuesday: 1, Wednesday: 2, Thursday: 3, Friday: 4, Saturday: 5, Sunday: 6,
}

func (d Weekday) Valid() bool {
	_, ok := weekdayOrder[d]
	return ok
}

// Index orders days Monday first; invalid days sort last.
func (d Weekday) Index() int {
	if i, ok := weekdayOrder[d]; ok {
		return i
	}
	return len(weekdayOrder)
}

// WeekdayOf returns the weekday of t in t's own location.
func WeekdayOf(t time.Time) Weekday {
	switch t.Weekday() {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

func ParseWeekday(s string) (Weekday, error) {
	d := Weekday(strings.TrimSpace(s))
	if !d.Valid() {
		return "", fmt.Errorf("invalid weekday %q", s)
	}
	return d, nil
}

// Weekdays is a set of days stored as a comma separated text column.
// Normalize keeps it sorted Monday first and without duplicates.
type Weekdays []Weekday

func (w Weekdays) Normalize() Weekdays {
	seen := make(map[Weekday]bool, len(w))
	out := make(Weekdays, 0, len(w))
	for _, d := range w {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index() < out[j].Index() })
	return out
}

func (w Weekdays) Contains(day Weekday) bool {
	for _, d := range w {
		if d == day {
			return true
		}
	}
	return false
}

func (w Weekdays) Validate() error {
	for _, d := range w {
		if !d.Valid() {
			return fmt.Errorf("invalid weekday %q", d)
		}
	}
	return nil
}

func (w Weekdays) String() string {
	parts := make([]string, len(w))
	for i, d := range w {
		parts[i] = string(d)
	}
	return strings.Join(parts, ",")
}

func (Weekdays) GormDataType() string {
	return "text"
}

func (w Weekdays) Value() (driver.Value, error) {
	return w.Normalize().String(), nil
}

func (w *Weekdays) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case nil:
		*w = nil
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Weekdays", src)
	}

	*w = nil
	for _, part := range strings.Split(s, ",") {
		if part == "" {
			continue
		}
		d, err := ParseWeekday(part)
		if err != nil {
			return err
		}
		*w = append(*w, d)
	}
	return nil
}
