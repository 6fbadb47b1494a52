package domain

import (
	"fmt"
	"strings"
	"time"
)

// ClockLayout is the canonical wire and storage format for times of day.
const ClockLayout = "15:04"

var weekdays = map[string]time.Weekday{
	"MONDAY":    time.Monday,
	"TUESDAY":   time.Tuesday,
	"WEDNESDAY": time.Wednesday,
	"THURSDAY":  time.Thursday,
	"FRIDAY":    time.Friday,
	"SATURDAY":  time.Saturday,
	"SUNDAY":    time.Sunday,
}

// DoctorAvailability is one weekly time window offered by a doctor.
type DoctorAvailability struct {
	ID        int64  `json:"id"`
	DoctorID  int64  `json:"doctorId"`
	DayOfWeek string `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Available bool   `json:"available"`
}

// Weekday returns the window's day. Valid only after Normalize.
func (a DoctorAvailability) Weekday() time.Weekday { return weekdays[a.DayOfWeek] }

// Normalize upper-cases the weekday and canonicalises both clock values.
// The window must not be empty.
func (a *DoctorAvailability) Normalize() error {
	day := strings.ToUpper(strings.TrimSpace(a.DayOfWeek))
	if _, ok := weekdays[day]; !ok {
		return Validationf("Invalid day of week: %s", a.DayOfWeek)
	}
	start, err := ParseClock(a.StartTime)
	if err != nil {
		return err
	}
	end, err := ParseClock(a.EndTime)
	if err != nil {
		return err
	}
	if !start.Before(end) {
		return Validationf("Start time %s must be before end time %s",
			start.Format(ClockLayout), end.Format(ClockLayout))
	}
	a.DayOfWeek = day
	a.StartTime = start.Format(ClockLayout)
	a.EndTime = end.Format(ClockLayout)
	return nil
}

// ParseClock parses HH:MM or HH:MM:SS. Seconds are dropped.
func ParseClock(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{ClockLayout, "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Truncate(time.Minute), nil
		}
	}
	return time.Time{}, Validationf("Invalid time format: %s. Use HH:MM", s)
}

// ParseDate parses a YYYY-MM-DD calendar date as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, Validationf("Invalid date format. Use YYYY-MM-DD")
	}
	return t, nil
}

// SlotKey identifies a doctor's (date, time) slot.
func SlotKey(doctorID int64, date, clock string) string {
	return fmt.Sprintf("%d|%s|%s", doctorID, date, clock)
}
