package model

import (
	"fmt"
	"time"
)

// Day codes used in schedules.day_of_week.
const (
	DayMonday    = "PON"
	DayTuesday   = "UTO"
	DayWednesday = "SRE"
	DayThursday  = "CET"
	DayFriday    = "PET"
	DaySaturday  = "SUB"
	DaySunday    = "NED"
)

// dayCodes is indexed by ISO weekday (1 = Monday ... 7 = Sunday).
var dayCodes = [8]string{"", DayMonday, DayTuesday, DayWednesday, DayThursday, DayFriday, DaySaturday, DaySunday}

// DayCode maps a time.Weekday to its schedule code.
func DayCode(w time.Weekday) string {
	iso := int(w)
	if iso == 0 {
		iso = 7
	}
	return dayCodes[iso]
}

// ValidDayCode reports whether s is one of the seven day codes.
func ValidDayCode(s string) bool {
	for _, c := range dayCodes[1:] {
		if c == s {
			return true
		}
	}
	return false
}

// Schedule is a recurring weekly class slot.
type Schedule struct {
	ID        uint64  `json:"id"`
	DayOfWeek string  `json:"day_of_week"`
	StartTime string  `json:"start_time"` // HH:MM
	EndTime   string  `json:"end_time"`   // HH:MM
	CoachID   *uint64 `json:"coach_id"`
	Capacity  int     `json:"capacity"`
	GroupName *string `json:"group_name"`
	Location  *string `json:"location"`
	IsActive  bool    `json:"is_active"`
}

// DisplayName is the group name, or "Termin #<id>" for unnamed slots.
func (s Schedule) DisplayName() string {
	if s.GroupName != nil && *s.GroupName != "" {
		return *s.GroupName
	}
	return fmt.Sprintf("Termin #%d", s.ID)
}

// TimeRange renders "HH:MM - HH:MM".
func (s Schedule) TimeRange() string {
	if s.StartTime == "" {
		return ""
	}
	if s.EndTime == "" {
		return s.StartTime
	}
	return s.StartTime + " - " + s.EndTime
}

// ScheduleWithCount carries the live number of active enrollments.
type ScheduleWithCount struct {
	Schedule
	CurrentEnrollmentsCount int `json:"current_enrollments_count"`
}

// ScheduleCancellation marks one session of a schedule as not taking place.
type ScheduleCancellation struct {
	ID         uint64  `json:"id"`
	ScheduleID uint64  `json:"schedule_id"`
	CancelDate Date    `json:"cancel_date"`
	Reason     *string `json:"reason"`
}

// NormalizeClock accepts "H:MM", "HH:MM" or "HH:MM:SS" and returns "HH:MM".
func NormalizeClock(s string) (string, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04"), nil
		}
	}
	return "", fmt.Errorf("invalid time of day %q: expected HH:MM", s)
}

// DayIndex returns the ISO weekday of a day code (1 = PON), or 0 when the
// code is unknown. It orders schedules Monday first.
func DayIndex(code string) int {
	for i, c := range dayCodes {
		if i > 0 && c == code {
			return i
		}
	}
	return 0
}
