package entities

import "strings"

// WorkingHours is a clinic's opening window for one day of the week
type WorkingHours struct {
	ID        string `json:"id" db:"id"`
	ClinicID  string `json:"clinic_id" db:"clinic_id"`
	DayOfWeek string `json:"day_of_week" db:"day_of_week"`
	OpenTime  string `json:"open_time,omitempty" db:"open_time"`
	CloseTime string `json:"close_time,omitempty" db:"close_time"`
	IsClosed  bool   `json:"is_closed" db:"is_closed"`
}

// NormalizeDayOfWeek lowercases d and reports whether it names a weekday
func NormalizeDayOfWeek(d string) (string, bool) {
	day := strings.ToLower(strings.TrimSpace(d))
	_, ok := weekdayOrder[day]
	return day, ok
}

var weekdayOrder = map[string]int{
	"monday": 0, "tuesday": 1, "wednesday": 2, "thursday": 3,
	"friday": 4, "saturday": 5, "sunday": 6,
}

// WeekdayIndex orders days Monday first; unknown days sort last
func WeekdayIndex(day string) int {
	if i, ok := weekdayOrder[day]; ok {
		return i
	}
	return len(weekdayOrder)
}
