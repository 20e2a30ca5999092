package itinerary

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultStartTime is the lossy fallback for unparseable time tokens.
// Downstream editing is expected to correct it, so this is a default, not
// an error.
const DefaultStartTime = "09:00"

var (
	time24Re  = regexp.MustCompile(`^(\d{1,2}):([0-5]\d)$`)
	time12Re  = regexp.MustCompile(`(?i)^(\d{1,2})(?::([0-5]\d))?\s*(AM|PM)$`)
	dateRe    = regexp.MustCompile(`(?i)^(Mon|Tue|Wed|Thu|Fri|Sat|Sun)[a-z]*,?\s+(\d{1,2})\s+([A-Za-z]+)$`)
	gmtRe     = regexp.MustCompile(`GMT([+-]\d{1,2})`)
	hhmmValid = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)
)

// Named day periods map to fixed representative clock times.
var namedPeriods = map[string]string{
	"morning":   "09:00",
	"afternoon": "14:00",
	"evening":   "18:00",
	"night":     "20:00",
}

// Month names, 3-letter or full, case-insensitive.
var monthNumbers = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// A small fixed table of GMT offsets to IANA-style timezone names. Offsets
// outside the table are reported as the raw GMT string with no name.
var gmtTimezones = map[int]string{
	0: "Europe/London",
	1: "Europe/Paris",
	2: "Africa/Johannesburg",
	3: "Asia/Dubai",
	4: "Indian/Mauritius",
	7: "Asia/Bangkok",
	8: "Asia/Kuala_Lumpur",
	9: "Asia/Tokyo",
}

// ParseTime converts a heterogeneous time token to canonical zero-padded
// 24-hour HH:MM. It tries, in order: strict 24-hour H:MM, 12-hour clock
// with AM/PM, and named day periods. Anything else yields DefaultStartTime.
func ParseTime(raw string) string {
	token := strings.TrimSpace(raw)

	if m := time24Re.FindStringSubmatch(token); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour <= 23 {
			return fmt.Sprintf("%02d:%02d", hour, minute)
		}
	}

	if m := time12Re.FindStringSubmatch(token); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour >= 1 && hour <= 12 {
			meridiem := strings.ToUpper(m[3])
			// Noon stays 12, midnight becomes 0
			if meridiem == "PM" && hour != 12 {
				hour += 12
			} else if meridiem == "AM" && hour == 12 {
				hour = 0
			}
			return fmt.Sprintf("%02d:%02d", hour, minute)
		}
	}

	if canonical, ok := namedPeriods[strings.ToLower(token)]; ok {
		return canonical
	}

	return DefaultStartTime
}

// IsValidTime reports whether s is already a canonical HH:MM string.
func IsValidTime(s string) bool {
	return hhmmValid.MatchString(s)
}

// ParseDate converts a "<weekday>, <day> <month>" token (e.g. "Sun, 21 Dec")
// to canonical YYYY-MM-DD. The month name may be 3-letter or full, any case.
//
// Year rollover: a month number below 6 is assigned referenceYear+1. This
// assumes itineraries spanning a December-to-January boundary, which matches
// the trip exports this parser targets; it is not a general date-resolution
// rule.
func ParseDate(raw string, referenceYear int) (string, bool) {
	token := strings.TrimSpace(raw)

	m := dateRe.FindStringSubmatch(token)
	if m == nil {
		return "", false
	}

	day, err := strconv.Atoi(m[2])
	if err != nil || day < 1 || day > 31 {
		return "", false
	}

	monthName := strings.ToLower(m[3])
	if len(monthName) > 3 {
		monthName = monthName[:3]
	}
	month, ok := monthNumbers[monthName]
	if !ok {
		return "", false
	}

	year := referenceYear
	if month < 6 {
		year = referenceYear + 1
	}

	// time.Date normalizes overflowing days (Feb 31 -> Mar 3), so a
	// round-trip mismatch means the day does not exist in that month.
	resolved := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if resolved.Day() != day || resolved.Month() != time.Month(month) {
		return "", false
	}

	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

// DetectGMTOffset scans text for a GMT±N marker. It returns the raw offset
// string (e.g. "GMT+8") and the mapped IANA timezone name when the offset is
// in the fixed table, or an empty name otherwise.
func DetectGMTOffset(text string) (offset string, timezone string, found bool) {
	m := gmtRe.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}

	hours, err := strconv.Atoi(m[1])
	if err != nil {
		return m[0], "", true
	}

	return m[0], gmtTimezones[hours], true
}

// AddHours adds whole hours to a canonical HH:MM time, clamping the hour at
// 23 rather than rolling into the next day. If clamping would place the end
// before the start, the start time is returned so the end never precedes it.
func AddHours(start string, hours int) string {
	m := hhmmValid.FindStringSubmatch(start)
	if m == nil {
		return start
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])

	hour += hours
	if hour > 23 {
		hour = 23
		if fmt.Sprintf("%02d:%02d", hour, minute) < start {
			return start
		}
	}

	return fmt.Sprintf("%02d:%02d", hour, minute)
}
