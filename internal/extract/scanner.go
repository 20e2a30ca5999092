package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tripweave/tripweave/internal/itinerary"
)

// defaultDurationHours is applied when an entry has no explicit end time.
const defaultDurationHours = 2

// Rest days span the whole waking day.
const (
	restDayStart = "09:00"
	restDayEnd   = "20:00"
)

var (
	// "<weekday>, <day> <month> <free text>" - the repeating line shape of
	// TripIt-style plain-text exports.
	datedLineRe = regexp.MustCompile(`(?i)^((?:Mon|Tue|Wed|Thu|Fri|Sat|Sun)[a-z]*,?\s+\d{1,2}\s+[A-Za-z]+)\s+(.+)$`)
	// A time token at the head of the free text: 24h, 12h (minutes optional
	// when AM/PM is present) or a named period.
	leadTimeRe = regexp.MustCompile(`(?i)^(\d{1,2}:\d{2}\s*(?:AM|PM)?|\d{1,2}\s*(?:AM|PM)|morning|afternoon|evening|night)\b[\s,]*`)
	// "... Until HH:MM" tacked onto the end of a dated entry.
	untilSuffixRe = regexp.MustCompile(`(?i)[\s,]+until\s+(\d{1,2}:\d{2}\s*(?:AM|PM)?)\s*$`)
	// A standalone "Until HH:MM" continuation line.
	untilLineRe = regexp.MustCompile(`(?i)^until\s+(\d{1,2}:\d{2}\s*(?:AM|PM)?)\s*$`)
	// GMT markers are detected globally; inside an entry they are noise.
	gmtTokenRe = regexp.MustCompile(`(?i)\(?GMT[+-]\d{1,2}\)?`)
	// Address lines: leading street number ending in the country name, or
	// the locale markers Malaysian addresses start with.
	addressLineRe = regexp.MustCompile(`(?i)^(?:\d+.*malaysia\.?$|lot\s|jalan\s|level\s|no\.\s*\d)`)
	// Standalone booking/reference codes (PNRs, confirmation numbers).
	refCodeRe = regexp.MustCompile(`^[A-Z0-9]{6,12}$`)
	// Airline flight numbers, e.g. MK647 or MH1412.
	flightCodeRe = regexp.MustCompile(`\b[A-Z]{2}\d{2,4}\b`)
	restDayRe    = regexp.MustCompile(`(?i)\brest\s*day\b`)
)

// rawActivity is one extracted entry before location resolution.
type rawActivity struct {
	Date         string
	StartTime    string
	EndTime      string
	Name         string
	Address      string
	Notes        string
	OriginalText string
	Flexible     bool
	NoLocation   bool
	Category     itinerary.Category // set when the line itself decides (flight, rest day)
}

// scanOutcome is the result of one pass over the input lines.
type scanOutcome struct {
	Activities []rawActivity
	Warnings   []string
}

// cursor is the scanner's accumulated state for the entry currently being
// read. It is reset by flush, which is the only transition that emits an
// activity.
type cursor struct {
	date      string
	startTime string
	endTime   string
	name      string
	address   string
	notes     []string
	original  string
	flexible  bool
	restDay   bool
}

func (c *cursor) active() bool {
	return c.date != ""
}

// lineScanner is a single-pass scanner over input lines.
type lineScanner struct {
	refYear int
	cur     cursor
	out     scanOutcome
	assumed int // entries that received the default duration
	codes   int // reference code lines skipped
}

// scanItinerary runs the deterministic line parser over raw text. The
// reference year anchors "<day> <month>" dates that carry no year.
func scanItinerary(text string, refYear int) scanOutcome {
	scanner := &lineScanner{refYear: refYear}

	for _, line := range strings.Split(text, "\n") {
		scanner.scanLine(line)
	}
	scanner.finish()

	return scanner.out
}

func (s *lineScanner) scanLine(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return
	}

	// Continuation line: updates the current entry's end time without
	// starting a new one.
	if m := untilLineRe.FindStringSubmatch(trimmed); m != nil {
		if s.cur.active() {
			s.cur.endTime = itinerary.ParseTime(strings.TrimSpace(m[1]))
		}
		return
	}

	// A dated line flushes the previous entry and starts a new one.
	if m := datedLineRe.FindStringSubmatch(trimmed); m != nil {
		if date, ok := itinerary.ParseDate(m[1], s.refYear); ok {
			s.flush()
			s.startEntry(date, m[2], trimmed)
			return
		}
	}

	if addressLineRe.MatchString(trimmed) {
		if s.cur.active() {
			s.cur.address = trimmed
		}
		return
	}

	if refCodeRe.MatchString(trimmed) {
		s.codes++
		return
	}

	// Anything else is free-text notes for the current entry.
	if s.cur.active() {
		s.cur.notes = append(s.cur.notes, trimmed)
	}
}

// startEntry resets the cursor from a freshly matched dated line.
func (s *lineScanner) startEntry(date, remainder, original string) {
	s.cur = cursor{date: date, original: original}
	rest := remainder

	// An embedded "... Until HH:MM" suffix overrides the default duration.
	if m := untilSuffixRe.FindStringSubmatch(rest); m != nil {
		s.cur.endTime = itinerary.ParseTime(strings.TrimSpace(m[1]))
		rest = strings.TrimSpace(rest[:len(rest)-len(m[0])])
	}

	if m := leadTimeRe.FindStringSubmatch(rest); m != nil {
		s.cur.startTime = itinerary.ParseTime(strings.TrimSpace(m[1]))
		rest = rest[len(m[0]):]
	}

	rest = strings.TrimSpace(gmtTokenRe.ReplaceAllString(rest, " "))
	rest = strings.Join(strings.Fields(rest), " ")
	s.cur.name = rest

	if restDayRe.MatchString(rest) {
		s.cur.startTime = restDayStart
		s.cur.endTime = restDayEnd
		s.cur.restDay = true
		s.cur.flexible = true
		return
	}

	if s.cur.startTime == "" {
		// Timing inferred rather than explicit
		s.cur.startTime = itinerary.DefaultStartTime
		s.cur.flexible = true
	}
}

// flush emits the accumulated cursor state as a raw activity and resets the
// cursor. It is called when a new dated line starts and once at end of input.
func (s *lineScanner) flush() {
	if !s.cur.active() {
		return
	}
	c := s.cur
	s.cur = cursor{}

	if c.endTime == "" {
		c.endTime = itinerary.AddHours(c.startTime, defaultDurationHours)
		s.assumed++
	}

	// Overnight spans are flagged, never represented by wraparound.
	if c.endTime < c.startTime {
		s.out.Warnings = append(s.out.Warnings,
			fmt.Sprintf("Entry %q ends before it starts - overnight stays are split per day, end time pinned to %s", c.name, c.startTime))
		c.endTime = c.startTime
	}

	activity := rawActivity{
		Date:         c.date,
		StartTime:    c.startTime,
		EndTime:      c.endTime,
		Name:         c.name,
		Address:      c.address,
		Notes:        strings.Join(c.notes, " "),
		OriginalText: c.original,
		Flexible:     c.flexible,
	}

	if c.restDay {
		activity.NoLocation = true
		activity.Category = itinerary.CategoryFlexible
		s.out.Warnings = append(s.out.Warnings,
			fmt.Sprintf("Rest day on %s: flexible time from %s to %s, adjust as needed", c.date, restDayStart, restDayEnd))
	} else if isFlightEntry(c.name) {
		activity.Category = itinerary.CategoryFlight
	}

	s.out.Activities = append(s.out.Activities, activity)
}

// finish flushes the last entry and appends the aggregated warnings.
func (s *lineScanner) finish() {
	s.flush()

	if s.assumed > 0 {
		s.out.Warnings = append(s.out.Warnings,
			fmt.Sprintf("Assumed a %d-hour duration for %d entries without an explicit end time", defaultDurationHours, s.assumed))
	}
	if s.codes > 0 {
		s.out.Warnings = append(s.out.Warnings,
			fmt.Sprintf("Skipped %d booking/reference codes that are not schedule entries", s.codes))
	}
}

// isFlightEntry recognizes flight legs by airline code or depart/arrive wording.
func isFlightEntry(name string) bool {
	if flightCodeRe.MatchString(name) {
		return true
	}
	lower := strings.ToLower(name)
	return strings.Contains(lower, "depart") || strings.Contains(lower, "arrive")
}
