package action

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateRange is a resolved calendar span. Single-day expressions set
// Start == End.
type dateRange struct {
	Start time.Time
	End   time.Time
}

var weekdays = map[string]time.Weekday{
	"monday": time.Monday, "tuesday": time.Tuesday, "wednesday": time.Wednesday,
	"thursday": time.Thursday, "friday": time.Friday, "saturday": time.Saturday,
	"sunday": time.Sunday,
}

var (
	weekdayRe  = regexp.MustCompile(`(?:next\s+|this\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)`)
	fromToRe   = regexp.MustCompile(`from\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\s+to\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)`)
	durationRe = regexp.MustCompile(`(\d+)\s*(days?|weeks?)`)
	clockRe    = regexp.MustCompile(`at\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?`)
)

// parseDateRange extracts a date range from a lowercase query relative to
// now. ok is false when the query carries no date expression at all, so
// callers can emit null slots instead of guessing.
func parseDateRange(q string, now time.Time) (dateRange, bool) {
	today := truncateDay(now)

	if m := fromToRe.FindStringSubmatch(q); m != nil {
		start := nextWeekday(today, weekdays[m[1]])
		end := nextWeekday(today, weekdays[m[2]])
		if !end.After(start) {
			end = end.AddDate(0, 0, 7)
		}
		return dateRange{Start: start, End: end}, true
	}

	var r dateRange
	found := false
	switch {
	case weekdayRe.MatchString(q):
		m := weekdayRe.FindStringSubmatch(q)
		day := nextWeekday(today, weekdays[m[1]])
		r = dateRange{Start: day, End: day}
		found = true
	case strings.Contains(q, "tomorrow"):
		d := today.AddDate(0, 0, 1)
		r = dateRange{Start: d, End: d}
		found = true
	case strings.Contains(q, "today"):
		r = dateRange{Start: today, End: today}
		found = true
	case strings.Contains(q, "next week"):
		start := today.AddDate(0, 0, 7)
		r = dateRange{Start: start, End: start.AddDate(0, 0, 4)}
		found = true
	case strings.Contains(q, "this week"):
		start := today.AddDate(0, 0, 1)
		end := nextWeekday(today, time.Friday)
		if end.Before(start) {
			end = start
		}
		r = dateRange{Start: start, End: end}
		found = true
	}

	if m := durationRe.FindStringSubmatch(q); m != nil {
		n, _ := strconv.Atoi(m[1])
		if strings.HasPrefix(m[2], "week") {
			n *= 7
		}
		if n > 0 {
			if !found {
				// A bare duration starts from the next day, matching how
				// people phrase "take 3 days of leave".
				r.Start = today.AddDate(0, 0, 1)
				found = true
			}
			r.End = r.Start.AddDate(0, 0, n-1)
		}
	}

	return r, found
}

// parseMeetingTime resolves a date expression plus an optional clock time
// for scheduling. Without a clock time meetings default to 10:00.
func parseMeetingTime(q string, now time.Time) (time.Time, bool) {
	r, ok := parseDateRange(q, now)
	if !ok {
		return time.Time{}, false
	}
	hour, minute := 10, 0
	if m := clockRe.FindStringSubmatch(q); m != nil {
		hour, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		switch m[3] {
		case "pm":
			if hour != 12 {
				hour += 12
			}
		case "am":
			if hour == 12 {
				hour = 0
			}
		default:
			// Bare small hours read as afternoon: "at 3" means 15:00.
			if hour < 9 {
				hour += 12
			}
		}
	}
	d := r.Start
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, d.Location()), true
}

// nextWeekday returns the next occurrence of target strictly after today.
func nextWeekday(today time.Time, target time.Weekday) time.Time {
	ahead := (int(target) - int(today.Weekday()) + 7) % 7
	if ahead == 0 {
		ahead = 7
	}
	return today.AddDate(0, 0, ahead)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
