// Package dates turns spoken date phrases into ISO calendar dates against the
// caller's local calendar. Anything that cannot be pinned to one date comes
// back as Ambiguous with a prompt for the caller.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const ISOLayout = "2006-01-02"

type Role string

const (
	CheckIn  Role = "check_in"
	CheckOut Role = "check_out"
)

func (r Role) label() string {
	if r == CheckOut {
		return "check-out"
	}
	return "check-in"
}

type Kind int

const (
	Absent Kind = iota
	Resolved
	Ambiguous
)

// Result is either Resolved (Date set) or Ambiguous (Prompt set). Absent is
// only produced by NormalizeCheckOut when there is nothing to normalize.
type Result struct {
	Kind   Kind
	Phrase string
	Date   string

	// Relative is true when Date was computed from a phrase like "tomorrow";
	// the caller must read SpokenToday/AssumedDate back for confirmation.
	Relative    bool
	SpokenToday string
	AssumedDate string

	Prompt  string
	Options []string
}

var (
	isoRe        = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	weekendRe    = regexp.MustCompile(`\bweekend\b`)
	inNRe        = regexp.MustCompile(`^in\s+(\S+)\s+(day|days|week|weeks)$`)
	weekdayRe    = regexp.MustCompile(`^(?:(this|next|on)\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)$`)
	dayOfMonthRe = regexp.MustCompile(`^(?:on\s+)?(the\s+)?(\d{1,2})(st|nd|rd|th)?$`)
)

var numberWords = map[string]int{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday, "friday": time.Friday,
	"saturday": time.Saturday,
}

// Normalize resolves phrase against the local calendar day of now in loc.
func Normalize(phrase string, now time.Time, loc *time.Location, role Role) Result {
	if loc == nil {
		loc = time.UTC
	}
	raw := strings.TrimSpace(phrase)
	p := strings.ToLower(strings.Join(strings.Fields(raw), " "))

	if isoRe.MatchString(p) {
		if _, err := time.ParseInLocation(ISOLayout, p, loc); err == nil {
			return Result{Kind: Resolved, Phrase: raw, Date: p}
		}
	}

	if weekendRe.MatchString(p) {
		return Result{
			Kind:   Ambiguous,
			Phrase: raw,
			Prompt: fmt.Sprintf("For the %s, do you mean Friday to Sunday, or Saturday to Monday?", role.label()),
		}
	}

	today := localDay(now, loc)
	if d, ok := relative(p, today); ok {
		return Result{
			Kind:        Resolved,
			Phrase:      raw,
			Date:        d.Format(ISOLayout),
			Relative:    true,
			SpokenToday: spoken(today),
			AssumedDate: spoken(d),
		}
	}

	if m := dayOfMonthRe.FindStringSubmatch(p); m != nil && (m[1] != "" || m[3] != "") {
		day, _ := strconv.Atoi(m[2])
		if opts := monthOptions(today, day); len(opts) > 0 {
			names := make([]string, 0, len(opts))
			iso := make([]string, 0, len(opts))
			for _, o := range opts {
				names = append(names, o.Format("January 2"))
				iso = append(iso, o.Format(ISOLayout))
			}
			return Result{
				Kind:    Ambiguous,
				Phrase:  raw,
				Prompt:  fmt.Sprintf("For the %s, did you mean %s?", role.label(), strings.Join(names, " or ")),
				Options: iso,
			}
		}
	}

	return Result{
		Kind:   Ambiguous,
		Phrase: raw,
		Prompt: fmt.Sprintf("Sorry, I couldn't pin down the %s date. Could you give it as YYYY-MM-DD?", role.label()),
	}
}

// NormalizeCheckOut normalizes an explicit check-out, or derives it from
// checkIn+nights when no check-out was given. nights <= 0 means "not supplied".
func NormalizeCheckOut(checkOut string, nights int, checkIn string, now time.Time, loc *time.Location) Result {
	if strings.TrimSpace(checkOut) != "" {
		return Normalize(checkOut, now, loc, CheckOut)
	}
	if nights <= 0 || !isoRe.MatchString(checkIn) {
		return Result{Kind: Absent}
	}
	in, err := time.Parse(ISOLayout, checkIn)
	if err != nil {
		return Result{Kind: Absent}
	}
	return Result{Kind: Resolved, Date: in.AddDate(0, 0, nights).Format(ISOLayout)}
}

// NightsBetween returns the number of nights from checkIn to checkOut; both
// must be ISO dates.
func NightsBetween(checkIn, checkOut string) (int, error) {
	in, err := time.Parse(ISOLayout, checkIn)
	if err != nil {
		return 0, err
	}
	out, err := time.Parse(ISOLayout, checkOut)
	if err != nil {
		return 0, err
	}
	return int(out.Sub(in).Hours() / 24), nil
}

func AddDays(iso string, n int) (string, error) {
	t, err := time.Parse(ISOLayout, iso)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(ISOLayout), nil
}

// Spoken formats an ISO date the way it is read back to a caller.
func Spoken(iso string) string {
	t, err := time.Parse(ISOLayout, iso)
	if err != nil {
		return iso
	}
	return t.Format("Monday, January 2, 2006")
}

func relative(p string, today time.Time) (time.Time, bool) {
	switch p {
	case "today", "tonight":
		return today, true
	case "tomorrow", "tomorrow night":
		return today.AddDate(0, 0, 1), true
	case "day after tomorrow", "the day after tomorrow":
		return today.AddDate(0, 0, 2), true
	}

	if m := inNRe.FindStringSubmatch(p); m != nil {
		n, ok := numberWords[m[1]]
		if !ok {
			v, err := strconv.Atoi(m[1])
			if err != nil || v < 0 {
				return time.Time{}, false
			}
			n = v
		}
		if strings.HasPrefix(m[2], "week") {
			n *= 7
		}
		return today.AddDate(0, 0, n), true
	}

	if m := weekdayRe.FindStringSubmatch(p); m != nil {
		target := weekdays[m[2]]
		delta := (int(target) - int(today.Weekday()) + 7) % 7
		if m[1] == "next" {
			delta += 7
		}
		return today.AddDate(0, 0, delta), true
	}
	return time.Time{}, false
}

func monthOptions(today time.Time, day int) []time.Time {
	var out []time.Time
	for i := 0; i < 2; i++ {
		first := time.Date(today.Year(), today.Month()+time.Month(i), 1, 0, 0, 0, 0, today.Location())
		if day < 1 || day > daysIn(first) {
			continue
		}
		out = append(out, first.AddDate(0, 0, day-1))
	}
	return out
}

func daysIn(first time.Time) int {
	return first.AddDate(0, 1, -1).Day()
}

func localDay(now time.Time, loc *time.Location) time.Time {
	l := now.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, loc)
}

func spoken(t time.Time) string {
	return t.Format("Monday, January 2")
}
