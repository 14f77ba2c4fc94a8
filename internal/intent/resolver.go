// Package intent is the per-turn slot-filling state machine. Resolve is a pure
// function of (current intent, raw turn payload, now): it never mutates its
// input and hands back a fresh Intent inside every Outcome.
package intent

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"stay_offers/internal/dates"
	"stay_offers/internal/domain"
)

type Field string

const (
	FieldCheckIn  Field = "check_in"
	FieldCheckOut Field = "check_out"
	FieldAdults   Field = "adults"
	FieldRooms    Field = "rooms"
)

type Reason string

const (
	ReasonMissingDates     Reason = "MISSING_DATES"
	ReasonMissingOccupancy Reason = "MISSING_OCCUPANCY"
	ReasonMissingFields    Reason = "MISSING_FIELDS"
	ReasonAmbiguousDate    Reason = "AMBIGUOUS_DATE"
	ReasonDateOrder        Reason = "DATE_ORDER"
	ReasonConfirm          Reason = "CONFIRM_DETAILS"
)

// Outcome is either Ready or NeedsClarification.
type Outcome interface {
	Slots() domain.Intent
	isOutcome()
}

// Ready carries an intent the caller has confirmed with no further edits.
type Ready struct {
	Intent domain.Intent
}

type NeedsClarification struct {
	Intent  domain.Intent
	Missing []Field
	Reason  Reason
	Prompt  string
	Options []string
}

func (r Ready) Slots() domain.Intent              { return r.Intent }
func (n NeedsClarification) Slots() domain.Intent { return n.Intent }
func (Ready) isOutcome()                          {}
func (NeedsClarification) isOutcome()             {}

type Resolver struct {
	defaultLoc *time.Location
}

func NewResolver(defaultLoc *time.Location) *Resolver {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	return &Resolver{defaultLoc: defaultLoc}
}

// Resolve merges payload into current and decides what the caller hears next.
func (r *Resolver) Resolve(current domain.Intent, payload map[string]any, now time.Time) Outcome {
	upd := coerce(payload)
	next := merge(current.Clone(), upd)

	if next.Rooms == nil {
		next.Rooms = intPtr(1)
	}
	if next.Children == nil {
		next.Children = intPtr(0)
	}
	missing := missingFields(next)
	loc := r.location(next)

	var notes []string
	if next.CheckIn != nil {
		res := dates.Normalize(*next.CheckIn, now, loc, dates.CheckIn)
		if res.Kind == dates.Ambiguous {
			next.CheckIn = nil
			return clarify(next, addField(missing, FieldCheckIn), ReasonAmbiguousDate, res.Prompt, res.Options)
		}
		next.CheckIn = &res.Date
		if res.Relative {
			notes = append(notes, relativeNote(res))
		}
	}

	co := dates.NormalizeCheckOut(deref(next.CheckOut), derefInt(next.Nights), deref(next.CheckIn), now, loc)
	switch co.Kind {
	case dates.Ambiguous:
		next.CheckOut = nil
		return clarify(next, addField(missing, FieldCheckOut), ReasonAmbiguousDate, co.Prompt, co.Options)
	case dates.Resolved:
		next.CheckOut = &co.Date
		if co.Relative {
			notes = append(notes, relativeNote(co))
		}
		if next.CheckIn != nil {
			if n, err := dates.NightsBetween(*next.CheckIn, co.Date); err == nil && n > 0 {
				next.Nights = &n
			}
		}
	}

	if len(missing) > 0 {
		reason, prompt := missingPrompt(missing)
		return clarify(next, missing, reason, prompt, nil)
	}

	if *next.CheckOut <= *next.CheckIn {
		prompt := fmt.Sprintf("I have check-in on %s and check-out on %s, but check-out has to be after check-in. Could you confirm both dates?",
			dates.Spoken(*next.CheckIn), dates.Spoken(*next.CheckOut))
		return clarify(next, []Field{FieldCheckIn, FieldCheckOut}, ReasonDateOrder, prompt, nil)
	}

	key := fingerprint(next)
	if (current.ConfirmationPending || current.Ready) && key == current.RecapKey {
		next.ConfirmationPending = false
		next.Ready = true
		next.RecapKey = key
		return Ready{Intent: next}
	}

	next.ConfirmationPending = true
	next.Ready = false
	next.RecapKey = key
	return NeedsClarification{
		Intent: next,
		Reason: ReasonConfirm,
		Prompt: recap(next, notes),
	}
}

func (r *Resolver) location(in domain.Intent) *time.Location {
	if in.Timezone != nil {
		if loc, err := time.LoadLocation(*in.Timezone); err == nil {
			return loc
		}
	}
	return r.defaultLoc
}

// merge overlays the explicitly provided fields of upd onto cur.
func merge(cur, upd domain.Intent) domain.Intent {
	// A new check-in or nights without an explicit check-out re-derives the
	// check-out from nights, keeping the length of stay.
	if upd.CheckOut == nil && (upd.Nights != nil || upd.CheckIn != nil) && (upd.Nights != nil || cur.Nights != nil) {
		cur.CheckOut = nil
	}
	// An explicit check-out replaces whatever nights we had.
	if upd.CheckOut != nil && upd.Nights == nil {
		cur.Nights = nil
	}
	set(&cur.CheckIn, upd.CheckIn)
	set(&cur.CheckOut, upd.CheckOut)
	set(&cur.Nights, upd.Nights)
	set(&cur.Adults, upd.Adults)
	set(&cur.Rooms, upd.Rooms)
	set(&cur.Children, upd.Children)
	set(&cur.PetFriendly, upd.PetFriendly)
	set(&cur.Accessible, upd.Accessible)
	set(&cur.TwoBeds, upd.TwoBeds)
	set(&cur.Parking, upd.Parking)
	set(&cur.LateArrival, upd.LateArrival)
	set(&cur.BudgetCap, upd.BudgetCap)
	set(&cur.Scenario, upd.Scenario)
	set(&cur.Timezone, upd.Timezone)
	return cur
}

func set[T any](dst **T, v *T) {
	if v != nil {
		*dst = v
	}
}

func missingFields(in domain.Intent) []Field {
	var out []Field
	if in.CheckIn == nil {
		out = append(out, FieldCheckIn)
	}
	if in.CheckOut == nil && in.Nights == nil {
		out = append(out, FieldCheckOut)
	}
	if in.Adults == nil {
		out = append(out, FieldAdults)
	}
	if in.Rooms == nil {
		out = append(out, FieldRooms)
	}
	return out
}

func addField(fs []Field, f Field) []Field {
	for _, x := range fs {
		if x == f {
			return fs
		}
	}
	return append([]Field{f}, fs...)
}

func clarify(in domain.Intent, missing []Field, reason Reason, prompt string, options []string) NeedsClarification {
	in.ConfirmationPending = false
	in.Ready = false
	in.RecapKey = ""
	return NeedsClarification{Intent: in, Missing: missing, Reason: reason, Prompt: prompt, Options: options}
}

func missingPrompt(missing []Field) (Reason, string) {
	var dateGaps, occGaps int
	for _, f := range missing {
		switch f {
		case FieldCheckIn, FieldCheckOut:
			dateGaps++
		case FieldAdults, FieldRooms:
			occGaps++
		}
	}
	switch {
	case occGaps == 0 && dateGaps == 1 && missing[0] == FieldCheckOut:
		return ReasonMissingDates, "And when will you be checking out, or how many nights will you stay?"
	case occGaps == 0:
		return ReasonMissingDates, "What dates are you looking at? I need a check-in date and either a check-out date or the number of nights."
	case dateGaps == 0:
		return ReasonMissingOccupancy, "How many adults will be staying, and how many rooms do you need?"
	}
	names := make([]string, 0, len(missing))
	for _, f := range missing {
		names = append(names, fieldLabel(f))
	}
	return ReasonMissingFields, "To look up rates I still need the " + joinAnd(names) + "."
}

func fieldLabel(f Field) string {
	switch f {
	case FieldCheckIn:
		return "check-in date"
	case FieldCheckOut:
		return "check-out date or number of nights"
	case FieldAdults:
		return "number of adults"
	case FieldRooms:
		return "number of rooms"
	}
	return string(f)
}

func relativeNote(res dates.Result) string {
	return fmt.Sprintf("Today is %s, so I took %q to mean %s.", res.SpokenToday, res.Phrase, res.AssumedDate)
}

func recap(in domain.Intent, notes []string) string {
	var b strings.Builder
	for _, n := range notes {
		b.WriteString(n)
		b.WriteString(" ")
	}
	fmt.Fprintf(&b, "Let me make sure I have this right: checking in %s and checking out %s, %s, %s, %s, %s.",
		dates.Spoken(*in.CheckIn), dates.Spoken(*in.CheckOut),
		plural(derefInt(in.Nights), "night"), plural(*in.Adults, "adult"),
		plural(*in.Children, "child"), plural(*in.Rooms, "room"))

	var extras []string
	if in.PetFriendly != nil {
		extras = append(extras, "pet-friendly room: "+yesNo(*in.PetFriendly))
	}
	if in.Accessible != nil {
		extras = append(extras, "accessible room: "+yesNo(*in.Accessible))
	}
	if in.TwoBeds != nil {
		extras = append(extras, "two beds: "+yesNo(*in.TwoBeds))
	}
	if in.Parking != nil {
		extras = append(extras, "parking: "+yesNo(*in.Parking))
	}
	if in.LateArrival != nil {
		extras = append(extras, "late arrival: "+yesNo(*in.LateArrival))
	}
	if in.BudgetCap != nil {
		extras = append(extras, "budget up to "+strconv.FormatFloat(*in.BudgetCap, 'f', -1, 64))
	}
	if len(extras) > 0 {
		b.WriteString(" Also, ")
		b.WriteString(joinAnd(extras))
		b.WriteString(".")
	}
	b.WriteString(" Is that all correct?")
	return b.String()
}

// fingerprint covers every slot the caller can change; state flags are excluded.
func fingerprint(in domain.Intent) string {
	parts := []string{
		deref(in.CheckIn), deref(in.CheckOut),
		optInt(in.Nights), optInt(in.Adults), optInt(in.Rooms), optInt(in.Children),
		optBool(in.PetFriendly), optBool(in.Accessible), optBool(in.TwoBeds), optBool(in.Parking), optBool(in.LateArrival),
		optFloat(in.BudgetCap), deref(in.Scenario), deref(in.Timezone),
	}
	return strings.Join(parts, "|")
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	if word == "child" {
		return strconv.Itoa(n) + " children"
	}
	return strconv.Itoa(n) + " " + word + "s"
}

func joinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func intPtr(n int) *int { return &n }

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func optInt(p *int) string {
	if p == nil {
		return "-"
	}
	return strconv.Itoa(*p)
}

func optBool(p *bool) string {
	if p == nil {
		return "-"
	}
	return strconv.FormatBool(*p)
}

func optFloat(p *float64) string {
	if p == nil {
		return "-"
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}
