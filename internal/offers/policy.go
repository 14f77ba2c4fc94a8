package offers

import (
	"slices"
	"strings"
	"time"

	"stay_offers/internal/dates"
	"stay_offers/internal/domain"
)

const (
	nonRefundableSummary = "This rate is non-refundable and cannot be changed or cancelled."
	noRuleSummary        = "Cancellation terms for this rate will be confirmed by the property."
	passedSummary        = "The free cancellation window for this stay has already passed."
	defaultRuleSummary   = "Free cancellation until {deadline}."
	defaultCutoff        = "18:00"
	deadlineLayout       = "3:04 PM on Monday, January 2"
)

// MatchRule returns the highest-priority rule covering the room type and
// check-in date. Ties keep the earlier rule.
func MatchRule(rules []domain.CancellationRule, roomTypeID, checkIn string) (domain.CancellationRule, bool) {
	var best domain.CancellationRule
	found := false
	for _, r := range rules {
		if len(r.RoomTypeIDs) > 0 && !slices.Contains(r.RoomTypeIDs, roomTypeID) {
			continue
		}
		if r.StartDate != "" && checkIn < r.StartDate {
			continue
		}
		if r.EndDate != "" && checkIn > r.EndDate {
			continue
		}
		if !found || r.Priority > best.Priority {
			best, found = r, true
		}
	}
	return best, found
}

// Deadline is check-in minus daysBefore at the cutoff time in loc.
func Deadline(checkIn string, daysBefore int, cutoff string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(dates.ISOLayout, checkIn, loc)
	if err != nil {
		return time.Time{}, err
	}
	if cutoff == "" {
		cutoff = defaultCutoff
	}
	at, err := time.Parse("15:04", cutoff)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day()-daysBefore, at.Hour(), at.Minute(), 0, 0, loc), nil
}

// CancellationSummary renders the policy line for one candidate.
func CancellationSummary(c Candidate, rules []domain.CancellationRule, checkIn string, loc *time.Location, now time.Time) string {
	if c.Refundability == domain.NonRefundable {
		return nonRefundableSummary
	}
	rule, ok := MatchRule(rules, c.RoomTypeID, checkIn)
	if !ok {
		return noRuleSummary
	}
	deadline, err := Deadline(checkIn, rule.FreeCancelDaysBefore, rule.CutoffTime, loc)
	if err != nil {
		return noRuleSummary
	}
	if now.After(deadline) {
		if rule.PassedSummary != "" {
			return rule.PassedSummary
		}
		return passedSummary
	}
	summary := rule.Summary
	if summary == "" {
		summary = defaultRuleSummary
	}
	return strings.ReplaceAll(summary, "{deadline}", deadline.Format(deadlineLayout))
}
