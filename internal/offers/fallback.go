package offers

import (
	"time"

	"stay_offers/internal/domain"
)

// FallbackAction is the recovery step offered when fewer than two offers
// survive. The zero value means no fallback.
type FallbackAction string

const (
	FallbackNone           FallbackAction = ""
	FallbackAlternateDates FallbackAction = "suggest_alternate_dates"
	FallbackTextLink       FallbackAction = "text_booking_link"
	FallbackTransfer       FallbackAction = "transfer_front_desk"
	FallbackContact        FallbackAction = "contact_property"
	FallbackWaitlist       FallbackAction = "join_waitlist"
)

func ChooseFallback(channel Channel, caps domain.ChannelCapability, openNow bool, offerCount int) FallbackAction {
	if offerCount >= 2 {
		return FallbackNone
	}
	if offerCount == 1 {
		switch {
		case channel == ChannelWeb:
			return FallbackAlternateDates
		case caps.CanTextLink:
			return FallbackTextLink
		case caps.CanTransferFrontDesk && openNow:
			return FallbackTransfer
		}
		return FallbackAlternateDates
	}

	if channel == ChannelWeb {
		if caps.WebBookingURL != "" {
			return FallbackContact
		}
		return FallbackAlternateDates
	}
	switch {
	case caps.CanTransferFrontDesk && openNow:
		return FallbackTransfer
	case caps.CanTextLink:
		return FallbackTextLink
	case caps.CanCollectWaitlist:
		return FallbackWaitlist
	}
	return FallbackAlternateDates
}

// OpenAt reports whether the front desk is staffed at now in the property's
// timezone. Missing hours mean a 24h desk; close before open wraps midnight.
func OpenAt(stay domain.StayPolicy, tz string, now time.Time) bool {
	if stay.FrontDeskOpen == "" && stay.FrontDeskClose == "" {
		return true
	}
	open, err1 := minuteOfDay(stay.FrontDeskOpen)
	closeAt, err2 := minuteOfDay(stay.FrontDeskClose)
	if err1 != nil || err2 != nil {
		return true
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}
	local := now.In(loc)
	m := local.Hour()*60 + local.Minute()
	switch {
	case open == closeAt:
		return true
	case open < closeAt:
		return m >= open && m < closeAt
	}
	return m >= open || m < closeAt
}

func minuteOfDay(hhmm string) (int, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
