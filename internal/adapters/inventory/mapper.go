package inventory

import (
	"strconv"
	"strings"

	"stay_offers/internal/domain"
)

/********** alias registries (single source of truth) **********/

var snapshotAliases = map[string][]string{
	"property_id": {"property_id", "propertyId", "hotel_id", "hotelId", "property.id"},
	"version":     {"version", "snapshot_version", "snapshotVersion", "etag"},
	"currency":    {"currency", "currency_code", "currencyCode", "pricing.currency"},
	"start":       {"start_date", "startDate", "check_in", "checkIn", "stay.check_in"},
	"end":         {"end_date", "endDate", "check_out", "checkOut", "stay.check_out"},
	"rooms":       {"room_types", "roomTypes", "rooms", "inventory.room_types"},
}

var roomAliases = map[string][]string{
	"id":          {"id", "room_type_id", "roomTypeId", "code", "room_code"},
	"name":        {"name", "room_name", "roomName", "title"},
	"description": {"description", "room_description", "summary"},
	"features":    {"features", "amenities", "room_amenities"},
	"accessible":  {"accessible", "is_accessible", "isAccessible", "ada"},
	"max_occ":     {"max_occupancy", "maxOccupancy", "occupancy.max", "capacity", "max_guests"},
	"available":   {"rooms_available", "roomsAvailable", "available", "inventory.available", "availability.rooms"},
	"occupancy":   {"occupancy_rate", "occupancyRate", "occupancy.estimate", "occupancy_pct", "sold_ratio", "occupancy"},
	"plans":       {"rate_plans", "ratePlans", "rates", "plans"},
}

var planAliases = map[string][]string{
	"id":       {"id", "rate_plan_id", "ratePlanId", "code", "rate_code"},
	"name":     {"name", "rate_plan_name", "ratePlanName", "title"},
	"currency": {"currency", "currency_code", "currencyCode", "total.currency"},
	"after":    {"total_after_tax", "totalAfterTax", "amountAfterTax", "total.amountAfterTax", "totals.after_tax"},
	"before":   {"total_before_tax", "totalBeforeTax", "amountBeforeTax", "total.amountBeforeTax", "totals.before_tax"},
	"taxes":    {"taxes_and_fees", "taxesAndFees", "taxes", "total.taxes", "totals.taxes"},
	"refund":   {"refundability", "refund_policy", "cancellation.type"},
	"refundB":  {"refundable", "is_refundable", "isRefundable"},
	"payment":  {"payment_timing", "paymentTiming", "payment", "payment_type", "paymentType"},
	"nightly":  {"nightly_rates", "nightlyRates", "nightly", "daily_rates"},
	"fees":     {"included_fees", "includedFees", "fees"},
	"cta":      {"restrictions.closed_to_arrival", "restrictions.cta", "closed_to_arrival", "cta"},
	"ctd":      {"restrictions.closed_to_departure", "restrictions.ctd", "closed_to_departure", "ctd"},
	"min_los":  {"restrictions.min_los", "restrictions.minLos", "restrictions.min_length_of_stay", "min_los", "minLos"},
	"max_los":  {"restrictions.max_los", "restrictions.maxLos", "restrictions.max_length_of_stay", "max_los", "maxLos"},
}

var refundValues = map[string]domain.Refundability{
	"refundable":     domain.Refundable,
	"free_cancel":    domain.Refundable,
	"flexible":       domain.Refundable,
	"non_refundable": domain.NonRefundable,
	"nonrefundable":  domain.NonRefundable,
	"non-refundable": domain.NonRefundable,
	"prepaid":        domain.NonRefundable,
}

var paymentValues = map[string]domain.PaymentTiming{
	"pay_now":         domain.PayNow,
	"paynow":          domain.PayNow,
	"prepay":          domain.PayNow,
	"prepaid":         domain.PayNow,
	"pay_at_property": domain.PayAtProperty,
	"pay_later":       domain.PayAtProperty,
	"hotel_collect":   domain.PayAtProperty,
	"at_property":     domain.PayAtProperty,
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// firstStr returns the first non-empty string (or number rendered as one) for an alias set.
func firstStr(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		switch v := lookupAny(m, p).(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// getFloatFlexible: number from several paths (float64/int/string like "8,0").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func getIntFlexible(m map[string]any, paths ...string) *int {
	if f := getFloatFlexible(m, paths...); f != nil {
		n := int(*f)
		return &n
	}
	return nil
}

func getBool(m map[string]any, paths ...string) (bool, bool) {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case bool:
			return v, true
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
				return b, true
			}
		}
	}
	return false, false
}

func firstSliceMaps(m map[string]any, paths ...string) []map[string]any {
	for _, k := range paths {
		raw, ok := lookupAny(m, k).([]any)
		if !ok {
			continue
		}
		out := make([]map[string]any, 0, len(raw))
		for _, it := range raw {
			if obj, ok := it.(map[string]any); ok {
				out = append(out, obj)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// firstSliceStrings: accept []any with either strings or {name/label}.
func firstSliceStrings(m map[string]any, paths ...string) []string {
	for _, k := range paths {
		raw, ok := lookupAny(m, k).([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(raw))
		for _, it := range raw {
			switch t := it.(type) {
			case string:
				if t != "" {
					out = append(out, t)
				}
			case map[string]any:
				if n, ok := t["name"].(string); ok && n != "" {
					out = append(out, n)
				} else if n, ok := t["label"].(string); ok && n != "" {
					out = append(out, n)
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func normKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}

/********** snapshot mapper **********/

func mapSnapshot(p map[string]any) domain.InventorySnapshot {
	snap := domain.InventorySnapshot{
		PropertyID: firstStr(p, snapshotAliases, "property_id"),
		Version:    firstStr(p, snapshotAliases, "version"),
		Currency:   strings.ToUpper(firstStr(p, snapshotAliases, "currency")),
		StartDate:  firstStr(p, snapshotAliases, "start"),
		EndDate:    firstStr(p, snapshotAliases, "end"),
	}
	for _, r := range firstSliceMaps(p, snapshotAliases["rooms"]...) {
		snap.RoomTypes = append(snap.RoomTypes, mapRoomType(r))
	}
	return snap
}

func mapRoomType(r map[string]any) domain.RoomTypeInventory {
	rt := domain.RoomTypeInventory{
		ID:             firstStr(r, roomAliases, "id"),
		Name:           firstStr(r, roomAliases, "name"),
		Description:    firstStr(r, roomAliases, "description"),
		Features:       firstSliceStrings(r, roomAliases["features"]...),
		RoomsAvailable: getIntFlexible(r, roomAliases["available"]...),
	}
	rt.Accessible, _ = getBool(r, roomAliases["accessible"]...)
	if n := getIntFlexible(r, roomAliases["max_occ"]...); n != nil {
		rt.MaxOccupancy = *n
	}
	// Providers report occupancy either as a fraction or a percentage.
	if f := getFloatFlexible(r, roomAliases["occupancy"]...); f != nil {
		v := *f
		if v > 1 {
			v /= 100
		}
		rt.Occupancy = &v
	}
	for _, rp := range firstSliceMaps(r, roomAliases["plans"]...) {
		rt.RatePlans = append(rt.RatePlans, mapRatePlan(rp))
	}
	return rt
}

func mapRatePlan(p map[string]any) domain.RatePlan {
	rp := domain.RatePlan{
		ID:             firstStr(p, planAliases, "id"),
		Name:           firstStr(p, planAliases, "name"),
		Currency:       strings.ToUpper(firstStr(p, planAliases, "currency")),
		TotalAfterTax:  getFloatFlexible(p, planAliases["after"]...),
		TotalBeforeTax: getFloatFlexible(p, planAliases["before"]...),
		TaxesAndFees:   getFloatFlexible(p, planAliases["taxes"]...),
		Refundability:  domain.RefundabilityUnknown,
		PaymentTiming:  domain.PaymentTimingUnknown,
	}

	if r, ok := refundValues[normKey(firstStr(p, planAliases, "refund"))]; ok {
		rp.Refundability = r
	} else if b, ok := getBool(p, planAliases["refundB"]...); ok {
		rp.Refundability = domain.NonRefundable
		if b {
			rp.Refundability = domain.Refundable
		}
	}
	if pt, ok := paymentValues[normKey(firstStr(p, planAliases, "payment"))]; ok {
		rp.PaymentTiming = pt
	}

	for _, n := range firstSliceMaps(p, planAliases["nightly"]...) {
		amt := getFloatFlexible(n, "amount", "price", "rate", "value")
		if amt == nil {
			continue
		}
		rp.NightlyRates = append(rp.NightlyRates, domain.NightlyRate{
			Date:   firstStr(n, map[string][]string{"date": {"date", "night", "stay_date"}}, "date"),
			Amount: *amt,
		})
	}
	for _, f := range firstSliceMaps(p, planAliases["fees"]...) {
		amt := getFloatFlexible(f, "per_night", "perNight", "amount")
		if amt == nil {
			continue
		}
		rp.IncludedFees = append(rp.IncludedFees, domain.Fee{
			Name:     firstStr(f, map[string][]string{"name": {"name", "type", "label"}}, "name"),
			PerNight: *amt,
		})
	}

	rp.Restrictions.ClosedToArrival, _ = getBool(p, planAliases["cta"]...)
	rp.Restrictions.ClosedToDeparture, _ = getBool(p, planAliases["ctd"]...)
	if n := getIntFlexible(p, planAliases["min_los"]...); n != nil {
		rp.Restrictions.MinLengthOfStay = *n
	}
	if n := getIntFlexible(p, planAliases["max_los"]...); n != nil {
		rp.Restrictions.MaxLengthOfStay = *n
	}
	return rp
}
