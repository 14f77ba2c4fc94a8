package mysql

// -----------------------------------------------------------------------------
// WRITE QUERIES
// -----------------------------------------------------------------------------

const upsertPropertySQL = `
INSERT INTO properties
  (id, name, timezone, default_currency, check_in_time, check_out_time,
   pet_fee_per_night, front_desk_open, front_desk_close)
VALUES
  (:id, :name, :timezone, :default_currency, :check_in_time, :check_out_time,
   :pet_fee_per_night, :front_desk_open, :front_desk_close)
ON DUPLICATE KEY UPDATE
  name              = VALUES(name),
  timezone          = VALUES(timezone),
  default_currency  = VALUES(default_currency),
  check_in_time     = VALUES(check_in_time),
  check_out_time    = VALUES(check_out_time),
  pet_fee_per_night = VALUES(pet_fee_per_night),
  front_desk_open   = VALUES(front_desk_open),
  front_desk_close  = VALUES(front_desk_close),
  updated_at        = CURRENT_TIMESTAMP
`

const upsertCommerceSQL = `
INSERT INTO commerce_config
  (property_id, strategy_mode, urgency_enabled, urgency_types, can_text_link,
   can_transfer_front_desk, can_collect_waitlist, web_booking_url,
   breakfast_price, late_checkout_fee, room_tiers)
VALUES
  (:property_id, :strategy_mode, :urgency_enabled, :urgency_types, :can_text_link,
   :can_transfer_front_desk, :can_collect_waitlist, :web_booking_url,
   :breakfast_price, :late_checkout_fee, :room_tiers)
ON DUPLICATE KEY UPDATE
  strategy_mode           = VALUES(strategy_mode),
  urgency_enabled         = VALUES(urgency_enabled),
  urgency_types           = VALUES(urgency_types),
  can_text_link           = VALUES(can_text_link),
  can_transfer_front_desk = VALUES(can_transfer_front_desk),
  can_collect_waitlist    = VALUES(can_collect_waitlist),
  web_booking_url         = VALUES(web_booking_url),
  breakfast_price         = VALUES(breakfast_price),
  late_checkout_fee       = VALUES(late_checkout_fee),
  room_tiers              = VALUES(room_tiers)
`

const deleteRulesSQL = `DELETE FROM cancellation_rules WHERE property_id = ?`

// Empty date strings are stored as NULL so they match every stay.
const insertRuleSQL = `
INSERT INTO cancellation_rules
  (property_id, rule_id, position, room_type_ids, start_date, end_date, priority,
   free_cancel_days_before, cutoff_time, summary, passed_summary)
VALUES
  (:property_id, :rule_id, :position, :room_type_ids, NULLIF(:start_date, ''), NULLIF(:end_date, ''), :priority,
   :free_cancel_days_before, :cutoff_time, :summary, :passed_summary)
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// Commerce config is optional; a property without a row gets engine defaults.
const getPropertySQL = `
SELECT
  p.id,
  p.name,
  p.timezone,
  p.default_currency,
  p.check_in_time,
  p.check_out_time,
  p.pet_fee_per_night,
  p.front_desk_open,
  p.front_desk_close,
  c.strategy_mode,
  c.urgency_enabled,
  c.urgency_types,
  c.can_text_link,
  c.can_transfer_front_desk,
  c.can_collect_waitlist,
  c.web_booking_url,
  c.breakfast_price,
  c.late_checkout_fee,
  c.room_tiers
FROM properties p
LEFT JOIN commerce_config c ON c.property_id = p.id
WHERE p.id = ?
`

// Dates are formatted in SQL so the scan does not depend on parseTime.
const listRulesSQL = `
SELECT
  rule_id,
  room_type_ids,
  DATE_FORMAT(start_date, '%Y-%m-%d') AS start_date,
  DATE_FORMAT(end_date, '%Y-%m-%d')   AS end_date,
  priority,
  free_cancel_days_before,
  cutoff_time,
  summary,
  passed_summary
FROM cancellation_rules
WHERE property_id = ?
ORDER BY position, rule_id
`
