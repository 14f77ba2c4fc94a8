package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"stay_offers/internal/domain"
)

func valStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func valF64(f float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: f != 0}
}

// valJSON marshals v, storing NULL for empty collections.
func valJSON[T any](v []T) (sql.NullString, error) {
	if len(v) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	return sql.NullString{String: string(b), Valid: err == nil}, err
}

func valJSONMap(m map[string]string) (sql.NullString, error) {
	if len(m) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(m)
	return sql.NullString{String: string(b), Valid: err == nil}, err
}

type propertyRow struct {
	ID              string          `db:"id"`
	Name            string          `db:"name"`
	Timezone        string          `db:"timezone"`
	DefaultCurrency string          `db:"default_currency"`
	CheckInTime     string          `db:"check_in_time"`
	CheckOutTime    string          `db:"check_out_time"`
	PetFeePerNight  sql.NullFloat64 `db:"pet_fee_per_night"`
	FrontDeskOpen   sql.NullString  `db:"front_desk_open"`
	FrontDeskClose  sql.NullString  `db:"front_desk_close"`

	StrategyMode         sql.NullString  `db:"strategy_mode"`
	UrgencyEnabled       sql.NullBool    `db:"urgency_enabled"`
	UrgencyTypes         sql.NullString  `db:"urgency_types"`
	CanTextLink          sql.NullBool    `db:"can_text_link"`
	CanTransferFrontDesk sql.NullBool    `db:"can_transfer_front_desk"`
	CanCollectWaitlist   sql.NullBool    `db:"can_collect_waitlist"`
	WebBookingURL        sql.NullString  `db:"web_booking_url"`
	BreakfastPrice       sql.NullFloat64 `db:"breakfast_price"`
	LateCheckoutFee      sql.NullFloat64 `db:"late_checkout_fee"`
	RoomTiers            sql.NullString  `db:"room_tiers"`
}

type commerceRow struct {
	PropertyID           string          `db:"property_id"`
	StrategyMode         string          `db:"strategy_mode"`
	UrgencyEnabled       bool            `db:"urgency_enabled"`
	UrgencyTypes         sql.NullString  `db:"urgency_types"`
	CanTextLink          bool            `db:"can_text_link"`
	CanTransferFrontDesk bool            `db:"can_transfer_front_desk"`
	CanCollectWaitlist   bool            `db:"can_collect_waitlist"`
	WebBookingURL        sql.NullString  `db:"web_booking_url"`
	BreakfastPrice       sql.NullFloat64 `db:"breakfast_price"`
	LateCheckoutFee      sql.NullFloat64 `db:"late_checkout_fee"`
	RoomTiers            sql.NullString  `db:"room_tiers"`
}

type ruleRow struct {
	PropertyID           string         `db:"property_id"`
	RuleID               string         `db:"rule_id"`
	Position             int            `db:"position"`
	RoomTypeIDs          sql.NullString `db:"room_type_ids"`
	StartDate            sql.NullString `db:"start_date"`
	EndDate              sql.NullString `db:"end_date"`
	Priority             int            `db:"priority"`
	FreeCancelDaysBefore int            `db:"free_cancel_days_before"`
	CutoffTime           string         `db:"cutoff_time"`
	Summary              string         `db:"summary"`
	PassedSummary        sql.NullString `db:"passed_summary"`
}

// Repo is the MySQL-backed PropertyContextProvider.
type Repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) *Repo { return &Repo{db: db} }

// Open connects with pool limits suited to a small read-mostly workload.
func Open(dsn string) (*Repo, error) {
	db, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	return &Repo{db: db}, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) GetPropertyContext(ctx context.Context, id string) (domain.PropertyContext, error) {
	var row propertyRow
	if err := r.db.GetContext(ctx, &row, getPropertySQL, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.PropertyContext{}, fmt.Errorf("property %s: %w", id, domain.ErrNotFound)
		}
		return domain.PropertyContext{}, fmt.Errorf("get property %s: %w", id, err)
	}
	var rules []ruleRow
	if err := r.db.SelectContext(ctx, &rules, listRulesSQL, id); err != nil {
		return domain.PropertyContext{}, fmt.Errorf("list cancellation rules %s: %w", id, err)
	}

	pc := domain.PropertyContext{
		PropertyID:      row.ID,
		Name:            row.Name,
		Timezone:        row.Timezone,
		DefaultCurrency: row.DefaultCurrency,
		Stay: domain.StayPolicy{
			CheckInTime:    row.CheckInTime,
			CheckOutTime:   row.CheckOutTime,
			PetFeePerNight: row.PetFeePerNight.Float64,
			FrontDeskOpen:  row.FrontDeskOpen.String,
			FrontDeskClose: row.FrontDeskClose.String,
		},
		Commerce: domain.CommerceConfig{
			StrategyMode:   row.StrategyMode.String,
			UrgencyEnabled: row.UrgencyEnabled.Bool,
			Capabilities: domain.ChannelCapability{
				CanTextLink:          row.CanTextLink.Bool,
				CanTransferFrontDesk: row.CanTransferFrontDesk.Bool,
				CanCollectWaitlist:   row.CanCollectWaitlist.Bool,
				WebBookingURL:        row.WebBookingURL.String,
			},
			BreakfastPrice:  row.BreakfastPrice.Float64,
			LateCheckoutFee: row.LateCheckoutFee.Float64,
		},
	}
	if row.UrgencyTypes.Valid {
		if err := json.Unmarshal([]byte(row.UrgencyTypes.String), &pc.Commerce.UrgencyTypes); err != nil {
			return domain.PropertyContext{}, fmt.Errorf("decode urgency_types %s: %w", id, err)
		}
	}
	if row.RoomTiers.Valid {
		if err := json.Unmarshal([]byte(row.RoomTiers.String), &pc.Commerce.RoomTiers); err != nil {
			return domain.PropertyContext{}, fmt.Errorf("decode room_tiers %s: %w", id, err)
		}
	}
	for _, rr := range rules {
		rule := domain.CancellationRule{
			ID:                   rr.RuleID,
			StartDate:            rr.StartDate.String,
			EndDate:              rr.EndDate.String,
			Priority:             rr.Priority,
			FreeCancelDaysBefore: rr.FreeCancelDaysBefore,
			CutoffTime:           rr.CutoffTime,
			Summary:              rr.Summary,
			PassedSummary:        rr.PassedSummary.String,
		}
		if rr.RoomTypeIDs.Valid {
			if err := json.Unmarshal([]byte(rr.RoomTypeIDs.String), &rule.RoomTypeIDs); err != nil {
				return domain.PropertyContext{}, fmt.Errorf("decode room_type_ids %s/%s: %w", id, rr.RuleID, err)
			}
		}
		pc.Cancellation = append(pc.Cancellation, rule)
	}
	return pc, nil
}

// UpsertPropertyContext writes the property, its commerce config and replaces
// its cancellation rules in one transaction.
func (r *Repo) UpsertPropertyContext(ctx context.Context, pc domain.PropertyContext) (err error) {
	urgency, err := valJSON(pc.Commerce.UrgencyTypes)
	if err != nil {
		return err
	}
	tiers, err := valJSONMap(pc.Commerce.RoomTiers)
	if err != nil {
		return err
	}
	prop := propertyRow{
		ID:              pc.PropertyID,
		Name:            pc.Name,
		Timezone:        pc.Timezone,
		DefaultCurrency: pc.DefaultCurrency,
		CheckInTime:     pc.Stay.CheckInTime,
		CheckOutTime:    pc.Stay.CheckOutTime,
		PetFeePerNight:  valF64(pc.Stay.PetFeePerNight),
		FrontDeskOpen:   valStr(pc.Stay.FrontDeskOpen),
		FrontDeskClose:  valStr(pc.Stay.FrontDeskClose),
	}
	com := commerceRow{
		PropertyID:           pc.PropertyID,
		StrategyMode:         pc.Commerce.StrategyMode,
		UrgencyEnabled:       pc.Commerce.UrgencyEnabled,
		UrgencyTypes:         urgency,
		CanTextLink:          pc.Commerce.Capabilities.CanTextLink,
		CanTransferFrontDesk: pc.Commerce.Capabilities.CanTransferFrontDesk,
		CanCollectWaitlist:   pc.Commerce.Capabilities.CanCollectWaitlist,
		WebBookingURL:        valStr(pc.Commerce.Capabilities.WebBookingURL),
		BreakfastPrice:       valF64(pc.Commerce.BreakfastPrice),
		LateCheckoutFee:      valF64(pc.Commerce.LateCheckoutFee),
		RoomTiers:            tiers,
	}
	if com.StrategyMode == "" {
		com.StrategyMode = "balanced"
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.NamedExecContext(ctx, upsertPropertySQL, prop); err != nil {
		return fmt.Errorf("upsert property %s: %w", pc.PropertyID, err)
	}
	if _, err = tx.NamedExecContext(ctx, upsertCommerceSQL, com); err != nil {
		return fmt.Errorf("upsert commerce %s: %w", pc.PropertyID, err)
	}
	if _, err = tx.ExecContext(ctx, deleteRulesSQL, pc.PropertyID); err != nil {
		return fmt.Errorf("clear rules %s: %w", pc.PropertyID, err)
	}
	for i, rule := range pc.Cancellation {
		ids, jerr := valJSON(rule.RoomTypeIDs)
		if jerr != nil {
			err = jerr
			return err
		}
		row := ruleRow{
			PropertyID:           pc.PropertyID,
			RuleID:               rule.ID,
			Position:             i,
			RoomTypeIDs:          ids,
			StartDate:            sql.NullString{String: rule.StartDate, Valid: true},
			EndDate:              sql.NullString{String: rule.EndDate, Valid: true},
			Priority:             rule.Priority,
			FreeCancelDaysBefore: rule.FreeCancelDaysBefore,
			CutoffTime:           rule.CutoffTime,
			Summary:              rule.Summary,
			PassedSummary:        valStr(rule.PassedSummary),
		}
		if _, err = tx.NamedExecContext(ctx, insertRuleSQL, row); err != nil {
			return fmt.Errorf("insert rule %s/%s: %w", pc.PropertyID, rule.ID, err)
		}
	}
	err = tx.Commit()
	return err
}
