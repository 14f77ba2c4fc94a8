package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"stay_offers/internal/adapters/observability"
	"stay_offers/internal/domain"
	"stay_offers/internal/intent"
)

type TurnStatus string

const (
	TurnOK                 TurnStatus = "OK"
	TurnNeedsClarification TurnStatus = "NEEDS_CLARIFICATION"
)

// TurnResult is what the caller hears after one resolve-intent turn.
type TurnResult struct {
	CallID  string         `json:"call_id"`
	Status  TurnStatus     `json:"status"`
	Reason  intent.Reason  `json:"reason,omitempty"`
	Missing []intent.Field `json:"missing,omitempty"`
	Prompt  string         `json:"prompt,omitempty"`
	Options []string       `json:"options,omitempty"`
	Slots   domain.Intent  `json:"slots"`
}

// ConversationService owns per-call intent state. Turns for the same call id
// run one at a time; different calls never block each other.
type ConversationService struct {
	sessions domain.SessionStore
	resolver *intent.Resolver
	clock    domain.Clock
	locks    *keyedMutex
}

func NewConversationService(s domain.SessionStore, r *intent.Resolver, clock domain.Clock) *ConversationService {
	if clock == nil {
		clock = domain.SystemClock
	}
	return &ConversationService{sessions: s, resolver: r, clock: clock, locks: newKeyedMutex()}
}

// HandleTurn merges payload into the call's intent. An empty callID starts a
// new call under a generated id.
func (s *ConversationService) HandleTurn(ctx context.Context, callID string, payload map[string]any) (TurnResult, error) {
	callID = strings.TrimSpace(callID)
	if callID == "" {
		callID = uuid.NewString()
	}
	unlock := s.locks.Lock(callID)
	defer unlock()

	cur, err := s.sessions.Get(ctx, callID)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return TurnResult{}, fmt.Errorf("load session %s: %w", callID, err)
	}

	out := s.resolver.Resolve(cur, payload, s.clock.Now())
	if err := s.sessions.Put(ctx, callID, out.Slots()); err != nil {
		return TurnResult{}, fmt.Errorf("save session %s: %w", callID, err)
	}

	res := TurnResult{CallID: callID, Slots: out.Slots()}
	switch o := out.(type) {
	case intent.Ready:
		res.Status = TurnOK
	case intent.NeedsClarification:
		res.Status = TurnNeedsClarification
		res.Reason = o.Reason
		res.Missing = o.Missing
		res.Prompt = o.Prompt
		res.Options = o.Options
	}
	observability.ObserveIntent(string(res.Status), string(res.Reason))
	log.Debug().
		Str("call_id", callID).
		Str("status", string(res.Status)).
		Str("reason", string(res.Reason)).
		Msg("intent resolved")
	return res, nil
}

// Intent returns the call's current slots.
func (s *ConversationService) Intent(ctx context.Context, callID string) (domain.Intent, error) {
	return s.sessions.Get(ctx, callID)
}

func (s *ConversationService) EndCall(ctx context.Context, callID string) error {
	unlock := s.locks.Lock(callID)
	defer unlock()
	if _, err := s.sessions.Get(ctx, callID); err != nil {
		return err
	}
	return s.sessions.Delete(ctx, callID)
}
