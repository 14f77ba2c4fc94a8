package inventory

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"stay_offers/internal/adapters/observability"
	"stay_offers/internal/domain"
)

const service = "inventory"

// Client fetches availability snapshots from the rate/inventory provider.
type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("inventory base URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 10 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

var (
	ErrUnauthorized = errors.New("inventory: unauthorized")
	ErrForbidden    = errors.New("inventory: forbidden")
)

// Snapshot implements domain.InventoryProvider. The provider's current
// availability endpoint is tried first, then the legacy query form.
func (c *Client) Snapshot(ctx context.Context, q domain.AvailabilityQuery) (domain.InventorySnapshot, error) {
	params := url.Values{}
	params.Set("check_in", q.CheckIn)
	params.Set("check_out", q.CheckOut)
	params.Set("adults", strconv.Itoa(q.Adults))
	params.Set("children", strconv.Itoa(q.Children))
	params.Set("rooms", strconv.Itoa(max(q.Rooms, 1)))
	if q.Currency != "" {
		params.Set("currency", q.Currency)
	}
	candidates := []string{
		fmt.Sprintf("%s/properties/%s/availability?%s", c.base, url.PathEscape(q.PropertyID), params.Encode()),
		fmt.Sprintf("%s/availability?property_id=%s&%s", c.base, url.QueryEscape(q.PropertyID), params.Encode()),
	}
	var raw map[string]any
	if err := c.getFirst(ctx, candidates, &raw); err != nil {
		return domain.InventorySnapshot{}, fmt.Errorf("snapshot %s: %w", q.PropertyID, err)
	}
	snap := mapSnapshot(raw)
	if snap.PropertyID == "" {
		snap.PropertyID = q.PropertyID
	}
	if snap.StartDate == "" {
		snap.StartDate, snap.EndDate = q.CheckIn, q.CheckOut
	}
	return snap, nil
}

func (c *Client) getFirst(ctx context.Context, urls []string, out any) error {
	var last error
	for _, u := range urls {
		if err := c.get(ctx, u, out); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				last = err
				continue
			}
			return err
		}
		return nil
	}
	if last != nil {
		return last
	}
	return errors.New("no candidate URL succeeded")
}

// get performs a GET with client-side rate limiting, retries, and JSON decode into out.
// Retries on 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) get(ctx context.Context, u string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	endpoint := endpointLabel(u)

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		if c.key != "" {
			req.Header.Set("X-API-Key", c.key)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "stay-offers/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal(service, endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			log.Debug().Err(err).Str("err_type", observability.LabelErr(err)).Int("attempt", i).Msg("inventory request failed")
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal(service, endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("decode inventory payload: %w", err)
			}
			return nil

		case http.StatusNotFound:
			resp.Body.Close()
			return domain.ErrNotFound

		case http.StatusUnauthorized:
			resp.Body.Close()
			return ErrUnauthorized

		case http.StatusForbidden:
			resp.Body.Close()
			return ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return lastErr
}

// endpointLabel keeps metric cardinality bounded by dropping ids and queries.
func endpointLabel(u string) string {
	p, err := url.Parse(u)
	if err != nil {
		return "unknown"
	}
	if strings.HasSuffix(p.Path, "/availability") && strings.Contains(p.Path, "/properties/") {
		return "properties_availability"
	}
	return "availability"
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
