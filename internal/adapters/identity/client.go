// internal/adapters/identity/client.go
package identity

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"agency_site/internal/adapters/observability"
	"agency_site/internal/domain"
)

// Client verifies bearer tokens against the identity provider. One endpoint,
// client-side rate limited, with retries on transient failures.
type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

func New(base string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("identity base URL is required")
	}
	if rps <= 0 {
		rps = 10
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 10 * time.Second},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// Disabled rejects every credential. Stands in when no identity provider is
// configured so the webhook still fails closed.
type Disabled struct{}

func (Disabled) Verify(_ context.Context, token string) (domain.Principal, error) {
	if token == "" {
		return domain.Principal{}, domain.ErrUnauthorized
	}
	return domain.Principal{}, fmt.Errorf("%w: identity provider not configured", domain.ErrAuthFailed)
}

type verifyResponse struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
}

// Verify exchanges the token for a principal. 401/403 from the provider maps
// to domain.ErrAuthFailed with the provider's detail attached; the raw token
// is never included in errors or logs. Retries on 429 and transient 5xx,
// honoring Retry-After when provided.
func (c *Client) Verify(ctx context.Context, token string) (domain.Principal, error) {
	if token == "" {
		return domain.Principal{}, domain.ErrUnauthorized
	}
	if err := c.rl.Wait(ctx); err != nil {
		return domain.Principal{}, err
	}

	url := c.base + "/v1/verify"
	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return domain.Principal{}, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("identity", "/v1/verify", 0, time.Since(start))
			if ctx.Err() != nil {
				return domain.Principal{}, ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return domain.Principal{}, ctx.Err()
			}
			return domain.Principal{}, fmt.Errorf("%w: %v", domain.ErrUpstream, lastErr)
		}
		observability.ObserveExternal("identity", "/v1/verify", resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			var vr verifyResponse
			err := json.NewDecoder(resp.Body).Decode(&vr)
			resp.Body.Close()
			if err != nil {
				return domain.Principal{}, fmt.Errorf("%w: decoding verify response: %v", domain.ErrUpstream, err)
			}
			return domain.Principal{Subject: vr.Subject, Email: vr.Email}, nil

		case http.StatusUnauthorized, http.StatusForbidden:
			// Keep a short provider detail for diagnostics; never the token.
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			resp.Body.Close()
			detail := strings.TrimSpace(string(b))
			if detail == "" {
				detail = resp.Status
			}
			return domain.Principal{}, fmt.Errorf("%w: %s", domain.ErrAuthFailed, detail)

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("identity %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return domain.Principal{}, ctx.Err()
			}
			return domain.Principal{}, fmt.Errorf("%w: %v", domain.ErrUpstream, lastErr)

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			resp.Body.Close()
			return domain.Principal{}, fmt.Errorf("%w: bad status %d: %s", domain.ErrUpstream, resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return domain.Principal{}, fmt.Errorf("%w: %v", domain.ErrUpstream, lastErr)
}

// sleepCtx waits for d or returns early if ctx is done.
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

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
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

// backoff returns an exponential delay (200ms, 400ms, 800ms...) with up to
// +50% jitter to avoid thundering herds.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
