package admin

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"vigil/internal/domain/identity"
)

// DefaultWindow is how far a signed timestamp may drift from the server clock.
const DefaultWindow = 120000 * time.Millisecond

// Authorizer checks stateless admin requests: the admin signs the current
// timestamp (milliseconds since epoch) with the configured key.
type Authorizer struct {
	publicKey string
	window    time.Duration
	now       func() time.Time
}

func NewAuthorizer(publicKey string, window time.Duration) *Authorizer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Authorizer{
		publicKey: strings.TrimSpace(publicKey),
		window:    window,
		now:       time.Now,
	}
}

// WithClock replaces the clock used for the window check.
func (a *Authorizer) WithClock(now func() time.Time) *Authorizer {
	a.now = now
	return a
}

// Check validates timestamp and signature. The window is checked before the
// signature so a stale request is rejected no matter how it was signed.
func (a *Authorizer) Check(timestamp, signature string) error {
	if timestamp == "" || signature == "" {
		return ErrMissingParams
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: timestamp is not a number", ErrMissingParams)
	}

	// bounds, not a subtraction: now-ts overflows for timestamps near MinInt64
	nowMs, window := a.now().UnixMilli(), a.window.Milliseconds()
	if ts < nowMs-window || ts > nowMs+window {
		return ErrExpired
	}

	if a.publicKey == "" {
		return ErrNotConfigured
	}
	if !identity.Verify(signature, timestamp, a.publicKey) {
		return ErrBadSignature
	}
	return nil
}

// SignedParams returns a timestamp and its signature for an admin request.
func SignedParams(cred *identity.Credential, now time.Time) (timestamp, signature string, err error) {
	timestamp = strconv.FormatInt(now.UnixMilli(), 10)
	signature, err = cred.Sign(timestamp)
	return timestamp, signature, err
}
