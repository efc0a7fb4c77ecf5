package replication

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned by endpoints holding no document and by Pull when no endpoint has one.
	ErrNotFound = errors.New("document not found")
	// ErrNoIdentity means no remote identity exists yet; nothing can be targeted.
	ErrNoIdentity = errors.New("no remote identity")
	// ErrAllFailed means not a single endpoint accepted a push.
	ErrAllFailed = errors.New("all replicas failed")
)

// PushError carries per-endpoint reasons when every endpoint failed.
type PushError struct {
	Outcomes []Outcome
}

func (e *PushError) Error() string {
	parts := make([]string, 0, len(e.Outcomes))
	for _, o := range e.Outcomes {
		if o.Err != nil {
			parts = append(parts, o.Endpoint+": "+o.Err.Error())
		}
	}
	return ErrAllFailed.Error() + ": " + strings.Join(parts, "; ")
}

func (e *PushError) Unwrap() error {
	return ErrAllFailed
}

// Reasons returns endpoint -> failure reason.
func (e *PushError) Reasons() map[string]string {
	out := make(map[string]string, len(e.Outcomes))
	for _, o := range e.Outcomes {
		if o.Err != nil {
			out[o.Endpoint] = o.Err.Error()
		}
	}
	return out
}
