package session

import (
	"encoding/json"
	"fmt"
	"time"
)

// sessionEndCap bounds records whose cookie expires with the browser
// session. The browser decides when such a cookie dies; the backend still
// needs an absolute TTL so abandoned records get evicted.
const sessionEndCap = 14 * 24 * time.Hour

// ExpiryKind selects one of the three expiry policies.
type ExpiryKind int

const (
	// ExpiryOnSessionEnd expires the cookie at browser-session end; the
	// backend record is capped at sessionEndCap.
	ExpiryOnSessionEnd ExpiryKind = iota
	// ExpiryOnInactivity expires after a fixed duration of inactivity,
	// recomputed from "now" on every write.
	ExpiryOnInactivity
	// ExpiryAtTime expires at a fixed absolute timestamp.
	ExpiryAtTime
)

// Expiry is a session expiry policy. The zero value expires at
// browser-session end.
type Expiry struct {
	kind     ExpiryKind
	duration time.Duration
	at       time.Time
}

// OnSessionEnd returns a policy that relies on the cookie's session-only
// nature, with the backend applying a default absolute cap.
func OnSessionEnd() Expiry {
	return Expiry{kind: ExpiryOnSessionEnd}
}

// OnInactivity returns a policy that expires after d of inactivity.
func OnInactivity(d time.Duration) Expiry {
	return Expiry{kind: ExpiryOnInactivity, duration: d}
}

// AtTime returns a policy that expires at the absolute timestamp t.
func AtTime(t time.Time) Expiry {
	return Expiry{kind: ExpiryAtTime, at: t}
}

// Kind reports which policy variant this is.
func (e Expiry) Kind() ExpiryKind {
	return e.kind
}

// ExpiresAt computes the effective absolute expiry timestamp. For the
// inactivity variant this is always recomputed from "now", so every write
// pushes the deadline forward.
func (e Expiry) ExpiresAt() time.Time {
	switch e.kind {
	case ExpiryOnInactivity:
		return time.Now().Add(e.duration)
	case ExpiryAtTime:
		return e.at
	default:
		return time.Now().Add(sessionEndCap)
	}
}

// MaxAge returns the cookie Max-Age in seconds for this policy, or 0 for the
// session-end variant, which issues a cookie without an age so the browser
// drops it when the session ends.
func (e Expiry) MaxAge() int {
	switch e.kind {
	case ExpiryOnInactivity:
		return int(e.duration.Seconds())
	case ExpiryAtTime:
		return int(time.Until(e.at).Seconds())
	default:
		return 0
	}
}

const (
	expiryKindSessionEnd = "session_end"
	expiryKindInactivity = "inactivity"
	expiryKindAtTime     = "at_time"
)

type expiryJSON struct {
	Kind     string     `json:"kind"`
	Duration int64      `json:"duration_seconds,omitempty"`
	At       *time.Time `json:"at,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (e Expiry) MarshalJSON() ([]byte, error) {
	out := expiryJSON{}
	switch e.kind {
	case ExpiryOnInactivity:
		out.Kind = expiryKindInactivity
		out.Duration = int64(e.duration.Seconds())
	case ExpiryAtTime:
		out.Kind = expiryKindAtTime
		at := e.at
		out.At = &at
	default:
		out.Kind = expiryKindSessionEnd
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Expiry) UnmarshalJSON(b []byte) error {
	var in expiryJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}

	switch in.Kind {
	case expiryKindSessionEnd:
		*e = OnSessionEnd()
	case expiryKindInactivity:
		*e = OnInactivity(time.Duration(in.Duration) * time.Second)
	case expiryKindAtTime:
		if in.At == nil {
			return fmt.Errorf("expiry kind %q without timestamp", in.Kind)
		}
		*e = AtTime(*in.At)
	default:
		return fmt.Errorf("unknown expiry kind %q", in.Kind)
	}

	return nil
}
