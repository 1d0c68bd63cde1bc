package session

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

// IdentityKind is the tri-state tag on a session handle's identity.
type IdentityKind int

const (
	// IdentityNone means no identifier exists yet: a fresh anonymous
	// session, or one that was explicitly invalidated.
	IdentityNone IdentityKind = iota
	// IdentityUnloaded means an identifier was recovered from the inbound
	// cookie but the backing record has not been fetched yet.
	IdentityUnloaded
	// IdentityConfirmed means the identifier corresponds to a record that
	// has been loaded or freshly created.
	IdentityConfirmed
)

// String implements fmt.Stringer. Identifier values are never included.
func (k IdentityKind) String() string {
	switch k {
	case IdentityUnloaded:
		return "Unloaded"
	case IdentityConfirmed:
		return "Confirmed"
	default:
		return "None"
	}
}

// Session is a lazily-hydrated handle over one user's session record.
// Construction is pure; the first read or write triggers the store fetch.
// The handle is created once per request and is internally synchronized, but
// copies share state and must not be used from independent requests.
//
// Mutations only touch memory and the dirty flag; durability comes from an
// explicit Save or from the middleware's end-of-request persistence.
type Session[Data any] struct {
	store  Store[Data]
	logger *slog.Logger

	mu         sync.Mutex
	idKind     IdentityKind
	id         ID
	data       *Data
	expiry     Expiry
	shouldSave bool
}

// New constructs a session handle without touching the store. A nil id
// starts an anonymous session; a non-nil id defers the load until first
// access. A nil logger discards output.
func New[Data any](id *ID, store Store[Data], expiry Expiry, logger *slog.Logger) *Session[Data] {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Session[Data]{
		store:  store,
		logger: logger,
		expiry: expiry,
	}
	if id != nil {
		s.idKind = IdentityUnloaded
		s.id = *id
	}

	return s
}

// maybeLoad hydrates the handle on first access. Caller must hold s.mu.
//
// A store miss means the client presented an identifier the backend no
// longer knows: the record expired in transit, or the cookie was forged.
// Recovery is a fresh anonymous record; the stale identifier is discarded
// and never reused, and the request proceeds as if no cookie was sent.
// Lazy load never touches the dirty flag, on either path.
func (s *Session[Data]) maybeLoad(ctx context.Context) error {
	if s.idKind != IdentityUnloaded {
		return nil
	}

	rec, err := s.store.Load(ctx, s.id)
	if err != nil {
		return err
	}

	if rec != nil {
		s.idKind = IdentityConfirmed
		s.data = rec.Data
		s.expiry = rec.Expiry
		return nil
	}

	s.logger.WarnContext(ctx, "no record for inbound session id; expired cookie or possible suspicious activity")

	newID, err := s.store.Create(ctx, &Record[Data]{Expiry: s.expiry})
	if err != nil {
		return err
	}

	s.idKind = IdentityConfirmed
	s.id = newID
	s.data = nil

	return nil
}

// Get returns a snapshot of the current payload, triggering the lazy load.
// A nil result means the session carries no payload. The snapshot does not
// alias internal state.
func (s *Session[Data]) Get(ctx context.Context) (*Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.maybeLoad(ctx); err != nil {
		return nil, err
	}

	if s.data == nil {
		return nil, nil
	}
	snapshot := *s.data
	return &snapshot, nil
}

// Set overwrites the payload and marks the session dirty, triggering the
// lazy load first.
func (s *Session[Data]) Set(ctx context.Context, data Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.maybeLoad(ctx); err != nil {
		return err
	}

	s.data = &data
	s.shouldSave = true

	return nil
}

// Clear removes the payload and marks the session dirty. The store record
// and the identity are untouched.
func (s *Session[Data]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = nil
	s.shouldSave = true
}

// IsEmpty reports whether the handle has neither a confirmed identity nor a
// payload. An unloaded identity does not count: it may still belong to a
// dead record, so only a confirmed one keeps the cookie alive.
func (s *Session[Data]) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.idKind != IdentityConfirmed && s.data == nil
}

// Identity returns the identity tag and, for the Unloaded and Confirmed
// states, the identifier.
func (s *Session[Data]) Identity() (IdentityKind, ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.idKind, s.id
}

// ID returns the confirmed identifier, if any.
func (s *Session[Data]) ID() (ID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.id, s.idKind == IdentityConfirmed
}

// HashedID returns the storage key for the current identifier, covering both
// the unloaded and confirmed states.
func (s *Session[Data]) HashedID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.idKind == IdentityNone {
		return "", false
	}
	return s.id.Hash(), true
}

// Expiry returns the current expiry policy.
func (s *Session[Data]) Expiry() Expiry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.expiry
}

// SetExpiry replaces the expiry policy and marks the session dirty.
func (s *Session[Data]) SetExpiry(expiry Expiry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expiry = expiry
	s.shouldSave = true
}

// ExpiryAge returns the time remaining until the effective expiry timestamp,
// never negative.
func (s *Session[Data]) ExpiryAge() time.Duration {
	s.mu.Lock()
	expiry := s.expiry
	s.mu.Unlock()

	age := time.Until(expiry.ExpiresAt())
	if age < 0 {
		return 0
	}
	return age
}

// ShouldSave reports whether in-memory state differs from what is durably
// stored. Reads never set it; Set, Clear and SetExpiry always do.
func (s *Session[Data]) ShouldSave() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.shouldSave
}

// Save persists the session: an update in place when the identity is
// confirmed, otherwise a create that mints and confirms a fresh identifier.
// The dirty flag is cleared on either successful path.
func (s *Session[Data]) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveLocked(ctx)
}

func (s *Session[Data]) saveLocked(ctx context.Context) error {
	rec := &Record[Data]{Data: s.data, Expiry: s.expiry}

	if s.idKind == IdentityConfirmed {
		if err := s.store.Save(ctx, s.id, rec); err != nil {
			return err
		}
	} else {
		id, err := s.store.Create(ctx, rec)
		if err != nil {
			return err
		}
		s.idKind = IdentityConfirmed
		s.id = id
	}

	s.shouldSave = false

	return nil
}

// Delete removes the durable record for the current identity, unloaded or
// confirmed. With no identity there is nothing to delete and the call is a
// no-op.
func (s *Session[Data]) Delete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deleteLocked(ctx)
}

func (s *Session[Data]) deleteLocked(ctx context.Context) error {
	if s.idKind == IdentityNone {
		return nil
	}
	return s.store.Delete(ctx, s.id)
}

// Flush fully invalidates the session: the payload is cleared, the durable
// record deleted, and the identity reset to none. Only the expiry policy
// survives. Used on logout.
func (s *Session[Data]) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = nil
	if err := s.deleteLocked(ctx); err != nil {
		return err
	}

	s.idKind = IdentityNone
	s.id = ID{}
	s.shouldSave = false

	return nil
}

// CycleID retires a confirmed identifier while retaining the payload,
// defeating session fixation after privilege changes. The old record is
// deleted immediately; the fresh identifier is minted by the next Save, which
// in middleware-managed requests runs at end of request and reissues the
// cookie. Without a confirmed identity the call is a no-op.
func (s *Session[Data]) CycleID(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.idKind != IdentityConfirmed {
		return nil
	}

	if err := s.store.Delete(ctx, s.id); err != nil {
		return err
	}

	s.idKind = IdentityNone
	s.id = ID{}
	s.shouldSave = true

	return nil
}
