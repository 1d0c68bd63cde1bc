package session

import "context"

// Record is the durable form of a session: the application payload plus the
// expiry policy it was saved with. A nil Data means the session carries no
// payload yet (anonymous).
type Record[Data any] struct {
	Data   *Data  `json:"data"`
	Expiry Expiry `json:"expiry"`
}

// Store is the persistence contract for session records, keyed by the
// one-way hash of the identifier. Implementations must be safe for
// concurrent use.
//
// Expiry policy computation belongs to the Session/Expiry layer; the store
// only persists the resulting absolute timestamp as the backend TTL.
type Store[Data any] interface {
	// Create writes rec under a freshly generated identifier with
	// must-not-exist semantics, retrying on the (practically impossible)
	// identifier collision until a write succeeds.
	Create(ctx context.Context, rec *Record[Data]) (ID, error)

	// Save updates the record under id with must-already-exist semantics.
	// It never creates a record for an identifier that was not obtained
	// via Create; if the record disappeared in between, it returns
	// ErrSessionVanished.
	Save(ctx context.Context, id ID, rec *Record[Data]) error

	// Load fetches the record under id. A missing key is the normal
	// "expired or forged cookie" path and returns (nil, nil); errors are
	// reserved for backend and decode failures.
	Load(ctx context.Context, id ID) (*Record[Data], error)

	// Delete removes the record under id. Deleting an absent key is not an
	// error.
	Delete(ctx context.Context, id ID) error
}
