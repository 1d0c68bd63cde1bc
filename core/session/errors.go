package session

import "errors"

var (
	// ErrMalformedID is returned when a textual identifier does not decode
	// to exactly 16 bytes. Callers reading cookies treat this as "no
	// session", not as a request failure.
	ErrMalformedID = errors.New("malformed session id")
	// ErrIDGeneration is returned when the random source cannot produce an
	// identifier.
	ErrIDGeneration = errors.New("failed to generate session id")
	// ErrEncodeRecord is returned when a session record cannot be
	// serialized for storage.
	ErrEncodeRecord = errors.New("failed to encode session record")
	// ErrDecodeRecord is returned when a stored session record cannot be
	// deserialized. A corrupt record is a store error, never a miss:
	// reporting it as "not found" would silently discard data.
	ErrDecodeRecord = errors.New("failed to decode session record")
	// ErrSessionVanished is returned when a conditional update finds no
	// record to update, meaning the record was deleted externally between
	// load and save.
	ErrSessionVanished = errors.New("session record vanished during save")
)
