package session

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
)

// encodedIDLength is the textual size of an ID: 16 bytes in unpadded
// URL-safe base64.
const encodedIDLength = 22

// ID is an opaque 128-bit session identifier. It is only ever produced by
// the process CSPRNG; client-supplied text is parsed with ParseID and a
// parse failure is treated as "no session", never as a request error.
type ID [16]byte

// String returns the fixed 22-character cookie form of the identifier.
func (id ID) String() string {
	return base64.RawURLEncoding.EncodeToString(id[:])
}

// Hash returns the hex-encoded SHA-256 of the textual form. This is the only
// shape of the identifier the storage backend ever sees, so inspecting the
// backend does not reveal usable cookie values.
func (id ID) Hash() string {
	sum := sha256.Sum256([]byte(id.String()))
	return hex.EncodeToString(sum[:])
}

// ParseID decodes the textual form back into an ID. Anything that does not
// decode to exactly 16 bytes fails with ErrMalformedID.
func ParseID(s string) (ID, error) {
	if len(s) != encodedIDLength {
		return ID{}, fmt.Errorf("%w: %d characters, want %d", ErrMalformedID, len(s), encodedIDLength)
	}

	var id ID
	n, err := base64.RawURLEncoding.Decode(id[:], []byte(s))
	if err != nil {
		return ID{}, errors.Join(ErrMalformedID, err)
	}
	if n != len(id) {
		return ID{}, fmt.Errorf("%w: decoded %d bytes, want %d", ErrMalformedID, n, len(id))
	}

	return id, nil
}
