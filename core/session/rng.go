package session

import (
	"crypto/rand"
	"errors"
	"sync"

	"golang.org/x/crypto/chacha20"
)

// csprng is a ChaCha20 keystream keyed once from the operating system's
// entropy pool and reused behind a mutex. Reseeding per identifier would buy
// nothing and adds a syscall failure path to every request.
type csprng struct {
	mu     sync.Mutex
	stream *chacha20.Cipher
}

func newCSPRNG() (*csprng, error) {
	var key [chacha20.KeySize]byte
	var nonce [chacha20.NonceSize]byte

	if _, err := rand.Read(key[:]); err != nil {
		return nil, errors.Join(ErrIDGeneration, err)
	}
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, errors.Join(ErrIDGeneration, err)
	}

	stream, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		return nil, errors.Join(ErrIDGeneration, err)
	}

	return &csprng{stream: stream}, nil
}

func (r *csprng) newID() ID {
	var id ID
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stream.XORKeyStream(id[:], id[:])
	return id
}

// processRNG holds the process-wide generator. It is initialized on first
// use and lives for the life of the process; it holds no external resources,
// so there is no teardown.
var processRNG = sync.OnceValues(newCSPRNG)

// NewID draws a fresh random session identifier from the process-wide
// generator.
func NewID() (ID, error) {
	rng, err := processRNG()
	if err != nil {
		return ID{}, err
	}
	return rng.newID(), nil
}
