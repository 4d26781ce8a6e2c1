// Package sampling provides the secure random sources from which all key
// material, blinding polynomials and padding bytes are drawn.
package sampling

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// ErrRandomSourceUnavailable is returned when the underlying entropy source
// cannot be queried.
var ErrRandomSourceUnavailable = errors.New("random source unavailable")

// PRNG is an interface for the secure generation of random bytes.
type PRNG interface {
	io.Reader
}

// SystemPRNG is a PRNG backed by the operating system entropy source
// (crypto/rand). It is safe for concurrent use; each Read draws independent
// randomness.
type SystemPRNG struct{}

// NewSystemPRNG returns a PRNG reading from the operating system entropy
// source.
func NewSystemPRNG() *SystemPRNG {
	return &SystemPRNG{}
}

// Read fills sum with random bytes. It returns a wrapped
// [ErrRandomSourceUnavailable] if the entropy source cannot be queried.
func (prng *SystemPRNG) Read(sum []byte) (n int, err error) {
	if n, err = rand.Read(sum); err != nil {
		return n, fmt.Errorf("%w: %s", ErrRandomSourceUnavailable, err)
	}
	return
}

// KeyedPRNG is a deterministic PRNG expanding a key into an unbounded stream
// of bytes with the blake2b XOF. Two KeyedPRNG instantiated with the same key
// produce the same stream, which makes sampling reproducible.
//
// A KeyedPRNG must not be shared across goroutines that expect a
// deterministic sequence. Use [SystemPRNG] wherever the randomness must be
// secret.
type KeyedPRNG struct {
	mutex sync.Mutex
	key   []byte
	xof   blake2b.XOF
}

// NewKeyedPRNG creates a new KeyedPRNG seeded with key. A nil key is treated
// as an empty key.
func NewKeyedPRNG(key []byte) (*KeyedPRNG, error) {
	xof, err := blake2b.NewXOF(blake2b.OutputLengthUnknown, key)
	if err != nil {
		return nil, err
	}
	prng := &KeyedPRNG{xof: xof}
	prng.key = append(prng.key, key...)
	return prng, nil
}

// Key returns a copy of the key used to seed the PRNG.
func (prng *KeyedPRNG) Key() (key []byte) {
	return append(key, prng.key...)
}

// Read fills sum with the next bytes of the stream.
func (prng *KeyedPRNG) Read(sum []byte) (n int, err error) {
	prng.mutex.Lock()
	defer prng.mutex.Unlock()
	return prng.xof.Read(sum)
}

// Reset rewinds the PRNG to the beginning of its stream.
func (prng *KeyedPRNG) Reset() {
	prng.mutex.Lock()
	defer prng.mutex.Unlock()
	prng.xof.Reset()
}

// RandomBytes reads n bytes from prng and returns them as a new slice.
func RandomBytes(n int, prng PRNG) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(prng, b); err != nil {
		return nil, fmt.Errorf("cannot read %d random bytes: %w", n, err)
	}
	return b, nil
}
