package ntru

import (
	"errors"
	"fmt"

	"github.com/pqlattice/ntrue/ring"
	"github.com/pqlattice/ntrue/utils/sampling"
)

// ErrMessageTooLong is returned when a plaintext exceeds the maximum length
// of the parameter set.
var ErrMessageTooLong = errors.New("message too long for parameter set")

// Encryptor encrypts plaintext byte sequences under a public key. It is a
// stateless transform apart from its scratch buffers: one instance must not
// be used concurrently, see [Encryptor.ShallowCopy].
type Encryptor struct {
	params   Parameters
	prng     sampling.PRNG
	rSampler *ring.TernarySampler

	buffM *ring.Poly
	buffE *ring.Poly
}

// NewEncryptor creates a new Encryptor for the given parameters, drawing the
// padding bytes and the ephemeral blinding polynomials from prng.
func NewEncryptor(params Parameters, prng sampling.PRNG) *Encryptor {

	rSampler, err := ring.NewTernarySampler(prng, params.RingQ(), params.Dr(), params.Dr())
	if err != nil {
		// Sanity check, the weights were validated with the parameters.
		panic(fmt.Errorf("cannot NewEncryptor: %w", err))
	}

	return &Encryptor{
		params:   params,
		prng:     prng,
		rSampler: rSampler,
		buffM:    params.RingQ().NewPoly(),
		buffE:    params.RingQ().NewPoly(),
	}
}

// EncryptNew encrypts msg under pk and returns the resulting ciphertext.
// The plaintext is padded into a message block, mapped onto a trinary
// polynomial m, and blinded as e = r*h + m mod q with a fresh ephemeral r.
// It returns a wrapped [ErrMessageTooLong] if msg exceeds the parameter
// set's maximum plaintext length.
func (enc *Encryptor) EncryptNew(msg []byte, pk *PublicKey) (*Ciphertext, error) {

	if !pk.Params.Equal(enc.params) {
		return nil, fmt.Errorf("public key parameter set %q does not match encryptor parameter set %q", pk.Params.Name(), enc.params.Name())
	}

	if len(msg) > enc.params.MaxMsgLen() {
		return nil, fmt.Errorf("%w: %d > %d", ErrMessageTooLong, len(msg), enc.params.MaxMsgLen())
	}

	blk, err := buildMessageBlock(enc.params, msg, enc.prng)
	if err != nil {
		return nil, fmt.Errorf("cannot build message block: %w", err)
	}

	ringQ := enc.params.RingQ()
	encodeBlock(blk, enc.buffM, ringQ.Modulus)

	r, err := enc.rSampler.ReadNew()
	if err != nil {
		return nil, fmt.Errorf("cannot sample blinding polynomial: %w", err)
	}

	e := ringQ.NewPoly()
	ringQ.MulPoly(r, pk.Value, enc.buffE)
	ringQ.Add(enc.buffE, enc.buffM, e)

	return &Ciphertext{Value: e, Params: enc.params}, nil
}

// ShallowCopy creates a copy of the Encryptor with fresh scratch buffers;
// the receiver and the copy can be used concurrently as long as the shared
// PRNG is safe for concurrent use.
func (enc *Encryptor) ShallowCopy() *Encryptor {
	return NewEncryptor(enc.params, enc.prng)
}
