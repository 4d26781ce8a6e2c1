package ntru

import (
	"errors"
	"fmt"

	"github.com/pqlattice/ntrue/ring"
)

// ErrEncodedLengthMismatch is returned when importing a key or ciphertext
// buffer whose length differs from the fixed length of the parameter set.
var ErrEncodedLengthMismatch = errors.New("encoded buffer length mismatch")

// ErrInvalidEncoding is returned when an imported buffer has the expected
// length but does not decode to a valid polynomial.
var ErrInvalidEncoding = errors.New("invalid polynomial encoding")

// SecretKey wraps the trinary part F of the private ring element f = 1 + p*F
// together with the parameter set it was generated for. Every SecretKey
// produced by the [KeyGenerator] satisfies the invertibility invariant of f
// modulo both p and q. The polynomial is kept in mod-p representation.
type SecretKey struct {
	Value  *ring.Poly
	Params Parameters
}

// PublicKey wraps the public ring element h = p * f^-1 * g mod q together
// with the parameter set it was generated for.
type PublicKey struct {
	Value  *ring.Poly
	Params Parameters
}

// KeyPair pairs a SecretKey with the PublicKey derived from it. The pairing
// is an application-level assertion: decryption trusts the caller-supplied
// pairing.
type KeyPair struct {
	Secret *SecretKey
	Public *PublicKey
}

// Ciphertext wraps an encryption result, a polynomial mod q. It is opaque to
// callers beyond its fixed-length encoding.
type Ciphertext struct {
	Value  *ring.Poly
	Params Parameters
}

// fLifted returns the private element f = 1 + p*F in mod-q representation.
func (sk *SecretKey) fLifted() *ring.Poly {
	q := sk.Params.Q()
	f := sk.Params.RingQ().NewPoly()
	for i, t := range sk.Value.Coeffs {
		switch t {
		case 1: // F_i = +1
			f.Coeffs[i] = SmallModulus
		case SmallModulus - 1: // F_i = -1
			f.Coeffs[i] = q - SmallModulus
		}
	}
	f.Coeffs[0] = (f.Coeffs[0] + 1) % q
	return f
}

// Export encodes the secret key on PrivateKeyLen bytes, packing the trinary
// coefficients of F on 2 bits each.
func (sk *SecretKey) Export() []byte {
	out := make([]byte, sk.Params.PrivateKeyLen())
	packCoeffs(sk.Value.Coeffs, 2, out)
	return out
}

// ImportSecretKey decodes a secret key previously produced by
// [SecretKey.Export]. It returns a wrapped [ErrEncodedLengthMismatch] if the
// buffer length differs from params.PrivateKeyLen, without attempting a
// partial decode.
func ImportSecretKey(data []byte, params Parameters) (*SecretKey, error) {

	if len(data) != params.PrivateKeyLen() {
		return nil, fmt.Errorf("%w: secret key is %d bytes, expected %d", ErrEncodedLengthMismatch, len(data), params.PrivateKeyLen())
	}

	F := params.RingP().NewPoly()
	if !unpackCoeffs(data, 2, F.Coeffs) {
		return nil, fmt.Errorf("%w: nonzero padding bits", ErrInvalidEncoding)
	}
	for _, t := range F.Coeffs {
		if t > 2 {
			return nil, fmt.Errorf("%w: trinary coefficient out of range", ErrInvalidEncoding)
		}
	}

	return &SecretKey{Value: F, Params: params}, nil
}

// Export encodes the public key on PublicKeyLen bytes, packing each
// coefficient of h on ceil(log2(q)) bits.
func (pk *PublicKey) Export() []byte {
	out := make([]byte, pk.Params.PublicKeyLen())
	packCoeffs(pk.Value.Coeffs, pk.Params.RingQ().LogModulus(), out)
	return out
}

// ImportPublicKey decodes a public key previously produced by
// [PublicKey.Export]. It returns a wrapped [ErrEncodedLengthMismatch] if the
// buffer length differs from params.PublicKeyLen, and a wrapped
// [ErrInvalidEncoding] if any bit beyond the last coefficient is set.
func ImportPublicKey(data []byte, params Parameters) (*PublicKey, error) {

	if len(data) != params.PublicKeyLen() {
		return nil, fmt.Errorf("%w: public key is %d bytes, expected %d", ErrEncodedLengthMismatch, len(data), params.PublicKeyLen())
	}

	h := params.RingQ().NewPoly()
	if !unpackCoeffs(data, params.RingQ().LogModulus(), h.Coeffs) {
		return nil, fmt.Errorf("%w: nonzero padding bits", ErrInvalidEncoding)
	}

	return &PublicKey{Value: h, Params: params}, nil
}

// Export encodes the ciphertext on CiphertextLen bytes, identically to the
// public-key packing.
func (ct *Ciphertext) Export() []byte {
	out := make([]byte, ct.Params.CiphertextLen())
	packCoeffs(ct.Value.Coeffs, ct.Params.RingQ().LogModulus(), out)
	return out
}

// ImportCiphertext decodes a ciphertext previously produced by
// [Ciphertext.Export]. It returns a wrapped [ErrEncodedLengthMismatch] if the
// buffer length differs from params.CiphertextLen, and a wrapped
// [ErrInvalidEncoding] if any bit beyond the last coefficient is set.
func ImportCiphertext(data []byte, params Parameters) (*Ciphertext, error) {

	if len(data) != params.CiphertextLen() {
		return nil, fmt.Errorf("%w: ciphertext is %d bytes, expected %d", ErrEncodedLengthMismatch, len(data), params.CiphertextLen())
	}

	e := params.RingQ().NewPoly()
	if !unpackCoeffs(data, params.RingQ().LogModulus(), e.Coeffs) {
		return nil, fmt.Errorf("%w: nonzero padding bits", ErrInvalidEncoding)
	}

	return &Ciphertext{Value: e, Params: params}, nil
}
