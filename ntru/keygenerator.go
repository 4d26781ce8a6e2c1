package ntru

import (
	"errors"
	"fmt"

	"github.com/pqlattice/ntrue/ring"
	"github.com/pqlattice/ntrue/utils/sampling"
)

// ErrNoInvertibleCandidate is returned when key generation exhausts its retry
// budget without sampling a private polynomial invertible mod p and mod q.
var ErrNoInvertibleCandidate = errors.New("no invertible private polynomial candidate found")

// keyGenRetries bounds the number of private polynomial candidates tried by
// one GenKeyPairNew call. Roughly half of the candidates are invertible, so
// the budget is never reached in practice.
const keyGenRetries = 100

// KeyGenerator generates NTRUEncrypt key pairs for a fixed parameter set,
// drawing all randomness from the PRNG handle it was constructed with. One
// instance must not be used concurrently; independent instances sharing a
// [sampling.SystemPRNG] may run in parallel.
type KeyGenerator struct {
	params   Parameters
	fSampler *ring.TernarySampler
	gSampler *ring.TernarySampler
}

// NewKeyGenerator creates a new KeyGenerator for the given parameters,
// drawing randomness from prng.
func NewKeyGenerator(params Parameters, prng sampling.PRNG) *KeyGenerator {

	fSampler, err := ring.NewTernarySampler(prng, params.RingP(), params.Df(), params.Df())
	if err != nil {
		// Sanity check, the weights were validated with the parameters.
		panic(fmt.Errorf("cannot NewKeyGenerator: %w", err))
	}

	gSampler, err := ring.NewTernarySampler(prng, params.RingQ(), params.Dg()+1, params.Dg())
	if err != nil {
		panic(fmt.Errorf("cannot NewKeyGenerator: %w", err))
	}

	return &KeyGenerator{
		params:   params,
		fSampler: fSampler,
		gSampler: gSampler,
	}
}

// GenKeyPairNew generates a new key pair. It repeatedly samples a trinary
// polynomial F with the parameter set's prescribed weight until the private
// element f = 1 + p*F is invertible modulo both p and q, then samples g and
// derives the public element h = p * f^-1 * g mod q. It returns a wrapped
// [ErrNoInvertibleCandidate] if the retry budget is exhausted.
func (kgen *KeyGenerator) GenKeyPairNew() (*KeyPair, error) {

	for i := 0; i < keyGenRetries; i++ {

		F, err := kgen.fSampler.ReadNew()
		if err != nil {
			return nil, fmt.Errorf("cannot sample private polynomial: %w", err)
		}

		sk := &SecretKey{Value: F, Params: kgen.params}

		fQInv, ok := kgen.invertPrivate(sk)
		if !ok {
			continue
		}

		pk, err := kgen.genPublicKey(fQInv)
		if err != nil {
			return nil, err
		}

		return &KeyPair{Secret: sk, Public: pk}, nil
	}

	return nil, fmt.Errorf("%w after %d attempts", ErrNoInvertibleCandidate, keyGenRetries)
}

// GenPublicKeyNew derives a public key from an existing secret key and a
// freshly sampled g. Distinct calls on the same secret key return different,
// equally valid public keys.
func (kgen *KeyGenerator) GenPublicKeyNew(sk *SecretKey) (*PublicKey, error) {

	if !sk.Params.Equal(kgen.params) {
		return nil, fmt.Errorf("secret key parameter set %q does not match key generator parameter set %q", sk.Params.Name(), kgen.params.Name())
	}

	fQInv, ok := kgen.invertPrivate(sk)
	if !ok {
		// Enforced at generation time, so only possible for a corrupted or
		// hand-built secret key.
		return nil, fmt.Errorf("%w: secret key is not invertible mod q", ErrNoInvertibleCandidate)
	}

	return kgen.genPublicKey(fQInv)
}

// invertPrivate checks the invertibility invariant of the private element f
// modulo p and modulo q, and returns f^-1 mod q.
func (kgen *KeyGenerator) invertPrivate(sk *SecretKey) (*ring.Poly, bool) {

	ringQ := kgen.params.RingQ()
	ringP := kgen.params.RingP()

	fQ := sk.fLifted()

	fP := ringP.NewPoly()
	ringQ.CenterMod(fQ, SmallModulus, fP)
	fPInv := ringP.NewPoly()
	if !ringP.Inverse(fP, fPInv) {
		return nil, false
	}

	fQInv := ringQ.NewPoly()
	if !ringQ.Inverse(fQ, fQInv) {
		return nil, false
	}

	return fQInv, true
}

// genPublicKey samples g and computes h = p * f^-1 * g mod q.
func (kgen *KeyGenerator) genPublicKey(fQInv *ring.Poly) (*PublicKey, error) {

	ringQ := kgen.params.RingQ()

	g, err := kgen.gSampler.ReadNew()
	if err != nil {
		return nil, fmt.Errorf("cannot sample key generation polynomial: %w", err)
	}

	h := ringQ.NewPoly()
	ringQ.MulPoly(fQInv, g, h)
	ringQ.MulScalar(h, SmallModulus, h)

	return &PublicKey{Value: h, Params: kgen.params}, nil
}
