package ntru

import (
	"fmt"

	"github.com/pqlattice/ntrue/ring"
)

// Decryptor decrypts ciphertexts under a key pair. It is a stateless
// transform apart from its scratch buffers: one instance must not be used
// concurrently, see [Decryptor.ShallowCopy].
type Decryptor struct {
	params Parameters
	kp     *KeyPair
	fQ     *ring.Poly

	buffA *ring.Poly
	buffM *ring.Poly
}

// NewDecryptor creates a new Decryptor for the given key pair. The pairing
// of secret and public key is trusted, not verified.
func NewDecryptor(params Parameters, kp *KeyPair) *Decryptor {

	if !kp.Secret.Params.Equal(params) {
		panic(fmt.Errorf("cannot NewDecryptor: secret key parameter set %q does not match %q", kp.Secret.Params.Name(), params.Name()))
	}

	return &Decryptor{
		params: params,
		kp:     kp,
		fQ:     kp.Secret.fLifted(),
		buffA:  params.RingQ().NewPoly(),
		buffM:  params.RingP().NewPoly(),
	}
}

// DecryptNew decrypts ct and returns the plaintext bytes. It computes
// a = f*e mod q, centers a into (-q/2, q/2], reduces it mod p to recover the
// candidate message polynomial, decodes it into a message block and
// validates the block's integrity tag and padding.
//
// It returns a wrapped [ErrDecodingFailure] if the decoded block is
// structurally inconsistent, and [ErrIntegrityCheckFailed] if the integrity
// validation fails, which covers corrupted ciphertexts as well as wrong-key
// decryption attempts.
func (dec *Decryptor) DecryptNew(ct *Ciphertext) ([]byte, error) {

	if !ct.Params.Equal(dec.params) {
		return nil, fmt.Errorf("ciphertext parameter set %q does not match decryptor parameter set %q", ct.Params.Name(), dec.params.Name())
	}

	ringQ := dec.params.RingQ()

	ringQ.MulPoly(dec.fQ, ct.Value, dec.buffA)
	ringQ.CenterMod(dec.buffA, SmallModulus, dec.buffM)

	blk, err := decodeBlock(dec.buffM, dec.params.MsgBlockLen())
	if err != nil {
		return nil, err
	}

	return parseMessageBlock(dec.params, blk)
}

// ShallowCopy creates a copy of the Decryptor with fresh scratch buffers;
// the receiver and the copy can be used concurrently.
func (dec *Decryptor) ShallowCopy() *Decryptor {
	return NewDecryptor(dec.params, dec.kp)
}
