// Package ntru implements the NTRUEncrypt public-key cryptosystem: key
// generation under invertibility constraints, encryption of padded message
// polynomials and decryption with integrity validation, over the ring
// Z_q[x]/(x^N - 1).
package ntru

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/bits"
	"sort"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/exp/maps"

	"github.com/pqlattice/ntrue/ring"
)

// SmallModulus is the small modulus p, fixed to 3 for every parameter set.
const SmallModulus = 3

// tagLen is the byte length of the integrity tag embedded in every message
// block at encryption time.
const tagLen = 4

// ErrUnknownParameterSet is returned when looking up a parameter set name
// absent from the registry.
var ErrUnknownParameterSet = errors.New("unknown parameter set")

// ParametersLiteral is a literal representation of NTRUEncrypt parameters.
// It has public fields and is used to express unchecked user-defined
// parameters literally into Go programs. The [NewParametersFromLiteral]
// function is used to generate the actual checked parameters from the literal
// representation.
type ParametersLiteral struct {
	// Name identifies the parameter set.
	Name string

	// N is the ring degree.
	N int

	// Q is the large modulus, a power of two.
	Q uint64

	// Df is the number of +1 (and of -1) coefficients of the trinary part F
	// of the private element f = 1 + p*F.
	Df int

	// Dg is the number of -1 coefficients of the key-generation polynomial
	// g, which carries Dg+1 coefficients equal to +1.
	Dg int

	// Dr is the number of +1 (and of -1) coefficients of the ephemeral
	// blinding polynomial r.
	Dr int

	// Db is the bit length of the random padding prefixed to every message
	// block. Must be a multiple of 8.
	Db int
}

// Built-in parameter sets. Each name follows the EES<N>EP1 convention of the
// original NTRUEncrypt parameter families; the trailing figure of the doc
// comment is the targeted classical security level.
var (
	// EES401EP1 targets 112-bit security.
	EES401EP1 = ParametersLiteral{Name: "EES401EP1", N: 401, Q: 2048, Df: 113, Dg: 133, Dr: 113, Db: 112}
	// EES443EP1 targets 128-bit security.
	EES443EP1 = ParametersLiteral{Name: "EES443EP1", N: 443, Q: 2048, Df: 115, Dg: 147, Dr: 115, Db: 128}
	// EES587EP1 targets 192-bit security.
	EES587EP1 = ParametersLiteral{Name: "EES587EP1", N: 587, Q: 2048, Df: 157, Dg: 196, Dr: 157, Db: 192}
	// EES743EP1 targets 256-bit security.
	EES743EP1 = ParametersLiteral{Name: "EES743EP1", N: 743, Q: 2048, Df: 247, Dg: 247, Dr: 247, Db: 256}
)

// DefaultParams256Bits is the default parameter set, at the 256-bit security
// level.
var DefaultParams256Bits = EES743EP1

var registry = map[string]ParametersLiteral{
	EES401EP1.Name: EES401EP1,
	EES443EP1.Name: EES443EP1,
	EES587EP1.Name: EES587EP1,
	EES743EP1.Name: EES743EP1,
}

// ParameterSetNames returns the names of the built-in parameter sets in
// lexicographic order.
func ParameterSetNames() []string {
	names := maps.Keys(registry)
	sort.Strings(names)
	return names
}

// ParametersFromName constructs the built-in parameter set with the given
// name. It returns a wrapped [ErrUnknownParameterSet] if no such set exists.
func ParametersFromName(name string) (Parameters, error) {
	literal, ok := registry[name]
	if !ok {
		return Parameters{}, fmt.Errorf("%w: %q", ErrUnknownParameterSet, name)
	}
	return NewParametersFromLiteral(literal)
}

// Parameters represents a checked, immutable set of NTRUEncrypt parameters.
// All derived lengths are pure functions of the literal fields, computed once
// at construction. See [ParametersLiteral] for user-specified parameters.
type Parameters struct {
	literal ParametersLiteral

	ringQ *ring.Ring
	ringP *ring.Ring

	publicKeyLen  int
	privateKeyLen int
	ciphertextLen int
	msgBlockLen   int
	maxMsgLen     int
}

// NewParametersFromLiteral constructs a checked Parameters from a literal
// representation. It returns the zero Parameters and a non-nil error if the
// literal is invalid.
func NewParametersFromLiteral(literal ParametersLiteral) (Parameters, error) {

	if literal.N < 1 {
		return Parameters{}, fmt.Errorf("invalid parameters %q: N = %d < 1", literal.Name, literal.N)
	}

	if literal.Q < 4 || literal.Q&(literal.Q-1) != 0 {
		return Parameters{}, fmt.Errorf("invalid parameters %q: Q = %d is not a power of two >= 4", literal.Name, literal.Q)
	}

	if 2*literal.Df > literal.N || 2*literal.Dg+1 > literal.N || 2*literal.Dr > literal.N {
		return Parameters{}, fmt.Errorf("invalid parameters %q: polynomial weights exceed ring degree %d", literal.Name, literal.N)
	}

	if literal.Df < 1 || literal.Dg < 1 || literal.Dr < 1 {
		return Parameters{}, fmt.Errorf("invalid parameters %q: polynomial weights must be positive", literal.Name)
	}

	if literal.Db < 8 || literal.Db%8 != 0 {
		return Parameters{}, fmt.Errorf("invalid parameters %q: Db = %d must be a positive multiple of 8", literal.Name, literal.Db)
	}

	ringQ, err := ring.NewRing(literal.N, literal.Q)
	if err != nil {
		return Parameters{}, fmt.Errorf("invalid parameters %q: %w", literal.Name, err)
	}

	ringP, err := ring.NewRing(literal.N, SmallModulus)
	if err != nil {
		return Parameters{}, fmt.Errorf("invalid parameters %q: %w", literal.Name, err)
	}

	logQ := bits.Len64(literal.Q - 1)
	coeffLen := (literal.N*logQ + 7) / 8

	// The trit codec carries 3 bits per pair of coefficients, so any block of
	// at most floor(N/2)*3/8 bytes fits in N trinary coefficients.
	capacity := literal.N / 2 * 3 / 8
	maxMsgLen := capacity - literal.Db/8 - 1 - tagLen

	if maxMsgLen < 1 {
		return Parameters{}, fmt.Errorf("invalid parameters %q: padding leaves no room for a message", literal.Name)
	}

	if maxMsgLen > 255 {
		// The message length is encoded on a single byte.
		maxMsgLen = 255
	}

	msgBlockLen := literal.Db/8 + 1 + maxMsgLen + tagLen

	return Parameters{
		literal:       literal,
		ringQ:         ringQ,
		ringP:         ringP,
		publicKeyLen:  coeffLen,
		privateKeyLen: (literal.N + 3) / 4,
		ciphertextLen: coeffLen,
		msgBlockLen:   msgBlockLen,
		maxMsgLen:     maxMsgLen,
	}, nil
}

// Name returns the name of the parameter set.
func (p Parameters) Name() string { return p.literal.Name }

// N returns the ring degree.
func (p Parameters) N() int { return p.literal.N }

// P returns the small modulus p.
func (p Parameters) P() uint64 { return SmallModulus }

// Q returns the large modulus q.
func (p Parameters) Q() uint64 { return p.literal.Q }

// Df returns the number of +1 (and -1) coefficients of the private trinary
// polynomial F.
func (p Parameters) Df() int { return p.literal.Df }

// Dg returns the -1 count of the key-generation polynomial g.
func (p Parameters) Dg() int { return p.literal.Dg }

// Dr returns the number of +1 (and -1) coefficients of the blinding
// polynomial r.
func (p Parameters) Dr() int { return p.literal.Dr }

// Db returns the bit length of the random padding segment.
func (p Parameters) Db() int { return p.literal.Db }

// PublicKeyLen returns the byte length of an encoded public key.
func (p Parameters) PublicKeyLen() int { return p.publicKeyLen }

// PrivateKeyLen returns the byte length of an encoded private key.
func (p Parameters) PrivateKeyLen() int { return p.privateKeyLen }

// CiphertextLen returns the byte length of an encoded ciphertext.
func (p Parameters) CiphertextLen() int { return p.ciphertextLen }

// MaxMsgLen returns the maximum plaintext byte length.
func (p Parameters) MaxMsgLen() int { return p.maxMsgLen }

// MsgBlockLen returns the byte length of the padded message block encoded
// into the message polynomial.
func (p Parameters) MsgBlockLen() int { return p.msgBlockLen }

// RingQ returns the polynomial ring modulo q.
func (p Parameters) RingQ() *ring.Ring { return p.ringQ }

// RingP returns the polynomial ring modulo p.
func (p Parameters) RingP() *ring.Ring { return p.ringP }

// Literal returns a copy of the literal representation of the parameters.
func (p Parameters) Literal() ParametersLiteral { return p.literal }

// Equal returns true if the receiver and the operand represent the same
// parameter set.
func (p Parameters) Equal(other Parameters) bool {
	return cmp.Equal(p.literal, other.literal)
}

// MarshalJSON marshals the parameters into their literal representation.
func (p Parameters) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.literal)
}

// UnmarshalJSON unmarshals and re-checks a literal representation.
func (p *Parameters) UnmarshalJSON(data []byte) error {
	var literal ParametersLiteral
	if err := json.Unmarshal(data, &literal); err != nil {
		return err
	}
	params, err := NewParametersFromLiteral(literal)
	if err != nil {
		return err
	}
	*p = params
	return nil
}
