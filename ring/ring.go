// Package ring implements the arithmetic of the truncated polynomial ring
// Z_m[x]/(x^N - 1): modular addition, cyclic convolution, centered reduction
// and multiplicative inversion, together with the fixed-weight ternary
// sampler used for key and blinding polynomials.
package ring

import (
	"fmt"
	"math/bits"
)

// Ring is a structure that keeps the degree N and the modulus of the ring
// Z_m[x]/(x^N - 1) and implements the polynomial arithmetic for it. Rings are
// immutable after creation.
type Ring struct {
	// N is the number of coefficients of the polynomials of the ring, which
	// equals the degree of x^N - 1.
	N int

	// Modulus is the coefficient modulus m.
	Modulus uint64

	// mask is Modulus-1 when Modulus is a power of two, else 0.
	mask uint64
}

// NewRing creates a new Ring of degree N with the given coefficient modulus.
// It returns an error if N < 1 or if the modulus is smaller than 2.
func NewRing(N int, modulus uint64) (*Ring, error) {

	if N < 1 {
		return nil, fmt.Errorf("invalid ring degree: %d < 1", N)
	}

	if modulus < 2 {
		return nil, fmt.Errorf("invalid modulus: %d < 2", modulus)
	}

	r := &Ring{N: N, Modulus: modulus}
	if modulus&(modulus-1) == 0 {
		r.mask = modulus - 1
	}
	return r, nil
}

// IsPowerOfTwoModulus returns true if the ring modulus is a power of two.
func (r *Ring) IsPowerOfTwoModulus() bool {
	return r.mask != 0
}

// LogModulus returns ceil(log2(Modulus)), the number of bits needed to store
// one reduced coefficient.
func (r *Ring) LogModulus() int {
	return bits.Len64(r.Modulus - 1)
}

// NewPoly creates a new polynomial of the ring, with all coefficients set
// to 0.
func (r *Ring) NewPoly() *Poly {
	return NewPoly(r.N)
}

// reduce returns v mod Modulus for 0 <= v < 2*Modulus.
func (r *Ring) reduce(v uint64) uint64 {
	if v >= r.Modulus {
		v -= r.Modulus
	}
	return v
}

// Add adds p1 to p2 coefficient-wise and applies a modular reduction,
// returning the result on p3.
func (r *Ring) Add(p1, p2, p3 *Poly) {
	for i := 0; i < r.N; i++ {
		p3.Coeffs[i] = r.reduce(p1.Coeffs[i] + p2.Coeffs[i])
	}
}

// Sub subtracts p2 from p1 coefficient-wise and applies a modular reduction,
// returning the result on p3.
func (r *Ring) Sub(p1, p2, p3 *Poly) {
	for i := 0; i < r.N; i++ {
		p3.Coeffs[i] = r.reduce(p1.Coeffs[i] + r.Modulus - p2.Coeffs[i])
	}
}

// Neg sets each coefficient of p1 to its additive inverse, returning the
// result on p2.
func (r *Ring) Neg(p1, p2 *Poly) {
	for i := 0; i < r.N; i++ {
		if p1.Coeffs[i] == 0 {
			p2.Coeffs[i] = 0
		} else {
			p2.Coeffs[i] = r.Modulus - p1.Coeffs[i]
		}
	}
}

// MulScalar multiplies each coefficient of p1 by scalar, returning the result
// on p2.
func (r *Ring) MulScalar(p1 *Poly, scalar uint64, p2 *Poly) {
	scalar %= r.Modulus
	for i := 0; i < r.N; i++ {
		p2.Coeffs[i] = (p1.Coeffs[i] * scalar) % r.Modulus
	}
}

// MulPoly multiplies p1 by p2, reduced mod (Modulus, x^N - 1), returning the
// result on p3. The product is the cyclic convolution
//
//	p3[k] = sum_{i+j = k mod N} p1[i]*p2[j] mod Modulus.
//
// The schoolbook O(N^2) convolution is used; the coefficient magnitudes of
// all supported moduli keep the uint64 accumulator from overflowing up to
// N = 2^20. p3 must not alias p1 or p2.
func (r *Ring) MulPoly(p1, p2, p3 *Poly) {
	N := r.N
	for k := 0; k < N; k++ {
		var acc uint64
		// i ranges over p1, k-i mod N over p2.
		for i, c := range p1.Coeffs {
			j := k - i
			if j < 0 {
				j += N
			}
			acc += c * p2.Coeffs[j]
		}
		p3.Coeffs[k] = acc % r.Modulus
	}
}

// MulPolyNew multiplies p1 by p2 and returns the result on a new polynomial.
func (r *Ring) MulPolyNew(p1, p2 *Poly) *Poly {
	p3 := r.NewPoly()
	r.MulPoly(p1, p2, p3)
	return p3
}

// CenterMod lifts each coefficient of p1 into the centered representative in
// (-Modulus/2, Modulus/2] and reduces it modulo mod, returning the result on
// p2 with coefficients in [0, mod). This is the only sanctioned way to move a
// polynomial between rings of different moduli.
func (r *Ring) CenterMod(p1 *Poly, mod uint64, p2 *Poly) {
	half := r.Modulus >> 1
	for i := 0; i < r.N; i++ {
		c := p1.Coeffs[i]
		if c > half {
			// Centered value is c - Modulus < 0; add enough multiples of mod
			// to stay in uint64 range.
			p2.Coeffs[i] = (c + mod*r.Modulus - r.Modulus) % mod
		} else {
			p2.Coeffs[i] = c % mod
		}
	}
}

// Reduce applies a full modular reduction on each coefficient of p1,
// returning the result on p2. It accepts arbitrary uint64 coefficients.
func (r *Ring) Reduce(p1, p2 *Poly) {
	for i := 0; i < r.N; i++ {
		p2.Coeffs[i] = p1.Coeffs[i] % r.Modulus
	}
}
