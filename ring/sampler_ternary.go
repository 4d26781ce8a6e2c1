package ring

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/pqlattice/ntrue/utils/sampling"
)

// ErrSamplingExhausted is returned when the rejection sampling of a uniform
// index fails to terminate within its retry budget.
var ErrSamplingExhausted = errors.New("rejection sampling budget exhausted")

// maxRejections bounds the number of candidate draws for a single uniform
// index. The rejection probability per draw is below 2^-31, so the budget is
// never reached with a functioning entropy source.
const maxRejections = 1000

// TernarySampler samples polynomials with a prescribed number of +1 and -1
// coefficients, the remaining coefficients being 0, with the nonzero
// positions chosen uniformly at random without replacement.
type TernarySampler struct {
	prng         sampling.PRNG
	baseRing     *Ring
	numOnes      int
	numMinusOnes int
	buf          [4]byte
}

// NewTernarySampler creates a new TernarySampler over baseRing drawing its
// randomness from prng. Polynomials read from the sampler have exactly
// numOnes coefficients equal to 1 and numMinusOnes equal to -1 (stored as
// Modulus-1).
func NewTernarySampler(prng sampling.PRNG, baseRing *Ring, numOnes, numMinusOnes int) (*TernarySampler, error) {

	if numOnes < 0 || numMinusOnes < 0 || numOnes+numMinusOnes > baseRing.N {
		return nil, fmt.Errorf("invalid ternary weights (+1: %d, -1: %d) for ring degree %d", numOnes, numMinusOnes, baseRing.N)
	}

	return &TernarySampler{
		prng:         prng,
		baseRing:     baseRing,
		numOnes:      numOnes,
		numMinusOnes: numMinusOnes,
	}, nil
}

// Read samples a fixed-weight ternary polynomial into pol.
func (ts *TernarySampler) Read(pol *Poly) error {

	N := ts.baseRing.N
	minusOne := ts.baseRing.Modulus - 1

	coeffs := pol.Coeffs[:N]
	for i := range coeffs {
		switch {
		case i < ts.numOnes:
			coeffs[i] = 1
		case i < ts.numOnes+ts.numMinusOnes:
			coeffs[i] = minusOne
		default:
			coeffs[i] = 0
		}
	}

	// Fisher-Yates over the whole coefficient slice; the swap is performed
	// unconditionally so the access pattern only depends on the drawn
	// indices, not on the coefficient values.
	for i := N - 1; i > 0; i-- {
		j, err := ts.uniformIndex(uint32(i + 1))
		if err != nil {
			return err
		}
		coeffs[i], coeffs[j] = coeffs[j], coeffs[i]
	}

	return nil
}

// ReadNew samples a fixed-weight ternary polynomial into a new Poly.
func (ts *TernarySampler) ReadNew() (*Poly, error) {
	pol := ts.baseRing.NewPoly()
	if err := ts.Read(pol); err != nil {
		return nil, err
	}
	return pol, nil
}

// uniformIndex draws a uniform integer in [0, bound) by bounded rejection
// sampling on 32-bit draws.
func (ts *TernarySampler) uniformIndex(bound uint32) (uint32, error) {

	// Largest multiple of bound representable on 32 bits; draws at or above
	// it are rejected to avoid modulo bias.
	threshold := uint32((uint64(1) << 32) / uint64(bound) * uint64(bound))

	for attempt := 0; attempt < maxRejections; attempt++ {
		if _, err := ts.prng.Read(ts.buf[:]); err != nil {
			return 0, fmt.Errorf("ternary sampler: %w", err)
		}
		v := binary.LittleEndian.Uint32(ts.buf[:])
		if threshold == 0 || v < threshold {
			return v % bound, nil
		}
	}

	return 0, ErrSamplingExhausted
}
