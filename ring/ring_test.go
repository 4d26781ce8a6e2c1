package ring_test

import (
	"testing"

	"github.com/montanaflynn/stats"
	"github.com/stretchr/testify/require"

	"github.com/pqlattice/ntrue/ring"
	"github.com/pqlattice/ntrue/utils/sampling"
)

var testSeed = []byte{0x3b, 0xce, 0xa1, 0xdb, 0x42, 0xf3, 0xa6, 0xd5, 0x75, 0xd2, 0x0c, 0x92, 0xb7, 0x35, 0xce, 0x0c}

func testPRNG(t *testing.T) sampling.PRNG {
	t.Helper()
	prng, err := sampling.NewKeyedPRNG(testSeed)
	require.NoError(t, err)
	return prng
}

// saturatedPRNG returns 0xff bytes forever, so every 32-bit draw is the
// maximal value and is rejected for any bound that does not divide 2^32.
type saturatedPRNG struct{}

func (saturatedPRNG) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0xff
	}
	return len(p), nil
}

func TestNewRing(t *testing.T) {
	_, err := ring.NewRing(0, 2048)
	require.Error(t, err)

	_, err = ring.NewRing(17, 1)
	require.Error(t, err)

	r, err := ring.NewRing(17, 2048)
	require.NoError(t, err)
	require.True(t, r.IsPowerOfTwoModulus())
	require.Equal(t, 11, r.LogModulus())

	r, err = ring.NewRing(17, 3)
	require.NoError(t, err)
	require.False(t, r.IsPowerOfTwoModulus())
	require.Equal(t, 2, r.LogModulus())
}

func TestRingArithmetic(t *testing.T) {

	r, err := ring.NewRing(8, 16)
	require.NoError(t, err)

	p1 := r.NewPoly()
	p2 := r.NewPoly()
	p3 := r.NewPoly()

	copy(p1.Coeffs, []uint64{1, 15, 7, 0, 3, 9, 12, 2})
	copy(p2.Coeffs, []uint64{5, 1, 10, 0, 14, 8, 4, 15})

	r.Add(p1, p2, p3)
	require.Equal(t, []uint64{6, 0, 1, 0, 1, 1, 0, 1}, p3.Coeffs)

	r.Sub(p1, p2, p3)
	require.Equal(t, []uint64{12, 14, 13, 0, 5, 1, 8, 3}, p3.Coeffs)

	r.Neg(p1, p3)
	r.Add(p1, p3, p3)
	require.True(t, p3.Equal(r.NewPoly()))

	r.MulScalar(p1, 2, p3)
	require.Equal(t, []uint64{2, 14, 14, 0, 6, 2, 8, 4}, p3.Coeffs)
}

func TestMulPoly(t *testing.T) {

	r, err := ring.NewRing(8, 2048)
	require.NoError(t, err)

	one := r.NewPoly()
	one.Coeffs[0] = 1

	x := r.NewPoly()
	x.Coeffs[1] = 1

	xN1 := r.NewPoly()
	xN1.Coeffs[r.N-1] = 1

	// Multiplication by 1 is the identity.
	p1 := r.NewPoly()
	copy(p1.Coeffs, []uint64{3, 0, 2047, 12, 1, 0, 7, 100})
	p3 := r.NewPoly()
	r.MulPoly(p1, one, p3)
	require.True(t, p3.Equal(p1))

	// x * x^(N-1) = x^N = 1 in the cyclic ring.
	r.MulPoly(x, xN1, p3)
	require.True(t, p3.Equal(one))

	// Convolution is commutative.
	p2 := r.NewPoly()
	copy(p2.Coeffs, []uint64{5, 9, 0, 2000, 0, 0, 1, 3})
	p4 := r.NewPoly()
	r.MulPoly(p1, p2, p3)
	r.MulPoly(p2, p1, p4)
	require.True(t, p3.Equal(p4))
}

func TestCenterMod(t *testing.T) {

	r, err := ring.NewRing(5, 8)
	require.NoError(t, err)

	p1 := r.NewPoly()
	copy(p1.Coeffs, []uint64{0, 1, 4, 5, 7})

	// Centered representatives are 0, 1, 4, -3, -1.
	p2 := r.NewPoly()
	r.CenterMod(p1, 3, p2)
	require.Equal(t, []uint64{0, 1, 1, 0, 2}, p2.Coeffs)
}

func TestInverse(t *testing.T) {

	prng := testPRNG(t)

	t.Run("PrimeModulus", func(t *testing.T) {

		r, err := ring.NewRing(23, 3)
		require.NoError(t, err)

		ts, err := ring.NewTernarySampler(prng, r, 8, 7)
		require.NoError(t, err)

		one := r.NewPoly()
		one.Coeffs[0] = 1

		inv := r.NewPoly()
		prod := r.NewPoly()

		inverted := 0
		for i := 0; i < 32; i++ {
			f, err := ts.ReadNew()
			require.NoError(t, err)
			if !r.Inverse(f, inv) {
				continue
			}
			inverted++
			r.MulPoly(f, inv, prod)
			require.True(t, prod.Equal(one))
		}
		require.Greater(t, inverted, 0)
	})

	t.Run("PowerOfTwoModulus", func(t *testing.T) {

		r, err := ring.NewRing(23, 2048)
		require.NoError(t, err)

		ts, err := ring.NewTernarySampler(prng, r, 8, 7)
		require.NoError(t, err)

		one := r.NewPoly()
		one.Coeffs[0] = 1

		inv := r.NewPoly()
		prod := r.NewPoly()

		inverted := 0
		for i := 0; i < 32; i++ {
			f, err := ts.ReadNew()
			require.NoError(t, err)
			if !r.Inverse(f, inv) {
				continue
			}
			inverted++
			r.MulPoly(f, inv, prod)
			require.True(t, prod.Equal(one))
		}
		require.Greater(t, inverted, 0)
	})

	t.Run("NotInvertible", func(t *testing.T) {

		r, err := ring.NewRing(23, 3)
		require.NoError(t, err)

		// The zero polynomial has no inverse.
		inv := r.NewPoly()
		require.False(t, r.Inverse(r.NewPoly(), inv))

		// Neither does any multiple of x - 1: its evaluation at 1 is 0.
		f := r.NewPoly()
		f.Coeffs[0] = 2 // -1
		f.Coeffs[1] = 1
		require.False(t, r.Inverse(f, inv))
	})

	t.Run("RotationByX", func(t *testing.T) {

		// x^-1 = x^(N-1).
		r, err := ring.NewRing(23, 3)
		require.NoError(t, err)

		x := r.NewPoly()
		x.Coeffs[1] = 1

		inv := r.NewPoly()
		require.True(t, r.Inverse(x, inv))

		expected := r.NewPoly()
		expected.Coeffs[r.N-1] = 1
		require.True(t, inv.Equal(expected))
	})

	t.Run("RotationPowerOfTwoModulus", func(t *testing.T) {

		// (x^k)^-1 must come out exactly as x^(N-k) after the lifting
		// rounds, with no residue on the other coefficients.
		r, err := ring.NewRing(23, 2048)
		require.NoError(t, err)

		one := r.NewPoly()
		one.Coeffs[0] = 1

		inv := r.NewPoly()
		prod := r.NewPoly()
		for k := 1; k < r.N; k++ {
			xk := r.NewPoly()
			xk.Coeffs[k] = 1

			require.True(t, r.Inverse(xk, inv))

			expected := r.NewPoly()
			expected.Coeffs[r.N-k] = 1
			require.True(t, inv.Equal(expected))

			r.MulPoly(xk, inv, prod)
			require.True(t, prod.Equal(one))
		}
	})
}

func TestTernarySampler(t *testing.T) {

	prng := testPRNG(t)

	r, err := ring.NewRing(443, 2048)
	require.NoError(t, err)

	t.Run("InvalidWeights", func(t *testing.T) {
		_, err := ring.NewTernarySampler(prng, r, 300, 200)
		require.Error(t, err)
		_, err = ring.NewTernarySampler(prng, r, -1, 0)
		require.Error(t, err)
	})

	t.Run("ExhaustedRejectionBudget", func(t *testing.T) {

		// Every 32-bit draw from the saturated source lands in the rejected
		// tail of the first shuffle bound, so the retry budget runs out.
		ts, err := ring.NewTernarySampler(saturatedPRNG{}, r, 115, 114)
		require.NoError(t, err)

		_, err = ts.ReadNew()
		require.ErrorIs(t, err, ring.ErrSamplingExhausted)
	})

	t.Run("ExactWeights", func(t *testing.T) {

		ts, err := ring.NewTernarySampler(prng, r, 115, 114)
		require.NoError(t, err)

		pol, err := ts.ReadNew()
		require.NoError(t, err)

		var ones, minusOnes, zeros int
		for _, c := range pol.Coeffs {
			switch c {
			case 1:
				ones++
			case r.Modulus - 1:
				minusOnes++
			case 0:
				zeros++
			}
		}
		require.Equal(t, 115, ones)
		require.Equal(t, 114, minusOnes)
		require.Equal(t, r.N-115-114, zeros)
	})

	t.Run("IndependentDraws", func(t *testing.T) {

		ts, err := ring.NewTernarySampler(prng, r, 115, 114)
		require.NoError(t, err)

		p1, err := ts.ReadNew()
		require.NoError(t, err)
		p2, err := ts.ReadNew()
		require.NoError(t, err)

		require.False(t, p1.Equal(p2))
	})

	t.Run("Distribution", func(t *testing.T) {

		// With 115 ones and 114 minus ones per draw, the expected mean of a
		// centered coefficient is 1/N.
		ts, err := ring.NewTernarySampler(prng, r, 115, 114)
		require.NoError(t, err)

		var centered []float64
		pol := r.NewPoly()
		for i := 0; i < 64; i++ {
			require.NoError(t, ts.Read(pol))
			for _, c := range pol.Coeffs {
				switch c {
				case 1:
					centered = append(centered, 1)
				case r.Modulus - 1:
					centered = append(centered, -1)
				default:
					centered = append(centered, 0)
				}
			}
		}

		mean, err := stats.Mean(centered)
		require.NoError(t, err)
		require.InDelta(t, 1.0/float64(r.N), mean, 1e-9)

		sd, err := stats.StandardDeviation(centered)
		require.NoError(t, err)
		// Nonzero density is 229/443, so the standard deviation is close to
		// sqrt(229/443).
		require.InDelta(t, 0.719, sd, 0.01)
	})
}

func TestPolyEqual(t *testing.T) {

	p1 := ring.NewPoly(4)
	p2 := ring.NewPoly(4)
	require.True(t, p1.Equal(p2))

	p2.Coeffs[3] = 1
	require.False(t, p1.Equal(p2))

	require.False(t, p1.Equal(ring.NewPoly(5)))

	p3 := p2.CopyNew()
	require.True(t, p2.Equal(p3))
	p3.Zero()
	require.True(t, p3.Equal(p1))
}
