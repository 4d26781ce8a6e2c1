package ring

// Multiplicative inversion in Z_m[x]/(x^N - 1).
//
// For a prime modulus the almost-inverse algorithm (NTRU Tech Report #014) is
// run as a fixed sequence of 2N-1 division steps with masked swaps, so that
// the memory access pattern and the executed instructions do not depend on
// the coefficients of the input. For a power-of-two modulus the input is
// first inverted mod 2 and the result is lifted to the full modulus by Newton
// iteration, which doubles the precision at each step.

// ctNonzeroMask returns all ones if v != 0, else 0.
func ctNonzeroMask(v uint64) uint64 {
	return -((v | -v) >> 63)
}

// ctLtMask returns all ones if a < b, else 0. Both operands must be < 2^63.
func ctLtMask(a, b uint64) uint64 {
	return -((a - b) >> 63)
}

// ctSelect returns a if mask is all ones and b if mask is 0.
func ctSelect(mask, a, b uint64) uint64 {
	return b ^ (mask & (a ^ b))
}

// ctSwap exchanges the contents of f and g if mask is all ones.
func ctSwap(f, g []uint64, mask uint64) {
	for i := range f {
		t := mask & (f[i] ^ g[i])
		f[i] ^= t
		g[i] ^= t
	}
}

// scalarInvModP returns x^-1 mod p for 0 < x < p, scanning all candidates so
// that the running time does not depend on x. Returns 0 for x = 0.
func scalarInvModP(x, p uint64) uint64 {
	var inv uint64
	for j := uint64(1); j < p; j++ {
		hit := ctNonzeroMask((x * j % p) ^ 1)
		inv = ctSelect(^hit, j, inv)
	}
	return inv
}

// invertModPrime computes the inverse of the degree < N polynomial a in
// Z_p[x]/(x^N - 1) for a small prime p. The input coefficients must be
// reduced in [0, p). It returns the inverse coefficients and true, or nil and
// false if a is not invertible.
//
// The state (f, g, b, c) follows the almost-inverse recurrence
//
//	b*a = f*x^k,  c*a = g*x^k  (mod p, x^N - 1)
//
// with one exact division of f by x per step. After 2N-1 steps f is the
// constant gcd(a, x^N - 1), and the inverse is f^-1 * b * x^-k when that
// constant is nonzero.
func invertModPrime(a []uint64, N int, p uint64) ([]uint64, bool) {

	L := N + 1

	f := make([]uint64, L)
	g := make([]uint64, L)
	b := make([]uint64, L)
	c := make([]uint64, L)

	copy(f, a)
	g[0], g[N] = p-1, 1 // x^N - 1
	b[0] = 1

	degF := uint64(N - 1)
	degG := uint64(N)
	var k, f0const uint64
	still := ^uint64(0)

	for i := 0; i < 2*N-1; i++ {

		swap := ctNonzeroMask(f[0]&still) & ctLtMask(degF, degG)
		ctSwap(f, g, swap)
		ctSwap(b, c, swap)
		degF, degG = ctSelect(swap, degG, degF), ctSelect(swap, degF, degG)

		// Eliminate the constant term of f: f -= (f0/g0)*g, b -= (f0/g0)*c.
		// g0 is nonzero throughout: g starts at x^N - 1 and is only ever
		// replaced by an f whose constant term was nonzero.
		u := (f[0] & still) * scalarInvModP(g[0], p) % p
		mul := (p - u) % p
		for j := 0; j < L; j++ {
			f[j] = (f[j] + mul*g[j]) % p
			b[j] = (b[j] + mul*c[j]) % p
		}

		// f /= x (exact), c *= x.
		copy(f, f[1:])
		f[L-1] = 0
		copy(c[1:], c[:L-1])
		c[0] = 0

		degF -= still & 1
		k += still & 1
		f0const = ctSelect(still, f[0], f0const)
		still = ctNonzeroMask(degF)
	}

	if f0const == 0 {
		return nil, false
	}

	// inverse = f0^-1 * b * x^-k. Fold the x^N term of b back onto the
	// constant term before rotating.
	b[0] = (b[0] + b[N]) % p
	if k >= uint64(N) {
		k -= uint64(N)
	}

	scale := scalarInvModP(f0const, p)
	out := make([]uint64, N)
	for i := 0; i < N; i++ {
		out[i] = b[(uint64(i)+k)%uint64(N)] * scale % p
	}
	return out, true
}

// Inverse computes the multiplicative inverse of p1 mod (Modulus, x^N - 1),
// returning the result on p2 and true, or false if p1 is not invertible. The
// running time is independent of the coefficient values of p1.
//
// A power-of-two modulus is handled by inverting mod 2 and Hensel-lifting; a
// non-power-of-two modulus must be prime.
func (r *Ring) Inverse(p1, p2 *Poly) bool {

	if !r.IsPowerOfTwoModulus() {
		inv, ok := invertModPrime(p1.Coeffs, r.N, r.Modulus)
		if !ok {
			return false
		}
		copy(p2.Coeffs, inv)
		return true
	}

	// Reduce mod 2 and invert there.
	aMod2 := make([]uint64, r.N)
	for i, c := range p1.Coeffs {
		aMod2[i] = c & 1
	}
	inv2, ok := invertModPrime(aMod2, r.N, 2)
	if !ok {
		return false
	}

	// Newton iteration b <- b*(2 - p1*b): a correct inverse mod 2^k becomes
	// a correct inverse mod 2^(2k), so ceil(log2(log2(Modulus))) rounds
	// reach the full modulus.
	b := r.NewPoly()
	copy(b.Coeffs, inv2)
	t1, t2 := r.NewPoly(), r.NewPoly()
	logQ := r.LogModulus()
	for prec := 1; prec < logQ; prec <<= 1 {
		r.MulPoly(p1, b, t1)
		// 2 - p1*b: negate the product, then add 2 to the constant term.
		for i := 0; i < r.N; i++ {
			t1.Coeffs[i] = (r.Modulus - t1.Coeffs[i]) % r.Modulus
		}
		t1.Coeffs[0] = (t1.Coeffs[0] + 2) % r.Modulus
		r.MulPoly(b, t1, t2)
		b, t2 = t2, b
	}

	p2.Copy(b)
	return true
}
