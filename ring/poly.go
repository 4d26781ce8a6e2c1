package ring

// Poly is the structure that contains the coefficients of a polynomial of
// degree < N over Z_m[x]/(x^N - 1). Coefficients are kept reduced in [0, m)
// for the modulus m of the [Ring] that allocated the Poly; polynomials bound
// to rings with different moduli are never combined without an explicit
// reduction such as [Ring.CenterMod].
type Poly struct {
	Coeffs []uint64
}

// NewPoly creates a new polynomial with N coefficients set to zero.
func NewPoly(N int) *Poly {
	return &Poly{Coeffs: make([]uint64, N)}
}

// N returns the number of coefficients of the polynomial.
func (pol *Poly) N() int {
	return len(pol.Coeffs)
}

// Zero sets all coefficients of the target polynomial to 0.
func (pol *Poly) Zero() {
	for i := range pol.Coeffs {
		pol.Coeffs[i] = 0
	}
}

// Copy copies the coefficients of p1 on the target polynomial. It expects
// both polynomials to have the same degree.
func (pol *Poly) Copy(p1 *Poly) {
	if pol != p1 {
		copy(pol.Coeffs, p1.Coeffs)
	}
}

// CopyNew creates an exact copy of the target polynomial.
func (pol *Poly) CopyNew() *Poly {
	p1 := NewPoly(pol.N())
	copy(p1.Coeffs, pol.Coeffs)
	return p1
}

// Equal returns true if the receiver is equal to the provided other Poly.
// The comparison runs in time independent of the coefficient values, so it
// can be applied to secret material; it still reveals the polynomial degree.
func (pol *Poly) Equal(other *Poly) bool {
	if pol.N() != other.N() {
		return false
	}
	var acc uint64
	for i, c := range pol.Coeffs {
		acc |= c ^ other.Coeffs[i]
	}
	return acc == 0
}
