package ntru

// Fixed-width binary packing of polynomial coefficients. Coefficient i
// occupies the bit range [i*width, (i+1)*width) of the output, little-endian
// within the byte stream: bit j of the stream is bit j%8 of byte j/8.

// packedLen returns the byte length of n coefficients packed at the given
// bit width.
func packedLen(n, width int) int {
	return (n*width + 7) / 8
}

// packCoeffs packs the coefficients at the given bit width into out, which
// must be packedLen(len(coeffs), width) zeroed bytes.
func packCoeffs(coeffs []uint64, width int, out []byte) {
	bit := 0
	for _, c := range coeffs {
		for b := 0; b < width; b++ {
			out[bit>>3] |= byte(c>>b&1) << (bit & 7)
			bit++
		}
	}
}

// unpackCoeffs reads len(coeffs) coefficients of the given bit width from in.
// It returns false if any spare bit of the final byte is set, so that
// packCoeffs is the exact inverse of every accepted input.
func unpackCoeffs(in []byte, width int, coeffs []uint64) bool {
	bit := 0
	for i := range coeffs {
		var c uint64
		for b := 0; b < width; b++ {
			c |= uint64(in[bit>>3]>>(bit&7)&1) << b
			bit++
		}
		coeffs[i] = c
	}
	if rem := bit & 7; rem != 0 && in[bit>>3]>>rem != 0 {
		return false
	}
	return true
}
