package ntru

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/pqlattice/ntrue/ring"
	"github.com/pqlattice/ntrue/utils/sampling"
)

// ErrDecodingFailure is returned when a decrypted polynomial does not decode
// to a structurally valid message block, for instance when the embedded
// message length is out of range.
var ErrDecodingFailure = errors.New("decoded message block is malformed")

// ErrIntegrityCheckFailed is returned when the integrity tag or the zero
// padding of a decrypted message block does not verify. It covers both
// corrupted ciphertexts and wrong-key decryption attempts.
var ErrIntegrityCheckFailed = errors.New("message integrity check failed")

// Message block layout, MsgBlockLen bytes total:
//
//	b        Db/8 bytes   random padding
//	len      1 byte       plaintext length
//	msg      MaxMsgLen    plaintext, zero padded on the right
//	tag      4 bytes      blake3(b | len | msg[:len])[:4]
//
// The block is mapped onto the N trinary coefficients of the message
// polynomial with the 3-bits-to-2-trits table below; trits beyond the block
// are zero.

// messageTag computes the integrity tag over the b | len | msg[:len] prefix
// of a message block.
func messageTag(params Parameters, blk []byte, msgLen int) [tagLen]byte {
	sum := blake3.Sum256(blk[:params.Db()/8+1+msgLen])
	var tag [tagLen]byte
	copy(tag[:], sum[:tagLen])
	return tag
}

// buildMessageBlock assembles the padded message block for msg, drawing the
// random padding segment from prng.
func buildMessageBlock(params Parameters, msg []byte, prng sampling.PRNG) ([]byte, error) {

	db := params.Db() / 8
	blk := make([]byte, params.MsgBlockLen())

	pad, err := sampling.RandomBytes(db, prng)
	if err != nil {
		return nil, err
	}
	copy(blk, pad)

	blk[db] = byte(len(msg))
	copy(blk[db+1:], msg)

	tag := messageTag(params, blk, len(msg))
	copy(blk[db+1+params.MaxMsgLen():], tag[:])

	return blk, nil
}

// parseMessageBlock validates a decoded message block and returns the
// plaintext bytes.
func parseMessageBlock(params Parameters, blk []byte) ([]byte, error) {

	db := params.Db() / 8

	msgLen := int(blk[db])
	if msgLen > params.MaxMsgLen() {
		return nil, fmt.Errorf("%w: message length %d exceeds maximum %d", ErrDecodingFailure, msgLen, params.MaxMsgLen())
	}

	// Validate the zero padding and the tag without short-circuiting, so a
	// mismatch position is not observable through timing.
	var nonzero byte
	for _, b := range blk[db+1+msgLen : db+1+params.MaxMsgLen()] {
		nonzero |= b
	}

	tag := messageTag(params, blk, msgLen)
	tagOK := subtle.ConstantTimeCompare(tag[:], blk[db+1+params.MaxMsgLen():])

	if nonzero != 0 || tagOK != 1 {
		return nil, ErrIntegrityCheckFailed
	}

	out := make([]byte, msgLen)
	copy(out, blk[db+1:])
	return out, nil
}

// tritPairs maps a 3-bit value onto a pair of trits {0, 1, 2}, with 2
// standing for -1. The pair (-1, -1) is never produced; decoding it signals
// corruption.
var tritPairs = [8][2]uint64{
	{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}, {1, 2}, {2, 0}, {2, 1},
}

// encodeBlock maps blk onto the message polynomial in mod-q representation,
// three block bits per pair of trinary coefficients, bits taken little-endian
// from the byte stream. pol must belong to a ring of degree >= the number of
// trits.
func encodeBlock(blk []byte, pol *ring.Poly, q uint64) {

	pol.Zero()
	totalBits := 8 * len(blk)

	for t := 0; 3*t < totalBits; t++ {
		var v uint64
		for b := 0; b < 3; b++ {
			bit := 3*t + b
			if bit < totalBits {
				v |= uint64(blk[bit>>3]>>(bit&7)&1) << b
			}
		}
		pair := tritPairs[v]
		pol.Coeffs[2*t] = tritToModQ(pair[0], q)
		pol.Coeffs[2*t+1] = tritToModQ(pair[1], q)
	}
}

func tritToModQ(t, q uint64) uint64 {
	if t == 2 {
		return q - 1
	}
	return t
}

// decodeBlock inverts encodeBlock: it reads the trinary coefficients of pol
// (mod-p representation, values in {0, 1, 2}) back into a blkLen-byte block.
// It fails if a trit pair does not appear in the encoding table or if the
// coefficients beyond the block are not zero.
func decodeBlock(pol *ring.Poly, blkLen int) ([]byte, error) {

	blk := make([]byte, blkLen)
	totalBits := 8 * blkLen

	pairs := (totalBits + 2) / 3
	for t := 0; t < pairs; t++ {
		v, ok := tritPairValue(pol.Coeffs[2*t], pol.Coeffs[2*t+1])
		if !ok {
			return nil, fmt.Errorf("%w: invalid trit pair", ErrDecodingFailure)
		}
		for b := 0; b < 3; b++ {
			bit := 3*t + b
			if bit < totalBits {
				blk[bit>>3] |= byte(v>>b&1) << (bit & 7)
			} else if v>>b&1 != 0 {
				return nil, fmt.Errorf("%w: nonzero bits beyond block end", ErrDecodingFailure)
			}
		}
	}

	for _, c := range pol.Coeffs[2*pairs:] {
		if c != 0 {
			return nil, fmt.Errorf("%w: nonzero trailing coefficients", ErrDecodingFailure)
		}
	}

	return blk, nil
}

// tritPairValue returns the 3-bit value encoding the trit pair (t1, t2), or
// false if the pair is not in the table.
func tritPairValue(t1, t2 uint64) (uint64, bool) {
	for v, pair := range tritPairs {
		if pair[0] == t1 && pair[1] == t2 {
			return uint64(v), true
		}
	}
	return 0, false
}
