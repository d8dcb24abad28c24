package crypto

import (
	"fmt"
)

// compressedFlag is the most significant bit of the first byte of a compressed point in the
// ZCash serialization format drand uses.
const compressedFlag = 0x80

// DecodePoint decodes a compressed point of the given group. It fails with ErrMalformedEncoding when the
// length or the compression flag is wrong, and with ErrInvalidPoint when the bytes are not a point of the
// prime order subgroup. The identity is a valid point for the codec.
func DecodePoint(buf []byte, g Group) (Point, error) {
	size := g.PointLen()
	if size == 0 {
		return Point{}, fmt.Errorf("%w: unknown group %d", ErrMalformedEncoding, uint8(g))
	}
	if len(buf) != size {
		return Point{}, fmt.Errorf("%w: %s point is %d bytes, got %d", ErrMalformedEncoding, g, size, len(buf))
	}
	if buf[0]&compressedFlag == 0 {
		return Point{}, fmt.Errorf("%w: %s point is not compressed", ErrMalformedEncoding, g)
	}

	p := Point{group: g}
	var err error
	// SetBytes checks the curve equation and the subgroup membership.
	switch g {
	case G1:
		_, err = p.g1.SetBytes(buf)
	case G2:
		_, err = p.g2.SetBytes(buf)
	}
	if err != nil {
		return Point{}, fmt.Errorf("%w: %s: %v", ErrInvalidPoint, g, err)
	}

	return p, nil
}

// EncodePoint returns the canonical compressed encoding of p.
func EncodePoint(p Point) []byte {
	return p.Bytes()
}
