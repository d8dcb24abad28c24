package crypto

import (
	"encoding/hex"
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

// Group identifies one of the two source groups of the BLS12-381 pairing.
type Group uint8

const (
	// G1 is the group over the base field, its compressed points are 48 bytes long.
	G1 Group = iota + 1
	// G2 is the group over the quadratic extension, its compressed points are 96 bytes long.
	G2
)

func (g Group) String() string {
	switch g {
	case G1:
		return "bls12-381.G1"
	case G2:
		return "bls12-381.G2"
	default:
		return fmt.Sprintf("Group(%d)", uint8(g))
	}
}

// PointLen returns the size of a compressed point of the group, or 0 for an unknown group.
func (g Group) PointLen() int {
	switch g {
	case G1:
		return bls12381.SizeOfG1AffineCompressed
	case G2:
		return bls12381.SizeOfG2AffineCompressed
	default:
		return 0
	}
}

// Opposite returns the other source group of the pairing.
func (g Group) Opposite() Group {
	switch g {
	case G1:
		return G2
	case G2:
		return G1
	default:
		return 0
	}
}

// Point is an affine point of G1 or G2. Only the coordinates of its own group are meaningful.
// The zero value is not a valid point; use DecodePoint, Generator or a HashToCurve.
type Point struct {
	group Group
	g1    bls12381.G1Affine
	g2    bls12381.G2Affine
}

// Group returns the group the point belongs to.
func (p Point) Group() Group {
	return p.group
}

// IsInfinity reports whether p is the identity element of its group.
func (p Point) IsInfinity() bool {
	switch p.group {
	case G1:
		return p.g1.IsInfinity()
	case G2:
		return p.g2.IsInfinity()
	default:
		return false
	}
}

// Bytes returns the canonical compressed encoding of the point.
func (p Point) Bytes() []byte {
	switch p.group {
	case G1:
		b := p.g1.Bytes()
		return b[:]
	case G2:
		b := p.g2.Bytes()
		return b[:]
	default:
		return nil
	}
}

// Equal indicates if two points are the same element of the same group.
func (p Point) Equal(q Point) bool {
	if p.group != q.group {
		return false
	}
	switch p.group {
	case G1:
		return p.g1.Equal(&q.g1)
	case G2:
		return p.g2.Equal(&q.g2)
	default:
		return false
	}
}

func (p Point) String() string {
	return fmt.Sprintf("%s{%s}", p.group, hex.EncodeToString(p.Bytes()))
}

// Generator returns the standard generator of the group.
func Generator(g Group) Point {
	_, _, g1Aff, g2Aff := bls12381.Generators()
	switch g {
	case G1:
		return Point{group: G1, g1: g1Aff}
	case G2:
		return Point{group: G2, g2: g2Aff}
	default:
		return Point{}
	}
}
