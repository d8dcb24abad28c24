package crypto

import (
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fp"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/hash_to_curve"
)

// DST is the domain separation tag drand hashes beacon messages with. Both schemes use the G2 tag, including
// the unchained scheme that hashes to G1.
const DST = "BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_NUL_"

const (
	// maxDSTLen is the longest tag expand_message_xmd accepts, its length is encoded on one byte.
	maxDSTLen = 255
	// elementsPerHash is the number of field elements the random oracle construction maps and adds up.
	// expand_message_xmd with SHA-256 produces 64 bytes per element of Fp, so 128 bytes for G1 and
	// 256 bytes for G2.
	elementsPerHash = 2
)

// HashToCurve maps arbitrary messages to points of the prime order subgroup of one group, following the
// hash_to_curve random oracle suite BLS12381Gx_XMD:SHA-256_SSWU_RO_. The mapping is deterministic: the signer
// and the verifiers land on the same point for the same tag and message.
type HashToCurve interface {
	// Group is the group the points are mapped to.
	Group() Group
	// Hash maps msg to a point, with dst as domain separation tag.
	Hash(dst, msg []byte) (Point, error)
}

// NewHashToCurve returns the hasher mapping onto g.
func NewHashToCurve(g Group) (HashToCurve, error) {
	switch g {
	case G1:
		return g1Hasher{}, nil
	case G2:
		return g2Hasher{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown group %d", ErrHashToCurve, uint8(g))
	}
}

// hashToField expands msg and reduces it into elementsPerHash elements of the degree-th extension of Fp,
// returned as their coefficients.
func hashToField(dst, msg []byte, degree int) ([]fp.Element, error) {
	if len(dst) == 0 {
		return nil, fmt.Errorf("%w: empty domain separation tag", ErrHashToCurve)
	}
	if len(dst) > maxDSTLen {
		return nil, fmt.Errorf("%w: domain separation tag is %d bytes, max %d", ErrHashToCurve, len(dst), maxDSTLen)
	}
	u, err := fp.Hash(msg, dst, elementsPerHash*degree)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHashToCurve, err)
	}
	return u, nil
}

// g1Hasher hashes to G1: the field is Fp itself and the SSWU map works on a curve 11-isogenous to E.
type g1Hasher struct{}

func (g1Hasher) Group() Group {
	return G1
}

func (g1Hasher) Hash(dst, msg []byte) (Point, error) {
	u, err := hashToField(dst, msg, 1)
	if err != nil {
		return Point{}, err
	}

	q0 := bls12381.MapToCurve1(&u[0])
	q1 := bls12381.MapToCurve1(&u[1])
	hash_to_curve.G1Isogeny(&q0.X, &q0.Y)
	hash_to_curve.G1Isogeny(&q1.X, &q1.Y)

	var j0, j1 bls12381.G1Jac
	j0.FromAffine(&q0)
	j1.FromAffine(&q1).AddAssign(&j0)
	j1.ClearCofactor(&j1)

	p := Point{group: G1}
	p.g1.FromJacobian(&j1)
	return p, nil
}

// g2Hasher hashes to G2: the field is Fp2 and the SSWU map works on a curve 3-isogenous to E'.
type g2Hasher struct{}

func (g2Hasher) Group() Group {
	return G2
}

func (g2Hasher) Hash(dst, msg []byte) (Point, error) {
	u, err := hashToField(dst, msg, 2)
	if err != nil {
		return Point{}, err
	}

	// gnark-crypto keeps its Fp2 type internal, the X coordinates of scratch G2 points carry the elements.
	var e0, e1 bls12381.G2Affine
	e0.X.A0, e0.X.A1 = u[0], u[1]
	e1.X.A0, e1.X.A1 = u[2], u[3]

	q0 := bls12381.MapToCurve2(&e0.X)
	q1 := bls12381.MapToCurve2(&e1.X)
	hash_to_curve.G2Isogeny(&q0.X, &q0.Y)
	hash_to_curve.G2Isogeny(&q1.X, &q1.Y)

	var j0, j1 bls12381.G2Jac
	j0.FromAffine(&q0)
	j1.FromAffine(&q1).AddAssign(&j0)
	j1.ClearCofactor(&j1)

	p := Point{group: G2}
	p.g2.FromJacobian(&j1)
	return p, nil
}
