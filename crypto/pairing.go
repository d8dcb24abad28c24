package crypto

import (
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

// VerifyPairing checks the BLS verification equation of the scheme:
//
//	chained:   e(pk, H(m)) == e(g1, sig)
//	unchained: e(H(m), pk) == e(sig, g2)
//
// Both sides are compared exactly in GT, as e(a, b) * e(-c, d) == 1 so that a single final exponentiation
// is needed. Points that are not in the groups the scheme expects never verify.
func VerifyPairing(pk, sig, hashed, generator Point, s Scheme) bool {
	if !s.valid() ||
		pk.group != s.KeyGroup() || generator.group != s.KeyGroup() ||
		sig.group != s.SigGroup() || hashed.group != s.SigGroup() {
		return false
	}

	var ok bool
	var err error
	switch s {
	case Chained:
		var negGen bls12381.G1Affine
		negGen.Neg(&generator.g1)
		ok, err = bls12381.PairingCheck(
			[]bls12381.G1Affine{pk.g1, negGen},
			[]bls12381.G2Affine{hashed.g2, sig.g2},
		)
	case Unchained:
		var negGen bls12381.G2Affine
		negGen.Neg(&generator.g2)
		ok, err = bls12381.PairingCheck(
			[]bls12381.G1Affine{hashed.g1, sig.g1},
			[]bls12381.G2Affine{pk.g2, negGen},
		)
	}

	return err == nil && ok
}
