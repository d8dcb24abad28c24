package crypto

import (
	"fmt"
)

type hashableBeacon interface {
	GetPreviousSignature() []byte
	GetRound() uint64
}

type signedBeacon interface {
	hashableBeacon
	GetSignature() []byte
}

// Verifier checks beacons of one chain. It holds the decoded public key, so that verifying many rounds
// does not decode it again. A Verifier is immutable and safe for concurrent use.
type Verifier struct {
	scheme    Scheme
	pub       Point
	generator Point
	hasher    HashToCurve
}

// NewVerifier decodes the chain public key for the given scheme. The identity is rejected since it would
// verify any signature that is the identity as well.
func NewVerifier(s Scheme, pubKey []byte) (*Verifier, error) {
	if !s.valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, s)
	}

	pub, err := DecodePoint(pubKey, s.KeyGroup())
	if err != nil {
		return nil, fmt.Errorf("public key: %w", err)
	}
	if pub.IsInfinity() {
		return nil, fmt.Errorf("public key: %w: identity element", ErrInvalidPoint)
	}

	hasher, err := NewHashToCurve(s.SigGroup())
	if err != nil {
		return nil, err
	}

	return &Verifier{
		scheme:    s,
		pub:       pub,
		generator: Generator(s.KeyGroup()),
		hasher:    hasher,
	}, nil
}

// Scheme returns the scheme the verifier checks signatures for.
func (v *Verifier) Scheme() Scheme {
	return v.scheme
}

// PublicKey returns the chain public key.
func (v *Verifier) PublicKey() Point {
	return v.pub
}

// VerifyRound returns nil if sig is the signature of the network for the round. prevSig must be the raw
// previous signature for chained schemes, and empty for unchained ones.
func (v *Verifier) VerifyRound(round uint64, prevSig, sig []byte) error {
	point, err := DecodePoint(sig, v.scheme.SigGroup())
	if err != nil {
		return fmt.Errorf("round %d: signature: %w", round, err)
	}
	if point.IsInfinity() {
		return fmt.Errorf("round %d: signature: %w: identity element", round, ErrInvalidPoint)
	}
	if !v.scheme.IsChained() && len(prevSig) > 0 {
		return fmt.Errorf("round %d: %w", round, ErrUnexpectedPreviousSignature)
	}

	msg := DigestBeacon(round, prevSig, v.scheme)
	hashed, err := v.hasher.Hash([]byte(DST), msg)
	if err != nil {
		return fmt.Errorf("round %d: %w", round, err)
	}

	if !VerifyPairing(v.pub, point, hashed, v.generator, v.scheme) {
		return fmt.Errorf("round %d: %w", round, ErrVerificationFailed)
	}
	return nil
}

// VerifyBeacon is VerifyRound on the fields of a beacon.
func (v *Verifier) VerifyBeacon(b signedBeacon) error {
	return v.VerifyRound(b.GetRound(), b.GetPreviousSignature(), b.GetSignature())
}

// VerifyRound checks the signature of a round against the chain public key, decoding both first. Decoding
// errors take priority over a signature mismatch, which is reported as ErrVerificationFailed.
func VerifyRound(round uint64, prevSig, pubKey, sig []byte, s Scheme) error {
	v, err := NewVerifier(s, pubKey)
	if err != nil {
		return err
	}
	return v.VerifyRound(round, prevSig, sig)
}
