package crypto

import "errors"

// ErrMalformedEncoding is returned when the bytes of a point do not have the size or the flags of a
// compressed point of the expected group.
var ErrMalformedEncoding = errors.New("malformed point encoding")

// ErrInvalidPoint is returned when the bytes do not decode to a point of the prime order subgroup, or when a
// point is the identity where a key or a signature is expected.
var ErrInvalidPoint = errors.New("invalid curve point")

// ErrHashToCurve indicates a failure to map a message to the curve, which only happens with a malformed
// domain separation tag.
var ErrHashToCurve = errors.New("hash to curve failed")

// ErrVerificationFailed means all the inputs were well formed but the signature does not match the
// public key and the round.
var ErrVerificationFailed = errors.New("signature verification failed")

// ErrUnexpectedPreviousSignature is returned when a previous signature is given for an unchained scheme.
var ErrUnexpectedPreviousSignature = errors.New("previous signature given for an unchained scheme")

// ErrUnsupportedScheme is returned for scheme ids or values this package cannot verify.
var ErrUnsupportedScheme = errors.New("unsupported scheme")
