package crypto_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/drand/drand-verify/crypto"
)

type pairingInputs struct {
	pk, sig, hashed, generator crypto.Point
}

func decodeInputs(t *testing.T, v vector) pairingInputs {
	t.Helper()
	sch := v.scheme(t)

	pk, err := crypto.DecodePoint(v.PublicKey, sch.KeyGroup())
	require.NoError(t, err)
	sig, err := crypto.DecodePoint(v.Signature, sch.SigGroup())
	require.NoError(t, err)
	h, err := crypto.NewHashToCurve(sch.SigGroup())
	require.NoError(t, err)
	hashed, err := h.Hash([]byte(crypto.DST), crypto.DigestBeacon(v.Round, v.PrevSig, sch))
	require.NoError(t, err)

	return pairingInputs{pk: pk, sig: sig, hashed: hashed, generator: crypto.Generator(sch.KeyGroup())}
}

func TestVerifyPairing(t *testing.T) {
	for _, name := range []string{"mainnet round 367", "fastnet round 614294"} {
		v := vectorByName(t, name)
		sch := v.scheme(t)
		in := decodeInputs(t, v)

		require.True(t, crypto.VerifyPairing(in.pk, in.sig, in.hashed, in.generator, sch), name)

		// swapping the signature and the hashed message breaks the equation
		require.False(t, crypto.VerifyPairing(in.pk, in.hashed, in.sig, in.generator, sch), name)
		// the key is not the generator
		require.False(t, crypto.VerifyPairing(in.generator, in.sig, in.hashed, in.generator, sch), name)
	}
}

func TestVerifyPairingGroupMismatch(t *testing.T) {
	chained := decodeInputs(t, vectorByName(t, "mainnet round 367"))
	unchained := decodeInputs(t, vectorByName(t, "fastnet round 614294"))

	// points of the other scheme never satisfy the equation, whatever their values
	require.False(t, crypto.VerifyPairing(unchained.pk, unchained.sig, unchained.hashed, unchained.generator, crypto.Chained))
	require.False(t, crypto.VerifyPairing(chained.pk, chained.sig, chained.hashed, chained.generator, crypto.Unchained))
	require.False(t, crypto.VerifyPairing(chained.pk, unchained.sig, chained.hashed, chained.generator, crypto.Chained))
	require.False(t, crypto.VerifyPairing(chained.pk, chained.sig, chained.hashed, chained.generator, crypto.Scheme(0)))
	require.False(t, crypto.VerifyPairing(crypto.Point{}, chained.sig, chained.hashed, chained.generator, crypto.Chained))
}
