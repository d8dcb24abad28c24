package crypto_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/drand/drand-verify/crypto"
	"github.com/drand/drand-verify/internal/test"
)

func TestVerifyKyberChain(t *testing.T) {
	for _, sch := range []crypto.Scheme{crypto.Chained, crypto.Unchained} {
		sch := sch
		t.Run(sch.String(), func(t *testing.T) {
			t.Parallel()

			c := test.NewChain(t, sch, 5)
			verifier, err := crypto.NewVerifier(sch, c.Info.PublicKey)
			require.NoError(t, err)

			for _, b := range c.Beacons {
				require.NoError(t, verifier.VerifyBeacon(b), "round %d", b.Round)
			}

			// beacons are bound to their round
			b := c.Beacon(3)
			require.ErrorIs(t, verifier.VerifyRound(4, b.PreviousSig, b.Signature), crypto.ErrVerificationFailed)

			if sch.IsChained() {
				require.Equal(t, test.GenesisSeed(), c.Beacon(1).PreviousSig)
				require.ErrorIs(t, verifier.VerifyRound(3, c.Beacon(1).Signature, b.Signature), crypto.ErrVerificationFailed)
			}
		})
	}
}

func TestVerifyKyberSignature(t *testing.T) {
	msg := []byte("pass the signature")

	for _, sch := range []crypto.Scheme{crypto.Chained, crypto.Unchained} {
		c := test.NewChain(t, sch, 0)
		sig := c.Sign(t, msg)
		require.Len(t, sig, sch.SigGroup().PointLen())

		pk, err := crypto.DecodePoint(c.Info.PublicKey, sch.KeyGroup())
		require.NoError(t, err)
		point, err := crypto.DecodePoint(sig, sch.SigGroup())
		require.NoError(t, err)
		h, err := crypto.NewHashToCurve(sch.SigGroup())
		require.NoError(t, err)
		hashed, err := h.Hash([]byte(crypto.DST), msg)
		require.NoError(t, err)

		require.True(t, crypto.VerifyPairing(pk, point, hashed, crypto.Generator(sch.KeyGroup()), sch), sch.String())
	}
}

func TestBLS12381CompatKyber(t *testing.T) {
	suite := test.NewSuite(crypto.Chained)
	priv := suite.G1().Scalar()
	require.NoError(t, priv.UnmarshalBinary(decodeHex(t, "643d6c704505385387a20d98aba19664e3ee81c600d21a0da910cc87f5dc4ab3")))
	pub, err := suite.G1().Point().Mul(priv, nil).MarshalBinary()
	require.NoError(t, err)

	sigExp := decodeHex(t, "9940ca447bab3bab393c3a07866349343630437167eae"+
		"ab063ef1e47acedc51e85c513121cf319a8832c3d136d7f36490fa7241194b403a3bbbba9e7d5"+
		"e73c9a86f67a9585c6fe077cd6576b2f76560efbab3550d9d5124242c728e3a7ef6989")

	pk, err := crypto.DecodePoint(pub, crypto.G1)
	require.NoError(t, err)
	sig, err := crypto.DecodePoint(sigExp, crypto.G2)
	require.NoError(t, err)
	h, err := crypto.NewHashToCurve(crypto.G2)
	require.NoError(t, err)
	hashed, err := h.Hash([]byte(crypto.DST), []byte("pass the signature"))
	require.NoError(t, err)

	require.True(t, crypto.VerifyPairing(pk, sig, hashed, crypto.Generator(crypto.G1), crypto.Chained))
}
