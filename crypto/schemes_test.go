package crypto_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/drand/drand-verify/crypto"
)

func TestNamesInList(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"", false},
		{crypto.DefaultSchemeID, true},
		{crypto.ChainedSchemeID, true},
		{crypto.ShortSigSchemeID, true},
		{"nonexistentschemename", false},
	}

	for _, tt := range tests {
		t.Run(tt.name+"IsInList", func(t *testing.T) {
			require.Equal(t, tt.expected, contains(crypto.ListSchemes(), tt.name))
		})
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestSchemeFromName(t *testing.T) {
	tests := []struct {
		name string
		want crypto.Scheme
		ok   bool
	}{
		{"", crypto.Chained, true},
		{crypto.DefaultSchemeID, crypto.Chained, true},
		{crypto.ChainedSchemeID, crypto.Chained, true},
		{crypto.ShortSigSchemeID, crypto.Unchained, true},
		// not verifiable with this package
		{"pedersen-bls-unchained", 0, false},
		{"bls-unchained-g1-rfc9380", 0, false},
		{"bls-bn254-unchained-on-g1", 0, false},
		{crypto.DefaultSchemeID + "wrong", 0, false},
		{"wrong" + crypto.ShortSigSchemeID, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name+"byID", func(t *testing.T) {
			got, err := crypto.SchemeFromName(tt.name)
			if !tt.ok {
				require.ErrorIs(t, err, crypto.ErrUnsupportedScheme)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSchemeGroups(t *testing.T) {
	require.Equal(t, crypto.G1, crypto.Chained.KeyGroup())
	require.Equal(t, crypto.G2, crypto.Chained.SigGroup())
	require.True(t, crypto.Chained.IsChained())
	require.Equal(t, crypto.DefaultSchemeID, crypto.Chained.String())

	require.Equal(t, crypto.G2, crypto.Unchained.KeyGroup())
	require.Equal(t, crypto.G1, crypto.Unchained.SigGroup())
	require.False(t, crypto.Unchained.IsChained())
	require.Equal(t, crypto.ShortSigSchemeID, crypto.Unchained.String())

	require.Equal(t, 48, crypto.G1.PointLen())
	require.Equal(t, 96, crypto.G2.PointLen())
	require.Equal(t, "Scheme(7)", crypto.Scheme(7).String())
}

func TestRandomnessFromSignature(t *testing.T) {
	sig := decodeHex(t, "b1e0bb6804f576b77d562169a5fab44116711e89a4a8ccbf0c237ef20841880b472ef28ad57fb9da6a507411d5c8a9bf")
	require.Equal(t, "b1c2d777e51e53e6817e4ee6e8ab79b2fa8d75ae8c63866ee84303239b25d54e",
		hex.EncodeToString(crypto.RandomnessFromSignature(sig)))
}
