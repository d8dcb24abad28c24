package common

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

// fastnetBeacon is round 614294 as served by https://api3.drand.sh/dbd506d6ef76e5f386f41c651dcb808c5bcbd75471cc4eafa3f4df7ad4e4c493/public/614294
const fastnetBeacon = `{"round":614294,"randomness":"b1c2d777e51e53e6817e4ee6e8ab79b2fa8d75ae8c63866ee84303239b25d54e","signature":"b1e0bb6804f576b77d562169a5fab44116711e89a4a8ccbf0c237ef20841880b472ef28ad57fb9da6a507411d5c8a9bf"}`

func TestCompareBeaconIDs(t *testing.T) {
	require.True(t, CompareBeaconIDs("", ""))
	require.True(t, CompareBeaconIDs("", DefaultBeaconID))
	require.True(t, CompareBeaconIDs(DefaultBeaconID, ""))
	require.True(t, CompareBeaconIDs(DefaultBeaconID, DefaultBeaconID))
	require.True(t, CompareBeaconIDs("fastnet", "fastnet"))
	require.False(t, CompareBeaconIDs("fastnet", DefaultBeaconID))
	require.False(t, CompareBeaconIDs("fastnet", ""))
	require.False(t, CompareBeaconIDs(DefaultBeaconID, "fastnet"))
}

func Test_shortSigStr(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		sig  []byte
		want string
	}{
		"test with valid data":       {sig: []byte("some valid sig here"), want: "736f6d"},
		"test with short valid data": {sig: []byte("a"), want: "61"},
		"nil sig":                    {sig: nil, want: "nil"},
		"zero length sig":            {sig: []byte{}, want: ""},
	}
	for name, tt := range tests {
		name := name
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := shortSigStr(tt.sig)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseBeacon(t *testing.T) {
	b, err := ParseBeacon([]byte(fastnetBeacon))
	require.NoError(t, err)
	require.Equal(t, uint64(614294), b.Round)
	require.Empty(t, b.PreviousSig)
	require.Equal(t, "b1e0bb6804f576b77d562169a5fab44116711e89a4a8ccbf0c237ef20841880b472ef28ad57fb9da6a507411d5c8a9bf",
		hex.EncodeToString(b.Signature))
	require.Equal(t, "b1c2d777e51e53e6817e4ee6e8ab79b2fa8d75ae8c63866ee84303239b25d54e",
		hex.EncodeToString(b.Randomness()))
	require.Equal(t, "{ round: 614294, sig: b1e0bb, prevSig: nil }", b.String())
}

func TestParseBeaconRandomnessMismatch(t *testing.T) {
	doc := `{"round":614294,"randomness":"00c2d777e51e53e6817e4ee6e8ab79b2fa8d75ae8c63866ee84303239b25d54e","signature":"b1e0bb6804f576b77d562169a5fab44116711e89a4a8ccbf0c237ef20841880b472ef28ad57fb9da6a507411d5c8a9bf"}`
	_, err := ParseBeacon([]byte(doc))
	require.ErrorIs(t, err, ErrRandomnessMismatch)

	_, err = ParseBeacon([]byte(`{"round":"twelve"}`))
	require.Error(t, err)
}

func TestBeaconJSON(t *testing.T) {
	b := &Beacon{
		PreviousSig: []byte("a magnificent signature"),
		Round:       145,
		Signature:   []byte("one signature to"),
	}

	buff, err := b.Marshal()
	require.NoError(t, err)
	require.Contains(t, string(buff), hex.EncodeToString(b.Signature))

	b2 := new(Beacon)
	require.NoError(t, b2.Unmarshal(buff))
	require.True(t, b.Equal(b2))

	public, err := b.MarshalPublic()
	require.NoError(t, err)
	b3, err := ParseBeacon(public)
	require.NoError(t, err)
	require.True(t, b.Equal(b3))

	b3.Round++
	require.False(t, b.Equal(b3))
}
