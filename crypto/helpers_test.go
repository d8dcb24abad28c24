package crypto_test

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	json "github.com/nikkolasg/hexjson"
	"github.com/stretchr/testify/require"

	"github.com/drand/drand-verify/crypto"
)

// vector is a beacon published by a drand network.
type vector struct {
	Name      string `json:"name"`
	SchemeID  string `json:"scheme"`
	Round     uint64 `json:"round"`
	PublicKey []byte `json:"public_key"`
	PrevSig   []byte `json:"previous_signature,omitempty"`
	Signature []byte `json:"signature"`
	Message   []byte `json:"message,omitempty"`
}

func (v vector) scheme(t testing.TB) crypto.Scheme {
	t.Helper()
	s, err := crypto.SchemeFromName(v.SchemeID)
	require.NoError(t, err)
	return s
}

func loadVectors(t testing.TB) []vector {
	t.Helper()
	buff, err := os.ReadFile(filepath.Join("testdata", "vectors.json"))
	require.NoError(t, err)

	var vectors []vector
	require.NoError(t, json.Unmarshal(buff, &vectors))
	require.NotEmpty(t, vectors)
	return vectors
}

func vectorByName(t testing.TB, name string) vector {
	t.Helper()
	for _, v := range loadVectors(t) {
		if v.Name == name {
			return v
		}
	}
	t.Fatalf("no vector named %q", name)
	return vector{}
}

func decodeHex(t testing.TB, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
