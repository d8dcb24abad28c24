package crypto

import (
	"crypto/sha256"
	"encoding/binary"
)

// RoundToBytes serializes a round number to bytes (8 bytes fixed length big-endian).
func RoundToBytes(r uint64) []byte {
	var buff [8]byte
	binary.BigEndian.PutUint64(buff[:], r)
	return buff[:]
}

// DigestBeacon returns the 32 bytes message signed by the network for a round.
//
//	chained:   H ( prevSig || currRound )
//	unchained: H ( currRound )
//
// prevSig is taken raw, not decoded: the first rounds of a chained network link to a genesis seed that is
// not a point. It is ignored for unchained schemes.
func DigestBeacon(round uint64, prevSig []byte, s Scheme) []byte {
	h := sha256.New()
	if s.IsChained() {
		_, _ = h.Write(prevSig)
	}
	_, _ = h.Write(RoundToBytes(round))
	return h.Sum(nil)
}
