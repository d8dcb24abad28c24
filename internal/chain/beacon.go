package chain

import (
	"context"
	"encoding/binary"

	"github.com/drand/drand-verify/common"
	"github.com/drand/drand-verify/crypto"
)

// Store is a read-mostly view over a database of beacons of a single chain.
type Store interface {
	Len(ctx context.Context) (int, error)
	Put(ctx context.Context, b *common.Beacon) error
	Last(ctx context.Context) (*common.Beacon, error)
	Get(ctx context.Context, round uint64) (*common.Beacon, error)
	Close() error
}

// RoundToBytes serializes a round number to bytes (8 bytes fixed length big-endian).
func RoundToBytes(r uint64) []byte {
	return crypto.RoundToBytes(r)
}

// BytesToRound unserializes a round number from bytes (8 bytes fixed length big-endian) to uint64.
func BytesToRound(r []byte) uint64 {
	return binary.BigEndian.Uint64(r)
}
