package boltdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/drand/drand-verify/common"
	"github.com/drand/drand-verify/common/log"
	"github.com/drand/drand-verify/internal/chain"
	chainerrors "github.com/drand/drand-verify/internal/chain/errors"
)

// BoltFileName is the name of the file drand nodes write their beacons to
const BoltFileName = "drand.db"

// BoltStoreOpenPerm is the permission we will use to read bolt store file from disk
const BoltStoreOpenPerm = 0660

var beaconBucket = []byte("beacons")

// errNoBucket is returned by read-only stores opened on a database drand never wrote to.
var errNoBucket = errors.New("no beacon bucket in database")

// BoltStore reads and writes beacons in the database format of drand nodes: one
// bucket, keyed by the big-endian round, holding only the signature. Previous
// signatures of chained beacons are read from the round before.
type BoltStore struct {
	db *bolt.DB

	log log.Logger

	requiresPrevious bool
}

// NewBoltStore opens the database at path. Opening it with opts.ReadOnly set
// leaves the file untouched, which is how drand node databases should be opened.
func NewBoltStore(ctx context.Context, l log.Logger, path string, opts *bolt.Options, requiresPrevious bool) (*BoltStore, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	db, err := bolt.Open(path, BoltStoreOpenPerm, opts)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	if opts == nil || !opts.ReadOnly {
		// create the bucket already
		err = db.Update(func(tx *bolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists(beaconBucket)
			return err
		})
		if err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return &BoltStore{
		log: l.Named("boltStore"),
		db:  db,

		requiresPrevious: requiresPrevious,
	}, nil
}

// Len performs a big scan over the bucket and is _very_ slow - use sparingly!
func (b *BoltStore) Len(ctx context.Context) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	var length = 0
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(beaconBucket)
		if bucket == nil {
			return nil
		}
		// this `.Stats()` call is the particularly expensive one!
		length = bucket.Stats().KeyN
		return nil
	})
	if err != nil {
		b.log.Warnw("error getting length", "err", err)
	}
	return length, err
}

// Close closes the underlying database.
func (b *BoltStore) Close() error {
	err := b.db.Close()
	if err != nil {
		b.log.Errorw("closing database", "err", err)
	}
	return err
}

// Put stores the signature of the beacon. WARNING: It does NOT verify that this
// beacon is not already saved in the database or not and will overwrite it.
func (b *BoltStore) Put(ctx context.Context, beacon *common.Beacon) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(beaconBucket)

		// We know this will be an append-only workload, so let's use a compact db.
		bucket.FillPercent = 1.0

		err := bucket.Put(chain.RoundToBytes(beacon.Round), beacon.Signature)
		if err != nil {
			b.log.Errorw("storing beacon", "round", beacon.Round, "err", err)
		}
		return err
	})
}

// Last returns the last beacon saved into the db. Its PreviousSig is left empty
// when the round before it is missing.
func (b *BoltStore) Last(ctx context.Context) (*common.Beacon, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var beacon *common.Beacon
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(beaconBucket)
		if bucket == nil {
			return chainerrors.ErrNoBeaconStored
		}

		key, _ := bucket.Cursor().Last()
		if key == nil {
			return chainerrors.ErrNoBeaconStored
		}

		var err error
		beacon, err = b.getBeacon(ctx, bucket, chain.BytesToRound(key))
		if errors.Is(err, chainerrors.ErrNoPreviousBeacon) {
			// the last round is known even when its chain is broken
			beacon = &common.Beacon{Round: chain.BytesToRound(key), Signature: bytes.Clone(bucket.Get(key))}
			return nil
		}
		return err
	})
	return beacon, err
}

// Get returns the beacon saved at this round
func (b *BoltStore) Get(ctx context.Context, round uint64) (*common.Beacon, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var beacon *common.Beacon
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(beaconBucket)
		if bucket == nil {
			return fmt.Errorf("%w: %w", chainerrors.ErrNoBeaconStored, errNoBucket)
		}

		var err error
		beacon, err = b.getBeacon(ctx, bucket, round)
		return err
	})
	return beacon, err
}

func (b *BoltStore) getBeacon(ctx context.Context, bucket *bolt.Bucket, round uint64) (*common.Beacon, error) {
	sig := bucket.Get(chain.RoundToBytes(round))
	if sig == nil {
		return nil, chainerrors.ErrNoBeaconStored
	}

	beacon := common.Beacon{
		Round:     round,
		Signature: make([]byte, len(sig)),
	}
	copy(beacon.Signature, sig)

	if b.requiresPrevious && beacon.Round > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		prevSig := bucket.Get(chain.RoundToBytes(round - 1))
		if prevSig == nil {
			b.log.Debugw("missing previous beacon from database", "round", beacon.Round-1)
			return nil, fmt.Errorf("round %d: %w", round, chainerrors.ErrNoPreviousBeacon)
		}
		beacon.PreviousSig = make([]byte, len(prevSig))
		copy(beacon.PreviousSig, prevSig)
	}

	return &beacon, nil
}
