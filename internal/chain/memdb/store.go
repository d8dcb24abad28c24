package memdb

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	json "github.com/nikkolasg/hexjson"

	"github.com/drand/drand-verify/common"
	"github.com/drand/drand-verify/internal/chain/errors"
)

// Store represents access to the in-memory storage of beacons, such as a dump
// of the public endpoints of a node.
type Store struct {
	storeMtx *sync.RWMutex
	store    []*common.Beacon

	requiresPrevious bool
}

// NewStore returns an empty store. With requiresPrevious, Get links each beacon
// to the signature of the round before, like chained databases do.
func NewStore(requiresPrevious bool) *Store {
	return &Store{
		storeMtx:         &sync.RWMutex{},
		requiresPrevious: requiresPrevious,
	}
}

// Load fills a store with a JSON array of beacons as served by the /public
// endpoints of drand nodes.
func Load(ctx context.Context, r io.Reader, requiresPrevious bool) (*Store, error) {
	var raws []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raws); err != nil {
		return nil, fmt.Errorf("reading beacons: %w", err)
	}

	s := NewStore(requiresPrevious)
	for i, raw := range raws {
		b, err := common.ParseBeacon(raw)
		if err != nil {
			return nil, fmt.Errorf("beacon %d: %w", i, err)
		}
		if err := s.Put(ctx, b); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) Len(_ context.Context) (int, error) {
	s.storeMtx.RLock()
	defer s.storeMtx.RUnlock()

	return len(s.store), nil
}

// Put keeps the first beacon stored for a round.
func (s *Store) Put(ctx context.Context, beacon *common.Beacon) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.storeMtx.Lock()
	defer s.storeMtx.Unlock()

	if _, found := s.find(beacon.Round); found {
		return nil
	}

	shouldSort := false
	if len(s.store) > 0 &&
		beacon.Round < s.store[len(s.store)-1].Round {
		shouldSort = true
	}
	s.store = append(s.store, beacon)
	if shouldSort {
		sort.Slice(s.store, func(i, j int) bool {
			return s.store[i].Round < s.store[j].Round
		})
	}

	return nil
}

func (s *Store) Last(ctx context.Context) (*common.Beacon, error) {
	s.storeMtx.RLock()
	defer s.storeMtx.RUnlock()

	if len(s.store) == 0 {
		return nil, errors.ErrNoBeaconStored
	}

	return s.store[len(s.store)-1], nil
}

// Get returns the beacon of the round. For chained stores, the previous
// signature is the one stored for the round before, or the one carried by the
// beacon when that round is not stored.
func (s *Store) Get(ctx context.Context, round uint64) (*common.Beacon, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.storeMtx.RLock()
	defer s.storeMtx.RUnlock()

	idx, found := s.find(round)
	if !found {
		return nil, errors.ErrNoBeaconStored
	}
	stored := s.store[idx]
	if !s.requiresPrevious || round == 0 {
		return stored, nil
	}

	beacon := &common.Beacon{
		Round:       stored.Round,
		Signature:   stored.Signature,
		PreviousSig: stored.PreviousSig,
	}
	if prev, found := s.find(round - 1); found {
		beacon.PreviousSig = s.store[prev].Signature
	}
	if len(beacon.PreviousSig) == 0 {
		return nil, fmt.Errorf("round %d: %w", round, errors.ErrNoPreviousBeacon)
	}
	return beacon, nil
}

// Close is a noop
func (s *Store) Close() error {
	return nil
}

func (s *Store) find(round uint64) (int, bool) {
	idx := sort.Search(len(s.store), func(i int) bool {
		return s.store[i].Round >= round
	})
	return idx, idx < len(s.store) && s.store[idx].Round == round
}
