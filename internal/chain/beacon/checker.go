package beacon

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"

	"github.com/hashicorp/go-multierror"
	clock "github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/drand/drand-verify/common"
	chain2 "github.com/drand/drand-verify/common/chain"
	"github.com/drand/drand-verify/common/log"
	"github.com/drand/drand-verify/crypto"
	"github.com/drand/drand-verify/internal/chain"
	chainerrors "github.com/drand/drand-verify/internal/chain/errors"
	"github.com/drand/drand-verify/internal/metrics"
)

// Checker verifies the beacons stored in a database against the public key of
// their chain.
type Checker struct {
	log      log.Logger
	store    chain.Store
	verifier *crypto.Verifier

	workers int
	clock   clock.Clock
	info    *chain2.Info
	metrics *metrics.Verification
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithWorkers sets how many rounds are verified concurrently. It defaults to
// the number of CPUs.
func WithWorkers(n int) CheckerOption {
	return func(c *Checker) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithClock sets the clock used to compute the current round of the chain.
func WithClock(clk clock.Clock) CheckerOption {
	return func(c *Checker) {
		c.clock = clk
	}
}

// WithInfo caps the checked rounds at the current round of the chain, so that
// a database holding rounds from the future is reported.
func WithInfo(info *chain2.Info) CheckerOption {
	return func(c *Checker) {
		c.info = info
	}
}

// WithMetrics records every verification.
func WithMetrics(m *metrics.Verification) CheckerOption {
	return func(c *Checker) {
		c.metrics = m
	}
}

// NewChecker returns a checker of the beacons in store.
func NewChecker(l log.Logger, store chain.Store, verifier *crypto.Verifier, opts ...CheckerOption) *Checker {
	c := &Checker{
		log:      l,
		store:    store,
		verifier: verifier,
		workers:  runtime.NumCPU(),
		clock:    clock.NewRealClock(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Report is the outcome of a check of stored beacons.
type Report struct {
	// From and UpTo are the bounds of the checked rounds, inclusive
	From, UpTo uint64
	// Checked is the number of rounds looked at
	Checked int
	// Valid is the number of rounds with a valid signature
	Valid int
	// Faulty lists in increasing order the rounds that are missing or invalid
	Faulty []uint64
	// Errors holds the reason of each faulty round
	Errors *multierror.Error
}

// Err returns the errors of the faulty rounds, or nil when all rounds are valid.
func (r *Report) Err() error {
	return r.Errors.ErrorOrNil()
}

// CheckPastBeacons verifies every round of [from, upTo] present in the store,
// the round 0 being the genesis seed, not a signature. upTo is capped at the
// last stored round, and at the current round of the chain when it is known;
// an upTo of 0 means the last stored round. cb is called with each round once
// checked, and the last round of the range; calls are serialized.
func (c *Checker) CheckPastBeacons(ctx context.Context, from, upTo uint64, cb func(r, u uint64)) (*Report, error) {
	logger := c.log.Named("pastBeaconCheck")

	last, err := c.store.Last(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch and check last beacon in store: %w", err)
	}

	if upTo == 0 || last.Round < upTo {
		if upTo != 0 {
			logger.Warnw("No beacon stored above", "last round", last.Round, "requested round", upTo)
		}
		upTo = last.Round
	}
	if c.info != nil {
		if current := c.info.CurrentRound(c.clock.Now().Unix()); current < upTo {
			logger.Warnw("Beacons stored beyond the current round", "current round", current, "last round", last.Round)
			upTo = current
		}
	}
	if from == 0 {
		from = 1
	}

	report := &Report{From: from, UpTo: upTo}
	if from > upTo {
		logger.Infow("Nothing to check", "from", from, "upTo", upTo)
		return report, nil
	}

	logger.Infow("Starting to check past beacons", "from", from, "upTo", upTo, "workers", c.workers)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i := from; i <= upTo; i++ {
		if gctx.Err() != nil {
			break
		}

		round := i
		g.Go(func() error {
			res, err := c.checkRound(gctx, round)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			report.Checked++
			if res == nil {
				report.Valid++
				if round%common.LogsToSkip == 0 { // we do some rate limiting on the logging
					logger.Debugw("valid_beacon", "round", round)
				}
			} else {
				// this is not to be logged as an error since the goal here is to detect invalid beacons.
				logger.Infow("invalid_beacon", "round", round, "err", res)
				report.Faulty = append(report.Faulty, round)
				report.Errors = multierror.Append(report.Errors, res)
			}
			if cb != nil {
				cb(round, upTo)
			}
			return nil
		})

		// the upper bound can be the last uint64
		if i == upTo {
			break
		}
	}

	if err := g.Wait(); err != nil {
		logger.Debugw("Context done, returning", "err", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slices.Sort(report.Faulty)
	sortErrors(report)

	logger.Infow("Finished checking past beacons", "checked", report.Checked, "faulty_beacons", len(report.Faulty))
	if len(report.Faulty) > 0 {
		logger.Warnw("Found invalid beacons in store", "amount", len(report.Faulty))
	}

	return report, nil
}

// checkRound returns the reason why the round is faulty, or nil. The error is
// only set when the check itself could not run.
func (c *Checker) checkRound(ctx context.Context, round uint64) (faulty, err error) {
	start := c.clock.Now()

	b, err := c.store.Get(ctx, round)
	switch {
	case errors.Is(err, chainerrors.ErrNoBeaconStored), errors.Is(err, chainerrors.ErrNoPreviousBeacon):
		c.metrics.Observe(round, metrics.ResultMissing, 0)
		return &roundError{round: round, err: fmt.Errorf("fetching round %d: %w", round, err)}, nil
	case err != nil:
		return nil, err
	}

	err = c.verifier.VerifyBeacon(b)
	took := c.clock.Since(start)
	switch {
	case err == nil:
		c.metrics.Observe(round, metrics.ResultValid, took)
		return nil, nil
	case errors.Is(err, crypto.ErrMalformedEncoding), errors.Is(err, crypto.ErrInvalidPoint):
		c.metrics.Observe(round, metrics.ResultMalformed, took)
	default:
		c.metrics.Observe(round, metrics.ResultInvalid, took)
	}
	return &roundError{round: round, err: err}, nil
}

// roundError is the reason a round is faulty. The wrapped error already names the round.
type roundError struct {
	round uint64
	err   error
}

func (e *roundError) Error() string {
	return e.err.Error()
}

func (e *roundError) Unwrap() error {
	return e.err
}

// sortErrors orders the errors of the report like its faulty rounds.
func sortErrors(r *Report) {
	if r.Errors == nil {
		return
	}
	slices.SortFunc(r.Errors.Errors, func(a, b error) int {
		var ra, rb *roundError
		if !errors.As(a, &ra) || !errors.As(b, &rb) {
			return 0
		}
		switch {
		case ra.round < rb.round:
			return -1
		case ra.round > rb.round:
			return 1
		default:
			return 0
		}
	})
}
