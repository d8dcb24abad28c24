package test

import (
	"crypto/sha256"
	"fmt"
	"testing"
	"time"

	"github.com/drand/kyber"
	bls "github.com/drand/kyber-bls12381"
	"github.com/drand/kyber/pairing"
	"github.com/drand/kyber/sign"
	// The package github.com/drand/kyber/sign/bls is deprecated because it is vulnerable to
	// rogue public-key attack against BLS aggregated signature. Test chains only sign single messages.
	//nolint:staticcheck
	signBls "github.com/drand/kyber/sign/bls"
	"github.com/drand/kyber/util/random"
	"github.com/stretchr/testify/require"

	"github.com/drand/drand-verify/common"
	"github.com/drand/drand-verify/common/chain"
	"github.com/drand/drand-verify/crypto"
)

const (
	// GenesisTime is the genesis time of the generated chains.
	GenesisTime int64 = 1700000000
	// Period is the period of the generated chains.
	Period = 3 * time.Second
	// BeaconID is the beacon id of the generated chains.
	BeaconID = "test_beacon"
)

// Chain is a randomness chain signed locally with a single fresh key, the way a drand network would sign it
// with its threshold key.
type Chain struct {
	Info    *chain.Info
	Scheme  crypto.Scheme
	Beacons []*common.Beacon

	signer sign.Scheme
	secret kyber.Scalar
}

// NewSuite returns the kyber pairing suite drand nodes use for the given scheme.
func NewSuite(sch crypto.Scheme) pairing.Suite {
	switch sch {
	case crypto.Chained:
		return bls.NewBLS12381SuiteWithDST(
			[]byte("BLS_SIG_BLS12381G1_XMD:SHA-256_SSWU_RO_NUL_"),
			[]byte(crypto.DST),
		)
	case crypto.Unchained:
		// the G2 tag is used on G1 as well
		return bls.NewBLS12381SuiteWithDST([]byte(crypto.DST), []byte(crypto.DST))
	default:
		panic(fmt.Sprintf("no suite for scheme %s", sch))
	}
}

// NewSigner returns the kyber BLS scheme signing for the given drand scheme.
func NewSigner(sch crypto.Scheme) sign.Scheme {
	if sch.IsChained() {
		return signBls.NewSchemeOnG2(NewSuite(sch))
	}
	return signBls.NewSchemeOnG1(NewSuite(sch))
}

// GenesisSeed is the seed of the generated chains, the "previous signature" of round 1 in chained mode.
func GenesisSeed() []byte {
	h := sha256.Sum256([]byte("drand-verify test chain"))
	return h[:]
}

// NewChain generates rounds 1 to `rounds` of a chain of the given scheme.
func NewChain(t testing.TB, sch crypto.Scheme, rounds int) *Chain {
	t.Helper()

	signer := NewSigner(sch)
	secret, public := signer.NewKeyPair(random.New())
	pub, err := public.MarshalBinary()
	require.NoError(t, err)

	c := &Chain{
		Info: &chain.Info{
			PublicKey:   pub,
			ID:          BeaconID,
			Period:      Period,
			Scheme:      sch.ID(),
			GenesisTime: GenesisTime,
			GenesisSeed: GenesisSeed(),
		},
		Scheme: sch,
		signer: signer,
		secret: secret,
	}

	prev := GenesisSeed()
	for round := uint64(1); round <= uint64(rounds); round++ {
		b := c.SignRound(t, round, prev)
		c.Beacons = append(c.Beacons, b)
		prev = b.Signature
	}
	return c
}

// SignRound signs a round on top of prev, which is ignored for unchained schemes.
func (c *Chain) SignRound(t testing.TB, round uint64, prev []byte) *common.Beacon {
	t.Helper()

	b := &common.Beacon{Round: round}
	if c.Scheme.IsChained() {
		b.PreviousSig = prev
	}
	sig, err := c.signer.Sign(c.secret, crypto.DigestBeacon(round, b.PreviousSig, c.Scheme))
	require.NoError(t, err)
	b.Signature = sig
	return b
}

// Sign signs an arbitrary message with the chain key.
func (c *Chain) Sign(t testing.TB, msg []byte) []byte {
	t.Helper()
	sig, err := c.signer.Sign(c.secret, msg)
	require.NoError(t, err)
	return sig
}

// Beacon returns the generated beacon of a round.
func (c *Chain) Beacon(round uint64) *common.Beacon {
	return c.Beacons[round-1]
}
