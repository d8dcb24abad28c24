package chain

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/drand/drand-verify/common"
	"github.com/drand/drand-verify/crypto"
)

// Info represents the public information that is necessary for a client to
// verify any beacon present in a randomness chain.
type Info struct {
	PublicKey   []byte
	ID          string
	Period      time.Duration
	Scheme      string
	GenesisTime int64
	GenesisSeed []byte
}

// Hash returns the canonical hash representing the chain information. A hash is
// consistent throughout the entirety of a chain, regardless of the network
// composition, the actual nodes, generating the randomness.
func (i *Info) Hash() []byte {
	h := sha256.New()
	_ = binary.Write(h, binary.BigEndian, uint32(i.Period.Seconds()))
	_ = binary.Write(h, binary.BigEndian, i.GenesisTime)

	_, _ = h.Write(i.PublicKey)
	_, _ = h.Write(i.GenesisSeed)

	// To keep backward compatibility
	if !common.IsDefaultBeaconID(i.ID) {
		_, _ = h.Write([]byte(i.ID))
	}

	return h.Sum(nil)
}

// HashString returns the value of Hash in string format
func (i *Info) HashString() string {
	return hex.EncodeToString(i.Hash())
}

// VerifyHash checks the info against the chain hash a client pinned.
func (i *Info) VerifyHash(expected []byte) error {
	if got := i.Hash(); !bytes.Equal(got, expected) {
		return fmt.Errorf("%w: expected %x, got %x", ErrChainHashMismatch, expected, got)
	}
	return nil
}

// Equal indicates if two Chain Info objects are equivalent
func (i *Info) Equal(c2 *Info) bool {
	return i.GenesisTime == c2.GenesisTime &&
		i.Period == c2.Period &&
		bytes.Equal(i.PublicKey, c2.PublicKey) &&
		bytes.Equal(i.GenesisSeed, c2.GenesisSeed) &&
		common.CompareBeaconIDs(i.ID, c2.ID) &&
		i.Scheme == c2.Scheme
}

// GetSchemeName returns the scheme name used
func (i *Info) GetSchemeName() string {
	return i.Scheme
}

// GetScheme resolves the advertised scheme id.
func (i *Info) GetScheme() (crypto.Scheme, error) {
	return crypto.SchemeFromName(i.Scheme)
}

// Verifier returns a verifier bound to the scheme and the public key of the chain.
func (i *Info) Verifier() (*crypto.Verifier, error) {
	sch, err := i.GetScheme()
	if err != nil {
		return nil, err
	}
	return crypto.NewVerifier(sch, i.PublicKey)
}

// TimeOfRound returns the UNIX time at which the given round of this chain is emitted.
func (i *Info) TimeOfRound(round uint64) int64 {
	return TimeOfRound(i.Period, i.GenesisTime, round)
}

// CurrentRound returns the latest round emitted at `now`.
func (i *Info) CurrentRound(now int64) uint64 {
	return CurrentRound(now, i.Period, i.GenesisTime)
}

// validate checks the public key is a valid point of the key group of the scheme.
func (i *Info) validate() error {
	sch, err := i.GetScheme()
	if err != nil {
		return fmt.Errorf("invalid scheme advertised: %w", err)
	}
	if i.Scheme == "" {
		i.Scheme = sch.ID()
	}
	if _, err := crypto.DecodePoint(i.PublicKey, sch.KeyGroup()); err != nil {
		return fmt.Errorf("invalid public key %q: %w", sch, err)
	}
	if i.Period <= 0 {
		return fmt.Errorf("invalid period %s", i.Period)
	}
	return nil
}
