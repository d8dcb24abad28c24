package common

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"

	json "github.com/nikkolasg/hexjson"

	"github.com/drand/drand-verify/crypto"
)

// DefaultBeaconID is the value used when beacon id has an empty value. This
// value should not be changed for backward-compatibility reasons
const DefaultBeaconID = "default"

// LogsToSkip is used to reduce log verbosity when doing bulk processes, issuing logs only every LogsToSkip steps
const LogsToSkip = 300

// ErrRandomnessMismatch is returned when a beacon document advertises a randomness that is not the hash of
// its signature.
var ErrRandomnessMismatch = errors.New("randomness does not match signature")

// IsDefaultBeaconID indicates if the beacon id received is the default one or not.
// There is a direct relationship between an empty string and the reserved id "default".
func IsDefaultBeaconID(beaconID string) bool {
	return beaconID == DefaultBeaconID || beaconID == ""
}

// CompareBeaconIDs indicates if two different beacon ids are equivalent or not.
// It handles default values too.
func CompareBeaconIDs(id1, id2 string) bool {
	if IsDefaultBeaconID(id1) && IsDefaultBeaconID(id2) {
		return true
	}
	return id1 == id2
}

// Beacon holds the randomness as well as the info to verify it.
type Beacon struct {
	// PreviousSig is the previous signature generated, only set for chained schemes
	PreviousSig []byte `json:"previous_signature,omitempty"`
	// Round is the round number this beacon is tied to
	Round uint64 `json:"round,omitempty"`
	// Signature is the BLS deterministic signature as per the crypto.Scheme used
	Signature []byte `json:"signature,omitempty"`
}

// publicBeacon is a beacon as rendered by the public endpoints of drand, with its randomness.
type publicBeacon struct {
	Round       uint64 `json:"round"`
	Randomness  []byte `json:"randomness,omitempty"`
	Signature   []byte `json:"signature"`
	PreviousSig []byte `json:"previous_signature,omitempty"`
}

// Equal indicates if two beacons are equal
func (b *Beacon) Equal(b2 *Beacon) bool {
	return bytes.Equal(b.PreviousSig, b2.PreviousSig) &&
		b.Round == b2.Round &&
		bytes.Equal(b.Signature, b2.Signature)
}

// Marshal provides the JSON encoding of a beacon, with hex encoded byte fields.
func (b *Beacon) Marshal() ([]byte, error) {
	return json.Marshal(b)
}

// Unmarshal decodes a beacon from JSON
func (b *Beacon) Unmarshal(buff []byte) error {
	return json.Unmarshal(buff, b)
}

// MarshalPublic renders the beacon the way the drand public endpoints do, randomness included.
func (b *Beacon) MarshalPublic() ([]byte, error) {
	return json.Marshal(&publicBeacon{
		Round:       b.Round,
		Randomness:  b.Randomness(),
		Signature:   b.Signature,
		PreviousSig: b.PreviousSig,
	})
}

// ParseBeacon decodes a beacon rendered by the drand public endpoints. When the document carries a
// randomness, it must be the hash of the signature.
func ParseBeacon(buff []byte) (*Beacon, error) {
	var p publicBeacon
	if err := json.Unmarshal(buff, &p); err != nil {
		return nil, fmt.Errorf("invalid beacon: %w", err)
	}
	b := &Beacon{
		PreviousSig: p.PreviousSig,
		Round:       p.Round,
		Signature:   p.Signature,
	}
	if len(p.Randomness) > 0 && !bytes.Equal(p.Randomness, b.Randomness()) {
		return nil, fmt.Errorf("round %d: %w", b.Round, ErrRandomnessMismatch)
	}
	return b, nil
}

// Randomness returns the hashed signature. The choice of the hash determines the size of the output.
func (b *Beacon) Randomness() []byte {
	return crypto.RandomnessFromSignature(b.Signature)
}

// GetPreviousSignature returns the previous signature if it's non-nil or nil otherwise
func (b *Beacon) GetPreviousSignature() []byte {
	return b.PreviousSig
}

// GetSignature returns the signature if it's non-nil or nil otherwise
func (b *Beacon) GetSignature() []byte {
	return b.Signature
}

// GetRound provides the round of the beacon
func (b *Beacon) GetRound() uint64 {
	return b.Round
}

func (b *Beacon) String() string {
	return fmt.Sprintf("{ round: %d, sig: %s, prevSig: %s }", b.Round, shortSigStr(b.Signature), shortSigStr(b.PreviousSig))
}

func shortSigStr(sig []byte) string {
	if sig == nil {
		return "nil"
	}
	if len(sig) == 0 {
		return ""
	}

	max := 3
	if len(sig) < max {
		max = len(sig)
	}
	return hex.EncodeToString(sig[0:max])
}
