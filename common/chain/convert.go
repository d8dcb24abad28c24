package chain

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	json "github.com/nikkolasg/hexjson"

	"github.com/drand/drand-verify/common"
)

// infoV1 is the chain info served by the /info endpoint of the drand v1 HTTP API.
type infoV1 struct {
	PublicKey   []byte `json:"public_key"`
	Period      uint32 `json:"period"`
	GenesisTime int64  `json:"genesis_time"`
	Hash        []byte `json:"hash,omitempty"`
	GroupHash   []byte `json:"groupHash"`
	SchemeID    string `json:"schemeID"`
	Metadata    *struct {
		BeaconID string `json:"beaconID"`
	} `json:"metadata,omitempty"`
}

// infoV2 is the chain info served by the /v2 HTTP API.
type infoV2 struct {
	PublicKey   []byte `json:"public_key"`
	ID          string `json:"beacon_id"`
	Period      uint32 `json:"period"`
	Scheme      string `json:"scheme"`
	GenesisTime int64  `json:"genesis_time"`
	GenesisSeed []byte `json:"genesis_seed"`
	ChainHash   []byte `json:"chain_hash,omitempty"`
}

// infoTOML is the chain info as kept in configuration files.
type infoTOML struct {
	PublicKey   string
	ID          string
	Period      string
	Scheme      string
	GenesisTime int64
	GenesisSeed string
}

// UnmarshalJSON accepts both the v1 and the v2 renderings of a chain info.
// When the document advertises its own hash, it must match the content.
func (i *Info) UnmarshalJSON(data []byte) error {
	var both struct {
		infoV2
		Hash      []byte `json:"hash,omitempty"`
		GroupHash []byte `json:"groupHash"`
		SchemeID  string `json:"schemeID"`
		Metadata  *struct {
			BeaconID string `json:"beaconID"`
		} `json:"metadata,omitempty"`
	}
	if err := json.Unmarshal(data, &both); err != nil {
		return fmt.Errorf("not a chain info: %w", err)
	}

	i.PublicKey = both.PublicKey
	i.GenesisTime = both.GenesisTime
	i.Period = time.Duration(both.Period) * time.Second
	i.Scheme = both.Scheme
	i.GenesisSeed = both.GenesisSeed
	i.ID = both.ID
	advertised := both.ChainHash

	// support old field names
	if i.Scheme == "" {
		i.Scheme = both.SchemeID
	}
	if len(i.GenesisSeed) == 0 {
		i.GenesisSeed = both.GroupHash
	}
	if i.ID == "" && both.Metadata != nil {
		i.ID = both.Metadata.BeaconID
	}
	if len(advertised) == 0 {
		advertised = both.Hash
	}

	if err := i.validate(); err != nil {
		return err
	}
	if len(advertised) > 0 {
		return i.VerifyHash(advertised)
	}
	return nil
}

// MarshalJSON renders the info the way the v2 API does.
func (i *Info) MarshalJSON() ([]byte, error) {
	return json.Marshal(&infoV2{
		PublicKey:   i.PublicKey,
		ID:          i.ID,
		Period:      uint32(i.Period.Seconds()),
		Scheme:      i.Scheme,
		GenesisTime: i.GenesisTime,
		GenesisSeed: i.GenesisSeed,
		ChainHash:   i.Hash(),
	})
}

// InfoFromJSON returns a Info from JSON description in the given reader
func InfoFromJSON(buff io.Reader) (*Info, error) {
	info := new(Info)
	if err := json.NewDecoder(buff).Decode(info); err != nil {
		return nil, fmt.Errorf("reading chain info: %w", err)
	}
	return info, nil
}

// ToJSON provides a json serialization of an info packet
func (i *Info) ToJSON(w io.Writer) error {
	buff, err := i.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(buff)
	return err
}

// ToV1JSON renders the info the way the v1 /info endpoint does.
func (i *Info) ToV1JSON(w io.Writer) error {
	v1 := &infoV1{
		PublicKey:   i.PublicKey,
		Period:      uint32(i.Period.Seconds()),
		GenesisTime: i.GenesisTime,
		Hash:        i.Hash(),
		GroupHash:   i.GenesisSeed,
		SchemeID:    i.Scheme,
	}
	v1.Metadata = &struct {
		BeaconID string `json:"beaconID"`
	}{BeaconID: i.ID}
	if v1.Metadata.BeaconID == "" {
		v1.Metadata.BeaconID = common.DefaultBeaconID
	}
	return json.NewEncoder(w).Encode(v1)
}

// InfoFromTOML reads a chain info from a TOML document such as:
//
//	PublicKey = "868f005eb8e6e4ca0a47c8a77ceaa5309a47978a7c71bc5cce96366b5d7a569937c529eeda66c7293784a9402801af31"
//	Period = "30s"
//	Scheme = "pedersen-bls-chained"
//	GenesisTime = 1595431050
//	GenesisSeed = "176f93498eac9ca337150b46d21dd58673ea4e3581185f869672e59fa4cb390a"
func InfoFromTOML(r io.Reader) (*Info, error) {
	var t infoTOML
	if _, err := toml.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("reading chain info: %w", err)
	}
	info := &Info{
		ID:          t.ID,
		Scheme:      t.Scheme,
		GenesisTime: t.GenesisTime,
	}

	var err error
	if info.PublicKey, err = decodeHex(t.PublicKey); err != nil {
		return nil, fmt.Errorf("public key: %w", err)
	}
	if info.GenesisSeed, err = decodeHex(t.GenesisSeed); err != nil {
		return nil, fmt.Errorf("genesis seed: %w", err)
	}
	if info.Period, err = time.ParseDuration(t.Period); err != nil {
		return nil, fmt.Errorf("period: %w", err)
	}
	if err := info.validate(); err != nil {
		return nil, err
	}
	return info, nil
}

// ToTOML writes the info in the format read by InfoFromTOML.
func (i *Info) ToTOML(w io.Writer) error {
	var buff bytes.Buffer
	err := toml.NewEncoder(&buff).Encode(&infoTOML{
		PublicKey:   fmt.Sprintf("%x", i.PublicKey),
		ID:          i.ID,
		Period:      i.Period.String(),
		Scheme:      i.Scheme,
		GenesisTime: i.GenesisTime,
		GenesisSeed: fmt.Sprintf("%x", i.GenesisSeed),
	})
	if err != nil {
		return err
	}
	_, err = w.Write(buff.Bytes())
	return err
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"))
}
