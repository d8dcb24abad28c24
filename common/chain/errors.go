package chain

import "errors"

// ErrChainHashMismatch is returned when a chain info does not hash to the expected chain hash.
var ErrChainHashMismatch = errors.New("chain hash mismatch")
