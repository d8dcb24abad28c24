package errors

import "errors"

// ErrNoBeaconStored is the error we get when a round is requested that is not
// in the database
var ErrNoBeaconStored = errors.New("no beacon stored for requested round")

// ErrNoPreviousBeacon is returned by chained stores when the beacon of a round
// is stored but not the one of the round before
var ErrNoPreviousBeacon = errors.New("previous beacon not found in database")
