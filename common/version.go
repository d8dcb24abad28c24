package common

import (
	"fmt"
)

// Must be manually updated!
// Before releasing: Verify the version number and set Prerelease to ""
// After releasing: Increase the Patch number and set Prerelease to "pre"
var version = Version{
	Major:      0,
	Minor:      2,
	Patch:      0,
	Prerelease: "pre",
}

// Set via -ldflags. Example:
//
//	go install -ldflags "-X github.com/drand/drand-verify/common.COMMIT=`git rev-parse HEAD` -X github.com/drand/drand-verify/common.BUILDDATE=`date -u +%d/%m/%Y@%H:%M:%S`"
var (
	COMMIT    = ""
	BUILDDATE = ""
)

// GetAppVersion returns the version of drand-verify.
func GetAppVersion() Version {
	return version
}

// Version is a semantic version, with an optional pre-release suffix.
type Version struct {
	Major      uint32
	Minor      uint32
	Patch      uint32
	Prerelease string
}

func (v Version) String() string {
	if v.Prerelease == "" {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
	return fmt.Sprintf("%d.%d.%d-%s", v.Major, v.Minor, v.Patch, v.Prerelease)
}

// BuildInfo describes the binary, as printed by `drand-verify --version`.
func BuildInfo() string {
	info := GetAppVersion().String()
	if COMMIT != "" {
		info += " (commit " + COMMIT + ")"
	}
	if BUILDDATE != "" {
		info += " built " + BUILDDATE
	}
	return info
}
