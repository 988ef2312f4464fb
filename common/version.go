package common

import (
	"errors"
	"fmt"
)

const (
	major = 0
	minor = 2
	patch = 0

	// Versions from which an update should be performed.
	prevMajor = 0
	prevMinor = 1
	prevPatch = 0

	Version = major*1_000_000 + minor*1_000 + patch

	PrevVersion = prevMajor*1_000_000 + prevMinor*1_000 + prevPatch
)

var (
	// ErrVersionMismatch is returned by CheckVersion in case of error.
	ErrVersionMismatch = errors.New("previous version mismatch")

	// ErrAlreadyUpdated is returned by CheckVersion if current version equals
	// to version data is being migrated from.
	ErrAlreadyUpdated = errors.New("data is already of the latest version")
)

// CheckVersion checks that previous version is more than PrevVersion to ensure
// migrating persisted data is possible.
func CheckVersion(from int) error {
	if from < PrevVersion {
		return fmt.Errorf("%w: expected >=%d, got %d", ErrVersionMismatch, PrevVersion, from)
	}
	if from == Version {
		return fmt.Errorf("%w: %d", ErrAlreadyUpdated, Version)
	}
	return nil
}

// VersionString formats numeric version as 'major.minor.patch'.
func VersionString(v int) string {
	return fmt.Sprintf("%d.%d.%d", v/1_000_000, v/1_000%1_000, v%1_000)
}
