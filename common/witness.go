package common

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/voting-program/identity"
)

var (
	// ErrWitnessFailed appears when the method must be called
	// using certain identity but was not.
	ErrWitnessFailed = errors.New("witness check failed")
)

// Witnesser reports whether the current invocation is signed by the identity.
type Witnesser interface {
	CheckWitness(identity.Identity) bool
}

// CheckWitness checks witness of the passed caller.
// It returns ErrWitnessFailed on fail.
func CheckWitness(w Witnesser, caller identity.Identity) error {
	if !w.CheckWitness(caller) {
		return fmt.Errorf("%w: %s", ErrWitnessFailed, caller)
	}
	return nil
}
