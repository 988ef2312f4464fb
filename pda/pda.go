/*
Package pda derives program addresses: identities computed from seeds and a
program identity rather than generated from a key pair.

A derived address is a SHA-256 hash that is deliberately not a point of the
ed25519 curve, so no private key can ever sign for it and only the owning
program controls the account through the ledger runtime.
*/
package pda

import (
	"errors"
	"fmt"
	"math"

	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/voting-program/identity"
)

const (
	// MaxSeedLength is the maximum length of a single seed.
	MaxSeedLength = 32
	// MaxSeeds is the maximum number of seeds including the bump seed.
	MaxSeeds = 16

	// domain separation suffix appended to every hashed preimage.
	marker = "ProgramDerivedAddress"
)

var (
	// ErrMaxSeedLength is returned when a seed or the number of seeds exceeds
	// the limit.
	ErrMaxSeedLength = errors.New("seed length or number of seeds exceeds the limit")
	// ErrInvalidSeeds is returned by CreateProgramAddress when the resulting
	// hash is a valid identity and can't be used as a derived address.
	ErrInvalidSeeds = errors.New("provided seeds do not result in a valid address")
	// ErrDerivationExhausted is returned when no bump seed in [0, 255] gives a
	// valid derived address.
	ErrDerivationExhausted = errors.New("unable to find a viable program address bump seed")
)

// CreateProgramAddress computes derived address of the program from the given
// seeds. The caller is responsible for the bump seed to be among the seeds.
func CreateProgramAddress(seeds [][]byte, program identity.Identity) (identity.Identity, error) {
	return create(seeds, program, identity.Identity.IsValid)
}

// FindProgramAddress searches the bump seed from 255 down to 0 and returns
// the first derived address along with the bump producing it.
func FindProgramAddress(seeds [][]byte, program identity.Identity) (identity.Identity, uint8, error) {
	return find(seeds, program, identity.Identity.IsValid)
}

// Derive is a FindProgramAddress for the seedMaterial||tag preimage.
func Derive(seedMaterial []byte, tag string, program identity.Identity) (identity.Identity, uint8, error) {
	return FindProgramAddress([][]byte{seedMaterial, []byte(tag)}, program)
}

func create(seeds [][]byte, program identity.Identity, onCurve func(identity.Identity) bool) (identity.Identity, error) {
	if len(seeds) > MaxSeeds {
		return identity.Identity{}, fmt.Errorf("%w: %d seeds", ErrMaxSeedLength, len(seeds))
	}

	size := len(program) + len(marker)
	for i := range seeds {
		if len(seeds[i]) > MaxSeedLength {
			return identity.Identity{}, fmt.Errorf("%w: seed #%d is %d bytes", ErrMaxSeedLength, i, len(seeds[i]))
		}
		size += len(seeds[i])
	}

	preimage := make([]byte, 0, size)
	for i := range seeds {
		preimage = append(preimage, seeds[i]...)
	}
	preimage = append(preimage, program[:]...)
	preimage = append(preimage, marker...)

	addr := identity.Identity(hash.Sha256(preimage))
	if onCurve(addr) {
		return identity.Identity{}, ErrInvalidSeeds
	}

	return addr, nil
}

func find(seeds [][]byte, program identity.Identity, onCurve func(identity.Identity) bool) (identity.Identity, uint8, error) {
	bumped := make([][]byte, len(seeds)+1)
	copy(bumped, seeds)

	bump := []byte{0}
	bumped[len(seeds)] = bump

	for n := math.MaxUint8; n >= 0; n-- {
		bump[0] = byte(n)

		addr, err := create(bumped, program, onCurve)
		if err == nil {
			return addr, bump[0], nil
		}
		if !errors.Is(err, ErrInvalidSeeds) {
			return identity.Identity{}, 0, err
		}
	}

	return identity.Identity{}, 0, ErrDerivationExhausted
}
