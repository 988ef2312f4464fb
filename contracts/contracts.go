/*
Package contracts lists programs deployed to the ledger and provides access to
them.
*/
package contracts

import (
	"errors"
	"fmt"
	"maps"

	"github.com/nspcc-dev/voting-program/contracts/voting"
	"github.com/nspcc-dev/voting-program/identity"
	"github.com/nspcc-dev/voting-program/ledger"
)

// Names of the programs.
const (
	NameVoting = "voting"
)

// Contract groups ledger program with its name.
type Contract struct {
	Name    string
	Program ledger.Program
}

type constructor struct {
	name      string
	defaultID identity.Identity
	new       func(identity.Identity) ledger.Program
}

var (
	errUnknownProgram = errors.New("unknown program")

	programs = []constructor{
		{NameVoting, voting.DefaultProgramID, func(id identity.Identity) ledger.Program { return voting.New(id) }},
	}
)

// DefaultIDs returns default addresses of all programs by their names.
func DefaultIDs() map[string]identity.Identity {
	res := make(map[string]identity.Identity, len(programs))
	for _, p := range programs {
		res[p.name] = p.defaultID
	}
	return res
}

// Get returns all known programs deployed at the addresses specified by
// their names. Programs missing in ids are deployed at default addresses.
func Get(ids map[string]identity.Identity) ([]Contract, error) {
	return get(programs, ids)
}

func get(list []constructor, ids map[string]identity.Identity) ([]Contract, error) {
	rest := maps.Clone(ids)
	res := make([]Contract, 0, len(list))
	used := make(map[identity.Identity]string, len(list))

	for _, p := range list {
		id, ok := rest[p.name]
		if !ok {
			id = p.defaultID
		}
		delete(rest, p.name)

		if other, ok := used[id]; ok {
			return nil, fmt.Errorf("programs '%s' and '%s' have the same address %s", other, p.name, id)
		}
		used[id] = p.name

		res = append(res, Contract{Name: p.name, Program: p.new(id)})
	}

	for name := range rest {
		return nil, fmt.Errorf("%w '%s'", errUnknownProgram, name)
	}

	return res, nil
}

// Programs returns ledger programs of the contracts.
func Programs(cs []Contract) []ledger.Program {
	res := make([]ledger.Program, len(cs))
	for i := range cs {
		res[i] = cs[i].Program
	}
	return res
}
