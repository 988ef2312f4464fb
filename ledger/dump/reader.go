package dump

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/nspcc-dev/voting-program/identity"
	"github.com/nspcc-dev/voting-program/state"
)

// IterateDumps iterates over all dumps collected by the Creator model in
// the specified directory, and passes ID and Reader of each dump into f.
func IterateDumps(dir string, f func(ID, *Reader)) error {
	var id ID
	var r Reader
	var streams dumpStreams

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, e error) error {
		if errors.Is(e, fs.ErrNotExist) {
			return nil
		}
		if e != nil {
			return e
		}

		if d.IsDir() {
			return nil
		}

		name := d.Name()

		if !strings.HasSuffix(name, statesFileSuffix) {
			return nil
		}

		err := id.decodeString(name)
		if err != nil {
			return fmt.Errorf("decode dump ID from file name '%s': %w", d.Name(), err)
		}

		err = initDumpStreams(&streams, dir, id, true)
		if err != nil {
			return fmt.Errorf("init dump streams ('%s'): %w", name, err)
		}

		err = r.fromDumpStreams(streams.programs, streams.accounts)
		streams.close()
		if err != nil {
			return fmt.Errorf("init dump reader ('%s'): %w", name, err)
		}

		f(id, &r)

		return nil
	})
}

type account struct {
	addr identity.Identity
	acc  state.Account
}

// Reader reads programs collected in the superior dump.
type Reader struct {
	programs  dumpPrograms
	mAccounts map[string][]account
}

func (x *Reader) fromDumpStreams(rPrograms, rAccounts io.Reader) error {
	x.programs = dumpPrograms{}

	err := json.NewDecoder(rPrograms).Decode(&x.programs)
	if err != nil {
		return fmt.Errorf("decode program states from JSON: %w", err)
	}

	owners := make(map[string]identity.Identity, len(x.programs.Programs))
	for i := range x.programs.Programs {
		owners[x.programs.Programs[i].Name] = x.programs.Programs[i].ID
	}

	var rec []string

	_csv := csv.NewReader(rAccounts)
	_csv.FieldsPerRecord = 4
	_csv.ReuseRecord = true

	if x.mAccounts != nil {
		clear(x.mAccounts)
	} else {
		x.mAccounts = make(map[string][]account)
	}

	for {
		rec, err = _csv.Read()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read next CSV record: %w", err)
		}

		// out-of-range safety guaranteed by csv settings
		owner, ok := owners[rec[0]]
		if !ok {
			return fmt.Errorf("account of unknown program '%s'", rec[0])
		}

		var a account

		a.addr, err = identity.Decode(rec[1])
		if err != nil {
			return fmt.Errorf("decode account address: %w", err)
		}

		a.acc.Lamports, err = strconv.ParseUint(rec[2], 10, 64)
		if err != nil {
			return fmt.Errorf("decode account lamports: %w", err)
		}

		a.acc.Data, err = _encoding.DecodeString(rec[3])
		if err != nil {
			return fmt.Errorf("decode account data: %w", err)
		}

		a.acc.Owner = owner

		x.mAccounts[rec[0]] = append(x.mAccounts[rec[0]], a)
	}
}

// LedgerID returns ID of the dumped ledger.
func (x *Reader) LedgerID() uuid.UUID {
	return x.programs.Ledger
}

// IteratePrograms iterates over all programs from the superior dump and
// passes their names, addresses and accounts into f.
func (x *Reader) IteratePrograms(f func(name string, id identity.Identity, acc state.Account)) {
	for _, p := range x.programs.Programs {
		f(p.Name, p.ID, state.Account{
			Lamports:   p.Lamports,
			Owner:      p.Owner,
			Executable: p.Executable,
		})
	}
}

// IterateAccounts iterates over all accounts from the superior dump and
// passes them along with the owner program name into f.
func (x *Reader) IterateAccounts(f func(name string, addr identity.Identity, acc state.Account)) {
	for name, accs := range x.mAccounts {
		for i := range accs {
			f(name, accs[i].addr, accs[i].acc)
		}
	}
}
