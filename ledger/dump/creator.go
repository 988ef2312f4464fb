package dump

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/nspcc-dev/voting-program/identity"
	"github.com/nspcc-dev/voting-program/state"
)

// Creator dumps states of the ledger programs. Output file format:
//
//	'<label>-<slot>-programs.json': JSON with ledger ID and program states
//	'<label>-<slot>-accounts.csv': CSV of program accounts
//
// Accounts CSV are 'name,address,lamports,data' where name stands for the
// owner program name, address is base58-encoded and data is base64-encoded.
//
// Use IterateDumps to access existing dumps.
type Creator struct {
	dumpStreams

	programs dumpPrograms

	accountsCSV *csv.Writer
}

// NewCreator returns Creator which dumps programs of the ledger with given ID
// into given directory. The dump is identified by specified ID. Resulting
// Creator should be closed when finished working with it.
//
// NewCreator fails if dump with provided ID already exists.
func NewCreator(dir string, id ID, ledgerID uuid.UUID) (*Creator, error) {
	var res Creator

	err := initDumpStreams(&res.dumpStreams, dir, id, false)
	if err != nil {
		return nil, err
	}

	res.programs.Ledger = ledgerID
	res.accountsCSV = csv.NewWriter(res.dumpStreams.accounts)

	return &res, nil
}

// AddProgram adds given account of the named program to the resulting dump
// and returns AccountWriter for the accounts owned by the program. After all
// needed programs are added, they should be flushed via Flush method.
func (x *Creator) AddProgram(name string, id identity.Identity, acc state.Account) *AccountWriter {
	x.programs.Programs = append(x.programs.Programs, dumpProgramState{
		Name:       name,
		ID:         id,
		Lamports:   acc.Lamports,
		Owner:      acc.Owner,
		Executable: acc.Executable,
	})

	return &AccountWriter{
		name:  name,
		owner: id,
		csv:   x.accountsCSV,
	}
}

// Flush flushes accumulated dump to the file system.
func (x *Creator) Flush() error {
	jEnc := json.NewEncoder(x.dumpStreams.programs)
	jEnc.SetIndent("", " ")

	err := jEnc.Encode(x.programs)
	if err != nil {
		return fmt.Errorf("encode program states to JSON: %w", err)
	}

	x.accountsCSV.Flush()

	err = x.accountsCSV.Error()
	if err != nil {
		return fmt.Errorf("flush CSV data: %w", err)
	}

	return nil
}

// Close releases underlying resources of the Creator and makes it unusable.
func (x *Creator) Close() {
	x.close()
}

// AccountWriter writes accounts into the superior program dump.
type AccountWriter struct {
	name  string
	owner identity.Identity
	csv   *csv.Writer
}

// Write saves given account owned by the program into the dump.
func (x *AccountWriter) Write(addr identity.Identity, acc *state.Account) error {
	if acc.Owner != x.owner {
		return fmt.Errorf("account %s is owned by %s, not by '%s' program", addr, acc.Owner, x.name)
	}

	err := x.csv.Write([]string{
		x.name,
		addr.String(),
		strconv.FormatUint(acc.Lamports, 10),
		_encoding.EncodeToString(acc.Data),
	})
	if err != nil {
		return fmt.Errorf("write account as CSV data: %w", err)
	}

	return nil
}
