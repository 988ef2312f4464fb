package main

import (
	"fmt"

	"github.com/nspcc-dev/voting-program/config"
	"github.com/nspcc-dev/voting-program/contracts"
	"github.com/nspcc-dev/voting-program/identity"
	"github.com/nspcc-dev/voting-program/ledger"
	"github.com/nspcc-dev/voting-program/ledger/dump"
	"github.com/nspcc-dev/voting-program/state"
	"go.uber.org/zap"
)

// _dump opens the configured ledger and dumps all accounts of its programs.
func _dump(cfg *config.Config, log *zap.Logger) (dump.ID, error) {
	cs, err := contracts.Get(cfg.Programs)
	if err != nil {
		return dump.ID{}, fmt.Errorf("init programs: %w", err)
	}

	l, err := ledger.New(cfg.LedgerConfig(log), contracts.Programs(cs)...)
	if err != nil {
		return dump.ID{}, fmt.Errorf("open ledger: %w", err)
	}
	defer func() {
		if err := l.Close(); err != nil {
			log.Error("failed to close ledger", zap.Error(err))
		}
	}()

	id := dump.ID{
		Label: cfg.Dump.Label,
		Slot:  l.Slot(),
	}

	d, err := dump.NewCreator(cfg.Dump.Directory, id, l.ID())
	if err != nil {
		return id, fmt.Errorf("init local dumper: %w", err)
	}
	defer d.Close()

	for _, c := range cs {
		log.Info("processing program", zap.String("name", c.Name), zap.Stringer("id", c.Program.ID()))

		if err := overtakeProgram(l, d, c); err != nil {
			return id, fmt.Errorf("dump '%s' program: %w", c.Name, err)
		}
	}

	if err := d.Flush(); err != nil {
		return id, fmt.Errorf("flush dump: %w", err)
	}

	return id, nil
}

func overtakeProgram(from *ledger.Ledger, to *dump.Creator, c contracts.Contract) error {
	programID := c.Program.ID()

	acc, err := from.GetAccount(programID)
	if err != nil {
		return fmt.Errorf("get program account: %w", err)
	}

	w := to.AddProgram(c.Name, programID, *acc)

	var writeErr error

	err = from.IterateAccounts(programID, func(addr identity.Identity, acc *state.Account) bool {
		writeErr = w.Write(addr, acc)
		return writeErr == nil
	})
	if err != nil {
		return fmt.Errorf("iterate program accounts: %w", err)
	}

	return writeErr
}
