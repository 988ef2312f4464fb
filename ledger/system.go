package ledger

import (
	"fmt"

	"github.com/nspcc-dev/voting-program/identity"
	"github.com/nspcc-dev/voting-program/ledger/sysprog"
)

// systemProgram owns wallet accounts and transfers lamports between them.
type systemProgram struct{}

func (systemProgram) ID() identity.Identity {
	return identity.SystemProgram
}

func (systemProgram) Execute(ctx *Context, data []byte) error {
	lamports, err := sysprog.DecodeTransfer(data)
	if err != nil {
		return err
	}

	accs := ctx.Accounts()
	if len(accs) < 2 {
		return fmt.Errorf("transfer requires 2 accounts, got %d", len(accs))
	}

	return ctx.transfer(accs[0].Address, accs[1].Address, lamports)
}
