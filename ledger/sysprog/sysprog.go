/*
Package sysprog provides instruction encoding of the ledger system program
which owns wallet accounts and moves lamports between them.
*/
package sysprog

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/voting-program/identity"
	"github.com/nspcc-dev/voting-program/transaction"
)

// Type is a system instruction type.
type Type uint32

// Supported system instructions.
const (
	TypeTransfer Type = 2
)

// ErrUnknownInstruction is returned on decoding of unsupported instruction.
var ErrUnknownInstruction = errors.New("unknown system instruction")

// Transfer returns instruction moving lamports from one wallet account to
// another. from must sign the transaction.
func Transfer(from, to identity.Identity, lamports uint64) transaction.Instruction {
	w := io.NewBufBinWriter()
	w.WriteU32LE(uint32(TypeTransfer))
	w.WriteU64LE(lamports)

	return transaction.Instruction{
		ProgramID: identity.SystemProgram,
		Accounts: []transaction.AccountMeta{
			{Address: from, IsSigner: true, IsWritable: true},
			{Address: to, IsWritable: true},
		},
		Data: w.Bytes(),
	}
}

// DecodeTransfer decodes data of the Transfer instruction and returns
// transferred amount.
func DecodeTransfer(data []byte) (uint64, error) {
	r := io.NewBinReaderFromBuf(data)

	typ := Type(r.ReadU32LE())
	lamports := r.ReadU64LE()
	if r.Err != nil {
		return 0, fmt.Errorf("decode system instruction: %w", r.Err)
	}

	if typ != TypeTransfer {
		return 0, fmt.Errorf("%w: %d", ErrUnknownInstruction, typ)
	}

	return lamports, nil
}
