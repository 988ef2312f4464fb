/*
Package state contains ledger account state model.
*/
package state

import (
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/voting-program/identity"
)

// MaxDataSize limits the size of the account data.
const MaxDataSize = 10 * 1024 * 1024

// Account is a ledger account: balance, owning program and opaque data only
// the owner can modify.
type Account struct {
	// Balance in lamports.
	Lamports uint64
	// Program owning the account. Plain wallets are owned by the system program.
	Owner identity.Identity
	// Set for program accounts.
	Executable bool
	// Program-specific data.
	Data []byte
}

// EncodeBinary implements io.Serializable.
func (a *Account) EncodeBinary(w *io.BinWriter) {
	w.WriteU64LE(a.Lamports)
	a.Owner.EncodeBinary(w)
	w.WriteBool(a.Executable)
	w.WriteVarBytes(a.Data)
}

// DecodeBinary implements io.Serializable.
func (a *Account) DecodeBinary(r *io.BinReader) {
	a.Lamports = r.ReadU64LE()
	a.Owner.DecodeBinary(r)
	a.Executable = r.ReadBool()
	a.Data = r.ReadVarBytes(MaxDataSize)
}

// Bytes returns serialized account.
func (a *Account) Bytes() ([]byte, error) {
	w := io.NewBufBinWriter()
	a.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return nil, w.Err
	}
	return w.Bytes(), nil
}

// FromBytes decodes account from b.
func (a *Account) FromBytes(b []byte) error {
	r := io.NewBinReaderFromBuf(b)
	a.DecodeBinary(r)
	if r.Err != nil {
		return fmt.Errorf("decode account: %w", r.Err)
	}
	return nil
}

// IsSystemOwned checks whether the account is a plain wallet account.
func (a *Account) IsSystemOwned() bool {
	return a.Owner == identity.SystemProgram
}
