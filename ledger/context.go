package ledger

import (
	"fmt"
	"math"

	"github.com/nspcc-dev/voting-program/common"
	"github.com/nspcc-dev/voting-program/identity"
	"github.com/nspcc-dev/voting-program/pda"
	"github.com/nspcc-dev/voting-program/state"
	"github.com/nspcc-dev/voting-program/transaction"
	"go.uber.org/zap"
)

// Program is an on-ledger program executing instructions addressed to it.
type Program interface {
	// ID returns program address.
	ID() identity.Identity
	// Execute processes single instruction. Any returned error fails the
	// whole transaction.
	Execute(ctx *Context, data []byte) error
}

// Context is an execution context of a single instruction. All changes made
// through it are applied only if the whole transaction succeeds.
type Context struct {
	store   kv
	rent    state.Rent
	log     *zap.Logger
	program identity.Identity
	ix      *transaction.Instruction
	signers map[identity.Identity]struct{}
}

// ProgramID returns address of the executed program.
func (c *Context) ProgramID() identity.Identity {
	return c.program
}

// Accounts returns accounts referenced by the instruction.
func (c *Context) Accounts() []transaction.AccountMeta {
	return c.ix.Accounts
}

// Rent returns rent parameters of the ledger.
func (c *Context) Rent() state.Rent {
	return c.rent
}

// Logger returns logger of the ledger.
func (c *Context) Logger() *zap.Logger {
	return c.log
}

// CheckWitness checks whether id signed the transaction and is referenced by
// the instruction as a signer. Implements common.Witnesser.
func (c *Context) CheckWitness(id identity.Identity) bool {
	if _, ok := c.signers[id]; !ok {
		return false
	}

	meta, ok := c.meta(id)
	return ok && meta.IsSigner
}

// RequireSignature returns ErrMissingSignature if id didn't sign the
// instruction.
func (c *Context) RequireSignature(id identity.Identity) error {
	if err := common.CheckWitness(c, id); err != nil {
		return fmt.Errorf("%w: %w", ErrMissingSignature, err)
	}
	return nil
}

// Account returns a copy of the referenced account.
func (c *Context) Account(id identity.Identity) (*state.Account, error) {
	if _, ok := c.meta(id); !ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotReferenced, id)
	}
	return getAccount(c.store, id)
}

// Exists checks whether the referenced account exists and is in use: owned by
// a program or holding data.
func (c *Context) Exists(id identity.Identity) (bool, error) {
	acc, err := c.Account(id)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return !acc.IsSystemOwned() || len(acc.Data) > 0, nil
}

// CreateAccount allocates account of space bytes of data owned by the
// executed program. The account is funded by payer up to rent exemption.
// If seeds are given, addr must be the program address derived from them,
// otherwise addr must sign the transaction. ErrAccountAlreadyExists is
// returned if addr is already in use.
func (c *Context) CreateAccount(payer, addr identity.Identity, space int, seeds [][]byte) error {
	if space < 0 || space > state.MaxDataSize {
		return fmt.Errorf("invalid account size %d", space)
	}

	if err := c.writable(addr); err != nil {
		return err
	}
	if err := c.writable(payer); err != nil {
		return err
	}
	if err := c.RequireSignature(payer); err != nil {
		return err
	}

	if seeds != nil {
		expected, err := pda.CreateProgramAddress(seeds, c.program)
		if err != nil {
			return fmt.Errorf("derive account address: %w", err)
		}
		if expected != addr {
			return fmt.Errorf("%w: %s is not derived from the seeds, expected %s", ErrInvalidAccountAddress, addr, expected)
		}
	} else if err := c.RequireSignature(addr); err != nil {
		return err
	}

	used, err := c.Exists(addr)
	if err != nil {
		return err
	}
	if used {
		return fmt.Errorf("%w: %s", ErrAccountAlreadyExists, addr)
	}

	acc, err := getAccount(c.store, addr)
	if err != nil {
		if !isNotFound(err) {
			return err
		}
		acc = &state.Account{}
	}

	required := c.rent.MinimumBalance(space)
	if acc.Lamports < required {
		if err := c.debitWallet(payer, required-acc.Lamports); err != nil {
			return fmt.Errorf("fund account %s: %w", addr, err)
		}
		acc.Lamports = required
	}

	acc.Owner = c.program
	acc.Data = make([]byte, space)

	return putAccount(c.store, addr, acc)
}

// SetData replaces data of the account owned by the executed program. Data
// size can't be changed.
func (c *Context) SetData(addr identity.Identity, data []byte) error {
	if err := c.writable(addr); err != nil {
		return err
	}

	acc, err := getAccount(c.store, addr)
	if err != nil {
		return err
	}
	if acc.Owner != c.program {
		return fmt.Errorf("%w: %s is owned by %s", ErrInvalidAccountOwner, addr, acc.Owner)
	}
	if len(data) != len(acc.Data) {
		return fmt.Errorf("%w: %d != %d", ErrDataSizeChanged, len(data), len(acc.Data))
	}

	acc.Data = append(acc.Data[:0], data...)

	return putAccount(c.store, addr, acc)
}

// transfer moves lamports between wallet accounts creating the recipient if
// needed.
func (c *Context) transfer(from, to identity.Identity, lamports uint64) error {
	if err := c.writable(from); err != nil {
		return err
	}
	if err := c.writable(to); err != nil {
		return err
	}
	if err := c.RequireSignature(from); err != nil {
		return err
	}

	if err := c.debitWallet(from, lamports); err != nil {
		return err
	}

	acc, err := getAccount(c.store, to)
	if err != nil {
		if !isNotFound(err) {
			return err
		}
		acc = &state.Account{Owner: identity.SystemProgram}
	}

	if acc.Lamports > math.MaxUint64-lamports {
		return fmt.Errorf("%w: %s", ErrLamportsOverflow, to)
	}
	acc.Lamports += lamports

	return putAccount(c.store, to, acc)
}

func (c *Context) debitWallet(id identity.Identity, lamports uint64) error {
	acc, err := getAccount(c.store, id)
	if err != nil {
		return err
	}
	if !acc.IsSystemOwned() {
		return fmt.Errorf("%w: %s can't pay, owned by %s", ErrInvalidAccountOwner, id, acc.Owner)
	}
	if acc.Lamports < lamports {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientFunds, id, acc.Lamports, lamports)
	}

	acc.Lamports -= lamports

	return putAccount(c.store, id, acc)
}

func (c *Context) writable(id identity.Identity) error {
	meta, ok := c.meta(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrAccountNotReferenced, id)
	}
	if !meta.IsWritable {
		return fmt.Errorf("%w: %s", ErrAccountNotWritable, id)
	}
	return nil
}

func (c *Context) meta(id identity.Identity) (transaction.AccountMeta, bool) {
	var (
		res   transaction.AccountMeta
		found bool
	)
	for _, m := range c.ix.Accounts {
		if m.Address == id {
			res.Address = id
			res.IsSigner = res.IsSigner || m.IsSigner
			res.IsWritable = res.IsWritable || m.IsWritable
			found = true
		}
	}
	return res, found
}
