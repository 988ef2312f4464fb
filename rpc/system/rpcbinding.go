// Package system contains client wrappers for wallet operations of the
// ledger system program.
package system

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/voting-program/identity"
	"github.com/nspcc-dev/voting-program/ledger"
	"github.com/nspcc-dev/voting-program/ledger/sysprog"
	"github.com/nspcc-dev/voting-program/state"
	"github.com/nspcc-dev/voting-program/transaction"
)

// Invoker is used by Reader to read accounts.
type Invoker interface {
	GetAccount(identity.Identity) (*state.Account, error)
}

// Actor is used by Contract to send transactions.
type Actor interface {
	Invoker

	LatestBlockhash() (util.Uint256, error)
	SendTransaction(*transaction.Transaction) (transaction.Signature, error)
}

// Airdropper funds accounts from the network faucet.
type Airdropper interface {
	RequestAirdrop(identity.Identity, uint64) (transaction.Signature, error)
}

// Reader implements account reading.
type Reader struct {
	invoker Invoker
}

// Contract implements wallet transfers.
type Contract struct {
	Reader
	actor Actor
}

// NewReader creates an instance of Reader using the given Invoker.
func NewReader(invoker Invoker) *Reader {
	return &Reader{invoker}
}

// New creates an instance of Contract using the given Actor.
func New(actor Actor) *Contract {
	return &Contract{Reader{actor}, actor}
}

// AccountInfo returns account state.
func (r *Reader) AccountInfo(id identity.Identity) (*state.Account, error) {
	acc, err := r.invoker.GetAccount(id)
	if err != nil {
		return nil, fmt.Errorf("read account %s: %w", id, err)
	}
	return acc, nil
}

// Balance returns account balance in lamports. Missing accounts have zero
// balance.
func (r *Reader) Balance(id identity.Identity) (uint64, error) {
	acc, err := r.invoker.GetAccount(id)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("read account %s: %w", id, err)
	}
	return acc.Lamports, nil
}

// Transfer creates a transaction moving lamports from one wallet to another.
// This transaction is signed and immediately sent to the network. from pays
// the fee.
func (c *Contract) Transfer(from *identity.PrivateKey, to identity.Identity, lamports uint64) (transaction.Signature, error) {
	tx, err := c.TransferTransaction(from, to, lamports)
	if err != nil {
		return transaction.Signature{}, err
	}

	sig, err := c.actor.SendTransaction(tx)
	if err != nil {
		return sig, fmt.Errorf("send transfer %s: %w", tx.ID(), err)
	}
	return sig, nil
}

// TransferTransaction creates a transaction moving lamports from one wallet to
// another. This transaction is signed, but not sent to the network, instead
// it's returned to the caller.
func (c *Contract) TransferTransaction(from *identity.PrivateKey, to identity.Identity, lamports uint64) (*transaction.Transaction, error) {
	bh, err := c.actor.LatestBlockhash()
	if err != nil {
		return nil, fmt.Errorf("get latest blockhash: %w", err)
	}

	tx := transaction.New(from.PublicKey(), bh, sysprog.Transfer(from.PublicKey(), to, lamports))
	if err := tx.Sign(from); err != nil {
		return nil, fmt.Errorf("sign transfer: %w", err)
	}
	return tx, nil
}

// Airdrop requests the given amount of SOL for the account.
func Airdrop(a Airdropper, to identity.Identity, sol uint64) (transaction.Signature, error) {
	if sol > ^uint64(0)/state.LamportsPerSOL {
		return transaction.Signature{}, fmt.Errorf("airdrop amount %d SOL overflows", sol)
	}

	sig, err := a.RequestAirdrop(to, sol*state.LamportsPerSOL)
	if err != nil {
		return sig, fmt.Errorf("airdrop to %s: %w", to, err)
	}
	return sig, nil
}
