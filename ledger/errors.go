package ledger

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/voting-program/transaction"
)

var (
	// ErrAccountNotFound is returned when requested account does not exist.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountAlreadyExists is returned on creation of an account that is
	// already in use.
	ErrAccountAlreadyExists = errors.New("account already exists")
	// ErrAccountNotReferenced is returned when program accesses an account not
	// listed in the instruction.
	ErrAccountNotReferenced = errors.New("account is not referenced by the instruction")
	// ErrAccountNotWritable is returned on modification of an account not
	// marked writable by the instruction.
	ErrAccountNotWritable = errors.New("account is not writable")
	// ErrInvalidAccountOwner is returned when program modifies an account it
	// doesn't own or pays from a non-wallet account.
	ErrInvalidAccountOwner = errors.New("invalid account owner")
	// ErrDataSizeChanged is returned when program tries to resize account data.
	ErrDataSizeChanged = errors.New("account data size changed")
	// ErrInsufficientFunds is returned when an account can't pay fees, rent or
	// transfer.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrProgramNotFound is returned when instruction invokes unknown program.
	ErrProgramNotFound = errors.New("program not found")
	// ErrAlreadyProcessed is returned on resubmission of a transaction.
	ErrAlreadyProcessed = errors.New("transaction has already been processed")
	// ErrBlockhashNotFound is returned when transaction references a blockhash
	// that is unknown or too old.
	ErrBlockhashNotFound = errors.New("blockhash not found")
	// ErrLamportsOverflow is returned when a balance would overflow.
	ErrLamportsOverflow = errors.New("lamports overflow")
	// ErrMissingSignature is returned when an account required to sign the
	// transaction did not.
	ErrMissingSignature = errors.New("missing required signature")
	// ErrInvalidAccountAddress is returned on creation of a program account
	// at the address not derived from the given seeds.
	ErrInvalidAccountAddress = errors.New("invalid account address")
)

// TransactionError is returned when a program instruction fails. The whole
// transaction is rolled back except for the fee charged.
type TransactionError struct {
	// Failed transaction.
	Signature transaction.Signature
	// Index of the failed instruction.
	Instruction int
	// Cause returned by the program.
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s: instruction #%d failed: %v", e.Signature, e.Instruction, e.Err)
}

// Unwrap returns the program error.
func (e *TransactionError) Unwrap() error {
	return e.Err
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound)
}
