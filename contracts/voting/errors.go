package voting

import "errors"

var (
	// ErrAlreadyVoted is returned on a vote of the voter who has voted.
	ErrAlreadyVoted = errors.New("voter has already voted")
	// ErrNotOwner is returned when vote is signed not by the voter owner.
	ErrNotOwner = errors.New("voter is not the owner")
	// ErrVoteOverflow is returned when candidate votes counter would overflow.
	ErrVoteOverflow = errors.New("candidate votes overflow")
	// ErrSeedsMismatch is returned when record address is not derived from
	// the owner.
	ErrSeedsMismatch = errors.New("account address does not match owner seeds")
	// ErrNotEnoughAccounts is returned when instruction lacks accounts.
	ErrNotEnoughAccounts = errors.New("not enough accounts")
	// ErrUnexpectedAccount is returned when instruction references wrong
	// sysvar or program.
	ErrUnexpectedAccount = errors.New("unexpected account")
	// ErrInvalidAccountData is returned on decoding of account data that is
	// not a record of the expected type.
	ErrInvalidAccountData = errors.New("invalid account data")
	// ErrInvalidInstructionData is returned when instruction arguments can't
	// be decoded.
	ErrInvalidInstructionData = errors.New("invalid instruction data")
	// ErrUnknownInstruction is returned for unsupported instruction
	// discriminator.
	ErrUnknownInstruction = errors.New("unknown instruction")
)
