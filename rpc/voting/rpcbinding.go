// Package voting contains client wrappers for the voting program.
package voting

import (
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/voting-program/contracts/voting"
	"github.com/nspcc-dev/voting-program/identity"
	"github.com/nspcc-dev/voting-program/state"
	"github.com/nspcc-dev/voting-program/transaction"
)

// Invoker is used by ContractReader to read program accounts.
type Invoker interface {
	GetAccount(identity.Identity) (*state.Account, error)
}

// Actor is used by Contract to send transactions.
type Actor interface {
	Invoker

	LatestBlockhash() (util.Uint256, error)
	SendTransaction(*transaction.Transaction) (transaction.Signature, error)
}

// Config groups Contract parameters.
type Config struct {
	// Address of the voting program.
	ProgramID identity.Identity
	// Key of the account paying fees and rent. Required.
	Payer *identity.PrivateKey
}

// SubmissionError is returned by Contract when the transaction was rejected or
// failed. The cause is available via errors.Is/As.
type SubmissionError struct {
	// Signature of the transaction, zero if it wasn't signed.
	Signature transaction.Signature
	Err       error
}

func (e *SubmissionError) Error() string {
	if e.Signature.IsZero() {
		return fmt.Sprintf("submit transaction: %v", e.Err)
	}
	return fmt.Sprintf("submit transaction %s: %v", e.Signature, e.Err)
}

// Unwrap returns the cause of the failure.
func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// ContractReader implements reading of the program records.
type ContractReader struct {
	invoker Invoker
	program identity.Identity
}

// Contract implements all program instructions.
type Contract struct {
	ContractReader
	actor Actor
	payer *identity.PrivateKey
}

// NewReader creates an instance of ContractReader using provided program
// address and the given Invoker.
func NewReader(invoker Invoker, program identity.Identity) *ContractReader {
	return &ContractReader{invoker, program}
}

// New creates an instance of Contract using the given Actor and
// configuration.
func New(actor Actor, cfg Config) *Contract {
	return &Contract{ContractReader{actor, cfg.ProgramID}, actor, cfg.Payer}
}

// ProgramID returns address of the program.
func (c *ContractReader) ProgramID() identity.Identity {
	return c.program
}

// Voter reads voter record at the given address.
func (c *ContractReader) Voter(addr identity.Identity) (*voting.Voter, error) {
	data, err := c.recordData(addr)
	if err != nil {
		return nil, err
	}
	return voting.DecodeVoter(data)
}

// Candidate reads candidate record at the given address.
func (c *ContractReader) Candidate(addr identity.Identity) (*voting.Candidate, error) {
	data, err := c.recordData(addr)
	if err != nil {
		return nil, err
	}
	return voting.DecodeCandidate(data)
}

// VoterOf reads voter record of the owner and returns it along with its
// address.
func (c *ContractReader) VoterOf(owner identity.Identity) (identity.Identity, *voting.Voter, error) {
	addr, _, err := voting.VoterAddress(owner, c.program)
	if err != nil {
		return addr, nil, fmt.Errorf("derive voter address: %w", err)
	}

	v, err := c.Voter(addr)
	return addr, v, err
}

// CandidateOf reads candidate record of the owner and returns it along with
// its address.
func (c *ContractReader) CandidateOf(owner identity.Identity) (identity.Identity, *voting.Candidate, error) {
	addr, _, err := voting.CandidateAddress(owner, c.program)
	if err != nil {
		return addr, nil, fmt.Errorf("derive candidate address: %w", err)
	}

	cand, err := c.Candidate(addr)
	return addr, cand, err
}

func (c *ContractReader) recordData(addr identity.Identity) ([]byte, error) {
	acc, err := c.invoker.GetAccount(addr)
	if err != nil {
		return nil, fmt.Errorf("read account %s: %w", addr, err)
	}
	if acc.Owner != c.program {
		return nil, fmt.Errorf("%w: %s is owned by %s", voting.ErrInvalidAccountData, addr, acc.Owner)
	}
	return acc.Data, nil
}

// InitVoter creates a transaction invoking `init_voter` instruction of the
// program for the owner's voter record. This transaction is signed and
// immediately sent to the network. The values returned are its signature,
// the voter record address and error if any.
func (c *Contract) InitVoter(owner *identity.PrivateKey, citizenHash [32]byte) (transaction.Signature, identity.Identity, error) {
	tx, addr, err := c.initVoterUnsigned(owner.PublicKey(), citizenHash)
	if err != nil {
		return transaction.Signature{}, addr, err
	}

	sig, err := c.signAndSend(tx, owner)
	return sig, addr, err
}

// InitVoterTransaction creates a transaction invoking `init_voter` instruction
// of the program. This transaction is signed, but not sent to the network,
// instead it's returned to the caller.
func (c *Contract) InitVoterTransaction(owner *identity.PrivateKey, citizenHash [32]byte) (*transaction.Transaction, error) {
	tx, _, err := c.initVoterUnsigned(owner.PublicKey(), citizenHash)
	if err != nil {
		return nil, err
	}
	return tx, c.sign(tx, owner)
}

// InitVoterUnsigned creates a transaction invoking `init_voter` instruction of
// the program. This transaction is not signed, it's simply returned to the
// caller.
func (c *Contract) InitVoterUnsigned(owner identity.Identity, citizenHash [32]byte) (*transaction.Transaction, error) {
	tx, _, err := c.initVoterUnsigned(owner, citizenHash)
	return tx, err
}

func (c *Contract) initVoterUnsigned(owner identity.Identity, citizenHash [32]byte) (*transaction.Transaction, identity.Identity, error) {
	addr, _, err := voting.VoterAddress(owner, c.program)
	if err != nil {
		return nil, addr, fmt.Errorf("derive voter address: %w", err)
	}

	tx, err := c.unsigned(voting.InitVoterInstruction(c.program, c.payer.PublicKey(), owner, addr, citizenHash))
	return tx, addr, err
}

// InitCandidate creates a transaction invoking `init_candidate` instruction of
// the program for the owner's candidate record. This transaction is signed
// and immediately sent to the network. The values returned are its
// signature, the candidate record address and error if any.
func (c *Contract) InitCandidate(owner *identity.PrivateKey) (transaction.Signature, identity.Identity, error) {
	tx, addr, err := c.initCandidateUnsigned(owner.PublicKey())
	if err != nil {
		return transaction.Signature{}, addr, err
	}

	sig, err := c.signAndSend(tx, owner)
	return sig, addr, err
}

// InitCandidateTransaction creates a transaction invoking `init_candidate`
// instruction of the program. This transaction is signed, but not sent to the
// network, instead it's returned to the caller.
func (c *Contract) InitCandidateTransaction(owner *identity.PrivateKey) (*transaction.Transaction, error) {
	tx, _, err := c.initCandidateUnsigned(owner.PublicKey())
	if err != nil {
		return nil, err
	}
	return tx, c.sign(tx, owner)
}

// InitCandidateUnsigned creates a transaction invoking `init_candidate`
// instruction of the program. This transaction is not signed, it's simply
// returned to the caller.
func (c *Contract) InitCandidateUnsigned(owner identity.Identity) (*transaction.Transaction, error) {
	tx, _, err := c.initCandidateUnsigned(owner)
	return tx, err
}

func (c *Contract) initCandidateUnsigned(owner identity.Identity) (*transaction.Transaction, identity.Identity, error) {
	addr, _, err := voting.CandidateAddress(owner, c.program)
	if err != nil {
		return nil, addr, fmt.Errorf("derive candidate address: %w", err)
	}

	tx, err := c.unsigned(voting.InitCandidateInstruction(c.program, c.payer.PublicKey(), owner, addr))
	return tx, addr, err
}

// Vote creates a transaction invoking `vote` instruction of the program. This
// transaction is signed and immediately sent to the network. The values
// returned are its signature and error if any.
func (c *Contract) Vote(voterSigner *identity.PrivateKey, voter, candidate identity.Identity) (transaction.Signature, error) {
	tx, err := c.VoteUnsigned(voterSigner.PublicKey(), voter, candidate)
	if err != nil {
		return transaction.Signature{}, err
	}
	return c.signAndSend(tx, voterSigner)
}

// VoteTransaction creates a transaction invoking `vote` instruction of the
// program. This transaction is signed, but not sent to the network, instead
// it's returned to the caller.
func (c *Contract) VoteTransaction(voterSigner *identity.PrivateKey, voter, candidate identity.Identity) (*transaction.Transaction, error) {
	tx, err := c.VoteUnsigned(voterSigner.PublicKey(), voter, candidate)
	if err != nil {
		return nil, err
	}
	return tx, c.sign(tx, voterSigner)
}

// VoteUnsigned creates a transaction invoking `vote` instruction of the
// program. This transaction is not signed, it's simply returned to the
// caller.
func (c *Contract) VoteUnsigned(voterSigner, voter, candidate identity.Identity) (*transaction.Transaction, error) {
	return c.unsigned(voting.VoteInstruction(c.program, c.payer.PublicKey(), voterSigner, voter, candidate))
}

// VoteFor sends vote of the owner's voter record for the candidate record of
// candidateOwner.
func (c *Contract) VoteFor(owner *identity.PrivateKey, candidateOwner identity.Identity) (transaction.Signature, error) {
	voter, _, err := voting.VoterAddress(owner.PublicKey(), c.program)
	if err != nil {
		return transaction.Signature{}, fmt.Errorf("derive voter address: %w", err)
	}
	candidate, _, err := voting.CandidateAddress(candidateOwner, c.program)
	if err != nil {
		return transaction.Signature{}, fmt.Errorf("derive candidate address: %w", err)
	}
	return c.Vote(owner, voter, candidate)
}

func (c *Contract) unsigned(ix transaction.Instruction) (*transaction.Transaction, error) {
	bh, err := c.actor.LatestBlockhash()
	if err != nil {
		return nil, fmt.Errorf("get latest blockhash: %w", err)
	}
	return transaction.New(c.payer.PublicKey(), bh, ix), nil
}

func (c *Contract) sign(tx *transaction.Transaction, signer *identity.PrivateKey) error {
	if err := tx.Sign(c.payer, signer); err != nil {
		return fmt.Errorf("sign transaction: %w", err)
	}
	return nil
}

func (c *Contract) signAndSend(tx *transaction.Transaction, signer *identity.PrivateKey) (transaction.Signature, error) {
	if err := c.sign(tx, signer); err != nil {
		return transaction.Signature{}, &SubmissionError{Err: err}
	}

	sig, err := c.actor.SendTransaction(tx)
	if err != nil {
		return sig, &SubmissionError{Signature: tx.ID(), Err: err}
	}
	return sig, nil
}
