package voting

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/voting-program/identity"
	"github.com/nspcc-dev/voting-program/ledger"
	"go.uber.org/zap"
)

// DefaultProgramID is the address the voting program is deployed at by
// default.
var DefaultProgramID = identity.MustDecode("Exv9m3s2wcds1ajLMY9zMFhwdRcrX3FZyvWUSVdkUQxg")

// Contract is the voting program. It implements ledger.Program.
type Contract struct {
	id identity.Identity
}

// New returns voting program deployed at the given address.
func New(id identity.Identity) *Contract {
	return &Contract{id: id}
}

// ID returns program address.
func (c *Contract) ID() identity.Identity {
	return c.id
}

// Execute processes voting program instruction.
func (c *Contract) Execute(ctx *ledger.Context, data []byte) error {
	d, args, err := decodeInstruction(data)
	if err != nil {
		return err
	}

	switch d {
	case initVoterDiscriminator:
		if len(args) != 32 {
			return fmt.Errorf("%w: init_voter arguments are %d bytes", ErrInvalidInstructionData, len(args))
		}
		var citizenHash [32]byte
		copy(citizenHash[:], args)
		return c.initVoter(ctx, citizenHash)
	case initCandidateDiscriminator:
		return c.initCandidate(ctx)
	case voteDiscriminator:
		return c.vote(ctx)
	default:
		return fmt.Errorf("%w: %x", ErrUnknownInstruction, d)
	}
}

func (c *Contract) initVoter(ctx *ledger.Context, citizenHash [32]byte) error {
	payer, owner, addr, err := c.initPrologue(ctx)
	if err != nil {
		return err
	}

	expected, bump, err := VoterAddress(owner, c.id)
	if err != nil {
		return fmt.Errorf("derive voter address: %w", err)
	}
	if addr != expected {
		return fmt.Errorf("%w: voter %s, expected %s", ErrSeedsMismatch, addr, expected)
	}

	err = ctx.CreateAccount(payer, addr, VoterSize, [][]byte{owner[:], []byte(VoterTag), {bump}})
	if err != nil {
		return fmt.Errorf("create voter: %w", err)
	}

	v := Voter{Owner: owner, CitizenHash: citizenHash}
	if err := ctx.SetData(addr, v.Bytes()); err != nil {
		return fmt.Errorf("store voter: %w", err)
	}

	ctx.Logger().Debug("voter registered",
		zap.Stringer("owner", owner),
		zap.Stringer("voter", addr))

	return nil
}

func (c *Contract) initCandidate(ctx *ledger.Context) error {
	payer, owner, addr, err := c.initPrologue(ctx)
	if err != nil {
		return err
	}

	expected, bump, err := CandidateAddress(owner, c.id)
	if err != nil {
		return fmt.Errorf("derive candidate address: %w", err)
	}
	if addr != expected {
		return fmt.Errorf("%w: candidate %s, expected %s", ErrSeedsMismatch, addr, expected)
	}

	err = ctx.CreateAccount(payer, addr, CandidateSize, [][]byte{owner[:], []byte(CandidateTag), {bump}})
	if err != nil {
		return fmt.Errorf("create candidate: %w", err)
	}

	cand := Candidate{Owner: owner}
	if err := ctx.SetData(addr, cand.Bytes()); err != nil {
		return fmt.Errorf("store candidate: %w", err)
	}

	ctx.Logger().Debug("candidate registered",
		zap.Stringer("owner", owner),
		zap.Stringer("candidate", addr))

	return nil
}

// initPrologue checks accounts of record initialization instructions.
func (c *Contract) initPrologue(ctx *ledger.Context) (payer, owner, record identity.Identity, err error) {
	accs := ctx.Accounts()
	if len(accs) < 5 {
		err = fmt.Errorf("%w: %d of 5", ErrNotEnoughAccounts, len(accs))
		return
	}

	payer, owner, record = accs[0].Address, accs[1].Address, accs[2].Address

	if accs[3].Address != identity.RentSysvar {
		err = fmt.Errorf("%w: %s instead of rent sysvar", ErrUnexpectedAccount, accs[3].Address)
		return
	}
	if accs[4].Address != identity.SystemProgram {
		err = fmt.Errorf("%w: %s instead of system program", ErrUnexpectedAccount, accs[4].Address)
		return
	}

	if err = ctx.RequireSignature(payer); err != nil {
		return
	}
	err = ctx.RequireSignature(owner)

	return
}

func (c *Contract) vote(ctx *ledger.Context) error {
	accs := ctx.Accounts()
	if len(accs) < 4 {
		return fmt.Errorf("%w: %d of 4", ErrNotEnoughAccounts, len(accs))
	}

	payer, signer, voterAddr, candAddr := accs[0].Address, accs[1].Address, accs[2].Address, accs[3].Address

	if err := ctx.RequireSignature(payer); err != nil {
		return err
	}
	if err := ctx.RequireSignature(signer); err != nil {
		return err
	}

	voter, err := c.voter(ctx, voterAddr)
	if err != nil {
		return err
	}
	cand, err := c.candidate(ctx, candAddr)
	if err != nil {
		return err
	}

	// The voted flag is checked first. A foreign signer is reported even for
	// the voter who has voted.
	var errs []error
	if voter.Voted {
		errs = append(errs, ErrAlreadyVoted)
	}
	if signer != voter.Owner {
		errs = append(errs, ErrNotOwner)
	}
	if len(errs) > 0 {
		return fmt.Errorf("voter %s: %w", voterAddr, errors.Join(errs...))
	}

	if err := cand.addVote(); err != nil {
		return fmt.Errorf("candidate %s: %w", candAddr, err)
	}
	voter.Voted = true
	voter.VoteWho = candAddr

	if err := ctx.SetData(candAddr, cand.Bytes()); err != nil {
		return fmt.Errorf("store candidate: %w", err)
	}
	if err := ctx.SetData(voterAddr, voter.Bytes()); err != nil {
		return fmt.Errorf("store voter: %w", err)
	}

	ctx.Logger().Debug("vote cast",
		zap.Stringer("voter", voterAddr),
		zap.Stringer("candidate", candAddr),
		zap.Uint64("votes", cand.NumVotes))

	return nil
}

func (c *Contract) voter(ctx *ledger.Context, addr identity.Identity) (*Voter, error) {
	data, err := c.recordData(ctx, addr)
	if err != nil {
		return nil, err
	}
	return DecodeVoter(data)
}

func (c *Contract) candidate(ctx *ledger.Context, addr identity.Identity) (*Candidate, error) {
	data, err := c.recordData(ctx, addr)
	if err != nil {
		return nil, err
	}
	return DecodeCandidate(data)
}

func (c *Contract) recordData(ctx *ledger.Context, addr identity.Identity) ([]byte, error) {
	acc, err := ctx.Account(addr)
	if err != nil {
		return nil, err
	}
	if acc.Owner != ctx.ProgramID() {
		return nil, fmt.Errorf("%w: %s is owned by %s", ErrInvalidAccountData, addr, acc.Owner)
	}
	return acc.Data, nil
}
