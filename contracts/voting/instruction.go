package voting

import (
	"bytes"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/voting-program/identity"
	"github.com/nspcc-dev/voting-program/pda"
	"github.com/nspcc-dev/voting-program/transaction"
)

// Seed tags of the record addresses.
const (
	VoterTag     = "voter"
	CandidateTag = "candidate"
)

var (
	initVoterDiscriminator     = newDiscriminator("global", "init_voter")
	initCandidateDiscriminator = newDiscriminator("global", "init_candidate")
	voteDiscriminator          = newDiscriminator("global", "vote")
)

// HashCitizenID returns SHA-256 hash of the citizen ID stored in the voter
// record.
func HashCitizenID(citizenID string) [32]byte {
	return hash.Sha256([]byte(citizenID))
}

// VoterAddress returns address of the owner's voter record and its bump seed.
func VoterAddress(owner, program identity.Identity) (identity.Identity, uint8, error) {
	return pda.Derive(owner[:], VoterTag, program)
}

// CandidateAddress returns address of the owner's candidate record and its
// bump seed.
func CandidateAddress(owner, program identity.Identity) (identity.Identity, uint8, error) {
	return pda.Derive(owner[:], CandidateTag, program)
}

// InitVoterInstruction returns instruction creating voter record of the owner
// at the given address which must be VoterAddress of the owner.
func InitVoterInstruction(program, payer, owner, voter identity.Identity, citizenHash [32]byte) transaction.Instruction {
	return transaction.Instruction{
		ProgramID: program,
		Accounts:  initAccounts(payer, owner, voter),
		Data:      append(initVoterDiscriminator[:], citizenHash[:]...),
	}
}

// InitCandidateInstruction returns instruction creating candidate record of the
// owner at the given address which must be CandidateAddress of the owner.
func InitCandidateInstruction(program, payer, owner, candidate identity.Identity) transaction.Instruction {
	return transaction.Instruction{
		ProgramID: program,
		Accounts:  initAccounts(payer, owner, candidate),
		Data:      bytes.Clone(initCandidateDiscriminator[:]),
	}
}

// VoteInstruction returns instruction casting vote of the voter record for the
// candidate record. voterSigner must be the voter owner.
func VoteInstruction(program, payer, voterSigner, voter, candidate identity.Identity) transaction.Instruction {
	return transaction.Instruction{
		ProgramID: program,
		Accounts: []transaction.AccountMeta{
			{Address: payer, IsSigner: true, IsWritable: true},
			{Address: voterSigner, IsSigner: true, IsWritable: true},
			{Address: voter, IsWritable: true},
			{Address: candidate, IsWritable: true},
		},
		Data: bytes.Clone(voteDiscriminator[:]),
	}
}

func initAccounts(payer, owner, record identity.Identity) []transaction.AccountMeta {
	return []transaction.AccountMeta{
		{Address: payer, IsSigner: true, IsWritable: true},
		{Address: owner, IsSigner: true, IsWritable: true},
		{Address: record, IsWritable: true},
		{Address: identity.RentSysvar},
		{Address: identity.SystemProgram},
	}
}

// decodeInstruction splits instruction data into discriminator and arguments.
func decodeInstruction(data []byte) (Discriminator, []byte, error) {
	var d Discriminator
	if len(data) < DiscriminatorSize {
		return d, nil, fmt.Errorf("%w: data is %d bytes", ErrUnknownInstruction, len(data))
	}
	copy(d[:], data)
	return d, data[DiscriminatorSize:], nil
}
