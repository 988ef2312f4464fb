/*
Package voting implements the voting program executed by the ledger.

The program keeps two kinds of records at program addresses derived from the
owner identity: voters registered with a hash of their citizen ID and
candidates counting received votes. Every voter can vote exactly once.

# Instructions

InitVoter creates a voter record. Data carries 32-byte SHA-256 hash of the
citizen ID.

	accounts:
	  - payer: signer, writable
	  - owner: signer, writable
	  - voter: writable, derived from [owner, "voter"]
	  - rent sysvar
	  - system program

InitCandidate creates a candidate record.

	accounts:
	  - payer: signer, writable
	  - owner: signer, writable
	  - candidate: writable, derived from [owner, "candidate"]
	  - rent sysvar
	  - system program

Vote links the voter to the candidate and increments candidate votes. The
voter must not have voted yet and voter_signer must be the voter owner.

	accounts:
	  - payer: signer, writable
	  - voter_signer: signer, writable
	  - voter: writable
	  - candidate: writable

Instruction data starts with 8-byte discriminator, the first bytes of
sha256("global:<instruction name>").
*/
package voting

/*
Program storage model.

Records are stored in data of the program-owned accounts.

# Summary
Account data format:
 - discriminator + owner + cccd_sha256 + vote_who + voted -> Voter
   105 bytes, discriminator is sha256("account:Voter")[:8], voted is a single
   0/1 byte
 - discriminator + owner + num_votes -> Candidate
   48 bytes, discriminator is sha256("account:Candidate")[:8], num_votes is
   little-endian uint64

# Addresses
Voter record of the owner is stored at the program address derived from seeds
[owner, "voter", bump], candidate record at [owner, "candidate", bump] where
bump is the first byte from 255 down to 0 giving an off-curve address.
*/
