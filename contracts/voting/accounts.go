package voting

import (
	"bytes"
	"fmt"
	"math"

	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/voting-program/identity"
)

// Sizes of the record account data.
const (
	DiscriminatorSize = 8
	VoterSize         = DiscriminatorSize + 3*identity.Size + 1
	CandidateSize     = DiscriminatorSize + identity.Size + 8
)

// Discriminator is a record or instruction type tag.
type Discriminator [DiscriminatorSize]byte

func newDiscriminator(namespace, name string) Discriminator {
	var d Discriminator
	h := hash.Sha256([]byte(namespace + ":" + name))
	copy(d[:], h[:])
	return d
}

var (
	voterDiscriminator     = newDiscriminator("account", "Voter")
	candidateDiscriminator = newDiscriminator("account", "Candidate")
)

// Voter is a registered voter record.
type Voter struct {
	Owner identity.Identity
	// SHA-256 hash of the citizen ID.
	CitizenHash [32]byte
	// Candidate record address, set on vote.
	VoteWho identity.Identity
	Voted   bool
}

// Candidate is a candidate record.
type Candidate struct {
	Owner    identity.Identity
	NumVotes uint64
}

// EncodeBinary implements io.Serializable.
func (v *Voter) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(voterDiscriminator[:])
	v.Owner.EncodeBinary(w)
	w.WriteBytes(v.CitizenHash[:])
	v.VoteWho.EncodeBinary(w)
	w.WriteBool(v.Voted)
}

// DecodeBinary implements io.Serializable.
func (v *Voter) DecodeBinary(r *io.BinReader) {
	readDiscriminator(r, voterDiscriminator)
	v.Owner.DecodeBinary(r)
	r.ReadBytes(v.CitizenHash[:])
	v.VoteWho.DecodeBinary(r)
	v.Voted = readBool(r)
}

// Bytes returns account data of the record.
func (v *Voter) Bytes() []byte {
	w := io.NewBufBinWriter()
	v.EncodeBinary(w.BinWriter)
	return w.Bytes()
}

// DecodeVoter decodes voter record from account data.
func DecodeVoter(data []byte) (*Voter, error) {
	v := new(Voter)
	if err := decodeRecord(data, VoterSize, v); err != nil {
		return nil, fmt.Errorf("voter: %w", err)
	}
	return v, nil
}

// EncodeBinary implements io.Serializable.
func (c *Candidate) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(candidateDiscriminator[:])
	c.Owner.EncodeBinary(w)
	w.WriteU64LE(c.NumVotes)
}

// DecodeBinary implements io.Serializable.
func (c *Candidate) DecodeBinary(r *io.BinReader) {
	readDiscriminator(r, candidateDiscriminator)
	c.Owner.DecodeBinary(r)
	c.NumVotes = r.ReadU64LE()
}

// Bytes returns account data of the record.
func (c *Candidate) Bytes() []byte {
	w := io.NewBufBinWriter()
	c.EncodeBinary(w.BinWriter)
	return w.Bytes()
}

// addVote increments votes counter. The counter is left intact on overflow.
func (c *Candidate) addVote() error {
	if c.NumVotes == math.MaxUint64 {
		return ErrVoteOverflow
	}
	c.NumVotes++
	return nil
}

// DecodeCandidate decodes candidate record from account data.
func DecodeCandidate(data []byte) (*Candidate, error) {
	c := new(Candidate)
	if err := decodeRecord(data, CandidateSize, c); err != nil {
		return nil, fmt.Errorf("candidate: %w", err)
	}
	return c, nil
}

func decodeRecord(data []byte, size int, rec io.Serializable) error {
	if len(data) != size {
		return fmt.Errorf("%w: size %d instead of %d", ErrInvalidAccountData, len(data), size)
	}

	r := io.NewBinReaderFromBuf(data)
	rec.DecodeBinary(r)
	return r.Err
}

func readDiscriminator(r *io.BinReader, expected Discriminator) {
	var d Discriminator
	r.ReadBytes(d[:])
	if r.Err == nil && !bytes.Equal(d[:], expected[:]) {
		r.Err = fmt.Errorf("%w: discriminator %x", ErrInvalidAccountData, d)
	}
}

func readBool(r *io.BinReader) bool {
	b := r.ReadB()
	if r.Err == nil && b > 1 {
		r.Err = fmt.Errorf("%w: invalid bool %d", ErrInvalidAccountData, b)
	}
	return b == 1
}
