package voting

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/nspcc-dev/voting-program/identity"
	"github.com/stretchr/testify/require"
)

func TestDiscriminators(t *testing.T) {
	for _, tc := range []struct {
		d        Discriminator
		expected Discriminator
	}{
		{voterDiscriminator, Discriminator{241, 93, 35, 191, 254, 147, 17, 202}},
		{candidateDiscriminator, Discriminator{86, 69, 250, 96, 193, 10, 222, 123}},
		{initVoterDiscriminator, Discriminator{2, 0, 199, 32, 168, 87, 124, 188}},
		{initCandidateDiscriminator, Discriminator{35, 246, 227, 54, 218, 228, 156, 143}},
		{voteDiscriminator, Discriminator{227, 110, 155, 23, 136, 126, 172, 25}},
	} {
		require.Equal(t, tc.expected, tc.d)
	}
}

func TestVoterLayout(t *testing.T) {
	v := Voter{Voted: true}
	for i := range v.Owner {
		v.Owner[i] = 1
		v.CitizenHash[i] = 2
		v.VoteWho[i] = 3
	}

	data := v.Bytes()
	require.Len(t, data, VoterSize)
	require.Len(t, data, 105)
	require.Equal(t, voterDiscriminator[:], data[:8])
	require.Equal(t, v.Owner[:], data[8:40])
	require.Equal(t, v.CitizenHash[:], data[40:72])
	require.Equal(t, v.VoteWho[:], data[72:104])
	require.Equal(t, byte(1), data[104])

	res, err := DecodeVoter(data)
	require.NoError(t, err)
	require.Equal(t, v, *res)

	t.Run("invalid bool", func(t *testing.T) {
		data := v.Bytes()
		data[104] = 2
		_, err := DecodeVoter(data)
		require.ErrorIs(t, err, ErrInvalidAccountData)
	})
	t.Run("invalid size", func(t *testing.T) {
		_, err := DecodeVoter(data[:104])
		require.ErrorIs(t, err, ErrInvalidAccountData)
	})
	t.Run("candidate data", func(t *testing.T) {
		_, err := DecodeVoter((&Candidate{}).Bytes())
		require.ErrorIs(t, err, ErrInvalidAccountData)
	})
}

func TestCandidateLayout(t *testing.T) {
	c := Candidate{Owner: identity.Identity{1, 2, 3}, NumVotes: 0x0102030405060708}

	data := c.Bytes()
	require.Len(t, data, CandidateSize)
	require.Len(t, data, 48)
	require.Equal(t, candidateDiscriminator[:], data[:8])
	require.Equal(t, c.Owner[:], data[8:40])
	require.Equal(t, c.NumVotes, binary.LittleEndian.Uint64(data[40:]))

	res, err := DecodeCandidate(data)
	require.NoError(t, err)
	require.Equal(t, c, *res)

	data[0] ^= 0xff
	_, err = DecodeCandidate(data)
	require.ErrorIs(t, err, ErrInvalidAccountData)
}

func TestCandidateAddVote(t *testing.T) {
	c := Candidate{NumVotes: 41}
	require.NoError(t, c.addVote())
	require.EqualValues(t, 42, c.NumVotes)

	c.NumVotes = math.MaxUint64
	require.ErrorIs(t, c.addVote(), ErrVoteOverflow)
	require.EqualValues(t, uint64(math.MaxUint64), c.NumVotes)
}

func TestDecodeInstruction(t *testing.T) {
	_, _, err := decodeInstruction([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrUnknownInstruction)

	d, args, err := decodeInstruction(append(voteDiscriminator[:], 7))
	require.NoError(t, err)
	require.Equal(t, voteDiscriminator, d)
	require.Equal(t, []byte{7}, args)
}
