package pda

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"github.com/nspcc-dev/voting-program/identity"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var testProgram = identity.MustDecode("Exv9m3s2wcds1ajLMY9zMFhwdRcrX3FZyvWUSVdkUQxg")

func testOwner() []byte {
	owner := make([]byte, 32)
	for i := range owner {
		owner[i] = byte(i)
	}
	return owner
}

func TestDeriveVectors(t *testing.T) {
	for _, tc := range []struct {
		tag  string
		addr string
		bump uint8
	}{
		// bump 255 lands on the curve and must be skipped.
		{tag: "voter", addr: "HWRwPJ1p5bRW9mznTHDihdEi1c3giMRTTyXeu1at3vDA", bump: 254},
		{tag: "candidate", addr: "AWsouY6ftNFAN5i3tKxx18w735QVJkDN6xdJsGTUFbch", bump: 255},
	} {
		t.Run(tc.tag, func(t *testing.T) {
			addr, bump, err := Derive(testOwner(), tc.tag, testProgram)
			require.NoError(t, err)
			require.Equal(t, tc.addr, addr.String())
			require.Equal(t, tc.bump, bump)

			res, err := CreateProgramAddress([][]byte{testOwner(), []byte(tc.tag), {bump}}, testProgram)
			require.NoError(t, err)
			require.Equal(t, addr, res)
		})
	}

	_, err := CreateProgramAddress([][]byte{testOwner(), []byte("voter"), {255}}, testProgram)
	require.ErrorIs(t, err, ErrInvalidSeeds)
}

func TestCreateProgramAddressPreimage(t *testing.T) {
	seeds := [][]byte{[]byte("a"), []byte("bc"), {7}}

	var preimage []byte
	preimage = append(preimage, "abc"...)
	preimage = append(preimage, 7)
	preimage = append(preimage, testProgram[:]...)
	preimage = append(preimage, "ProgramDerivedAddress"...)
	expected := identity.Identity(sha256.Sum256(preimage))

	res, err := create(seeds, testProgram, func(identity.Identity) bool { return false })
	require.NoError(t, err)
	require.Equal(t, expected, res)
}

func TestSeedLimits(t *testing.T) {
	_, err := CreateProgramAddress([][]byte{bytes.Repeat([]byte{1}, MaxSeedLength+1)}, testProgram)
	require.ErrorIs(t, err, ErrMaxSeedLength)

	seeds := make([][]byte, MaxSeeds+1)
	_, err = CreateProgramAddress(seeds, testProgram)
	require.ErrorIs(t, err, ErrMaxSeedLength)

	// The bump seed counts too.
	_, _, err = FindProgramAddress(make([][]byte, MaxSeeds), testProgram)
	require.ErrorIs(t, err, ErrMaxSeedLength)

	_, _, err = FindProgramAddress(make([][]byte, MaxSeeds-1), testProgram)
	require.NoError(t, err)
}

func TestDerivationExhausted(t *testing.T) {
	var calls int
	_, _, err := find([][]byte{testOwner()}, testProgram, func(identity.Identity) bool {
		calls++
		return true
	})
	require.ErrorIs(t, err, ErrDerivationExhausted)
	require.Equal(t, 256, calls)

	calls = 0
	_, bump, err := find([][]byte{testOwner()}, testProgram, func(identity.Identity) bool {
		calls++
		return calls < 256
	})
	require.NoError(t, err)
	require.Zero(t, bump)
}

func TestDeriveProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		owner := rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(t, "owner")
		tag := rapid.SampledFrom([]string{"voter", "candidate"}).Draw(t, "tag")

		addr, bump, err := Derive(owner, tag, testProgram)
		if err != nil {
			t.Fatalf("derive: %v", err)
		}
		if addr.IsValid() {
			t.Fatalf("derived address %s is a valid identity", addr)
		}

		again, againBump, err := Derive(owner, tag, testProgram)
		if err != nil {
			t.Fatalf("derive again: %v", err)
		}
		if again != addr || againBump != bump {
			t.Fatalf("derivation is not deterministic: %s/%d vs %s/%d", addr, bump, again, againBump)
		}

		res, err := CreateProgramAddress([][]byte{owner, []byte(tag), {bump}}, testProgram)
		if err != nil || res != addr {
			t.Fatalf("bump %d does not reproduce %s: %v", bump, addr, err)
		}
	})
}
