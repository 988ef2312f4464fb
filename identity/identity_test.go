package identity

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDecode(t *testing.T) {
	id, err := Decode("11111111111111111111111111111111")
	require.NoError(t, err)
	require.True(t, id.IsZero())
	require.Equal(t, SystemProgram, id)

	_, err = Decode("1111")
	require.ErrorIs(t, err, ErrInvalidLength)

	_, err = Decode("0OIl")
	require.Error(t, err)

	require.Panics(t, func() { MustDecode("bad") })
}

func TestStringRoundTrip(t *testing.T) {
	k, err := NewPrivateKey()
	require.NoError(t, err)

	id := k.PublicKey()
	res, err := Decode(id.String())
	require.NoError(t, err)
	require.Equal(t, id, res)
}

func TestIsValid(t *testing.T) {
	for i := 0; i < 10; i++ {
		k, err := NewPrivateKey()
		require.NoError(t, err)
		require.True(t, k.PublicKey().IsValid())
	}

	// y = 2 has no matching x on the curve.
	var off Identity
	off[0] = 2
	require.False(t, off.IsValid())
}

func TestCompare(t *testing.T) {
	a := Identity{1}
	b := Identity{2}
	require.Negative(t, a.Compare(b))
	require.Positive(t, b.Compare(a))
	require.Zero(t, a.Compare(a))
}

func TestTextMarshaling(t *testing.T) {
	type wrapper struct {
		Program Identity `yaml:"Program"`
	}

	data, err := yaml.Marshal(wrapper{Program: RentSysvar})
	require.NoError(t, err)
	require.Contains(t, string(data), RentSysvar.String())

	var w wrapper
	require.NoError(t, yaml.Unmarshal(data, &w))
	require.Equal(t, RentSysvar, w.Program)

	require.Error(t, yaml.Unmarshal([]byte("Program: abc"), &w))
}

func TestPrivateKey(t *testing.T) {
	k, err := NewPrivateKey()
	require.NoError(t, err)

	t.Run("sign and verify", func(t *testing.T) {
		msg := []byte("ballot")
		sig := k.Sign(msg)
		require.True(t, Verify(k.PublicKey(), msg, sig))
		require.False(t, Verify(k.PublicKey(), []byte("other"), sig))
		require.False(t, Verify(k.PublicKey(), msg, sig[1:]))

		other, err := NewPrivateKey()
		require.NoError(t, err)
		require.False(t, Verify(other.PublicKey(), msg, sig))
	})

	t.Run("restore", func(t *testing.T) {
		res, err := DecodePrivateKey(k.String())
		require.NoError(t, err)
		require.Equal(t, k.PublicKey(), res.PublicKey())

		res, err = NewPrivateKeyFromSeed(k.Seed())
		require.NoError(t, err)
		require.Equal(t, k.Bytes(), res.Bytes())

		broken := k.Bytes()
		broken[40] ^= 0xff
		_, err = NewPrivateKeyFromBytes(broken)
		require.ErrorIs(t, err, ErrInvalidPrivateKey)

		_, err = NewPrivateKeyFromSeed([]byte{1, 2, 3})
		require.ErrorIs(t, err, ErrInvalidPrivateKey)
	})
}
