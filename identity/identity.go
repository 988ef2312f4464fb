/*
Package identity provides 32-byte public identities used to address accounts
and signers on the ledger.

Identity is an ed25519 public key in its compressed form. Program-derived
addresses share the same representation but are guaranteed not to be valid
curve points, so no private key exists for them (see IsValid).
*/
package identity

import (
	"bytes"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/neo-go/pkg/io"
)

// Size is the length of the binary Identity.
const Size = 32

// Identity is a 32-byte public value identifying an account or signer.
type Identity [Size]byte

// ErrInvalidLength is returned on decoding of an identity with wrong length.
var ErrInvalidLength = errors.New("invalid identity length")

// FromBytes converts b into Identity. b must be exactly Size bytes long.
func FromBytes(b []byte) (Identity, error) {
	var id Identity

	if len(b) != Size {
		return id, fmt.Errorf("%w: %d", ErrInvalidLength, len(b))
	}

	copy(id[:], b)

	return id, nil
}

// Decode parses base58-encoded Identity.
func Decode(s string) (Identity, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return Identity{}, fmt.Errorf("decode base58: %w", err)
	}

	return FromBytes(b)
}

// MustDecode is like Decode but panics on error. It's intended for
// well-known constant addresses only.
func MustDecode(s string) Identity {
	id, err := Decode(s)
	if err != nil {
		panic(fmt.Sprintf("invalid identity %q: %v", s, err))
	}
	return id
}

// String returns base58 representation of the identity.
func (id Identity) String() string {
	return base58.Encode(id[:])
}

// Bytes returns a copy of the identity bytes.
func (id Identity) Bytes() []byte {
	return bytes.Clone(id[:])
}

// IsZero checks whether all identity bytes are zero.
func (id Identity) IsZero() bool {
	return id == Identity{}
}

// Compare returns an integer comparing two identities lexicographically.
func (id Identity) Compare(other Identity) int {
	return bytes.Compare(id[:], other[:])
}

// IsValid checks whether the identity is a point on the ed25519 curve, i.e.
// whether it could be produced from some private key. Non-canonical encodings
// of valid points are accepted.
func (id Identity) IsValid() bool {
	_, err := new(edwards25519.Point).SetBytes(id[:])
	return err == nil
}

// MarshalText implements encoding.TextMarshaler.
func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Identity) UnmarshalText(text []byte) error {
	v, err := Decode(string(text))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

// EncodeBinary implements io.Serializable.
func (id *Identity) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(id[:])
}

// DecodeBinary implements io.Serializable.
func (id *Identity) DecodeBinary(r *io.BinReader) {
	r.ReadBytes(id[:])
}
