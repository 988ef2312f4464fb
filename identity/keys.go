package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/hdevalence/ed25519consensus"
	"github.com/mr-tron/base58"
)

// SignatureSize is the length of ed25519 signature.
const SignatureSize = ed25519.SignatureSize

// ErrInvalidPrivateKey is returned on decoding of malformed private key.
var ErrInvalidPrivateKey = errors.New("invalid private key")

// PrivateKey is an ed25519 key pair whose public half is an Identity.
type PrivateKey struct {
	key ed25519.PrivateKey
}

// NewPrivateKey generates new random PrivateKey.
func NewPrivateKey() (*PrivateKey, error) {
	_, k, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ed25519 key: %w", err)
	}
	return &PrivateKey{key: k}, nil
}

// NewPrivateKeyFromSeed derives PrivateKey from 32-byte seed.
func NewPrivateKeyFromSeed(seed []byte) (*PrivateKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: seed length %d", ErrInvalidPrivateKey, len(seed))
	}
	return &PrivateKey{key: ed25519.NewKeyFromSeed(seed)}, nil
}

// NewPrivateKeyFromBytes restores PrivateKey from its 64-byte form (seed
// followed by the public key). The public half must match the seed.
func NewPrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: length %d", ErrInvalidPrivateKey, len(b))
	}

	k := ed25519.NewKeyFromSeed(b[:ed25519.SeedSize])
	if !k.Equal(ed25519.PrivateKey(b)) {
		return nil, fmt.Errorf("%w: public key mismatch", ErrInvalidPrivateKey)
	}

	return &PrivateKey{key: k}, nil
}

// DecodePrivateKey parses base58-encoded 64-byte private key.
func DecodePrivateKey(s string) (*PrivateKey, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("decode base58: %w", err)
	}
	return NewPrivateKeyFromBytes(b)
}

// PublicKey returns the Identity of the key.
func (p *PrivateKey) PublicKey() Identity {
	var id Identity
	copy(id[:], p.key.Public().(ed25519.PublicKey))
	return id
}

// Seed returns 32-byte seed the key is derived from.
func (p *PrivateKey) Seed() []byte {
	return p.key.Seed()
}

// Bytes returns 64-byte form of the key.
func (p *PrivateKey) Bytes() []byte {
	return append([]byte(nil), p.key...)
}

// String returns base58 representation of the 64-byte key form.
func (p *PrivateKey) String() string {
	return base58.Encode(p.key)
}

// Sign signs msg with the key.
func (p *PrivateKey) Sign(msg []byte) []byte {
	return ed25519.Sign(p.key, msg)
}

// Verify checks sig of msg made by the holder of id. Verification follows
// ZIP-215 rules, so it's consistent across implementations.
func Verify(id Identity, msg, sig []byte) bool {
	if len(sig) != SignatureSize {
		return false
	}
	return ed25519consensus.Verify(ed25519.PublicKey(id[:]), msg, sig)
}
