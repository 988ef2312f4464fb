package ledger

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/voting-program/identity"
	"github.com/nspcc-dev/voting-program/state"
	"github.com/nspcc-dev/voting-program/transaction"
)

const (
	prefixAccount   = 'a'
	prefixSignature = 's'
	prefixMeta      = 'm'
)

var (
	metaVersion     = metaKey("version")
	metaID          = metaKey("id")
	metaSlot        = metaKey("slot")
	metaBlockhashes = metaKey("blockhashes")
	metaFaucet      = metaKey("faucet")
)

func metaKey(name string) []byte {
	return append([]byte{prefixMeta}, name...)
}

func accountKey(id identity.Identity) []byte {
	return append([]byte{prefixAccount}, id[:]...)
}

func signatureKey(sig transaction.Signature) []byte {
	return append([]byte{prefixSignature}, sig[:]...)
}

// kv is a subset of storage.MemCachedStore methods used by the ledger.
type kv interface {
	Get([]byte) ([]byte, error)
	Put(key, value []byte)
}

func getAccount(s kv, id identity.Identity) (*state.Account, error) {
	b, err := s.Get(accountKey(id))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, id)
		}
		return nil, fmt.Errorf("read account %s: %w", id, err)
	}

	acc := new(state.Account)
	if err := acc.FromBytes(b); err != nil {
		return nil, fmt.Errorf("account %s: %w", id, err)
	}

	return acc, nil
}

func putAccount(s kv, id identity.Identity, acc *state.Account) error {
	b, err := acc.Bytes()
	if err != nil {
		return fmt.Errorf("encode account %s: %w", id, err)
	}
	s.Put(accountKey(id), b)
	return nil
}

func isProcessed(s kv, sig transaction.Signature) (bool, error) {
	_, err := s.Get(signatureKey(sig))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, storage.ErrKeyNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("read signature status: %w", err)
}

func markProcessed(s kv, sig transaction.Signature, slot uint64) {
	s.Put(signatureKey(sig), encodeU64(slot))
}

func encodeU32(v uint32) []byte {
	w := io.NewBufBinWriter()
	w.WriteU32LE(v)
	return w.Bytes()
}

func encodeU64(v uint64) []byte {
	w := io.NewBufBinWriter()
	w.WriteU64LE(v)
	return w.Bytes()
}

func decodeU32(b []byte) (uint32, error) {
	if len(b) != 4 {
		return 0, fmt.Errorf("invalid length %d", len(b))
	}
	r := io.NewBinReaderFromBuf(b)
	v := r.ReadU32LE()
	return v, r.Err
}

func decodeU64(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("invalid length %d", len(b))
	}
	r := io.NewBinReaderFromBuf(b)
	v := r.ReadU64LE()
	return v, r.Err
}
