/*
Package transaction contains the model of ledger transactions: instructions
addressed to programs, messages grouping them and signatures authorizing
messages.
*/
package transaction

import (
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/voting-program/identity"
)

const (
	// MaxInstructions limits the number of instructions in a message.
	MaxInstructions = 64
	// MaxAccounts limits the number of accounts referenced by an instruction.
	MaxAccounts = 64
	// MaxDataSize limits instruction data size.
	MaxDataSize = 1232
)

var (
	// ErrMissingKey is returned by Sign when some required signer key is not provided.
	ErrMissingKey = errors.New("missing signer key")
	// ErrInvalidSignature is returned by Verify on signature mismatch.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrNoInstructions is returned when message carries no instructions.
	ErrNoInstructions = errors.New("message has no instructions")
)

// Signature is an ed25519 signature of the message bytes.
type Signature [identity.SignatureSize]byte

// String returns base58 representation of the signature.
func (s Signature) String() string {
	return base58.Encode(s[:])
}

// IsZero checks whether signature is empty.
func (s Signature) IsZero() bool {
	return s == Signature{}
}

// DecodeSignature parses base58-encoded signature.
func DecodeSignature(str string) (Signature, error) {
	var s Signature

	b, err := base58.Decode(str)
	if err != nil {
		return s, fmt.Errorf("decode base58: %w", err)
	}
	if len(b) != len(s) {
		return s, fmt.Errorf("invalid signature length %d", len(b))
	}

	copy(s[:], b)
	return s, nil
}

// AccountMeta describes account referenced by an instruction.
type AccountMeta struct {
	Address    identity.Identity
	IsSigner   bool
	IsWritable bool
}

// Instruction is a call of some program with the given accounts and data.
type Instruction struct {
	ProgramID identity.Identity
	Accounts  []AccountMeta
	Data      []byte
}

// Message groups instructions executed atomically.
type Message struct {
	// Account paying transaction fees, always a signer.
	FeePayer identity.Identity
	// Recent ledger blockhash limiting transaction lifetime.
	RecentBlockhash util.Uint256
	Instructions    []Instruction
}

// Transaction is a signed Message. Signatures follow the order of
// Message.Signers.
type Transaction struct {
	Message    Message
	Signatures []Signature
}

// New creates unsigned transaction.
func New(feePayer identity.Identity, blockhash util.Uint256, instructions ...Instruction) *Transaction {
	return &Transaction{
		Message: Message{
			FeePayer:        feePayer,
			RecentBlockhash: blockhash,
			Instructions:    instructions,
		},
	}
}

// Signers returns unique identities required to sign the message: fee payer
// first, then signers of the instructions in order of appearance.
func (m *Message) Signers() []identity.Identity {
	res := []identity.Identity{m.FeePayer}
	seen := map[identity.Identity]struct{}{m.FeePayer: {}}

	for i := range m.Instructions {
		for _, acc := range m.Instructions[i].Accounts {
			if !acc.IsSigner {
				continue
			}
			if _, ok := seen[acc.Address]; ok {
				continue
			}
			seen[acc.Address] = struct{}{}
			res = append(res, acc.Address)
		}
	}

	return res
}

// Accounts returns unique identities referenced by the message including fee
// payer and invoked programs.
func (m *Message) Accounts() []identity.Identity {
	res := []identity.Identity{m.FeePayer}
	seen := map[identity.Identity]struct{}{m.FeePayer: {}}

	add := func(id identity.Identity) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			res = append(res, id)
		}
	}

	for i := range m.Instructions {
		for _, acc := range m.Instructions[i].Accounts {
			add(acc.Address)
		}
		add(m.Instructions[i].ProgramID)
	}

	return res
}

// Bytes returns serialized message, the payload for signing.
func (m *Message) Bytes() ([]byte, error) {
	w := io.NewBufBinWriter()
	m.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return nil, w.Err
	}
	return w.Bytes(), nil
}

// EncodeBinary implements io.Serializable.
func (m *Message) EncodeBinary(w *io.BinWriter) {
	m.FeePayer.EncodeBinary(w)
	w.WriteBytes(m.RecentBlockhash[:])
	w.WriteVarUint(uint64(len(m.Instructions)))
	for i := range m.Instructions {
		m.Instructions[i].EncodeBinary(w)
	}
}

// DecodeBinary implements io.Serializable.
func (m *Message) DecodeBinary(r *io.BinReader) {
	m.FeePayer.DecodeBinary(r)
	r.ReadBytes(m.RecentBlockhash[:])

	n := r.ReadVarUint()
	if n > MaxInstructions {
		r.Err = fmt.Errorf("too many instructions: %d", n)
		return
	}

	m.Instructions = make([]Instruction, n)
	for i := range m.Instructions {
		m.Instructions[i].DecodeBinary(r)
	}
}

// EncodeBinary implements io.Serializable.
func (ix *Instruction) EncodeBinary(w *io.BinWriter) {
	ix.ProgramID.EncodeBinary(w)
	w.WriteVarUint(uint64(len(ix.Accounts)))
	for _, acc := range ix.Accounts {
		acc.Address.EncodeBinary(w)
		w.WriteBool(acc.IsSigner)
		w.WriteBool(acc.IsWritable)
	}
	w.WriteVarBytes(ix.Data)
}

// DecodeBinary implements io.Serializable.
func (ix *Instruction) DecodeBinary(r *io.BinReader) {
	ix.ProgramID.DecodeBinary(r)

	n := r.ReadVarUint()
	if n > MaxAccounts {
		r.Err = fmt.Errorf("too many accounts: %d", n)
		return
	}

	ix.Accounts = make([]AccountMeta, n)
	for i := range ix.Accounts {
		ix.Accounts[i].Address.DecodeBinary(r)
		ix.Accounts[i].IsSigner = r.ReadBool()
		ix.Accounts[i].IsWritable = r.ReadBool()
	}

	ix.Data = r.ReadVarBytes(MaxDataSize)
}

// Sign signs the message with the keys. Every signer of the message must
// have its key among keys, other keys are ignored.
func (t *Transaction) Sign(keys ...*identity.PrivateKey) error {
	msg, err := t.Message.Bytes()
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	byID := make(map[identity.Identity]*identity.PrivateKey, len(keys))
	for _, k := range keys {
		byID[k.PublicKey()] = k
	}

	signers := t.Message.Signers()
	sigs := make([]Signature, len(signers))

	for i, id := range signers {
		k, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingKey, id)
		}
		copy(sigs[i][:], k.Sign(msg))
	}

	t.Signatures = sigs

	return nil
}

// Verify checks that every signer of the message provided a valid signature.
func (t *Transaction) Verify() error {
	if len(t.Message.Instructions) == 0 {
		return ErrNoInstructions
	}

	signers := t.Message.Signers()
	if len(t.Signatures) != len(signers) {
		return fmt.Errorf("%w: expected %d signatures, got %d", ErrInvalidSignature, len(signers), len(t.Signatures))
	}

	msg, err := t.Message.Bytes()
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	for i, id := range signers {
		if !identity.Verify(id, msg, t.Signatures[i][:]) {
			return fmt.Errorf("%w: signer %s", ErrInvalidSignature, id)
		}
	}

	return nil
}

// ID returns the signature of the fee payer identifying the transaction.
func (t *Transaction) ID() Signature {
	if len(t.Signatures) == 0 {
		return Signature{}
	}
	return t.Signatures[0]
}

// EncodeBinary implements io.Serializable.
func (t *Transaction) EncodeBinary(w *io.BinWriter) {
	w.WriteVarUint(uint64(len(t.Signatures)))
	for i := range t.Signatures {
		w.WriteBytes(t.Signatures[i][:])
	}
	t.Message.EncodeBinary(w)
}

// DecodeBinary implements io.Serializable.
func (t *Transaction) DecodeBinary(r *io.BinReader) {
	n := r.ReadVarUint()
	if n > MaxAccounts {
		r.Err = fmt.Errorf("too many signatures: %d", n)
		return
	}

	t.Signatures = make([]Signature, n)
	for i := range t.Signatures {
		r.ReadBytes(t.Signatures[i][:])
	}
	t.Message.DecodeBinary(r)
}

// Bytes returns serialized transaction.
func (t *Transaction) Bytes() ([]byte, error) {
	w := io.NewBufBinWriter()
	t.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return nil, w.Err
	}
	return w.Bytes(), nil
}

// NewTransactionFromBytes decodes Transaction from b.
func NewTransactionFromBytes(b []byte) (*Transaction, error) {
	var t Transaction

	r := io.NewBinReaderFromBuf(b)
	t.DecodeBinary(r)
	if r.Err != nil {
		return nil, fmt.Errorf("decode transaction: %w", r.Err)
	}

	return &t, nil
}
