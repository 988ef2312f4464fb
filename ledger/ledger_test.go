package ledger_test

import (
	"encoding/binary"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/nspcc-dev/voting-program/identity"
	"github.com/nspcc-dev/voting-program/ledger"
	"github.com/nspcc-dev/voting-program/ledger/ledgertest"
	"github.com/nspcc-dev/voting-program/ledger/sysprog"
	"github.com/nspcc-dev/voting-program/pda"
	"github.com/nspcc-dev/voting-program/state"
	"github.com/nspcc-dev/voting-program/transaction"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const fee = ledger.DefaultFeePerSignature

var errBoom = errors.New("boom")

const (
	opInit byte = iota
	opIncrement
	opFail
)

// counter is a program keeping per-payer counters at program addresses
// derived from "counter" and the payer address.
type counter struct {
	id identity.Identity
}

func newCounter(t *testing.T) counter {
	k, err := identity.NewPrivateKey()
	require.NoError(t, err)
	return counter{id: k.PublicKey()}
}

func (c counter) ID() identity.Identity { return c.id }

func (c counter) Execute(ctx *ledger.Context, data []byte) error {
	accs := ctx.Accounts()
	if len(accs) < 2 || len(data) == 0 {
		return errors.New("invalid instruction")
	}

	payer, rec := accs[0].Address, accs[1].Address

	switch data[0] {
	case opInit:
		return ctx.CreateAccount(payer, rec, 8, [][]byte{[]byte("counter"), payer[:], data[1:2]})
	case opIncrement:
		acc, err := ctx.Account(rec)
		if err != nil {
			return err
		}
		v := binary.LittleEndian.Uint64(acc.Data) + 1
		return ctx.SetData(rec, binary.LittleEndian.AppendUint64(nil, v))
	case opFail:
		return errBoom
	}

	return errors.New("unknown op")
}

func (c counter) address(t *testing.T, payer identity.Identity) (identity.Identity, uint8) {
	addr, bump, err := pda.FindProgramAddress([][]byte{[]byte("counter"), payer[:]}, c.id)
	require.NoError(t, err)
	return addr, bump
}

func (c counter) instruction(op byte, payer, rec identity.Identity, args ...byte) transaction.Instruction {
	return transaction.Instruction{
		ProgramID: c.id,
		Accounts: []transaction.AccountMeta{
			{Address: payer, IsSigner: true, IsWritable: true},
			{Address: rec, IsWritable: true},
		},
		Data: append([]byte{op}, args...),
	}
}

func send(t *testing.T, l *ledger.Ledger, payer *identity.PrivateKey, ixs ...transaction.Instruction) (transaction.Signature, error) {
	tx := newTx(t, l, payer, ixs...)
	return l.SendTransaction(tx)
}

func newTx(t *testing.T, l *ledger.Ledger, payer *identity.PrivateKey, ixs ...transaction.Instruction) *transaction.Transaction {
	bh, err := l.LatestBlockhash()
	require.NoError(t, err)

	tx := transaction.New(payer.PublicKey(), bh, ixs...)
	require.NoError(t, tx.Sign(payer))
	return tx
}

func balance(t *testing.T, l *ledger.Ledger, id identity.Identity) uint64 {
	b, err := l.GetBalance(id)
	require.NoError(t, err)
	return b
}

func TestAirdrop(t *testing.T) {
	l := ledgertest.NewLedger(t)

	faucetBefore := balance(t, l, l.Faucet())
	k := ledgertest.NewAccount(t, l)

	require.EqualValues(t, ledgertest.DefaultBalance, balance(t, l, k.PublicKey()))
	require.Equal(t, faucetBefore-ledgertest.DefaultBalance-fee, balance(t, l, l.Faucet()))
	require.EqualValues(t, 1, l.Slot())

	acc, err := l.GetAccount(k.PublicKey())
	require.NoError(t, err)
	require.True(t, acc.IsSystemOwned())
	require.Empty(t, acc.Data)

	unknown, err := identity.NewPrivateKey()
	require.NoError(t, err)

	_, err = l.GetAccount(unknown.PublicKey())
	require.ErrorIs(t, err, ledger.ErrAccountNotFound)
	require.Zero(t, balance(t, l, unknown.PublicKey()))
}

func TestProgramAccounts(t *testing.T) {
	l := ledgertest.NewLedger(t)

	acc, err := l.GetAccount(identity.SystemProgram)
	require.NoError(t, err)
	require.True(t, acc.Executable)
	require.Equal(t, identity.NativeLoader, acc.Owner)
}

func TestTransfer(t *testing.T) {
	l := ledgertest.NewLedger(t)

	from := ledgertest.NewAccount(t, l)
	to, err := identity.NewPrivateKey()
	require.NoError(t, err)

	_, err = send(t, l, from, sysprog.Transfer(from.PublicKey(), to.PublicKey(), 1000))
	require.NoError(t, err)

	require.EqualValues(t, 1000, balance(t, l, to.PublicKey()))
	require.EqualValues(t, ledgertest.DefaultBalance-1000-fee, balance(t, l, from.PublicKey()))

	t.Run("insufficient funds", func(t *testing.T) {
		before := balance(t, l, from.PublicKey())

		_, err := send(t, l, from, sysprog.Transfer(from.PublicKey(), to.PublicKey(), before))

		var txErr *ledger.TransactionError
		require.ErrorAs(t, err, &txErr)
		require.Equal(t, 0, txErr.Instruction)
		require.ErrorIs(t, err, ledger.ErrInsufficientFunds)

		require.Equal(t, before-fee, balance(t, l, from.PublicKey()))
		require.EqualValues(t, 1000, balance(t, l, to.PublicKey()))
	})

	t.Run("unfunded fee payer", func(t *testing.T) {
		poor, err := identity.NewPrivateKey()
		require.NoError(t, err)

		slot := l.Slot()
		tx := newTx(t, l, poor, sysprog.Transfer(poor.PublicKey(), to.PublicKey(), 1))

		_, err = l.SendTransaction(tx)
		require.ErrorIs(t, err, ledger.ErrAccountNotFound)
		require.Equal(t, slot, l.Slot())

		_, ok, err := l.SignatureStatus(tx.ID())
		require.NoError(t, err)
		require.False(t, ok)
	})
}

func TestProgramExecution(t *testing.T) {
	c := newCounter(t)
	l := ledgertest.NewLedger(t, c)

	payer := ledgertest.NewAccount(t, l)
	rec, bump := c.address(t, payer.PublicKey())
	rent := l.Rent().MinimumBalance(8)

	_, err := send(t, l, payer, c.instruction(opInit, payer.PublicKey(), rec, bump))
	require.NoError(t, err)

	acc, err := l.GetAccount(rec)
	require.NoError(t, err)
	require.Equal(t, c.id, acc.Owner)
	require.Equal(t, rent, acc.Lamports)
	require.Equal(t, make([]byte, 8), acc.Data)
	require.Equal(t, ledgertest.DefaultBalance-rent-fee, balance(t, l, payer.PublicKey()))

	_, err = send(t, l, payer,
		c.instruction(opIncrement, payer.PublicKey(), rec),
		c.instruction(opIncrement, payer.PublicKey(), rec))
	require.NoError(t, err)

	acc, err = l.GetAccount(rec)
	require.NoError(t, err)
	require.EqualValues(t, 2, binary.LittleEndian.Uint64(acc.Data))

	t.Run("already exists", func(t *testing.T) {
		before := balance(t, l, payer.PublicKey())

		_, err := send(t, l, payer, c.instruction(opInit, payer.PublicKey(), rec, bump))
		require.ErrorIs(t, err, ledger.ErrAccountAlreadyExists)
		require.Equal(t, before-fee, balance(t, l, payer.PublicKey()))

		acc, err := l.GetAccount(rec)
		require.NoError(t, err)
		require.EqualValues(t, 2, binary.LittleEndian.Uint64(acc.Data))
	})

	t.Run("rollback", func(t *testing.T) {
		_, err := send(t, l, payer,
			c.instruction(opIncrement, payer.PublicKey(), rec),
			c.instruction(opFail, payer.PublicKey(), rec))

		var txErr *ledger.TransactionError
		require.ErrorAs(t, err, &txErr)
		require.Equal(t, 1, txErr.Instruction)
		require.ErrorIs(t, err, errBoom)

		acc, err := l.GetAccount(rec)
		require.NoError(t, err)
		require.EqualValues(t, 2, binary.LittleEndian.Uint64(acc.Data))
	})

	t.Run("address not derived from seeds", func(t *testing.T) {
		other, err := identity.NewPrivateKey()
		require.NoError(t, err)

		newPayer := ledgertest.NewAccount(t, l)
		_, bump := c.address(t, newPayer.PublicKey())

		_, err = send(t, l, newPayer, c.instruction(opInit, newPayer.PublicKey(), other.PublicKey(), bump))
		require.ErrorIs(t, err, ledger.ErrInvalidAccountAddress)

		_, err = l.GetAccount(other.PublicKey())
		require.ErrorIs(t, err, ledger.ErrAccountNotFound)
	})

	t.Run("missing signature", func(t *testing.T) {
		owner := ledgertest.NewAccount(t, l)
		rec, bump := c.address(t, owner.PublicKey())

		ix := c.instruction(opInit, owner.PublicKey(), rec, bump)
		ix.Accounts[0].IsSigner = false

		_, err := send(t, l, payer, ix)
		require.ErrorIs(t, err, ledger.ErrMissingSignature)
	})

	t.Run("not writable", func(t *testing.T) {
		ix := c.instruction(opIncrement, payer.PublicKey(), rec)
		ix.Accounts[1].IsWritable = false

		_, err := send(t, l, payer, ix)
		require.ErrorIs(t, err, ledger.ErrAccountNotWritable)
	})

	t.Run("unknown program", func(t *testing.T) {
		ix := c.instruction(opIncrement, payer.PublicKey(), rec)
		ix.ProgramID = payer.PublicKey()

		_, err := send(t, l, payer, ix)
		require.ErrorIs(t, err, ledger.ErrProgramNotFound)
	})

	owned := 0
	require.NoError(t, l.IterateAccounts(c.id, func(id identity.Identity, acc *state.Account) bool {
		require.Equal(t, rec, id)
		owned++
		return true
	}))
	require.Equal(t, 1, owned)
}

func TestReplay(t *testing.T) {
	l := ledgertest.NewLedger(t)

	from := ledgertest.NewAccount(t, l)
	tx := newTx(t, l, from, sysprog.Transfer(from.PublicKey(), l.Faucet(), 1))

	_, err := l.SendTransaction(tx)
	require.NoError(t, err)

	slot, ok, err := l.SignatureStatus(tx.ID())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, l.Slot(), slot)

	_, err = l.SendTransaction(tx)
	require.ErrorIs(t, err, ledger.ErrAlreadyProcessed)
}

func TestBlockhashExpiry(t *testing.T) {
	l, err := ledger.New(ledger.Config{
		Logger:          zaptest.NewLogger(t),
		MaxBlockhashAge: 2,
	})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, l.Close()) })

	from := ledgertest.NewAccount(t, l)
	old := newTx(t, l, from, sysprog.Transfer(from.PublicKey(), l.Faucet(), 1))

	ledgertest.NewAccount(t, l)
	require.NoError(t, l.SimulateTransaction(old))

	ledgertest.NewAccount(t, l)

	_, err = l.SendTransaction(old)
	require.ErrorIs(t, err, ledger.ErrBlockhashNotFound)
}

func TestInvalidSignature(t *testing.T) {
	l := ledgertest.NewLedger(t)

	from := ledgertest.NewAccount(t, l)
	tx := newTx(t, l, from, sysprog.Transfer(from.PublicKey(), l.Faucet(), 1))
	tx.Signatures[0][0] ^= 0xff

	_, err := l.SendTransaction(tx)
	require.ErrorIs(t, err, transaction.ErrInvalidSignature)
}

func TestSimulateTransaction(t *testing.T) {
	l := ledgertest.NewLedger(t)

	from := ledgertest.NewAccount(t, l)
	before := balance(t, l, from.PublicKey())
	slot := l.Slot()

	require.NoError(t, l.SimulateTransaction(newTx(t, l, from, sysprog.Transfer(from.PublicKey(), l.Faucet(), 1))))
	require.ErrorIs(t, l.SimulateTransaction(newTx(t, l, from, sysprog.Transfer(from.PublicKey(), l.Faucet(), before))),
		ledger.ErrInsufficientFunds)

	require.Equal(t, before, balance(t, l, from.PublicKey()))
	require.Equal(t, slot, l.Slot())
}

func TestConcurrentTransfers(t *testing.T) {
	const n = 16

	l := ledgertest.NewLedger(t)

	sink, err := identity.NewPrivateKey()
	require.NoError(t, err)

	keys := make([]*identity.PrivateKey, n)
	for i := range keys {
		keys[i] = ledgertest.NewAccount(t, l)
	}

	var wg sync.WaitGroup
	errs := make([]error, n)

	for i := range keys {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			bh, err := l.LatestBlockhash()
			if err != nil {
				errs[i] = err
				return
			}

			tx := transaction.New(keys[i].PublicKey(), bh,
				sysprog.Transfer(keys[i].PublicKey(), sink.PublicKey(), 10))
			if err = tx.Sign(keys[i]); err != nil {
				errs[i] = err
				return
			}

			_, errs[i] = l.SendTransaction(tx)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	require.EqualValues(t, 10*n, balance(t, l, sink.PublicKey()))
}

func TestPersistentStorage(t *testing.T) {
	cfg := ledger.Config{
		Logger: zaptest.NewLogger(t),
		DB: dbconfig.DBConfiguration{
			Type: dbconfig.BoltDB,
			BoltDBOptions: dbconfig.BoltDBOptions{
				FilePath: filepath.Join(t.TempDir(), "ledger.bolt"),
			},
		},
	}

	l, err := ledger.New(cfg)
	require.NoError(t, err)

	k := ledgertest.NewAccount(t, l)
	id := l.ID()
	faucet := l.Faucet()
	bh, err := l.LatestBlockhash()
	require.NoError(t, err)

	require.NoError(t, l.Close())

	l, err = ledger.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, l.Close()) })

	require.Equal(t, id, l.ID())
	require.Equal(t, faucet, l.Faucet())
	require.EqualValues(t, 1, l.Slot())
	require.EqualValues(t, ledgertest.DefaultBalance, balance(t, l, k.PublicKey()))

	latest, err := l.LatestBlockhash()
	require.NoError(t, err)
	require.Equal(t, bh, latest)

	_, err = l.RequestAirdrop(k.PublicKey(), 1)
	require.NoError(t, err)
}

func TestDuplicateProgram(t *testing.T) {
	c := newCounter(t)

	_, err := ledger.New(ledger.Config{}, c, c)
	require.Error(t, err)
}
