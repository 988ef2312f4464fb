/*
Package ledgertest provides helpers for testing code working with the ledger:
in-memory ledger instances and funded wallet accounts.
*/
package ledgertest

import (
	"testing"

	"github.com/nspcc-dev/voting-program/identity"
	"github.com/nspcc-dev/voting-program/ledger"
	"github.com/nspcc-dev/voting-program/state"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// DefaultBalance is the balance of accounts created by NewAccount.
const DefaultBalance = 10 * state.LamportsPerSOL

// NewLedger creates in-memory ledger with given programs. The ledger is
// closed on test cleanup.
func NewLedger(t testing.TB, programs ...ledger.Program) *ledger.Ledger {
	l, err := ledger.New(ledger.Config{Logger: zaptest.NewLogger(t)}, programs...)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, l.Close())
	})

	return l
}

// NewAccount generates a key and funds its account with DefaultBalance.
func NewAccount(t testing.TB, l *ledger.Ledger) *identity.PrivateKey {
	return NewAccountWithBalance(t, l, DefaultBalance)
}

// NewAccountWithBalance generates a key and funds its account with the
// given amount.
func NewAccountWithBalance(t testing.TB, l *ledger.Ledger, lamports uint64) *identity.PrivateKey {
	k, err := identity.NewPrivateKey()
	require.NoError(t, err)

	if lamports > 0 {
		_, err = l.RequestAirdrop(k.PublicKey(), lamports)
		require.NoError(t, err)
	}

	return k
}
