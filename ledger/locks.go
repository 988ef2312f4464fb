package ledger

import (
	"slices"

	"github.com/algorand/go-deadlock"
	"github.com/nspcc-dev/voting-program/identity"
)

// lockTable holds per-account mutexes of accounts used by in-flight
// transactions.
type lockTable struct {
	mtx   deadlock.Mutex
	locks map[identity.Identity]*accountLock
}

type accountLock struct {
	deadlock.Mutex
	refs int
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[identity.Identity]*accountLock)}
}

// lock acquires locks of all given accounts in ascending address order and
// returns function releasing them.
func (t *lockTable) lock(ids []identity.Identity) func() {
	ids = slices.Clone(ids)
	slices.SortFunc(ids, identity.Identity.Compare)
	ids = slices.Compact(ids)

	held := make([]*accountLock, len(ids))

	t.mtx.Lock()
	for i, id := range ids {
		l, ok := t.locks[id]
		if !ok {
			l = new(accountLock)
			t.locks[id] = l
		}
		l.refs++
		held[i] = l
	}
	t.mtx.Unlock()

	for _, l := range held {
		l.Lock()
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}

		t.mtx.Lock()
		for i, id := range ids {
			held[i].refs--
			if held[i].refs == 0 {
				delete(t.locks, id)
			}
		}
		t.mtx.Unlock()
	}
}

// size returns the number of accounts currently locked or waited for.
func (t *lockTable) size() int {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return len(t.locks)
}
