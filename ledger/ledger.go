package ledger

import (
	"errors"
	"fmt"
	"slices"

	"github.com/algorand/go-deadlock"
	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/voting-program/common"
	"github.com/nspcc-dev/voting-program/identity"
	"github.com/nspcc-dev/voting-program/ledger/sysprog"
	"github.com/nspcc-dev/voting-program/state"
	"github.com/nspcc-dev/voting-program/transaction"
	"go.uber.org/zap"
)

// Ledger executes transactions against account storage.
type Ledger struct {
	cfg      Config
	log      *zap.Logger
	backend  storage.Store
	store    *storage.MemCachedStore
	programs map[identity.Identity]Program
	locks    *lockTable

	id     uuid.UUID
	faucet *identity.PrivateKey

	mtx         deadlock.RWMutex
	slot        uint64
	blockhashes []util.Uint256
	inflight    map[transaction.Signature]struct{}
}

// New opens ledger storage configured in cfg and registers given programs
// in addition to the system one. Persistent storage is initialized on the
// first start.
func New(cfg Config, programs ...Program) (*Ledger, error) {
	cfg.setDefaults()

	backend, err := storage.NewStore(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	l := &Ledger{
		cfg:      cfg,
		log:      cfg.Logger,
		backend:  backend,
		store:    storage.NewMemCachedStore(backend),
		programs: make(map[identity.Identity]Program, len(programs)+1),
		locks:    newLockTable(),
		inflight: make(map[transaction.Signature]struct{}),
	}

	for _, p := range append([]Program{systemProgram{}}, programs...) {
		if _, ok := l.programs[p.ID()]; ok {
			_ = backend.Close()
			return nil, fmt.Errorf("duplicate program %s", p.ID())
		}
		l.programs[p.ID()] = p
	}

	if err := l.open(); err != nil {
		_ = backend.Close()
		return nil, err
	}

	l.log.Info("ledger opened",
		zap.Stringer("id", l.id),
		zap.String("db", cfg.DB.Type),
		zap.Uint64("slot", l.slot),
		zap.Int("programs", len(l.programs)))

	return l, nil
}

func (l *Ledger) open() error {
	ver, err := l.store.Get(metaVersion)
	switch {
	case errors.Is(err, storage.ErrKeyNotFound):
		err = l.initialize()
	case err != nil:
		return fmt.Errorf("read ledger version: %w", err)
	default:
		err = l.load(ver)
	}
	if err != nil {
		return err
	}

	for id := range l.programs {
		_, err := getAccount(l.store, id)
		if err == nil {
			continue
		}
		if !isNotFound(err) {
			return err
		}
		err = putAccount(l.store, id, &state.Account{
			Lamports:   1,
			Owner:      identity.NativeLoader,
			Executable: true,
		})
		if err != nil {
			return err
		}
	}

	if _, err := l.store.Persist(); err != nil {
		return fmt.Errorf("persist ledger metadata: %w", err)
	}
	return nil
}

func (l *Ledger) initialize() error {
	faucet, err := identity.NewPrivateKey()
	if err != nil {
		return fmt.Errorf("generate faucet key: %w", err)
	}

	l.id = uuid.New()
	l.faucet = faucet
	l.blockhashes = []util.Uint256{hash.Sha256(l.id[:])}

	l.store.Put(metaVersion, encodeU32(uint32(common.Version)))
	l.store.Put(metaID, l.id[:])
	l.store.Put(metaFaucet, faucet.Seed())
	l.putChainState()

	return putAccount(l.store, faucet.PublicKey(), &state.Account{
		Lamports: l.cfg.FaucetLamports,
		Owner:    identity.SystemProgram,
	})
}

func (l *Ledger) load(rawVersion []byte) error {
	rawVer, err := decodeU32(rawVersion)
	if err != nil {
		return fmt.Errorf("decode ledger version: %w", err)
	}

	ver := int(rawVer)
	if ver != common.Version {
		if err := common.CheckVersion(ver); err != nil {
			return fmt.Errorf("ledger version %s: %w", common.VersionString(ver), err)
		}
		l.log.Info("updating ledger version",
			zap.String("from", common.VersionString(ver)),
			zap.String("to", common.VersionString(common.Version)))
		l.store.Put(metaVersion, encodeU32(uint32(common.Version)))
	}

	raw, err := l.store.Get(metaID)
	if err != nil {
		return fmt.Errorf("read ledger ID: %w", err)
	}
	if l.id, err = uuid.FromBytes(raw); err != nil {
		return fmt.Errorf("decode ledger ID: %w", err)
	}

	if raw, err = l.store.Get(metaFaucet); err != nil {
		return fmt.Errorf("read faucet key: %w", err)
	}
	if l.faucet, err = identity.NewPrivateKeyFromSeed(raw); err != nil {
		return fmt.Errorf("decode faucet key: %w", err)
	}

	if raw, err = l.store.Get(metaSlot); err != nil {
		return fmt.Errorf("read slot: %w", err)
	}
	if l.slot, err = decodeU64(raw); err != nil {
		return fmt.Errorf("decode slot: %w", err)
	}

	if raw, err = l.store.Get(metaBlockhashes); err != nil {
		return fmt.Errorf("read blockhashes: %w", err)
	}
	if len(raw) == 0 || len(raw)%util.Uint256Size != 0 {
		return fmt.Errorf("invalid blockhashes length %d", len(raw))
	}
	for i := 0; i < len(raw); i += util.Uint256Size {
		var h util.Uint256
		copy(h[:], raw[i:])
		l.blockhashes = append(l.blockhashes, h)
	}

	return nil
}

// putChainState stores current slot and blockhashes. Must be called under
// write lock or before the ledger is shared.
func (l *Ledger) putChainState() {
	l.store.Put(metaSlot, encodeU64(l.slot))

	raw := make([]byte, 0, len(l.blockhashes)*util.Uint256Size)
	for _, h := range l.blockhashes {
		raw = append(raw, h[:]...)
	}
	l.store.Put(metaBlockhashes, raw)
}

// ID returns unique identifier of the ledger instance assigned on the first
// start.
func (l *Ledger) ID() uuid.UUID {
	return l.id
}

// Faucet returns address of the account funding airdrops.
func (l *Ledger) Faucet() identity.Identity {
	return l.faucet.PublicKey()
}

// Slot returns the number of processed transactions.
func (l *Ledger) Slot() uint64 {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	return l.slot
}

// LatestBlockhash returns blockhash new transactions should reference.
func (l *Ledger) LatestBlockhash() (util.Uint256, error) {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	return l.blockhashes[len(l.blockhashes)-1], nil
}

// Rent returns rent parameters of the ledger.
func (l *Ledger) Rent() state.Rent {
	return l.cfg.Rent
}

// GetAccount returns account state. ErrAccountNotFound is returned if there
// is no such account.
func (l *Ledger) GetAccount(id identity.Identity) (*state.Account, error) {
	return getAccount(l.store, id)
}

// GetBalance returns account balance, zero for missing accounts.
func (l *Ledger) GetBalance(id identity.Identity) (uint64, error) {
	acc, err := getAccount(l.store, id)
	if err != nil {
		if isNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	return acc.Lamports, nil
}

// SignatureStatus returns the slot the transaction was processed at. ok is
// false for unknown transactions.
func (l *Ledger) SignatureStatus(sig transaction.Signature) (slot uint64, ok bool, err error) {
	raw, err := l.store.Get(signatureKey(sig))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("read signature status: %w", err)
	}
	slot, err = decodeU64(raw)
	if err != nil {
		return 0, false, fmt.Errorf("decode signature status: %w", err)
	}
	return slot, true, nil
}

// IterateAccounts calls f for every account owned by the program in ascending
// address order until f returns false.
func (l *Ledger) IterateAccounts(owner identity.Identity, f func(identity.Identity, *state.Account) bool) error {
	var iterErr error

	l.store.Seek(storage.SeekRange{Prefix: []byte{prefixAccount}}, func(k, v []byte) bool {
		if len(k) < identity.Size {
			iterErr = fmt.Errorf("invalid account key length %d", len(k))
			return false
		}

		id, _ := identity.FromBytes(k[len(k)-identity.Size:])

		acc := new(state.Account)
		if err := acc.FromBytes(v); err != nil {
			iterErr = fmt.Errorf("account %s: %w", id, err)
			return false
		}

		if acc.Owner != owner {
			return true
		}
		return f(id, acc)
	})

	return iterErr
}

// RequestAirdrop transfers lamports from the faucet to the account.
func (l *Ledger) RequestAirdrop(to identity.Identity, lamports uint64) (transaction.Signature, error) {
	bh, err := l.LatestBlockhash()
	if err != nil {
		return transaction.Signature{}, err
	}

	tx := transaction.New(l.Faucet(), bh, sysprog.Transfer(l.Faucet(), to, lamports))
	if err := tx.Sign(l.faucet); err != nil {
		return transaction.Signature{}, fmt.Errorf("sign airdrop: %w", err)
	}

	return l.SendTransaction(tx)
}

// SendTransaction verifies and executes the transaction. The fee is charged
// even if some instruction fails, in this case *TransactionError is returned
// and no other changes are made.
func (l *Ledger) SendTransaction(tx *transaction.Transaction) (transaction.Signature, error) {
	if err := tx.Verify(); err != nil {
		return transaction.Signature{}, fmt.Errorf("verify transaction: %w", err)
	}

	sig := tx.ID()

	if err := l.admit(tx); err != nil {
		return sig, err
	}
	defer l.release(sig)

	unlock := l.locks.lock(l.lockedAccounts(&tx.Message))
	defer unlock()

	return sig, l.execute(tx, true)
}

// SimulateTransaction executes the transaction without persisting any
// changes and returns the error SendTransaction would return.
func (l *Ledger) SimulateTransaction(tx *transaction.Transaction) error {
	if err := tx.Verify(); err != nil {
		return fmt.Errorf("verify transaction: %w", err)
	}

	l.mtx.RLock()
	err := l.checkBlockhash(tx.Message.RecentBlockhash)
	l.mtx.RUnlock()
	if err != nil {
		return err
	}

	unlock := l.locks.lock(l.lockedAccounts(&tx.Message))
	defer unlock()

	return l.execute(tx, false)
}

// Close persists cached changes and closes the storage.
func (l *Ledger) Close() error {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if _, err := l.store.Persist(); err != nil {
		_ = l.backend.Close()
		return fmt.Errorf("persist: %w", err)
	}
	return l.backend.Close()
}

func (l *Ledger) admit(tx *transaction.Transaction) error {
	sig := tx.ID()

	l.mtx.Lock()
	defer l.mtx.Unlock()

	if _, ok := l.inflight[sig]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyProcessed, sig)
	}

	processed, err := isProcessed(l.store, sig)
	if err != nil {
		return err
	}
	if processed {
		return fmt.Errorf("%w: %s", ErrAlreadyProcessed, sig)
	}

	if err := l.checkBlockhash(tx.Message.RecentBlockhash); err != nil {
		return err
	}

	l.inflight[sig] = struct{}{}

	return nil
}

func (l *Ledger) release(sig transaction.Signature) {
	l.mtx.Lock()
	delete(l.inflight, sig)
	l.mtx.Unlock()
}

func (l *Ledger) checkBlockhash(h util.Uint256) error {
	if !slices.Contains(l.blockhashes, h) {
		return fmt.Errorf("%w: %s", ErrBlockhashNotFound, h.StringLE())
	}
	return nil
}

// lockedAccounts returns accounts the transaction may read or write.
func (l *Ledger) lockedAccounts(msg *transaction.Message) []identity.Identity {
	return slices.DeleteFunc(msg.Accounts(), func(id identity.Identity) bool {
		_, isProgram := l.programs[id]
		return isProgram || id == identity.RentSysvar
	})
}

func (l *Ledger) execute(tx *transaction.Transaction, persist bool) error {
	msg := &tx.Message
	sig := tx.ID()

	feeCache := storage.NewMemCachedStore(l.store)

	payer, err := getAccount(feeCache, msg.FeePayer)
	if err != nil {
		return fmt.Errorf("fee payer: %w", err)
	}
	if !payer.IsSystemOwned() {
		return fmt.Errorf("fee payer: %w: owned by %s", ErrInvalidAccountOwner, payer.Owner)
	}

	fee := l.cfg.FeePerSignature * uint64(len(tx.Signatures))
	if payer.Lamports < fee {
		return fmt.Errorf("fee payer: %w: has %d, fee %d", ErrInsufficientFunds, payer.Lamports, fee)
	}
	payer.Lamports -= fee
	if err := putAccount(feeCache, msg.FeePayer, payer); err != nil {
		return err
	}

	signers := make(map[identity.Identity]struct{})
	for _, id := range msg.Signers() {
		signers[id] = struct{}{}
	}

	execCache := storage.NewMemCachedStore(feeCache)

	var txErr error
	for i := range msg.Instructions {
		if err := l.executeInstruction(execCache, signers, &msg.Instructions[i]); err != nil {
			txErr = &TransactionError{Signature: sig, Instruction: i, Err: err}
			break
		}
	}

	if !persist {
		return txErr
	}

	if txErr == nil {
		if _, err := execCache.Persist(); err != nil {
			return fmt.Errorf("persist execution results: %w", err)
		}
	}

	if err := l.commit(feeCache, sig); err != nil {
		return err
	}

	if txErr != nil {
		l.log.Info("transaction failed",
			zap.Stringer("signature", sig),
			zap.Uint64("fee", fee),
			zap.Error(txErr))
	} else {
		l.log.Debug("transaction processed",
			zap.Stringer("signature", sig),
			zap.Uint64("fee", fee),
			zap.Int("instructions", len(msg.Instructions)))
	}

	return txErr
}

func (l *Ledger) executeInstruction(s kv, signers map[identity.Identity]struct{}, ix *transaction.Instruction) error {
	p, ok := l.programs[ix.ProgramID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrProgramNotFound, ix.ProgramID)
	}

	return p.Execute(&Context{
		store:   s,
		rent:    l.cfg.Rent,
		log:     l.log,
		program: ix.ProgramID,
		ix:      ix,
		signers: signers,
	}, ix.Data)
}

// commit persists changes of the processed transaction and advances the
// ledger.
func (l *Ledger) commit(changes *storage.MemCachedStore, sig transaction.Signature) error {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	slot := l.slot + 1
	markProcessed(changes, sig, slot)

	if _, err := changes.Persist(); err != nil {
		return fmt.Errorf("persist transaction: %w", err)
	}

	prev := l.blockhashes[len(l.blockhashes)-1]
	w := io.NewBufBinWriter()
	w.WriteBytes(prev[:])
	w.WriteU64LE(slot)
	next := hash.Sha256(w.Bytes())

	l.slot = slot
	l.blockhashes = append(l.blockhashes, next)
	if len(l.blockhashes) > l.cfg.MaxBlockhashAge {
		l.blockhashes = slices.Clone(l.blockhashes[len(l.blockhashes)-l.cfg.MaxBlockhashAge:])
	}
	l.putChainState()

	if _, err := l.store.Persist(); err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}

	return nil
}
