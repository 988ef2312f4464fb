package ledger

import (
	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/nspcc-dev/voting-program/state"
	"go.uber.org/zap"
)

// Defaults used for zero Config fields.
const (
	DefaultFeePerSignature = 5000
	DefaultMaxBlockhashAge = 150
	DefaultFaucetLamports  = 500_000_000 * state.LamportsPerSOL
)

// Config groups ledger parameters.
type Config struct {
	// Writes transaction processing into the log. Optional.
	Logger *zap.Logger

	// Storage backend, in-memory if Type is empty.
	DB dbconfig.DBConfiguration

	// Rent applied to new accounts. DefaultRent if zero.
	Rent state.Rent

	// Fee charged for every transaction signature, lamports.
	FeePerSignature uint64

	// Number of recent blockhashes transactions may reference.
	MaxBlockhashAge int

	// Initial balance of the faucet serving airdrops. Applied on the first
	// ledger start only.
	FaucetLamports uint64
}

func (c *Config) setDefaults() {
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.DB.Type == "" {
		c.DB.Type = dbconfig.InMemoryDB
	}
	if c.Rent == (state.Rent{}) {
		c.Rent = state.DefaultRent
	}
	if c.FeePerSignature == 0 {
		c.FeePerSignature = DefaultFeePerSignature
	}
	if c.MaxBlockhashAge <= 0 {
		c.MaxBlockhashAge = DefaultMaxBlockhashAge
	}
	if c.FaucetLamports == 0 {
		c.FaucetLamports = DefaultFaucetLamports
	}
}
