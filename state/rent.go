package state

// Rent parameters define the minimum balance an account must keep to exist.
type Rent struct {
	// Price of a byte of account storage for a year, lamports.
	LamportsPerByteYear uint64
	// Number of years the minimum balance must cover.
	ExemptionThreshold uint64
}

// AccountStorageOverhead is the number of bytes every account occupies in
// addition to its data.
const AccountStorageOverhead = 128

// DefaultRent is the rent configuration used by default.
var DefaultRent = Rent{
	LamportsPerByteYear: 3480,
	ExemptionThreshold:  2,
}

// MinimumBalance returns the minimum balance an account with dataLen bytes of
// data needs.
func (r Rent) MinimumBalance(dataLen int) uint64 {
	return (AccountStorageOverhead + uint64(dataLen)) * r.LamportsPerByteYear * r.ExemptionThreshold
}

// LamportsPerSOL is the number of lamports in one native token.
const LamportsPerSOL = 1_000_000_000
