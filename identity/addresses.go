package identity

// Well-known ledger addresses.
var (
	// SystemProgram owns plain wallet accounts and creates new ones.
	SystemProgram = MustDecode("11111111111111111111111111111111")

	// RentSysvar is the address of the rent parameters account.
	RentSysvar = MustDecode("SysvarRent111111111111111111111111111111111")

	// NativeLoader owns executable program accounts.
	NativeLoader = MustDecode("NativeLoader1111111111111111111111111111111")
)
