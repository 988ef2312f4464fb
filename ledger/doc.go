/*
Package ledger implements a single-node ledger runtime executing signed
transactions against account storage.

Every transaction is verified, charged a fee and executed atomically: program
instructions run against a cached view of the storage which is persisted only
if all of them succeed. Transactions touching the same accounts are
serialized, disjoint ones run in parallel. The ledger is used as the
transaction/RPC collaborator of the client bindings and in tests.

# Programs

Programs implement Program interface and are registered on ledger creation.
The system program (see sysprog package) is always present and owns wallet
accounts.
*/
package ledger

/*
Ledger storage model.

Current conventions:
 <address>: 32-byte account identity
 <signature>: 64-byte transaction signature

# Summary
Key-value storage format:
 - 'a' + <address> -> state.Account
   serialized account
 - 's' + <signature> -> little-endian uint64
   slot the transaction was processed at
 - 'm' + <name> -> []byte
   ledger metadata: version, ID, current slot, recent blockhashes and faucet
   key seed

# Blockhashes
Each processed transaction advances the slot and produces a new blockhash.
Transactions must reference one of the last Config.MaxBlockhashAge
blockhashes.
*/
