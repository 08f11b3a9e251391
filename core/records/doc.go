// Package records holds the in-memory payee record store.
//
// A PayeeRecord is one expected payroll disbursement: a fixed amount owed to a fixed
// ledger address for the current evaluation month. Records are created from an ingested
// batch with StatusPending and are afterwards mutated only by the reconciliation engine
// or by an explicit manual confirmation.
//
// # Store Interface
//
// The Store interface is the only way the engine and the HTTP features touch records:
//   - LoadBatch: replaces the active set, dropping rows without an address or a positive amount
//   - Restore: replaces the active set from a snapshot, keeping reconciliation state
//   - Find / All: point lookup (case-insensitive) and ordered iteration, both returning copies
//   - Update: applies a Mutation to a single record
//   - ManualConfirm: marks a record as paid in another currency
//
// Per-address write serialization is the caller's job (see core/reconcile). The memory
// store only guards its index so that a batch reload cannot race a lookup.
//
// # Usage
//
//	store := records.NewMemoryStore()
//	loaded, skipped := store.LoadBatch(rows)
//	rec, ok := store.Find("TXyz...")
package records
