// Package reconcile decides which ledger transfer, if any, settles an expected payroll payment.
//
// For one recipient address and one expected amount the engine fetches the recipient's
// recent transfer history, picks at most one transfer under a fixed matching policy, derives
// a status, and writes the outcome back into the record store.
//
// # Matching Policy
//
// Every incoming transfer (recipient equal to the address, case-insensitive) is placed in a
// month bucket and an amount fit:
//
//   - Bucket: current when the transfer's month and year equal the evaluation instant's,
//     non-current otherwise.
//   - Fit: exact when |actual - expected| < 0.01, close when 0.01 <= |actual - expected| <
//     0.5 * expected, no fit otherwise (the transfer is dropped).
//
// Each (bucket, fit) cell keeps the first transfer seen in ledger order. The winner is the
// first non-empty cell in the order current+exact, current+close, non-current+exact,
// non-current+close. The status follows from the winner's bucket and whether its amount
// differs from the expected amount by more than 0.01:
//
//	current,     no difference -> confirmed
//	current,     difference    -> amount_difference
//	non-current, no difference -> non_current_month_confirmed
//	non-current, difference    -> non_current_month_difference
//	no winner                  -> not_found
//
// A failed fetch records check_failed and leaves every other field untouched. The engine
// never retries on its own.
//
// # Concurrency
//
// Store writes for one address are serialized by a per-address lock, and concurrent fetches
// for the same address share a single ledger request. A manual confirmation that lands while
// a fetch is in flight wins: the automatic result is returned with Discarded set and is not
// written.
//
// # Usage
//
//	engine := reconcile.NewEngine(store, ledgerClient, cfg, logger)
//	res, err := engine.Check(ctx, "TXyz...", time.Now())
//	if errors.Is(err, reconcile.ErrAddressNotFound) {
//	    // unknown payee, the ledger was not contacted
//	}
package reconcile
