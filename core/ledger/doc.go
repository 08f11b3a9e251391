// Package ledger reads token transfer history from a TronGrid-compatible indexing API.
//
// The Client implements reconcile.TransferSource. It issues a single
//
//	GET {base_url}/v1/accounts/{address}/transactions/trc20?limit=50&contract_address={token}
//
// per call and decodes the response as untrusted JSON: a non-2xx status, a body reporting
// failure, or any entry with a missing or ill-typed field fails the whole call. Nothing
// is retried here; retry policy belongs to the caller (see core/sweep).
package ledger
