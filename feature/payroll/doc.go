// Package payroll exposes the payroll reconciliation workflow over HTTP.
//
// The Service ties the record store to the reconciliation engine, the bulk sweeper,
// snapshot persistence and the audit history. Every mutation (batch load, check,
// manual confirmation, sweep step) is followed by a snapshot write and an audit
// entry; neither can fail the mutation itself.
//
// # HTTP Endpoints
//
//   - GET    /api/records : All records in ingestion order.
//   - POST   /api/records : Load a batch (JSON or CSV), replacing every record.
//   - GET    /api/records/summary : Total, confirmed and pending counts.
//   - GET    /api/records/export : CSV export.
//   - GET    /api/records/:address : One record.
//   - GET    /api/records/:address/history : Audit trail (supports ?limit=).
//   - POST   /api/records/:address/check : Reconcile one address (supports ?expected=).
//   - POST   /api/records/:address/confirm : Manual confirmation.
//   - POST   /api/sweep : Start a bulk sweep.
//   - GET    /api/sweep : Sweep progress.
//   - DELETE /api/sweep : Cancel the sweep between addresses.
//
// Errors are returned as {"error": "..."} with 404 for unknown addresses, 400 for
// invalid input and 409 when a sweep is already running.
package payroll
