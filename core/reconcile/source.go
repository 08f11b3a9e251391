package reconcile

import "context"

// TransferSource fetches the recent transfer history of an address.
// core/ledger provides the TronGrid implementation.
type TransferSource interface {
	// Transfers returns the most recent transfers touching address, in the order the
	// ledger reports them. Any malformed entry must fail the whole call.
	Transfers(ctx context.Context, address string) ([]Transfer, error)
}
