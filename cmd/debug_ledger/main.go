package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"payroll-monitor/core/config"
	"payroll-monitor/core/ledger"
	"payroll-monitor/core/reconcile"

	"github.com/shopspring/decimal"
)

// Prints the raw transfer history of an address and how each candidate classifies.
//
//	go run ./cmd/debug_ledger <address> [expected]
func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: debug_ledger <address> [expected]")
	}
	address := os.Args[1]

	expected := decimal.Zero
	if len(os.Args) > 2 {
		d, err := decimal.NewFromString(os.Args[2])
		if err != nil {
			log.Fatalf("invalid expected amount: %v", err)
		}
		expected = d
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal(err)
	}

	client, err := ledger.NewClient(cfg.Ledger)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Reconcile.FetchTimeout)
	defer cancel()

	transfers, err := client.Transfers(ctx, address)
	if err != nil {
		log.Fatal(err)
	}

	now := time.Now()
	fmt.Printf("=== %d transfers for %s (expected %s) ===\n", len(transfers), address, expected)
	for i, tx := range transfers {
		amount := reconcile.Normalize(tx.RawAmount, cfg.Reconcile.Decimals)
		incoming := strings.EqualFold(tx.Recipient, address)

		bucket := reconcile.BucketNonCurrent
		if reconcile.SameMonth(tx.BlockTime, now) {
			bucket = reconcile.BucketCurrent
		}
		fit := reconcile.FitNone
		if incoming && expected.IsPositive() {
			fit = reconcile.ClassifyFit(amount, expected)
		}

		fmt.Printf("%2d. %s  %s  amount=%s  incoming=%t  bucket=%s  fit=%s\n",
			i+1, tx.BlockTime.Local().Format(time.RFC3339), tx.Hash, amount, incoming, bucket, fit)
	}

	if !expected.IsPositive() {
		return
	}
	match := reconcile.SelectMatch(transfers, address, expected, now, cfg.Reconcile.Decimals)
	if match == nil {
		fmt.Println("\nNo match: status would be not_found")
		return
	}
	isCurrent := match.Bucket == reconcile.BucketCurrent
	fmt.Printf("\nSelected %s (%s/%s), status would be %s\n",
		match.Transfer.Hash, match.Bucket, match.Fit,
		reconcile.DeriveStatus(isCurrent, reconcile.HasAmountDifference(match.Amount, expected)))
}
