package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"payroll-monitor/feature/payroll"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the record commands
	yesConfirm  bool
	confirmAt   string
	exportCSV   bool
	summaryOnly bool
)

// loadCmd replaces the active record set from a file.
var loadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Load a payroll batch, replacing all records",
	Long: `Load a payroll batch from a JSON file ({"records": [...]} or an array) or a CSV
file with a header row (name, department, expected, address).

Every record in the current snapshot is replaced and starts as pending.`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

// checkCmd reconciles a single address.
var checkCmd = &cobra.Command{
	Use:   "check <address>",
	Short: "Reconcile one address against the ledger",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

// confirmCmd records a manual confirmation.
var confirmCmd = &cobra.Command{
	Use:   "confirm <address>",
	Short: "Manually confirm a payment made outside the ledger",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfirm,
}

// sweepCmd checks every record sequentially.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Check every record, one address per interval",
	Long: `Check every record sequentially, waiting sweep.interval between addresses.
Press Ctrl+C to stop after the address currently being checked.`,
	Args: cobra.NoArgs,
	RunE: runSweep,
}

// recordsCmd prints the store.
var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Print all records",
	Args:  cobra.NoArgs,
	RunE:  runRecords,
}

func init() {
	loadCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm replacing the current records (non-interactive)")
	confirmCmd.Flags().StringVar(&confirmAt, "at", "", "Confirmation time (RFC3339), defaults to now")
	recordsCmd.Flags().BoolVar(&exportCSV, "csv", false, "Print as CSV")
	recordsCmd.Flags().BoolVar(&summaryOnly, "summary", false, "Print only the summary counts")

	RootCmd.AddCommand(loadCmd, checkCmd, confirmCmd, sweepCmd, recordsCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open batch: %w", err)
	}
	defer f.Close()

	req, err := parseBatchFile(args[0], f)
	if err != nil {
		return err
	}

	if existing := len(rt.store.All()); existing > 0 && !confirmReplace(existing) {
		rt.logger.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	report := rt.service.LoadBatch(ctx, req)
	return printJSON(cmd.OutOrStdout(), report)
}

func parseBatchFile(name string, r io.Reader) (payroll.BatchRequest, error) {
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return payroll.ParseBatchCSV(r)
	}
	return payroll.ParseBatchJSON(r)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	res, err := rt.service.Check(ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res)
}

func runConfirm(cmd *cobra.Command, args []string) error {
	var at time.Time
	if confirmAt != "" {
		parsed, err := time.Parse(time.RFC3339, confirmAt)
		if err != nil {
			return fmt.Errorf("invalid --at: %w", err)
		}
		at = parsed
	}

	ctx := context.Background()
	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	rec, err := rt.service.Confirm(ctx, args[0], at)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), rec)
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	rt, err := newRuntime(context.Background())
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.logger.Info("Sweeping records", zap.Int("total", len(rt.store.All())), zap.Duration("interval", rt.cfg.Sweep.Interval))
	progress, err := rt.service.RunSweep(ctx)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), progress)
}

func runRecords(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(context.Background())
	if err != nil {
		return err
	}
	defer rt.Close()

	switch {
	case summaryOnly:
		return printJSON(cmd.OutOrStdout(), rt.service.Summary())
	case exportCSV:
		return rt.service.Export(cmd.OutOrStdout())
	default:
		return printJSON(cmd.OutOrStdout(), rt.service.Records())
	}
}

func confirmReplace(existing int) bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Printf("\n⚠️  This replaces %d existing records and their reconciliation state. Type 'yes' to confirm: ", existing)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(response)
	return response == "yes"
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
