// Package config provides configuration management for the payroll monitor.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file (loaded with godotenv, overriding the process environment).
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP port, API key and shutdown timeout
//   - Log: Logging level and format
//   - Ledger: TronGrid base URL, token contract, API key, page size and timeout
//   - Reconcile: token decimals and the per-fetch timeout
//   - Sweep: minimum interval between checks and the retry policy
//   - Snapshot: local snapshot path and optional upload
//   - Storage: S3/MinIO credentials and bucket settings
//   - Database: optional audit database (sqlite or MySQL)
//
// Defaults come from the `default` struct tags of each section. Every key can be
// overridden through the environment, with dots replaced by underscores:
//
//	LEDGER_API_KEY=...        -> ledger.api_key
//	SWEEP_INTERVAL=1s         -> sweep.interval
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
