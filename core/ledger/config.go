package ledger

// Config holds configuration for the ledger indexing API.
type Config struct {
	// BaseURL is the root of the TronGrid-compatible API.
	BaseURL string `mapstructure:"base_url" default:"https://api.trongrid.io"`
	// TokenContract is the token contract the transfer history is filtered to (USDT by default).
	TokenContract string `mapstructure:"token_contract" default:"TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"`
	// APIKey is sent as TRON-PRO-API-KEY when set.
	APIKey string `mapstructure:"api_key" default:""`
	// Limit is the number of most recent transfers requested per address.
	Limit int `mapstructure:"limit" default:"50"`
	// TimeoutSeconds bounds connection setup and the whole request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"15"`
}
