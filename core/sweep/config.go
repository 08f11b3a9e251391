package sweep

import "time"

// Config holds bulk sweep settings.
type Config struct {
	// Interval is the minimum delay between the start of two checks.
	Interval time.Duration `mapstructure:"interval" default:"500ms"`
	// RetryFailed retries addresses whose fetch failed once, after the first pass.
	RetryFailed bool `mapstructure:"retry_failed" default:"true"`
}
