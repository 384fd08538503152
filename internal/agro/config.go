package agro

// #region imports
import (
	"os"
	"strconv"
	"time"
)

// #endregion

// #region config

// Config holds Agromonitoring gateway parameters.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Enabled bool
}

// DefaultConfig returns default gateway configuration.
// Reads from env vars: AGRO_BASE_URL, OPENWEATHER_API_KEY,
// AGRO_TIMEOUT (seconds), AGRO_ENABLED.
func DefaultConfig() Config {
	cfg := Config{
		BaseURL: "http://api.agromonitoring.com/agro/1.0",
		APIKey:  os.Getenv("OPENWEATHER_API_KEY"),
		Timeout: 15 * time.Second,
		Enabled: true,
	}
	if v := os.Getenv("AGRO_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("AGRO_TIMEOUT"); v != "" {
		if sec, err := strconv.Atoi(v); err == nil && sec > 0 {
			cfg.Timeout = time.Duration(sec) * time.Second
		}
	}
	if v := os.Getenv("AGRO_ENABLED"); v != "" {
		cfg.Enabled = v == "true" || v == "1"
	}
	return cfg
}

// #endregion config
