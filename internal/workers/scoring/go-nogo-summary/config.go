// internal/workers/scoring/go-nogo-summary/config.go
package gonogosummary

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 15 * time.Second,
	}
}
