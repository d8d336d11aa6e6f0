// internal/workers/scoring/calculate-proposal-score/config.go
package calculateproposalscore

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 120 * time.Second,
	}
}
