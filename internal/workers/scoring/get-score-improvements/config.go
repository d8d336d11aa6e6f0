// internal/workers/scoring/get-score-improvements/config.go
package getscoreimprovements

import "time"

type Config struct {
	Timeout         time.Duration
	MaxImprovements int
	HistoryLimit    int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         10 * time.Second,
		MaxImprovements: 10,
		HistoryLimit:    10,
	}
}
