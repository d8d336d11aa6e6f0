// internal/workers/scoring/send-score-report/config.go
package sendscorereport

import "time"

type Config struct {
	Timeout       time.Duration
	AWSRegion     string
	FromEmail     string
	AlertTopicARN string
	EmailEnabled  bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		AWSRegion:    "us-east-1",
		FromEmail:    "scoring@proposals.example.com",
		EmailEnabled: true,
	}
}
