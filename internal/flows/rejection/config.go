// internal/flows/rejection/config.go
package rejection

import "time"

type Config struct {
	Timeout     time.Duration
	MaxRetries  int
	MaxTokens   int
	Temperature float64
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:     60 * time.Second,
		MaxRetries:  2,
		MaxTokens:   2048,
		Temperature: 0.6,
	}
}
