// internal/flows/chatassist/config.go
package chatassist

import "time"

type Config struct {
	Timeout           time.Duration
	MaxRetries        int
	MaxTokens         int
	Temperature       float64
	MaxFreeWishes     int
	DisclaimerEnabled bool
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:           30 * time.Second,
		MaxRetries:        2,
		MaxTokens:         1024,
		Temperature:       0.7,
		MaxFreeWishes:     3,
		DisclaimerEnabled: true,
	}
}
