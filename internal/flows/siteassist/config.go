// internal/flows/siteassist/config.go
package siteassist

import "time"

type Config struct {
	Timeout     time.Duration
	MaxRetries  int
	MaxTokens   int
	Temperature float64
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:     20 * time.Second,
		MaxRetries:  2,
		MaxTokens:   512,
		Temperature: 0.7,
	}
}
