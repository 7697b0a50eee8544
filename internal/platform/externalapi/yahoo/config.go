// Package yahoo provides a client for the Yahoo Finance chart API.
package yahoo

import (
	"os"
	"time"
)

// DefaultBaseURL is used when YAHOO_BASE_URL is not set.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Config holds configuration for the Yahoo Finance chart client.
type Config struct {
	BaseURL   string        // Base URL for the API
	UserAgent string        // Yahoo rejects requests without a browser-like agent
	Timeout   time.Duration // HTTP request timeout
}

// LoadConfig loads Yahoo Finance configuration from environment variables.
func LoadConfig() Config {
	baseURL := os.Getenv("YAHOO_BASE_URL")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return Config{
		BaseURL:   baseURL,
		UserAgent: "Mozilla/5.0",
		Timeout:   30 * time.Second,
	}
}
