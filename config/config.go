package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Rendering/proxy service
	ScraperAPIKey    string
	RenderServiceURL string
	RenderJS         bool
	FetchTimeout     time.Duration

	// Source page templates; %s is the company slug, %d the page number
	G2PageURL string

	// Output
	OutputDir     string
	SelectorsFile string

	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int

	// Memcache configuration
	MemcacheAddr string
	BlockSeconds int

	// Worker configuration
	CrawlInterval time.Duration
	MetricsAddr   string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	return &Config{
		ScraperAPIKey:        getEnv("SCRAPER_API_KEY", ""),
		RenderServiceURL:     getEnv("RENDER_SERVICE_URL", "https://api.scraperapi.com/"),
		RenderJS:             getEnvBool("RENDER_JS", true),
		FetchTimeout:         time.Duration(getEnvInt("FETCH_TIMEOUT_SECONDS", 70)) * time.Second,
		G2PageURL:            getEnv("G2_PAGE_URL", "https://www.g2.com/products/%s/reviews?page=%d"),
		OutputDir:            getEnv("OUTPUT_DIR", "."),
		SelectorsFile:        getEnv("SELECTORS_FILE", ""),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		RedisStream:          getEnv("REDIS_STREAM", "reviews"),
		RedisStreamMaxLength: getEnvInt("REDIS_STREAM_MAX_LENGTH", 10000),
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", ""),
		BlockSeconds:         getEnvInt("RATE_LIMIT_BLOCK_SECONDS", 300),
		CrawlInterval:        time.Duration(getEnvInt("CRAWL_INTERVAL_SECONDS", 3600)) * time.Second,
		MetricsAddr:          getEnv("METRICS_ADDR", ""),
		Environment:          getEnv("REVIEW_ENVIRONMENT", "development"),
	}
}

// Validate checks the settings needed before any network activity
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ScraperAPIKey) == "" {
		return fmt.Errorf("SCRAPER_API_KEY is required")
	}
	if _, err := url.ParseRequestURI(c.RenderServiceURL); err != nil {
		return fmt.Errorf("invalid RENDER_SERVICE_URL %q: %w", c.RenderServiceURL, err)
	}
	if !strings.Contains(c.G2PageURL, "%s") || !strings.Contains(c.G2PageURL, "%d") {
		return fmt.Errorf("G2_PAGE_URL must contain %%s and %%d placeholders")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT_SECONDS must be positive")
	}
	if c.RedisStreamMaxLength < 0 {
		return fmt.Errorf("REDIS_STREAM_MAX_LENGTH must not be negative")
	}
	return nil
}

// IsProduction reports whether the worker runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return b
}
