package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	// Index source: local path preferred, remote URL as fallback.
	LocalIndexPath string
	RemoteIndexURL string

	// Profile file source and local cache directory.
	DownloadBaseURL string
	DownloadsDir    string

	// HTTPTimeout bounds any single outbound transfer.
	HTTPTimeout time.Duration

	// MaxProfiles caps the candidate set in bounded (request/response) mode.
	MaxProfiles int

	// StatsInterval controls how often the stats job logs.
	StatsInterval time.Duration

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		LocalIndexPath:  getenvDefault("INDEX_LOCAL_PATH", "ar_index_global_prof.txt"),
		RemoteIndexURL:  getenvDefault("INDEX_REMOTE_URL", "https://data-argo.ifremer.fr/ar_index_global_prof.txt"),
		DownloadBaseURL: getenvDefault("DOWNLOAD_BASE_URL", "https://data-argo.ifremer.fr/dac/"),
		DownloadsDir:    getenvDefault("DOWNLOADS_DIR", "downloads"),
		MaxProfiles:     getenvInt("MAX_PROFILES", 20),
		Port:            getenvDefault("PORT", "8080"),
	}

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "60s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	statsStr := getenvDefault("STATS_INTERVAL", "15m")
	statsInterval, err := time.ParseDuration(statsStr)
	if err != nil {
		return nil, fmt.Errorf("invalid STATS_INTERVAL: %w", err)
	}
	cfg.StatsInterval = statsInterval

	if cfg.MaxProfiles <= 0 {
		return nil, fmt.Errorf("MAX_PROFILES must be positive")
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
