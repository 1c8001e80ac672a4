package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/lakeboard/lakeboard/internal/archive"
	"github.com/lakeboard/lakeboard/internal/common"
	"github.com/lakeboard/lakeboard/internal/glofs"
)

type AppConfig struct {
	// GLOFSBaseURL is the upstream origin; a trailing slash is tolerated and
	// stripped by the client.
	GLOFSBaseURL string

	// HTTPTimeout applies to outbound GLOFS calls.
	HTTPTimeout time.Duration

	// RefreshInterval controls how often the latest-run view and prefetched
	// frames are refreshed.
	RefreshInterval time.Duration

	// RefreshHours are the hour offsets prefetched per lake.
	RefreshHours []int

	// Lakes to refresh.
	Lakes []glofs.Lake

	// In-memory store retention.
	StoreMaxHistory int           // max frames per lake/hour (0 = unlimited)
	StoreMaxAge     time.Duration // max age of kept frames (0 = unlimited)

	Port string

	// Archive is nil unless object-storage archiving is configured.
	Archive *archive.MinIOConfig
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.GLOFSBaseURL = os.Getenv("GLOFS_BASE_URL")
	if cfg.GLOFSBaseURL == "" {
		return nil, fmt.Errorf("GLOFS_BASE_URL is required")
	}

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "15s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	// Refresh interval: default 15 minutes.
	intervalStr := getenvDefault("REFRESH_INTERVAL", "15m")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	cfg.RefreshInterval = interval

	hours, err := common.ParseInts(getenvDefault("REFRESH_HOURS", "0,6,12,24"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_HOURS: %w", err)
	}
	for _, h := range hours {
		if h < glofs.MinHour || h > glofs.MaxHour {
			return nil, fmt.Errorf("REFRESH_HOURS entry %d out of range [%d,%d]", h, glofs.MinHour, glofs.MaxHour)
		}
	}
	cfg.RefreshHours = hours

	lakes, err := loadLakes()
	if err != nil {
		return nil, err
	}
	cfg.Lakes = lakes

	// Store retention.
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 8)

	maxAgeStr := getenvDefault("STORE_MAX_AGE", "24h")
	maxAge, err := time.ParseDuration(maxAgeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_MAX_AGE: %w", err)
	}
	cfg.StoreMaxAge = maxAge
	cfg.Port = getenvDefault("PORT", "8080")

	// Archiving is enabled only when an endpoint is configured.
	if endpoint := os.Getenv("ARCHIVE_ENDPOINT"); endpoint != "" {
		cfg.Archive = &archive.MinIOConfig{
			Endpoint:  endpoint,
			AccessKey: os.Getenv("ARCHIVE_ACCESS_KEY"),
			SecretKey: os.Getenv("ARCHIVE_SECRET_KEY"),
			Bucket:    getenvDefault("ARCHIVE_BUCKET", "lakeboard-frames"),
			UseSSL:    getenvDefault("ARCHIVE_USE_SSL", "false") == "true",
		}
	}

	return cfg, nil
}

func loadLakes() ([]glofs.Lake, error) {
	raw := os.Getenv("LAKES")
	if raw == "" {
		return glofs.Lakes, nil
	}
	var lakes []glofs.Lake
	for _, code := range common.SplitList(raw) {
		lake := glofs.Lake(code)
		if !lake.Valid() {
			return nil, fmt.Errorf("unknown lake code %q in LAKES", code)
		}
		lakes = append(lakes, lake)
	}
	return lakes, nil
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
