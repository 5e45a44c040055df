package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends for the durable aggregates.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DataDir        string
	StorageBackend string
	DatedQueryDirs bool
	InputFile      string
	DefaultTotal   int

	StartURL          string
	Locale            string
	Headless          bool
	ChromeBin         string
	NavigationTimeout time.Duration

	SearchFillDelay   time.Duration
	SearchSettleDelay time.Duration
	HoverDelay        time.Duration
	ClickDelay        time.Duration
	ScrollDelay       time.Duration
	ScrollPixels      int

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	MaxRetries       int
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() *Config {
	return &Config{
		DataDir:        getEnv("DATA_DIR", "GMaps Data"),
		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", BackendCSV)),
		DatedQueryDirs: getEnvBool("DATED_QUERY_DIRS", false),
		InputFile:      getEnv("INPUT_FILE", "input.txt"),
		DefaultTotal:   getEnvInt("DEFAULT_TOTAL", 20),

		StartURL:          getEnv("START_URL", "https://www.google.com/maps"),
		Locale:            getEnv("LOCALE", "en-GB"),
		Headless:          getEnvBool("HEADLESS", false),
		ChromeBin:         getEnv("CHROME_BIN", ""),
		NavigationTimeout: getEnvDuration("NAVIGATION_TIMEOUT_MS", 20000),

		SearchFillDelay:   getEnvDuration("SEARCH_FILL_DELAY_MS", 3000),
		SearchSettleDelay: getEnvDuration("SEARCH_SETTLE_DELAY_MS", 5000),
		HoverDelay:        getEnvDuration("HOVER_DELAY_MS", 500),
		ClickDelay:        getEnvDuration("CLICK_DELAY_MS", 2000),
		ScrollDelay:       getEnvDuration("SCROLL_DELAY_MS", 2000),
		ScrollPixels:      getEnvInt("SCROLL_PIXELS", 3000),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "gmaps_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		MaxRetries:       getEnvInt("MAX_RETRIES", 3),
	}
}

// Validate checks the values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if c.DefaultTotal <= 0 {
		return ErrInvalidTotal
	}
	if c.StorageBackend != BackendCSV && c.StorageBackend != BackendSQLite {
		return ErrUnknownBackend
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return ErrNoDataDir
	}
	if c.ScrollPixels <= 0 {
		return ErrInvalidScroll
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration reads a millisecond value.
func getEnvDuration(key string, fallbackMs int) time.Duration {
	return time.Duration(getEnvInt(key, fallbackMs)) * time.Millisecond
}
