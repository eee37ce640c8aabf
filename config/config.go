package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Geocoder GeocoderConfig
	Store    StoreConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Poll     PollConfig
	Photo    PhotoConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         string
	Host         string
	MetricsToken string // METRICS_TOKEN: when set, /metrics requires it as a bearer token
}

// BackendConfig points at the external report/auth REST service
type BackendConfig struct {
	BaseURL string        // BACKEND_BASE_URL
	Timeout time.Duration // BACKEND_TIMEOUT
}

// GeocoderConfig holds forward-geocoding settings
type GeocoderConfig struct {
	URL                string        // GEOCODER_URL: search endpoint
	UserAgent          string        // GEOCODER_USER_AGENT: required by the public Nominatim policy
	RatePerSecond      float64       // GEOCODER_RATE_PER_SECOND
	GeolocationTimeout time.Duration // GEOLOCATION_TIMEOUT: cap on a single location resolution
}

// StoreConfig selects the durable key-value store used for sessions and drafts
type StoreConfig struct {
	Driver     string // STORE_DRIVER: file | mysql
	Path       string // STORE_PATH: JSON file for the file driver
	InitSchema bool   // STORE_INIT_SCHEMA: create the kv table on startup (mysql only)
}

// DatabaseConfig holds database configuration for the mysql store driver
type DatabaseConfig struct {
	DatabaseURL string // DATABASE_URL - takes precedence over individual vars
	Host        string
	Port        string
	User        string
	Password    string
	DBName      string
}

// AuthConfig holds session and auth settings
type AuthConfig struct {
	Mode          string // AUTH_MODE: remote | local
	SessionSecret string // SESSION_SECRET
}

// PollConfig controls the report feed refresh
type PollConfig struct {
	Interval time.Duration // POLL_INTERVAL
}

// PhotoConfig controls camera frame encoding
type PhotoConfig struct {
	MaxDimension int // PHOTO_MAX_DIMENSION
	JPEGQuality  int // PHOTO_JPEG_QUALITY
	MaxPixels    int // PHOTO_MAX_PIXELS: frames declaring more are rejected before decoding
}

const (
	AuthModeRemote = "remote"
	AuthModeLocal  = "local"

	StoreDriverFile  = "file"
	StoreDriverMySQL = "mysql"

	// DefaultSessionSecret is only fit for local development
	DefaultSessionSecret = "spotnsort-dev-secret-change-me"
)

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("PORT", getEnv("SERVER_PORT", "8080")),
			MetricsToken: os.Getenv("METRICS_TOKEN"),
		},
		Backend: BackendConfig{
			BaseURL: getEnv("BACKEND_BASE_URL", "https://spotnsort-backend.onrender.com/api"),
			Timeout: getEnvDuration("BACKEND_TIMEOUT", 15*time.Second),
		},
		Geocoder: GeocoderConfig{
			URL:                getEnv("GEOCODER_URL", "https://nominatim.openstreetmap.org/search"),
			UserAgent:          getEnv("GEOCODER_USER_AGENT", "spotnsort-gateway/1.0"),
			RatePerSecond:      getEnvFloat("GEOCODER_RATE_PER_SECOND", 1),
			GeolocationTimeout: getEnvDuration("GEOLOCATION_TIMEOUT", 10*time.Second),
		},
		Store: StoreConfig{
			Driver:     getEnv("STORE_DRIVER", StoreDriverFile),
			Path:       getEnv("STORE_PATH", "data/spotnsort_store.json"),
			InitSchema: getEnvBool("STORE_INIT_SCHEMA", true),
		},
		Database: DatabaseConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getEnv("DB_HOST", "127.0.0.1"),
			Port:        getEnv("DB_PORT", "3306"),
			User:        os.Getenv("DB_USER"),
			Password:    os.Getenv("DB_PASSWORD"),
			DBName:      getEnv("DB_NAME", "spotnsort"),
		},
		Auth: AuthConfig{
			Mode:          getEnv("AUTH_MODE", AuthModeRemote),
			SessionSecret: getEnv("SESSION_SECRET", DefaultSessionSecret),
		},
		Poll: PollConfig{
			Interval: getEnvDuration("POLL_INTERVAL", 5*time.Second),
		},
		Photo: PhotoConfig{
			MaxDimension: getEnvInt("PHOTO_MAX_DIMENSION", 1280),
			JPEGQuality:  getEnvInt("PHOTO_JPEG_QUALITY", 80),
			MaxPixels:    getEnvInt("PHOTO_MAX_PIXELS", 40_000_000),
		},
	}
}

// UsesDefaultSessionSecret reports whether SESSION_SECRET was left unset
func (a AuthConfig) UsesDefaultSessionSecret() bool {
	return a.SessionSecret == DefaultSessionSecret
}

// DSN builds the MySQL DSN (UTC for consistent timestamps)
func (d DatabaseConfig) DSN() string {
	if d.DatabaseURL != "" {
		return d.DatabaseURL
	}
	return d.User + ":" + d.Password + "@tcp(" + d.Host + ":" + d.Port + ")/" + d.DBName +
		"?parseTime=true&charset=utf8mb4&loc=UTC"
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("5s") or plain seconds ("5")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
