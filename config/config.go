package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment    string
	BindAddress    string
	HTTPPort       string
	GeminiAPIKey   string
	GeminiAPIURL   string
	PollInterval   time.Duration
	LogDir         string
	PrefsPath      string
	FFmpegPath     string
	FontDir        string
	MediaRetention time.Duration
	CleanupEvery   time.Duration
}

var isTest bool

func init() {
	isTest = os.Getenv("GO_ENVIRONMENT") == "test"
	if !isTest {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Error loading .env file:", err)
		}
	}
}

func Load() Config {
	return Config{
		Environment:    getEnv("ENVIRONMENT", "development"),
		BindAddress:    getEnv("BIND_ADDRESS", "127.0.0.1"),
		HTTPPort:       getEnv("HTTP_PORT", "8086"),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiAPIURL:   getEnv("GEMINI_API_URL", "https://generativelanguage.googleapis.com/v1beta"),
		PollInterval:   time.Duration(getEnvAsInt("POLL_INTERVAL", 10)) * time.Second,
		LogDir:         getEnv("LOG_DIR", filepath.Join("logs", "studio")),
		PrefsPath:      getEnv("PREFS_PATH", defaultPrefsPath()),
		FFmpegPath:     getEnv("FFMPEG_PATH", "ffmpeg"),
		FontDir:        getEnv("FONT_DIR", ""),
		MediaRetention: getEnvAsDuration("MEDIA_RETENTION", 6*time.Hour),
		CleanupEvery:   getEnvAsDuration("MEDIA_CLEANUP_INTERVAL", 15*time.Minute),
	}
}

// Addr is the listen address for the local API server.
func (c Config) Addr() string {
	return c.BindAddress + ":" + c.HTTPPort
}

func defaultPrefsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "studio-prefs.json"
	}
	return filepath.Join(dir, "studio", "prefs.json")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
