// Package config centralises all environment / flag configuration for the API.
// It should be imported only by `cmd/server` (and test code). Business-logic
// layers receive an already-built Config instance via dependency-injection.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime option the server needs.
// Keep it flat and simple—prefer primitive types over embedding structs.
type Config struct {
	// Network
	Port string

	// Data stores
	MongoURI string
	DBName   string

	// External services
	PortalBaseURL string
	ProjectID     string
	Location      string

	// Academic calendar
	SemesterStart time.Time

	// Retrieval tuning
	SearchTopK     int
	SearchMinScore float64

	// Schedule cache
	ScheduleTTL time.Duration

	// Oracle / generation tuning
	OracleTimeout    time.Duration
	MaxContextTokens int

	// Routing tables
	StructurePath string

	// Server tuning
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	LogLevel     string
}

// Load parses the environment (and an optional .env file) into Config.
// It terminates the process on missing critical variables so
// mis-configurations fail fast.
func Load() Config {
	// godotenv.Load() is a no-op if .env doesn't exist—safe in production.
	_ = godotenv.Load()

	return Config{
		Port:             getEnv("PORT", "8080"),
		MongoURI:         must("MONGODB_URI"),
		DBName:           getEnv("MONGODB_DB", "nau_assistant"),
		PortalBaseURL:    getEnv("PORTAL_BASE_URL", "https://portal.nau.edu.ua"),
		ProjectID:        os.Getenv("GCP_PROJECT_ID"), // empty = stub AI backends
		Location:         getEnv("GCP_LOCATION", "us-central1"),
		SemesterStart:    getDate("SEMESTER_START", "2025-09-01"),
		SearchTopK:       getInt("SEARCH_TOP_K", 6),
		SearchMinScore:   getFloat("SEARCH_MIN_SCORE", 0.35),
		ScheduleTTL:      time.Duration(getInt("SCHEDULE_TTL_MIN", 360)) * time.Minute,
		OracleTimeout:    getDuration("ORACLE_TIMEOUT_SEC", 30),
		MaxContextTokens: getInt("MAX_CONTEXT_TOKENS", 6000),
		StructurePath:    os.Getenv("STRUCTURE_PATH"), // empty = embedded default
		ReadTimeout:      getDuration("READ_TIMEOUT_SEC", 5),
		WriteTimeout:     getDuration("WRITE_TIMEOUT_SEC", 60),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}
}

// must fetches a required env var or terminates the program.
func must(key string) string {
	val := os.Getenv(key)
	if val == "" {
		log.Fatalf("env var %s is required", key)
	}
	return val
}

// getEnv returns env[key] if set, otherwise defaultVal.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getDuration reads an integer (seconds) from env, falling back to defaultSec.
func getDuration(key string, defaultSec int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if sec, err := strconv.Atoi(v); err == nil {
			return time.Duration(sec) * time.Second
		}
		log.Printf("invalid %s=%q; using default %ds", key, v, defaultSec)
	}
	return time.Duration(defaultSec) * time.Second
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("invalid %s=%q; using default %d", key, v, defaultVal)
	}
	return defaultVal
}

func getFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("invalid %s=%q; using default %g", key, v, defaultVal)
	}
	return defaultVal
}

func getDate(key, defaultVal string) time.Time {
	v := getEnv(key, defaultVal)
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		log.Fatalf("invalid %s=%q: expected YYYY-MM-DD", key, v)
	}
	return t
}
