package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port       string
	DBDriver   string
	DBDSN      string
	LogFile    string
	APIBaseURL string
	APITimeout time.Duration
	ServeAPI   bool
}

func Load() Config {
	// A missing .env is fine; the environment wins either way.
	if err := godotenv.Load(); err == nil {
		log.Printf("[config] loaded .env")
	}

	port := getEnv("PORT", "8080")
	driver := getEnv("DB_DRIVER", "sqlite")
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "inventory.db"
	} // sqlite file in project root
	logFile := getEnv("LOG_FILE", "./invadmin.log")

	// With the bundled API mounted, the console talks to itself.
	base := getEnv("API_BASE_URL", "http://127.0.0.1:"+port)

	cfg := Config{
		Port:       port,
		DBDriver:   driver,
		DBDSN:      dsn,
		LogFile:    logFile,
		APIBaseURL: base,
		APITimeout: getEnvAsDuration("API_TIMEOUT", 10*time.Second),
		ServeAPI:   getEnvAsBool("SERVE_API", true),
	}
	log.Printf("[config] PORT=%s DB_DRIVER=%s DB_DSN=%s LOG_FILE=%s API_BASE_URL=%s API_TIMEOUT=%s SERVE_API=%t",
		cfg.Port, cfg.DBDriver, redactDSN(cfg.DBDSN), cfg.LogFile, cfg.APIBaseURL, cfg.APITimeout, cfg.ServeAPI)
	return cfg
}

// redactDSN hides the credentials of a "user:pass@tcp(host)/db" DSN.
func redactDSN(dsn string) string {
	if i := strings.LastIndex(dsn, "@"); i >= 0 {
		return "***" + dsn[i:]
	}
	return dsn
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}
