package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"online-store/store"
)

// Config holds everything the binary reads from the environment.
type Config struct {
	AppEnv          string
	Port            string
	DatabaseURL     string
	Pool            store.PoolConfig
	AutoMigrate     bool
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	// Lambda is true when running inside an AWS Lambda function.
	Lambda bool
}

// Addr is the HTTP listen address.
func (c Config) Addr() string { return ":" + c.Port }

// LoadEnv loads .env.local when APP_ENV is "local".
func LoadEnv() {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "development"
		os.Setenv("APP_ENV", appEnv)
	}

	if appEnv == "local" {
		if err := godotenv.Load(".env.local"); err != nil {
			log.Printf("Warning: .env.local not loaded (%v). Relying on system environment variables.", err)
		} else {
			log.Println("Loaded .env.local for local development.")
		}
	}
}

// Load reads the configuration. Malformed numeric, boolean or duration
// values are reported rather than silently defaulted.
func Load() (Config, error) {
	LoadEnv()

	var err error
	cfg := Config{
		AppEnv:      os.Getenv("APP_ENV"),
		Port:        getenv("PORT", "8082"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Lambda:      os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "",
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			getenv("DB_HOST", "localhost"),
			getenv("DB_PORT", "5432"),
			getenv("DB_USER", "postgres"),
			getenv("DB_PASSWORD", "password"),
			getenv("DB_NAME", "tienda_online"),
			getenv("DB_SSLMODE", "disable"),
		)
	}

	if cfg.Pool.MaxOpenConns, err = intEnv("DB_MAX_OPEN_CONNS", 25); err != nil {
		return Config{}, err
	}
	if cfg.Pool.MaxIdleConns, err = intEnv("DB_MAX_IDLE_CONNS", 25); err != nil {
		return Config{}, err
	}
	if cfg.Pool.ConnMaxLifetime, err = durationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.AutoMigrate, err = boolEnv("AUTO_MIGRATE", true); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = durationEnv("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}

	for _, o := range strings.Split(getenv("CORS_ALLOWED_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("config: %s must be a non-negative integer, got %q", key, v)
	}
	return n, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s must be a boolean, got %q", key, v)
	}
	return b, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be a duration like 10s, got %q", key, v)
	}
	return d, nil
}
