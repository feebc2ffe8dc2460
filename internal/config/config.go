// Package config loads application configuration from environment
// variables.  Required variables halt startup with a fatal log message;
// optional subsystems (Redis, payment gateway overrides) degrade to
// defaults.
package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.
type Config struct {
	Env          string // application environment (e.g. "dev", "prod")
	Port         string // HTTP port to listen on
	DBUser       string // database username
	DBPass       string // database password (optional)
	DBHost       string // database host address
	DBPort       string // database port number
	DBName       string // database name
	JWTSecret    string // secret used to verify JWTs
	AccessTTLMin int    // access token time-to-live in minutes

	AMQPURL string // RabbitMQ URL for booking events (optional)

	PayBaseURL    string // payment gateway base URL
	PaySecretKey  string // payment gateway secret key
	PaySuccessURL string // redirect target after an approved payment
	PayFailURL    string // redirect target after a failed payment

	DraftTTLMin int // idle minutes before an abandoned draft expires
}

// Load reads configuration values from environment variables and returns
// a Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:          must("APP_ENV"),
		Port:         must("APP_PORT"),
		DBUser:       must("DB_USER"),
		DBPass:       os.Getenv("DB_PASS"), // empty allowed
		DBHost:       must("DB_HOST"),
		DBPort:       must("DB_PORT"),
		DBName:       must("DB_NAME"),
		JWTSecret:    must("JWT_SECRET"),
		AccessTTLMin: mustInt("ACCESS_TOKEN_TTL_MIN"),

		AMQPURL: os.Getenv("AMQP_URL"),

		PayBaseURL:    must("PAY_BASE_URL"),
		PaySecretKey:  must("PAY_SECRET_KEY"),
		PaySuccessURL: must("PAY_SUCCESS_URL"),
		PayFailURL:    must("PAY_FAIL_URL"),

		DraftTTLMin: intOr("DRAFT_TTL_MIN", 30),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and
// exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an
// integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// intOr reads an optional integer variable with a default.
func intOr(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
