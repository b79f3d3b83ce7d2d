package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings" // strings splits the CORS origin allow-list
	"time"    // time parses duration-valued variables
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  Two separate signing secrets are kept so
// an access token can never be replayed as a refresh token or vice versa.
type Config struct {
	Port           string   // HTTP port to listen on
	DBUser         string   // database username
	DBPass         string   // database password (optional)
	DBHost         string   // database host address
	DBPort         string   // database port number
	DBName         string   // database name
	JWTSecret      string   // secret used to sign access tokens
	RefreshSecret  string   // secret used to sign refresh tokens
	AccessTTLMin   int      // access token time-to-live in minutes
	RefreshTTLDays int      // refresh token time-to-live in days
	BcryptCost     int      // bcrypt cost for password hashing
	CORSOrigins    []string // frontend origins allowed to send credentials
}

// Load reads configuration values from environment variables and returns
// a Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Token lifetimes
// and bcrypt cost have sensible defaults so only the secrets and the
// database coordinates are mandatory.
func Load() Config {
	return Config{
		Port:           envOr("PORT", "5000"),                 // port to bind the HTTP server
		DBUser:         must("DB_USER"),                       // database user
		DBPass:         os.Getenv("DB_PASS"),                  // database password (empty allowed)
		DBHost:         must("DB_HOST"),                       // database host
		DBPort:         must("DB_PORT"),                       // database port
		DBName:         must("DB_NAME"),                       // database name
		JWTSecret:      must("JWT_SECRET"),                    // access token signing secret
		RefreshSecret:  must("REFRESH_SECRET"),                // refresh token signing secret
		AccessTTLMin:   intOr("ACCESS_TOKEN_TTL_MIN", 15),     // TTL for access tokens in minutes
		RefreshTTLDays: intOr("REFRESH_TOKEN_TTL_DAYS", 7),    // TTL for refresh tokens in days
		BcryptCost:     intOr("BCRYPT_COST", 10),              // bcrypt cost factor
		CORSOrigins:    splitOrigins(os.Getenv("CORS_ORIGINS")), // comma separated origin list
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// envOr returns the value of an environment variable or a default when
// the variable is unset or empty.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// intOr is like envOr but converts the retrieved string into an integer.
// An unparsable value is a configuration mistake and aborts startup.
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

// boolOr reads a boolean environment variable; anything other than a
// recognised true/false spelling falls back to the default.
func boolOr(key string, def bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

// durOr reads a duration environment variable ("30s", "5m").
func durOr(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Fatalf("invalid duration for %s: %q", key, s)
	}
	return d
}

// splitOrigins parses the comma separated CORS allow-list.  An empty
// variable yields a localhost-only default suitable for development.
func splitOrigins(s string) []string {
	if s == "" {
		return []string{"http://localhost:5173"}
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
