package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strings"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. The two token secrets are deliberately
// separate: JWTSecret signs session tokens (access/refresh) and
// ResetSecret signs password reset tokens, so leaking one never
// compromises the other domain.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	JWTSecret    string // secret signing session tokens
	ResetSecret  string // secret signing password reset tokens
	TokenIssuer  string // iss claim stamped into every token
	AccessTTLMin int    // access token time-to-live in minutes
	RefreshTTLH  int    // refresh token time-to-live in hours
	ResetTTLDays int    // reset token time-to-live in days

	BcryptCost int // bcrypt cost for password hashing

	AdminRole         string            // role exempt from the profile eligibility check
	RoleProfileTables map[string]string // role name -> profile table name

	FrontendEndpoint string // base URL for links embedded in mails
	EmailFrom        string // sender address stamped on outgoing mail
	RabbitURL        string // broker URL (optional, falls back to localhost)
}

// Load reads configuration values from environment variables and returns
// a Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:    must("APP_ENV"),
		Port:   must("APP_PORT"),
		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"), // empty allowed
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),

		JWTSecret:    must("JWT_SECRET"),
		ResetSecret:  must("RESET_TOKEN_SECRET"),
		TokenIssuer:  envStr("TOKEN_ISSUER", "identity-service"),
		AccessTTLMin: envInt("ACCESS_TOKEN_TTL_MIN", 5),
		RefreshTTLH:  envInt("REFRESH_TOKEN_TTL_HOURS", 24),
		ResetTTLDays: envInt("RESET_TOKEN_TTL_DAYS", 7),

		BcryptCost: envInt("BCRYPT_COST", 12),

		AdminRole:         envStr("ADMIN_ROLE", "admin"),
		RoleProfileTables: parseRoleTables(os.Getenv("ROLE_PROFILE_TABLES")),

		FrontendEndpoint: must("FRONTEND_ENDPOINT"),
		EmailFrom:        must("EMAIL_FROM"),
		RabbitURL:        os.Getenv("RABBITMQ_URL"),
	}
}

// parseRoleTables parses a "role=table,role=table" mapping. Malformed
// entries are skipped with a warning rather than killing startup, since
// an absent mapping only tightens the eligibility gate.
func parseRoleTables(raw string) map[string]string {
	tables := make(map[string]string)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		role, table, ok := strings.Cut(part, "=")
		if !ok || role == "" || table == "" {
			log.Printf("config: skipping malformed ROLE_PROFILE_TABLES entry %q", part)
			continue
		}
		tables[strings.ToLower(strings.TrimSpace(role))] = strings.TrimSpace(table)
	}
	return tables
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
