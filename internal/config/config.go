package config

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"os"
	"strconv"
)

type Config struct {
	Port          string
	DBPath        string
	MigrationsDir string
	TemplatesDir  string
	UploadDir     string
	CSRFKey       []byte
	SessionKey    []byte
	CookieDomain  string
	CookieSecure  bool
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "3000"),
		DBPath:        getEnv("DB_PATH", "./supermarket.db"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),
		TemplatesDir:  getEnv("TEMPLATES_DIR", "templates"),
		UploadDir:     getEnv("UPLOAD_DIR", "static/uploads"),
		CookieDomain:  getEnv("COOKIE_DOMAIN", ""),
		CookieSecure:  getEnv("COOKIE_SECURE", "false") == "true",
	}

	cfg.CSRFKey = loadKey("CSRF_KEY")
	cfg.SessionKey = loadKey("SESSION_KEY")

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		slog.Error("Invalid PORT environment variable. Falling back to default.", "PORT", os.Getenv("PORT"))
		cfg.Port = "3000"
	}

	return cfg, nil
}

// loadKey decodes a base64 key from the environment, generating a random
// development key when it is missing or too short. Generated keys change
// on each restart, so existing sessions and CSRF tokens stop validating.
func loadKey(envVar string) []byte {
	raw := os.Getenv(envVar)
	if raw == "" {
		slog.Warn("Key not set, generating a random one for development. Set it in production!", "env", envVar)
		return generateRandomBytes(32)
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(decoded) < 32 {
		slog.Warn("Key is invalid or shorter than 32 bytes, generating a random one for development. Set a secure value in production!", "env", envVar)
		return generateRandomBytes(32)
	}
	return decoded
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func generateRandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the platform entropy source is broken;
		// refusing to start beats running with a guessable key.
		slog.Error("Failed to read random bytes", "error", err)
		os.Exit(1)
	}
	return b
}
