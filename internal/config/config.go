// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the service.
type Config struct {
	Port   string
	AppEnv string

	// Metadata store (MongoDB)
	MongoURL    string
	MongoDBName string

	// Object storage (S3-compatible: MinIO locally, any S3 provider in production)
	StorageEndpoint  string
	StorageAccessKey string
	StorageSecretKey string
	StorageBucket    string
	StorageUseSSL    bool

	// Upload limits, enforced at the HTTP layer
	MaxFileSize       int64
	AllowedExtensions map[string]bool
}

// Load reads configuration from a .env file (if present) and environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading from environment")
	}

	return &Config{
		Port:   getEnv("PORT", "8080"),
		AppEnv: getEnv("APP_ENV", "development"),

		MongoURL:    getEnv("MONGO_URL", "mongodb://mongo:27017"),
		MongoDBName: getEnv("MONGO_DB_NAME", "filesdb"),

		StorageEndpoint:  getEnv("STORAGE_ENDPOINT", "localhost:9000"),
		StorageAccessKey: getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
		StorageSecretKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
		StorageBucket:    getEnv("STORAGE_BUCKET", "files"),
		StorageUseSSL:    getEnv("STORAGE_USE_SSL", "false") == "true",

		MaxFileSize:       getEnvInt64("MAX_FILE_SIZE", 200*1024*1024),
		AllowedExtensions: parseExtensions(getEnv("ALLOWED_EXTENSIONS", defaultExtensions)),
	}
}

// defaultExtensions mirrors the upload types the service accepts out of the box.
const defaultExtensions = "pdf,doc,docx,xls,xlsx,ppt,pptx,txt,jpg,jpeg,png,gif,zip,rar,mp4,mp3"

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// ExtensionAllowed reports whether the given filename extension (without dot)
// is on the upload allow-list. The check is case-insensitive.
func (c *Config) ExtensionAllowed(ext string) bool {
	return c.AllowedExtensions[strings.ToLower(ext)]
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}

func parseExtensions(csv string) map[string]bool {
	exts := make(map[string]bool)
	for _, e := range strings.Split(csv, ",") {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			exts[e] = true
		}
	}
	return exts
}
