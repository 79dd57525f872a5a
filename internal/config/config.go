package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadEnv loads the .env file if present. Real deployments set the
// environment directly.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found")
	}
}

func GetEnvDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// UploadDir is where post images land. Created on startup if missing.
func UploadDir() string {
	return GetEnvDefault("UPLOAD_DIR", "uploads")
}

// MaxUploadSize is the per-file image limit in bytes.
func MaxUploadSize() int64 {
	raw := GetEnvDefault("MAX_UPLOAD_SIZE", "5242880") // 5 MiB
	size, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Fatalf("invalid MAX_UPLOAD_SIZE %q: %v", raw, err)
	}
	return size
}
