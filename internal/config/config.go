package config

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

type StorageConfig struct {
	Backend         string // "local" or "s3"
	LocalPath       string
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

type KMSConfig struct {
	Backend   string // "off", "local", or "aws"
	MasterKey string // hex-encoded, local backend only
	KeyARN    string
	Region    string
}

type Config struct {
	DBDriver    string
	DBURL       string
	Port        string
	JWTSecret   string
	TokenTTL    time.Duration
	Environment string
	CorsConfig  cors.Options
	Storage     StorageConfig
	KMS         KMSConfig
}

// Load reads the environment, optionally seeded from an env file, and returns
// the full configuration. It is called once from main and handed down;
// nothing reads the environment after startup.
func Load() Config {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Debug().Str("file", envFile).Msg("no env file found, using process environment")
	}

	return Config{
		DBDriver:    getEnv("DB_DRIVER", "postgres"),
		DBURL:       getEnv("DB_URL", ""),
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		TokenTTL:    time.Duration(getEnvInt("TOKEN_TTL_MINUTES", 30)) * time.Minute,
		Environment: getEnv("ENV", "development"),
		CorsConfig:  CorsConfig(),
		Storage: StorageConfig{
			Backend:         getEnv("STORAGE_BACKEND", "local"),
			LocalPath:       getEnv("STORAGE_LOCAL_PATH", "documents"),
			Bucket:          getEnv("S3_BUCKET", ""),
			Region:          getEnv("S3_REGION", "auto"),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		},
		KMS: KMSConfig{
			Backend:   getEnv("KMS_BACKEND", "off"),
			MasterKey: getEnv("KMS_MASTER_KEY", ""),
			KeyARN:    getEnv("KMS_KEY_ARN", ""),
			Region:    getEnv("KMS_REGION", "us-east-1"),
		},
	}
}

// Gets the env by key or fallbacks
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Warn().Str("key", key).Str("value", value).Msg("ignoring non-integer env value")
	}
	return fallback
}

func CorsConfig() cors.Options {
	origins := strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}
}
