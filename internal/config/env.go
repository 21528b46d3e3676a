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
	DatabaseURL string
	Port        string

	JWTSecret string
	TokenTTL  time.Duration

	OpenAIKey   string
	GeminiKey   string
	DeepSeekKey string
	ClaudeKey   string

	ProviderTimeout time.Duration

	UploadDir   string
	MaxFileSize int64

	// S3 is used for uploads instead of local disk when all three are set.
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string

	CORSOrigins []string
}

// LoadConfig loads the environment variables and returns the config. A
// missing provider key only degrades that provider; a missing DATABASE_URL
// is fatal.
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Port:        getEnv("PORT", "8000"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		TokenTTL:  24 * time.Hour,

		OpenAIKey:   getEnv("OPENAI_API_KEY", ""),
		GeminiKey:   getEnv("GEMINI_API_KEY", ""),
		DeepSeekKey: getEnv("DEEPSEEK_API_KEY", ""),
		ClaudeKey:   getEnv("CLAUDE_API_KEY", ""),

		ProviderTimeout: time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 60)) * time.Second,

		UploadDir:   getEnv("UPLOAD_DIR", "uploads"),
		MaxFileSize: int64(getEnvInt("MAX_FILE_SIZE_MB", 10)) << 20,

		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", ""),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	return cfg
}

// UseS3 reports whether uploads should go to S3 rather than local disk.
func (c *Config) UseS3() bool {
	return c.AwsAccessKey != "" && c.AwsSecretKey != "" && c.BucketName != ""
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
