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
	Port         string
	DatabaseURL  string
	JWTSecret    string
	SessionTTL   time.Duration
	AllowOrigins []string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOUseSSL    bool
	MinIOBucket    string
	MinIOPublicURL string

	FFMPEGPath       string
	MedicineImageMax int64
	MedicineImageDim int

	StockAlertThreshold int
	AMQPURL             string

	LogstashTCPAddr string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateLimitEnabled  bool
	RateLimitCapacity int
	RateLimitRefill   time.Duration
	RateLimitPrefix   string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	sessionTTL := 24 * time.Hour
	if v, err := time.ParseDuration(getenv("SESSION_TTL", "24h")); err == nil && v > 0 {
		sessionTTL = v
	}

	imageMax := int64(10 * 1024 * 1024)
	if v, err := strconv.ParseInt(getenv("MEDICINE_IMAGE_MAX_BYTES", "10485760"), 10, 64); err == nil && v > 0 {
		imageMax = v
	}

	imageDim := 800
	if v, err := strconv.Atoi(getenv("MEDICINE_IMAGE_MAX_DIMENSION", "800")); err == nil && v > 0 {
		imageDim = v
	}

	alertThreshold := 5
	if v, err := strconv.Atoi(getenv("STOCK_ALERT_THRESHOLD", "5")); err == nil && v >= 0 {
		alertThreshold = v
	}

	redisDB := 0
	if v, err := strconv.Atoi(getenv("REDIS_DB", "0")); err == nil {
		redisDB = v
	}

	rateCapacity := 100
	if v, err := strconv.Atoi(getenv("RATE_LIMIT_CAPACITY", "100")); err == nil && v > 0 {
		rateCapacity = v
	}

	rateRefill := 9 * time.Second
	if v, err := time.ParseDuration(getenv("RATE_LIMIT_REFILL_EVERY", "9s")); err == nil && v > 0 {
		rateRefill = v
	}

	return Config{
		Port:         getenv("PORT", "8080"),
		DatabaseURL:  must("DATABASE_URL"),
		JWTSecret:    must("JWT_SECRET"),
		SessionTTL:   sessionTTL,
		AllowOrigins: splitAndTrim(getenv("ALLOW_ORIGINS", "*")),

		MinIOEndpoint:  getenv("MINIO_ENDPOINT", ""),
		MinIOAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:    getenv("MINIO_USE_SSL", "false") == "true",
		MinIOBucket:    getenv("MINIO_BUCKET_MEDICINES", "medtrack-medicines"),
		MinIOPublicURL: getenv("MINIO_PUBLIC_URL", ""),

		FFMPEGPath:       getenv("FFMPEG_PATH", "ffmpeg"),
		MedicineImageMax: imageMax,
		MedicineImageDim: imageDim,

		StockAlertThreshold: alertThreshold,
		AMQPURL:             getenv("AMQP_URL", ""),

		LogstashTCPAddr: getenv("LOGSTASH_TCP_ADDR", ""),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,

		RateLimitEnabled:  getenv("RATE_LIMIT_ENABLED", "true") == "true",
		RateLimitCapacity: rateCapacity,
		RateLimitRefill:   rateRefill,
		RateLimitPrefix:   getenv("RATE_LIMIT_PREFIX", "rl"),
	}
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
