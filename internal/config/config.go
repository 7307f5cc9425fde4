package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Model    ModelConfig
	Storage  StorageConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Supabase SupabaseConfig
}

type ServerConfig struct {
	Port         string
	Mode         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// ModelConfig selects the inference engine. Name is fixed for the whole process.
type ModelConfig struct {
	Name        string
	Backend     string
	EngineURL   string
	Timeout     time.Duration
	Preload     bool
	ModelDir    string
	LibraryPath string
}

type StorageConfig struct {
	OutputDir       string
	MaxFileSize     int64
	AllowedTypes    []string
	Retention       time.Duration
	CleanupSchedule string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	URL   string
	Queue string
}

type SupabaseConfig struct {
	URL    string
	KEY    string
	BUCKET string
}

const (
	BackendHTTP = "http"
	BackendONNX = "onnx"
)

// DefaultAllowedTypes are the upload types the codec can decode.
var DefaultAllowedTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif", "image/bmp", "image/tiff"}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "5050"),
			Mode:         getEnv("GIN_MODE", "release"),
			ReadTimeout:  getDuration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDuration("WRITE_TIMEOUT", 120*time.Second),
		},
		Model: ModelConfig{
			Name:        getEnv("REMBG_MODEL", "u2net"),
			Backend:     strings.ToLower(getEnv("REMBG_BACKEND", BackendHTTP)),
			EngineURL:   strings.TrimRight(getEnv("REMBG_URL", "http://localhost:7000"), "/"),
			Timeout:     getDuration("REMBG_TIMEOUT", 120*time.Second),
			Preload:     getEnvAsBool("REMBG_PRELOAD", false),
			ModelDir:    getEnv("ONNX_MODEL_DIR", defaultModelDir()),
			LibraryPath: getEnv("ONNX_LIBRARY_PATH", "libonnxruntime.so"),
		},
		Storage: StorageConfig{
			OutputDir:       getEnv("OUTPUT_DIR", "./outputs"),
			MaxFileSize:     getEnvAsInt64("MAX_FILE_SIZE", 20*1024*1024), // 20MB
			AllowedTypes:    getEnvAsSlice("ALLOWED_TYPES", DefaultAllowedTypes),
			Retention:       getDuration("OUTPUT_RETENTION", 0),
			CleanupSchedule: getEnv("CLEANUP_SCHEDULE", "@hourly"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RabbitMQ: RabbitMQConfig{
			URL:   getEnv("RABBITMQ_URL", ""),
			Queue: getEnv("RABBITMQ_QUEUE", "background_removed"),
		},
		Supabase: SupabaseConfig{
			URL:    getEnv("SUPABASE_URL", ""),
			KEY:    getEnv("SUPABASE_KEY", ""),
			BUCKET: getEnv("SUPABASE_BUCKET", ""),
		},
	}

	return cfg, nil
}

// defaultModelDir mirrors where rembg keeps downloaded weights.
func defaultModelDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".u2net"
	}
	return filepath.Join(home, ".u2net")
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsInt64(key string, defaultVal int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

// getEnvAsSlice splits a comma-separated value, dropping empty items.
func getEnvAsSlice(key string, defaultVal []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultVal
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultVal
	}
	return items
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}
