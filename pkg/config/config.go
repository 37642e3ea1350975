package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/anonto42/inkwell/backend/internal/assistant"
	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	PostgresConnStr string
	MongoURI        string
	MongoDatabase   string
	RedisURL        string

	JWTSecret          string
	JWTTTL             time.Duration
	CORSAllowedOrigins []string

	FirebaseCredentialsPath string
	FirebaseStorageBucket   string

	StorageDriver    string
	MinioEndpoint    string
	MinioAccessKey   string
	MinioSecretKey   string
	MinioUseSSL      bool
	StoragePublicURL string
	PostImagesBucket string
	AvatarsBucket    string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	NotifyPollInterval time.Duration
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		PostgresConnStr: getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:        getEnv("MONGO_URI", ""),
		MongoDatabase:   getEnv("MONGO_DATABASE", "inkwell"),
		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379/0"),

		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTTTL:             getDuration("JWT_TTL", 8*time.Hour),
		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS"),

		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		FirebaseStorageBucket:   getEnv("FIREBASE_STORAGE_BUCKET", ""),

		StorageDriver:    getEnv("STORAGE_DRIVER", "minio"),
		MinioEndpoint:    getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey:   getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:   getEnv("MINIO_SECRET_KEY", ""),
		MinioUseSSL:      getBool("MINIO_USE_SSL", false),
		StoragePublicURL: getEnv("STORAGE_PUBLIC_URL", ""),
		PostImagesBucket: getEnv("POST_IMAGES_BUCKET", "post-images"),
		AvatarsBucket:    getEnv("AVATARS_BUCKET", "avatars"),

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", assistant.DefaultModel),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", assistant.DefaultBaseURL),

		NotifyPollInterval: getDuration("NOTIFY_POLL_INTERVAL", time.Second),
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func getBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return b
}

func getList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
