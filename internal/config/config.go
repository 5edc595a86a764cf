package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Auth        AuthConfig
	Geocoding   GeocodingConfig
	ImageUpload ImageUploadConfig
	Email       EmailConfig
	RateLimit   RateLimitConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	PublicURL      string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// AuthConfig holds the shared secret used to verify tokens issued by the auth provider.
type AuthConfig struct {
	JWTSecret string
}

type GeocodingConfig struct {
	APIKey       string
	BaseURL      string
	CacheBackend string // memory or redis
	CacheTTL     time.Duration
	CacheSize    int
	MaxAttempts  int
	BaseDelay    time.Duration
}

type ImageUploadConfig struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	Token     string
	PublicURL string
}

type EmailConfig struct {
	SendGridAPIKey string
	FromAddress    string
	FromName       string
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// DSN returns the connection string for the pgx stdlib driver.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable&search_path=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.Schema)
}

// Addr returns host:port for the redis client.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsProduction reports whether the server runs with production settings.
func (c ServerConfig) IsProduction() bool {
	return c.Env == "production"
}

func Load() *Config {
	// Populate the process environment for anything that reads os.Getenv directly
	_ = godotenv.Load()

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("SERVER_PUBLIC_URL", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_ENABLED", false)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("GEOCODING_BASE_URL", "https://maps.googleapis.com/maps/api/geocode/json")
	viper.SetDefault("GEOCODING_CACHE_BACKEND", "memory")
	viper.SetDefault("GEOCODING_CACHE_TTL", "1h")
	viper.SetDefault("GEOCODING_CACHE_SIZE", 10000)
	viper.SetDefault("GEOCODING_MAX_ATTEMPTS", 5)
	viper.SetDefault("GEOCODING_BASE_DELAY", "1s")
	viper.SetDefault("IMAGE_UPLOAD_REGION", "auto")
	viper.SetDefault("EMAIL_FROM_ADDRESS", "no-reply@localhost")
	viper.SetDefault("EMAIL_FROM_NAME", "Halal Directory")
	viper.SetDefault("RATE_LIMIT_REQUESTS", 30)
	viper.SetDefault("RATE_LIMIT_WINDOW", "1m")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Env:            viper.GetString("SERVER_ENV"),
			PublicURL:      strings.TrimRight(viper.GetString("SERVER_PUBLIC_URL"), "/"),
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			URL:      viper.GetString("DATABASE_URL"),
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Enabled:  viper.GetBool("REDIS_ENABLED"),
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Auth: AuthConfig{
			JWTSecret: viper.GetString("AUTH_JWT_SECRET"),
		},
		Geocoding: GeocodingConfig{
			APIKey:       viper.GetString("GEOCODING_API_KEY"),
			BaseURL:      viper.GetString("GEOCODING_BASE_URL"),
			CacheBackend: viper.GetString("GEOCODING_CACHE_BACKEND"),
			CacheTTL:     viper.GetDuration("GEOCODING_CACHE_TTL"),
			CacheSize:    viper.GetInt("GEOCODING_CACHE_SIZE"),
			MaxAttempts:  viper.GetInt("GEOCODING_MAX_ATTEMPTS"),
			BaseDelay:    viper.GetDuration("GEOCODING_BASE_DELAY"),
		},
		ImageUpload: ImageUploadConfig{
			Endpoint:  viper.GetString("IMAGE_UPLOAD_ENDPOINT"),
			Bucket:    viper.GetString("IMAGE_UPLOAD_BUCKET"),
			Region:    viper.GetString("IMAGE_UPLOAD_REGION"),
			AccessKey: viper.GetString("IMAGE_UPLOAD_ACCESS_KEY"),
			Token:     viper.GetString("IMAGE_UPLOAD_TOKEN"),
			PublicURL: strings.TrimRight(viper.GetString("IMAGE_UPLOAD_PUBLIC_URL"), "/"),
		},
		Email: EmailConfig{
			SendGridAPIKey: viper.GetString("EMAIL_SENDGRID_API_KEY"),
			FromAddress:    viper.GetString("EMAIL_FROM_ADDRESS"),
			FromName:       viper.GetString("EMAIL_FROM_NAME"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   viper.GetDuration("RATE_LIMIT_WINDOW"),
		},
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
