package config

import (
	"os"
	"strconv"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

type OAuthClient struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Adapter holds the runtime switches for the platform adapter layer.
// EnableRealPosting=false forces the mock adapter for every platform.
// MockErrorRate (0-100) only affects the mock's simulated publish failures.
// TimeoutMs bounds every outbound provider call. RetryAttempts is advisory
// metadata consumed by the queue worker's retry wrapper, not enforced
// inside the adapters themselves.
type Adapter struct {
	EnableRealPosting bool
	MockErrorRate     int
	TimeoutMs         int
	RetryAttempts     int
}

type Config struct {
	Env         string
	Instagram   OAuthClient
	X           OAuthClient
	Facebook    OAuthClient
	TikTok      OAuthClient
	LinkedIn    OAuthClient
	PostgresURI string
	RedisURI    string
	FrontendURL string
	R2          R2
	Adapter     Adapter
	SecretKey   string
	CookieName  string
}

func LoadConfig() *Config {
	return &Config{
		Env: getEnv("APP_ENV", "development"),
		Instagram: OAuthClient{
			ClientID:     getEnv("INSTAGRAM_CLIENT_ID", ""),
			ClientSecret: getEnv("INSTAGRAM_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("INSTAGRAM_REDIRECT_URI", ""),
		},
		X: OAuthClient{
			ClientID:     getEnv("X_CLIENT_ID", ""),
			ClientSecret: getEnv("X_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("X_REDIRECT_URI", ""),
		},
		Facebook: OAuthClient{
			ClientID:     getEnv("FACEBOOK_CLIENT_ID", ""),
			ClientSecret: getEnv("FACEBOOK_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("FACEBOOK_REDIRECT_URI", ""),
		},
		TikTok: OAuthClient{
			ClientID:     getEnv("TIKTOK_CLIENT_KEY", ""),
			ClientSecret: getEnv("TIKTOK_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("TIKTOK_REDIRECT_URI", ""),
		},
		LinkedIn: OAuthClient{
			ClientID:     getEnv("LINKEDIN_CLIENT_ID", ""),
			ClientSecret: getEnv("LINKEDIN_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("LINKEDIN_REDIRECT_URI", ""),
		},
		PostgresURI: getEnv("POSTGRES_URI", ""),
		RedisURI:    getEnv("REDIS_URI", ""),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  getEnv("R2_PUBLIC_URL", ""),
		},
		Adapter: Adapter{
			EnableRealPosting: getEnvBool("ENABLE_REAL_POSTING", false),
			MockErrorRate:     getEnvInt("MOCK_ERROR_RATE", 0),
			TimeoutMs:         getEnvInt("ADAPTER_TIMEOUT_MS", 30000),
			RetryAttempts:     getEnvInt("ADAPTER_RETRY_ATTEMPTS", 3),
		},
		SecretKey:  getEnv("SECRET_KEY", ""),
		CookieName: getEnv("COOKIE_NAME", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
