package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration for every binary in the repo.
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string

	// Catalog
	CatalogSource          string
	DefaultWhatsApp        string
	DefaultFeatureBlurb    string
	MapDefaultLatitude     float64
	MapDefaultLongitude    float64
	MapZoom                int
	MapsAPIKey             string
	CompactViewportWidthPx int

	// Lead submission (site -> customers backend)
	CustomersBaseURL     string
	CustomersHTTPTimeout time.Duration
	ContactRatePerSecond float64
	ContactRateBurst     int
	RateLimitRedis       bool

	// Customers backend
	LeadsStore         string
	DatabaseURL        string
	SQLitePath         string
	CORSAllowedOrigins []string
	AdminJWTSecret     string
	KafkaBrokers       []string
	KafkaLeadTopic     string

	// Project sales assistant
	LLMProvider             string
	BedrockModelID          string
	BedrockEmbeddingModelID string
	GeminiAPIKey            string
	GeminiModel             string
	AssistantModeration     bool
	AssistantMaxTokens      int
	AssistantRatePerSecond  float64
	AssistantRateBurst      int

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// AWS
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Operator email notifications
	EmailProvider     string
	SendGridAPIKey    string
	EmailFromAddress  string
	EmailFromName     string
	LeadNotifyAddress string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present; real env vars win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		CatalogSource:          getEnv("CATALOG_SOURCE", "embedded"),
		DefaultWhatsApp:        getEnv("DEFAULT_WHATSAPP", "910000000000"),
		DefaultFeatureBlurb:    getEnv("DEFAULT_FEATURE_BLURB", "24x7 Security of your Property Residence and the society with surveillance of world standards."),
		MapDefaultLatitude:     getEnvAsFloat("MAP_DEFAULT_LAT", 28.6139),
		MapDefaultLongitude:    getEnvAsFloat("MAP_DEFAULT_LNG", 77.2090),
		MapZoom:                getEnvAsInt("MAP_ZOOM", 15),
		MapsAPIKey:             getEnv("MAPS_API_KEY", ""),
		CompactViewportWidthPx: getEnvAsInt("COMPACT_VIEWPORT_WIDTH_PX", 768),

		CustomersBaseURL:     strings.TrimRight(getEnv("CUSTOMERS_BASE_URL", "http://localhost:5000"), "/"),
		CustomersHTTPTimeout: getEnvAsDuration("CUSTOMERS_HTTP_TIMEOUT", 15*time.Second),
		ContactRatePerSecond: getEnvAsFloat("CONTACT_RATE_PER_SECOND", 0.5),
		ContactRateBurst:     getEnvAsInt("CONTACT_RATE_BURST", 5),
		RateLimitRedis:       getEnvAsBool("RATE_LIMIT_REDIS", false),

		LeadsStore:         strings.ToLower(strings.TrimSpace(getEnv("LEADS_STORE", "memory"))),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		SQLitePath:         getEnv("SQLITE_PATH", "customers.db"),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		KafkaBrokers:       getEnvAsList("KAFKA_BROKERS", nil),
		KafkaLeadTopic:     getEnv("KAFKA_LEAD_TOPIC", "leads.created"),

		LLMProvider:             strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "none"))),
		BedrockModelID:          getEnv("BEDROCK_MODEL_ID", "anthropic.claude-3-haiku-20240307-v1:0"),
		BedrockEmbeddingModelID: getEnv("BEDROCK_EMBEDDING_MODEL_ID", ""),
		GeminiAPIKey:            getEnv("GEMINI_API_KEY", ""),
		GeminiModel:             getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		AssistantModeration:     getEnvAsBool("ASSISTANT_MODERATION", false),
		AssistantMaxTokens:      getEnvAsInt("ASSISTANT_MAX_TOKENS", 512),
		AssistantRatePerSecond:  getEnvAsFloat("ASSISTANT_RATE_PER_SECOND", 0.2),
		AssistantRateBurst:      getEnvAsInt("ASSISTANT_RATE_BURST", 10),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		AWSRegion:           getEnv("AWS_REGION", "ap-south-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "none"))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		EmailFromAddress:  getEnv("EMAIL_FROM_ADDRESS", ""),
		EmailFromName:     getEnv("EMAIL_FROM_NAME", "WH Realtors"),
		LeadNotifyAddress: getEnv("LEAD_NOTIFY_ADDRESS", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
