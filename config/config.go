package config

import (
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration (used when SESSION_STORE=redis).
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`

	// Session behaviour.
	SessionStore              string `mapstructure:"SESSION_STORE" validate:"oneof=memory redis"`
	SessionTTLMinutes         int    `mapstructure:"SESSION_TTL_MINUTES" validate:"min=1"`
	SessionKeepHistoryOnClear bool   `mapstructure:"SESSION_KEEP_HISTORY_ON_CLEAR"`
	SessionCookieName         string `mapstructure:"SESSION_COOKIE_NAME" validate:"required"`

	// Pinecone vector index.
	PineconeAPIKey string `mapstructure:"PINECONE_API_KEY"`
	PineconeHost   string `mapstructure:"PINECONE_HOST"`
	RetrievalTopK  int    `mapstructure:"RETRIEVAL_TOP_K" validate:"min=1"`

	// HuggingFace inference API (embeddings).
	HuggingFaceAPIKey string `mapstructure:"HUGGINGFACE_API_KEY"`
	EmbeddingModel    string `mapstructure:"EMBEDDING_MODEL" validate:"required"`

	// Answer generator.
	GeneratorProvider    string  `mapstructure:"GENERATOR_PROVIDER" validate:"oneof=groq gemini"`
	GroqAPIKey           string  `mapstructure:"GROQ_API_KEY"`
	GroqBaseURL          string  `mapstructure:"GROQ_BASE_URL"`
	GroqModel            string  `mapstructure:"GROQ_MODEL"`
	GeminiAPIKey         string  `mapstructure:"GEMINI_API_KEY"`
	GeminiModel          string  `mapstructure:"GEMINI_MODEL"`
	GeneratorMaxTokens   int     `mapstructure:"GENERATOR_MAX_TOKENS" validate:"min=1"`
	GeneratorTemperature float64 `mapstructure:"GENERATOR_TEMPERATURE"`

	// Comma-separated booking fields that must be collected before a
	// session becomes ready for confirmation.
	BookingRequiredFields string `mapstructure:"BOOKING_REQUIRED_FIELDS" validate:"required"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("SESSION_STORE", "memory")
	viper.SetDefault("SESSION_TTL_MINUTES", 30)
	viper.SetDefault("SESSION_KEEP_HISTORY_ON_CLEAR", false)
	viper.SetDefault("SESSION_COOKIE_NAME", "medibook_session")
	// Secrets default to empty so viper registers the keys; without a
	// default, Unmarshal never sees an env-only key.
	viper.SetDefault("PINECONE_API_KEY", "")
	viper.SetDefault("PINECONE_HOST", "")
	viper.SetDefault("RETRIEVAL_TOP_K", 3)
	viper.SetDefault("HUGGINGFACE_API_KEY", "")
	viper.SetDefault("EMBEDDING_MODEL", "sentence-transformers/all-MiniLM-L6-v2")
	viper.SetDefault("GENERATOR_PROVIDER", "groq")
	viper.SetDefault("GROQ_API_KEY", "")
	viper.SetDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1")
	viper.SetDefault("GROQ_MODEL", "llama-3.1-8b-instant")
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("GEMINI_MODEL", "models/gemini-1.5-pro")
	viper.SetDefault("GENERATOR_MAX_TOKENS", 500)
	viper.SetDefault("GENERATOR_TEMPERATURE", 0.4)
	viper.SetDefault("BOOKING_REQUIRED_FIELDS", "name,phone,preferred_date,preferred_time,reason")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(AppConfig); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
}

// RequiredFields returns the configured required booking field names.
func RequiredFields() []string {
	parts := strings.Split(AppConfig.BookingRequiredFields, ",")
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		if f := strings.TrimSpace(p); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
