package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	Port              string
	IsProduction      bool
	EnableDBCheck     bool
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// AllowedOrigins restricts CORS in production. Ignored otherwise.
	AllowedOrigins []string

	// PostRetryMax bounds automatic retries of postings that fail with a
	// serialization conflict.
	PostRetryMax int

	// ReconcileAmountTolerance is the maximum absolute difference between a
	// bank transaction amount and a ledger line base amount for a match.
	ReconcileAmountTolerance decimal.Decimal

	// ReconcileWindowDays is the default date window for match suggestions.
	ReconcileWindowDays int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "finbooks-app")
	viper.SetDefault("ALLOWED_ORIGINS", "")
	viper.SetDefault("POST_RETRY_MAX", 3)
	viper.SetDefault("RECONCILE_AMOUNT_TOLERANCE", "0.01")
	viper.SetDefault("RECONCILE_WINDOW_DAYS", 7)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	jwtSecret := viper.GetString("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour * 1
		if jwtExpiryStr != "" {
			log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration.String())
		}
	}

	jwtIssuer := viper.GetString("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "finbooks-app"
		log.Printf("Warning: JWT_ISSUER not set. Defaulting to %s.\n", jwtIssuer)
	}

	postRetryMax := viper.GetInt("POST_RETRY_MAX")
	if postRetryMax < 0 {
		log.Printf("Warning: Invalid value for POST_RETRY_MAX (%d). Defaulting to 3.\n", postRetryMax)
		postRetryMax = 3
	}

	toleranceStr := viper.GetString("RECONCILE_AMOUNT_TOLERANCE")
	tolerance, err := decimal.NewFromString(toleranceStr)
	if err != nil || tolerance.IsNegative() {
		log.Printf("Warning: Invalid value for RECONCILE_AMOUNT_TOLERANCE ('%s'). Defaulting to 0.01.\n", toleranceStr)
		tolerance = decimal.RequireFromString("0.01")
	}

	windowDays := viper.GetInt("RECONCILE_WINDOW_DAYS")
	if windowDays <= 0 {
		log.Printf("Warning: Invalid value for RECONCILE_WINDOW_DAYS (%d). Defaulting to 7.\n", windowDays)
		windowDays = 7
	}

	originsStr := viper.GetString("ALLOWED_ORIGINS")
	var origins []string
	for _, o := range strings.Split(originsStr, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.JWTSecret = jwtSecret
	cfg.JWTExpiryDuration = jwtExpiryDuration
	cfg.JWTIssuer = jwtIssuer
	cfg.AllowedOrigins = origins
	cfg.PostRetryMax = postRetryMax
	cfg.ReconcileAmountTolerance = tolerance
	cfg.ReconcileWindowDays = windowDays

	return cfg, nil
}
