package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Session  SessionConfig
	API      APIConfig
	Stripe   StripeConfig
	Checkout CheckoutConfig
}

type ServerConfig struct {
	Port string
	Host string
	Env  string
}

type SessionConfig struct {
	Secret string
}

// APIConfig points at the marketplace REST API that owns all catalog,
// promo, order and identity logic.
type APIConfig struct {
	BaseURL string
}

type StripeConfig struct {
	SecretKey string
	PublicKey string
}

type CheckoutConfig struct {
	// SuccessDelay is the pause between a confirmed order and the redirect
	// to the confirmation page, so the success notice is readable.
	SuccessDelay time.Duration
}

func Load() (*Config, error) {
	// Load .env files if they exist (try .env.local first, then .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "localhost"),
			Env:  getEnv("ENV", "development"),
		},
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", "your-secret-key-change-in-production"),
		},
		API: APIConfig{
			BaseURL: getEnv("MARKETPLACE_API_URL", "http://localhost:9000/api/v1"),
		},
		Stripe: StripeConfig{
			SecretKey: getEnv("STRIPE_SECRET_KEY", ""),
			PublicKey: getEnv("STRIPE_PUBLIC_KEY", ""),
		},
		Checkout: CheckoutConfig{
			SuccessDelay: time.Duration(getEnvAsInt("CHECKOUT_SUCCESS_DELAY_MS", 1500)) * time.Millisecond,
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
