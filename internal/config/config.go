// Package config loads application configuration from environment
// variables.
package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. Required variables are enforced by must()
// and missing values cause the program to exit with a fatal log message;
// integration credentials (Stripe, VAPID, email, Strava) are optional so
// a development instance can run without them.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	BaseURL        string // public base URL used in checkout redirect links
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	Currency            string // ISO currency code for checkout, default "nok"
	StripeSecretKey     string // Stripe API secret key
	StripeWebhookSecret string // Stripe webhook signing secret
	VAPIDPublicKey      string // Web Push VAPID public key
	VAPIDPrivateKey     string // Web Push VAPID private key
	VAPIDSubscriber     string // contact address advertised to push services
	EmailAPIURL         string // transactional email API endpoint
	EmailAPIKey         string // transactional email API key
	EmailFrom           string // sender address for transactional email
	StravaClientID      string // Strava OAuth client id
	StravaClientSecret  string // Strava OAuth client secret
}

// Load reads configuration values from environment variables and
// returns a Config.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		BaseURL:        getenv("BASE_URL", "http://localhost:8080"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),

		Currency:            getenv("CURRENCY", "nok"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		VAPIDPublicKey:      os.Getenv("VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey:     os.Getenv("VAPID_PRIVATE_KEY"),
		VAPIDSubscriber:     getenv("VAPID_SUBSCRIBER", "mailto:post@runclub.no"),
		EmailAPIURL:         os.Getenv("EMAIL_API_URL"),
		EmailAPIKey:         os.Getenv("EMAIL_API_KEY"),
		EmailFrom:           os.Getenv("EMAIL_FROM"),
		StravaClientID:      os.Getenv("STRAVA_CLIENT_ID"),
		StravaClientSecret:  os.Getenv("STRAVA_CLIENT_SECRET"),
	}
}

// must returns the value of an environment variable or exits the
// program when the variable is unset.
func must(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("config: missing required env %s", key)
	}
	return v
}

// mustInt parses a required integer environment variable.
func mustInt(key string) int {
	v := must(key)
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("config: env %s must be an integer, got %q", key, v)
	}
	return n
}
