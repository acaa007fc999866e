package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL    string
	Port           string
	GoEnv          string
	AuthURL        string
	AuthAnonKey    string
	AuthServiceKey string
	AuthJWTSecret  string
	SiteURL        string
	DevRedirectURL string
	CORSOrigin     string
	LogLevel       string
}

var config *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	// Determine which environment file to load
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		// If environment-specific file doesn't exist, try .env
		if err := godotenv.Load(); err != nil {
			// In production the variables are set directly, so it's okay
			// if .env files don't exist
			log.Printf("No .env file found, using system environment variables")
		}
	} else {
		log.Printf("Loaded configuration from %s", envFile)
	}

	cfg := &Config{
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		Port:           getEnv("PORT", "8080"),
		GoEnv:          getEnv("GO_ENV", "development"),
		AuthURL:        getEnv("AUTH_URL", ""),
		AuthAnonKey:    getEnv("AUTH_ANON_KEY", ""),
		AuthServiceKey: getEnv("AUTH_SERVICE_KEY", ""),
		AuthJWTSecret:  getEnv("AUTH_JWT_SECRET", ""),
		SiteURL:        getEnv("SITE_URL", ""),
		DevRedirectURL: getEnv("DEV_REDIRECT_URL", ""),
		CORSOrigin:     getEnv("CORS_ORIGIN", "http://localhost:3000"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	config = cfg
	return cfg, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.AuthURL == "" {
		return fmt.Errorf("AUTH_URL is required")
	}
	return nil
}

// GetConfig returns the loaded configuration
func GetConfig() *Config {
	return config
}

// SetConfig replaces the loaded configuration (used by tests)
func SetConfig(c *Config) {
	config = c
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// ResetRedirectURL builds the callback URL embedded in password recovery
// emails. The DEV_REDIRECT_URL override wins when set; otherwise the
// public site URL is used, falling back to the local frontend.
// Invitation emails carry ?invited=true so the reset page can adjust
// its copy.
func (c *Config) ResetRedirectURL(invited bool) string {
	base := c.DevRedirectURL
	if base == "" {
		base = c.SiteURL
	}
	if base == "" {
		base = "http://localhost:3000"
	}
	url := base + "/auth/reset-password"
	if invited {
		url += "?invited=true"
	}
	return url
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
