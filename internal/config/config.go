/**
 * @description
 * This package handles configuration management for the service. It uses the
 * Viper library to read settings from an optional .env file and from
 * environment variables, providing a centralized way to manage application
 * settings.
 */
package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the subscription tracker.
type Config struct {
	ServerPort             string `mapstructure:"SERVER_PORT"`
	DatabaseURL            string `mapstructure:"DATABASE_URL"`
	SupabaseURL            string `mapstructure:"SUPABASE_URL"`
	SupabaseServiceRoleKey string `mapstructure:"SUPABASE_SERVICE_ROLE_KEY"`
	SupabaseJWTSecret      string `mapstructure:"SUPABASE_JWT_SECRET"`
	SupabaseJWKSURL        string `mapstructure:"SUPABASE_JWKS_URL"`
	SupabaseJWTAudience    string `mapstructure:"SUPABASE_JWT_AUDIENCE"`
	SupabaseJWTIssuer      string `mapstructure:"SUPABASE_JWT_ISSUER"`
	RabbitMQURL            string `mapstructure:"RABBITMQ_URL"`
	EventExchange          string `mapstructure:"SUBSCRIPTION_EVENT_EXCHANGE"`
	RedisURL               string `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix   string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	PasswordChangesPerMin  int    `mapstructure:"PASSWORD_CHANGE_RATE_LIMIT_PER_MINUTE"`
}

// LoadConfig reads configuration from the optional .env file at the given
// path and from environment variables. Environment variables win.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SUPABASE_JWT_AUDIENCE", "authenticated")
	viper.SetDefault("SUBSCRIPTION_EVENT_EXCHANGE", "subscription_events")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "subtracker:rate_limit")
	viper.SetDefault("PASSWORD_CHANGE_RATE_LIMIT_PER_MINUTE", 5)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("SUPABASE_URL")
	_ = viper.BindEnv("SUPABASE_SERVICE_ROLE_KEY")
	_ = viper.BindEnv("SUPABASE_JWT_SECRET")
	_ = viper.BindEnv("SUPABASE_JWKS_URL")
	_ = viper.BindEnv("SUPABASE_JWT_AUDIENCE")
	_ = viper.BindEnv("SUPABASE_JWT_ISSUER")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("SUBSCRIPTION_EVENT_EXCHANGE")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("PASSWORD_CHANGE_RATE_LIMIT_PER_MINUTE")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
		err = nil
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RedisRateLimitPrefix = strings.TrimSpace(config.RedisRateLimitPrefix)
	if config.RedisRateLimitPrefix == "" {
		config.RedisRateLimitPrefix = "subtracker:rate_limit"
	}

	return
}
