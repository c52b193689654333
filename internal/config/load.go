package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load,
// e.g. TASKIE_SERVER_PORT or TASKIE_AUTH_JWT_SECRET.
const EnvPrefix = "TASKIE"

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// A .env file in the working directory is loaded first when present.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	// A missing .env file is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the struct tags of a loaded configuration plus the rules
// that span fields.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Uploads.Backend == "minio" {
		m := cfg.Uploads.Minio
		if m.Endpoint == "" || m.AccessKey == "" || m.SecretKey == "" || m.Bucket == "" {
			return errors.New(
				"config validation failed: uploads.minio endpoint, access_key, secret_key and bucket are required for the minio backend",
			)
		}
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.version", "1.0.0")
	v.SetDefault("server.cors_origin", "*")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.mongo_database", "taskie")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime_minutes", 5)

	v.SetDefault("auth.token_lifetime_hours", 24*30)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("uploads.backend", "local")
	v.SetDefault("uploads.dir", "uploads")
	v.SetDefault("uploads.max_file_size_mb", 5)
	v.SetDefault("uploads.minio.bucket", "taskie-uploads")

	v.SetDefault("seed.auto_seed", true)
}

// bindEnvs registers every key so AutomaticEnv also applies to values
// that have neither a default nor a config file entry.
func bindEnvs(v *viper.Viper) {
	keys := []string{
		"server.port", "server.log_level", "server.environment", "server.version",
		"server.cors_origin",
		"database.driver", "database.url", "database.mongo_database",
		"database.max_open_conns", "database.max_idle_conns", "database.conn_max_lifetime_minutes",
		"auth.jwt_secret", "auth.token_lifetime_hours", "auth.bcrypt_cost",
		"uploads.backend", "uploads.dir", "uploads.max_file_size_mb",
		"uploads.minio.endpoint", "uploads.minio.access_key", "uploads.minio.secret_key",
		"uploads.minio.bucket", "uploads.minio.use_ssl",
		"seed.auto_seed",
	}
	for _, key := range keys {
		// BindEnv only fails when called without a key.
		_ = v.BindEnv(key)
	}
}
