package config

import "strings"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Uploads  UploadsConfig  `mapstructure:"uploads" validate:"required"`
	Seed     SeedConfig     `mapstructure:"seed"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port        int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel    string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	Environment string `mapstructure:"environment" validate:"required,oneof=development production test"`
	// Version is reported by the root health endpoint.
	Version string `mapstructure:"version" validate:"required"`
	// CORSOrigin is a comma-separated list of browser origins, or "*".
	CORSOrigin string `mapstructure:"cors_origin" validate:"required"`
}

// IsDevelopment reports whether error details may be exposed to clients.
func (c ServerConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// AllowedOrigins splits CORSOrigin into its trimmed, non-empty entries.
func (c ServerConfig) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Driver selects the store implementation.
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres mongo"`
	URL    string `mapstructure:"url" validate:"required,url"`
	// MongoDatabase names the database used when Driver is mongo.
	MongoDatabase   string `mapstructure:"mongo_database" validate:"required_if=Driver mongo"`
	MaxOpenConns    int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime_minutes" validate:"gte=1"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret          string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeHours int    `mapstructure:"token_lifetime_hours" validate:"required,gt=0"`
	BCryptCost         int    `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
}

// UploadsConfig controls where uploaded images are kept.
type UploadsConfig struct {
	// Backend is "local" for the filesystem or "minio" for an S3-compatible bucket.
	Backend       string      `mapstructure:"backend" validate:"required,oneof=local minio"`
	Dir           string      `mapstructure:"dir" validate:"required_if=Backend local"`
	MaxFileSizeMB int64       `mapstructure:"max_file_size_mb" validate:"required,gt=0"`
	Minio         MinioConfig `mapstructure:"minio"`
}

// MinioConfig holds the object storage connection used by the minio backend.
type MinioConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// SeedConfig controls reference data seeding at startup.
type SeedConfig struct {
	AutoSeed bool `mapstructure:"auto_seed"`
}
