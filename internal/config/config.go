package config

import "time"

// IdentityConfig configures how calling identities and tokens are issued.
type IdentityConfig struct {
	// Driver selects the token issuer: "livekit" or "local".
	Driver string `mapstructure:"driver" yaml:"driver"`
	// TokenTTL bounds the lifetime of issued tokens.
	TokenTTL time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`

	// LiveKit credentials, required when Driver is "livekit".
	LiveKitAPIKey    string `mapstructure:"livekit_api_key" yaml:"livekit_api_key"`
	LiveKitAPISecret string `mapstructure:"livekit_api_secret" yaml:"livekit_api_secret"`
	LiveKitURL       string `mapstructure:"livekit_url" yaml:"livekit_url"`

	// Local HS256 settings, used when Driver is "local".
	LocalSecret   string `mapstructure:"local_secret" yaml:"local_secret"`
	LocalIssuer   string `mapstructure:"local_issuer" yaml:"local_issuer"`
	LocalAudience string `mapstructure:"local_audience" yaml:"local_audience"`
}

// BlobConfig configures where uploaded file bytes are stored.
type BlobConfig struct {
	// Driver selects the blob backend: "s3" or "memory".
	Driver string `mapstructure:"driver" yaml:"driver"`

	// S3 settings, required when Driver is "s3". BaseEndpoint allows
	// pointing at a MinIO instance in development.
	S3Region       string `mapstructure:"s3_region" yaml:"s3_region"`
	S3Bucket       string `mapstructure:"s3_bucket" yaml:"s3_bucket"`
	S3AccessKey    string `mapstructure:"s3_access_key" yaml:"s3_access_key"`
	S3SecretKey    string `mapstructure:"s3_secret_key" yaml:"s3_secret_key"`
	S3BaseEndpoint string `mapstructure:"s3_base_endpoint" yaml:"s3_base_endpoint"`
}

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	LogPretty         bool          `mapstructure:"log_pretty" yaml:"log_pretty"`
	MaxUploadBytes    int64         `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`

	Identity IdentityConfig `mapstructure:"identity" yaml:"identity"`
	Blob     BlobConfig     `mapstructure:"blob" yaml:"blob"`
}

// Default returns configuration with reasonable starter defaults.
// The defaults run without any external service: local token issuer
// and in-memory blob storage.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		DatabasePath:      "huddle.db",
		LogLevel:          "info",
		LogPretty:         true,
		MaxUploadBytes:    32 << 20,
		Identity: IdentityConfig{
			Driver:        "local",
			TokenTTL:      time.Hour,
			LocalSecret:   "dev-secret-change-me",
			LocalIssuer:   "huddle",
			LocalAudience: "huddle-client",
		},
		Blob: BlobConfig{
			Driver: "memory",
		},
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.MaxUploadBytes != 0 {
		c.MaxUploadBytes = other.MaxUploadBytes
	}
}

// Validate checks that the selected drivers have the settings they need.
func (c *Config) Validate() error {
	if c.Identity.Driver == "livekit" {
		if c.Identity.LiveKitAPIKey == "" || c.Identity.LiveKitAPISecret == "" || c.Identity.LiveKitURL == "" {
			return ErrMissingLiveKitConfig
		}
	}
	if c.Blob.Driver == "s3" {
		if c.Blob.S3Region == "" || c.Blob.S3Bucket == "" {
			return ErrMissingS3Config
		}
	}
	return nil
}
