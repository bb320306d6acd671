package conf

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	MinIO    MinIOConfig
	Storage  StorageConfig
	Files    FilesConfig
	Log      LogConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// StorageConfig selects the storage backend and its roots.
type StorageConfig struct {
	// Driver is "local" or "minio".
	Driver string `mapstructure:"driver"`
	// UploadDir is the root for publicly reachable files (local driver).
	UploadDir string `mapstructure:"upload_dir"`
	// ProtectedDir is the root for files served through access checks.
	ProtectedDir string `mapstructure:"protected_dir"`
	// PublicBaseURL is prepended when building public file URLs.
	PublicBaseURL string `mapstructure:"public_base_url"`
}

// FilesConfig holds file lifecycle settings.
type FilesConfig struct {
	// OwnerTypes maps symbolic owner type names to stable codes,
	// e.g. "news.image" -> 1. Codes must never be reused.
	OwnerTypes map[string]int `mapstructure:"owner_types"`
	// TempRetention is how long unbound temporary files are kept
	// before the purge command removes them.
	TempRetention time.Duration `mapstructure:"temp_retention"`
	// SessionTTL bounds how long an upload session tracks file ids.
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

type LogConfig struct {
	Level            string        `mapstructure:"level"`
	Format           string        `mapstructure:"format"`
	Output           string        `mapstructure:"output"`
	File             FileLogConfig `mapstructure:"file"`
	EnableCaller     bool          `mapstructure:"enablecaller"`
	EnableStacktrace bool          `mapstructure:"enablestacktrace"`
}

type FileLogConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"maxsize"`
	MaxAge     int    `mapstructure:"maxage"`
	MaxBackups int    `mapstructure:"maxbackups"`
	Compress   bool   `mapstructure:"compress"`
}

func LoadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()

	viper.SetDefault("storage.driver", "local")
	viper.SetDefault("files.temp_retention", "24h")
	viper.SetDefault("files.session_ttl", "12h")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
