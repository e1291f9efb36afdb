package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppName string
	Port    string
	Prefix  string
	GinMode string

	LogLevel  string
	LogFormat string

	Database DatabaseConfig
	Tx       TxConfig
	Storage  StorageConfig

	CORSOrigins   []string
	UploadMaxSize int64

	RateLimitPerMin int
	RateLimitBurst  int
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	TimeZone string
}

// TxConfig bounds how long a workflow waits for a connection and how long
// the whole transaction may run.
type TxConfig struct {
	MaxWait time.Duration
	Timeout time.Duration
}

type StorageConfig struct {
	Driver string // supabase | s3

	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3UseSSL    bool
	S3PublicURL string
}

// DSN returns DATABASE_URL when set, otherwise a key/value postgres DSN.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode, d.TimeZone)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "bkhome")
	v.SetDefault("PORT", "8080")
	v.SetDefault("PREFIX", "api")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "bkhome")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_TIMEZONE", "Asia/Ho_Chi_Minh")

	v.SetDefault("TX_MAX_WAIT", "10s")
	v.SetDefault("TX_TIMEOUT", "60s")

	v.SetDefault("STORAGE_DRIVER", "supabase")
	v.SetDefault("SUPABASE_BUCKET", "bkhome")
	v.SetDefault("S3_ENDPOINT", "localhost:9000")
	v.SetDefault("S3_BUCKET", "bkhome")
	v.SetDefault("S3_USE_SSL", false)

	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("UPLOAD_MAX_SIZE", 5<<20)
	v.SetDefault("RATE_LIMIT_PER_MIN", 30)
	v.SetDefault("RATE_LIMIT_BURST", 10)
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded, relying on environment variables")
	}
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppName:   v.GetString("APP_NAME"),
		Port:      v.GetString("PORT"),
		Prefix:    strings.Trim(v.GetString("PREFIX"), "/"),
		GinMode:   v.GetString("GIN_MODE"),
		LogLevel:  strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat: strings.ToLower(v.GetString("LOG_FORMAT")),
		Database: DatabaseConfig{
			URL:      v.GetString("DATABASE_URL"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			TimeZone: v.GetString("DB_TIMEZONE"),
		},
		Tx: TxConfig{
			MaxWait: v.GetDuration("TX_MAX_WAIT"),
			Timeout: v.GetDuration("TX_TIMEOUT"),
		},
		Storage: StorageConfig{
			Driver:         strings.ToLower(v.GetString("STORAGE_DRIVER")),
			SupabaseURL:    strings.TrimRight(v.GetString("SUPABASE_URL"), "/"),
			SupabaseKey:    v.GetString("SUPABASE_KEY"),
			SupabaseBucket: v.GetString("SUPABASE_BUCKET"),
			S3Endpoint:     v.GetString("S3_ENDPOINT"),
			S3AccessKey:    v.GetString("S3_ACCESS_KEY"),
			S3SecretKey:    v.GetString("S3_SECRET_KEY"),
			S3Bucket:       v.GetString("S3_BUCKET"),
			S3UseSSL:       v.GetBool("S3_USE_SSL"),
			S3PublicURL:    strings.TrimRight(v.GetString("S3_PUBLIC_URL"), "/"),
		},
		CORSOrigins:     splitList(v.GetString("CORS_ORIGINS")),
		UploadMaxSize:   v.GetInt64("UPLOAD_MAX_SIZE"),
		RateLimitPerMin: v.GetInt("RATE_LIMIT_PER_MIN"),
		RateLimitBurst:  v.GetInt("RATE_LIMIT_BURST"),
	}

	if cfg.Tx.MaxWait <= 0 || cfg.Tx.Timeout <= 0 {
		return nil, fmt.Errorf("TX_MAX_WAIT and TX_TIMEOUT must be positive durations")
	}
	if cfg.Tx.MaxWait > cfg.Tx.Timeout {
		return nil, fmt.Errorf("TX_MAX_WAIT (%s) exceeds TX_TIMEOUT (%s)", cfg.Tx.MaxWait, cfg.Tx.Timeout)
	}
	switch cfg.Storage.Driver {
	case "supabase", "s3":
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Storage.Driver)
	}
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
