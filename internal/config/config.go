// backend-go/internal/config/config.go
package config

import (
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Cache         CacheConfig
	Replenishment ReplenishmentConfig
	Telemetry     TelemetryConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Driver      string
	Host        string
	Port        string
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int
	SeedDir     string
	AutoMigrate bool
}

type CacheConfig struct {
	Enabled             bool
	RedisURL            string
	RedisHost           string
	RedisPort           string
	RedisPassword       string
	RedisDB             int
	DashboardTTLSeconds int
}

// ReplenishmentConfig holds the business rules of the depletion and restock pipeline.
type ReplenishmentConfig struct {
	TimeZone             string
	LowStockDays         float64
	VelocityWindowDays   int
	TaskSLA              time.Duration
	AssignmentStrategy   string
	RetainResolvedAlerts bool
	ScanInterval         time.Duration
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	OTLPEndpoint string
	Insecure     bool
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_DRIVER", "postgres")
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "shelfstock")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("DB_MAX_CONNS", 25)
		viper.SetDefault("DB_SEED_DIR", "")
		viper.SetDefault("DB_AUTO_MIGRATE", false)
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_DASHBOARD_TTL_SECONDS", 60)
		viper.SetDefault("REPLENISHMENT_TIME_ZONE", "Asia/Kolkata")
		viper.SetDefault("REPLENISHMENT_LOW_STOCK_DAYS", 6)
		viper.SetDefault("REPLENISHMENT_VELOCITY_WINDOW_DAYS", 0)
		viper.SetDefault("REPLENISHMENT_TASK_SLA", "2h")
		viper.SetDefault("REPLENISHMENT_ASSIGNMENT", "global")
		viper.SetDefault("REPLENISHMENT_RETAIN_RESOLVED_ALERTS", false)
		viper.SetDefault("REPLENISHMENT_SCAN_INTERVAL", "0s")
		viper.SetDefault("OTEL_ENABLED", false)
		viper.SetDefault("OTEL_SERVICE_NAME", "shelfstock-api")
		viper.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")
		viper.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", true)

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Driver:      viper.GetString("DB_DRIVER"),
				Host:        viper.GetString("DB_HOST"),
				Port:        viper.GetString("DB_PORT"),
				User:        viper.GetString("DB_USER"),
				Password:    viper.GetString("DB_PASSWORD"),
				DBName:      viper.GetString("DB_NAME"),
				SSLMode:     viper.GetString("DB_SSLMODE"),
				MaxConns:    viper.GetInt("DB_MAX_CONNS"),
				SeedDir:     viper.GetString("DB_SEED_DIR"),
				AutoMigrate: viper.GetBool("DB_AUTO_MIGRATE"),
			},
			Cache: CacheConfig{
				Enabled:             viper.GetBool("CACHE_ENABLED"),
				RedisURL:            viper.GetString("REDIS_URL"),
				RedisHost:           viper.GetString("REDIS_HOST"),
				RedisPort:           viper.GetString("REDIS_PORT"),
				RedisPassword:       viper.GetString("REDIS_PASSWORD"),
				RedisDB:             viper.GetInt("REDIS_DB"),
				DashboardTTLSeconds: viper.GetInt("CACHE_DASHBOARD_TTL_SECONDS"),
			},
			Replenishment: ReplenishmentConfig{
				TimeZone:             viper.GetString("REPLENISHMENT_TIME_ZONE"),
				LowStockDays:         viper.GetFloat64("REPLENISHMENT_LOW_STOCK_DAYS"),
				VelocityWindowDays:   viper.GetInt("REPLENISHMENT_VELOCITY_WINDOW_DAYS"),
				TaskSLA:              viper.GetDuration("REPLENISHMENT_TASK_SLA"),
				AssignmentStrategy:   viper.GetString("REPLENISHMENT_ASSIGNMENT"),
				RetainResolvedAlerts: viper.GetBool("REPLENISHMENT_RETAIN_RESOLVED_ALERTS"),
				ScanInterval:         viper.GetDuration("REPLENISHMENT_SCAN_INTERVAL"),
			},
			Telemetry: TelemetryConfig{
				Enabled:      viper.GetBool("OTEL_ENABLED"),
				ServiceName:  viper.GetString("OTEL_SERVICE_NAME"),
				OTLPEndpoint: viper.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
				Insecure:     viper.GetBool("OTEL_EXPORTER_OTLP_INSECURE"),
			},
		}
	})

	return instance
}

// DSN builds a libpq style connection string.
func (c DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}
