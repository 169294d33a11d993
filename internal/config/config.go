package config

import (
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds Postgres connection settings
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis connection settings plus the event queue key
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	QueueKey string
}

// JWTConfig holds token verification settings
type JWTConfig struct {
	SecretKey string
	AdminRole string
}

// SweepConfig holds archival sweeper settings. Retention is how old a
// transaction record must be before the sweep exports it; KeyRetention is
// the idempotency cache window.
type SweepConfig struct {
	Enabled      bool
	Interval     time.Duration
	Retention    time.Duration
	KeyRetention time.Duration
	ArchiveDir   string
}

// CollectorConfig holds the ledger event collector settings
type CollectorConfig struct {
	Enabled      bool
	PollInterval time.Duration
	BatchSize    int
}

// Config is the full service configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Sweep     SweepConfig
	Collector CollectorConfig
}

// Load reads .env plus environment variables and returns the resolved
// configuration. Environment variables override file values.
func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()
	viper.ReadInConfig()

	bindEnvs()
	setDefaults()

	return &Config{
		Server: ServerConfig{
			Port:         viper.GetString("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout"),
			WriteTimeout: viper.GetDuration("server.write_timeout"),
			IdleTimeout:  viper.GetDuration("server.idle_timeout"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("database.host"),
			Port:            viper.GetString("database.port"),
			User:            viper.GetString("database.user"),
			Password:        viper.GetString("database.password"),
			Name:            viper.GetString("database.name"),
			SSLMode:         viper.GetString("database.ssl_mode"),
			MaxOpenConns:    viper.GetInt("database.max_open_conns"),
			MaxIdleConns:    viper.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: viper.GetDuration("database.conn_max_lifetime"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("redis.host"),
			Port:     viper.GetString("redis.port"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
			QueueKey: viper.GetString("redis.queue_key"),
		},
		JWT: JWTConfig{
			SecretKey: viper.GetString("jwt.secret_key"),
			AdminRole: viper.GetString("jwt.admin_role"),
		},
		Sweep: SweepConfig{
			Enabled:      viper.GetBool("sweep.enabled"),
			Interval:     viper.GetDuration("sweep.interval"),
			Retention:    viper.GetDuration("sweep.retention"),
			KeyRetention: viper.GetDuration("sweep.key_retention"),
			ArchiveDir:   viper.GetString("sweep.archive_dir"),
		},
		Collector: CollectorConfig{
			Enabled:      viper.GetBool("collector.enabled"),
			PollInterval: viper.GetDuration("collector.poll_interval"),
			BatchSize:    viper.GetInt("collector.batch_size"),
		},
	}
}

func bindEnvs() {
	viper.BindEnv("server.port", "PORT")

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")
	viper.BindEnv("redis.queue_key", "REDIS_QUEUE_KEY")

	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	viper.BindEnv("jwt.admin_role", "JWT_ADMIN_ROLE")

	viper.BindEnv("sweep.enabled", "SWEEP_ENABLED")
	viper.BindEnv("sweep.interval", "SWEEP_INTERVAL")
	viper.BindEnv("sweep.retention", "SWEEP_RETENTION")
	viper.BindEnv("sweep.key_retention", "SWEEP_KEY_RETENTION")
	viper.BindEnv("sweep.archive_dir", "SWEEP_ARCHIVE_DIR")

	viper.BindEnv("collector.enabled", "COLLECTOR_ENABLED")
	viper.BindEnv("collector.poll_interval", "COLLECTOR_POLL_INTERVAL")
	viper.BindEnv("collector.batch_size", "COLLECTOR_BATCH_SIZE")
}

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.read_timeout", 15*time.Second)
	viper.SetDefault("server.write_timeout", 15*time.Second)
	viper.SetDefault("server.idle_timeout", 60*time.Second)

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", "5432")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "password")
	viper.SetDefault("database.name", "campus_ledger")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", "6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.queue_key", "ledger_events")

	viper.SetDefault("jwt.secret_key", "")
	viper.SetDefault("jwt.admin_role", "admin")

	viper.SetDefault("sweep.enabled", true)
	viper.SetDefault("sweep.interval", 24*time.Hour)
	viper.SetDefault("sweep.retention", 7*24*time.Hour)
	viper.SetDefault("sweep.key_retention", 24*time.Hour)
	viper.SetDefault("sweep.archive_dir", "transaction_archives")

	viper.SetDefault("collector.enabled", true)
	viper.SetDefault("collector.poll_interval", 5*time.Second)
	viper.SetDefault("collector.batch_size", 100)
}
