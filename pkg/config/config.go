package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds the complete configuration for all binaries. The canvas
// dimension here must match the one the request gateway validates
// coordinates against; partition routing is derived from it.
type AppConfig struct {
	Environment string         `mapstructure:"environment"`
	LogLevel    string         `mapstructure:"log_level"`
	ServiceName string         `mapstructure:"service_name"`
	Scylla      ScyllaConfig   `mapstructure:"scylla"`
	Canvas      CanvasConfig   `mapstructure:"canvas"`
	Kafka       KafkaConfig    `mapstructure:"kafka"`
	Postgres    PostgresConfig `mapstructure:"postgres"`
	Redis       RedisConfig    `mapstructure:"redis"`
	Archiver    ArchiverConfig `mapstructure:"archiver"`
}

type ScyllaConfig struct {
	Hosts             []string      `mapstructure:"hosts"`
	Keyspace          string        `mapstructure:"keyspace"`
	ReplicationFactor int           `mapstructure:"replication_factor"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

type CanvasConfig struct {
	Dim uint32 `mapstructure:"dim"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

type PostgresConfig struct {
	URI      string `mapstructure:"uri"`
	MaxConns int    `mapstructure:"max_conns"`
	MinConns int    `mapstructure:"min_conns"`
}

type RedisConfig struct {
	Addr          string `mapstructure:"addr"`
	CheckpointKey string `mapstructure:"checkpoint_key"`
}

type ArchiverConfig struct {
	BatchSize      int           `mapstructure:"batch_size"`
	FlushInterval  time.Duration `mapstructure:"flush_interval"`
	WorkerCount    int           `mapstructure:"worker_count"`
	CheckpointPath string        `mapstructure:"checkpoint_path"`
}

// Load loads configuration from file and environment variables
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	// Default values
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("scylla.keyspace", "opbnbplace")
	v.SetDefault("scylla.replication_factor", 1)
	v.SetDefault("scylla.timeout", 10*time.Second)
	v.SetDefault("canvas.dim", 1000)
	v.SetDefault("postgres.max_conns", 50)
	v.SetDefault("postgres.min_conns", 10)
	v.SetDefault("redis.checkpoint_key", "place:archive:cursor")
	v.SetDefault("archiver.batch_size", 500)
	v.SetDefault("archiver.flush_interval", 500*time.Millisecond)
	v.SetDefault("archiver.worker_count", 4)
	v.SetDefault("archiver.checkpoint_path", "archive_cursor.bin")

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Config file
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	// Bind environment variables explicitly for nested structs so Unmarshal picks them up
	v.BindEnv("service_name", "SERVICE_NAME")
	v.BindEnv("environment", "ENVIRONMENT")
	v.BindEnv("log_level", "LOG_LEVEL")
	v.BindEnv("scylla.hosts", "SCYLLA_HOSTS")
	v.BindEnv("scylla.keyspace", "SCYLLA_KEYSPACE")
	v.BindEnv("scylla.replication_factor", "SCYLLA_REPLICATION_FACTOR")
	v.BindEnv("canvas.dim", "CANVAS_DIM")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("kafka.topic", "KAFKA_TOPIC")
	v.BindEnv("kafka.group_id", "KAFKA_GROUP_ID")
	v.BindEnv("postgres.uri", "POSTGRES_URI")
	v.BindEnv("postgres.max_conns", "POSTGRES_MAX_CONNS")
	v.BindEnv("postgres.min_conns", "POSTGRES_MIN_CONNS")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.checkpoint_key", "REDIS_CHECKPOINT_KEY")
	v.BindEnv("archiver.batch_size", "ARCHIVER_BATCH_SIZE")
	v.BindEnv("archiver.flush_interval", "ARCHIVER_FLUSH_INTERVAL")
	v.BindEnv("archiver.worker_count", "ARCHIVER_WORKER_COUNT")
	v.BindEnv("archiver.checkpoint_path", "ARCHIVER_CHECKPOINT_PATH")

	var config AppConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Host lists may arrive as a single comma-joined string from env
	if hosts := v.GetString("scylla.hosts"); hosts != "" && len(config.Scylla.Hosts) <= 1 {
		config.Scylla.Hosts = strings.Split(hosts, ",")
	}
	if brokers := v.GetString("kafka.brokers"); brokers != "" && len(config.Kafka.Brokers) <= 1 {
		config.Kafka.Brokers = strings.Split(brokers, ",")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *AppConfig) Validate() error {
	if c.ServiceName == "" {
		return errors.New("service_name is required")
	}
	if len(c.Scylla.Hosts) == 0 {
		return errors.New("scylla.hosts is required")
	}
	if c.Scylla.Keyspace == "" {
		return errors.New("scylla.keyspace is required")
	}
	if c.Scylla.ReplicationFactor < 1 {
		return errors.New("scylla.replication_factor must be at least 1")
	}
	if c.Canvas.Dim == 0 {
		return errors.New("canvas.dim must be positive")
	}
	if len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka.brokers is required")
	}
	if c.Kafka.Topic == "" {
		return errors.New("kafka.topic is required")
	}
	if c.Postgres.URI == "" {
		return errors.New("postgres.uri is required")
	}
	if c.Archiver.CheckpointPath == "" && c.Redis.Addr == "" {
		return errors.New("archiver.checkpoint_path or redis.addr is required")
	}
	return nil
}
