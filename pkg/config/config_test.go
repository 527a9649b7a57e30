package config

import (
	"os"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() AppConfig {
	return AppConfig{
		ServiceName: "test",
		Scylla: ScyllaConfig{
			Hosts:             []string{"localhost:9042"},
			Keyspace:          "opbnbplace",
			ReplicationFactor: 1,
		},
		Canvas: CanvasConfig{Dim: 1000},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topic:   "placements",
		},
		Postgres: PostgresConfig{URI: "postgres://localhost:5432/place"},
		Archiver: ArchiverConfig{CheckpointPath: "cursor.bin"},
	}
}

func TestConfigValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("valid config passes validation", prop.ForAll(
		func(serviceName, host, keyspace, topic, broker string) bool {
			cfg := validConfig()
			cfg.ServiceName = serviceName
			cfg.Scylla.Hosts = []string{host}
			cfg.Scylla.Keyspace = keyspace
			cfg.Kafka.Topic = topic
			cfg.Kafka.Brokers = []string{broker}
			return cfg.Validate() == nil
		},
		gen.Identifier(),
		gen.Identifier(),
		gen.Identifier(),
		gen.Identifier(),
		gen.Identifier(),
	))

	properties.Property("zero canvas dimension fails validation", prop.ForAll(
		func(serviceName string) bool {
			cfg := validConfig()
			cfg.ServiceName = serviceName
			cfg.Canvas.Dim = 0
			return cfg.Validate() != nil
		},
		gen.Identifier(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestValidateMissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"missing service name", func(c *AppConfig) { c.ServiceName = "" }},
		{"missing scylla hosts", func(c *AppConfig) { c.Scylla.Hosts = nil }},
		{"missing keyspace", func(c *AppConfig) { c.Scylla.Keyspace = "" }},
		{"zero replication factor", func(c *AppConfig) { c.Scylla.ReplicationFactor = 0 }},
		{"missing kafka brokers", func(c *AppConfig) { c.Kafka.Brokers = nil }},
		{"missing kafka topic", func(c *AppConfig) { c.Kafka.Topic = "" }},
		{"missing postgres uri", func(c *AppConfig) { c.Postgres.URI = "" }},
		{"no checkpoint backend", func(c *AppConfig) {
			c.Archiver.CheckpointPath = ""
			c.Redis.Addr = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfig(t *testing.T) {
	os.Setenv("SERVICE_NAME", "test-service")
	os.Setenv("SCYLLA_HOSTS", "scylla-1:9042,scylla-2:9042")
	os.Setenv("CANVAS_DIM", "1000")
	os.Setenv("KAFKA_BROKERS", "localhost:9092")
	os.Setenv("KAFKA_TOPIC", "placements")
	os.Setenv("POSTGRES_URI", "postgres://localhost:5432/place")
	defer os.Clearenv()

	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "test-service", cfg.ServiceName)
	assert.Equal(t, []string{"scylla-1:9042", "scylla-2:9042"}, cfg.Scylla.Hosts)
	assert.Equal(t, "opbnbplace", cfg.Scylla.Keyspace)
	assert.Equal(t, 1, cfg.Scylla.ReplicationFactor)
	assert.Equal(t, uint32(1000), cfg.Canvas.Dim)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "placements", cfg.Kafka.Topic)
	assert.Equal(t, 500, cfg.Archiver.BatchSize)

	os.Unsetenv("SCYLLA_HOSTS")
	_, err = Load("")
	assert.Error(t, err)
}
