// Package config loads and validates memindex configuration from YAML files
// with environment-variable overrides. It provides typed structs for the
// index, the document store and every external collaborator (Kafka, Redis,
// PostgreSQL, metrics, logging).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Payload policies applied by the engine when a document is indexed.
const (
	PayloadMembership = "membership"
	PayloadFrequency  = "frequency"
	PayloadPositions  = "positions"
)

// Document store backends.
const (
	BackendMemory   = "memory"
	BackendBadger   = "badger"
	BackendBolt     = "bolt"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config is the top-level configuration.
type Config struct {
	Index    IndexConfig    `yaml:"index"`
	DocStore DocStoreConfig `yaml:"docstore"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// IndexConfig controls the term table and ingestion behaviour.
type IndexConfig struct {
	Shards        int    `yaml:"shards"`
	TermCapacity  int    `yaml:"termCapacity"`
	PayloadPolicy string `yaml:"payloadPolicy"`
	BatchWorkers  int    `yaml:"batchWorkers"`
}

// DocStoreConfig selects and configures the document content store.
type DocStoreConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Backend    string `yaml:"backend"`
	Path       string `yaml:"path"`
	InMemory   bool   `yaml:"inMemory"`
	SyncWrites bool   `yaml:"syncWrites"`
	KeyPrefix  string `yaml:"keyPrefix"`
	Table      string `yaml:"table"`
	// ConnectAttempts bounds connection retries of the redis and postgres
	// backends.
	ConnectAttempts int `yaml:"connectAttempts"`
}

// AnalysisConfig controls the tokenizer used when a document arrives as raw
// text instead of a token sequence.
type AnalysisConfig struct {
	Lowercase     bool `yaml:"lowercase"`
	StopWords     bool `yaml:"stopWords"`
	MinTermLength int  `yaml:"minTermLength"`
	Stem          bool `yaml:"stem"`
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Brokers       []string `yaml:"brokers"`
	ConsumerGroup string   `yaml:"consumerGroup"`
	IngestTopic   string   `yaml:"ingestTopic"`
	// FromBeginning replays the topic from the oldest retained offset when
	// the group has no committed position, rebuilding the index on start.
	FromBeginning bool `yaml:"fromBeginning"`
	// HandlerAttempts bounds how often one message is handled before the
	// consumer gives up and stops without committing it.
	HandlerAttempts int `yaml:"handlerAttempts"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"poolSize"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics and health server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides on top of the defaults. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a Config suitable for an embedded, memory-only engine.
func Default() *Config {
	return &Config{
		Index: IndexConfig{
			Shards:        32,
			TermCapacity:  1 << 14,
			PayloadPolicy: PayloadMembership,
			BatchWorkers:  4,
		},
		DocStore: DocStoreConfig{
			Enabled:         true,
			Backend:         BackendMemory,
			Path:            "data/docstore",
			KeyPrefix:       "memindex:",
			Table:           "memindex_documents",
			ConnectAttempts: 3,
		},
		Analysis: AnalysisConfig{
			Lowercase:     true,
			StopWords:     false,
			MinTermLength: 1,
		},
		Kafka: KafkaConfig{
			Brokers:         []string{"localhost:9092"},
			ConsumerGroup:   "memindex",
			IngestTopic:     "memindex-ingest",
			HandlerAttempts: 5,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "memindex",
			User:            "memindex",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	if c.Index.Shards <= 0 {
		return fmt.Errorf("index.shards must be positive, got %d", c.Index.Shards)
	}
	if c.Index.BatchWorkers <= 0 {
		return fmt.Errorf("index.batchWorkers must be positive, got %d", c.Index.BatchWorkers)
	}
	switch c.Index.PayloadPolicy {
	case PayloadMembership, PayloadFrequency, PayloadPositions:
	default:
		return fmt.Errorf("unknown index.payloadPolicy %q", c.Index.PayloadPolicy)
	}
	switch c.DocStore.Backend {
	case BackendMemory, BackendBadger, BackendBolt, BackendRedis, BackendPostgres:
	default:
		return fmt.Errorf("unknown docstore.backend %q", c.DocStore.Backend)
	}
	return nil
}

// applyEnvOverrides reads MI_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MI_INDEX_SHARDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Index.Shards = n
		}
	}
	if v := os.Getenv("MI_INDEX_PAYLOAD_POLICY"); v != "" {
		cfg.Index.PayloadPolicy = v
	}
	if v := os.Getenv("MI_INDEX_BATCH_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Index.BatchWorkers = n
		}
	}
	if v := os.Getenv("MI_DOCSTORE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.DocStore.Enabled = b
		}
	}
	if v := os.Getenv("MI_DOCSTORE_BACKEND"); v != "" {
		cfg.DocStore.Backend = v
	}
	if v := os.Getenv("MI_DOCSTORE_PATH"); v != "" {
		cfg.DocStore.Path = v
	}
	if v := os.Getenv("MI_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("MI_KAFKA_INGEST_TOPIC"); v != "" {
		cfg.Kafka.IngestTopic = v
	}
	if v := os.Getenv("MI_KAFKA_FROM_BEGINNING"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Kafka.FromBeginning = b
		}
	}
	if v := os.Getenv("MI_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("MI_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("MI_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("MI_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("MI_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("MI_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("MI_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("MI_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("MI_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("MI_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
		}
	}
}
