package config

import (
	"fmt"
	"os"
	"time"

	"CupoCast/pkg/util"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	StorageClickHouse = "clickhouse"
	StorageSQLite     = "sqlite"
	StorageMemory     = "memory"
)

// Model backends.
const (
	ModelLocal = "local"
	ModelHTTP  = "http"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Logging struct {
		Level     string `yaml:"level" default:"info"`
		Format    string `yaml:"format" default:"json"`
		Collector struct {
			Enabled       bool          `yaml:"enabled"`
			Topic         string        `yaml:"topic" default:"cupocast.logs"`
			FlushInterval time.Duration `yaml:"flush_interval" default:"10s"`
		} `yaml:"collector"`
	} `yaml:"logging"`
	Storage struct {
		Type   string `yaml:"type" default:"sqlite"`
		SQLite struct {
			Path string `yaml:"path" default:"cupocast.db"`
		} `yaml:"sqlite"`
	} `yaml:"storage"`
	Model struct {
		Backend       string        `yaml:"backend" default:"local"`
		RegressorPath string        `yaml:"regressor_path" default:"artifacts/regressor.json"`
		XScalerPath   string        `yaml:"x_scaler_path" default:"artifacts/x_scaler.json"`
		YScalerPath   string        `yaml:"y_scaler_path" default:"artifacts/y_scaler.json"`
		ServiceURL    string        `yaml:"service_url"`
		Timeout       time.Duration `yaml:"timeout" default:"3s"`
		RetryAttempts int           `yaml:"retry_attempts" default:"3"`
		MaxHorizon    int           `yaml:"max_horizon" default:"36"`
	} `yaml:"model"`
	Risk struct {
		ScoreFloor    float64 `yaml:"score_floor" default:"600"`
		LateThreshold int     `yaml:"late_threshold" default:"1"`
	} `yaml:"risk"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		EventsTopic  string   `yaml:"events_topic" default:"cupocast.assessments"`
		IngestTopic  string   `yaml:"ingest_topic" default:"cupocast.history"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"5"`
			Linger       time.Duration `yaml:"linger" default:"50ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			Enabled    bool          `yaml:"enabled"`
			GroupID    string        `yaml:"group_id" default:"cupocast-history"`
			Workers    int           `yaml:"workers" default:"4"`
			BufferSize int           `yaml:"buffer_size" default:"256"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"100ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
			DLQTopic   string        `yaml:"dlq_topic" default:"cupocast.history.dlq"`
			MinBytes   int           `yaml:"min_bytes" default:"1"`
			MaxBytes   int           `yaml:"max_bytes" default:"10485760"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"cupocast"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`
	Cache struct {
		Enabled       bool          `yaml:"enabled" default:"true"`
		TTL           time.Duration `yaml:"ttl" default:"10m"`
		MemoryMaxSize int           `yaml:"memory_max_size" default:"1000"`
		Redis         struct {
			Enabled  bool          `yaml:"enabled"`
			Addr     string        `yaml:"addr" default:"localhost:6379"`
			Password string        `yaml:"password"`
			DB       int           `yaml:"db"`
			L1TTL    time.Duration `yaml:"l1_ttl" default:"1m"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	RateLimit struct {
		Enabled bool    `yaml:"enabled" default:"true"`
		Rate    float64 `yaml:"rate" default:"20"`
		Burst   int     `yaml:"burst" default:"40"`
	} `yaml:"rate_limit"`
}

// Default returns a configuration populated only from struct defaults.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file. Keys absent from the file
// keep their defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes on top of the defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.ApplyEnv(os.Getenv)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides fields from the environment lookup.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("STORAGE_TYPE"); v != "" {
		c.Storage.Type = v
	}
	if v := getenv("SQLITE_PATH"); v != "" {
		c.Storage.SQLite.Path = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = util.SplitList(v)
		c.Kafka.Enabled = true
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}
	if v := getenv("MODEL_PATH"); v != "" {
		c.Model.RegressorPath = v
	}
	if v := getenv("MODEL_SERVICE_URL"); v != "" {
		c.Model.ServiceURL = v
		c.Model.Backend = ModelHTTP
	}
	c.Model.MaxHorizon = util.ParseIntDefault(getenv("MAX_HORIZON"), c.Model.MaxHorizon)
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	c.Server.Port = util.ParseIntDefault(getenv("PORT"), c.Server.Port)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.Storage.Type {
	case StorageClickHouse:
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required for storage.type=clickhouse")
		}
	case StorageSQLite:
		if c.Storage.SQLite.Path == "" {
			return fmt.Errorf("storage.sqlite.path is required for storage.type=sqlite")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("storage.type must be 'clickhouse', 'sqlite' or 'memory', got '%s'", c.Storage.Type)
	}
	switch c.Model.Backend {
	case ModelLocal:
		if c.Model.RegressorPath == "" {
			return fmt.Errorf("model.regressor_path is required")
		}
	case ModelHTTP:
		if c.Model.ServiceURL == "" {
			return fmt.Errorf("model.service_url is required for model.backend=http")
		}
	default:
		return fmt.Errorf("model.backend must be 'local' or 'http', got '%s'", c.Model.Backend)
	}
	if c.Model.XScalerPath == "" || c.Model.YScalerPath == "" {
		return fmt.Errorf("model.x_scaler_path and model.y_scaler_path are required")
	}
	if c.Model.MaxHorizon <= 0 {
		return fmt.Errorf("model.max_horizon must be > 0")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.RateLimit.Enabled && (c.RateLimit.Rate <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate_limit.rate and rate_limit.burst must be > 0")
	}
	return nil
}
