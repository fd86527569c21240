package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DateLayout is the layout used for configured and queried dates.
const DateLayout = "2006-01-02"

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Ingest configuration
	Ingest IngestConfig `mapstructure:"ingest"`

	// NLP configuration
	NLP NLPConfig `mapstructure:"nlp"`

	// Sentiment thresholds
	Sentiment SentimentConfig `mapstructure:"sentiment"`

	// Persistence configuration
	Persistence PersistenceConfig `mapstructure:"persistence"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Neo4j export configuration
	Neo4j Neo4jConfig `mapstructure:"neo4j"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`

	// Alert configuration
	Alert AlertConfig `mapstructure:"alert"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// IngestConfig holds ingestion pipeline settings
type IngestConfig struct {
	BatchSize        int      `mapstructure:"batch_size"`
	MaxRecords       int      `mapstructure:"max_records"` // per file, 0 = unlimited
	MinTextLength    int      `mapstructure:"min_text_length"`
	MinEntityLength  int      `mapstructure:"min_entity_length"`
	DenyList         []string `mapstructure:"deny_list"`
	DefaultDate      string   `mapstructure:"default_date"`
	MaxClassifyChars int      `mapstructure:"max_classify_chars"`
	ReviewTextChars  int      `mapstructure:"review_text_chars"`
	ProgressEvery    int      `mapstructure:"progress_every"`
}

// ParsedDefaultDate returns DefaultDate as a UTC time.
func (c IngestConfig) ParsedDefaultDate() (time.Time, error) {
	t, err := time.Parse(DateLayout, c.DefaultDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid ingest.default_date %q: %w", c.DefaultDate, err)
	}
	return t, nil
}

// NLPConfig holds model backend configuration
type NLPConfig struct {
	Recognizer RecognizerConfig `mapstructure:"recognizer"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
}

// RecognizerConfig selects the named-entity backend.
type RecognizerConfig struct {
	Provider  string  `mapstructure:"provider"` // rustbert, gliner, gliner2
	Model     string  `mapstructure:"model"`    // HuggingFace id or local path
	Tokenizer string  `mapstructure:"tokenizer"`
	Threshold float64 `mapstructure:"threshold"`
}

// ClassifierConfig selects the zero-shot topic backend.
type ClassifierConfig struct {
	Provider    string  `mapstructure:"provider"` // gliner2 (local), fastino (hosted GLiNER2), openai
	Endpoint    string  `mapstructure:"endpoint"` // gliner2 service URL
	Model       string  `mapstructure:"model"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Timeout     int     `mapstructure:"timeout"` // in seconds
	Threshold   float64 `mapstructure:"threshold"`
}

// SentimentConfig holds rating and compound thresholds
type SentimentConfig struct {
	PositiveRating   float64 `mapstructure:"positive_rating"`
	NegativeRating   float64 `mapstructure:"negative_rating"`
	PositiveCompound float64 `mapstructure:"positive_compound"`
	NegativeCompound float64 `mapstructure:"negative_compound"`
}

// PersistenceConfig selects where the graph is stored
type PersistenceConfig struct {
	Backend string `mapstructure:"backend"` // file, badger
	Path    string `mapstructure:"path"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// Neo4jConfig holds Neo4j export credentials
type Neo4jConfig struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	ParquetPath string `mapstructure:"parquet_path"`
}

// AlertConfig holds SMTP settings for failure alerts
type AlertConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	SMTPHost string   `mapstructure:"smtp_host"`
	SMTPPort int      `mapstructure:"smtp_port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Set defaults
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Override with environment variables if present
	overrideWithEnv(config)

	if _, err := config.Ingest.ParsedDefaultDate(); err != nil {
		return nil, err
	}
	if config.Ingest.BatchSize <= 0 {
		return nil, fmt.Errorf("ingest.batch_size must be positive, got %d", config.Ingest.BatchSize)
	}

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	// Ingest defaults
	viper.SetDefault("ingest.batch_size", 16)
	viper.SetDefault("ingest.max_records", 200)
	viper.SetDefault("ingest.min_text_length", 15)
	viper.SetDefault("ingest.min_entity_length", 3)
	viper.SetDefault("ingest.deny_list", []string{"amazon", "seller", "usa", "china"})
	viper.SetDefault("ingest.default_date", "2021-01-01")
	viper.SetDefault("ingest.max_classify_chars", 512)
	viper.SetDefault("ingest.review_text_chars", 200)
	viper.SetDefault("ingest.progress_every", 1000)

	// NLP defaults
	viper.SetDefault("nlp.recognizer.provider", "rustbert")
	viper.SetDefault("nlp.recognizer.model", "dslim/bert-base-NER")
	viper.SetDefault("nlp.recognizer.threshold", 0.5)
	viper.SetDefault("nlp.classifier.provider", "gliner2")
	viper.SetDefault("nlp.classifier.endpoint", "http://localhost:8000")
	viper.SetDefault("nlp.classifier.model", "gpt-4o-mini")
	viper.SetDefault("nlp.classifier.temperature", 0.0)
	viper.SetDefault("nlp.classifier.max_tokens", 1024)
	viper.SetDefault("nlp.classifier.timeout", 60)
	viper.SetDefault("nlp.classifier.threshold", 0.0)

	// Sentiment defaults
	viper.SetDefault("sentiment.positive_rating", 4.5)
	viper.SetDefault("sentiment.negative_rating", 2.0)
	viper.SetDefault("sentiment.positive_compound", 0.05)
	viper.SetDefault("sentiment.negative_compound", -0.05)

	// Persistence defaults
	viper.SetDefault("persistence.backend", "file")
	viper.SetDefault("persistence.path", "review_graph.json")

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	// Neo4j defaults
	viper.SetDefault("neo4j.uri", "bolt://localhost:7687")
	viper.SetDefault("neo4j.username", "neo4j")
	viper.SetDefault("neo4j.database", "neo4j")

	// Circuit breaker defaults
	viper.SetDefault("circuit_breaker.enabled", true)
	viper.SetDefault("circuit_breaker.max_requests", 1)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 30)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)

	// Alerts are off unless enabled
	viper.SetDefault("alert.enabled", false)
	viper.SetDefault("alert.smtp_port", 587)

	// Telemetry is off unless a path is configured
	viper.SetDefault("telemetry.parquet_path", "")
}

// DefaultTelemetryPath returns the conventional telemetry directory.
func DefaultTelemetryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "reviewgraph", "telemetry")
	}
	return filepath.Join(home, ".reviewgraph", "telemetry")
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	// Classifier API key, only for the provider it belongs to
	if config.NLP.Classifier.APIKey == "" {
		switch strings.ToLower(config.NLP.Classifier.Provider) {
		case "openai":
			config.NLP.Classifier.APIKey = os.Getenv("OPENAI_API_KEY")
		case "fastino":
			config.NLP.Classifier.APIKey = os.Getenv("FASTINO_API_KEY")
		}
	}
	if endpoint := os.Getenv("GLINER2_ENDPOINT"); endpoint != "" {
		config.NLP.Classifier.Endpoint = endpoint
	}

	// Neo4j credentials
	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		config.Neo4j.URI = uri
	}
	if user := os.Getenv("NEO4J_USER"); user != "" {
		config.Neo4j.Username = user
	}
	if pass := os.Getenv("NEO4J_PASSWORD"); pass != "" {
		config.Neo4j.Password = pass
	}

	// Graph location
	if path := os.Getenv("REVIEWGRAPH_GRAPH"); path != "" {
		config.Persistence.Path = path
	}

	// Server settings
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Alert credentials
	if pass := os.Getenv("SMTP_PASSWORD"); pass != "" {
		config.Alert.Password = pass
	}

	// Telemetry settings
	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}
}
