// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	AWS      AWSConfig      `mapstructure:"aws"`
	Database DatabaseConfig `mapstructure:"database"`
	Queue    QueueConfig    `mapstructure:"queue"`
	History  HistoryConfig  `mapstructure:"history"`
	Records  RecordsConfig  `mapstructure:"records"`
	Search   SearchConfig   `mapstructure:"search"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Dialog   DialogConfig   `mapstructure:"dialog"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	MetricsAddress  string `mapstructure:"metrics_address"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

type AWSConfig struct {
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"` // optional, e.g. localstack
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"` // single URL, folded into Addresses
	// OpenSearch marks the cluster as an OpenSearch domain, which does not
	// send the product header the v8 client checks for.
	OpenSearch bool `mapstructure:"opensearch"`
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Domain Configuration Sections ---

const (
	BackendSQS      = "sqs"
	BackendRedis    = "redis"
	BackendDynamoDB = "dynamodb"
	BackendPostgres = "postgres"
	BackendSES      = "ses"
	BackendSNS      = "sns"
)

// QueueConfig selects and tunes the request queue.
type QueueConfig struct {
	Backend           string `mapstructure:"backend"`
	URL               string `mapstructure:"url"`                // SQS queue URL
	Stream            string `mapstructure:"stream"`             // Redis stream key
	Group             string `mapstructure:"group"`              // Redis consumer group
	WaitTime          int    `mapstructure:"wait_time"`          // milliseconds, long poll
	VisibilityTimeout int    `mapstructure:"visibility_timeout"` // milliseconds
}

type HistoryConfig struct {
	Backend  string `mapstructure:"backend"`
	Table    string `mapstructure:"table"`
	CacheTTL int    `mapstructure:"cache_ttl"` // milliseconds, 0 disables the redis cache
}

type RecordsConfig struct {
	Backend string `mapstructure:"backend"`
	Table   string `mapstructure:"table"`
}

type SearchConfig struct {
	Index        string `mapstructure:"index"`
	CuisineField string `mapstructure:"cuisine_field"`
	MaxResults   int    `mapstructure:"max_results"`
	Timeout      int    `mapstructure:"timeout"` // milliseconds
}

type NotifyConfig struct {
	Backend     string `mapstructure:"backend"`
	SenderEmail string `mapstructure:"sender_email"`
	TopicARN    string `mapstructure:"topic_arn"`
}

type DialogConfig struct {
	Timeout int `mapstructure:"timeout"` // milliseconds per turn
}

// WorkerConfig tunes the recommendation worker. Durations are milliseconds.
type WorkerConfig struct {
	BatchSize       int `mapstructure:"batch_size"`
	Concurrency     int `mapstructure:"concurrency"`
	PollInterval    int `mapstructure:"poll_interval"`
	MessageTimeout  int `mapstructure:"message_timeout"`
	Recommendations int `mapstructure:"recommendations"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
