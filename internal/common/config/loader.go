// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top
// and lets environment variables override any key (queue.url -> QUEUE_URL).
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	bindEnv(v)

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func bindEnv(v *viper.Viper) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about, so register
	// the ones that commonly come from the environment alone.
	for _, key := range []string{
		"aws.region", "aws.endpoint",
		"queue.backend", "queue.url",
		"history.backend", "history.table",
		"records.backend", "records.table",
		"notify.backend", "notify.sender_email", "notify.topic_arn",
		"database.elasticsearch.url", "database.elasticsearch.username", "database.elasticsearch.password", "database.elasticsearch.opensearch",
		"database.redis.address", "database.redis.password",
		"database.postgres.host", "database.postgres.user", "database.postgres.password", "database.postgres.database",
		"logging.level", "logging.format",
	} {
		_ = v.BindEnv(key)
	}
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders inside string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "dining-concierge"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.MetricsAddress == "" {
		cfg.Server.MetricsAddress = ":9090"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30000
	}

	if cfg.AWS.Region == "" {
		cfg.AWS.Region = "us-east-1"
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.URL != "" && len(cfg.Database.Elasticsearch.Addresses) == 0 {
		cfg.Database.Elasticsearch.Addresses = []string{cfg.Database.Elasticsearch.URL}
	}

	if cfg.Queue.Backend == "" {
		cfg.Queue.Backend = BackendSQS
	}
	if cfg.Queue.Stream == "" {
		cfg.Queue.Stream = "dining:requests"
	}
	if cfg.Queue.Group == "" {
		cfg.Queue.Group = "recommendation-workers"
	}
	if cfg.Queue.WaitTime == 0 {
		cfg.Queue.WaitTime = 2000
	}
	if cfg.Queue.VisibilityTimeout == 0 {
		cfg.Queue.VisibilityTimeout = 30000
	}

	if cfg.History.Backend == "" {
		cfg.History.Backend = BackendDynamoDB
	}
	if cfg.History.Table == "" {
		cfg.History.Table = "UserHistory"
	}

	if cfg.Records.Backend == "" {
		cfg.Records.Backend = BackendDynamoDB
	}
	if cfg.Records.Table == "" {
		cfg.Records.Table = "yelp-restaurants"
	}

	if cfg.Search.Index == "" {
		cfg.Search.Index = "restaurants"
	}
	if cfg.Search.CuisineField == "" {
		cfg.Search.CuisineField = "Cuisine"
	}
	if cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults = 20
	}
	if cfg.Search.Timeout == 0 {
		cfg.Search.Timeout = 10000
	}

	if cfg.Notify.Backend == "" {
		cfg.Notify.Backend = BackendSES
	}

	if cfg.Dialog.Timeout == 0 {
		cfg.Dialog.Timeout = 5000
	}

	if cfg.Worker.BatchSize == 0 {
		cfg.Worker.BatchSize = 10
	}
	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = 1
	}
	if cfg.Worker.PollInterval == 0 {
		cfg.Worker.PollInterval = 60000
	}
	if cfg.Worker.MessageTimeout == 0 {
		cfg.Worker.MessageTimeout = 30000
	}
	if cfg.Worker.Recommendations == 0 {
		cfg.Worker.Recommendations = 3
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// Fixed caps of the recommendation worker.
const (
	MaxBatchSize       = 10
	MaxSearchResults   = 20
	MaxRecommendations = 3
)

// validateConfig validates the settings every subcommand relies on.
func validateConfig(cfg *Config) error {
	switch cfg.Queue.Backend {
	case BackendSQS:
		if cfg.Queue.URL == "" {
			return fmt.Errorf("queue.url is required for the sqs backend")
		}
	case BackendRedis:
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required for the redis queue backend")
		}
	default:
		return fmt.Errorf("unsupported queue.backend %q", cfg.Queue.Backend)
	}

	if err := validateStoreBackend("history.backend", cfg.History.Backend, cfg.Database.Postgres); err != nil {
		return err
	}

	if cfg.History.CacheTTL > 0 && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("history.cache_ttl requires database.redis.address")
	}

	if cfg.Worker.BatchSize < 1 || cfg.Worker.BatchSize > MaxBatchSize {
		return fmt.Errorf("worker.batch_size must be between 1 and %d", MaxBatchSize)
	}
	if cfg.Worker.Recommendations < 1 || cfg.Worker.Recommendations > MaxRecommendations {
		return fmt.Errorf("worker.recommendations must be between 1 and %d", MaxRecommendations)
	}
	if cfg.Search.MaxResults < 1 || cfg.Search.MaxResults > MaxSearchResults {
		return fmt.Errorf("search.max_results must be between 1 and %d", MaxSearchResults)
	}

	return nil
}

// ValidateWorker checks the settings only the recommendation worker needs:
// the record store, the search cluster and the notification channel.
func ValidateWorker(cfg *Config) error {
	if err := validateStoreBackend("records.backend", cfg.Records.Backend, cfg.Database.Postgres); err != nil {
		return err
	}

	if len(cfg.Database.Elasticsearch.Addresses) == 0 {
		return fmt.Errorf("database.elasticsearch.addresses or url is required")
	}

	switch cfg.Notify.Backend {
	case BackendSES:
		if cfg.Notify.SenderEmail == "" {
			return fmt.Errorf("notify.sender_email is required for the ses backend")
		}
	case BackendSNS:
		if cfg.Notify.TopicARN == "" {
			return fmt.Errorf("notify.topic_arn is required for the sns backend")
		}
	default:
		return fmt.Errorf("unsupported notify.backend %q", cfg.Notify.Backend)
	}

	return nil
}

func validateStoreBackend(name, backend string, pg PostgresConfig) error {
	switch backend {
	case BackendDynamoDB:
	case BackendPostgres:
		if pg.Host == "" || pg.Database == "" || pg.User == "" {
			return fmt.Errorf("%s=postgres requires database.postgres.host, database and user", name)
		}
	default:
		return fmt.Errorf("unsupported %s %q", name, backend)
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
