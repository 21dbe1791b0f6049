// cmd/concierge/app.go
package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	awsclients "dining-concierge/internal/common/aws"
	"dining-concierge/internal/common/config"
	"dining-concierge/internal/common/database"
	"dining-concierge/internal/common/logger"
	"dining-concierge/internal/common/notify"
	"dining-concierge/internal/common/observability"
	"dining-concierge/internal/common/queue"
	"dining-concierge/internal/common/search"
	"dining-concierge/internal/common/store"
	sendrecommendations "dining-concierge/internal/workers/recommendation/send-recommendations"
)

const (
	connectRetries = 10
	connectDelay   = 2 * time.Second
)

// app lazily builds the clients a subcommand needs from one Config.
type app struct {
	cfg *config.Config
	zap *zap.Logger
	log logger.Logger
	obs *observability.Observability

	aws     *awsclients.Clients
	redis   *redis.Client
	pg      *sql.DB
	closers []func()
}

func newApp(serviceName string) (*app, error) {
	var (
		cfg *config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.LoadFromFile(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output).
		With(zap.String("service", serviceName))

	a := &app{
		cfg: cfg,
		zap: zapLog,
		log: logger.NewZapAdapter(zapLog),
	}

	obs, err := observability.New(serviceName)
	if err != nil {
		zapLog.Warn("observability disabled", zap.Error(err))
	} else {
		a.obs = obs
		a.closers = append(a.closers, obs.Shutdown)
	}
	return a, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	_ = a.zap.Sync()
}

func (a *app) awsClients(ctx context.Context) (*awsclients.Clients, error) {
	if a.aws != nil {
		return a.aws, nil
	}
	awsCfg, err := awsclients.LoadConfig(ctx, a.cfg.AWS)
	if err != nil {
		return nil, err
	}
	a.aws = awsclients.NewClients(awsCfg)
	return a.aws, nil
}

func (a *app) redisClient(ctx context.Context) (*redis.Client, error) {
	if a.redis != nil {
		return a.redis, nil
	}
	rdb := database.NewRedis(a.cfg.Database.Redis)
	err := retryWithBackoff(func() error {
		return database.PingRedis(ctx, rdb)
	}, connectRetries, connectDelay, a.zap, "Redis connection")
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}
	a.zap.Info("Redis connected successfully")
	a.redis = rdb
	a.closers = append(a.closers, func() { _ = rdb.Close() })
	return rdb, nil
}

func (a *app) postgres(ctx context.Context) (*sql.DB, error) {
	if a.pg != nil {
		return a.pg, nil
	}
	db, err := database.NewPostgres(a.cfg.Database.Postgres)
	if err != nil {
		return nil, err
	}
	err = retryWithBackoff(func() error {
		return db.PingContext(ctx)
	}, connectRetries, connectDelay, a.zap, "PostgreSQL connection")
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := database.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	a.zap.Info("PostgreSQL connected successfully")
	a.pg = db
	a.closers = append(a.closers, func() { _ = db.Close() })
	return db, nil
}

func (a *app) historyStore(ctx context.Context) (store.HistoryStore, error) {
	var history store.HistoryStore
	switch a.cfg.History.Backend {
	case config.BackendPostgres:
		db, err := a.postgres(ctx)
		if err != nil {
			return nil, err
		}
		history = store.NewPostgresHistoryStore(db)
	default:
		clients, err := a.awsClients(ctx)
		if err != nil {
			return nil, err
		}
		history = store.NewDynamoHistoryStore(clients.DynamoDB, a.cfg.History.Table)
	}

	if a.cfg.History.CacheTTL > 0 {
		rdb, err := a.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		history = store.NewCachedHistoryStore(history, rdb, config.GetDuration(a.cfg.History.CacheTTL), a.log)
	}
	return history, nil
}

func (a *app) recordStore(ctx context.Context) (store.RecordStore, error) {
	if a.cfg.Records.Backend == config.BackendPostgres {
		db, err := a.postgres(ctx)
		if err != nil {
			return nil, err
		}
		return store.NewPostgresRecordStore(db), nil
	}
	clients, err := a.awsClients(ctx)
	if err != nil {
		return nil, err
	}
	return store.NewDynamoRecordStore(clients.DynamoDB, a.cfg.Records.Table), nil
}

func (a *app) requestQueue(ctx context.Context) (queue.Queue, error) {
	if a.cfg.Queue.Backend == config.BackendRedis {
		rdb, err := a.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		return queue.NewRedisStreamQueue(ctx, rdb, a.cfg.Queue, "")
	}
	clients, err := a.awsClients(ctx)
	if err != nil {
		return nil, err
	}
	return queue.NewSQSQueue(clients.SQS, a.cfg.Queue), nil
}

func (a *app) searchIndex(ctx context.Context) (search.Index, error) {
	es, err := database.NewElasticsearch(a.cfg.Database.Elasticsearch)
	if err != nil {
		return nil, err
	}
	err = retryWithBackoff(func() error {
		return database.PingElasticsearch(ctx, es)
	}, connectRetries, connectDelay, a.zap, "Elasticsearch connection")
	if err != nil {
		return nil, err
	}
	a.zap.Info("Elasticsearch connected successfully")
	return search.NewElasticsearchIndex(es, a.cfg.Search), nil
}

func (a *app) notifier(ctx context.Context) (notify.Notifier, error) {
	clients, err := a.awsClients(ctx)
	if err != nil {
		return nil, err
	}
	if a.cfg.Notify.Backend == config.BackendSNS {
		return notify.NewSNSNotifier(clients.SNS, a.cfg.Notify.TopicARN), nil
	}
	return notify.NewSESNotifier(clients.SES, a.cfg.Notify.SenderEmail), nil
}

func (a *app) recommendationHandler(ctx context.Context) (*sendrecommendations.Handler, error) {
	if err := config.ValidateWorker(a.cfg); err != nil {
		return nil, fmt.Errorf("invalid worker configuration: %w", err)
	}

	q, err := a.requestQueue(ctx)
	if err != nil {
		return nil, err
	}
	index, err := a.searchIndex(ctx)
	if err != nil {
		return nil, err
	}
	records, err := a.recordStore(ctx)
	if err != nil {
		return nil, err
	}
	notifier, err := a.notifier(ctx)
	if err != nil {
		return nil, err
	}

	w := a.cfg.Worker
	return sendrecommendations.NewHandler(
		&sendrecommendations.Config{
			BatchSize:        w.BatchSize,
			Concurrency:      w.Concurrency,
			MaxSearchResults: a.cfg.Search.MaxResults,
			Recommendations:  w.Recommendations,
			MessageTimeout:   config.GetDuration(w.MessageTimeout),
			PollInterval:     config.GetDuration(w.PollInterval),
		},
		q, index, records, notifier, a.log,
		sendrecommendations.WithObservability(a.obs),
	)
}
