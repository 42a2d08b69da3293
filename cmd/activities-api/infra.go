// cmd/activities-api/infra.go
package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"mergington-activities/internal/api/activities"
	awsclient "mergington-activities/internal/common/aws"
	"mergington-activities/internal/common/config"
	"mergington-activities/internal/common/database"
	"mergington-activities/internal/events"
)

// infrastructure holds the optional backends behind the event sinks.
type infrastructure struct {
	sinks   []events.Sink
	checks  []activities.ReadinessCheck
	closers []func() error
}

func (i *infrastructure) Close() {
	for j := len(i.closers) - 1; j >= 0; j-- {
		_ = i.closers[j]()
	}
}

// connectInfrastructure dials every enabled backend. The service cannot
// start without a backend it was configured to use.
func connectInfrastructure(ctx context.Context, cfg *config.Config, zapLog *zap.Logger) *infrastructure {
	infra := &infrastructure{}

	// --- PostgreSQL audit log ---
	if cfg.Database.Postgres.Enabled {
		var pg *database.PostgresClient
		err := retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return closeOnError(pg.Ping(ctx), pg.Close)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		infra.closers = append(infra.closers, pg.Close)

		if err := database.Migrate(ctx, pg.DB, cfg.Database.Postgres.AuditTable); err != nil {
			zapLog.Fatal("postgres migration failed", zap.Error(err))
		}
		infra.sinks = append(infra.sinks, events.NewPostgresSink(pg.DB, cfg.Database.Postgres.AuditTable))
		infra.checks = append(infra.checks, activities.ReadinessCheck{Name: events.PostgresSinkName, Check: pg.Ping})
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- Redis stream ---
	if cfg.Database.Redis.Enabled {
		var redis *database.RedisClient
		err := retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return closeOnError(redis.Ping(ctx), redis.Close)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		infra.closers = append(infra.closers, redis.Close)

		infra.sinks = append(infra.sinks, events.NewRedisStreamSink(redis.Client, cfg.Database.Redis.Stream, cfg.Database.Redis.StreamMaxLen))
		infra.checks = append(infra.checks, activities.ReadinessCheck{Name: events.RedisSinkName, Check: redis.Ping})
		zapLog.Info("Redis connected successfully")
	}

	// --- Elasticsearch index ---
	if cfg.Database.Elasticsearch.Enabled {
		var esClient *database.ElasticsearchClient
		err := retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}

		infra.sinks = append(infra.sinks, events.NewElasticsearchSink(esClient.Client, cfg.Database.Elasticsearch.Index))
		infra.checks = append(infra.checks, activities.ReadinessCheck{Name: events.ElasticsearchSinkName, Check: esClient.Ping})
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- AWS notifications ---
	awsCfg := cfg.Integrations.AWS
	if awsCfg.SNS.Enabled || awsCfg.SES.Enabled {
		sdkCfg, err := awsclient.LoadConfig(ctx, awsCfg.Region, awsCfg.Endpoint)
		if err != nil {
			zapLog.Fatal("aws config failed", zap.Error(err))
		}
		if awsCfg.SNS.Enabled {
			infra.sinks = append(infra.sinks, events.NewSNSSink(awsclient.NewSNSClient(sdkCfg), awsCfg.SNS.TopicARN))
			zapLog.Info("SNS publishing enabled", zap.String("topic", awsCfg.SNS.TopicARN))
		}
		if awsCfg.SES.Enabled {
			infra.sinks = append(infra.sinks, events.NewEmailSink(awsclient.NewSESClient(sdkCfg), awsCfg.SES.FromEmail))
			zapLog.Info("SES confirmations enabled", zap.String("from", awsCfg.SES.FromEmail))
		}
	}

	return infra
}

// closeOnError releases a client whose first ping failed so retries don't
// pile up connection pools.
func closeOnError(err error, closeFn func() error) error {
	if err != nil {
		_ = closeFn()
	}
	return err
}
