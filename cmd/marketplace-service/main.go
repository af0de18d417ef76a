package main

import (
	"context"
	"strings"
	"time"

	"mandi/internal/pkg/bootstrap"
	"mandi/internal/pkg/logger"
	"mandi/internal/pkg/mq"
	pkgredis "mandi/internal/pkg/redis"
	"mandi/internal/service/marketplace/application"
	"mandi/internal/service/marketplace/infrastructure"
	"mandi/internal/service/marketplace/infrastructure/adapter"
	"mandi/internal/service/marketplace/infrastructure/rule"
	"mandi/internal/service/marketplace/interfaces"
	"mandi/internal/zookeeper"

	"go.opentelemetry.io/otel"
)

const zkSessionTimeout = 5 * time.Second

func main() {
	cfg, err := bootstrap.LoadConfig("")
	if err != nil {
		logger.L().Fatal().Err(err).Msg("failed to load config")
	}

	// 1. 基础设施连接
	db, err := infrastructure.NewDB(cfg.Infra.Mysql.DSN)
	if err != nil {
		logger.L().Fatal().Err(err).Msg("failed to connect to mysql")
	}

	redisClient, err := pkgredis.NewClient(cfg.Infra.Redis.Addrs)
	if err != nil {
		logger.L().Fatal().Err(err).Msg("failed to connect to redis")
	}

	zkConn, err := zookeeper.Connect(cfg.Infra.Zookeeper.Servers, zkSessionTimeout)
	if err != nil {
		logger.L().Fatal().Err(err).Msg("failed to connect to zookeeper")
	}

	kafkaWriter := mq.NewKafkaWriter(strings.Split(cfg.Infra.Kafka.Brokers, ","), cfg.Infra.Kafka.OrderEventsTopic)

	// 2. 适配器与规则引擎
	ruleEngine, err := rule.NewCELRuleEngineAdapter(cfg.App.OrderRules)
	if err != nil {
		logger.L().Fatal().Err(err).Msg("failed to compile order rules")
	}
	publisher := adapter.NewOrderEventKafkaAdapter(kafkaWriter)
	productCache := adapter.NewCatalogRedisAdapter(redisClient)
	locker := adapter.NewZookeeperLockerAdapter(zkConn)

	// 3. 应用层装配
	tracer := otel.Tracer(cfg.App.ServiceName)
	store := infrastructure.NewGormStore(db)
	reconciler := application.NewInventoryReconciler(store, ruleEngine, tracer)
	lifecycle := application.NewOrderLifecycleManager(store, reconciler, locker, publisher, tracer)
	service := application.NewMarketplaceService(store, reconciler, lifecycle, productCache, publisher, tracer)
	handler := interfaces.NewMarketplaceHandler(service)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: cfg.App.ServiceName,
		Port:        cfg.App.Port,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: func(ctx context.Context) {
			if err := publisher.Close(); err != nil {
				logger.L().Error().Err(err).Msg("failed to close kafka writer")
			}
			if err := redisClient.Close(); err != nil {
				logger.L().Error().Err(err).Msg("failed to close redis client")
			}
			zkConn.Close()
		},
	})
}
