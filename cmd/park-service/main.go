package main

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"skypark/internal/pkg/bootstrap"
	"skypark/internal/pkg/logger"
	pkgredis "skypark/internal/pkg/redis"
	"skypark/internal/pkg/zookeeper"
	admissionapp "skypark/internal/service/admission/application"
	admissioninfra "skypark/internal/service/admission/infrastructure"
	admissionhttp "skypark/internal/service/admission/interfaces"
	"skypark/internal/service/scoring/algorithm"
	scoringapp "skypark/internal/service/scoring/application"
	"skypark/internal/service/scoring/domain/port"
	scoringinfra "skypark/internal/service/scoring/infrastructure"
	"skypark/internal/service/scoring/plugin"
	scoringhttp "skypark/internal/service/scoring/interfaces"

	park "skypark/domain"
)

const serviceName = "park-service"

// deactivationFanout 把扩展下线通知同时交给策略目录（停用绑定策略）
// 和 Kafka 出口（对外广播）。
type deactivationFanout struct {
	targets []plugin.DeactivationNotifier
}

func (f *deactivationFanout) ExtensionRemoved(ctx context.Context, pluginID string) error {
	for _, t := range f.targets {
		if err := t.ExtensionRemoved(ctx, pluginID); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("plugin_id", pluginID).Msg("extension removal notification failed")
		}
	}
	return nil
}

func main() {
	bootstrap.Init()
	logger.Init(serviceName)
	cfg := bootstrap.GetCurrentConfig()

	// --- 基础设施 ---
	db, err := gorm.Open(mysql.Open(cfg.Infra.Mysql.DSN), &gorm.Config{})
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to connect to mysql")
	}
	if err := db.AutoMigrate(
		&scoringinfra.StrategyModel{},
		&admissioninfra.AttractionModel{},
		&admissioninfra.VisitorModel{},
		&admissioninfra.TicketModel{},
		&admissioninfra.EventModel{},
		&admissioninfra.VisitModel{},
	); err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to migrate database schema")
	}

	redisClient, err := pkgredis.NewClient(context.Background(), cfg.Infra.Redis.Addr)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// 多实例部署时用 ZooKeeper 锁守住“单一激活”不变式，单实例退化为进程内锁
	var catalogLock port.CatalogLock
	var zkConn *zookeeper.Conn
	if len(cfg.Infra.Zookeeper.Servers) > 0 {
		zkConn, err = zookeeper.Connect(cfg.Infra.Zookeeper.Servers)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("failed to connect to zookeeper")
		}
		catalogLock, err = scoringinfra.NewZkCatalogLock(zkConn)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("failed to initialize zookeeper catalog lock")
		}
	} else {
		catalogLock = &port.LocalCatalogLock{}
	}

	kafkaNotifier := admissioninfra.NewKafkaNotificationAdapter(
		cfg.Infra.Kafka.Brokers,
		cfg.Infra.Kafka.NotificationTopic,
	)

	clock := park.SystemClock{}
	tracer := otel.Tracer(serviceName)

	// --- 仓储 ---
	attractionRepo := admissioninfra.NewGormAttractionRepository(db)
	visitorRepo := admissioninfra.NewGormVisitorRepository(db)
	ticketRepo := admissioninfra.NewGormTicketRepository(db)
	eventRepo := admissioninfra.NewGormEventRepository(db)
	visitRepo := admissioninfra.NewGormVisitRepository(db)
	strategyRepo := scoringinfra.NewGormStrategyRepository(db)

	// --- 积分侧 ---
	registry := plugin.NewRegistry()
	factory := algorithm.NewFactory(eventRepo)
	strategyService := scoringapp.NewStrategyService(strategyRepo, registry, factory, catalogLock, clock, tracer)
	// 扩展消失时：先停用绑定它的策略，再对外广播
	registry.SetNotifier(&deactivationFanout{
		targets: []plugin.DeactivationNotifier{strategyService, kafkaNotifier},
	})

	// --- 准入侧 ---
	occupancy, err := admissioninfra.NewRedisOccupancyAdapter(redisClient)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to register occupancy scripts")
	}
	hub := admissionhttp.NewOccupancyHub()
	admissionService := admissionapp.NewAdmissionService(admissionapp.Deps{
		Attractions: attractionRepo,
		Visitors:    visitorRepo,
		Tickets:     ticketRepo,
		Events:      eventRepo,
		Visits:      visitRepo,
		Occupancy:   occupancy,
		Scorer:      admissioninfra.NewScoringServiceAdapter(strategyService),
		Notifier:    admissioninfra.NewCompositeNotifier(kafkaNotifier, hub),
		Clock:       clock,
		Tracer:      tracer,
	})

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        cfg.App.Port,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			scoringhttp.NewStrategyHandler(strategyService).RegisterRoutes(appCtx.Mux)
			admissionhttp.NewAdmissionHandler(admissionService, hub).RegisterRoutes(appCtx.Mux)
			appCtx.Mux.Handle("GET /metrics", promhttp.Handler())
			appCtx.Mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
		},
		BackgroundTasks: []bootstrap.BackgroundTask{
			func(ctx context.Context) error {
				return registry.Watch(ctx, cfg.App.PluginsDir)
			},
			hub.Run,
		},
		OnShutdown: func(ctx context.Context) {
			registry.Shutdown()
			if err := kafkaNotifier.Close(); err != nil {
				logger.Logger.Error().Err(err).Msg("error closing kafka writer")
			}
			if err := redisClient.Close(); err != nil {
				logger.Logger.Error().Err(err).Msg("error closing redis client")
			}
			if zkConn != nil {
				zkConn.Close()
			}
		},
	})
}
