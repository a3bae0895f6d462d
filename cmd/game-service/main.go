package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	ghttp "github.com/radieske/scratch-card-platform-poc/internal/game-service/http"
	"github.com/radieske/scratch-card-platform-poc/internal/game-service/notify"
	"github.com/radieske/scratch-card-platform-poc/internal/game-service/producer"
	"github.com/radieske/scratch-card-platform-poc/internal/game-service/session"
	"github.com/radieske/scratch-card-platform-poc/internal/game-service/ws"
	"github.com/radieske/scratch-card-platform-poc/internal/outcome"
	"github.com/radieske/scratch-card-platform-poc/internal/round"
	"github.com/radieske/scratch-card-platform-poc/internal/shared/cache"
	"github.com/radieske/scratch-card-platform-poc/internal/shared/config"
	skafka "github.com/radieske/scratch-card-platform-poc/internal/shared/kafka"
	"github.com/radieske/scratch-card-platform-poc/internal/shared/logger"
	"github.com/radieske/scratch-card-platform-poc/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, _ := logger.New("game-service", cfg.Env)
	defer log.Sync()

	// Redis (fan-out das notificações para o hub WebSocket)
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}

	// Kafka writers (round_started / round_resolved)
	startedWriter := skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicRoundStarted)
	defer startedWriter.Close()
	resolvedWriter := skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicRoundResolved)
	defer resolvedWriter.Close()
	publ := producer.NewKafkaPublisher(startedWriter, resolvedWriter)

	// Provedor de resultados (simulador ou real)
	provider := outcome.NewClient(cfg.OutcomeURL)

	notify.RegisterMetrics()

	// deps
	sessions := session.NewRegistry(log, session.Config{
		StartingBalanceCents: cfg.StartingBalanceCents,
		SettleDelay:          cfg.SettleDelay,
		AutoPlayDelay:        cfg.AutoPlayDelay,
	}, provider, func(sessionID, userID string) round.Notifier {
		return notify.New(log, rdb, cfg.RedisPubSubChannel, publ, sessionID, userID)
	})
	defer sessions.CloseAll()

	hub := ws.NewHub(func(r *http.Request) bool { return true })
	ws.StartRedisSubscriber(context.Background(), rdb, cfg.RedisPubSubChannel, hub)

	// HTTP público
	api := ghttp.NewServer(log, sessions, hub)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health (saúde = Redis respondendo, sem ele não há fan-out)
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	log.Info("metrics/health", zap.String("addr", fmt.Sprintf(":%s", cfg.MetricsPort)))

	log.Info("game-service listening", zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
