package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	raDto "github.com/radieske/scratch-card-platform-poc/internal/round-audit/dto"
	"github.com/radieske/scratch-card-platform-poc/internal/shared/config"
	"github.com/radieske/scratch-card-platform-poc/internal/shared/db"
	"github.com/radieske/scratch-card-platform-poc/internal/shared/kafka"
	"github.com/radieske/scratch-card-platform-poc/internal/shared/logger"
	"github.com/radieske/scratch-card-platform-poc/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("round-audit-worker", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Conexão com banco de dados Postgres para a trilha de auditoria das rodadas
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	// Kafka consumer: consome eventos round_resolved para gravar a auditoria
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicRoundResolved, "round-audit")
	defer reader.Close()

	// DLQ para eventos que não puderam ser gravados
	var dlqWriter *kafka.Writer
	if cfg.TopicRoundResolvedDLQ != "" {
		dlqWriter = kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicRoundResolvedDLQ)
		defer dlqWriter.Close()
	}

	// Métricas Prometheus e healthcheck (saúde = Postgres alcançável)
	metrics.StartMetricsServer(cfg.MetricsPort, pg.PingContext)
	log.Info("metrics/health", zap.String("port", cfg.MetricsPort))

	log.Info("round-audit-worker started", zap.String("consume", cfg.TopicRoundResolved))

	ctx := context.Background()

	// Loop principal: consome eventos do Kafka e grava a trilha de auditoria
	for {
		_, value, err := kafka.ReadNext(ctx, reader)
		if err != nil {
			log.Warn("kafka read", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		var resolved raDto.RoundResolved
		if jerr := json.Unmarshal(value, &resolved); jerr != nil {
			log.Error("unmarshal round_resolved", zap.Error(jerr))
			continue
		}

		if err := processOne(ctx, log, pg, dlqWriter, &resolved); err != nil {
			log.Error("audit round", zap.String("roundId", resolved.RoundID), zap.Error(err))
			// Backoff simples para evitar flood em caso de erro
			time.Sleep(500 * time.Millisecond)
		}
	}
}

// processOne grava uma linha de auditoria para a rodada resolvida:
// 1. Tenta o insert (com retry curto)
// 2. Se persistir a falha, envia o evento para a DLQ
func processOne(
	ctx context.Context,
	log *zap.Logger,
	pg *sql.DB,
	dlqWriter *kafka.Writer,
	resolved *raDto.RoundResolved,
) error {
	err := insertRoundAudit(ctx, pg, resolved)
	if err != nil {
		const retries = 3
		for i := 0; i < retries; i++ {
			time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
			if err = insertRoundAudit(ctx, pg, resolved); err == nil {
				break
			}
		}
		if err != nil {
			if dlqWriter != nil {
				_ = kafka.WriteJSON(ctx, dlqWriter, resolved.RoundID, resolved)
			}
			return err
		}
	}

	log.Debug("round audited",
		zap.String("round_id", resolved.RoundID),
		zap.String("result", resolved.Result),
	)
	return nil
}

// insertRoundAudit é idempotente por round_id (rodada resolvida uma única vez)
func insertRoundAudit(ctx context.Context, pg *sql.DB, r *raDto.RoundResolved) error {
	_, err := pg.ExecContext(ctx, `
		INSERT INTO round_audit (round_id, session_id, user_id, result, bet_cents, prize_cents, balance_cents, auto_play, resolved_at, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW())
		ON CONFLICT (round_id) DO NOTHING`,
		r.RoundID, r.SessionID, r.UserID, r.Result, r.BetCents, r.PrizeCents, r.BalanceCents, r.AutoPlay, r.Ts)
	return err
}
