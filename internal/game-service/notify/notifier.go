package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/scratch-card-platform-poc/internal/game-service/producer"
	"github.com/radieske/scratch-card-platform-poc/internal/game-service/ws"
	"github.com/radieske/scratch-card-platform-poc/internal/round"
	"github.com/radieske/scratch-card-platform-poc/pkg/contracts/events"
)

// Métricas Prometheus do ciclo de vida das rodadas
var (
	phaseChanges = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "game_phase_changes_total",
		Help: "Transições de fase emitidas pelos controllers",
	}, []string{"phase"})
	roundsResolved = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "game_rounds_resolved_total",
		Help: "Rodadas resolvidas por resultado",
	}, []string{"result"})

	registerOnce sync.Once
)

// RegisterMetrics registra os coletores no registry default (uma vez)
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(phaseChanges, roundsResolved)
	})
}

// Notifier implementa round.Notifier e round.RoundObserver para uma sessão:
// publica notificações no Redis Pub/Sub (fan-out para o hub WebSocket),
// eventos de rodada no Kafka e incrementa as métricas Prometheus.
//
// É chamado com o lock do controller em mãos, então todo I/O sai em goroutine.
type Notifier struct {
	log       *zap.Logger
	rdb       *redis.Client
	channel   string
	publ      *producer.KafkaPublisher
	sessionID string
	userID    string
}

func New(log *zap.Logger, rdb *redis.Client, channel string, publ *producer.KafkaPublisher, sessionID, userID string) *Notifier {
	return &Notifier{
		log:       log,
		rdb:       rdb,
		channel:   channel,
		publ:      publ,
		sessionID: sessionID,
		userID:    userID,
	}
}

func (n *Notifier) PhaseChanged(phase round.Phase) {
	phaseChanges.WithLabelValues(phase.String()).Inc()
	n.publishUpdate("phase", ws.PhasePayload{Phase: phase.String()})
}

func (n *Notifier) BalanceChanged(balanceCents int64) {
	n.publishUpdate("balance", ws.BalancePayload{BalanceCents: balanceCents})
}

func (n *Notifier) AutoPlayChanged(enabled bool, roundsRemaining int) {
	n.publishUpdate("autoplay", ws.AutoPlayPayload{Enabled: enabled, RoundsRemaining: roundsRemaining})
}

func (n *Notifier) RoundStarted(s round.RoundSummary) {
	if n.publ == nil {
		return
	}
	e := events.RoundStarted{
		RoundID:   s.RoundID,
		SessionID: n.sessionID,
		UserID:    n.userID,
		BetCents:  s.BetCents,
		AutoPlay:  s.AutoPlay,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := n.publ.PublishRoundStarted(ctx, e); err != nil {
			n.log.Warn("publish round_started", zap.Error(err))
		}
	}()
}

func (n *Notifier) RoundResolved(s round.RoundSummary) {
	if n.publ == nil {
		return
	}
	roundsResolved.WithLabelValues(s.Result).Inc()
	e := events.RoundResolved{
		RoundID:      s.RoundID,
		SessionID:    n.sessionID,
		UserID:       n.userID,
		Result:       s.Result,
		BetCents:     s.BetCents,
		PrizeCents:   s.PrizeCents,
		BalanceCents: s.BalanceCents,
		AutoPlay:     s.AutoPlay,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := n.publ.PublishRoundResolved(ctx, e); err != nil {
			n.log.Warn("publish round_resolved", zap.Error(err))
		}
	}()
}

// publishUpdate envia a notificação para o canal Redis fora do lock do controller
func (n *Notifier) publishUpdate(kind string, payload interface{}) {
	if n.rdb == nil {
		return
	}
	b, _ := json.Marshal(ws.Update{SessionID: n.sessionID, Kind: kind, Payload: payload})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := n.rdb.Publish(ctx, n.channel, b).Err(); err != nil {
			n.log.Warn("publish ws update", zap.String("kind", kind), zap.Error(err))
		}
	}()
}
