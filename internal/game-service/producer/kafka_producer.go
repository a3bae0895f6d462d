package producer

import (
	"context"
	"time"

	"github.com/radieske/scratch-card-platform-poc/internal/shared/kafka"
	"github.com/radieske/scratch-card-platform-poc/pkg/contracts/events"
)

// KafkaPublisher publica os eventos de rodada do game-service
type KafkaPublisher struct {
	Started  *kafka.Writer
	Resolved *kafka.Writer
}

func NewKafkaPublisher(started, resolved *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Started: started, Resolved: resolved}
}

func (p *KafkaPublisher) PublishRoundStarted(ctx context.Context, e events.RoundStarted) error {
	e.TsUnixMs = time.Now().UnixMilli()
	return kafka.WriteJSON(ctx, p.Started, e.RoundID, e)
}

func (p *KafkaPublisher) PublishRoundResolved(ctx context.Context, e events.RoundResolved) error {
	e.Ts = time.Now()
	return kafka.WriteJSON(ctx, p.Resolved, e.RoundID, e)
}
