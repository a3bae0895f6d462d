package round

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/scratch-card-platform-poc/internal/autoplay"
	"github.com/radieske/scratch-card-platform-poc/internal/outcome"
	"github.com/radieske/scratch-card-platform-poc/internal/wallet"
)

var (
	// ErrInsufficientFunds: saldo menor que a aposta; volta para Idle e aguarda novo gatilho
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrProviderUnavailable: falha na compra da rodada; aposta estornada, volta para Idle
	ErrProviderUnavailable = errors.New("outcome provider unavailable")
	// ErrInvalidTransition: gatilho fora de fase; logado e descartado, nunca fatal
	ErrInvalidTransition = errors.New("invalid phase transition")
	// ErrClosed: controller encerrado (teardown da sessão)
	ErrClosed = errors.New("round controller closed")

	errInvalidBet = errors.New("bet must be positive")
)

// Config define os parâmetros de tempo e identidade do controller
type Config struct {
	UserID        string
	SettleDelay   time.Duration // Resolved -> Resetting
	AutoPlayDelay time.Duration // passos automáticos do auto-play
}

// Controller orquestra o ciclo de vida das rodadas de um jogador:
// compra -> revelação -> resolução -> reset, com continuação opcional via auto-play.
//
// Todos os gatilhos são serializados por um único mutex; a chamada ao provedor de
// resultados é o único ponto de suspensão e acontece fora do lock, com a fase presa
// em AwaitingPurchase (gatilhos de início recebidos nessa janela são descartados).
// Os passos adiados (settle, auto-play) são timers cancelados no Close.
type Controller struct {
	log      *zap.Logger
	cfg      Config
	ledger   *wallet.Ledger
	auto     *autoplay.Session
	provider outcome.Provider
	notifier Notifier

	mu           sync.Mutex
	phase        Phase
	round        *outcome.Round
	revealed     int
	lastBetCents int64
	closed       bool

	settleTimer *time.Timer
	autoTimer   *time.Timer
}

// NewController cria o controller em Idle.
// ledger, auto e provider são obrigatórios; notifier e log podem ser nil.
func NewController(log *zap.Logger, cfg Config, ledger *wallet.Ledger, auto *autoplay.Session, provider outcome.Provider, notifier Notifier) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Controller{
		log:      log,
		cfg:      cfg,
		ledger:   ledger,
		auto:     auto,
		provider: provider,
		notifier: notifier,
		phase:    PhaseIdle,
	}
}

// Phase retorna a fase atual
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// RevealedValues retorna os valores já revelados da rodada ativa, em ordem
func (c *Controller) RevealedValues() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.round == nil || c.revealed == 0 {
		return nil
	}
	out := make([]int64, c.revealed)
	copy(out, c.round.RevealValues[:c.revealed])
	return out
}

// CurrentRound retorna o resultado da rodada ativa (nil fora de rodada)
func (c *Controller) CurrentRound() *outcome.Round {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.round
}

// StartRound compra uma nova rodada: Idle -> AwaitingPurchase -> InProgress.
// Autorização insuficiente volta para Idle com ErrInsufficientFunds; falha do
// provedor estorna a aposta e volta para Idle com ErrProviderUnavailable.
func (c *Controller) StartRound(ctx context.Context, betCents int64) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if betCents <= 0 {
		c.mu.Unlock()
		return errInvalidBet
	}
	if c.phase != PhaseIdle {
		c.dropTriggerLocked("start_round")
		c.mu.Unlock()
		return ErrInvalidTransition
	}

	roundID := uuid.New().String()
	c.setPhaseLocked(PhaseAwaitingPurchase)

	if err := c.ledger.Authorize(betCents, "round:"+roundID); err != nil {
		c.setPhaseLocked(PhaseIdle)
		if c.auto.Active() {
			// sem saldo não há como continuar o loop automático
			c.auto.Disable()
			c.notifyAutoLocked()
			c.log.Info("auto-play stopped: insufficient funds", zap.String("user_id", c.cfg.UserID))
		}
		c.mu.Unlock()
		return ErrInsufficientFunds
	}
	c.notifier.BalanceChanged(c.ledger.Balance())
	c.lastBetCents = betCents

	req := outcome.RoundRequest{
		RoundID:  roundID,
		UserID:   c.cfg.UserID,
		BetCents: betCents,
	}
	c.mu.Unlock()

	// único ponto de suspensão: compra no provedor, fora do lock
	rnd, err := c.provider.RequestRound(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		// teardown durante a compra: devolve a aposta e descarta o resultado
		c.ledger.Credit(betCents, "refund:"+roundID)
		return ErrClosed
	}
	if err != nil {
		c.log.Warn("round purchase failed",
			zap.String("round_id", roundID),
			zap.Error(err),
		)
		c.ledger.Credit(betCents, "refund:"+roundID)
		c.notifier.BalanceChanged(c.ledger.Balance())
		c.setPhaseLocked(PhaseIdle)
		// falha é retryable: com auto-play ativo a próxima tentativa é agendada
		c.scheduleAutoStartLocked()
		return ErrProviderUnavailable
	}

	c.round = rnd
	c.revealed = 0
	c.setPhaseLocked(PhaseInProgress)
	c.log.Info("round started",
		zap.String("round_id", rnd.RoundID),
		zap.Int64("bet_cents", betCents),
	)
	if obs, ok := c.notifier.(RoundObserver); ok {
		obs.RoundStarted(RoundSummary{
			RoundID:      rnd.RoundID,
			BetCents:     betCents,
			BalanceCents: c.ledger.Balance(),
			AutoPlay:     c.auto.Active(),
		})
	}
	c.scheduleAutoRevealLocked()
	return nil
}

// RevealNext revela o próximo campo da raspadinha.
// Primeiro campo move InProgress -> Revealing; o último resolve a rodada.
// Fora de rodada é um no-op silencioso.
func (c *Controller) RevealNext() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	switch c.phase {
	case PhaseInProgress:
		c.setPhaseLocked(PhaseRevealing)
	case PhaseRevealing:
	default:
		return nil
	}

	if c.revealed < len(c.round.RevealValues) {
		c.revealed++
	}
	if c.revealed >= len(c.round.RevealValues) {
		c.resolveLocked()
	}
	return nil
}

// ForceReveal revela todos os campos restantes de uma vez (interrupção manual ou
// passo do auto-play). Em qualquer fase resolvida ou fora de rodada é ignorado.
func (c *Controller) ForceReveal() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	switch c.phase {
	case PhaseInProgress:
		c.setPhaseLocked(PhaseRevealing)
	case PhaseRevealing:
	default:
		return nil
	}

	c.revealed = len(c.round.RevealValues)
	c.resolveLocked()
	return nil
}

// AcknowledgeReset sinaliza que a apresentação terminou o reset: Resetting -> Idle.
// Com auto-play ativo, a próxima rodada é agendada ao entrar em Idle.
func (c *Controller) AcknowledgeReset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.phase != PhaseResetting {
		c.dropTriggerLocked("acknowledge_reset")
		return ErrInvalidTransition
	}

	c.round = nil
	c.revealed = 0
	c.setPhaseLocked(PhaseIdle)
	c.scheduleAutoStartLocked()
	return nil
}

// SetAutoPlay liga ou desliga o auto-play.
// Ligar no meio de uma rodada agenda o próximo passo automático da fase atual;
// desligar cancela qualquer passo automático pendente.
func (c *Controller) SetAutoPlay(enabled bool, rounds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	if !enabled {
		c.auto.Disable()
		c.stopAutoTimerLocked()
		c.notifyAutoLocked()
		return nil
	}

	c.auto.Enable(rounds)
	c.notifyAutoLocked()

	switch c.phase {
	case PhaseIdle:
		c.scheduleAutoStartLocked()
	case PhaseInProgress, PhaseRevealing:
		c.scheduleAutoRevealLocked()
	case PhaseResetting:
		c.scheduleAutoAckLocked()
	}
	return nil
}

// Close encerra o controller e cancela os timers pendentes.
// Nenhuma transição acontece depois do Close.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.settleTimer != nil {
		c.settleTimer.Stop()
	}
	c.stopAutoTimerLocked()
	return nil
}

// resolveLocked fecha a rodada: credita prêmio em vitória, consome a cota de
// auto-play e agenda o settle para Resetting.
func (c *Controller) resolveLocked() {
	if c.round.Win() {
		c.ledger.Credit(c.round.PrizeCents, "prize:"+c.round.RoundID)
		c.setPhaseLocked(PhaseResolvedWin)
		c.notifier.BalanceChanged(c.ledger.Balance())
	} else {
		c.setPhaseLocked(PhaseResolvedLose)
	}
	c.log.Info("round resolved",
		zap.String("round_id", c.round.RoundID),
		zap.String("result", c.round.Result),
		zap.Int64("prize_cents", c.round.PrizeCents),
	)
	if obs, ok := c.notifier.(RoundObserver); ok {
		obs.RoundResolved(RoundSummary{
			RoundID:      c.round.RoundID,
			Result:       c.round.Result,
			BetCents:     c.lastBetCents,
			PrizeCents:   c.round.PrizeCents,
			BalanceCents: c.ledger.Balance(),
			AutoPlay:     c.auto.Snapshot().Enabled,
		})
	}

	if c.auto.Snapshot().Enabled {
		c.auto.ConsumeRound()
		c.notifyAutoLocked()
	}

	c.settleTimer = time.AfterFunc(c.cfg.SettleDelay, c.settleElapsed)
}

// settleElapsed executa a transição adiada Resolved -> Resetting
func (c *Controller) settleElapsed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.phase.Resolved() {
		return
	}
	c.setPhaseLocked(PhaseResetting)
	c.scheduleAutoAckLocked()
}

// setPhaseLocked aplica a transição validando a aresta e notifica a apresentação.
// Aresta inválida aqui é erro de programação: logada e ignorada.
func (c *Controller) setPhaseLocked(to Phase) {
	if !CanTransition(c.phase, to) {
		c.log.Error("illegal phase edge ignored",
			zap.String("from", c.phase.String()),
			zap.String("to", to.String()),
		)
		return
	}
	c.phase = to
	c.notifier.PhaseChanged(to)
}

// dropTriggerLocked loga um gatilho recebido fora de fase
func (c *Controller) dropTriggerLocked(trigger string) {
	c.log.Warn("trigger dropped",
		zap.String("trigger", trigger),
		zap.String("phase", c.phase.String()),
	)
}

func (c *Controller) notifyAutoLocked() {
	snap := c.auto.Snapshot()
	c.notifier.AutoPlayChanged(snap.Enabled, snap.RoundsRemaining)
}

func (c *Controller) stopAutoTimerLocked() {
	if c.autoTimer != nil {
		c.autoTimer.Stop()
		c.autoTimer = nil
	}
}

// scheduleAutoStartLocked agenda a próxima rodada automática ao entrar em Idle
func (c *Controller) scheduleAutoStartLocked() {
	if !c.auto.Active() || c.lastBetCents <= 0 {
		return
	}
	bet := c.lastBetCents
	c.autoTimer = time.AfterFunc(c.cfg.AutoPlayDelay, func() {
		_ = c.StartRound(context.Background(), bet)
	})
}

// scheduleAutoRevealLocked agenda a revelação automática de uma rodada em andamento
func (c *Controller) scheduleAutoRevealLocked() {
	if !c.auto.Active() {
		return
	}
	c.autoTimer = time.AfterFunc(c.cfg.AutoPlayDelay, func() {
		_ = c.ForceReveal()
	})
}

// scheduleAutoAckLocked agenda o ack de reset de uma rodada automática
func (c *Controller) scheduleAutoAckLocked() {
	if !c.auto.Active() {
		return
	}
	c.autoTimer = time.AfterFunc(c.cfg.AutoPlayDelay, func() {
		_ = c.AcknowledgeReset()
	})
}
