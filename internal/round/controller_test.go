package round

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/radieske/scratch-card-platform-poc/internal/autoplay"
	"github.com/radieske/scratch-card-platform-poc/internal/outcome"
	"github.com/radieske/scratch-card-platform-poc/internal/wallet"
)

// fakeProvider devolve resultados programados, em ordem
type fakeProvider struct {
	mu      sync.Mutex
	rounds  []*outcome.Round
	errs    []error
	calls   int
	blockCh chan struct{} // quando não-nil, segura a chamada até o canal fechar
}

func (f *fakeProvider) RequestRound(ctx context.Context, req outcome.RoundRequest) (*outcome.Round, error) {
	if f.blockCh != nil {
		<-f.blockCh
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	var rnd *outcome.Round
	if i < len(f.rounds) {
		rnd = f.rounds[i]
	} else if len(f.rounds) > 0 {
		rnd = f.rounds[len(f.rounds)-1]
	}
	if rnd == nil {
		return nil, outcome.ErrUnavailable
	}
	cp := *rnd
	cp.RoundID = req.RoundID
	return &cp, nil
}

// recordingNotifier acumula as notificações emitidas pelo controller
type recordingNotifier struct {
	mu       sync.Mutex
	phases   []Phase
	balances []int64
	auto     []autoState
}

type autoState struct {
	enabled   bool
	remaining int
}

func (r *recordingNotifier) PhaseChanged(p Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phases = append(r.phases, p)
}

func (r *recordingNotifier) BalanceChanged(b int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances = append(r.balances, b)
}

func (r *recordingNotifier) AutoPlayChanged(enabled bool, remaining int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auto = append(r.auto, autoState{enabled, remaining})
}

func (r *recordingNotifier) phaseLog() []Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Phase, len(r.phases))
	copy(out, r.phases)
	return out
}

func loseRound(slots int) *outcome.Round {
	values := make([]int64, slots)
	for i := range values {
		values[i] = int64(100 * (i + 1))
	}
	return &outcome.Round{Result: outcome.ResultLose, RevealValues: values}
}

func winRound(prize int64, slots int) *outcome.Round {
	r := loseRound(slots)
	r.Result = outcome.ResultWin
	r.PrizeCents = prize
	return r
}

func newTestController(balance int64, prov outcome.Provider, n Notifier) (*Controller, *wallet.Ledger, *autoplay.Session) {
	ledger := wallet.NewLedger(balance)
	auto := autoplay.NewSession()
	cfg := Config{
		UserID:        "player-1",
		SettleDelay:   20 * time.Millisecond,
		AutoPlayDelay: 2 * time.Millisecond,
	}
	return NewController(nil, cfg, ledger, auto, prov, n), ledger, auto
}

// waitPhase espera o controller alcançar a fase (transições adiadas por timer)
func waitPhase(t *testing.T, c *Controller, want Phase) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.Phase() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timeout waiting for phase %s, stuck at %s", want, c.Phase())
}

func waitCond(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timeout waiting for %s", what)
}

func TestStartRoundInsufficientFunds(t *testing.T) {
	prov := &fakeProvider{rounds: []*outcome.Round{loseRound(3)}}
	c, ledger, _ := newTestController(249, prov, nil)

	err := c.StartRound(context.Background(), 250)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if got := c.Phase(); got != PhaseIdle {
		t.Errorf("phase = %s, want idle", got)
	}
	if got := ledger.Balance(); got != 249 {
		t.Errorf("balance = %d, want unchanged 249", got)
	}
}

func TestStartRoundWithExactBalance(t *testing.T) {
	prov := &fakeProvider{rounds: []*outcome.Round{loseRound(3)}}
	c, ledger, _ := newTestController(250, prov, nil)

	if err := c.StartRound(context.Background(), 250); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	if got := c.Phase(); got != PhaseInProgress {
		t.Errorf("phase = %s, want in_progress", got)
	}
	if got := ledger.Balance(); got != 0 {
		t.Errorf("balance = %d, want 0", got)
	}
}

// Cenário de referência: aposta 250 com saldo 1000, rodada perdedora,
// cadeia completa Idle -> ... -> Idle e saldo final 750.
func TestLoseRoundFullLifecycle(t *testing.T) {
	prov := &fakeProvider{rounds: []*outcome.Round{loseRound(3)}}
	rec := &recordingNotifier{}
	c, ledger, _ := newTestController(1000, prov, rec)

	if err := c.StartRound(context.Background(), 250); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	if err := c.ForceReveal(); err != nil {
		t.Fatalf("ForceReveal: %v", err)
	}
	if got := c.Phase(); got != PhaseResolvedLose {
		t.Fatalf("phase = %s, want resolved_lose", got)
	}

	waitPhase(t, c, PhaseResetting)
	if err := c.AcknowledgeReset(); err != nil {
		t.Fatalf("AcknowledgeReset: %v", err)
	}

	if got := ledger.Balance(); got != 750 {
		t.Errorf("final balance = %d, want 750", got)
	}

	want := []Phase{PhaseAwaitingPurchase, PhaseInProgress, PhaseRevealing, PhaseResolvedLose, PhaseResetting, PhaseIdle}
	got := rec.phaseLog()
	if len(got) != len(want) {
		t.Fatalf("phase log = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("phase log = %v, want %v", got, want)
		}
	}
}

func TestWinCreditsPrize(t *testing.T) {
	prov := &fakeProvider{rounds: []*outcome.Round{winRound(25, 3)}}
	c, ledger, _ := newTestController(1000, prov, nil)

	if err := c.StartRound(context.Background(), 100); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	if err := c.ForceReveal(); err != nil {
		t.Fatalf("ForceReveal: %v", err)
	}
	if got := c.Phase(); got != PhaseResolvedWin {
		t.Fatalf("phase = %s, want resolved_win", got)
	}
	// 1000 - 100 (aposta) + 25 (prêmio)
	if got := ledger.Balance(); got != 925 {
		t.Errorf("balance = %d, want 925", got)
	}
}

func TestRevealNextStepwise(t *testing.T) {
	prov := &fakeProvider{rounds: []*outcome.Round{loseRound(3)}}
	c, _, _ := newTestController(1000, prov, nil)

	if err := c.StartRound(context.Background(), 100); err != nil {
		t.Fatalf("StartRound: %v", err)
	}

	if err := c.RevealNext(); err != nil {
		t.Fatalf("RevealNext: %v", err)
	}
	if got := c.Phase(); got != PhaseRevealing {
		t.Fatalf("phase after first reveal = %s, want revealing", got)
	}
	if got := c.RevealedValues(); len(got) != 1 || got[0] != 100 {
		t.Fatalf("revealed = %v, want [100]", got)
	}

	_ = c.RevealNext()
	if got := c.Phase(); got != PhaseRevealing {
		t.Fatalf("phase after second reveal = %s, want revealing", got)
	}

	_ = c.RevealNext()
	if got := c.Phase(); got != PhaseResolvedLose {
		t.Fatalf("phase after last reveal = %s, want resolved_lose", got)
	}
	if got := c.RevealedValues(); len(got) != 3 {
		t.Fatalf("revealed = %v, want all 3 values", got)
	}
}

func TestForceRevealIsNoopOutsideRound(t *testing.T) {
	prov := &fakeProvider{rounds: []*outcome.Round{loseRound(3)}}
	rec := &recordingNotifier{}
	// settle longo para a fase resolvida não avançar durante as checagens
	c := NewController(nil, Config{
		UserID:        "player-1",
		SettleDelay:   time.Second,
		AutoPlayDelay: time.Second,
	}, wallet.NewLedger(1000), autoplay.NewSession(), prov, rec)

	// Idle: nada acontece, nenhuma notificação
	if err := c.ForceReveal(); err != nil {
		t.Fatalf("ForceReveal in idle: %v", err)
	}
	if got := c.Phase(); got != PhaseIdle {
		t.Errorf("phase = %s, want idle", got)
	}
	if n := len(rec.phaseLog()); n != 0 {
		t.Errorf("notifications emitted in idle no-op: %d", n)
	}

	// Resolved: interrupção manual ignorada
	_ = c.StartRound(context.Background(), 100)
	_ = c.ForceReveal()
	before := len(rec.phaseLog())
	if err := c.ForceReveal(); err != nil {
		t.Fatalf("ForceReveal in resolved: %v", err)
	}
	if after := len(rec.phaseLog()); after != before {
		t.Errorf("notifications emitted in resolved no-op: %d", after-before)
	}
}

func TestStartRoundDroppedWhileAwaitingPurchase(t *testing.T) {
	block := make(chan struct{})
	prov := &fakeProvider{rounds: []*outcome.Round{loseRound(3)}, blockCh: block}
	c, _, _ := newTestController(1000, prov, nil)

	done := make(chan error, 1)
	go func() { done <- c.StartRound(context.Background(), 100) }()

	waitPhase(t, c, PhaseAwaitingPurchase)

	// gatilho dentro da janela de compra é descartado, não enfileirado
	if err := c.StartRound(context.Background(), 100); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("concurrent StartRound err = %v, want ErrInvalidTransition", err)
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("first StartRound: %v", err)
	}
	if got := c.Phase(); got != PhaseInProgress {
		t.Errorf("phase = %s, want in_progress", got)
	}
}

func TestProviderFailureRefundsBet(t *testing.T) {
	prov := &fakeProvider{errs: []error{outcome.ErrUnavailable}}
	c, ledger, _ := newTestController(1000, prov, nil)

	err := c.StartRound(context.Background(), 250)
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("err = %v, want ErrProviderUnavailable", err)
	}
	if got := c.Phase(); got != PhaseIdle {
		t.Errorf("phase = %s, want idle", got)
	}
	if got := ledger.Balance(); got != 1000 {
		t.Errorf("balance = %d, want refunded 1000", got)
	}
}

func TestAcknowledgeResetOutsidePhase(t *testing.T) {
	prov := &fakeProvider{rounds: []*outcome.Round{loseRound(3)}}
	c, _, _ := newTestController(1000, prov, nil)

	if err := c.AcknowledgeReset(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
	if got := c.Phase(); got != PhaseIdle {
		t.Errorf("phase = %s, want idle", got)
	}
}

func TestAutoPlayRunsRequestedRounds(t *testing.T) {
	prov := &fakeProvider{rounds: []*outcome.Round{loseRound(3)}}
	c, ledger, auto := newTestController(1000, prov, nil)

	// primeira rodada manual define a aposta usada pelo auto-play
	if err := c.StartRound(context.Background(), 100); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	_ = c.ForceReveal()
	waitPhase(t, c, PhaseResetting)
	_ = c.AcknowledgeReset()

	if err := c.SetAutoPlay(true, 3); err != nil {
		t.Fatalf("SetAutoPlay: %v", err)
	}

	// o loop revela e reseta sozinho; exaure as 3 rodadas e desliga
	waitCond(t, "auto-play exhaustion", func() bool {
		snap := auto.Snapshot()
		return !snap.Enabled && snap.RoundsRemaining == 0
	})

	// a última rodada ainda precisa do ack da apresentação
	waitPhase(t, c, PhaseResetting)
	_ = c.AcknowledgeReset()

	// 4 rodadas perdidas de 100: 1000 - 400
	if got := ledger.Balance(); got != 600 {
		t.Errorf("balance = %d, want 600", got)
	}
}

func TestAutoPlayDisabledOnInsufficientFunds(t *testing.T) {
	prov := &fakeProvider{rounds: []*outcome.Round{loseRound(3)}}
	c, _, auto := newTestController(250, prov, nil)

	// saldo para uma única rodada
	if err := c.StartRound(context.Background(), 200); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	_ = c.ForceReveal()
	waitPhase(t, c, PhaseResetting)
	_ = c.AcknowledgeReset()

	_ = c.SetAutoPlay(true, 5)

	// a rodada automática falha na autorização e desliga o auto-play
	waitCond(t, "auto-play disabled", func() bool {
		return !auto.Snapshot().Enabled
	})
	waitPhase(t, c, PhaseIdle)
}

func TestCloseCancelsPendingTransitions(t *testing.T) {
	prov := &fakeProvider{rounds: []*outcome.Round{loseRound(3)}}
	ledger := wallet.NewLedger(1000)
	auto := autoplay.NewSession()
	c := NewController(nil, Config{
		UserID:        "player-1",
		SettleDelay:   50 * time.Millisecond,
		AutoPlayDelay: 50 * time.Millisecond,
	}, ledger, auto, prov, nil)

	_ = c.StartRound(context.Background(), 100)
	_ = c.ForceReveal()
	if got := c.Phase(); got != PhaseResolvedLose {
		t.Fatalf("phase = %s, want resolved_lose", got)
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	time.Sleep(80 * time.Millisecond)

	// settle cancelado: nenhuma transição após o teardown
	if got := c.Phase(); got != PhaseResolvedLose {
		t.Errorf("phase after close = %s, want resolved_lose", got)
	}
	if err := c.StartRound(context.Background(), 100); !errors.Is(err, ErrClosed) {
		t.Errorf("StartRound after close err = %v, want ErrClosed", err)
	}
	if err := c.ForceReveal(); !errors.Is(err, ErrClosed) {
		t.Errorf("ForceReveal after close err = %v, want ErrClosed", err)
	}
}

func TestPhaseAlwaysDefined(t *testing.T) {
	prov := &fakeProvider{rounds: []*outcome.Round{winRound(50, 3)}}
	c, _, _ := newTestController(1000, prov, nil)

	known := func(p Phase) bool {
		switch p {
		case PhaseIdle, PhaseAwaitingPurchase, PhaseInProgress, PhaseRevealing,
			PhaseResolvedWin, PhaseResolvedLose, PhaseResetting:
			return true
		}
		return false
	}

	// sequência arbitrária de gatilhos, válidos e inválidos
	triggers := []func() error{
		func() error { return c.AcknowledgeReset() },
		func() error { return c.ForceReveal() },
		func() error { return c.StartRound(context.Background(), 100) },
		func() error { return c.StartRound(context.Background(), 100) },
		func() error { return c.RevealNext() },
		func() error { return c.AcknowledgeReset() },
		func() error { return c.ForceReveal() },
		func() error { return c.ForceReveal() },
		func() error { return c.SetAutoPlay(true, 2) },
		func() error { return c.SetAutoPlay(false, 0) },
	}
	for i, trig := range triggers {
		_ = trig()
		if p := c.Phase(); !known(p) {
			t.Fatalf("after trigger %d: undefined phase %d", i, p)
		}
	}
}
