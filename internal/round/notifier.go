package round

// Notifier recebe as notificações do controller destinadas à camada de apresentação.
// As chamadas acontecem com o lock do controller em mãos: implementações não devem
// chamar de volta o controller nem bloquear.
type Notifier interface {
	PhaseChanged(phase Phase)
	BalanceChanged(balanceCents int64)
	AutoPlayChanged(enabled bool, roundsRemaining int)
}

// RoundSummary carrega os dados de uma rodada iniciada ou resolvida
type RoundSummary struct {
	RoundID      string
	Result       string // WIN | LOSE (vazio em started)
	BetCents     int64
	PrizeCents   int64
	BalanceCents int64
	AutoPlay     bool
}

// RoundObserver é uma extensão opcional do Notifier para consumidores que
// precisam do resultado completo da rodada (ex.: publicação de eventos).
// Mesma restrição do Notifier: não chamar de volta o controller.
type RoundObserver interface {
	RoundStarted(s RoundSummary)
	RoundResolved(s RoundSummary)
}

// NopNotifier descarta todas as notificações
type NopNotifier struct{}

func (NopNotifier) PhaseChanged(Phase)        {}
func (NopNotifier) BalanceChanged(int64)      {}
func (NopNotifier) AutoPlayChanged(bool, int) {}
