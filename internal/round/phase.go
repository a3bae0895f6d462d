package round

// Phase é a fase atual do ciclo de vida de uma rodada.
// Enum fechado: toda transição passa por CanTransition, nenhuma fase é pulada.
type Phase int

const (
	PhaseIdle             Phase = iota // aguardando gatilho de início
	PhaseAwaitingPurchase              // débito autorizado em andamento, compra no provedor
	PhaseInProgress                    // rodada comprada, campos ainda cobertos
	PhaseRevealing                     // revelação dos campos em andamento
	PhaseResolvedWin                   // todos os campos revelados, rodada vencedora
	PhaseResolvedLose                  // todos os campos revelados, rodada perdedora
	PhaseResetting                     // aguardando a apresentação concluir o reset
)

func (p Phase) String() string {
	names := [...]string{
		"idle",
		"awaiting_purchase",
		"in_progress",
		"revealing",
		"resolved_win",
		"resolved_lose",
		"resetting",
	}
	if p < 0 || int(p) >= len(names) {
		return "unknown"
	}
	return names[p]
}

// Resolved indica se a fase é um dos dois estados finais de rodada
func (p Phase) Resolved() bool {
	return p == PhaseResolvedWin || p == PhaseResolvedLose
}

// Arestas válidas do ciclo de vida
var transitions = map[Phase][]Phase{
	PhaseIdle:             {PhaseAwaitingPurchase},
	PhaseAwaitingPurchase: {PhaseInProgress, PhaseIdle},
	PhaseInProgress:       {PhaseRevealing},
	PhaseRevealing:        {PhaseResolvedWin, PhaseResolvedLose},
	PhaseResolvedWin:      {PhaseResetting},
	PhaseResolvedLose:     {PhaseResetting},
	PhaseResetting:        {PhaseIdle},
}

// CanTransition informa se a aresta from -> to é permitida
func CanTransition(from, to Phase) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
