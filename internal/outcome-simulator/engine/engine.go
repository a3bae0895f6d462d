package engine

import (
	"errors"
	"math/rand"
	"sync"

	"github.com/radieske/scratch-card-platform-poc/internal/outcome"
)

// ErrInjectedFailure simula indisponibilidade do provedor (teste de retry)
var ErrInjectedFailure = errors.New("injected provider failure")

// Multiplicadores de prêmio e seus pesos (soma 100)
var prizeTable = []struct {
	Multiplier int64
	Weight     int
}{
	{2, 50},
	{5, 25},
	{10, 15},
	{25, 7},
	{100, 3},
}

// Valores exibidos nos campos perdedores, em múltiplos da aposta
var decoyMultipliers = []int64{1, 2, 5, 10, 25}

// Config parametriza o motor de resultados
type Config struct {
	WinChancePct   int // % de rodadas vencedoras
	RevealSlots    int // campos por cartela (>= 3)
	FailureRatePct int // % de chamadas que falham de propósito
	Seed           int64
}

// Engine decide o resultado de cada rodada: vitória/derrota, prêmio e os
// valores de cada campo da raspadinha. Cartela vencedora tem o valor do
// prêmio em exatamente três campos; perdedora nunca repete um valor três vezes.
type Engine struct {
	mu  sync.Mutex
	cfg Config
	rnd *rand.Rand
}

func New(cfg Config) *Engine {
	if cfg.RevealSlots < 3 {
		cfg.RevealSlots = 3
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	return &Engine{cfg: cfg, rnd: rand.New(rand.NewSource(seed))}
}

// Resolve produz o resultado de uma rodada comprada
func (e *Engine) Resolve(req outcome.RoundRequest) (*outcome.Round, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cfg.FailureRatePct > 0 && e.rnd.Intn(100) < e.cfg.FailureRatePct {
		return nil, ErrInjectedFailure
	}

	win := e.rnd.Intn(100) < e.cfg.WinChancePct

	var prize int64
	if win {
		prize = req.BetCents * e.pickMultiplier()
	}

	return &outcome.Round{
		RoundID:      req.RoundID,
		Result:       result(win),
		PrizeCents:   prize,
		RevealValues: e.buildCard(req.BetCents, prize, win),
	}, nil
}

func result(win bool) string {
	if win {
		return outcome.ResultWin
	}
	return outcome.ResultLose
}

// pickMultiplier sorteia o multiplicador de prêmio pela tabela de pesos
func (e *Engine) pickMultiplier() int64 {
	num := e.rnd.Intn(100)
	cumulative := 0
	for _, p := range prizeTable {
		cumulative += p.Weight
		if num < cumulative {
			return p.Multiplier
		}
	}
	return prizeTable[0].Multiplier
}

// buildCard monta os valores da cartela.
// Vitória: o valor do prêmio aparece em três campos sorteados; os demais são
// distratores limitados a duas ocorrências. Derrota: só distratores.
func (e *Engine) buildCard(betCents, prizeCents int64, win bool) []int64 {
	values := make([]int64, e.cfg.RevealSlots)
	counts := make(map[int64]int)

	winSlots := make(map[int]bool)
	if win {
		for _, i := range e.rnd.Perm(e.cfg.RevealSlots)[:3] {
			winSlots[i] = true
		}
	}

	for i := range values {
		if winSlots[i] {
			values[i] = prizeCents
			continue
		}
		values[i] = e.pickDecoy(betCents, prizeCents, counts)
	}
	return values
}

// pickDecoy sorteia um valor distrator que não forma trinca nem colide com o prêmio.
// Cartelas maiores que o pool de distratores degradam para repetição livre.
func (e *Engine) pickDecoy(betCents, prizeCents int64, counts map[int64]int) int64 {
	for attempts := 0; ; attempts++ {
		v := betCents * decoyMultipliers[e.rnd.Intn(len(decoyMultipliers))]
		if v == prizeCents {
			continue
		}
		if attempts < 32 && counts[v] >= 2 {
			continue
		}
		counts[v]++
		return v
	}
}
