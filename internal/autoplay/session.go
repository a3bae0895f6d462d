package autoplay

import "sync"

// State é a visão somente-leitura da sessão de auto-play exposta para apresentação
type State struct {
	Enabled         bool
	RoundsRequested int
	RoundsRemaining int
}

// Session controla a repetição automática de rodadas por uma contagem fixa.
// Mutação apenas pelo controller da rodada; leitura concorrente pela apresentação.
type Session struct {
	mu              sync.RWMutex
	enabled         bool
	roundsRequested int
	roundsRemaining int
}

func NewSession() *Session { return &Session{} }

// Enable liga o auto-play para a quantidade de rodadas informada
func (s *Session) Enable(rounds int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rounds <= 0 {
		s.enabled = false
		s.roundsRequested = 0
		s.roundsRemaining = 0
		return
	}
	s.enabled = true
	s.roundsRequested = rounds
	s.roundsRemaining = rounds
}

// Disable desliga o auto-play e zera o contador
func (s *Session) Disable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = false
	s.roundsRemaining = 0
}

// ConsumeRound decrementa o contador após uma rodada resolvida.
// Ao chegar em zero o auto-play é desligado.
func (s *Session) ConsumeRound() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return
	}
	if s.roundsRemaining > 0 {
		s.roundsRemaining--
	}
	if s.roundsRemaining == 0 {
		s.enabled = false
	}
}

// Active indica se ainda há rodadas automáticas a disparar
func (s *Session) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled && s.roundsRemaining > 0
}

// Snapshot retorna o estado atual para exibição
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Enabled:         s.enabled,
		RoundsRequested: s.roundsRequested,
		RoundsRemaining: s.roundsRemaining,
	}
}
