package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/scratch-card-platform-poc/internal/autoplay"
	"github.com/radieske/scratch-card-platform-poc/internal/outcome"
	"github.com/radieske/scratch-card-platform-poc/internal/round"
	"github.com/radieske/scratch-card-platform-poc/internal/wallet"
)

var ErrNotFound = errors.New("session not found")

// NotifierFactory cria o notifier de uma sessão recém-criada
type NotifierFactory func(sessionID, userID string) round.Notifier

// Session agrupa o controller, a carteira e o auto-play de um jogador
type Session struct {
	ID         string
	UserID     string
	CreatedAt  time.Time
	Ledger     *wallet.Ledger
	Auto       *autoplay.Session
	Controller *round.Controller
}

// Config parametriza as sessões criadas pelo registry
type Config struct {
	StartingBalanceCents int64
	SettleDelay          time.Duration
	AutoPlayDelay        time.Duration
}

// Registry mantém as sessões ativas do game-service, uma por jogador conectado.
// Sessões vivem apenas em memória: recarregar a página recomeça do saldo inicial.
type Registry struct {
	log      *zap.Logger
	cfg      Config
	provider outcome.Provider
	notify   NotifierFactory

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry(log *zap.Logger, cfg Config, provider outcome.Provider, notify NotifierFactory) *Registry {
	return &Registry{
		log:      log,
		cfg:      cfg,
		provider: provider,
		notify:   notify,
		sessions: make(map[string]*Session),
	}
}

// Create monta uma sessão nova com carteira, auto-play e controller próprios
func (r *Registry) Create(userID string) *Session {
	id := uuid.New().String()

	ledger := wallet.NewLedger(r.cfg.StartingBalanceCents)
	auto := autoplay.NewSession()

	var notifier round.Notifier
	if r.notify != nil {
		notifier = r.notify(id, userID)
	}

	ctl := round.NewController(
		r.log.With(zap.String("session_id", id), zap.String("user_id", userID)),
		round.Config{
			UserID:        userID,
			SettleDelay:   r.cfg.SettleDelay,
			AutoPlayDelay: r.cfg.AutoPlayDelay,
		},
		ledger, auto, r.provider, notifier,
	)

	s := &Session{
		ID:         id,
		UserID:     userID,
		CreatedAt:  time.Now(),
		Ledger:     ledger,
		Auto:       auto,
		Controller: ctl,
	}

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()

	r.log.Info("session created", zap.String("session_id", id), zap.String("user_id", userID))
	return s
}

// Get retorna a sessão pelo id
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Close encerra a sessão e cancela os callbacks pendentes do controller
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	return s.Controller.Close()
}

// CloseAll encerra todas as sessões (shutdown do serviço)
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		_ = s.Controller.Close()
		delete(r.sessions, id)
	}
}
