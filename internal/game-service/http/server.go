package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/radieske/scratch-card-platform-poc/internal/game-service/dto"
	"github.com/radieske/scratch-card-platform-poc/internal/game-service/session"
	"github.com/radieske/scratch-card-platform-poc/internal/game-service/ws"
	"github.com/radieske/scratch-card-platform-poc/internal/round"
)

// Server expõe a API pública do jogo: sessões e gatilhos do ciclo de rodada
type Server struct {
	log      *zap.Logger
	sessions *session.Registry
	hub      *ws.Hub
}

func NewServer(log *zap.Logger, sessions *session.Registry, hub *ws.Hub) *Server {
	return &Server{log: log, sessions: sessions, hub: hub}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/sessions", s.createSession)  // POST
	mux.HandleFunc("/sessions/", s.sessionRoutes) // GET/DELETE /sessions/{id}, POST /sessions/{id}/{ação}
	mux.HandleFunc("/ws", s.hub.HandleWS)
	return mux
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}

	sess := s.sessions.Create(req.UserID)
	writeJSON(w, s.sessionView(sess))
}

// sessionRoutes despacha /sessions/{id} e /sessions/{id}/{ação}
func (s *Server) sessionRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/sessions/")
	if rest == "" {
		http.Error(w, "sessionId required", http.StatusBadRequest)
		return
	}
	id, action, _ := strings.Cut(rest, "/")

	sess, err := s.sessions.Get(id)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	switch action {
	case "":
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, s.sessionView(sess))
		case http.MethodDelete:
			_ = s.sessions.Close(id)
			w.WriteHeader(http.StatusNoContent)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	case "deposit":
		s.deposit(w, r, sess)
	case "rounds":
		s.startRound(w, r, sess)
	case "reveal":
		s.reveal(w, r, sess)
	case "reset-ack":
		s.resetAck(w, r, sess)
	case "autoplay":
		s.autoPlay(w, r, sess)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (s *Server) deposit(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.AmountCents <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	sess.Ledger.Credit(req.AmountCents, "deposit")
	writeJSON(w, s.sessionView(sess))
}

func (s *Server) startRound(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.StartRoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.BetCents <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if err := sess.Controller.StartRound(r.Context(), req.BetCents); err != nil {
		s.writeRoundError(w, err)
		return
	}
	writeJSON(w, s.roundView(sess))
}

func (s *Server) reveal(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.RevealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	var err error
	if req.All {
		err = sess.Controller.ForceReveal()
	} else {
		err = sess.Controller.RevealNext()
	}
	if err != nil {
		s.writeRoundError(w, err)
		return
	}
	writeJSON(w, s.roundView(sess))
}

func (s *Server) resetAck(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := sess.Controller.AcknowledgeReset(); err != nil {
		s.writeRoundError(w, err)
		return
	}
	writeJSON(w, s.sessionView(sess))
}

func (s *Server) autoPlay(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.AutoPlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Enabled && req.Rounds <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := sess.Controller.SetAutoPlay(req.Enabled, req.Rounds); err != nil {
		s.writeRoundError(w, err)
		return
	}
	writeJSON(w, s.sessionView(sess))
}

// writeRoundError mapeia a taxonomia de erros do controller para HTTP
func (s *Server) writeRoundError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, round.ErrInsufficientFunds):
		http.Error(w, "insufficient funds", http.StatusConflict)
	case errors.Is(err, round.ErrProviderUnavailable):
		http.Error(w, "outcome provider unavailable; retry", http.StatusBadGateway)
	case errors.Is(err, round.ErrInvalidTransition):
		http.Error(w, "trigger dropped: wrong phase", http.StatusConflict)
	case errors.Is(err, round.ErrClosed):
		http.Error(w, "session closed", http.StatusGone)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

func (s *Server) sessionView(sess *session.Session) dto.SessionResponse {
	auto := sess.Auto.Snapshot()
	return dto.SessionResponse{
		SessionID:    sess.ID,
		UserID:       sess.UserID,
		Phase:        sess.Controller.Phase().String(),
		BalanceCents: sess.Ledger.Balance(),
		Revealed:     sess.Controller.RevealedValues(),
		AutoPlay: dto.AutoPlayState{
			Enabled:         auto.Enabled,
			RoundsRequested: auto.RoundsRequested,
			RoundsRemaining: auto.RoundsRemaining,
		},
	}
}

func (s *Server) roundView(sess *session.Session) dto.RoundResponse {
	resp := dto.RoundResponse{
		SessionID:    sess.ID,
		Phase:        sess.Controller.Phase().String(),
		BalanceCents: sess.Ledger.Balance(),
		Revealed:     sess.Controller.RevealedValues(),
	}
	if rnd := sess.Controller.CurrentRound(); rnd != nil && sess.Controller.Phase().Resolved() {
		resp.Result = rnd.Result
		resp.PrizeCents = rnd.PrizeCents
	}
	return resp
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
