package outcome

import (
	"context"
	"errors"
)

// ErrUnavailable indica falha na autoridade de resultados; a rodada pode ser tentada de novo
var ErrUnavailable = errors.New("outcome provider unavailable")

// Resultado de uma rodada
const (
	ResultWin  = "WIN"
	ResultLose = "LOSE"
)

// RoundRequest descreve a compra de uma rodada; consumida imediatamente pela chamada ao provedor
type RoundRequest struct {
	RoundID  string `json:"roundId"`
	UserID   string `json:"userId"`
	BetCents int64  `json:"bet_cents"`
}

// Round é o resultado já resolvido de uma rodada, decidido pela autoridade de resultados.
// RevealValues são os valores de cada campo da raspadinha, na ordem em que serão revelados.
type Round struct {
	RoundID      string  `json:"roundId"`
	Result       string  `json:"result"` // WIN | LOSE
	PrizeCents   int64   `json:"prize_cents"`
	RevealValues []int64 `json:"reveal_values"`
}

// Win indica se a rodada é vencedora
func (r *Round) Win() bool { return r.Result == ResultWin }

// Provider é a autoridade (real ou simulada) que decide o resultado de cada rodada.
// A chamada pode ser lenta e pode falhar; falhas devem ser mapeadas para ErrUnavailable.
type Provider interface {
	RequestRound(ctx context.Context, req RoundRequest) (*Round, error)
}
