package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// SessionID: obrigatório para subscribe/unsubscribe
type ClientMsg struct {
	Type      string `json:"type"`      // subscribe | unsubscribe | ping
	SessionID string `json:"sessionId"` // requerido em subscribe/unsubscribe
}

// Update representa uma notificação da rodada enviada para clientes WebSocket
// Kind: phase | balance | autoplay
type Update struct {
	SessionID string      `json:"sessionId"`
	Kind      string      `json:"kind"`
	Payload   interface{} `json:"payload"`
}

// Payloads por tipo de notificação
type PhasePayload struct {
	Phase string `json:"phase"`
}

type BalancePayload struct {
	BalanceCents int64 `json:"balance_cents"`
}

type AutoPlayPayload struct {
	Enabled         bool `json:"enabled"`
	RoundsRemaining int  `json:"rounds_remaining"`
}
