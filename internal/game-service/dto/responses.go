package dto

type AutoPlayState struct {
	Enabled         bool `json:"enabled"`
	RoundsRequested int  `json:"rounds_requested"`
	RoundsRemaining int  `json:"rounds_remaining"`
}

type SessionResponse struct {
	SessionID    string        `json:"sessionId"`
	UserID       string        `json:"userId"`
	Phase        string        `json:"phase"`
	BalanceCents int64         `json:"balance_cents"`
	Revealed     []int64       `json:"revealed,omitempty"`
	AutoPlay     AutoPlayState `json:"auto_play"`
}

type RoundResponse struct {
	SessionID    string  `json:"sessionId"`
	Phase        string  `json:"phase"`
	BalanceCents int64   `json:"balance_cents"`
	Revealed     []int64 `json:"revealed,omitempty"`
	PrizeCents   int64   `json:"prize_cents,omitempty"`
	Result       string  `json:"result,omitempty"` // presente quando resolvida
}
