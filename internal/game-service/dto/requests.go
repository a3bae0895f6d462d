package dto

type CreateSessionRequest struct {
	UserID string `json:"userId"`
}

type DepositRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

type StartRoundRequest struct {
	BetCents int64 `json:"bet_cents"`
}

type RevealRequest struct {
	All bool `json:"all,omitempty"` // true = revela tudo (interrupção manual)
}

type AutoPlayRequest struct {
	Enabled bool `json:"enabled"`
	Rounds  int  `json:"rounds,omitempty"` // requerido quando enabled=true
}
