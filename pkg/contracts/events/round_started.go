package events

type RoundStarted struct {
	RoundID   string `json:"round_id"`
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	BetCents  int64  `json:"bet_cents"`
	AutoPlay  bool   `json:"auto_play"`
	TsUnixMs  int64  `json:"ts_unix_ms"`
}
