package dto

import "time"

// RoundResolved espelha o evento publicado pelo game-service no Kafka
type RoundResolved struct {
	RoundID      string    `json:"roundId"`
	SessionID    string    `json:"sessionId"`
	UserID       string    `json:"userId"`
	Result       string    `json:"result"` // WIN | LOSE
	BetCents     int64     `json:"bet_cents"`
	PrizeCents   int64     `json:"prize_cents"`
	BalanceCents int64     `json:"balance_cents"`
	AutoPlay     bool      `json:"auto_play"`
	Ts           time.Time `json:"ts"`
}
