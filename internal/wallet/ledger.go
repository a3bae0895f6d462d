package wallet

import (
	"errors"
	"sync"
	"time"
)

var ErrInsufficientFunds = errors.New("insufficient funds")

// Tipos de operação registrados no extrato, mesmos rótulos da tabela wallet_ledger
const (
	OpCredit = "CREDIT"
	OpDebit  = "DEBIT"
)

// Entry representa uma linha do extrato da carteira
type Entry struct {
	Operation   string
	AmountCents int64
	Description string
	CreatedAt   time.Time
}

// Ledger mantém o saldo de um jogador em memória.
// Persistência entre sessões está fora de escopo; o ciclo de vida é o da sessão de jogo.
// Escrita única pelo controller da rodada; leituras concorrentes pela camada de apresentação.
type Ledger struct {
	mu           sync.RWMutex
	balanceCents int64
	entries      []Entry
}

// NewLedger cria a carteira com o saldo inicial informado
func NewLedger(initialCents int64) *Ledger {
	l := &Ledger{}
	if initialCents > 0 {
		l.balanceCents = initialCents
		l.entries = append(l.entries, Entry{
			Operation:   OpCredit,
			AmountCents: initialCents,
			Description: "initial-balance",
			CreatedAt:   time.Now(),
		})
	}
	return l
}

// Authorize verifica e debita o valor de forma atômica (sem débito parcial).
// Falha fechado com ErrInsufficientFunds quando o saldo é menor que o valor.
func (l *Ledger) Authorize(amountCents int64, description string) error {
	if amountCents <= 0 {
		return errors.New("amount must be positive")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balanceCents < amountCents {
		return ErrInsufficientFunds
	}

	l.balanceCents -= amountCents
	l.entries = append(l.entries, Entry{
		Operation:   OpDebit,
		AmountCents: amountCents,
		Description: description,
		CreatedAt:   time.Now(),
	})
	return nil
}

// Credit incrementa o saldo; sempre bem-sucedido para valores positivos
func (l *Ledger) Credit(amountCents int64, description string) {
	if amountCents <= 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.balanceCents += amountCents
	l.entries = append(l.entries, Entry{
		Operation:   OpCredit,
		AmountCents: amountCents,
		Description: description,
		CreatedAt:   time.Now(),
	})
}

// Balance retorna um snapshot do saldo atual
func (l *Ledger) Balance() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balanceCents
}

// Entries retorna uma cópia do extrato para exibição
func (l *Ledger) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}
