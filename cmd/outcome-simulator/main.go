package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/scratch-card-platform-poc/internal/outcome"
	"github.com/radieske/scratch-card-platform-poc/internal/outcome-simulator/engine"
	"github.com/radieske/scratch-card-platform-poc/internal/shared/config"
	"github.com/radieske/scratch-card-platform-poc/internal/shared/logger"
	"github.com/radieske/scratch-card-platform-poc/internal/shared/metrics"
)

// Métricas Prometheus do simulador
var (
	roundsSold = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outcome_rounds_sold_total",
		Help: "Rodadas resolvidas pelo simulador, por resultado",
	}, []string{"result"})
	failuresInjected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outcome_failures_injected_total",
		Help: "Falhas injetadas de propósito nas compras de rodada",
	})
)

// server estrutura principal do serviço
type server struct {
	log *zap.Logger
	eng *engine.Engine
}

// roundHandler resolve a compra de uma rodada (mock da autoridade de resultados)
func (s *server) roundHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	var req outcome.RoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if req.RoundID == "" || req.BetCents <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	res, err := s.eng.Resolve(req)
	if err != nil {
		failuresInjected.Inc()
		s.log.Warn("round resolution failed", zap.String("round_id", req.RoundID), zap.Error(err))
		http.Error(w, "provider unavailable", http.StatusServiceUnavailable)
		return
	}

	roundsSold.WithLabelValues(res.Result).Inc()
	s.log.Info("round sold",
		zap.String("round_id", res.RoundID),
		zap.String("result", res.Result),
		zap.Int64("prize_cents", res.PrizeCents),
	)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(res)
}

// getFailureRate lê a taxa de falhas injetadas (só faz sentido no simulador)
func getFailureRate() int {
	if v, ok := os.LookupEnv("FAILURE_RATE_PCT"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}

func main() {
	cfg := config.Load()
	log, err := logger.New("outcome-simulator", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	prometheus.MustRegister(roundsSold, failuresInjected)

	s := &server{
		log: log,
		eng: engine.New(engine.Config{
			WinChancePct:   cfg.WinChancePct,
			RevealSlots:    cfg.RevealSlots,
			FailureRatePct: getFailureRate(),
		}),
	}

	// ==== MUX PÚBLICO (HTTP principal): /outcome/round
	appMux := http.NewServeMux()
	appMux.HandleFunc("/outcome/round", s.roundHandler)

	// ==== Métricas e healthcheck (porta separada; simulador não tem deps externas)
	metrics.StartMetricsServer(cfg.MetricsPort, nil)
	log.Info("outcome simulator (metrics) running",
		zap.String("addr", fmt.Sprintf(":%s", cfg.MetricsPort)),
		zap.String("paths", "/healthz,/metrics"),
	)

	// Servidor público
	publicAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	log.Info("outcome simulator (public) running",
		zap.String("addr", publicAddr),
		zap.String("paths", "/outcome/round"),
	)
	if err := http.ListenAndServe(publicAddr, appMux); err != nil {
		log.Fatal("public server error", zap.Error(err))
	}
}
