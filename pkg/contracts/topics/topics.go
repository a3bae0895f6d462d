package topics

const (
	// Rounds
	RoundStarted  = "round_started"
	RoundResolved = "round_resolved"

	// DLQs
	RoundResolvedDLQ = "round_resolved_dlq"
)
