package worker

// retry.go
// Background goroutine that periodically redrives email jobs from the DLQ
// back onto QueueEmail. Uses the circuit breaker state to avoid hammering a
// downed SMTP relay; entries past MaxEmailAttempts stay parked for manual
// inspection.

import (
	"context"
	"encoding/json"
	"time"

	"stockpos/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	redriveTickInterval = 30 * time.Second
	redriveBatchSize    = 10
)

// StartDLQRedrive launches a background goroutine that ticks every 30s and
// moves retryable email jobs from dlq:jobs:email back to the live queue.
// It respects the context for graceful shutdown.
func StartDLQRedrive(ctx context.Context, rdb *redis.Client, cb *infra.CircuitBreaker, dispatcher *Dispatcher) {
	go func() {
		ticker := time.NewTicker(redriveTickInterval)
		defer ticker.Stop()

		log.Info().Msg("dlq_redrive: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("dlq_redrive: shutting down")
				return
			case <-ticker.C:
				redriveEmails(ctx, rdb, cb, dispatcher)
			}
		}
	}()
}

func redriveEmails(ctx context.Context, rdb *redis.Client, cb *infra.CircuitBreaker, dispatcher *Dispatcher) {
	// If CB is open, skip entirely — the relay is still down
	if cb.State() == infra.CBOpen {
		log.Debug().Msg("dlq_redrive: circuit breaker is open, skipping tick")
		return
	}

	dlqKey := DLQKey(QueueEmail)
	for i := 0; i < redriveBatchSize; i++ {
		raw, err := rdb.RPop(ctx, dlqKey).Result()
		if err == redis.Nil {
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("dlq_redrive: failed to pop DLQ entry")
			return
		}

		var entry DLQEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			log.Error().Err(err).Msg("dlq_redrive: corrupt DLQ entry, dropping")
			continue
		}

		if entry.Attempts >= MaxEmailAttempts {
			// Park it so it stays visible for operators without being
			// re-examined every tick.
			if err := rdb.LPush(ctx, ParkedKey(QueueEmail), raw).Err(); err != nil {
				log.Error().Err(err).Msg("dlq_redrive: failed to park exhausted entry")
			}
			log.Error().
				Str("job_type", entry.JobType).
				Int("attempts", entry.Attempts).
				Msg("dlq_redrive: max attempts exceeded, parked for manual inspection")
			continue
		}

		var payload EmailJobPayload
		if err := json.Unmarshal(entry.Payload, &payload); err != nil {
			log.Error().Err(err).Msg("dlq_redrive: corrupt email payload, dropping")
			continue
		}

		if err := dispatcher.EnqueueEmail(ctx, payload); err != nil {
			log.Error().Err(err).Str("to", payload.ToEmail).Msg("dlq_redrive: failed to re-enqueue email")
			SendToDLQ(ctx, rdb, QueueEmail, entry.JobType, entry.Payload, "redrive enqueue failed: "+err.Error(), entry.Attempts)
			continue
		}

		log.Info().
			Str("to", payload.ToEmail).
			Int("attempts", entry.Attempts).
			Msg("dlq_redrive: email job re-enqueued")
	}
}
