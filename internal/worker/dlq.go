package worker

// dlq.go
// Dead letter queues for jobs that keep failing. One Redis list per source
// queue (dlq:{queue}); exhausted entries move to dlq:{queue}:parked and stay
// there until an operator intervenes.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DLQKey returns the dead letter list for a source queue.
func DLQKey(queue string) string { return "dlq:" + queue }

// ParkedKey returns the list holding entries past their retry budget.
func ParkedKey(queue string) string { return DLQKey(queue) + ":parked" }

// DLQEntry wraps a failed job with enough metadata to diagnose and redrive it.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      time.Time       `json:"failed_at"`
	Attempts      int             `json:"attempts"`
}

// SendToDLQ records a failed job on the dead letter list of its source queue.
// Best effort: a Redis failure here is logged and the job is lost.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue string, jobType string, payload json.RawMessage, reason string, attempts int) {
	entry := DLQEntry{
		OriginalQueue: queue,
		JobType:       jobType,
		Payload:       payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC(),
		Attempts:      attempts,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: marshal entry failed")
		return
	}

	if err := rdb.LPush(ctx, DLQKey(queue), data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", DLQKey(queue)).Msg("dlq: push failed, job dropped")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("job_type", jobType).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("dlq: job moved to dead letter queue")
}

// DLQLength reports the size of a queue's dead letter list.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQKey(queue)).Result()
}
