package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"revenueqa/internal/amqp"
	"revenueqa/internal/log"
	"revenueqa/internal/services"
)

// Asker is the part of services.QueryService the worker needs.
type Asker interface {
	Ask(ctx context.Context, question string) (services.Answer, error)
}

// AnswerWorker turns queued questions into answer messages.
type AnswerWorker struct {
	asker  Asker
	logger *log.Logger
}

func NewAnswerWorker(asker Asker, logger *log.Logger) *AnswerWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &AnswerWorker{
		asker:  asker,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleQuestion implements amqp.Handler. A missing table is returned as an
// error so the delivery is retried once the table has loaded.
func (w *AnswerWorker) HandleQuestion(ctx context.Context, msg *amqp.QuestionMessage) (*amqp.AnswerMessage, error) {
	start := time.Now()

	ans, err := w.asker.Ask(ctx, msg.Question)
	if errors.Is(err, services.ErrNotReady) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("answer question %s: %w", msg.ID, err)
	}

	w.logger.InfoContext(ctx, "Answered queued question",
		"id", msg.ID,
		log.FieldVersion, ans.SnapshotVersion,
		log.FieldCacheHit, ans.CacheHit,
		log.FieldDuration, time.Since(start).Milliseconds())

	return &amqp.AnswerMessage{
		ID:              msg.ID,
		Question:        msg.Question,
		Answer:          ans.Text,
		Clauses:         ans.Clauses,
		SnapshotVersion: ans.SnapshotVersion,
		Timestamp:       time.Now(),
	}, nil
}
