package job

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type MessagePruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// ConversationRetention deletes advisor messages older than the retention
// window on a cron schedule.
type ConversationRetention struct {
	tracer    trace.Tracer
	pruner    MessagePruner
	retention time.Duration
	schedule  string
	now       func() time.Time
	logger    zerolog.Logger
}

func NewConversationRetention(tracer trace.Tracer, pruner MessagePruner, retentionDays int, schedule string) *ConversationRetention {
	return &ConversationRetention{
		tracer:    tracer,
		pruner:    pruner,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		schedule:  schedule,
		now:       time.Now,
		logger:    log.With().Str("component", "conversation-retention").Logger(),
	}
}

// Start prunes once, then on every schedule tick until ctx is done.
func (j *ConversationRetention) Start(ctx context.Context) error {
	if j == nil || j.pruner == nil {
		<-ctx.Done()
		return nil
	}

	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddFunc(j.schedule, func() { j.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("register retention schedule %q: %w", j.schedule, err)
	}

	j.logger.Info().Str("schedule", j.schedule).Dur("retention", j.retention).Msg("conversation retention starting")
	j.RunOnce(ctx)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	j.logger.Info().Msg("conversation retention stopped")
	return nil
}

func (j *ConversationRetention) RunOnce(ctx context.Context) int64 {
	ctx, span := j.tracer.Start(ctx, "conversation-retention.run")
	defer span.End()

	cutoff := j.now().UTC().Add(-j.retention)
	deleted, err := j.pruner.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		j.logger.Error().Err(err).Time("cutoff", cutoff).Msg("conversation retention failed")
		return 0
	}
	span.SetAttributes(attribute.Int64("messages.deleted", deleted))
	if deleted > 0 {
		j.logger.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("pruned old advisor messages")
	}
	return deleted
}
