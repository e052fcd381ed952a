package cron

import (
	"context"
	"log/slog"
	"time"
)

type tokenPruner interface {
	PruneRevoked(now time.Time) int
}

type AuthJobs struct {
	tokens tokenPruner
}

func NewAuthJobs(tokens tokenPruner) *AuthJobs {
	return &AuthJobs{tokens: tokens}
}

func (j *AuthJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("prune_revoked_tokens", 1*time.Hour, j.PruneRevokedTokens)
}

func (j *AuthJobs) PruneRevokedTokens(ctx context.Context) error {
	if removed := j.tokens.PruneRevoked(time.Now()); removed > 0 {
		slog.Info("Cron: Pruned revoked tokens", "count", removed)
	}
	return nil
}
