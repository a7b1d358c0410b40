package sessions

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// RunReaper deletes expired sessions every interval until ctx is cancelled.
func RunReaper(ctx context.Context, repo Repo, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			removed, err := repo.DeleteExpired(ctx, now)
			if err != nil {
				log.Err(err).Msg("Failed to delete expired sessions")
				continue
			}
			if removed > 0 {
				log.Info().Int("removed", removed).Msg("Deleted expired sessions")
			}
		}
	}
}
