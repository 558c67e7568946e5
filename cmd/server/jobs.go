// Package main provides the concierge bot server entry point.
package main

import (
	"context"
	"time"

	"github.com/paragraphhotels/messenger-bot-go/internal/logger"
	"github.com/paragraphhotels/messenger-bot-go/internal/messenger"
	"github.com/paragraphhotels/messenger-bot-go/internal/metrics"
	"github.com/paragraphhotels/messenger-bot-go/internal/reply"
	"github.com/paragraphhotels/messenger-bot-go/internal/session"
)

// sessionMetricsInterval controls how often the active session gauge refreshes.
const sessionMetricsInterval = time.Minute

// expiryNotifier is the outbound capability the janitor needs.
type expiryNotifier interface {
	Send(ctx context.Context, recipientID string, in messenger.Instruction) error
}

// expireIdleSessions periodically resets sessions idle longer than ttl and
// notifies the affected users in their chosen language. locks is the same
// keyed mutex the webhook handler serializes senders with, so the sweep
// never interleaves an in-flight read-modify-write.
func expireIdleSessions(ctx context.Context, store session.Store, locks *session.KeyedMutex, notifier expiryNotifier, m *metrics.Metrics, log *logger.Logger, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			performExpirySweep(ctx, store, locks, notifier, m, log, ttl)
		}
	}
}

// performExpirySweep executes one expiry pass. Each candidate from the scan
// is re-checked under its sender lock; a user seen since the scan keeps
// their session and gets no notice.
func performExpirySweep(ctx context.Context, store session.Store, locks *session.KeyedMutex, notifier expiryNotifier, m *metrics.Metrics, log *logger.Logger, ttl time.Duration) {
	candidates, err := store.Idle(ctx, ttl)
	if err != nil {
		log.WithError(err).Error("Failed to scan idle sessions")
		return
	}
	if len(candidates) == 0 {
		return
	}

	expired := 0
	for _, candidate := range candidates {
		locks.Lock(candidate.ID)
		old, ok, err := store.Expire(ctx, candidate.ID, ttl)
		locks.Unlock(candidate.ID)
		if err != nil {
			log.WithError(err).WithField("sender_id", candidate.ID).Error("Failed to expire session")
			continue
		}
		if !ok {
			continue
		}

		expired++
		m.RecordSessionExpired()

		// Notification is best effort; the session is already reset.
		ins := messenger.Instruction{Text: reply.Render(reply.TemplateSessionExpired, old.Language)}
		if err := notifier.Send(ctx, old.ID, ins); err != nil {
			log.WithError(err).WithField("sender_id", old.ID).Debug("Failed to send expiry notice")
		}
	}

	if expired > 0 {
		log.WithField("count", expired).Info("Expired idle sessions")
	}
}

// updateSessionMetrics keeps the active session gauge current
func updateSessionMetrics(ctx context.Context, store session.Store, m *metrics.Metrics, log *logger.Logger) {
	ticker := time.NewTicker(sessionMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := store.Count(ctx)
			if err != nil {
				log.WithError(err).Debug("Failed to count sessions")
				continue
			}
			m.SetActiveSessions(count)
		}
	}
}
