package service

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"wagerbot/events"
	"wagerbot/models"
)

// ExpiryPolicy decides what happens to a session nobody touched for too long
type ExpiryPolicy string

const (
	// ExpiryPolicyCancel voids the session. No funds were taken at start, so nothing is refunded.
	ExpiryPolicyCancel ExpiryPolicy = "cancel"
	// ExpiryPolicyStand forces a blackjack stand and settles it; roulette is voided.
	ExpiryPolicyStand ExpiryPolicy = "stand"
)

// ParseExpiryPolicy validates a configured policy
func ParseExpiryPolicy(s string) (ExpiryPolicy, error) {
	switch ExpiryPolicy(s) {
	case ExpiryPolicyCancel, ExpiryPolicyStand:
		return ExpiryPolicy(s), nil
	default:
		return "", fmt.Errorf("unknown session expiry policy: %q", s)
	}
}

// ExpireIdle reclaims sessions idle for longer than idleTimeout and returns
// how many were closed. Sessions stuck in settlement are retried instead.
func (e *Engine) ExpireIdle(ctx context.Context, policy ExpiryPolicy, idleTimeout time.Duration) int {
	cutoff := e.now().Add(-idleTimeout)
	closed := 0

	for _, s := range e.sessions.Snapshot() {
		if e.expireSession(ctx, s, policy, cutoff) {
			closed++
		}
	}
	return closed
}

func (e *Engine) expireSession(ctx context.Context, s *Session, policy ExpiryPolicy, cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := log.WithFields(log.Fields{
		"session_id": s.ID,
		"user_id":    s.UserID,
		"game":       s.Game,
		"policy":     policy,
	})

	switch s.state {
	case sessionResolved:
		return false
	case sessionSettling:
		if _, err := e.finish(ctx, s); err != nil {
			logger.WithError(err).Warn("Settlement retry failed during expiry sweep")
			return false
		}
		return true
	}

	if !s.lastActive.Before(cutoff) {
		return false
	}

	settled := false
	if policy == ExpiryPolicyStand && s.Game == models.GameBlackjack {
		if err := s.round.Act(models.ActionStand); err != nil {
			logger.WithError(err).Error("Failed to force stand on idle session")
			return false
		}
		s.state = sessionSettling
		if _, err := e.finish(ctx, s); err != nil {
			// stays settling; the next sweep or action retries
			return false
		}
		settled = true
	} else {
		s.state = sessionResolved
		e.sessions.remove(s)
		e.metrics.SessionClosed(ctx, s.Game)
	}

	e.metrics.SessionExpired(ctx, s.Game, policy)
	if e.bus != nil {
		e.bus.Emit(context.WithoutCancel(ctx), events.SessionExpiredEvent{
			SessionID: s.ID,
			UserID:    s.UserID,
			Game:      s.Game,
			Bet:       s.Bet,
			Policy:    string(policy),
			Settled:   settled,
		})
	}
	logger.WithField("settled", settled).Info("Expired idle session")
	return true
}

// ExpiryWorkerConfig controls the idle session sweep
type ExpiryWorkerConfig struct {
	Policy            ExpiryPolicy
	IdleTimeout       time.Duration
	SweepInterval     time.Duration
	ResolvedRetention time.Duration
}

// StartExpiryWorker sweeps idle sessions and old tombstones on every tick.
// Returns a cleanup function to stop the worker.
func (e *Engine) StartExpiryWorker(ctx context.Context, cfg ExpiryWorkerConfig) func() {
	ticker := time.NewTicker(cfg.SweepInterval)
	stopChan := make(chan struct{})

	sweep := func() {
		expired := e.ExpireIdle(ctx, cfg.Policy, cfg.IdleTimeout)
		pruned := e.sessions.PruneResolved(e.now().Add(-cfg.ResolvedRetention))
		if expired > 0 || pruned > 0 {
			log.WithFields(log.Fields{
				"expired": expired,
				"pruned":  pruned,
			}).Debug("Session sweep finished")
		}
	}

	go func() {
		log.Info("Session expiry worker started")
		for {
			select {
			case <-ctx.Done():
				log.Info("Session expiry worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Session expiry worker shutting down (stop requested)...")
				return
			case <-ticker.C:
				sweep()
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(stopChan)
	}
}
