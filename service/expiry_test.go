package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wagerbot/events"
	"wagerbot/games"
	"wagerbot/models"
)

func TestParseExpiryPolicy(t *testing.T) {
	p, err := ParseExpiryPolicy("stand")
	require.NoError(t, err)
	assert.Equal(t, ExpiryPolicyStand, p)

	_, err = ParseExpiryPolicy("refund")
	assert.Error(t, err)
}

func TestEngine_ExpireIdleCancel(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	engine, _ := newTestEngine(t, WithClock(clock.Now))

	started, err := engine.StartGame(ctx, testUser, models.GameRoulette, 4)
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)
	assert.Zero(t, engine.ExpireIdle(ctx, ExpiryPolicyCancel, 10*time.Minute))

	clock.Advance(6 * time.Minute)
	assert.Equal(t, 1, engine.ExpireIdle(ctx, ExpiryPolicyCancel, 10*time.Minute))

	_, err = engine.SubmitAction(ctx, started.SessionID, testUser, models.ActionRed)
	assert.ErrorIs(t, err, ErrSessionAlreadyResolved)
	assert.Equal(t, int64(10), balanceOf(t, engine, testUser))

	// the user can start a fresh game
	_, err = engine.StartGame(ctx, testUser, models.GameRoulette, 4)
	assert.NoError(t, err)
}

func TestEngine_ExpireIdleStandSettlesBlackjack(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	bus := events.NewBus()
	engine, _ := newTestEngine(t,
		WithClock(clock.Now),
		WithEventBus(bus),
		// player 10+7, dealer 10+8
		WithRoundFactory(stackedBlackjack(games.Ten, games.Ten, games.Seven, games.Eight)),
	)

	expired := make(chan events.SessionExpiredEvent, 1)
	bus.Subscribe(events.EventTypeSessionExpired, func(ctx context.Context, event events.Event) {
		expired <- event.(events.SessionExpiredEvent)
	})

	started, err := engine.StartGame(ctx, testUser, models.GameBlackjack, 3)
	require.NoError(t, err)

	clock.Advance(time.Hour)
	assert.Equal(t, 1, engine.ExpireIdle(ctx, ExpiryPolicyStand, 10*time.Minute))
	assert.Equal(t, int64(7), balanceOf(t, engine, testUser))

	select {
	case ev := <-expired:
		assert.Equal(t, started.SessionID, ev.SessionID)
		assert.True(t, ev.Settled)
		assert.Equal(t, string(ExpiryPolicyStand), ev.Policy)
	case <-time.After(2 * time.Second):
		t.Fatal("session expired event not published")
	}
}

func TestEngine_ExpireIdleStandVoidsRoulette(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	engine, _ := newTestEngine(t, WithClock(clock.Now))

	_, err := engine.StartGame(ctx, testUser, models.GameRoulette, 4)
	require.NoError(t, err)

	clock.Advance(time.Hour)
	assert.Equal(t, 1, engine.ExpireIdle(ctx, ExpiryPolicyStand, 10*time.Minute))
	assert.Equal(t, int64(10), balanceOf(t, engine, testUser))
	assert.Zero(t, engine.Sessions().Count())
}

func TestEngine_ActionsKeepSessionAlive(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	engine, _ := newTestEngine(t,
		WithClock(clock.Now),
		WithRoundFactory(stackedBlackjack(games.Two, games.Ten, games.Three, games.Seven, games.Two)),
	)

	started, err := engine.StartGame(ctx, testUser, models.GameBlackjack, 1)
	require.NoError(t, err)

	clock.Advance(8 * time.Minute)
	_, err = engine.SubmitAction(ctx, started.SessionID, testUser, models.ActionHit)
	require.NoError(t, err)

	clock.Advance(8 * time.Minute)
	assert.Zero(t, engine.ExpireIdle(ctx, ExpiryPolicyCancel, 10*time.Minute))
}

func TestSessionManager_PruneResolved(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	engine, _ := newTestEngine(t, WithClock(clock.Now), WithRand(games.NewSequenceRand(3)))

	started, err := engine.StartGame(ctx, testUser, models.GameRoulette, 1)
	require.NoError(t, err)
	_, err = engine.SubmitAction(ctx, started.SessionID, testUser, models.ActionBlack)
	require.NoError(t, err)

	clock.Advance(30 * time.Minute)
	assert.Zero(t, engine.Sessions().PruneResolved(clock.Now().Add(-time.Hour)))

	clock.Advance(time.Hour)
	assert.Equal(t, 1, engine.Sessions().PruneResolved(clock.Now().Add(-time.Hour)))

	_, err = engine.SubmitAction(ctx, started.SessionID, testUser, models.ActionBlack)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestEngine_StartExpiryWorker(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	engine, _ := newTestEngine(t, WithClock(clock.Now))

	_, err := engine.StartGame(ctx, testUser, models.GameRoulette, 1)
	require.NoError(t, err)
	clock.Advance(time.Hour)

	stop := engine.StartExpiryWorker(ctx, ExpiryWorkerConfig{
		Policy:            ExpiryPolicyCancel,
		IdleTimeout:       time.Minute,
		SweepInterval:     10 * time.Millisecond,
		ResolvedRetention: time.Hour,
	})
	defer stop()

	assert.Eventually(t, func() bool {
		return engine.Sessions().Count() == 0
	}, 2*time.Second, 10*time.Millisecond)
}
