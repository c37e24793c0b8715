package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"wagerbot/events"
	"wagerbot/games"
	"wagerbot/models"
	"wagerbot/repository/memory"
)

const testUser int64 = 42

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestEngine(t *testing.T, opts ...EngineOption) (*Engine, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	ledger := NewLedger(store, DefaultStartingBalance, nil, nil)
	return NewEngine(ledger, opts...), store
}

// stackedBlackjack deals blackjack rounds from a fixed card order
func stackedBlackjack(ranks ...games.Rank) RoundFactory {
	return func(game models.GameType, bet int64, rng games.Rand) (games.Round, error) {
		if game != models.GameBlackjack {
			return games.NewRound(game, bet, rng)
		}
		cards := make([]games.Card, len(ranks))
		for i, r := range ranks {
			cards[i] = games.Card{Rank: r, Suit: games.Spades}
		}
		return games.NewBlackjack(bet, games.NewStackedShoe(cards...)), nil
	}
}

func balanceOf(t *testing.T, e *Engine, userID int64) int64 {
	t.Helper()
	balance, err := e.GetOrCreateBalance(context.Background(), userID)
	require.NoError(t, err)
	return balance
}

func TestEngine_GetOrCreateBalance_DefaultsToTen(t *testing.T) {
	engine, _ := newTestEngine(t)
	assert.Equal(t, int64(10), balanceOf(t, engine, testUser))
}

func TestEngine_DiceWin(t *testing.T) {
	// house rolls 3, player rolls 6
	engine, _ := newTestEngine(t, WithRand(games.NewSequenceRand(2, 5)))

	result, err := engine.StartGame(context.Background(), testUser, models.GameDice, 5)
	require.NoError(t, err)

	assert.True(t, result.Terminal)
	assert.Empty(t, result.SessionID)
	assert.Equal(t, models.OutcomeWin, result.Outcome)
	assert.Equal(t, int64(5), result.Payout)
	assert.Equal(t, int64(15), result.NewBalance)
	assert.Equal(t, 6, result.Dice.PlayerRoll)
	assert.Equal(t, 3, result.Dice.HouseRoll)
	assert.Equal(t, 0, engine.Sessions().Count())
}

func TestEngine_DicePushLeavesBalance(t *testing.T) {
	engine, _ := newTestEngine(t, WithRand(games.NewSequenceRand(4, 4)))

	result, err := engine.StartGame(context.Background(), testUser, models.GameDice, 10)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomePush, result.Outcome)
	assert.Zero(t, result.Payout)
	assert.Equal(t, int64(10), result.NewBalance)
}

func TestEngine_StartGameValidation(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	_, err := engine.StartGame(ctx, testUser, models.GameDice, 0)
	assert.ErrorIs(t, err, ErrInvalidBetAmount)

	_, err = engine.StartGame(ctx, testUser, models.GameDice, -3)
	assert.ErrorIs(t, err, ErrInvalidBetAmount)

	_, err = engine.StartGame(ctx, testUser, models.GameDice, 11)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	_, err = engine.StartGame(ctx, testUser, "slots", 1)
	assert.ErrorIs(t, err, ErrInvalidAction)

	_, err = engine.StartGame(ctx, testUser, models.GameRoulette, 2)
	require.NoError(t, err)
	_, err = engine.StartGame(ctx, testUser, models.GameRoulette, 2)
	assert.ErrorIs(t, err, ErrSessionAlreadyActive)
	assert.False(t, IsRetryable(err))

	// a different game for the same user is independent
	_, err = engine.StartGame(ctx, testUser, models.GameBlackjack, 2)
	assert.NoError(t, err)
}

func TestEngine_InsufficientFundsCheckedBeforeActiveSession(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	_, err := engine.StartGame(ctx, testUser, models.GameRoulette, 2)
	require.NoError(t, err)

	_, err = engine.StartGame(ctx, testUser, models.GameRoulette, 50)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestEngine_BlackjackPushOnStand(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine(t, WithRoundFactory(stackedBlackjack(games.Ten, games.Ten, games.Nine, games.Nine)))
	_, _, err := store.Increment(ctx, testUser, 10, DefaultStartingBalance)
	require.NoError(t, err)

	started, err := engine.StartGame(ctx, testUser, models.GameBlackjack, 10)
	require.NoError(t, err)
	require.NotEmpty(t, started.SessionID)
	assert.False(t, started.Terminal)
	assert.Equal(t, models.OutcomeInProgress, started.Outcome)
	assert.Equal(t, 19, started.Player.Total)
	assert.True(t, started.Dealer.Masked)
	assert.Equal(t, []string{"10♠", "#"}, started.Dealer.Cards)

	result, err := engine.SubmitAction(ctx, started.SessionID, testUser, models.ActionStand)
	require.NoError(t, err)
	assert.True(t, result.Terminal)
	assert.Equal(t, models.OutcomePush, result.Outcome)
	assert.Equal(t, int64(20), result.NewBalance)
	assert.False(t, result.Dealer.Masked)
	assert.Equal(t, 19, result.Dealer.Total)
}

func TestEngine_StandTwiceResolvesOnce(t *testing.T) {
	ctx := context.Background()
	// player 10+8, dealer 10+7
	engine, _ := newTestEngine(t, WithRoundFactory(stackedBlackjack(games.Ten, games.Ten, games.Eight, games.Seven)))

	started, err := engine.StartGame(ctx, testUser, models.GameBlackjack, 4)
	require.NoError(t, err)

	result, err := engine.SubmitAction(ctx, started.SessionID, testUser, models.ActionStand)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeWin, result.Outcome)
	assert.Equal(t, int64(14), result.NewBalance)

	_, err = engine.SubmitAction(ctx, started.SessionID, testUser, models.ActionStand)
	assert.ErrorIs(t, err, ErrSessionAlreadyResolved)
	assert.Equal(t, int64(14), balanceOf(t, engine, testUser))

	_, ok := engine.ActiveSession(testUser, models.GameBlackjack)
	assert.False(t, ok)
}

func TestEngine_ConcurrentDuplicateActionsPayOnce(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t, WithRoundFactory(stackedBlackjack(games.Ten, games.Ten, games.Eight, games.Seven)))

	started, err := engine.StartGame(ctx, testUser, models.GameBlackjack, 4)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.SubmitAction(ctx, started.SessionID, testUser, models.ActionStand)
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, ErrSessionAlreadyResolved)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, int64(14), balanceOf(t, engine, testUser))
}

func TestEngine_SubmitActionErrors(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	_, err := engine.SubmitAction(ctx, "missing", testUser, models.ActionStand)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	started, err := engine.StartGame(ctx, testUser, models.GameRoulette, 3)
	require.NoError(t, err)

	_, err = engine.SubmitAction(ctx, started.SessionID, testUser+1, models.ActionRed)
	assert.ErrorIs(t, err, ErrUnauthorizedActor)

	_, err = engine.SubmitAction(ctx, started.SessionID, testUser, models.ActionHit)
	assert.ErrorIs(t, err, ErrInvalidAction)

	// the session survives rejected actions
	_, ok := engine.ActiveSession(testUser, models.GameRoulette)
	assert.True(t, ok)
}

func TestEngine_RouletteGreenPaysSeventeenTimes(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t, WithRand(games.NewSequenceRand(0)))

	started, err := engine.StartGame(ctx, testUser, models.GameRoulette, 2)
	require.NoError(t, err)
	assert.Equal(t, -1, started.Roulette.Spin)

	result, err := engine.SubmitAction(ctx, started.SessionID, testUser, models.ActionGreen)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeWin, result.Outcome)
	assert.Equal(t, int64(34), result.Payout)
	assert.Equal(t, int64(44), result.NewBalance)
	assert.Equal(t, "green", result.Roulette.Slot)

	_, err = engine.SubmitAction(ctx, started.SessionID, testUser, models.ActionGreen)
	assert.ErrorIs(t, err, ErrSessionAlreadyResolved)

	// tombstones keep ownership
	_, err = engine.SubmitAction(ctx, started.SessionID, testUser+1, models.ActionGreen)
	assert.ErrorIs(t, err, ErrUnauthorizedActor)
}

func TestEngine_BlackjackLossMayGoNegative(t *testing.T) {
	ctx := context.Background()
	// player 10+6 hits K and busts
	engine, _ := newTestEngine(t, WithRoundFactory(stackedBlackjack(games.Ten, games.Ten, games.Six, games.Eight, games.King)))

	started, err := engine.StartGame(ctx, testUser, models.GameBlackjack, 10)
	require.NoError(t, err)

	// spend the balance elsewhere while the hand is open
	_, err = engine.Transfer(ctx, testUser, testUser+1, 10)
	require.NoError(t, err)

	result, err := engine.SubmitAction(ctx, started.SessionID, testUser, models.ActionHit)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeLoss, result.Outcome)
	assert.Equal(t, int64(-10), result.Payout)
	assert.Equal(t, int64(-10), result.NewBalance)
}

func TestEngine_SettlementRetryAfterStorageFailure(t *testing.T) {
	ctx := context.Background()
	store := new(MockAccountStore)
	ledger := NewLedger(store, DefaultStartingBalance, nil, nil)
	engine := NewEngine(ledger, WithRoundFactory(stackedBlackjack(games.Ten, games.Ten, games.Six, games.Eight, games.King)))

	store.On("Get", mock.Anything, testUser).Return(&models.Account{UserID: testUser, Balance: 10}, nil)
	store.On("Increment", mock.Anything, testUser, int64(-5), DefaultStartingBalance).
		Return(int64(0), false, errors.New("connection reset")).Once()
	store.On("Increment", mock.Anything, testUser, int64(-5), DefaultStartingBalance).
		Return(int64(5), false, nil).Once()

	started, err := engine.StartGame(ctx, testUser, models.GameBlackjack, 5)
	require.NoError(t, err)

	_, err = engine.SubmitAction(ctx, started.SessionID, testUser, models.ActionHit)
	require.ErrorIs(t, err, ErrStorageFailure)
	assert.True(t, IsRetryable(err))

	// still registered while the settlement is pending
	_, err = engine.StartGame(ctx, testUser, models.GameBlackjack, 5)
	assert.ErrorIs(t, err, ErrSessionAlreadyActive)

	// any action retries only the settlement, so no extra card is drawn
	result, err := engine.SubmitAction(ctx, started.SessionID, testUser, models.ActionHit)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeLoss, result.Outcome)
	assert.Equal(t, int64(5), result.NewBalance)
	assert.Len(t, result.Player.Cards, 3)

	_, err = engine.SubmitAction(ctx, started.SessionID, testUser, models.ActionStand)
	assert.ErrorIs(t, err, ErrSessionAlreadyResolved)

	store.AssertNumberOfCalls(t, "Increment", 2)
	store.AssertExpectations(t)
}

func TestEngine_StorageFailureOnStart(t *testing.T) {
	store := new(MockAccountStore)
	engine := NewEngine(NewLedger(store, DefaultStartingBalance, nil, nil))

	store.On("Get", mock.Anything, testUser).Return(nil, errors.New("database is down"))

	_, err := engine.StartGame(context.Background(), testUser, models.GameDice, 1)
	assert.ErrorIs(t, err, ErrStorageFailure)
	assert.True(t, IsRetryable(err))
}

func TestEngine_ConcurrentDiceNeverOverdraws(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.StartGame(ctx, testUser, models.GameDice, 10)
			if err != nil {
				assert.ErrorIs(t, err, ErrInsufficientFunds)
			}
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, balanceOf(t, engine, testUser), int64(0))
}

func TestEngine_MetricsAndEvents(t *testing.T) {
	ctx := context.Background()
	bus := events.NewBus()
	metrics := new(MockMetrics)
	metrics.On("BalanceTransaction", mock.Anything, mock.Anything).Return()
	metrics.On("GameStarted", mock.Anything, models.GameDice).Return()
	metrics.On("GameResolved", mock.Anything, models.GameDice, models.OutcomeLoss).Return()

	store := memory.NewStore()
	engine := NewEngine(
		NewLedger(store, DefaultStartingBalance, bus, metrics),
		WithRand(games.NewSequenceRand(5, 0)),
		WithMetrics(metrics),
		WithEventBus(bus),
	)

	resolved := make(chan events.GameResolvedEvent, 1)
	bus.Subscribe(events.EventTypeGameResolved, func(ctx context.Context, event events.Event) {
		resolved <- event.(events.GameResolvedEvent)
	})

	result, err := engine.StartGame(ctx, testUser, models.GameDice, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.NewBalance)

	select {
	case ev := <-resolved:
		assert.Equal(t, testUser, ev.UserID)
		assert.Equal(t, models.OutcomeLoss, ev.Outcome)
		assert.Equal(t, int64(-3), ev.Payout)
	case <-time.After(2 * time.Second):
		t.Fatal("game resolved event not published")
	}

	metrics.AssertCalled(t, "BalanceTransaction", mock.Anything, models.TransactionTypeInitial)
	metrics.AssertCalled(t, "BalanceTransaction", mock.Anything, models.TransactionTypeBetLoss)
	metrics.AssertExpectations(t)
}
