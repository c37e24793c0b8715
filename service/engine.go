package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"wagerbot/events"
	"wagerbot/games"
	"wagerbot/models"
)

// RoundFactory builds an unstarted round
type RoundFactory func(game models.GameType, bet int64, rng games.Rand) (games.Round, error)

// Engine is the facade the messaging layer talks to
type Engine struct {
	ledger   *Ledger
	sessions *SessionManager
	locks    *userLocks
	rng      games.Rand
	newRound RoundFactory
	now      func() time.Time
	metrics  Metrics
	bus      *events.Bus
}

type EngineOption func(*Engine)

// WithRand sets the randomness source for every round
func WithRand(rng games.Rand) EngineOption {
	return func(e *Engine) { e.rng = rng }
}

// WithRoundFactory overrides how rounds are built
func WithRoundFactory(f RoundFactory) EngineOption {
	return func(e *Engine) { e.newRound = f }
}

func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

func WithMetrics(m Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithEventBus publishes game events on bus
func WithEventBus(bus *events.Bus) EngineOption {
	return func(e *Engine) { e.bus = bus }
}

func NewEngine(ledger *Ledger, opts ...EngineOption) *Engine {
	e := &Engine{
		ledger:   ledger,
		locks:    newUserLocks(),
		rng:      games.DefaultRand,
		newRound: games.NewRound,
		now:      time.Now,
		metrics:  NoopMetrics{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.sessions = NewSessionManager(e.now)
	return e
}

// Sessions exposes the session registry
func (e *Engine) Sessions() *SessionManager {
	return e.sessions
}

// GetOrCreateBalance returns the user's balance, creating the account on first use
func (e *Engine) GetOrCreateBalance(ctx context.Context, userID int64) (int64, error) {
	return e.ledger.GetBalance(ctx, userID)
}

// Transfer gifts amount from one user to another and returns the sender's new balance
func (e *Engine) Transfer(ctx context.Context, fromID, toID int64, amount int64) (int64, error) {
	unlock := e.lockPair(fromID, toID)
	defer unlock()

	fromBalance, _, err := e.ledger.Transfer(ctx, fromID, toID, amount)
	return fromBalance, err
}

// lockPair takes both user locks in ascending id order
func (e *Engine) lockPair(a, b int64) func() {
	if a == b {
		return e.locks.Lock(a)
	}
	if b < a {
		a, b = b, a
	}
	unlockA := e.locks.Lock(a)
	unlockB := e.locks.Lock(b)
	return func() {
		unlockB()
		unlockA()
	}
}

// ActiveSession returns the open session for a user and game, if any
func (e *Engine) ActiveSession(userID int64, game models.GameType) (*Session, bool) {
	return e.sessions.Active(userID, game)
}

// StartGame accepts a wager. Dice resolves immediately; roulette and
// blackjack open a session and return its in-progress view.
func (e *Engine) StartGame(ctx context.Context, userID int64, game models.GameType, bet int64) (*models.GameResult, error) {
	if bet <= 0 {
		return nil, ErrInvalidBetAmount
	}
	if _, err := models.ParseGameType(string(game)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAction, err)
	}

	unlock := e.locks.Lock(userID)
	defer unlock()

	balance, err := e.ledger.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if bet > balance {
		return nil, ErrInsufficientFunds
	}
	if _, exists := e.sessions.Active(userID, game); exists {
		return nil, ErrSessionAlreadyActive
	}

	round, err := e.newRound(game, bet, e.rng)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s round: %w", game, err)
	}
	if err := round.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s round: %w", game, err)
	}
	e.metrics.GameStarted(ctx, game)

	logger := log.WithFields(log.Fields{
		"user_id": userID,
		"game":    game,
		"bet":     bet,
	})

	if round.Terminal() {
		delta := round.Delta()
		newBalance, err := e.settle(ctx, userID, balance, delta)
		if err != nil {
			return nil, err
		}
		result := e.result("", userID, bet, round, newBalance)
		e.resolved(ctx, result)
		logger.WithField("outcome", result.Outcome).Info("Game resolved")
		return result, nil
	}

	session, err := e.sessions.Create(userID, game, bet, balance, round)
	if err != nil {
		return nil, err
	}
	e.metrics.SessionOpened(ctx, game)
	logger.WithField("session_id", session.ID).Debug("Session started")

	return e.result(session.ID, userID, bet, round, balance), nil
}

// SubmitAction advances a session. A terminal round is settled exactly once;
// if that settlement fails the session is kept and the next action retries it.
func (e *Engine) SubmitAction(ctx context.Context, sessionID string, actorID int64, action models.Action) (*models.GameResult, error) {
	s, err := e.sessions.Lookup(sessionID, actorID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case sessionResolved:
		return nil, ErrSessionAlreadyResolved
	case sessionSettling:
		return e.finish(ctx, s)
	}

	if err := s.round.Act(action); err != nil {
		switch {
		case errors.Is(err, games.ErrInvalidAction):
			return nil, fmt.Errorf("%w: %s", ErrInvalidAction, action)
		case errors.Is(err, games.ErrRoundOver):
			return nil, ErrSessionAlreadyResolved
		default:
			return nil, fmt.Errorf("failed to apply %s: %w", action, err)
		}
	}
	s.lastActive = e.now()

	if !s.round.Terminal() {
		return e.result(s.ID, s.UserID, s.Bet, s.round, s.balanceAtStart), nil
	}

	s.state = sessionSettling
	return e.finish(ctx, s)
}

// finish applies the settlement of a terminal session. The caller holds s.mu.
func (e *Engine) finish(ctx context.Context, s *Session) (*models.GameResult, error) {
	unlock := e.locks.Lock(s.UserID)
	defer unlock()

	newBalance, err := e.settle(ctx, s.UserID, -1, s.round.Delta())
	if err != nil {
		log.WithFields(log.Fields{
			"session_id": s.ID,
			"user_id":    s.UserID,
			"error":      err,
		}).Error("Failed to settle session, will retry on next action")
		return nil, err
	}

	s.state = sessionResolved
	e.sessions.remove(s)
	e.metrics.SessionClosed(ctx, s.Game)

	result := e.result(s.ID, s.UserID, s.Bet, s.round, newBalance)
	e.resolved(ctx, result)

	log.WithFields(log.Fields{
		"session_id": s.ID,
		"user_id":    s.UserID,
		"game":       s.Game,
		"outcome":    result.Outcome,
		"payout":     result.Payout,
	}).Info("Game resolved")

	return result, nil
}

// settle applies delta to the ledger. A zero delta leaves the ledger
// untouched; known is the already observed balance, or -1 to read it.
func (e *Engine) settle(ctx context.Context, userID int64, known int64, delta int64) (int64, error) {
	switch {
	case delta > 0:
		return e.ledger.Adjust(ctx, userID, delta, models.TransactionTypeBetWin)
	case delta < 0:
		return e.ledger.Adjust(ctx, userID, delta, models.TransactionTypeBetLoss)
	case known >= 0:
		return known, nil
	default:
		return e.ledger.GetBalance(ctx, userID)
	}
}

func (e *Engine) result(sessionID string, userID int64, bet int64, round games.Round, balance int64) *models.GameResult {
	result := &models.GameResult{
		SessionID:  sessionID,
		UserID:     userID,
		Game:       round.Game(),
		Bet:        bet,
		Terminal:   round.Terminal(),
		Outcome:    round.Outcome(),
		NewBalance: balance,
	}
	if result.Terminal {
		result.Payout = round.Delta()
	}
	round.Describe(result)
	return result
}

func (e *Engine) resolved(ctx context.Context, result *models.GameResult) {
	e.metrics.GameResolved(ctx, result.Game, result.Outcome)
	if e.bus == nil {
		return
	}
	e.bus.Emit(context.WithoutCancel(ctx), events.GameResolvedEvent{
		SessionID:  result.SessionID,
		UserID:     result.UserID,
		Game:       result.Game,
		Bet:        result.Bet,
		Outcome:    result.Outcome,
		Payout:     result.Payout,
		NewBalance: result.NewBalance,
	})
}
