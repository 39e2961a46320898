// Package session keeps one booking flow per visitor across requests.
package session

import (
	"context"
	"time"

	"bitbucket.org/hovr/booking-site/internal/booking"
	"bitbucket.org/hovr/booking-site/internal/quote"
	"github.com/rs/zerolog"
)

const (
	lockPrefix  = "lock:"
	statePrefix = "state:"
)

// Manager restores a visitor's flow from storage, runs one operation on it and stores every
// state the flow moves to. Operations of one session are serialized by a storage lock.
type Manager struct {
	storage  Storage
	checkout booking.Checkouter
	ttl      time.Duration
}

func NewManager(storage Storage, checkout booking.Checkouter, ttl time.Duration) *Manager {
	return &Manager{
		storage:  storage,
		checkout: checkout,
		ttl:      ttl,
	}
}

// State is the stored state of a session, or the initial state if there is none.
func (m *Manager) State(ctx context.Context, id string, logger *zerolog.Logger) booking.State {
	stored, err := m.storage.FetchState(ctx, statePrefix+id)
	if err != nil {
		logger.Err(err).Msg("Unable to fetch session state")
	}

	if stored == nil {
		return booking.InitialState()
	}

	return *stored
}

// Submit runs one booking submission for the session. While another submission holds the
// session it returns the stored state and booking.ErrSubmissionPending. A failing lock store
// does not block the visitor. Once started the submission runs to its outcome even when the
// visitor goes away.
func (m *Manager) Submit(
	ctx context.Context,
	id string,
	snapshot booking.FormSnapshot,
	logger *zerolog.Logger,
) (booking.State, error) {
	ctx = context.WithoutCancel(ctx)

	release, err := m.hold(ctx, id, logger)
	if err != nil {
		logger.Info().Msg("Submission already pending")
		return m.State(ctx, id, logger), err
	}
	defer release()

	return m.flow(ctx, id, m.idleState(ctx, id, logger), logger).Submit(ctx, snapshot, logger)
}

// Reject stores a form that could not be submitted as a failed attempt.
func (m *Manager) Reject(
	ctx context.Context,
	id string,
	snapshot booking.FormSnapshot,
	message string,
	logger *zerolog.Logger,
) (booking.State, error) {
	release, err := m.hold(ctx, id, logger)
	if err != nil {
		return m.State(ctx, id, logger), err
	}
	defer release()

	return m.flow(ctx, id, m.idleState(ctx, id, logger), logger).Reject(snapshot, message)
}

// RecomputeQuote prices the snapshot. The display value is stored only when no submission holds
// the session.
func (m *Manager) RecomputeQuote(
	ctx context.Context,
	id string,
	snapshot booking.FormSnapshot,
	logger *zerolog.Logger,
) quote.Breakdown {
	lockKey := lockPrefix + id

	owner, acquired, err := m.storage.AcquireLock(ctx, lockKey)
	if err != nil {
		logger.Err(err).Msg("Unable to acquire session lock")
	}

	if !acquired {
		return snapshot.Quote()
	}
	defer m.storage.ReleaseLock(ctx, lockKey, owner)

	return m.flow(ctx, id, m.State(ctx, id, logger), logger).RecomputeQuote(snapshot)
}

// hold takes the session lock, or returns booking.ErrSubmissionPending while a submission has it.
// A failing lock store is logged and the session is used unlocked.
func (m *Manager) hold(ctx context.Context, id string, logger *zerolog.Logger) (release func(), err error) {
	lockKey := lockPrefix + id

	owner, acquired, err := m.storage.AcquireLock(ctx, lockKey)
	if err != nil {
		logger.Err(err).Msg("Unable to acquire session lock, continuing unlocked")
		return func() {}, nil
	}

	if !acquired {
		return nil, booking.ErrSubmissionPending
	}

	return func() { m.storage.ReleaseLock(ctx, lockKey, owner) }, nil
}

// idleState is the stored state for a caller holding the lock. Nothing else holds the session, so
// a stored pending phase was left by a crashed submission.
func (m *Manager) idleState(ctx context.Context, id string, logger *zerolog.Logger) booking.State {
	state := m.State(ctx, id, logger)
	state.Phase = booking.PhaseIdle
	return state
}

func (m *Manager) flow(ctx context.Context, id string, state booking.State, logger *zerolog.Logger) *booking.Flow {
	return booking.NewFlow(
		m.checkout,
		booking.WithState(state),
		booking.WithObserver(m.persist(ctx, id, logger)),
	)
}

func (m *Manager) persist(ctx context.Context, id string, logger *zerolog.Logger) booking.Observer {
	// the state is written even when the visitor has gone away
	ctx = context.WithoutCancel(ctx)

	return func(state booking.State) {
		ttl := m.ttl
		if state.Pending() {
			ttl = LockTTL
		}

		if err := m.storage.StoreState(ctx, statePrefix+id, state, ttl); err != nil {
			logger.Err(err).Str("phase", string(state.Phase)).Msg("Unable to store session state")
			return
		}

		logger.Debug().Str("phase", string(state.Phase)).Msg("Session state stored")
	}
}
