// Package booking turns a filled booking form into a reservation at the checkout backend.
package booking

import (
	"context"
	"errors"
	"sync"

	"bitbucket.org/hovr/booking-site/internal/checkout"
	"bitbucket.org/hovr/booking-site/internal/quote"
	"bitbucket.org/hovr/booking-site/internal/schema"
	"bitbucket.org/hovr/booking-site/internal/tools/slowlog"
	"github.com/rs/zerolog"
)

var ErrSubmissionPending = errors.New("a booking submission is already pending")

type Checkouter interface {
	Checkout(ctx context.Context, booking schema.BookingRequest, logger *zerolog.Logger) (string, error)
}

// Observer receives every state the flow moves to, in order. It runs while the flow is locked and
// must not call back into the flow.
type Observer func(State)

type FlowOption func(f *Flow)

// WithState resumes a flow from a stored state.
func WithState(state State) FlowOption {
	return func(f *Flow) {
		f.state = state
	}
}

func WithObserver(observer Observer) FlowOption {
	return func(f *Flow) {
		f.observers = append(f.observers, observer)
	}
}

// Flow owns the booking form state of one visitor.
type Flow struct {
	mu        sync.Mutex
	state     State
	checkout  Checkouter
	observers []Observer
}

func NewFlow(checkout Checkouter, options ...FlowOption) *Flow {
	f := &Flow{
		state:    InitialState(),
		checkout: checkout,
	}

	for _, option := range options {
		option(f)
	}

	return f
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.state
}

// update is the single point where the state changes.
func (f *Flow) update(mutate func(s *State) error) (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := f.state
	if err := mutate(&next); err != nil {
		return f.state, err
	}

	f.state = next
	for _, observer := range f.observers {
		observer(next)
	}

	return next, nil
}

// RecomputeQuote prices the snapshot's selection and writes it to the display field.
func (f *Flow) RecomputeQuote(snapshot FormSnapshot) quote.Breakdown {
	breakdown := snapshot.Quote()

	_, _ = f.update(func(s *State) error {
		s.PriceTotal = breakdown.Total
		return nil
	})

	return breakdown
}

// Submit sends the snapshot to the checkout backend once. It returns ErrSubmissionPending without
// touching the state while another submission is in flight. Every other failure ends up in the
// outcome; the flow is idle again whichever way Submit returns.
func (f *Flow) Submit(ctx context.Context, snapshot FormSnapshot, logger *zerolog.Logger) (state State, err error) {
	displayed := snapshot.Quote().Total

	_, err = f.update(func(s *State) error {
		if s.Pending() {
			return ErrSubmissionPending
		}

		s.Phase = PhasePending
		s.Outcome = nil
		s.Form = snapshot
		s.PriceTotal = displayed
		return nil
	})
	if err != nil {
		return f.State(), err
	}

	outcome := Failed(checkout.GenericFailureMessage)
	var receipt *Receipt

	defer func() {
		state, _ = f.update(func(s *State) error {
			s.Phase = PhaseIdle
			s.Outcome = outcome

			if receipt != nil {
				s.Receipt = receipt
				s.Form = FormSnapshot{}
				s.PriceTotal = InitialState().PriceTotal
			}
			return nil
		})
	}()

	request, buildErr := snapshot.BookingRequest()
	if buildErr != nil {
		logger.Warn().Err(buildErr).Msg("Unable to build booking request")
		outcome = Failed(buildErr.Error())
		return
	}

	if submitted, ok := snapshot.SubmittedPriceTotal(); ok && submitted != request.PriceTotal {
		logger.Warn().
			Str("submitted", submitted.String()).
			Str("quoted", request.PriceTotal.String()).
			Msg("Ignoring stale price total")
	}

	var code string
	var checkoutErr error
	slowlog.Measure(slowlog.CreateLogger(logger), "booking:checkout", func() {
		code, checkoutErr = f.checkout.Checkout(ctx, request, logger)
	})

	if checkoutErr != nil {
		event := logger.Info().Err(checkoutErr)

		var typed *schema.CheckoutError
		if errors.As(checkoutErr, &typed) {
			event = event.Str("code", string(typed.Code)).Int("status", typed.StatusCode)
		}
		event.Msg("Booking not confirmed")

		outcome = Failed(checkoutErr.Error())
		return
	}

	logger.Info().Str("confirmationCode", code).Msg("Booking confirmed")

	outcome = Confirmed(code)
	receipt = &Receipt{ConfirmationCode: code, Booking: request}

	return
}

// Reject records a form that never reached the backend as a failed attempt, keeping the values
// for the visitor to correct.
func (f *Flow) Reject(snapshot FormSnapshot, message string) (State, error) {
	displayed := snapshot.Quote().Total

	return f.update(func(s *State) error {
		if s.Pending() {
			return ErrSubmissionPending
		}

		s.Outcome = Failed(message)
		s.Form = snapshot
		s.PriceTotal = displayed
		return nil
	})
}
