package booking_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"bitbucket.org/hovr/booking-site/internal/booking"
	"bitbucket.org/hovr/booking-site/internal/checkout"
	"bitbucket.org/hovr/booking-site/internal/schema"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type checkoutMock struct {
	calls        int
	received     []schema.BookingRequest
	checkoutMock func(ctx context.Context, booking schema.BookingRequest) (string, error)
}

func (m *checkoutMock) Checkout(ctx context.Context, booking schema.BookingRequest, logger *zerolog.Logger) (string, error) {
	m.calls++
	m.received = append(m.received, booking)
	return m.checkoutMock(ctx, booking)
}

type transitions struct {
	states []booking.State
}

func (r *transitions) observe(s booking.State) {
	r.states = append(r.states, s)
}

func (r *transitions) phases() []booking.Phase {
	phases := []booking.Phase{}
	for _, s := range r.states {
		phases = append(phases, s.Phase)
	}
	return phases
}

func snapshotTemplate() booking.FormSnapshot {
	return booking.FormSnapshot{
		FullName:        "Ada Lovelace",
		Email:           "ada@example.com",
		Phone:           "+14075550100",
		PickupLocation:  "Lake Eola Park",
		DropoffLocation: "",
		Date:            "2026-11-02",
		Time:            "09:30",
		DurationHours:   "3",
		Passengers:      "2",
		Package:         "Pro",
		Notes:           "  ",
		PriceTotal:      "582.25",
		PaymentMethod:   "wallet",
	}
}

func TestSubmitConfirmed(t *testing.T) {
	out := &bytes.Buffer{}
	log := zerolog.New(out)

	backend := &checkoutMock{
		checkoutMock: func(ctx context.Context, booking schema.BookingRequest) (string, error) {
			return "HOV-7F3A", nil
		},
	}
	recorder := &transitions{}
	flow := booking.NewFlow(backend, booking.WithObserver(recorder.observe))

	assert.Equal(t, booking.PhaseIdle, flow.State().Phase)

	state, err := flow.Submit(context.Background(), snapshotTemplate(), &log)

	assert.Nil(t, err)
	assert.Equal(t, []booking.Phase{booking.PhasePending, booking.PhaseIdle}, recorder.phases())
	assert.Nil(t, recorder.states[0].Outcome)

	assert.Equal(t, booking.PhaseIdle, state.Phase)
	assert.Equal(t, booking.Confirmed("HOV-7F3A"), state.Outcome)
	assert.Equal(t, booking.FormSnapshot{}, state.Form)
	assert.Equal(t, schema.RoundedFloat(348), state.PriceTotal)
	assert.Equal(t, state, flow.State())

	assert.Equal(t, 1, backend.calls)
	sent := backend.received[0]
	assert.Equal(t, schema.RoundedFloat(582.25), sent.PriceTotal)
	assert.Equal(t, 3, sent.DurationHours)
	assert.Equal(t, 2, sent.Passengers)
	assert.Equal(t, schema.PackagePro, sent.Package)
	assert.Equal(t, schema.PaymentMethodWallet, sent.PaymentMethod)
	assert.Nil(t, sent.DropoffLocation)
	assert.Nil(t, sent.Notes)

	assert.Equal(t, "HOV-7F3A", state.Receipt.ConfirmationCode)
	assert.Equal(t, sent, state.Receipt.Booking)
}

func TestSubmitAgainstBackend(t *testing.T) {
	out := &bytes.Buffer{}
	log := zerolog.New(out)

	t.Run("should fail with the backend detail", func(t *testing.T) {
		var payload map[string]any
		testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &payload)

			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"detail":"Slot unavailable"}`))
		}))
		defer testServer.Close()

		recorder := &transitions{}
		flow := booking.NewFlow(
			checkout.NewClient(checkout.WithBaseURL(testServer.URL)),
			booking.WithObserver(recorder.observe),
		)

		snapshot := snapshotTemplate()
		state, err := flow.Submit(context.Background(), snapshot, &log)

		assert.Nil(t, err)
		assert.Equal(t, []booking.Phase{booking.PhasePending, booking.PhaseIdle}, recorder.phases())
		assert.Equal(t, booking.PhaseIdle, state.Phase)
		assert.Equal(t, booking.Failed("Slot unavailable"), state.Outcome)
		assert.Equal(t, snapshot, state.Form)
		assert.Nil(t, state.Receipt)

		assert.Equal(t, 582.25, payload["price_total"])
		assert.Equal(t, "2026-11-02", payload["date"])
		assert.Equal(t, "09:30", payload["time"])
		assert.Nil(t, payload["dropoff_location"])
	})

	t.Run("should fail with the transport error", func(t *testing.T) {
		testServer := httptest.NewServer(http.NotFoundHandler())
		url := testServer.URL
		testServer.Close()

		client := checkout.NewClient(checkout.WithBaseURL(url))
		_, transportErr := client.Checkout(context.Background(), schema.BookingRequest{}, &log)

		recorder := &transitions{}
		flow := booking.NewFlow(client, booking.WithObserver(recorder.observe))

		state, err := flow.Submit(context.Background(), snapshotTemplate(), &log)

		assert.Nil(t, err)
		assert.Equal(t, booking.PhaseIdle, state.Phase)
		assert.False(t, state.Outcome.Success)
		assert.Equal(t, transportErr.Error(), state.Outcome.Message)

		for _, observed := range recorder.states {
			if observed.Outcome != nil {
				assert.False(t, observed.Outcome.Success)
			}
			assert.Nil(t, observed.Receipt)
		}
	})
}

func TestSubmitWhilePending(t *testing.T) {
	out := &bytes.Buffer{}
	log := zerolog.New(out)

	entered := make(chan struct{})
	release := make(chan struct{})

	backend := &checkoutMock{
		checkoutMock: func(ctx context.Context, booking schema.BookingRequest) (string, error) {
			close(entered)
			<-release
			return "HOV-1", nil
		},
	}
	flow := booking.NewFlow(backend)

	done := make(chan booking.State)
	go func() {
		state, _ := flow.Submit(context.Background(), snapshotTemplate(), &log)
		done <- state
	}()

	<-entered

	pending, err := flow.Submit(context.Background(), snapshotTemplate(), &log)
	assert.ErrorIs(t, err, booking.ErrSubmissionPending)
	assert.Equal(t, booking.PhasePending, pending.Phase)
	assert.Nil(t, pending.Outcome)

	close(release)
	settled := <-done

	assert.Equal(t, booking.Confirmed("HOV-1"), settled.Outcome)
	assert.Equal(t, 1, backend.calls)

	// a new attempt is accepted once settled
	release = make(chan struct{})
	close(release)
	entered = make(chan struct{})
	_, err = flow.Submit(context.Background(), snapshotTemplate(), &log)
	assert.Nil(t, err)
	assert.Equal(t, 2, backend.calls)
}

func TestSubmitFailuresBeforeCheckout(t *testing.T) {
	out := &bytes.Buffer{}
	log := zerolog.New(out)

	backend := &checkoutMock{
		checkoutMock: func(ctx context.Context, booking schema.BookingRequest) (string, error) {
			return "HOV-1", nil
		},
	}

	t.Run("should fail on an unreadable date", func(t *testing.T) {
		flow := booking.NewFlow(backend)

		snapshot := snapshotTemplate()
		snapshot.Date = "next tuesday"

		state, err := flow.Submit(context.Background(), snapshot, &log)

		assert.Nil(t, err)
		assert.Equal(t, booking.PhaseIdle, state.Phase)
		assert.False(t, state.Outcome.Success)
		assert.Contains(t, state.Outcome.Message, `invalid date "next tuesday"`)
		assert.Equal(t, 0, backend.calls)
	})

	t.Run("should settle when the backend call panics", func(t *testing.T) {
		panicking := &checkoutMock{
			checkoutMock: func(ctx context.Context, booking schema.BookingRequest) (string, error) {
				panic("boom")
			},
		}
		flow := booking.NewFlow(panicking)

		assert.Panics(t, func() {
			_, _ = flow.Submit(context.Background(), snapshotTemplate(), &log)
		})

		state := flow.State()
		assert.Equal(t, booking.PhaseIdle, state.Phase)
		assert.Equal(t, booking.Failed(checkout.GenericFailureMessage), state.Outcome)
	})
}

func TestSubmitReplacesStalePriceTotal(t *testing.T) {
	out := &bytes.Buffer{}
	log := zerolog.New(out)

	backend := &checkoutMock{
		checkoutMock: func(ctx context.Context, booking schema.BookingRequest) (string, error) {
			return "HOV-2", nil
		},
	}
	flow := booking.NewFlow(backend)

	snapshot := snapshotTemplate()
	snapshot.Package = "Elite"
	snapshot.PriceTotal = "1.00"

	_, err := flow.Submit(context.Background(), snapshot, &log)

	assert.Nil(t, err)
	assert.Equal(t, schema.RoundedFloat(513.75), backend.received[0].PriceTotal)
	assert.Contains(t, out.String(), "Ignoring stale price total")
}

func TestRecomputeQuote(t *testing.T) {
	backend := &checkoutMock{}

	tests := []struct {
		name     string
		snapshot booking.FormSnapshot
		expected schema.RoundedFloat
	}{
		{"defaults when empty", booking.FormSnapshot{}, 348.00},
		{"defaults when unparsable", booking.FormSnapshot{DurationHours: "abc", Passengers: "many", Package: "Gold"}, 348.00},
		{"pro selection", booking.FormSnapshot{DurationHours: "3", Passengers: "2", Package: "Pro"}, 582.25},
		{"elite selection", booking.FormSnapshot{DurationHours: "12", Passengers: "4", Package: "Elite"}, 1578.00},
		{"decimal input keeps whole part", booking.FormSnapshot{DurationHours: "2.7", Passengers: " 1 "}, 497.00},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			recorder := &transitions{}
			flow := booking.NewFlow(backend, booking.WithObserver(recorder.observe))

			breakdown := flow.RecomputeQuote(test.snapshot)

			assert.Equal(t, test.expected, breakdown.Total)
			assert.Equal(t, test.expected, flow.State().PriceTotal)
			assert.Equal(t, []booking.Phase{booking.PhaseIdle}, recorder.phases())
			assert.Nil(t, flow.State().Outcome)
		})
	}

	assert.Equal(t, 0, backend.calls)
}

func TestWithState(t *testing.T) {
	stored := booking.State{
		Phase:      booking.PhasePending,
		Outcome:    booking.Failed("Slot unavailable"),
		PriceTotal: 582.25,
		Form:       snapshotTemplate(),
	}

	out := &bytes.Buffer{}
	log := zerolog.New(out)

	backend := &checkoutMock{}
	flow := booking.NewFlow(backend, booking.WithState(stored))

	assert.Equal(t, stored, flow.State())

	_, err := flow.Submit(context.Background(), snapshotTemplate(), &log)
	assert.ErrorIs(t, err, booking.ErrSubmissionPending)
	assert.Equal(t, 0, backend.calls)
}

func TestReject(t *testing.T) {
	backend := &checkoutMock{}

	t.Run("should keep the form with a failed outcome", func(t *testing.T) {
		recorder := &transitions{}
		flow := booking.NewFlow(backend, booking.WithObserver(recorder.observe))
		snapshot := snapshotTemplate()
		snapshot.Email = "ada"

		state, err := flow.Reject(snapshot, "Please check your email")

		assert.NoError(t, err)
		assert.Equal(t, booking.Failed("Please check your email"), state.Outcome)
		assert.Equal(t, snapshot, state.Form)
		assert.Equal(t, schema.RoundedFloat(582.25), state.PriceTotal)
		assert.Equal(t, []booking.Phase{booking.PhaseIdle}, recorder.phases())
	})

	t.Run("should leave a pending submission alone", func(t *testing.T) {
		pending := booking.InitialState()
		pending.Phase = booking.PhasePending
		flow := booking.NewFlow(backend, booking.WithState(pending))

		state, err := flow.Reject(snapshotTemplate(), "Please check your email")

		assert.ErrorIs(t, err, booking.ErrSubmissionPending)
		assert.Equal(t, pending, state)
	})

	assert.Equal(t, 0, backend.calls)
}
