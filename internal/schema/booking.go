package schema

import (
	"encoding/json"
	"strings"
	"time"
)

const (
	DateFormat        = "2006-01-02"
	ClockFormat       = "15:04"
	ClockSecondFormat = "15:04:05"
)

// BookingRequest is the reservation payload accepted by the checkout backend.
type BookingRequest struct {
	FullName        string        `json:"full_name"`
	Email           string        `json:"email"`
	Phone           string        `json:"phone"`
	PickupLocation  string        `json:"pickup_location"`
	DropoffLocation *string       `json:"dropoff_location"`
	Date            Date          `json:"date"`
	Time            Clock         `json:"time"`
	DurationHours   int           `json:"duration_hours"`
	Passengers      int           `json:"passengers"`
	Package         Package       `json:"package"`
	Notes           *string       `json:"notes"`
	PriceTotal      RoundedFloat  `json:"price_total"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
}

// Date is a calendar date without time of day.
type Date struct {
	time.Time
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateFormat, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(DateFormat)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}

	*d = parsed
	return nil
}

// Clock is a time of day with minute precision.
type Clock struct {
	time.Time
}

// ParseClock accepts HH:MM and HH:MM:SS, the two shapes a time input submits.
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)

	t, err := time.Parse(ClockFormat, s)
	if err != nil {
		var secondsErr error
		t, secondsErr = time.Parse(ClockSecondFormat, s)
		if secondsErr != nil {
			return Clock{}, err
		}
	}

	return Clock{t}, nil
}

func (c Clock) String() string {
	return c.Format(ClockFormat)
}

func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Clock) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}

	*c = parsed
	return nil
}
