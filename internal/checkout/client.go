// Package checkout talks to the backend checkout service.
package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"bitbucket.org/hovr/booking-site/internal/schema"
	"bitbucket.org/hovr/booking-site/internal/tools/requesting"
	"github.com/rs/zerolog"
)

const (
	Path = "/checkout"

	// GenericFailureMessage is shown when the backend rejects a booking without a detail.
	GenericFailureMessage = "Checkout failed"
)

type Client struct {
	options   *Options
	transport http.RoundTripper
}

func NewClient(optionFuncs ...OptionFunc) *Client {
	options := NewOptions(optionFuncs...)

	return &Client{
		options:   options,
		transport: options.Transport(),
	}
}

func (c *Client) URL() string {
	return c.options.BaseURL() + Path
}

// Checkout posts the reservation and returns the backend's confirmation code.
// Every failure is a *schema.CheckoutError.
func (c *Client) Checkout(ctx context.Context, booking schema.BookingRequest, logger *zerolog.Logger) (string, error) {
	body, err := json.Marshal(booking)
	if err != nil {
		return "", schema.NewMalformedResponseError(0, "encoding booking: "+err.Error())
	}

	client := &http.Client{
		Timeout: c.options.Timeout(),
		Transport: &requesting.InterceptorTransport{
			Transport: c.transport,
			Middlewares: []requesting.TransportMiddleware{
				requesting.NewLoggingTransportMiddleware(logger, "checkout"),
				requesting.NewHeaderTransportMiddleware(http.Header{
					"User-Agent": {c.options.Name()},
				}),
			},
		},
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(), bytes.NewReader(body))
	if err != nil {
		return "", schema.NewConnectionError(err.Error())
	}
	httpRequest.Header.Set("Content-Type", "application/json")

	rs, checkoutErr := requesting.RequestErrors(client.Do(httpRequest))
	if checkoutErr != nil {
		return "", checkoutErr
	}
	defer rs.Body.Close()

	bodyBytes, err := io.ReadAll(rs.Body)
	if err != nil {
		return "", schema.NewConnectionError(err.Error())
	}

	var response checkoutResponse
	decodeErr := json.Unmarshal(bodyBytes, &response)

	if !requesting.IsValidResponse(rs.StatusCode) {
		message := GenericFailureMessage
		if decodeErr == nil {
			if detail := response.detailMessage(); detail != "" {
				message = detail
			}
		}

		return "", schema.NewBackendError(rs.StatusCode, message)
	}

	if decodeErr != nil {
		return "", schema.NewMalformedResponseError(rs.StatusCode, decodeErr.Error())
	}

	if response.ConfirmationCode == "" {
		return "", schema.NewMalformedResponseError(rs.StatusCode, "checkout response is missing confirmation_code")
	}

	return response.ConfirmationCode, nil
}

type checkoutResponse struct {
	ConfirmationCode string          `json:"confirmation_code"`
	Detail           json.RawMessage `json:"detail"`
}

type validationIssue struct {
	Msg string `json:"msg"`
}

// detailMessage reads detail either as a plain string or as a list of validation issues.
func (r *checkoutResponse) detailMessage() string {
	if len(r.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(r.Detail, &text); err == nil {
		return strings.TrimSpace(text)
	}

	var issues []validationIssue
	if err := json.Unmarshal(r.Detail, &issues); err != nil {
		return ""
	}

	messages := make([]string, 0, len(issues))
	for _, issue := range issues {
		if issue.Msg != "" {
			messages = append(messages, issue.Msg)
		}
	}

	return strings.Join(messages, "; ")
}
