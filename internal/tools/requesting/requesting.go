package requesting

import (
	"context"
	"errors"
	"net/http"
	"os"

	"bitbucket.org/hovr/booking-site/internal/schema"
)

func IsValidResponse(code int) bool {
	return code >= 200 && code <= 299
}

// RequestErrors classifies a failed round trip. A response with any status code passes through,
// the caller decides what a non 2xx body means.
func RequestErrors(response *http.Response, err error) (*http.Response, *schema.CheckoutError) {
	if err != nil {
		if os.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
			return nil, schema.NewTimeoutError(err.Error())
		}

		return nil, schema.NewConnectionError(err.Error())
	}

	return response, nil
}
