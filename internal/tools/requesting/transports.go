package requesting

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type TransportMiddleware func(http.RoundTripper) http.RoundTripper

// InterceptorTransport wraps Transport with Middlewares, the last one being the outermost.
type InterceptorTransport struct {
	Transport   http.RoundTripper
	Middlewares []TransportMiddleware
}

func (t *InterceptorTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	transport := t.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	for _, middleware := range t.Middlewares {
		transport = middleware(transport)
	}

	return transport.RoundTrip(req)
}

type LoggingTransportMiddleware struct {
	Transport   http.RoundTripper
	destination string
	log         *zerolog.Logger
}

func NewLoggingTransportMiddleware(log *zerolog.Logger, destination string) TransportMiddleware {
	return func(rt http.RoundTripper) http.RoundTripper {
		return &LoggingTransportMiddleware{
			Transport:   rt,
			destination: destination,
			log:         log,
		}
	}
}

func (t *LoggingTransportMiddleware) RoundTrip(req *http.Request) (*http.Response, error) {
	startTime := time.Now()

	message := t.log.Info().
		Str("label", "outgoing-request").
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Str("destination", t.destination)

	defer func() {
		message.
			Float64("duration", time.Since(startTime).Seconds()).
			Msg("")
	}()

	resp, err := t.Transport.RoundTrip(req)
	if err != nil {
		message.Str("error", err.Error()).Int("code", 0)
		return nil, err
	}

	message.Int("code", resp.StatusCode)

	return resp, nil
}

type HeaderTransportMiddleware struct {
	Transport http.RoundTripper
	headers   http.Header
}

// NewHeaderTransportMiddleware sets headers on every outgoing request that does not carry them yet.
func NewHeaderTransportMiddleware(headers http.Header) TransportMiddleware {
	return func(rt http.RoundTripper) http.RoundTripper {
		return &HeaderTransportMiddleware{
			Transport: rt,
			headers:   headers,
		}
	}
}

func (t *HeaderTransportMiddleware) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request
	req = req.Clone(req.Context())

	for key, values := range t.headers {
		if req.Header.Get(key) != "" {
			continue
		}
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	return t.Transport.RoundTrip(req)
}
