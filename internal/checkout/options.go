package checkout

import (
	"net/http"
	"strings"
	"time"
)

const DefaultBaseURL = "http://localhost:8000"

type OptionFunc func(o *Options)

type Options struct {
	// Name of the caller, sent as User-Agent
	name string

	// BaseURL - full URL of the backend (including protocol), defaults to DefaultBaseURL
	baseURL string

	// Timeout - zero leaves the request bounded only by its context
	timeout time.Duration

	// Transport - defaults to a clone of http.DefaultTransport
	transport http.RoundTripper
}

func WithName(name string) OptionFunc {
	return func(o *Options) {
		o.name = name
	}
}

func WithBaseURL(baseURL string) OptionFunc {
	return func(o *Options) {
		o.baseURL = baseURL
	}
}

func WithTimeout(timeout time.Duration) OptionFunc {
	return func(o *Options) {
		o.timeout = timeout
	}
}

func WithTransport(transport http.RoundTripper) OptionFunc {
	return func(o *Options) {
		o.transport = transport
	}
}

func NewOptions(optionFuncs ...OptionFunc) *Options {
	options := &Options{
		name: "hover-booking",
	}

	for _, optionFunc := range optionFuncs {
		optionFunc(options)
	}

	return options
}

func (o *Options) Name() string {
	return o.name
}

func (o *Options) BaseURL() string {
	baseURL := strings.TrimSpace(o.baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return strings.TrimRight(baseURL, "/")
}

func (o *Options) Timeout() time.Duration {
	return o.timeout
}

func (o *Options) Transport() http.RoundTripper {
	if o.transport != nil {
		return o.transport
	}

	return http.DefaultTransport.(*http.Transport).Clone()
}
