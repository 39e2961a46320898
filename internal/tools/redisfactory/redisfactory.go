package redisfactory

import (
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type Factory struct {
	sessions *redis.Client
}

// New connects the session store. An empty URI leaves the factory without a client and the
// caller falls back to in-process storage.
func New(sessionsURI string) (*Factory, error) {
	factory := &Factory{}

	if strings.TrimSpace(sessionsURI) == "" {
		return factory, nil
	}

	opt, err := redis.ParseURL(sessionsURI)
	if err != nil {
		return nil, err
	}

	opt.DialTimeout = 4 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	factory.sessions = redis.NewClient(opt)

	return factory, nil
}

// SessionsClient is nil when no session URI was configured.
func (f *Factory) SessionsClient() *redis.Client {
	return f.sessions
}

func (f *Factory) Close() error {
	if f.sessions == nil {
		return nil
	}

	return f.sessions.Close()
}
