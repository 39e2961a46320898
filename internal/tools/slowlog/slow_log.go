package slowlog

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger measures named breakpoints and writes their duration at debug level.
type Logger interface {
	Start(name string)
	Stop(name string) time.Duration
}

type slowLogger struct {
	log     *zerolog.Logger
	now     func() time.Time
	ongoing map[string]time.Time
	sync.Mutex
}

// Start (re)starts the timer called name.
func (s *slowLogger) Start(name string) {
	s.Lock()
	s.ongoing[name] = s.now()
	s.Unlock()
}

// Stop ends the timer called name. Stopping a timer that was never started reports zero.
func (s *slowLogger) Stop(name string) time.Duration {
	s.Lock()
	start, ok := s.ongoing[name]
	delete(s.ongoing, name)
	s.Unlock()

	if !ok {
		return 0
	}

	duration := s.now().Sub(start)

	s.log.Debug().
		Float64("duration", duration.Seconds()).
		Str("breakpoint_name", name).
		Msg("")

	return duration
}

// Measure times fn under name.
func Measure(l Logger, name string, fn func()) time.Duration {
	l.Start(name)
	fn()
	return l.Stop(name)
}

func CreateLogger(log *zerolog.Logger) *slowLogger {
	logger := log.With().Str("label", "slowlog").Logger()
	return &slowLogger{
		log:     &logger,
		now:     time.Now,
		ongoing: make(map[string]time.Time),
	}
}
