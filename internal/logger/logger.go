package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const ServiceName = "hover-booking"

// New builds the root JSON logger writing to stdout. Unknown or empty levels mean info.
func New(level string) *zerolog.Logger {
	return NewWithWriter(os.Stdout, level)
}

func NewWithWriter(w io.Writer, level string) *zerolog.Logger {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}

	log := zerolog.New(w).
		Level(parsed).
		With().
		Timestamp().
		Str("service", ServiceName).
		Logger()

	return &log
}
