package logger

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// New creates a logger that writes human-readable colored output to the
// given writer. Unknown level strings fall back to info.
func New(out io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	writer := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "15:04:05",
	}

	return zerolog.New(writer).Level(lvl).With().Timestamp().Logger()
}
