package pkg

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/qnkhuat/garrison/pkg/board"
)

// GameFromFEN loads a position, falling back to the initial position for an
// empty string.
func GameFromFEN(gamefen string) (*board.Game, error) {
	if strings.TrimSpace(gamefen) == "" {
		return board.NewGame(), nil
	}
	return board.FromFEN(gamefen)
}

// InitLog appends structured logs to dest, or writes them to stderr when
// dest is empty or "-". prefix names the process in every line.
func InitLog(dest, prefix string) (zerolog.Logger, io.Closer, error) {
	var (
		w      io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
		closer io.Closer = nopCloser{}
	)
	if dest != "" && dest != "-" {
		f, err := os.OpenFile(dest, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			return zerolog.Nop(), nil, err
		}
		w, closer = f, f
	}
	logger := zerolog.New(w).With().Timestamp().Str("process", strings.TrimSpace(prefix)).Logger()
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
