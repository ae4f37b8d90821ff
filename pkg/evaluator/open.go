package evaluator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Backend kinds accepted by Open.
const (
	KindStream = "stream"
	KindUCI    = "uci"
)

// Open starts the engine binary at path with the named backend and wraps it
// in a Client.
func Open(ctx context.Context, kind, path string, opts UCIOptions, log zerolog.Logger) (*Client, error) {
	var (
		b   Backend
		err error
	)
	switch kind {
	case KindStream, "":
		var p *Process
		p, err = StartProcess(ctx, path)
		if err == nil {
			if err = p.Configure(ctx, opts); err != nil {
				p.Close()
				err = fmt.Errorf("configure engine %s: %w", path, err)
			}
		}
		b = p
	case KindUCI:
		b, err = NewUCI(path, opts)
	default:
		return nil, fmt.Errorf("unknown engine kind %q", kind)
	}
	if err != nil {
		return nil, err
	}
	log.Info().Str("engine", path).Str("kind", kind).Int("threads", opts.Threads).Int("hash_mb", opts.HashMB).Msg("evaluator ready")
	return NewClient(b, log), nil
}
