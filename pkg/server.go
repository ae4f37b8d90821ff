package pkg

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gliderlabs/ssh"
	"github.com/rs/zerolog"

	"github.com/qnkhuat/garrison/pkg/journal"
	"github.com/qnkhuat/garrison/pkg/reinforce"
)

const (
	ServerIdleTimeout = 5 * time.Minute
	SshPort           = ":2222"
	ServerPort        = ":1998"
	HttpPort          = ":8080"
)

type ServerConfig struct {
	TCPAddr     string
	SSHAddr     string
	HTTPAddr    string
	HostKeyFile string
	IdleTimeout time.Duration
}

// Server exposes advisor sessions over JSON-lines TCP, ssh and HTTP. An
// empty address disables that front door.
type Server struct {
	cfg     ServerConfig
	engine  *reinforce.Engine
	journal *journal.Journal
	log     zerolog.Logger

	nextID int64

	mu       sync.Mutex
	listener net.Listener
	ssh      *ssh.Server
	http     *http.Server
}

func NewServer(cfg ServerConfig, engine *reinforce.Engine, j *journal.Journal, log zerolog.Logger) *Server {
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = ServerIdleTimeout
	}
	return &Server{
		cfg:     cfg,
		engine:  engine,
		journal: j,
		log:     log.With().Str("component", "server").Logger(),
	}
}

// NewSession starts a session bound to the server's engine and journal.
func (s *Server) NewSession() *Session {
	return NewSession(s.engine, s.journal, s.log)
}

// ListenAndServe runs every configured front door until ctx is done or one
// of them fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 3)
	var wg sync.WaitGroup
	run := func(fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				errc <- err
				cancel()
			}
		}()
	}
	if s.cfg.TCPAddr != "" {
		run(s.serveTCP)
	}
	if s.cfg.SSHAddr != "" {
		run(s.serveSSH)
	}
	if s.cfg.HTTPAddr != "" {
		run(s.serveHTTP)
	}

	<-ctx.Done()
	s.shutdown()
	wg.Wait()
	close(errc)
	return <-errc
}

// register records a running front door unless shutdown already began.
func (s *Server) register(ctx context.Context, set func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx.Err() != nil {
		return false
	}
	set()
	return true
}

func (s *Server) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		s.listener.Close()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if s.ssh != nil {
		if err := s.ssh.Shutdown(shutdownCtx); err != nil {
			s.log.Warn().Err(err).Msg("ssh shutdown")
		}
	}
	if s.http != nil {
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			s.log.Warn().Err(err).Msg("http shutdown")
		}
	}
}

func (s *Server) serveTCP(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.TCPAddr)
	if err != nil {
		return err
	}
	if !s.register(ctx, func() { s.listener = listener }) {
		listener.Close()
		return nil
	}
	s.log.Info().Str("addr", listener.Addr().String()).Msg("listening for tcp clients")

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Warn().Err(err).Msg("failed to accept")
			continue
		}
		go s.HandleConn(ctx, conn)
	}
}

// HandleConn serves one JSON-lines connection until it closes.
func (s *Server) HandleConn(ctx context.Context, conn net.Conn) {
	id := int(atomic.AddInt64(&s.nextID, 1))
	p := NewPlayer(conn, id, s.NewSession(), s.log)
	p.log.Info().Str("remote", conn.RemoteAddr().String()).Msg("player connected")
	done := make(chan struct{})
	go func() {
		p.HandleWrite()
		close(done)
	}()
	p.HandleRead(ctx)
	<-done
	p.Disconnect()
	p.log.Info().Msg("player disconnected")
}
