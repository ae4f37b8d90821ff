package pkg

import (
	"bufio"
	"context"
	"net"

	"github.com/rs/zerolog"
)

const ConnQueueSize = 10

// Player is one JSON-lines connection bound to its own session.
type Player struct {
	Conn    net.Conn
	Out     chan MessageInterface
	Id      int
	Session *Session
	log     zerolog.Logger
}

func NewPlayer(conn net.Conn, id int, session *Session, log zerolog.Logger) *Player {
	return &Player{
		Conn:    conn,
		Out:     make(chan MessageInterface, ConnQueueSize),
		Id:      id,
		Session: session,
		log:     log.With().Int("player", id).Str("session", session.Name).Logger(),
	}
}

// HandleRead answers every request line until the connection closes, then
// closes Out.
func (p *Player) HandleRead(ctx context.Context) {
	defer close(p.Out)
	scanner := bufio.NewScanner(p.Conn)
	for scanner.Scan() {
		var messageTransport MessageTransport
		if err := Decode(scanner.Bytes(), &messageTransport); err != nil {
			p.Out <- MessageError{Msg: "malformed message: " + err.Error()}
			continue
		}
		p.log.Debug().Stringer("type", messageTransport.MsgType).Msg("received")
		p.Out <- p.Session.Handle(ctx, messageTransport)
	}
	if err := scanner.Err(); err != nil {
		p.log.Debug().Err(err).Msg("read ended")
	}
}

func (p *Player) HandleWrite() {
	for message := range p.Out {
		b := Encode(Wrap(message))
		if b[len(b)-1] != '\n' {
			b = append(b, '\n')
		}
		if _, err := p.Conn.Write(b); err != nil {
			p.log.Warn().Err(err).Stringer("type", message.Type()).Msg("failed to write")
		}
	}
}

func (p *Player) Disconnect() {
	p.Conn.Close()
}
