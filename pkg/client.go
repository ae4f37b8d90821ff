package pkg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
)

var ErrUnexpectedReply = errors.New("unexpected reply")

// Client talks to a Server's TCP front door. Requests are answered in order,
// so the client keeps one request in flight.
type Client struct {
	Conn    net.Conn
	scanner *bufio.Scanner
	mu      sync.Mutex
}

func Dial(ctx context.Context, addr string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}
	return NewClient(conn), nil
}

func NewClient(conn net.Conn) *Client {
	return &Client{Conn: conn, scanner: bufio.NewScanner(conn)}
}

// Request sends m and waits for the reply. A MessageError reply is returned
// as an error.
func (cl *Client) Request(ctx context.Context, m MessageInterface) (MessageTransport, error) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		cl.Conn.SetDeadline(deadline)
		defer cl.Conn.SetDeadline(time.Time{})
	}
	b := Encode(Wrap(m))
	b = append(b, '\n')
	if _, err := cl.Conn.Write(b); err != nil {
		return MessageTransport{}, err
	}
	if !cl.scanner.Scan() {
		if err := cl.scanner.Err(); err != nil {
			return MessageTransport{}, err
		}
		return MessageTransport{}, net.ErrClosed
	}
	var reply MessageTransport
	if err := Decode(cl.scanner.Bytes(), &reply); err != nil {
		return MessageTransport{}, err
	}
	if reply.MsgType == TypeMessageError {
		var e MessageError
		Decode(reply.Data, &e)
		return reply, errors.New(e.Msg)
	}
	return reply, nil
}

func (cl *Client) Load(ctx context.Context, fen string) (MessageState, error) {
	return requestAs[MessageState](ctx, cl, MessageLoad{Fen: fen}, TypeMessageState)
}

func (cl *Client) Move(ctx context.Context, move string) (MessageState, error) {
	return requestAs[MessageState](ctx, cl, MessageMove{Move: move}, TypeMessageState)
}

func (cl *Client) Grant(ctx context.Context, side, piece string) (MessageState, error) {
	return requestAs[MessageState](ctx, cl, MessageGrant{Side: side, Piece: piece}, TypeMessageState)
}

func (cl *Client) Advise(ctx context.Context) (MessageAdvice, error) {
	return requestAs[MessageAdvice](ctx, cl, MessageAdvise{}, TypeMessageAdvice)
}

func (cl *Client) Place(ctx context.Context, square string) (MessageState, error) {
	return requestAs[MessageState](ctx, cl, MessagePlace{Square: square}, TypeMessageState)
}

func (cl *Client) AutoPlace(ctx context.Context) (MessageAdvice, error) {
	return requestAs[MessageAdvice](ctx, cl, MessageAuto{}, TypeMessageAdvice)
}

func (cl *Client) New(ctx context.Context, seed int64) (MessageState, error) {
	return requestAs[MessageState](ctx, cl, MessageNew{Seed: seed}, TypeMessageState)
}

func (cl *Client) EngineTurn(ctx context.Context) (MessageAdvice, error) {
	return requestAs[MessageAdvice](ctx, cl, MessageEngine{}, TypeMessageAdvice)
}

func (cl *Client) Close() error {
	return cl.Conn.Close()
}

func requestAs[T any](ctx context.Context, cl *Client, m MessageInterface, want MessageType) (T, error) {
	var out T
	reply, err := cl.Request(ctx, m)
	if err != nil {
		return out, err
	}
	if reply.MsgType != want {
		return out, fmt.Errorf("%w: got %s, want %s", ErrUnexpectedReply, reply.MsgType, want)
	}
	if err := Decode(reply.Data, &out); err != nil {
		return out, err
	}
	return out, nil
}
