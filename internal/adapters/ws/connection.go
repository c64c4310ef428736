// Package ws is the WebSocket transport of game clients.
package ws

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/dkeye/Pictionary/internal/core"
)

var ErrBackpressure = errors.New("backpressure")

// WSConn is an indirection over *websocket.Conn to ease testing.
type WSConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(mt int, data []byte) error
	SetWriteDeadline(t time.Time) error
	SetReadDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(appData string) error)
	Close() error
}

type Options struct {
	SendBuffer int
	WriteWait  time.Duration
	PingPeriod time.Duration
	PongWait   time.Duration
	ReadLimit  int64
	// RateLimit is the number of inbound messages per second a client may
	// send, with RateBurst on top. Excess messages are dropped.
	RateLimit float64
	RateBurst int
}

func (o Options) withDefaults() Options {
	if o.SendBuffer <= 0 {
		o.SendBuffer = 64
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 5 * time.Second
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.PingPeriod <= 0 {
		o.PingPeriod = o.PongWait * 9 / 10
	}
	if o.ReadLimit <= 0 {
		o.ReadLimit = 32768
	}
	if o.RateLimit <= 0 {
		o.RateLimit = 60
	}
	if o.RateBurst <= 0 {
		o.RateBurst = 120
	}
	return o
}

// Connection is a transport endpoint (WebSocket).
// It implements core.SignalConnection.
type Connection struct {
	sid     core.SessionID
	conn    WSConn
	opts    Options
	send    chan core.Frame
	done    chan struct{}
	once    sync.Once
	limiter *rate.Limiter
	log     zerolog.Logger
}

func NewConnection(sid core.SessionID, conn WSConn, opts Options) *Connection {
	opts = opts.withDefaults()
	return &Connection{
		sid:     sid,
		conn:    conn,
		opts:    opts,
		send:    make(chan core.Frame, opts.SendBuffer),
		done:    make(chan struct{}),
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateBurst),
		log:     log.With().Str("module", "adapters.ws").Str("sid", string(sid)).Logger(),
	}
}

func (c *Connection) SID() core.SessionID { return c.sid }

// Done is closed once the connection is closed.
func (c *Connection) Done() <-chan struct{} { return c.done }

// Send queues f for the write pump. It waits for buffer space until ctx is
// done.
func (c *Connection) Send(ctx context.Context, f core.Frame) error {
	select {
	case <-c.done:
		return core.ErrConnClosed
	default:
	}
	select {
	case c.send <- f:
		return nil
	case <-c.done:
		return core.ErrConnClosed
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrBackpressure, ctx.Err())
	}
}

func (c *Connection) Close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// WritePump pumps frames and keepalive pings to the network until the
// connection closes or ctx is done.
func (c *Connection) WritePump(ctx context.Context) {
	ticker := time.NewTicker(c.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			c.log.Debug().Msg("writePump ctx done")
			return
		case <-c.done:
			return
		case data := <-c.send:
			if err := c.write(websocket.TextMessage, data); err != nil {
				c.log.Warn().Err(err).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.log.Warn().Err(err).Msg("writePump ping error")
				return
			}
		}
	}
}

func (c *Connection) write(mt int, data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	return c.conn.WriteMessage(mt, data)
}

// ReadPump hands every inbound message to handle until the peer goes away,
// a read fails or ctx is done. The connection is closed on return.
func (c *Connection) ReadPump(ctx context.Context, handle func([]byte)) {
	defer c.Close()
	stop := context.AfterFunc(ctx, c.Close)
	defer stop()

	c.conn.SetReadLimit(c.opts.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})

	for {
		mt, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn().Err(err).Msg("readPump read error")
			} else {
				c.log.Debug().Err(err).Msg("readPump closing")
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		if !c.limiter.Allow() {
			c.log.Warn().Msg("rate limit exceeded, message dropped")
			continue
		}
		handle(data)
	}
}
