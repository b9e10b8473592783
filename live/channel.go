/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package live

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Seednode/crosswire/crossword"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// Greeting is the first frame sent on every connection.
	Greeting = "hello"

	writeWait = 10 * time.Second
)

type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Failed
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Failed:
		return "error"
	default:
		return "disconnected"
	}
}

type Options struct {
	HTTPClient *http.Client
	Dialer     *websocket.Dialer

	// InitialBackoff is the delay after the first failed attempt. It doubles
	// on every further failure up to MaxBackoff.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// MaxAttempts bounds consecutive failed connection attempts. Zero retries
	// forever.
	MaxAttempts int

	// ReadTimeout closes a connection that has been silent, pings included,
	// for this long. Negative disables it.
	ReadTimeout time.Duration

	Logger logrus.FieldLogger
}

func (o Options) withDefaults() Options {
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}

	if o.Dialer == nil {
		o.Dialer = &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		}
	}

	if o.InitialBackoff <= 0 {
		o.InitialBackoff = time.Second
	}

	if o.MaxBackoff <= 0 {
		o.MaxBackoff = 30 * time.Second
	}

	o.MaxBackoff = max(o.MaxBackoff, o.InitialBackoff)

	if o.ReadTimeout == 0 {
		o.ReadTimeout = 90 * time.Second
	}

	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}

	return o
}

// Channel is the reconnecting link between one viewer and the puzzle
// server. It posts everything it learns to deliver and carries the viewer's
// edits back out through Publish.
type Channel struct {
	endpoints Endpoints
	opts      Options
	deliver   func(Event)
	log       logrus.FieldLogger

	mu    sync.Mutex
	conn  *websocket.Conn
	ready bool
}

func NewChannel(endpoints Endpoints, deliver func(Event), opts Options) *Channel {
	opts = opts.withDefaults()

	return &Channel{
		endpoints: endpoints,
		opts:      opts,
		deliver:   deliver,
		log:       opts.Logger.WithField("url", endpoints.Page),
	}
}

// Publish sends one edit to the server. Edits made while the channel is not
// connected are dropped.
func (ch *Channel) Publish(e crossword.Edit) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	log := ch.log.WithField("x", e.X).WithField("y", e.Y)

	if !ch.ready {
		log.Warn("dropping edit while disconnected")

		return
	}

	ch.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := ch.conn.WriteJSON(e); err != nil {
		log.WithError(err).Warn("failed to send edit")

		ch.ready = false
		ch.conn.Close()
	}
}

// Ready reports whether edits are currently being sent.
func (ch *Channel) Ready() bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	return ch.ready
}

// Run connects and keeps reconnecting until ctx is done, the first puzzle
// load fails, or MaxAttempts consecutive attempts fail.
func (ch *Channel) Run(ctx context.Context) error {
	backoff := ch.opts.InitialBackoff
	attempts := 0
	loaded := false

	for {
		if err := ctx.Err(); err != nil {
			ch.setState(Disconnected, nil)

			return err
		}

		ch.setState(Connecting, nil)

		conn, err := ch.connect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				ch.setState(Disconnected, nil)

				return ctx.Err()
			}

			var loadErr *LoadError
			if !loaded && errors.As(err, &loadErr) {
				ch.deliver(LoadFailed{Err: err})
				ch.setState(Failed, err)

				return err
			}

			attempts++

			log := ch.log.WithField("attempt", attempts).WithError(err)

			if ch.opts.MaxAttempts > 0 && attempts >= ch.opts.MaxAttempts {
				err = fmt.Errorf("giving up after %d attempts: %w", attempts, err)
				log.Error("giving up on live channel")
				ch.setState(Failed, err)

				return err
			}

			log.WithField("retry_in", backoff.String()).Warn("live channel unavailable")
			ch.setState(Disconnected, err)

			select {
			case <-ctx.Done():
				ch.setState(Disconnected, nil)

				return ctx.Err()
			case <-time.After(backoff):
			}

			backoff = min(backoff*2, ch.opts.MaxBackoff)

			continue
		}

		loaded = true
		attempts = 0
		backoff = ch.opts.InitialBackoff

		ch.setState(Connected, nil)

		err = ch.receive(ctx, conn)

		ch.drop(conn)

		if ctx.Err() != nil {
			ch.setState(Disconnected, nil)

			return ctx.Err()
		}

		ch.log.WithError(err).Warn("live channel dropped, reconnecting")
		ch.setState(Disconnected, err)
	}
}

func (ch *Channel) connect(ctx context.Context) (*websocket.Conn, error) {
	id := uuid.NewString()

	conn, resp, err := ch.opts.Dialer.DialContext(ctx, ch.endpoints.Live, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: status %d: %w", ch.endpoints.Live, resp.StatusCode, err)
		}

		return nil, fmt.Errorf("dial %s: %w", ch.endpoints.Live, err)
	}

	conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := conn.WriteMessage(websocket.TextMessage, []byte(Greeting)); err != nil {
		conn.Close()

		return nil, fmt.Errorf("send greeting: %w", err)
	}

	puzzle, err := FetchPuzzle(ctx, ch.opts.HTTPClient, ch.endpoints.Data)
	if err != nil {
		conn.Close()

		return nil, err
	}

	ch.deliver(PuzzleLoaded{Puzzle: puzzle})

	ch.mu.Lock()
	ch.conn = conn
	ch.ready = true
	ch.mu.Unlock()

	ch.log.WithField("conn", id).Info("live channel connected")

	return conn, nil
}

func (ch *Channel) receive(ctx context.Context, conn *websocket.Conn) error {
	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	defer stop()

	extend := func() {
		if ch.opts.ReadTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(ch.opts.ReadTimeout))
		}
	}

	extend()

	conn.SetPingHandler(func(data string) error {
		extend()

		err := conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}

		return err
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return fmt.Errorf("server closed the connection: %w", err)
			}

			return fmt.Errorf("read: %w", err)
		}

		extend()

		edit, err := crossword.ParseEdit(data)
		if err != nil {
			ch.log.WithError(err).Warn("dropping frame")

			continue
		}

		ch.deliver(EditReceived{Edit: edit})
	}
}

func (ch *Channel) drop(conn *websocket.Conn) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if ch.conn == conn {
		ch.conn = nil
		ch.ready = false
	}

	conn.Close()
}

func (ch *Channel) setState(s State, err error) {
	ch.deliver(StateChanged{State: s, Err: err})
}

// Close sends a close frame on the current connection, if any. Run returns
// once its context is cancelled.
func (ch *Channel) Close() {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if ch.conn == nil {
		return
	}

	ch.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}
