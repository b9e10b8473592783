/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package live

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Seednode/crosswire/crossword"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 5 * time.Second

type puzzleServer struct {
	*httptest.Server

	status  atomic.Int32
	fetches atomic.Int32
	frames  chan string
	conns   chan *websocket.Conn
}

func smallPuzzle() crossword.Puzzle {
	return crossword.Puzzle{
		Across: map[string]crossword.Entry{
			"1A": {Hint: "Feline", Cells: []crossword.Edit{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0, C: "t"}}},
		},
		Down: map[string]crossword.Entry{},
	}
}

func newPuzzleServer(t *testing.T) *puzzleServer {
	t.Helper()

	ps := &puzzleServer{
		frames: make(chan string, 64),
		conns:  make(chan *websocket.Conn, 8),
	}
	ps.status.Store(http.StatusOK)

	upgrader := websocket.Upgrader{}

	mux := http.NewServeMux()
	mux.HandleFunc("/puzzle/1/data", func(w http.ResponseWriter, r *http.Request) {
		ps.fetches.Add(1)

		if code := int(ps.status.Load()); code != http.StatusOK {
			http.Error(w, http.StatusText(code), code)

			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(smallPuzzle())
	})
	mux.HandleFunc("/puzzle/1/live", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		ps.conns <- conn

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}

			ps.frames <- string(data)
		}
	})

	ps.Server = httptest.NewServer(mux)
	t.Cleanup(ps.Close)

	return ps
}

func (ps *puzzleServer) page() string {
	return ps.URL + "/puzzle/1"
}

func collect() (chan Event, func(Event)) {
	events := make(chan Event, 256)

	return events, func(ev Event) { events <- ev }
}

func waitFor[T Event](t *testing.T, events <-chan Event, match func(T) bool) T {
	t.Helper()

	deadline := time.After(waitTimeout)

	for {
		select {
		case ev := <-events:
			if got, ok := ev.(T); ok && (match == nil || match(got)) {
				return got
			}
		case <-deadline:
			var zero T
			t.Fatalf("timed out waiting for %T", zero)

			return zero
		}
	}
}

func inState(s State) func(StateChanged) bool {
	return func(ev StateChanged) bool { return ev.State == s }
}

func nextFrame(t *testing.T, ps *puzzleServer) string {
	t.Helper()

	select {
	case frame := <-ps.frames:
		return frame
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for a frame")

		return ""
	}
}

func nextConn(t *testing.T, ps *puzzleServer) *websocket.Conn {
	t.Helper()

	select {
	case conn := <-ps.conns:
		return conn
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for a connection")

		return nil
	}
}

func quietOptions() Options {
	logger, _ := logtest.NewNullLogger()

	return Options{InitialBackoff: 5 * time.Millisecond, MaxBackoff: 20 * time.Millisecond, Logger: logger}
}

func startChannel(t *testing.T, ch *Channel) <-chan error {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)

	go func() { errc <- ch.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		<-errc
	})

	return errc
}

func TestChannelLoadsAndSyncs(t *testing.T) {
	ps := newPuzzleServer(t)

	endpoints, err := ParseEndpoints(ps.page())
	require.NoError(t, err)

	events, deliver := collect()
	ch := NewChannel(endpoints, deliver, quietOptions())
	startChannel(t, ch)

	assert.Equal(t, Greeting, nextFrame(t, ps))

	loaded := waitFor[PuzzleLoaded](t, events, nil)
	assert.Equal(t, "t", loaded.Puzzle.Across["1A"].Cells[2].C)

	waitFor(t, events, inState(Connected))
	assert.True(t, ch.Ready())

	server := nextConn(t, ps)
	require.NoError(t, server.WriteMessage(websocket.TextMessage, []byte(`{"x":1,"y":0}`)))
	require.NoError(t, server.WriteJSON(crossword.Edit{X: 1, Y: 0, C: "a"}))

	got := waitFor[EditReceived](t, events, nil)
	assert.Equal(t, crossword.Edit{X: 1, Y: 0, C: "a"}, got.Edit)

	ch.Publish(crossword.Edit{X: 0, Y: 0, C: "c"})
	assert.JSONEq(t, `{"x":0,"y":0,"c":"c"}`, nextFrame(t, ps))
}

func TestChannelInitialLoadFailure(t *testing.T) {
	ps := newPuzzleServer(t)
	ps.status.Store(http.StatusNotFound)

	endpoints, err := ParseEndpoints(ps.page())
	require.NoError(t, err)

	events, deliver := collect()
	ch := NewChannel(endpoints, deliver, quietOptions())

	err = ch.Run(context.Background())

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, http.StatusNotFound, loadErr.StatusCode)

	failed := waitFor[LoadFailed](t, events, nil)
	assert.ErrorAs(t, failed.Err, &loadErr)

	waitFor(t, events, inState(Failed))
	assert.Equal(t, int32(1), ps.fetches.Load())
	assert.False(t, ch.Ready())
}

func TestChannelReconnectsAndReloads(t *testing.T) {
	ps := newPuzzleServer(t)

	endpoints, err := ParseEndpoints(ps.page())
	require.NoError(t, err)

	events, deliver := collect()
	ch := NewChannel(endpoints, deliver, quietOptions())
	startChannel(t, ch)

	waitFor(t, events, inState(Connected))

	server := nextConn(t, ps)
	server.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "restarting"))
	server.Close()

	dropped := waitFor(t, events, inState(Disconnected))
	assert.Error(t, dropped.Err)

	waitFor[PuzzleLoaded](t, events, nil)
	waitFor(t, events, inState(Connected))

	assert.Equal(t, int32(2), ps.fetches.Load())
}

func TestChannelGivesUp(t *testing.T) {
	ps := newPuzzleServer(t)
	page := ps.page()
	ps.Close()

	endpoints, err := ParseEndpoints(page)
	require.NoError(t, err)

	opts := quietOptions()
	opts.MaxAttempts = 3

	events, deliver := collect()
	ch := NewChannel(endpoints, deliver, opts)

	err = ch.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "giving up after 3 attempts")

	var loadErr *LoadError
	assert.False(t, errors.As(err, &loadErr))

	waitFor(t, events, inState(Failed))
}

func TestChannelStopsOnCancel(t *testing.T) {
	ps := newPuzzleServer(t)

	endpoints, err := ParseEndpoints(ps.page())
	require.NoError(t, err)

	events, deliver := collect()
	ch := NewChannel(endpoints, deliver, quietOptions())

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)

	go func() { errc <- ch.Run(ctx) }()

	waitFor(t, events, inState(Connected))
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(waitTimeout):
		t.Fatal("Run did not return after cancel")
	}

	assert.False(t, ch.Ready())
}

func TestPublishWhileDisconnected(t *testing.T) {
	logger, hook := logtest.NewNullLogger()

	endpoints, err := ParseEndpoints("http://localhost:1/puzzle/1")
	require.NoError(t, err)

	ch := NewChannel(endpoints, func(Event) {}, Options{Logger: logger})
	ch.Publish(crossword.Edit{X: 1, Y: 2, C: "a"})

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, 2, hook.LastEntry().Data["y"])
}

func TestChannelCancelDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	endpoints, err := ParseEndpoints(srv.URL + "/puzzle/1")
	require.NoError(t, err)

	opts := quietOptions()
	opts.InitialBackoff = time.Hour
	opts.MaxBackoff = time.Hour

	events, deliver := collect()
	ch := NewChannel(endpoints, deliver, opts)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)

	go func() { errc <- ch.Run(ctx) }()

	waitFor(t, events, func(s StateChanged) bool { return s.State == Disconnected && s.Err != nil })
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(waitTimeout):
		t.Fatal("Run did not return after cancel")
	}

	last := waitFor[StateChanged](t, events, nil)
	assert.Equal(t, Disconnected, last.State)
	assert.NoError(t, last.Err)
}
