/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

// Crosswire live puzzles
//
// Every catalog puzzle can be solved together. The first viewer of a puzzle
// loads it from the catalog into a hub; edits from any viewer are applied to
// the hub's copy and relayed, in the order applied, to everyone watching the
// same puzzle, the sender included.
//
// Routes:
// - /puzzle/:id        HTML client
// - /puzzle/:id/data   current letters as JSON
// - /puzzle/:id/live   websocket carrying {x, y, c} edits
// - /puzzle/:id/qr     PNG QR code linking to the page
// - /puzzles           catalog listing (GET) and upload (POST)

package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Seednode/crosswire/crossword"
	"github.com/Seednode/crosswire/puzzles"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const (
	sendBuffer    = 16
	writeWait     = 10 * time.Second
	maxEditSize   = 512
	maxUploadSize = 1 << 20
	qrSize        = 320
)

type Client struct {
	id   string
	conn *websocket.Conn
	send chan crossword.Edit
}

type incomingEdit struct {
	from *Client
	edit crossword.Edit
}

type Hub struct {
	id      int64
	clients map[*Client]bool

	register chan *Client
	unreg    chan *Client
	edits    chan incomingEdit
	done     chan struct{}

	// mu guards puzzle and the activity timestamps; clients belongs to run.
	mu         sync.RWMutex
	puzzle     crossword.Puzzle
	createdAt  time.Time
	lastActive time.Time
	viewers    int
}

func newHub(id int64, p crossword.Puzzle) *Hub {
	now := time.Now()
	return &Hub{
		id:         id,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		edits:      make(chan incomingEdit),
		done:       make(chan struct{}),
		puzzle:     p,
		createdAt:  now,
		lastActive: now,
	}
}

func (h *Hub) run(cfg *Config) {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			h.touch(1)

			logf(cfg, "LIVE: Client %s joined puzzle %d (%d connected)", c.id, h.id, len(h.clients))

		case c := <-h.unreg:
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
			}
			h.touch(-1)

			logf(cfg, "LIVE: Client %s left puzzle %d (%d connected)", c.id, h.id, len(h.clients))

		case in := <-h.edits:
			h.mu.Lock()
			known := h.puzzle.Apply(in.edit)
			h.lastActive = time.Now()
			h.mu.Unlock()

			if !known {
				logf(cfg, "LIVE: Dropped edit for unknown cell %s on puzzle %d from %s", in.edit.Coord(), h.id, in.from.id)

				continue
			}

			// Senders get their own edits back so every viewer sees the
			// hub's order.
			for c := range h.clients {
				select {
				case c.send <- in.edit:
				default:
					logf(cfg, "LIVE: Dropped slow client %s from puzzle %d", c.id, h.id)

					delete(h.clients, c)
					close(c.send)
				}
			}

		case <-h.done:
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}

			return
		}
	}
}

func (h *Hub) touch(delta int) {
	h.mu.Lock()
	h.viewers += delta
	h.lastActive = time.Now()
	h.mu.Unlock()
}

func (h *Hub) snapshot() crossword.Puzzle {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.puzzle.Clone()
}

// idleSince reports when the hub last saw activity, and false while anyone
// is still connected.
func (h *Hub) idleSince() (time.Time, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.lastActive, h.viewers <= 0
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// PuzzleManager holds one hub per puzzle that currently has, or recently had,
// viewers.
type PuzzleManager struct {
	cfg   *Config
	store *puzzles.Store

	mu   sync.Mutex
	hubs map[int64]*Hub
}

func newPuzzleManager(ctx context.Context, cfg *Config, store *puzzles.Store) *PuzzleManager {
	pm := &PuzzleManager{
		cfg:   cfg,
		store: store,
		hubs:  make(map[int64]*Hub),
	}

	if cfg.sessionTimeout > 0 {
		go pm.reaperLoop(ctx)
	}

	return pm
}

// getHub returns the running hub for id, loading the puzzle from the catalog
// if nobody has opened it yet.
func (pm *PuzzleManager) getHub(ctx context.Context, id int64) (*Hub, error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if hub, ok := pm.hubs[id]; ok {
		return hub, nil
	}

	entry, err := pm.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	hub := newHub(id, *entry.Crossword)
	pm.hubs[id] = hub
	go hub.run(pm.cfg)

	logf(pm.cfg, "LIVE: Opened puzzle %d (%s)", id, entry.Name)

	return hub, nil
}

func (pm *PuzzleManager) peekHub(id int64) (*Hub, bool) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	hub, ok := pm.hubs[id]

	return hub, ok
}

// reap closes hubs with no viewers that have been idle longer than the
// session timeout.
func (pm *PuzzleManager) reap(now time.Time) int {
	cutoff := now.Add(-pm.cfg.sessionTimeout)

	pm.mu.Lock()
	defer pm.mu.Unlock()

	reaped := 0
	for id, hub := range pm.hubs {
		last, empty := hub.idleSince()
		if empty && last.Before(cutoff) {
			delete(pm.hubs, id)
			close(hub.done)
			reaped++

			logf(pm.cfg, "LIVE: Closed idle puzzle %d after %s", id, now.Sub(hub.createdAt).Round(time.Second))
		}
	}

	return reaped
}

func (pm *PuzzleManager) reaperLoop(ctx context.Context) {
	ticker := time.NewTicker(pm.cfg.sessionTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			pm.reap(now)
		}
	}
}

func (pm *PuzzleManager) closeAll() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	for id, hub := range pm.hubs {
		delete(pm.hubs, id)
		close(hub.done)
	}
}

func puzzleID(ps httprouter.Params) (int64, bool) {
	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}

	return id, true
}

func jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func writeJSON(cfg *Config, w http.ResponseWriter, status int, v any) (int, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	securityHeaders(cfg, w)
	w.WriteHeader(status)

	return w.Write(data)
}

func serveLive(cfg *Config, pm *PuzzleManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id, ok := puzzleID(ps)
		if !ok {
			http.Error(w, "invalid puzzle id", http.StatusBadRequest)
			return
		}

		hub, err := pm.getHub(r.Context(), id)
		switch {
		case errors.Is(err, puzzles.ErrNotFound):
			http.NotFound(w, r)
			return
		case err != nil:
			http.Error(w, "failed to open puzzle", http.StatusInternalServerError)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "LIVE: Upgrade failed for %s: %v", realIP(r), err)
			return
		}

		client := &Client{
			id:   uuid.NewString(),
			conn: conn,
			send: make(chan crossword.Edit, sendBuffer),
		}

		select {
		case hub.register <- client:
		case <-hub.done:
			_ = conn.Close()
			return
		}

		go client.writePump(cfg.heartbeat)
		client.readPump(cfg, hub)
	}
}

func (c *Client) readPump(cfg *Config, h *Hub) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	pongWait := 2 * cfg.heartbeat

	c.conn.SetReadLimit(maxEditSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		edit, err := crossword.ParseEdit(data)
		if err != nil {
			logf(cfg, "LIVE: Ignored frame from %s on puzzle %d: %v", c.id, h.id, err)

			continue
		}

		select {
		case h.edits <- incomingEdit{from: c, edit: edit}:
		case <-h.done:
			return
		}
	}
}

func (c *Client) writePump(heartbeat time.Duration) {
	ticker := time.NewTicker(heartbeat)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case edit, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(edit); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func serveData(cfg *Config, pm *PuzzleManager, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		startTime := time.Now()

		id, ok := puzzleID(ps)
		if !ok {
			jsonError(w, "invalid puzzle id", http.StatusBadRequest)
			return
		}

		var p crossword.Puzzle

		if hub, ok := pm.peekHub(id); ok {
			p = hub.snapshot()
		} else {
			entry, err := pm.store.Get(r.Context(), id)
			switch {
			case errors.Is(err, puzzles.ErrNotFound):
				jsonError(w, "puzzle not found", http.StatusNotFound)
				return
			case err != nil:
				errs <- err
				jsonError(w, "failed to load puzzle", http.StatusInternalServerError)
				return
			}

			p = *entry.Crossword
		}

		written, err := writeJSON(cfg, w, http.StatusOK, p)
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Puzzle %d data (%s) to %s in %s",
			id,
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

//go:embed assets/crossword.html
var puzzlePageHTML string

var puzzlePage = template.Must(template.New("crossword").Parse(puzzlePageHTML))

type puzzlePageData struct {
	Title   string
	Prefix  string
	Page    string
	Favicon template.HTML
}

func servePuzzlePage(cfg *Config, store *puzzles.Store, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id, ok := puzzleID(ps)
		if !ok {
			http.NotFound(w, r)
			return
		}

		entry, err := store.Get(r.Context(), id)
		switch {
		case errors.Is(err, puzzles.ErrNotFound):
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			securityHeaders(cfg, w)
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(newPage(cfg, "Not Found", "No such puzzle.")))
			return
		case err != nil:
			errs <- err
			http.Error(w, "failed to load puzzle", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		err = puzzlePage.Execute(w, puzzlePageData{
			Title:   entry.Name,
			Prefix:  cfg.prefix,
			Page:    strings.TrimSuffix(r.URL.Path, "/"),
			Favicon: template.HTML(getFavicon(cfg)),
		})
		if err != nil {
			errs <- err
		}
	}
}

// qrHandler encodes the puzzle page URL, as seen by the requesting client.
func qrHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if _, ok := puzzleID(ps); !ok {
			http.Error(w, "invalid puzzle id", http.StatusBadRequest)
			return
		}

		scheme := cfg.scheme()
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		url := scheme + "://" + r.Host + strings.TrimSuffix(r.URL.Path, "/qr")

		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(cfg, w)
		_, _ = w.Write(png)
	}
}

func serveCatalog(cfg *Config, store *puzzles.Store, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		entries, err := store.List(r.Context())
		if err != nil {
			errs <- err
			jsonError(w, "failed to list puzzles", http.StatusInternalServerError)
			return
		}

		if entries == nil {
			entries = []puzzles.Entry{}
		}

		if _, err := writeJSON(cfg, w, http.StatusOK, entries); err != nil {
			errs <- err
		}
	}
}

type uploadRequest struct {
	Name      string            `json:"name"`
	Crossword *crossword.Puzzle `json:"crossword"`
}

func addPuzzle(cfg *Config, store *puzzles.Store, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

		var req uploadRequest

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		if err := dec.Decode(&req); err != nil {
			jsonError(w, "invalid request body", http.StatusBadRequest)
			return
		}

		if req.Crossword == nil {
			jsonError(w, "missing crossword", http.StatusBadRequest)
			return
		}

		entry, err := store.Create(r.Context(), req.Name, *req.Crossword)
		switch {
		case errors.Is(err, puzzles.ErrEmptyName), errors.Is(err, crossword.ErrInvalidPuzzle):
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		case err != nil:
			errs <- err
			jsonError(w, "failed to store puzzle", http.StatusInternalServerError)
			return
		}

		logf(cfg, "DB: Added puzzle %d (%s) from %s", entry.ID, entry.Name, realIP(r))

		if _, err := writeJSON(cfg, w, http.StatusCreated, entry); err != nil {
			errs <- err
		}
	}
}

func registerPuzzles(cfg *Config, mux *httprouter.Router, store *puzzles.Store, pm *PuzzleManager, errs chan<- error) {
	mux.GET(cfg.prefix+"/puzzles", serveCatalog(cfg, store, errs))
	mux.POST(cfg.prefix+"/puzzles", addPuzzle(cfg, store, errs))

	mux.GET(cfg.prefix+"/puzzle/:id", servePuzzlePage(cfg, store, errs))
	mux.GET(cfg.prefix+"/puzzle/:id/data", serveData(cfg, pm, errs))
	mux.GET(cfg.prefix+"/puzzle/:id/live", serveLive(cfg, pm))
	mux.GET(cfg.prefix+"/puzzle/:id/qr", qrHandler(cfg))
}
