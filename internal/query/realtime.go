package query

import (
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	reconnectMin = time.Second
	reconnectMax = 30 * time.Second
)

// realtimeEvent is one document-change message from the platform's
// realtime channel.
type realtimeEvent struct {
	Events   []string `json:"events"`
	Channels []string `json:"channels"`
}

// Realtime subscribes to the platform's realtime websocket and stales
// cache keys when the documents behind them change remotely. prefixes
// maps a collection id to the key prefix its queries share.
type Realtime struct {
	url      string
	cache    *Client
	prefixes map[string]string

	closeOnce sync.Once
	done      chan struct{}

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewRealtime creates a subscriber; Start begins the connection loop.
func NewRealtime(url string, cache *Client, prefixes map[string]string) *Realtime {
	return &Realtime{
		url:      url,
		cache:    cache,
		prefixes: prefixes,
		done:     make(chan struct{}),
	}
}

// Start runs the subscription loop in the background until Close.
func (r *Realtime) Start() {
	go r.loop()
}

func (r *Realtime) loop() {
	backoff := reconnectMin
	for {
		select {
		case <-r.done:
			return
		default:
		}

		conn, _, err := websocket.DefaultDialer.Dial(r.url, nil)
		if err != nil {
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("Realtime connection failed")
			select {
			case <-r.done:
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, reconnectMax)
			continue
		}

		r.mu.Lock()
		r.conn = conn
		r.mu.Unlock()
		log.Info().Msg("Realtime connected")
		backoff = reconnectMin

		r.read(conn)

		r.mu.Lock()
		r.conn = nil
		r.mu.Unlock()
	}
}

func (r *Realtime) read(conn *websocket.Conn) {
	defer conn.Close()
	for {
		var event realtimeEvent
		if err := conn.ReadJSON(&event); err != nil {
			select {
			case <-r.done:
			default:
				log.Warn().Err(err).Msg("Realtime read failed")
			}
			return
		}
		r.apply(event)
	}
}

// apply maps changed collections to stale key prefixes.
func (r *Realtime) apply(event realtimeEvent) {
	for _, channel := range event.Channels {
		for collection, prefix := range r.prefixes {
			if strings.Contains(channel, ".collections."+collection+".") ||
				strings.HasSuffix(channel, ".collections."+collection) {
				r.cache.InvalidatePrefix(prefix)
			}
		}
	}
}

// Close stops the loop and drops the connection. Safe to call twice.
func (r *Realtime) Close() {
	r.closeOnce.Do(func() {
		close(r.done)
		r.mu.Lock()
		if r.conn != nil {
			r.conn.Close()
		}
		r.mu.Unlock()
	})
}
