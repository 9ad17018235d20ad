package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/relabs-tech/resistive_touch/internal/config"
	"github.com/relabs-tech/resistive_touch/internal/event"
)

// feed keeps the latest touch and stats messages and fans touch messages
// out to websocket clients.
type feed struct {
	mu        sync.RWMutex
	lastTouch event.Touch
	haveTouch bool
	lastStats event.Stats
	haveStats bool

	clientsMu sync.Mutex
	clients   map[*websocket.Conn]struct{}
}

func newFeed() *feed {
	return &feed{clients: make(map[*websocket.Conn]struct{})}
}

func (f *feed) setTouch(ev event.Touch) {
	f.mu.Lock()
	f.lastTouch = ev
	f.haveTouch = true
	f.mu.Unlock()
	f.broadcast(ev)
}

func (f *feed) setStats(st event.Stats) {
	f.mu.Lock()
	f.lastStats = st
	f.haveStats = true
	f.mu.Unlock()
}

func (f *feed) broadcast(ev event.Touch) {
	f.clientsMu.Lock()
	defer f.clientsMu.Unlock()
	for conn := range f.clients {
		if err := conn.WriteJSON(ev); err != nil {
			log.Printf("web: websocket write error: %v", err)
			conn.Close()
			delete(f.clients, conn)
		}
	}
}

func (f *feed) handleTouch(w http.ResponseWriter, r *http.Request) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if !f.haveTouch {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, f.lastTouch)
}

func (f *feed) handleStats(w http.ResponseWriter, r *http.Request) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if !f.haveStats {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, f.lastStats)
}

func (f *feed) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}

	f.clientsMu.Lock()
	f.clients[conn] = struct{}{}
	f.clientsMu.Unlock()

	f.mu.RLock()
	ev, ok := f.lastTouch, f.haveTouch
	f.mu.RUnlock()
	if ok {
		f.clientsMu.Lock()
		if err := conn.WriteJSON(ev); err != nil {
			log.Printf("web: websocket write error: %v", err)
		}
		f.clientsMu.Unlock()
	}

	// Drain reads until the client goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	f.clientsMu.Lock()
	delete(f.clients, conn)
	f.clientsMu.Unlock()
	conn.Close()
}

func (f *feed) routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/touch", f.handleTouch)
	mux.HandleFunc("/api/stats", f.handleStats)
	mux.HandleFunc("/ws", f.handleWS)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

// RunWeb serves the latest touch point and pipeline stats received over
// MQTT, plus a websocket stream of touch messages and the static UI.
func RunWeb() error {
	cfg := config.Get()
	f := newFeed()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDWeb)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	if err := subscribeJSON(client, cfg.TopicTouch, "web", f.setTouch); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicTouchStats, "web", f.setStats); err != nil {
		return err
	}

	mux := http.NewServeMux()
	f.routes(mux)
	mux.Handle("/", http.FileServer(http.Dir("web")))

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}
