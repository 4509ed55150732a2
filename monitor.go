package main

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Snapshot is one frame of chunk state pushed to monitor clients.
type Snapshot struct {
	Type          string       `json:"type"`
	Time          float64      `json:"time"`
	Chunks        []ChunkState `json:"chunks"`
	BeakerSettled bool         `json:"beakerSettled"`
	AirSettled    bool         `json:"airSettled"`
}

type ChunkState struct {
	ID        int     `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Container string  `json:"container"`
}

// Monitor is a small websocket broadcast server so chunk motion can be
// watched (or recorded) from a browser while the sim runs.
type Monitor struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
}

func NewMonitor() *Monitor {
	return &Monitor{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // local debugging tool, any origin is fine
			},
		},
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Start serves the websocket endpoint at /ws on addr, in the background
func (m *Monitor) Start(addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", m.handleWebSocket)
	go func() {
		log.Printf("monitor listening on ws://%s/ws", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("monitor: %v", err)
		}
	}()
}

func (m *Monitor) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("monitor upgrade: %v", err)
		return
	}
	defer conn.Close()

	m.mu.Lock()
	m.clients[conn] = &sync.Mutex{}
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		delete(m.clients, conn)
		m.mu.Unlock()
	}()

	// Drain incoming messages until the client goes away; the monitor is
	// broadcast-only.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast sends the snapshot to every connected client, dropping any
// whose connection has failed.
func (m *Monitor) Broadcast(snap Snapshot) {
	m.mu.RLock()
	var failed []*websocket.Conn
	for conn, connMu := range m.clients {
		connMu.Lock()
		err := conn.WriteJSON(snap)
		connMu.Unlock()
		if err != nil {
			log.Printf("monitor write: %v", err)
			conn.Close()
			failed = append(failed, conn)
		}
	}
	m.mu.RUnlock()

	if len(failed) > 0 {
		m.mu.Lock()
		for _, conn := range failed {
			delete(m.clients, conn)
		}
		m.mu.Unlock()
	}
}
