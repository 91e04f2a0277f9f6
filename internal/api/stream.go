package api

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/habitflow/habitflow/internal/app/store"
	"github.com/habitflow/habitflow/internal/domain"
	"github.com/habitflow/habitflow/internal/infra/metrics"
)

// KeepAliveInterval is how often an idle stream receives a comment line.
const KeepAliveInterval = 15 * time.Second

// Hub fans store snapshots out to Server-Sent Events clients. A slow client
// only ever sees the latest snapshot; intermediate versions are skipped.
type Hub struct {
	store     *store.Store
	log       *zap.Logger
	clients   atomic.Int64
	keepAlive time.Duration
}

// NewHub creates a hub over st.
func NewHub(st *store.Store, log *zap.Logger) *Hub {
	return &Hub{store: st, log: log, keepAlive: KeepAliveInterval}
}

// Clients returns the number of connected stream clients.
func (h *Hub) Clients() int {
	return int(h.clients.Load())
}

// HandleStream serves GET /api/snapshot/stream. The current snapshot is sent
// on connect, then one "snapshot" event per new version.
func (h *Hub) HandleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	updates := make(chan domain.Snapshot, 1)
	unsubscribe := h.store.Subscribe(func(snap domain.Snapshot) {
		offerLatest(updates, snap)
	})
	defer unsubscribe()

	h.clients.Add(1)
	metrics.StreamClients.Inc()
	defer func() {
		h.clients.Add(-1)
		metrics.StreamClients.Dec()
	}()

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	writer := bufio.NewWriter(w)
	send := func(snap domain.Snapshot) error {
		data, err := json.Marshal(snap)
		if err != nil {
			return err
		}
		fmt.Fprintf(writer, "id: %d\nevent: snapshot\ndata: %s\n\n", snap.Version, data)
		if err := writer.Flush(); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	current := h.store.Snapshot()
	if err := send(current); err != nil {
		return
	}
	sent := current.Version

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case snap := <-updates:
			if snap.Version <= sent {
				continue
			}
			if err := send(snap); err != nil {
				h.log.Debug("api: stream client gone", zap.Error(err))
				return
			}
			sent = snap.Version
		case <-ticker.C:
			fmt.Fprint(writer, ": keep-alive\n\n")
			if err := writer.Flush(); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// offerLatest puts snap in ch, replacing an undelivered older snapshot.
// Store listeners are called one at a time, so there is a single producer.
func offerLatest(ch chan domain.Snapshot, snap domain.Snapshot) {
	select {
	case ch <- snap:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snap:
	default:
	}
}
