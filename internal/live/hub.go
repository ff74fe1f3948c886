// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package live

import (
	"context"
	"errors"
	"sort"
	"sync"

	"golang.org/x/time/rate"

	"github.com/tomtom215/reportkit/internal/config"
	"github.com/tomtom215/reportkit/internal/logging"
	"github.com/tomtom215/reportkit/internal/metrics"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled is the normal graceful shutdown path.
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was exceeded.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types for websocket communication
const (
	MessageTypePing            = "ping"
	MessageTypePong            = "pong"
	MessageTypeChartUpdated    = "chart_updated"
	MessageTypeReportChanged   = "report_changed"
	MessageTypeStrokeFinalized = "stroke_finalized"
)

// ErrHubFull is returned when the hub already serves MaxClients clients.
var ErrHubFull = errors.New("live hub at client capacity")

// Message is one websocket frame. ReportID scopes delivery to the
// subscribers of that report; an empty ReportID reaches every client.
type Message struct {
	Type     string      `json:"type"`
	ReportID string      `json:"report_id,omitempty"`
	Data     interface{} `json:"data,omitempty"`
}

// Config bounds the hub.
type Config struct {
	// MaxClients caps concurrent subscribers. Zero means unlimited.
	MaxClients int

	// Rate and Burst throttle messages per client.
	Rate  rate.Limit
	Burst int
}

// ConfigFrom converts the live section of the application config.
func ConfigFrom(cfg config.LiveConfig) Config {
	return Config{
		MaxClients: cfg.MaxClients,
		Rate:       rate.Limit(cfg.BroadcastRate),
		Burst:      cfg.BroadcastBurst,
	}
}

// Hub maintains the set of subscribed clients and routes report messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
	cfg        Config

	finalizeMu sync.RWMutex
	onFinalize func(reportID string)
}

// NewHub creates a new Hub
func NewHub(cfg Config) *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		cfg:        cfg,
	}
}

// OnStrokeFinalized installs the callback run when a client acknowledges
// that it finished drawing the dashed pattern of a report.
func (h *Hub) OnStrokeFinalized(fn func(reportID string)) {
	h.finalizeMu.Lock()
	h.onFinalize = fn
	h.finalizeMu.Unlock()
}

// Full reports whether a new client would be refused.
func (h *Hub) Full() bool {
	if h.cfg.MaxClients <= 0 {
		return false
	}
	return h.ClientCount() >= h.cfg.MaxClients
}

// RunWithContext runs the hub until ctx is canceled, then closes every client.
//
// Lifecycle events are drained before broadcasts so that a message is never
// routed against a stale client set.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.register(client)
			continue
		case client := <-h.Unregister:
			h.unregister(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.register(client)
		case client := <-h.Unregister:
			h.unregister(client)
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

// Serve implements suture.Service.
func (h *Hub) Serve(ctx context.Context) error {
	return h.RunWithContext(ctx)
}

// String implements fmt.Stringer for suture logging.
func (h *Hub) String() string {
	return "live-hub"
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	if h.cfg.MaxClients > 0 && len(h.clients) >= h.cfg.MaxClients {
		h.mu.Unlock()
		close(client.send)
		logging.Warn().
			Str("report_id", client.reportID).
			Int("max_clients", h.cfg.MaxClients).
			Msg("live client refused: hub full")
		return
	}
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.TrackLiveClient(true)
	logging.Info().Str("report_id", client.reportID).Int("total_clients", total).Msg("live client connected")
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if ok {
		metrics.TrackLiveClient(false)
		logging.Info().Str("report_id", client.reportID).Int("total_clients", total).Msg("live client disconnected")
	}
}

func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.ClientCount()
	h.closeAllClients()

	logging.Info().
		Str("component", "live-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("live hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

// sortedClients returns the client set ordered by id. Caller holds h.mu.
func (h *Hub) sortedClients() []*Client {
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

// broadcastToClients delivers message to the subscribers of its report in
// client id order. Throttled clients miss the message; clients whose buffer
// is full are dropped.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var toRemove []*Client
	for _, client := range h.sortedClients() {
		if message.ReportID != "" && client.reportID != message.ReportID {
			continue
		}
		if !client.limiter.Allow() {
			metrics.RecordLiveDropped()
			continue
		}
		select {
		case client.send <- message:
			metrics.RecordLiveBroadcast()
		default:
			metrics.RecordLiveDropped()
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
		metrics.TrackLiveClient(false)
		logging.Warn().Str("report_id", client.reportID).Msg("dropping slow live client")
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.sortedClients() {
		close(client.send)
		delete(h.clients, client)
		metrics.TrackLiveClient(false)
	}
}

// Publish queues a message for the subscribers of reportID. It never blocks;
// when the broadcast buffer is full the message is dropped.
func (h *Hub) Publish(reportID, messageType string, data interface{}) bool {
	message := Message{Type: messageType, ReportID: reportID, Data: data}

	select {
	case h.broadcast <- message:
		return true
	default:
		metrics.RecordLiveDropped()
		logging.Warn().
			Str("report_id", reportID).
			Str("message_type", messageType).
			Msg("broadcast channel full, dropping live message")
		return false
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SubscriberCount returns the number of clients subscribed to reportID.
func (h *Hub) SubscriberCount(reportID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for client := range h.clients {
		if client.reportID == reportID {
			n++
		}
	}
	return n
}

// Subscriptions returns the sorted ids of reports with at least one client.
func (h *Hub) Subscriptions() []string {
	h.mu.RLock()
	seen := make(map[string]struct{}, len(h.clients))
	for client := range h.clients {
		seen[client.reportID] = struct{}{}
	}
	h.mu.RUnlock()

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (h *Hub) strokeFinalized(reportID string) {
	h.finalizeMu.RLock()
	fn := h.onFinalize
	h.finalizeMu.RUnlock()
	if fn != nil {
		fn(reportID)
	}
}
