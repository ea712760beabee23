// Package websocket pushes billing state changes to a user's connected
// sessions so subscription banners refresh without polling.
package websocket

import (
	"encoding/json"
	"sync"
)

// BillingUpdate is the payload broadcast after a webhook event lands.
type BillingUpdate struct {
	PaymentStatus  string `json:"payment_status"`
	ExpirationDate string `json:"expiration_date"`
	DaysOverdue    int    `json:"days_overdue"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*Client]struct{})
	}
	h.clients[userID][client] = struct{}{}
}

func (h *Hub) Unregister(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		return
	}
	delete(h.clients[userID], client)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
}

// BroadcastBilling sends the update to every session of one user. Slow
// clients are skipped rather than blocking the webhook path.
func (h *Hub) BroadcastBilling(userID string, update BillingUpdate) {
	payload, _ := json.Marshal(update)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
		}
	}
}
