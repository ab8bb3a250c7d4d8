package ws

import (
	"context"
	"encoding/json"
	"sync"

	"clinic_queue/internal/logger"
	"clinic_queue/internal/metrics"

	"github.com/sirupsen/logrus"
)

const broadcastBuffer = 256

// Hub: реестр подключений. Все изменения реестра и рассылка выполняются одной горутиной Run,
// поэтому события одной очереди доходят до клиента в порядке вызова Publish.
type Hub struct {
	// Все подключения по идентификатору соединения.
	clients map[string]*Client
	// Индекс подписчиков по queueID.
	byQueue map[uint]map[*Client]struct{}

	register    chan *Client
	unregister  chan *Client
	subscribe   chan subscription
	unsubscribe chan *Client
	broadcast   chan Event
	done        chan struct{}

	// mu защищает карты для чтения вне Run (счётчики подписчиков).
	mu sync.RWMutex

	log     *logrus.Entry
	metrics *metrics.Metrics
}

type subscription struct {
	client  *Client
	queueID uint
}

func NewHub(log *logger.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		clients:     make(map[string]*Client),
		byQueue:     make(map[uint]map[*Client]struct{}),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		subscribe:   make(chan subscription),
		unsubscribe: make(chan *Client),
		broadcast:   make(chan Event, broadcastBuffer),
		done:        make(chan struct{}),
		log:         log.WithComponent("ws_hub"),
		metrics:     m,
	}
}

// Run обрабатывает каналы хаба до отмены ctx, после чего закрывает все подключения.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			h.metrics.ConnectionOpened()
		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()
		case sub := <-h.subscribe:
			h.mu.Lock()
			h.subscribeLocked(sub.client, sub.queueID)
			h.mu.Unlock()
		case client := <-h.unsubscribe:
			h.mu.Lock()
			h.detachLocked(client)
			h.mu.Unlock()
		case event := <-h.broadcast:
			h.dispatch(event)
		}
	}
}

// Publish ставит событие в очередь рассылки. Доставка best-effort: если хаб перегружен,
// событие отбрасывается, а состояние очереди остаётся изменённым.
func (h *Hub) Publish(event Event) {
	select {
	case h.broadcast <- event:
	default:
		h.metrics.BroadcastDropped()
		h.log.WithField("queue_id", event.QueueID).WithField("action", event.Action).Warn("broadcast buffer full, event dropped")
	}
}

// Subscribe переводит подключение на другую очередь; прежняя подписка снимается.
func (h *Hub) Subscribe(client *Client, queueID uint) {
	select {
	case h.subscribe <- subscription{client: client, queueID: queueID}:
	case <-h.done:
	}
}

func (h *Hub) Unsubscribe(client *Client) {
	select {
	case h.unsubscribe <- client:
	case <-h.done:
	}
}

func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// SubscriberCount возвращает число подключений, подписанных на очередь.
func (h *Hub) SubscriberCount(queueID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byQueue[queueID])
}

func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) dispatch(event Event) {
	message, err := json.Marshal(event)
	if err != nil {
		h.log.WithError(err).Error("encode event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.byQueue[event.QueueID] {
		select {
		case client.send <- message:
			h.metrics.EventDelivered()
		default:
			// Клиент не успевает читать, отключаем его.
			h.log.WithField("conn_id", client.ID).Warn("slow websocket client pruned")
			h.removeLocked(client)
		}
	}
}

func (h *Hub) subscribeLocked(client *Client, queueID uint) {
	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	h.detachLocked(client)
	if h.byQueue[queueID] == nil {
		h.byQueue[queueID] = make(map[*Client]struct{})
	}
	h.byQueue[queueID][client] = struct{}{}
	client.queueID = queueID
}

func (h *Hub) detachLocked(client *Client) {
	if client.queueID == 0 {
		return
	}
	if subs, ok := h.byQueue[client.queueID]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.byQueue, client.queueID)
		}
	}
	client.queueID = 0
}

func (h *Hub) removeLocked(client *Client) {
	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	h.detachLocked(client)
	delete(h.clients, client.ID)
	close(client.send)
	h.metrics.ConnectionClosed()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, client := range h.clients {
		h.removeLocked(client)
	}
}
