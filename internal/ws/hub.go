package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/gig-escrow/internal/logger"
	"github.com/ignatzorin/gig-escrow/internal/metrics"
)

const broadcastQueue = 256

var (
	errHubStopped = errors.New("ws: hub остановлен")
	errClientGone = errors.New("ws: клиент отключён")
)

// Membership проверяет, является ли пользователь стороной контракта.
type Membership interface {
	IsContractParty(ctx context.Context, contractID, userID uuid.UUID) (bool, error)
}

// Hub - реестр подключений и каналов (комнат) релея.
// Создаётся один раз при запуске и передаётся в обработчики.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]struct{}
	rooms      map[string]map[*Client]struct{}
	broadcast  chan message
	done       chan struct{}
	stopOnce   sync.Once
	membership Membership
	now        func() time.Time
	log        *logrus.Entry
}

type message struct {
	room    string
	payload []byte
	except  *Client
}

// UserRoom - личный канал пользователя.
func UserRoom(userID uuid.UUID) string {
	return "user_" + userID.String()
}

// ContractRoom - канал переписки по контракту.
func ContractRoom(contractID uuid.UUID) string {
	return "contract_" + contractID.String()
}

// NewHub создаёт новый хаб.
func NewHub(membership Membership) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
		broadcast:  make(chan message, broadcastQueue),
		done:       make(chan struct{}),
		membership: membership,
		now:        time.Now,
		log:        logger.Component("ws"),
	}
}

// Run запускает главный цикл хаба и закрывает все подключения по отмене ctx.
func (h *Hub) Run(ctx context.Context) {
	defer h.stop()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

func (h *Hub) stop() {
	h.stopOnce.Do(func() {
		close(h.done)

		h.mu.Lock()
		defer h.mu.Unlock()
		for client := range h.clients {
			h.detach(client)
		}
	})
}

// Register добавляет клиента и сразу подписывает его на личный канал,
// чтобы серверные уведомления доходили без явного join.
func (h *Hub) Register(client *Client) error {
	select {
	case <-h.done:
		return errHubStopped
	default:
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = struct{}{}
	h.subscribe(client, UserRoom(client.userID))
	metrics.RelayConnections.Inc()
	return nil
}

// Unregister удаляет клиента из всех каналов. Повторный вызов ничего не делает.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detach(client)
}

// BroadcastToUser отправляет событие в личный канал пользователя.
func (h *Hub) BroadcastToUser(userID uuid.UUID, event string, data any) error {
	return h.publish(UserRoom(userID), event, data, nil)
}

// BroadcastToContract отправляет событие в канал контракта.
func (h *Hub) BroadcastToContract(contractID uuid.UUID, event string, data any) error {
	return h.publish(ContractRoom(contractID), event, data, nil)
}

func (h *Hub) publish(room, event string, data any, except *Client) error {
	raw, err := encodeEvent(event, data)
	if err != nil {
		return err
	}

	select {
	case <-h.done:
		return errHubStopped
	default:
	}
	select {
	case h.broadcast <- message{room: room, payload: raw, except: except}:
		return nil
	case <-h.done:
		return errHubStopped
	}
}

// join подписывает клиента на канал.
func (h *Hub) join(client *Client, room string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return errClientGone
	}
	h.subscribe(client, room)
	return nil
}

// leave отписывает клиента от канала.
func (h *Hub) leave(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unsubscribe(client, room)
}

// inRoom сообщает, подписан ли клиент на канал.
func (h *Hub) inRoom(client *Client, room string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := client.rooms[room]
	return ok
}

// sendTo отправляет кадр одному клиенту, не блокируясь.
func (h *Hub) sendTo(client *Client, event string, data any) {
	raw, err := encodeEvent(event, data)
	if err != nil {
		h.log.WithError(err).Warn("не удалось сформировать кадр")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	select {
	case client.send <- raw:
	default:
		metrics.RelayDroppedTotal.Inc()
	}
}

// deliver рассылает кадр подписчикам канала. Клиенты с переполненной
// очередью отключаются, hub при этом не ждёт.
func (h *Hub) deliver(msg message) {
	var slow []*Client

	h.mu.RLock()
	for client := range h.rooms[msg.room] {
		if client == msg.except {
			continue
		}
		select {
		case client.send <- msg.payload:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	if len(slow) == 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, client := range slow {
		metrics.RelayDroppedTotal.Inc()
		h.log.WithFields(logrus.Fields{
			"user_id": client.userID,
			"room":    msg.room,
		}).Warn("очередь клиента переполнена, соединение закрыто")
		h.detach(client)
	}
}

// subscribe и unsubscribe вызываются под h.mu.
func (h *Hub) subscribe(client *Client, room string) {
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[client] = struct{}{}
	client.rooms[room] = struct{}{}
}

func (h *Hub) unsubscribe(client *Client, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(client.rooms, room)
}

// detach убирает клиента из всех каналов и закрывает его очередь. Вызывается под h.mu.
func (h *Hub) detach(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	for room := range client.rooms {
		h.unsubscribe(client, room)
	}
	delete(h.clients, client)
	close(client.send)
	metrics.RelayConnections.Dec()
}

// roomSize возвращает число подписчиков канала.
func (h *Hub) roomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
