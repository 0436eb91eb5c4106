package ws_chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/humanbelnik/kinoshelf/internal/model"
	usecase_advisor "github.com/humanbelnik/kinoshelf/internal/usecase/advisor"
)

const (
	EventBotMessage = "BOT_MESSAGE"
	EventError      = "ERROR"

	Greeting = "Сайн байна уу! Би таны кино сонголтод туслах хиймэл оюун ухааны туслах. Та ямар төрлийн кино үзэхийг хүсэж байна вэ?"

	sendBuffer = 16
)

type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type BotMessage struct {
	Text string `json:"text"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type inbound struct {
	Message string `json:"message"`
}

type Asker interface {
	Ask(ctx context.Context, clientID model.ClientID, message string) (string, error)
}

type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan Event
	clientID model.ClientID
	ctx      context.Context
	cancel   context.CancelFunc
}

type Hub struct {
	asker      Asker
	logger     *slog.Logger
	clients    map[*Client]bool
	byClient   map[model.ClientID]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub(asker Asker) *Hub {
	return &Hub{
		asker:      asker,
		logger:     slog.Default(),
		clients:    make(map[*Client]bool),
		byClient:   make(map[model.ClientID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run serves registrations until ctx is cancelled, then drops every
// connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.handleRegister(client)

		case client := <-h.unregister:
			h.handleUnregister(client)

		case <-ctx.Done():
			h.shutdown()
			return
		}
	}
}

func (h *Hub) Connect(conn *websocket.Conn, clientID model.ClientID) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	client := &Client{
		hub:      h,
		conn:     conn,
		send:     make(chan Event, sendBuffer),
		clientID: clientID,
		ctx:      ctx,
		cancel:   cancel,
	}

	select {
	case h.register <- client:
	case <-h.done:
		cancel()
		conn.Close()
		return nil
	}

	go h.writePump(client)
	go h.readPump(client)
	return client
}

func (h *Hub) handleRegister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
	if _, exists := h.byClient[client.clientID]; !exists {
		h.byClient[client.clientID] = make(map[*Client]bool)
	}
	h.byClient[client.clientID][client] = true

	client.send <- Event{Type: EventBotMessage, Payload: BotMessage{Text: Greeting}}

	h.logger.Info("chat client registered", "client", client.clientID)
}

func (h *Hub) handleUnregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.remove(client)
	h.logger.Info("chat client unregistered", "client", client.clientID)
}

// remove expects h.mu to be held.
func (h *Hub) remove(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	client.cancel()
	close(client.send)

	if conns, exists := h.byClient[client.clientID]; exists {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.byClient, client.clientID)
		}
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		h.remove(client)
		client.conn.Close()
	}
}

// ConnectionsOf counts open panels of one browser.
func (h *Hub) ConnectionsOf(clientID model.ClientID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.byClient[clientID])
}

func (h *Hub) deliver(client *Client, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.clients[client] {
		return
	}
	select {
	case client.send <- event:
	default:
		h.logger.Warn("chat client too slow, dropping event", "client", client.clientID)
	}
}

func (h *Hub) answer(client *Client, message string) {
	reply, err := h.asker.Ask(client.ctx, client.clientID, message)
	switch {
	case err == nil:
		h.deliver(client, Event{Type: EventBotMessage, Payload: BotMessage{Text: reply}})
	case errors.Is(err, usecase_advisor.ErrStaleResponse),
		errors.Is(err, usecase_advisor.ErrEmptyQuery):
	case errors.Is(err, usecase_advisor.ErrAlreadySending):
		h.deliver(client, Event{Type: EventError, Payload: ErrorPayload{Message: err.Error()}})
	default:
		h.logger.Error("chat answer failed", "client", client.clientID, "error", err)
		h.deliver(client, Event{Type: EventError, Payload: ErrorPayload{Message: usecase_advisor.ChatFailureText}})
	}
}

func (h *Hub) readPump(client *Client) {
	defer func() {
		select {
		case h.unregister <- client:
		case <-h.done:
		}
		client.conn.Close()
	}()

	for {
		var msg inbound
		if err := client.conn.ReadJSON(&msg); err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) && !errors.Is(err, websocket.ErrCloseSent) {
				h.logger.Debug("chat read stopped", "client", client.clientID, "error", err)
			}
			return
		}
		if strings.TrimSpace(msg.Message) == "" {
			continue
		}
		go h.answer(client, msg.Message)
	}
}

func (h *Hub) writePump(client *Client) {
	defer client.conn.Close()

	for event := range client.send {
		if err := client.conn.WriteJSON(event); err != nil {
			break
		}
	}
}
