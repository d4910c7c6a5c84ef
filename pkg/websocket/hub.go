package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/fasthttp/websocket"
)

// Client es una conexión WebSocket asociada a una sala y un jugador
type Client struct {
	Conn     *websocket.Conn
	RoomID   string
	PlayerID string
}

type roomMessage struct {
	roomID string
	data   []byte
}

type playerMessage struct {
	roomID   string
	playerID string
	data     []byte
}

// Hub distribuye mensajes entre las conexiones de cada sala
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan roomMessage
	direct     chan playerMessage
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan roomMessage),
		direct:     make(chan playerMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Printf("Cliente WebSocket conectado a la sala %s. Total: %d", client.RoomID, len(h.clients))

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Conn.Close()
			}
			h.mutex.Unlock()
			log.Printf("Cliente WebSocket desconectado de la sala %s. Total: %d", client.RoomID, len(h.clients))

		case msg := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				if client.RoomID != msg.roomID {
					continue
				}
				if err := client.Conn.WriteMessage(websocket.TextMessage, msg.data); err != nil {
					log.Printf("Error enviando mensaje WebSocket: %v", err)
					delete(h.clients, client)
					client.Conn.Close()
				}
			}
			h.mutex.RUnlock()

		case msg := <-h.direct:
			h.mutex.RLock()
			for client := range h.clients {
				if client.RoomID != msg.roomID || client.PlayerID != msg.playerID {
					continue
				}
				if err := client.Conn.WriteMessage(websocket.TextMessage, msg.data); err != nil {
					log.Printf("Error enviando mensaje WebSocket: %v", err)
					delete(h.clients, client)
					client.Conn.Close()
				}
			}
			h.mutex.RUnlock()
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// BroadcastToRoom envía un mensaje a todas las conexiones de una sala
func (h *Hub) BroadcastToRoom(roomID, msgType string, data interface{}) {
	msgData, err := json.Marshal(Message{Type: msgType, Data: data})
	if err != nil {
		log.Printf("Error serializando mensaje: %v", err)
		return
	}
	h.broadcast <- roomMessage{roomID: roomID, data: msgData}
}

// SendToPlayer envía un mensaje a las conexiones de un jugador en una sala
func (h *Hub) SendToPlayer(roomID, playerID, msgType string, data interface{}) {
	msgData, err := json.Marshal(Message{Type: msgType, Data: data})
	if err != nil {
		log.Printf("Error serializando mensaje: %v", err)
		return
	}
	h.direct <- playerMessage{roomID: roomID, playerID: playerID, data: msgData}
}
