package handlers

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/backsoul/cashflow/pkg/models"
	"github.com/backsoul/cashflow/pkg/services"
	websocketHub "github.com/backsoul/cashflow/pkg/websocket"
	"github.com/fasthttp/websocket"
	"github.com/valyala/fasthttp"
)

var upgrader = websocket.FastHTTPUpgrader{
	CheckOrigin: func(ctx *fasthttp.RequestCtx) bool {
		return true // Permitir conexiones desde cualquier origen en desarrollo
	},
}

// GameHandler maneja las conexiones WebSocket y las consultas de partida
type GameHandler struct {
	coordinator *services.GameCoordinator
	hub         *websocketHub.Hub
}

// NewGameHandler crea una nueva instancia del handler de partidas
func NewGameHandler(coordinator *services.GameCoordinator, hub *websocketHub.Hub) *GameHandler {
	return &GameHandler{
		coordinator: coordinator,
		hub:         hub,
	}
}

// HandleWebSocket maneja GET /ws?roomId=...&playerId=...
// Cada mensaje entrante es una acción de juego {type, data}; el estado
// actualizado se difunde a toda la sala y los errores de guardia vuelven
// solo al remitente.
func (h *GameHandler) HandleWebSocket(ctx *fasthttp.RequestCtx) {
	roomID := string(ctx.QueryArgs().Peek("roomId"))
	playerID := string(ctx.QueryArgs().Peek("playerId"))
	if roomID == "" || playerID == "" {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		ctx.SetBodyString("roomId y playerId son requeridos")
		return
	}

	err := upgrader.Upgrade(ctx, func(ws *websocket.Conn) {
		defer ws.Close()

		client := &websocketHub.Client{Conn: ws, RoomID: roomID, PlayerID: playerID}
		h.hub.Register(client)
		defer h.hub.Unregister(client)

		// Enviar el estado actual de la partida al conectarse
		if state, err := h.coordinator.GetState(roomID); err == nil {
			message := websocketHub.Message{
				Type: "gameState",
				Data: state,
			}
			data, _ := json.Marshal(message)
			ws.WriteMessage(websocket.TextMessage, data)
		}

		for {
			_, raw, err := ws.ReadMessage()
			if err != nil {
				break
			}

			var action services.Action
			if err := json.Unmarshal(raw, &action); err != nil {
				h.sendActionError(ws, "mensaje inválido")
				continue
			}

			if err := h.coordinator.Dispatch(roomID, playerID, action); err != nil {
				h.sendActionError(ws, err.Error())
			}
		}
	})

	if err != nil {
		log.Printf("❌ Error en upgrade WebSocket: %v", err)
	}
}

func (h *GameHandler) sendActionError(ws *websocket.Conn, message string) {
	data, _ := json.Marshal(websocketHub.Message{
		Type: "actionError",
		Data: map[string]string{"error": message},
	})
	ws.WriteMessage(websocket.TextMessage, data)
}

// GetGameState maneja GET /api/rooms/{id}/state
func (h *GameHandler) GetGameState(ctx *fasthttp.RequestCtx) {
	roomID := ctx.UserValue("id").(string)

	state, err := h.coordinator.GetState(roomID)
	if err != nil {
		h.respondWithError(ctx, fasthttp.StatusNotFound, fmt.Sprintf("Partida no encontrada: %v", err))
		return
	}

	h.respondWithSuccess(ctx, map[string]interface{}{"gameState": state}, "Estado de la partida obtenido exitosamente")
}

// GetRankings maneja GET /api/rooms/{id}/rankings
func (h *GameHandler) GetRankings(ctx *fasthttp.RequestCtx) {
	roomID := ctx.UserValue("id").(string)

	rankings, err := h.coordinator.GetRankings(roomID)
	if err != nil {
		h.respondWithError(ctx, fasthttp.StatusNotFound, fmt.Sprintf("Partida no encontrada: %v", err))
		return
	}

	h.respondWithSuccess(ctx, map[string]interface{}{"rankings": rankings}, "Ranking obtenido exitosamente")
}

func (h *GameHandler) respondWithJSON(ctx *fasthttp.RequestCtx, statusCode int, response interface{}) {
	ctx.Response.Header.Set("Content-Type", "application/json")
	ctx.SetStatusCode(statusCode)

	jsonData, err := json.Marshal(response)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString(`{"success": false, "error": "Error al serializar respuesta"}`)
		return
	}

	ctx.SetBody(jsonData)
}

func (h *GameHandler) respondWithError(ctx *fasthttp.RequestCtx, statusCode int, message string) {
	h.respondWithJSON(ctx, statusCode, models.APIResponse{
		Success: false,
		Error:   message,
	})
}

func (h *GameHandler) respondWithSuccess(ctx *fasthttp.RequestCtx, data interface{}, message string) {
	h.respondWithJSON(ctx, fasthttp.StatusOK, models.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}
