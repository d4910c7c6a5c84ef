package handlers

import (
	"encoding/json"
	"fmt"

	"github.com/backsoul/cashflow/pkg/models"
	"github.com/backsoul/cashflow/pkg/services"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/valyala/fasthttp"
)

// RoomHandler maneja las peticiones HTTP para salas
type RoomHandler struct {
	roomService *services.RoomService
	userService *services.UserService
	coordinator *services.GameCoordinator
	publicURL   string
}

// NewRoomHandler crea una nueva instancia del handler de salas
func NewRoomHandler(roomService *services.RoomService, userService *services.UserService, coordinator *services.GameCoordinator, publicURL string) *RoomHandler {
	return &RoomHandler{
		roomService: roomService,
		userService: userService,
		coordinator: coordinator,
		publicURL:   publicURL,
	}
}

// CreateRoom maneja POST /api/rooms
func (h *RoomHandler) CreateRoom(ctx *fasthttp.RequestCtx) {
	var request struct {
		Name       string `json:"name"`
		PlayerID   string `json:"playerId"`
		PlayerName string `json:"playerName"`
		MaxPlayers int    `json:"maxPlayers"`
	}
	if err := json.Unmarshal(ctx.PostBody(), &request); err != nil {
		h.respondWithError(ctx, fasthttp.StatusBadRequest, "JSON inválido")
		return
	}
	if request.Name == "" || request.PlayerName == "" {
		h.respondWithError(ctx, fasthttp.StatusBadRequest, "Nombre de la sala y del jugador son requeridos")
		return
	}
	if request.PlayerID == "" {
		request.PlayerID = uuid.New().String()
	}

	if err := h.userService.RegisterName(request.PlayerID, request.PlayerName); err != nil {
		h.respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error registrando jugador: %v", err))
		return
	}

	room, err := h.roomService.CreateRoom(request.Name, request.PlayerID, request.PlayerName, request.MaxPlayers)
	if err != nil {
		h.respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error creando sala: %v", err))
		return
	}

	h.respondWithSuccess(ctx, map[string]interface{}{
		"room":     room,
		"playerId": request.PlayerID,
	}, "Sala creada exitosamente")
}

// GetRoom maneja GET /api/rooms/{id}
func (h *RoomHandler) GetRoom(ctx *fasthttp.RequestCtx) {
	roomID := ctx.UserValue("id").(string)

	room, err := h.roomService.GetRoom(roomID)
	if err != nil {
		h.respondWithError(ctx, fasthttp.StatusNotFound, fmt.Sprintf("Sala no encontrada: %v", err))
		return
	}

	h.respondWithSuccess(ctx, map[string]interface{}{"room": room}, "Sala obtenida exitosamente")
}

// ListRooms maneja GET /api/rooms?status=waiting
func (h *RoomHandler) ListRooms(ctx *fasthttp.RequestCtx) {
	status := string(ctx.QueryArgs().Peek("status"))
	if status == "" {
		status = models.RoomWaiting
	}

	rooms, err := h.roomService.ListByStatus(status)
	if err != nil {
		h.respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error obteniendo salas: %v", err))
		return
	}

	h.respondWithSuccess(ctx, map[string]interface{}{
		"rooms": rooms,
		"count": len(rooms),
	}, fmt.Sprintf("%d salas obtenidas", len(rooms)))
}

// JoinRoom maneja POST /api/rooms/{id}/join
func (h *RoomHandler) JoinRoom(ctx *fasthttp.RequestCtx) {
	roomID := ctx.UserValue("id").(string)

	var request struct {
		PlayerID   string `json:"playerId"`
		PlayerName string `json:"playerName"`
	}
	if err := json.Unmarshal(ctx.PostBody(), &request); err != nil {
		h.respondWithError(ctx, fasthttp.StatusBadRequest, "JSON inválido")
		return
	}
	if request.PlayerName == "" {
		h.respondWithError(ctx, fasthttp.StatusBadRequest, "Nombre del jugador es requerido")
		return
	}
	if request.PlayerID == "" {
		request.PlayerID = uuid.New().String()
	}

	if err := h.userService.RegisterName(request.PlayerID, request.PlayerName); err != nil {
		h.respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error registrando jugador: %v", err))
		return
	}

	room, err := h.roomService.JoinRoom(roomID, request.PlayerID, request.PlayerName)
	if err != nil {
		h.respondWithError(ctx, fasthttp.StatusBadRequest, fmt.Sprintf("No se pudo unir a la sala: %v", err))
		return
	}

	h.respondWithSuccess(ctx, map[string]interface{}{
		"room":     room,
		"playerId": request.PlayerID,
	}, "Unido a la sala exitosamente")
}

// SetReady maneja POST /api/rooms/{id}/ready
func (h *RoomHandler) SetReady(ctx *fasthttp.RequestCtx) {
	roomID := ctx.UserValue("id").(string)

	var request struct {
		PlayerID string `json:"playerId"`
		Ready    bool   `json:"ready"`
	}
	if err := json.Unmarshal(ctx.PostBody(), &request); err != nil {
		h.respondWithError(ctx, fasthttp.StatusBadRequest, "JSON inválido")
		return
	}

	room, err := h.roomService.SetReady(roomID, request.PlayerID, request.Ready)
	if err != nil {
		h.respondWithError(ctx, fasthttp.StatusBadRequest, fmt.Sprintf("Error actualizando estado: %v", err))
		return
	}

	h.respondWithSuccess(ctx, map[string]interface{}{"room": room}, "Estado actualizado")
}

// LeaveRoom maneja POST /api/rooms/{id}/leave
func (h *RoomHandler) LeaveRoom(ctx *fasthttp.RequestCtx) {
	roomID := ctx.UserValue("id").(string)

	var request struct {
		PlayerID string `json:"playerId"`
	}
	if err := json.Unmarshal(ctx.PostBody(), &request); err != nil {
		h.respondWithError(ctx, fasthttp.StatusBadRequest, "JSON inválido")
		return
	}

	room, err := h.roomService.LeaveRoom(roomID, request.PlayerID)
	if err != nil {
		h.respondWithError(ctx, fasthttp.StatusBadRequest, fmt.Sprintf("Error abandonando la sala: %v", err))
		return
	}

	if room == nil {
		h.respondWithSuccess(ctx, map[string]interface{}{"deleted": true}, "Sala eliminada al quedar vacía")
		return
	}
	h.respondWithSuccess(ctx, map[string]interface{}{"room": room}, "Saliste de la sala")
}

// StartGame maneja POST /api/rooms/{id}/start
func (h *RoomHandler) StartGame(ctx *fasthttp.RequestCtx) {
	roomID := ctx.UserValue("id").(string)

	var request struct {
		PlayerID string `json:"playerId"`
	}
	if err := json.Unmarshal(ctx.PostBody(), &request); err != nil {
		h.respondWithError(ctx, fasthttp.StatusBadRequest, "JSON inválido")
		return
	}

	if err := h.coordinator.StartGame(roomID, request.PlayerID); err != nil {
		h.respondWithError(ctx, fasthttp.StatusBadRequest, fmt.Sprintf("No se pudo iniciar la partida: %v", err))
		return
	}

	h.respondWithSuccess(ctx, map[string]interface{}{"roomId": roomID}, "Partida iniciada exitosamente")
}

// GetRoomQR maneja GET /api/rooms/{id}/qr y devuelve un PNG con el enlace
// para unirse desde el teléfono
func (h *RoomHandler) GetRoomQR(ctx *fasthttp.RequestCtx) {
	roomID := ctx.UserValue("id").(string)

	if _, err := h.roomService.GetRoom(roomID); err != nil {
		h.respondWithError(ctx, fasthttp.StatusNotFound, fmt.Sprintf("Sala no encontrada: %v", err))
		return
	}

	joinURL := fmt.Sprintf("%s/join/%s", h.publicURL, roomID)
	png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
	if err != nil {
		h.respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error generando QR: %v", err))
		return
	}

	ctx.SetContentType("image/png")
	ctx.SetBody(png)
}

// GetLeaderboard maneja GET /api/leaderboard
func (h *RoomHandler) GetLeaderboard(ctx *fasthttp.RequestCtx) {
	entries, err := h.userService.GetLeaderboard(20)
	if err != nil {
		h.respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error obteniendo tabla de posiciones: %v", err))
		return
	}

	h.respondWithSuccess(ctx, map[string]interface{}{
		"leaderboard": entries,
		"count":       len(entries),
	}, "Tabla de posiciones obtenida exitosamente")
}

// respondWithJSON envía una respuesta JSON
func (h *RoomHandler) respondWithJSON(ctx *fasthttp.RequestCtx, statusCode int, response interface{}) {
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

// respondWithError envía una respuesta de error
func (h *RoomHandler) respondWithError(ctx *fasthttp.RequestCtx, statusCode int, message string) {
	response := models.APIResponse{
		Success: false,
		Error:   message,
	}
	h.respondWithJSON(ctx, statusCode, response)
}

// respondWithSuccess envía una respuesta exitosa
func (h *RoomHandler) respondWithSuccess(ctx *fasthttp.RequestCtx, data interface{}, message string) {
	response := models.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
	h.respondWithJSON(ctx, fasthttp.StatusOK, response)
}
