package handlers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/backsoul/cashflow/pkg/models"
	"github.com/backsoul/cashflow/pkg/redis"
	"github.com/backsoul/cashflow/pkg/services"
	"github.com/valyala/fasthttp"
)

// DeckHandler maneja las peticiones HTTP de cartas, profesiones y salud
type DeckHandler struct {
	deckService       *services.DeckService
	professionService *services.ProfessionService
	redisClient       *redis.RedisClient
	cardsPath         string
}

// NewDeckHandler crea una nueva instancia del handler de mazos
func NewDeckHandler(deckService *services.DeckService, professionService *services.ProfessionService, redisClient *redis.RedisClient, cardsPath string) *DeckHandler {
	return &DeckHandler{
		deckService:       deckService,
		professionService: professionService,
		redisClient:       redisClient,
		cardsPath:         cardsPath,
	}
}

// HealthCheck maneja GET /api/health
func (h *DeckHandler) HealthCheck(ctx *fasthttp.RequestCtx) {
	if err := h.redisClient.HealthCheck(); err != nil {
		h.respondWithError(ctx, fasthttp.StatusServiceUnavailable, fmt.Sprintf("Redis no disponible: %v", err))
		return
	}

	h.respondWithSuccess(ctx, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	}, "Servidor funcionando correctamente")
}

// GetCardsMetadata maneja GET /api/cards/metadata
func (h *DeckHandler) GetCardsMetadata(ctx *fasthttp.RequestCtx) {
	metadata, err := h.deckService.GetMetadata()
	if err != nil {
		h.respondWithError(ctx, fasthttp.StatusNotFound, fmt.Sprintf("Metadatos no encontrados: %v", err))
		return
	}

	h.respondWithSuccess(ctx, metadata, "Metadatos obtenidos exitosamente")
}

// ReloadCards maneja POST /api/cards/reload
func (h *DeckHandler) ReloadCards(ctx *fasthttp.RequestCtx) {
	if err := h.deckService.Reload(h.cardsPath); err != nil {
		h.respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error recargando cartas: %v", err))
		return
	}

	h.respondWithSuccess(ctx, map[string]interface{}{
		"timestamp": time.Now().Format(time.RFC3339),
	}, "Cartas recargadas exitosamente")
}

// GetProfessions maneja GET /api/professions
func (h *DeckHandler) GetProfessions(ctx *fasthttp.RequestCtx) {
	professions, err := h.professionService.GetAll()
	if err != nil {
		h.respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error obteniendo profesiones: %v", err))
		return
	}

	h.respondWithSuccess(ctx, map[string]interface{}{
		"professions": professions,
		"count":       len(professions),
	}, fmt.Sprintf("%d profesiones obtenidas", len(professions)))
}

func (h *DeckHandler) respondWithJSON(ctx *fasthttp.RequestCtx, statusCode int, response interface{}) {
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

func (h *DeckHandler) respondWithError(ctx *fasthttp.RequestCtx, statusCode int, message string) {
	h.respondWithJSON(ctx, statusCode, models.APIResponse{
		Success: false,
		Error:   message,
	})
}

func (h *DeckHandler) respondWithSuccess(ctx *fasthttp.RequestCtx, data interface{}, message string) {
	h.respondWithJSON(ctx, fasthttp.StatusOK, models.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}
