package services

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/backsoul/cashflow/pkg/models"
	"github.com/backsoul/cashflow/pkg/redis"
)

const cardsKey = "cashflow:cards"

// DeckService maneja las plantillas de cartas de los cuatro mazos
type DeckService struct {
	redisClient *redis.RedisClient
}

// NewDeckService crea una nueva instancia del servicio de mazos
func NewDeckService(redisClient *redis.RedisClient) *DeckService {
	return &DeckService{
		redisClient: redisClient,
	}
}

// SeedFromFile carga las cartas desde el archivo JSON a Redis si aún no
// existen. Se invoca al arrancar el servidor.
func (s *DeckService) SeedFromFile(path string) error {
	exists, err := s.redisClient.Exists(cardsKey)
	if err != nil {
		return fmt.Errorf("error verificando cartas en Redis: %v", err)
	}
	if exists {
		log.Println("📚 Las cartas ya están cargadas en Redis")
		return nil
	}

	jsonData, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error leyendo archivo de cartas: %v", err)
	}
	return s.load(jsonData)
}

// Reload recarga las cartas desde el archivo JSON, reemplazando las de Redis
func (s *DeckService) Reload(path string) error {
	jsonData, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error leyendo archivo de cartas: %v", err)
	}
	return s.load(jsonData)
}

func (s *DeckService) load(jsonData []byte) error {
	var cardsData models.CardsData
	if err := json.Unmarshal(jsonData, &cardsData); err != nil {
		return fmt.Errorf("error parsing JSON de cartas: %v", err)
	}

	total := len(cardsData.Templates.SmallDeals) + len(cardsData.Templates.BigDeals) +
		len(cardsData.Templates.Market) + len(cardsData.Templates.Expenses)
	if total == 0 {
		return fmt.Errorf("el archivo de cartas no contiene plantillas")
	}

	log.Printf("📚 Cargando %d plantillas de cartas a Redis...", total)
	if err := s.redisClient.Set(cardsKey, string(jsonData), 0); err != nil {
		return fmt.Errorf("error guardando cartas: %v", err)
	}

	log.Printf("✅ %d plantillas cargadas exitosamente en Redis", total)
	return nil
}

// GetTemplates obtiene las plantillas de cartas desde Redis
func (s *DeckService) GetTemplates() (models.CardTemplates, error) {
	cardsJSON, err := s.redisClient.Get(cardsKey)
	if err == redis.Nil {
		return models.CardTemplates{}, fmt.Errorf("no hay cartas cargadas: usa POST /api/cards/reload")
	}
	if err != nil {
		return models.CardTemplates{}, fmt.Errorf("error leyendo cartas de Redis: %v", err)
	}

	var cardsData models.CardsData
	if err := json.Unmarshal([]byte(cardsJSON), &cardsData); err != nil {
		return models.CardTemplates{}, fmt.Errorf("error parsing cartas: %v", err)
	}
	return cardsData.Templates, nil
}

// GetMetadata obtiene los metadatos del archivo de cartas
func (s *DeckService) GetMetadata() (map[string]interface{}, error) {
	cardsJSON, err := s.redisClient.Get(cardsKey)
	if err != nil {
		return nil, fmt.Errorf("cartas no encontradas en Redis: %v", err)
	}

	var raw struct {
		Metadata map[string]interface{} `json:"metadata"`
	}
	if err := json.Unmarshal([]byte(cardsJSON), &raw); err != nil {
		return nil, fmt.Errorf("error parsing metadatos: %v", err)
	}
	return raw.Metadata, nil
}
