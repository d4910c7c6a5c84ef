package services

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/backsoul/cashflow/pkg/models"
	"github.com/backsoul/cashflow/pkg/redis"
)

const professionsKey = "cashflow:professions"

// ProfessionService maneja las profesiones que definen las finanzas
// iniciales de cada jugador
type ProfessionService struct {
	redisClient *redis.RedisClient
}

// NewProfessionService crea una nueva instancia del servicio de profesiones
func NewProfessionService(redisClient *redis.RedisClient) *ProfessionService {
	return &ProfessionService{
		redisClient: redisClient,
	}
}

// SeedFromFile carga las profesiones desde el archivo JSON a Redis si aún
// no existen
func (s *ProfessionService) SeedFromFile(path string) error {
	exists, err := s.redisClient.Exists(professionsKey)
	if err != nil {
		return fmt.Errorf("error verificando profesiones en Redis: %v", err)
	}
	if exists {
		log.Println("💼 Las profesiones ya están cargadas en Redis")
		return nil
	}

	jsonData, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error leyendo archivo de profesiones: %v", err)
	}

	var data models.ProfessionsData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return fmt.Errorf("error parsing JSON de profesiones: %v", err)
	}
	if len(data.Professions) == 0 {
		return fmt.Errorf("el archivo de profesiones está vacío")
	}

	if err := s.redisClient.Set(professionsKey, string(jsonData), 0); err != nil {
		return fmt.Errorf("error guardando profesiones: %v", err)
	}

	log.Printf("✅ %d profesiones cargadas exitosamente en Redis", len(data.Professions))
	return nil
}

// GetAll obtiene todas las profesiones disponibles
func (s *ProfessionService) GetAll() ([]models.Profession, error) {
	professionsJSON, err := s.redisClient.Get(professionsKey)
	if err != nil {
		return nil, fmt.Errorf("profesiones no encontradas en Redis: %v", err)
	}

	var data models.ProfessionsData
	if err := json.Unmarshal([]byte(professionsJSON), &data); err != nil {
		return nil, fmt.Errorf("error parsing profesiones: %v", err)
	}
	return data.Professions, nil
}

// GetRandom obtiene una profesión aleatoria para asignar a un jugador
func (s *ProfessionService) GetRandom() (*models.Profession, error) {
	professions, err := s.GetAll()
	if err != nil {
		return nil, err
	}
	p := professions[rand.Intn(len(professions))]
	return &p, nil
}

// GetByName busca una profesión por su nombre
func (s *ProfessionService) GetByName(name string) (*models.Profession, error) {
	professions, err := s.GetAll()
	if err != nil {
		return nil, err
	}
	for _, p := range professions {
		if p.Name == name {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("profesión %s no encontrada", name)
}
