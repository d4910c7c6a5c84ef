package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/backsoul/cashflow/pkg/models"
	"github.com/backsoul/cashflow/pkg/redis"
	"github.com/google/uuid"
)

// RoomService maneja las salas de juego y su persistencia en Redis
type RoomService struct {
	redisClient *redis.RedisClient
}

// NewRoomService crea una nueva instancia del servicio de salas
func NewRoomService(redisClient *redis.RedisClient) *RoomService {
	return &RoomService{
		redisClient: redisClient,
	}
}

// CreateRoom crea una sala nueva con el anfitrión como primer jugador
func (s *RoomService) CreateRoom(name, hostID, hostName string, maxPlayers int) (*models.Room, error) {
	if maxPlayers < models.MinPlayers || maxPlayers > models.MaxPlayers {
		maxPlayers = models.MaxPlayers
	}

	room := &models.Room{
		ID:         uuid.New().String(),
		Name:       name,
		HostID:     hostID,
		Status:     models.RoomWaiting,
		MaxPlayers: maxPlayers,
		Players: []models.RoomPlayer{
			{ID: hostID, Name: hostName, Ready: false},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.saveRoom(room); err != nil {
		return nil, fmt.Errorf("error guardando sala: %v", err)
	}
	if err := s.addToStatusSet(room.ID, room.Status); err != nil {
		log.Printf("⚠️ Error agregando sala al índice de estado: %v", err)
	}

	log.Printf("✅ Sala «%s» creada por %s (ID: %s)", name, hostName, room.ID)
	return room, nil
}

// GetRoom obtiene una sala por ID
func (s *RoomService) GetRoom(roomID string) (*models.Room, error) {
	roomJSON, err := s.redisClient.Get(fmt.Sprintf("cashflow:room:%s", roomID))
	if err != nil {
		return nil, fmt.Errorf("sala no encontrada: %v", err)
	}

	var room models.Room
	if err := json.Unmarshal([]byte(roomJSON), &room); err != nil {
		return nil, fmt.Errorf("error parsing sala: %v", err)
	}
	return &room, nil
}

// JoinRoom agrega un jugador a una sala en espera
func (s *RoomService) JoinRoom(roomID, playerID, playerName string) (*models.Room, error) {
	room, err := s.GetRoom(roomID)
	if err != nil {
		return nil, err
	}
	if room.Status != models.RoomWaiting {
		return nil, fmt.Errorf("la sala ya no acepta jugadores")
	}
	if room.FindPlayer(playerID) != nil {
		// Reingreso: el jugador ya está en la sala
		return room, nil
	}
	if len(room.Players) >= room.MaxPlayers {
		return nil, fmt.Errorf("la sala está llena (%d/%d)", len(room.Players), room.MaxPlayers)
	}

	room.Players = append(room.Players, models.RoomPlayer{ID: playerID, Name: playerName})
	if err := s.UpdateRoom(room); err != nil {
		return nil, err
	}

	log.Printf("👋 %s se unió a la sala %s (%d/%d)", playerName, room.Name, len(room.Players), room.MaxPlayers)
	return room, nil
}

// SetReady marca a un jugador como listo o no listo
func (s *RoomService) SetReady(roomID, playerID string, ready bool) (*models.Room, error) {
	room, err := s.GetRoom(roomID)
	if err != nil {
		return nil, err
	}
	player := room.FindPlayer(playerID)
	if player == nil {
		return nil, fmt.Errorf("el jugador no pertenece a la sala")
	}
	player.Ready = ready
	if err := s.UpdateRoom(room); err != nil {
		return nil, err
	}
	return room, nil
}

// LeaveRoom saca a un jugador de una sala en espera. Si el anfitrión se va,
// el siguiente jugador hereda la sala; si queda vacía se elimina.
func (s *RoomService) LeaveRoom(roomID, playerID string) (*models.Room, error) {
	room, err := s.GetRoom(roomID)
	if err != nil {
		return nil, err
	}
	if room.Status != models.RoomWaiting {
		return nil, fmt.Errorf("no se puede abandonar una partida en curso")
	}

	for i, p := range room.Players {
		if p.ID == playerID {
			room.Players = append(room.Players[:i], room.Players[i+1:]...)
			break
		}
	}

	if len(room.Players) == 0 {
		if err := s.DeleteRoom(roomID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if room.HostID == playerID {
		room.HostID = room.Players[0].ID
		log.Printf("👑 %s es el nuevo anfitrión de la sala %s", room.Players[0].Name, room.Name)
	}

	if err := s.UpdateRoom(room); err != nil {
		return nil, err
	}
	return room, nil
}

// UpdateRoom persiste los cambios de una sala
func (s *RoomService) UpdateRoom(room *models.Room) error {
	room.UpdatedAt = time.Now()
	return s.saveRoom(room)
}

// SetStatus cambia el estado de la sala y sus índices
func (s *RoomService) SetStatus(room *models.Room, status string) error {
	if err := s.removeFromStatusSet(room.ID, room.Status); err != nil {
		log.Printf("⚠️ Error quitando sala del índice %s: %v", room.Status, err)
	}
	room.Status = status
	if err := s.addToStatusSet(room.ID, status); err != nil {
		log.Printf("⚠️ Error agregando sala al índice %s: %v", status, err)
	}
	return s.UpdateRoom(room)
}

// SaveGameState guarda el estado serializado de la partida dentro de la sala
func (s *RoomService) SaveGameState(roomID string, state json.RawMessage) error {
	room, err := s.GetRoom(roomID)
	if err != nil {
		return err
	}
	room.GameState = state
	return s.UpdateRoom(room)
}

// ListByStatus obtiene todas las salas con un estado dado
func (s *RoomService) ListByStatus(status string) ([]models.Room, error) {
	roomIDs, err := s.redisClient.GetSetMembers(fmt.Sprintf("cashflow:rooms:%s", status))
	if err != nil {
		return nil, fmt.Errorf("error obteniendo salas %s: %v", status, err)
	}

	var rooms []models.Room
	for _, roomID := range roomIDs {
		room, err := s.GetRoom(roomID)
		if err != nil {
			// Sala expirada o corrupta: se limpia del índice
			log.Printf("⚠️ Sala %s en índice %s no recuperable: %v", roomID, status, err)
			s.removeFromStatusSet(roomID, status)
			continue
		}
		rooms = append(rooms, *room)
	}
	return rooms, nil
}

// DeleteRoom elimina una sala y sus índices
func (s *RoomService) DeleteRoom(roomID string) error {
	room, err := s.GetRoom(roomID)
	if err == nil {
		s.removeFromStatusSet(roomID, room.Status)
	}
	log.Printf("🗑️ Sala %s eliminada", roomID)
	return s.redisClient.Del(fmt.Sprintf("cashflow:room:%s", roomID))
}

// Métodos privados auxiliares

func (s *RoomService) saveRoom(room *models.Room) error {
	roomJSON, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("error serializando sala: %v", err)
	}
	key := fmt.Sprintf("cashflow:room:%s", room.ID)
	return s.redisClient.Set(key, string(roomJSON), 24*time.Hour) // TTL de 24 horas
}

func (s *RoomService) addToStatusSet(roomID, status string) error {
	return s.redisClient.AddToSet(fmt.Sprintf("cashflow:rooms:%s", status), roomID)
}

func (s *RoomService) removeFromStatusSet(roomID, status string) error {
	return s.redisClient.RemoveFromSet(fmt.Sprintf("cashflow:rooms:%s", status), roomID)
}
