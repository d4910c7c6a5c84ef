package models

import (
	"encoding/json"
	"time"
)

// Estados de una sala
const (
	RoomWaiting  = "waiting"
	RoomPlaying  = "playing"
	RoomFinished = "finished"
)

// Límites de jugadores por sala
const (
	MinPlayers = 2
	MaxPlayers = 10
)

// RoomPlayer es un jugador dentro del lobby de una sala
type RoomPlayer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Ready bool   `json:"ready"`
}

// Room es el registro durable de una sala: lobby, estado y el último
// snapshot serializado de la partida para recuperación tras reinicios
type Room struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	HostID     string          `json:"hostId"`
	Status     string          `json:"status"`
	MaxPlayers int             `json:"maxPlayers"`
	Players    []RoomPlayer    `json:"players"`
	GameState  json.RawMessage `json:"gameState,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// FindPlayer busca un jugador del lobby por ID
func (r *Room) FindPlayer(playerID string) *RoomPlayer {
	for i := range r.Players {
		if r.Players[i].ID == playerID {
			return &r.Players[i]
		}
	}
	return nil
}

// AllReady indica si todos los jugadores marcaron listo
func (r *Room) AllReady() bool {
	if len(r.Players) < MinPlayers {
		return false
	}
	for _, p := range r.Players {
		if !p.Ready {
			return false
		}
	}
	return true
}
