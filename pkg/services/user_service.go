package services

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/backsoul/cashflow/pkg/redis"
)

// UserService maneja los nombres y estadísticas de los jugadores
type UserService struct {
	redisClient *redis.RedisClient
}

// LeaderboardEntry es la posición de un jugador en la tabla global
type LeaderboardEntry struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	Wins     int    `json:"wins"`
	Games    int    `json:"games"`
	Avatar   string `json:"avatar"`
}

// NewUserService crea una nueva instancia del servicio de usuarios
func NewUserService(redisClient *redis.RedisClient) *UserService {
	return &UserService{
		redisClient: redisClient,
	}
}

// RegisterName asocia un nombre visible a un jugador
func (s *UserService) RegisterName(userID, name string) error {
	return s.redisClient.Set(fmt.Sprintf("cashflow:user:%s:name", userID), name, 0)
}

// GetName obtiene el nombre visible de un jugador
func (s *UserService) GetName(userID string) (string, error) {
	name, err := s.redisClient.Get(fmt.Sprintf("cashflow:user:%s:name", userID))
	if err == redis.Nil {
		return "", fmt.Errorf("el usuario %s no tiene nombre registrado", userID)
	}
	if err != nil {
		return "", fmt.Errorf("error leyendo usuario: %v", err)
	}
	return name, nil
}

// RecordGame incrementa el contador de partidas jugadas
func (s *UserService) RecordGame(userID string) error {
	_, err := s.redisClient.HIncrBy("cashflow:user_stats", userID+":games", 1)
	return err
}

// RecordWin incrementa el contador de victorias
func (s *UserService) RecordWin(userID string) error {
	_, err := s.redisClient.HIncrBy("cashflow:user_stats", userID+":wins", 1)
	return err
}

// GetLeaderboard arma la tabla global de victorias
func (s *UserService) GetLeaderboard(limit int) ([]LeaderboardEntry, error) {
	stats, err := s.redisClient.HGetAll("cashflow:user_stats")
	if err != nil {
		return nil, fmt.Errorf("error obteniendo estadísticas: %v", err)
	}

	type userStats struct {
		wins  int
		games int
	}
	byUser := make(map[string]*userStats)
	for field, value := range stats {
		n, err := strconv.Atoi(value)
		if err != nil {
			continue
		}
		// Campos con forma <userID>:wins o <userID>:games
		for _, suffix := range []string{":wins", ":games"} {
			if len(field) > len(suffix) && field[len(field)-len(suffix):] == suffix {
				userID := field[:len(field)-len(suffix)]
				if byUser[userID] == nil {
					byUser[userID] = &userStats{}
				}
				if suffix == ":wins" {
					byUser[userID].wins = n
				} else {
					byUser[userID].games = n
				}
			}
		}
	}

	avatars := []string{"🎯", "⭐", "🔥", "💎", "🌟", "🎪", "🚀", "👤", "🎨", "🎵"}

	var entries []LeaderboardEntry
	for userID, st := range byUser {
		name, err := s.GetName(userID)
		if err != nil {
			name = userID
		}
		entries = append(entries, LeaderboardEntry{
			Name:  name,
			Wins:  st.wins,
			Games: st.games,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Wins != entries[j].Wins {
			return entries[i].Wins > entries[j].Wins
		}
		return entries[i].Games < entries[j].Games
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Position = i + 1
		entries[i].Avatar = avatars[i%len(avatars)]
	}
	return entries, nil
}
