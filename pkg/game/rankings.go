package game

import (
	"sort"

	"github.com/backsoul/cashflow/pkg/models"
)

// RankingEntry es la posición de un jugador en el ranking de la sala
type RankingEntry struct {
	Position      int    `json:"position"`
	UserID        string `json:"userId"`
	Name          string `json:"name"`
	HasWon        bool   `json:"hasWon"`
	IsFastTrack   bool   `json:"isFastTrack"`
	PassiveIncome int    `json:"passiveIncome"`
	PassiveGain   int    `json:"passiveGain"`
	Cash          int    `json:"cash"`
}

// CalculateRankings ordena a los jugadores por progreso: ganadores primero,
// luego pista rápida por crecimiento de ingreso pasivo, luego carrera de la
// rata por ingreso pasivo y efectivo como desempate
func (e *Engine) CalculateRankings() []RankingEntry {
	entries := make([]RankingEntry, 0, len(e.state.Players))
	for _, p := range e.state.Players {
		entries = append(entries, RankingEntry{
			UserID:        p.UserID,
			Name:          p.Name,
			HasWon:        p.HasWon,
			IsFastTrack:   p.IsFastTrack,
			PassiveIncome: p.PassiveIncome,
			PassiveGain:   p.PassiveGain(),
			Cash:          p.Cash,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.HasWon != b.HasWon {
			return a.HasWon
		}
		if a.IsFastTrack != b.IsFastTrack {
			return a.IsFastTrack
		}
		if a.PassiveGain != b.PassiveGain {
			return a.PassiveGain > b.PassiveGain
		}
		if a.PassiveIncome != b.PassiveIncome {
			return a.PassiveIncome > b.PassiveIncome
		}
		return a.Cash > b.Cash
	})

	for i := range entries {
		entries[i].Position = i + 1
	}
	return entries
}

// CalculateFinalRankings es el ranking al cierre de la partida
func (e *Engine) CalculateFinalRankings() []RankingEntry {
	return e.CalculateRankings()
}

// Winners devuelve los jugadores que ya ganaron la partida
func (e *Engine) Winners() []*models.PlayerState {
	var winners []*models.PlayerState
	for _, p := range e.state.Players {
		if p.HasWon {
			winners = append(winners, p)
		}
	}
	return winners
}
