package game

import (
	"testing"

	"github.com/backsoul/cashflow/pkg/models"
)

func TestCalculateRankingsOrder(t *testing.T) {
	e := newTestEngine(t, "Ana", "Beto", "Carla", "Dario")

	var ganador, pista, rataRico, rataPobre *models.PlayerState
	for i, p := range e.state.Players {
		switch i {
		case 0:
			ganador = p
			ganador.IsFastTrack = true
			ganador.HasWon = true
			ganador.PassiveIncome = 150000
			ganador.FastTrackBaseline = 100000
		case 1:
			pista = p
			pista.IsFastTrack = true
			pista.PassiveIncome = 110000
			pista.FastTrackBaseline = 100000
		case 2:
			rataRico = p
			rataRico.PassiveIncome = 5000
		case 3:
			rataPobre = p
			rataPobre.PassiveIncome = 200
		}
	}

	rankings := e.CalculateRankings()
	if len(rankings) != 4 {
		t.Fatalf("rankings = %d entradas, se esperaban 4", len(rankings))
	}

	wantOrder := []string{ganador.UserID, pista.UserID, rataRico.UserID, rataPobre.UserID}
	for i, want := range wantOrder {
		if rankings[i].UserID != want {
			t.Errorf("posición %d: %s, se esperaba %s", i+1, rankings[i].Name, want)
		}
		if rankings[i].Position != i+1 {
			t.Errorf("Position = %d, se esperaba %d", rankings[i].Position, i+1)
		}
	}
}

func TestRankingsCashBreaksTies(t *testing.T) {
	e := newTestEngine(t, "Ana", "Beto")
	p1 := e.state.Players[0]
	p2 := e.state.Players[1]

	p1.PassiveIncome = 1000
	p2.PassiveIncome = 1000
	p1.Cash = 500
	p2.Cash = 9000

	rankings := e.CalculateRankings()
	if rankings[0].UserID != p2.UserID {
		t.Errorf("primer lugar = %s, el efectivo debe desempatar a favor de %s", rankings[0].Name, p2.Name)
	}
}
