package game

import (
	"testing"

	"github.com/backsoul/cashflow/pkg/models"
)

func TestAdvanceTurnSkipsIneligiblePlayers(t *testing.T) {
	e := newTestEngine(t, "Ana", "Beto", "Carla")
	idx := e.state.CurrentPlayerIndex
	n := len(e.state.Players)

	// El siguiente en la rotación queda fuera de juego
	next := e.state.Players[(idx+1)%n]
	next.IsBankrupted = true

	if err := e.EndTurn(e.state.CurrentPlayer().UserID); err != nil {
		t.Fatalf("EndTurn: %v", err)
	}

	want := e.state.Players[(idx+2)%n]
	if got := e.state.CurrentPlayer(); got.UserID != want.UserID {
		t.Errorf("turno de %s, se esperaba %s (saltando al expulsado)", got.Name, want.Name)
	}
	if e.state.Phase != models.PhaseRoll {
		t.Errorf("Phase = %s, se esperaba %s", e.state.Phase, models.PhaseRoll)
	}
}

func TestAdvanceTurnConsumesPenaltyTurns(t *testing.T) {
	e := newTestEngine(t, "Ana", "Beto", "Carla")
	idx := e.state.CurrentPlayerIndex
	n := len(e.state.Players)

	penalized := e.state.Players[(idx+1)%n]
	penalized.SkippedTurns = 1

	if err := e.EndTurn(e.state.CurrentPlayer().UserID); err != nil {
		t.Fatalf("EndTurn: %v", err)
	}

	if penalized.SkippedTurns != 0 {
		t.Errorf("SkippedTurns = %d, se esperaba 0 (el castigo se consume al rotar)", penalized.SkippedTurns)
	}
	want := e.state.Players[(idx+2)%n]
	if got := e.state.CurrentPlayer(); got.UserID != want.UserID {
		t.Errorf("turno de %s, se esperaba %s", got.Name, want.Name)
	}
}

func TestForceEndTurnDiscardsPendingCard(t *testing.T) {
	e := newTestEngine(t, "Ana", "Beto")
	smallBefore := e.cards.DeckCounts()[models.DeckSmall].Remaining

	e.state.CurrentCard = &models.Card{
		ID: "pending", Type: models.CardRealEstate, Title: "Casa pequeña",
		Cost: 50000, Deck: models.DeckSmall,
	}
	e.ForceEndTurn()

	if e.state.CurrentCard != nil {
		t.Error("la carta pendiente no se descartó al vencer el turno")
	}
	if got := e.cards.DeckCounts()[models.DeckSmall].Remaining; got != smallBefore+1 {
		t.Errorf("el mazo pequeño tiene %d cartas, se esperaban %d", got, smallBefore+1)
	}
}

func TestCharityDonation(t *testing.T) {
	e := newTestEngine(t, "Ana", "Beto")
	p := e.state.CurrentPlayer()
	p.Cash = 10000
	e.state.Phase = models.PhaseCharityChoice

	if err := e.Charity(p.UserID, true); err != nil {
		t.Fatalf("Charity: %v", err)
	}

	// Dona el 10% del ingreso total (3300 + 0 = 3300 → 330)
	if p.Cash != 10000-330 {
		t.Errorf("Cash = %d, se esperaba %d", p.Cash, 10000-330)
	}
	if p.CharityTurns != models.CharityTurnsGained {
		t.Errorf("CharityTurns = %d, se esperaba %d", p.CharityTurns, models.CharityTurnsGained)
	}
	if e.state.CurrentPlayer().UserID == p.UserID {
		t.Error("la decisión de caridad no cerró el turno")
	}
}

func TestCharityDeclinedAlsoEndsTurn(t *testing.T) {
	e := newTestEngine(t, "Ana", "Beto")
	p := e.state.CurrentPlayer()
	cashBefore := p.Cash
	e.state.Phase = models.PhaseCharityChoice

	if err := e.Charity(p.UserID, false); err != nil {
		t.Fatalf("Charity: %v", err)
	}
	if p.Cash != cashBefore || p.CharityTurns != 0 {
		t.Error("declinar la caridad modificó las finanzas")
	}
	if e.state.CurrentPlayer().UserID == p.UserID {
		t.Error("declinar la caridad no cerró el turno")
	}
}

func TestRollBabyRespectsChildCap(t *testing.T) {
	e := newTestEngine(t, "Ana", "Beto")
	p := e.state.CurrentPlayer()
	p.ChildrenCount = models.MaxChildren
	e.state.Phase = models.PhaseBabyRoll

	if err := e.RollBaby(p.UserID); err != nil {
		t.Fatalf("RollBaby: %v", err)
	}
	if p.ChildrenCount != models.MaxChildren {
		t.Errorf("ChildrenCount = %d, se esperaba el tope %d", p.ChildrenCount, models.MaxChildren)
	}
	if e.state.Phase != models.PhaseAction {
		t.Errorf("Phase = %s, se esperaba %s", e.state.Phase, models.PhaseAction)
	}
}

func TestDecideDownsizedOptions(t *testing.T) {
	tests := []struct {
		name      string
		option    string
		wantPaid  int
		wantSkips int
	}{
		{"pagar una vez y perder dos turnos", DownsizedPayOnce, 2200, 2},
		{"pagar el doble sin perder turnos", DownsizedPayTwice, 4400, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine(t, "Ana", "Beto")
			p := e.state.CurrentPlayer()
			p.Cash = 10000
			e.state.Phase = models.PhaseDownsizedDecision

			if err := e.DecideDownsized(p.UserID, tc.option); err != nil {
				t.Fatalf("DecideDownsized: %v", err)
			}
			if p.Cash != 10000-tc.wantPaid {
				t.Errorf("Cash = %d, se esperaba %d", p.Cash, 10000-tc.wantPaid)
			}
			if p.SkippedTurns != tc.wantSkips {
				t.Errorf("SkippedTurns = %d, se esperaba %d", p.SkippedTurns, tc.wantSkips)
			}
			if e.state.CurrentPlayer().UserID == p.UserID {
				t.Error("la decisión de despido no cerró el turno")
			}
		})
	}
}

func TestDecideDownsizedWithoutFundsBankrupts(t *testing.T) {
	e := newTestEngine(t, "Ana", "Beto")
	p := e.state.CurrentPlayer()

	// $1,500 en mano, debe $2,000 y el banco no presta sin flujo neto
	p.Cash = 1500
	p.Salary = 2000
	p.Expenses = 2000
	e.state.Phase = models.PhaseDownsizedDecision

	if err := e.DecideDownsized(p.UserID, DownsizedPayOnce); err != nil {
		t.Fatalf("DecideDownsized: %v", err)
	}
	if p.Cash != 1100 {
		t.Errorf("Cash = %d, se esperaba el respaldo inicial 1100", p.Cash)
	}
	if p.LoanLimitFactor != 0.5 {
		t.Errorf("LoanLimitFactor = %v, se esperaba 0.5", p.LoanLimitFactor)
	}
	if p.SkippedTurns != 0 {
		t.Errorf("SkippedTurns = %d, la bancarrota no debe dejar castigos", p.SkippedTurns)
	}
}

func TestHostActionsRequireHost(t *testing.T) {
	e := newTestEngine(t, "Ana", "Beto")
	var notHost *models.PlayerState
	for _, p := range e.state.Players {
		if p.UserID != e.state.HostID {
			notHost = p
		}
	}

	if err := e.HostSkipTurn(notHost.UserID); err != ErrNotHost {
		t.Errorf("HostSkipTurn err = %v, se esperaba ErrNotHost", err)
	}
	if err := e.HostGiveCash(notHost.UserID, e.state.HostID, 100); err != ErrNotHost {
		t.Errorf("HostGiveCash err = %v, se esperaba ErrNotHost", err)
	}
	if err := e.HostKickPlayer(notHost.UserID, e.state.HostID); err != ErrNotHost {
		t.Errorf("HostKickPlayer err = %v, se esperaba ErrNotHost", err)
	}
}

func TestHostKickPlayerLeavesRotation(t *testing.T) {
	e := newTestEngine(t, "Ana", "Beto", "Carla")
	idx := e.state.CurrentPlayerIndex
	n := len(e.state.Players)
	target := e.state.Players[(idx+1)%n]

	if err := e.HostKickPlayer(e.state.HostID, target.UserID); err != nil {
		t.Fatalf("HostKickPlayer: %v", err)
	}
	if !target.IsBankrupted {
		t.Fatal("el expulsado no quedó marcado fuera de juego")
	}

	if err := e.EndTurn(e.state.CurrentPlayer().UserID); err != nil {
		t.Fatalf("EndTurn: %v", err)
	}
	if e.state.CurrentPlayer().UserID == target.UserID {
		t.Error("el expulsado recibió un turno")
	}
}

func TestHostForceEndGameFinishes(t *testing.T) {
	e := newTestEngine(t, "Ana", "Beto")

	if err := e.HostForceEndGame(e.state.HostID); err != nil {
		t.Fatalf("HostForceEndGame: %v", err)
	}
	if e.state.Phase != models.PhaseEnd {
		t.Errorf("Phase = %s, se esperaba %s", e.state.Phase, models.PhaseEnd)
	}

	// Con la partida cerrada toda acción devuelve el error de guardia
	if err := e.EndTurn(e.state.CurrentPlayer().UserID); err != ErrGameEnded {
		t.Errorf("err = %v, se esperaba ErrGameEnded", err)
	}
}

func TestSendChatBounded(t *testing.T) {
	e := newTestEngine(t, "Ana", "Beto")
	p := e.state.CurrentPlayer()

	for i := 0; i < models.MaxChatMessages+10; i++ {
		if err := e.SendChat(p.UserID, "hola"); err != nil {
			t.Fatalf("SendChat: %v", err)
		}
	}
	if got := len(e.state.Chat); got != models.MaxChatMessages {
		t.Errorf("Chat = %d mensajes, se esperaba el tope %d", got, models.MaxChatMessages)
	}
}
