package game

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/backsoul/cashflow/pkg/models"
)

// newTestEngine arma una partida de prueba con la profesión Maestro
// (salario 3300, gastos 2200, efectivo 1100; flujo neto 1100)
func newTestEngine(t *testing.T, names ...string) *Engine {
	t.Helper()
	profession := models.Profession{Name: "Maestro", Salary: 3300, Expenses: 2200, Cash: 1100}
	players := make([]*models.PlayerState, 0, len(names))
	for i, name := range names {
		players = append(players, models.NewPlayerState(fmt.Sprintf("user-%d", i+1), name, profession))
	}
	rng := rand.New(rand.NewSource(42))
	return NewEngine("room-1", players[0].UserID, players, smallTemplates(), rng)
}

func TestRollDiceGuards(t *testing.T) {
	e := newTestEngine(t, "Ana", "Beto")
	current := e.state.CurrentPlayer()

	t.Run("jugador desconocido", func(t *testing.T) {
		if err := e.RollDice("fantasma", 1); err != ErrUnknownPlayer {
			t.Errorf("err = %v, se esperaba ErrUnknownPlayer", err)
		}
	})

	t.Run("fuera de turno", func(t *testing.T) {
		var other *models.PlayerState
		for _, p := range e.state.Players {
			if p.UserID != current.UserID {
				other = p
			}
		}
		if err := e.RollDice(other.UserID, 1); err != ErrNotYourTurn {
			t.Errorf("err = %v, se esperaba ErrNotYourTurn", err)
		}
	})

	t.Run("fuera de fase es no-operación", func(t *testing.T) {
		e.state.Phase = models.PhaseAction
		posBefore := current.Position
		if err := e.RollDice(current.UserID, 1); err != nil {
			t.Fatalf("err = %v, se esperaba nil", err)
		}
		if current.Position != posBefore {
			t.Errorf("la posición cambió de %d a %d en una jugada inválida", posBefore, current.Position)
		}
	})
}

func TestPaydayOnPassOver(t *testing.T) {
	e := newTestEngine(t, "Ana", "Beto")
	p := e.state.CurrentPlayer()

	p.Position = 22
	cashBefore := p.Cash
	e.moveBy(p, 3) // 23, 0 (día de pago sobrepasado), 1

	if p.Position != 1 {
		t.Fatalf("Position = %d, se esperaba 1", p.Position)
	}
	if want := cashBefore + p.NetCashflow(); p.Cash != want {
		t.Errorf("Cash = %d, se esperaba %d (cobro al sobrepasar la salida)", p.Cash, want)
	}
	if e.state.Phase != models.PhaseOpportunityChoice {
		t.Errorf("Phase = %s, se esperaba %s", e.state.Phase, models.PhaseOpportunityChoice)
	}
}

func TestLandingOnStartDoesNotPay(t *testing.T) {
	e := newTestEngine(t, "Ana", "Beto")
	p := e.state.CurrentPlayer()

	p.Position = 22
	cashBefore := p.Cash
	e.moveBy(p, 2) // 23, 0 (caída exacta en la salida)

	if p.Position != 0 {
		t.Fatalf("Position = %d, se esperaba 0", p.Position)
	}
	if p.Cash != cashBefore {
		t.Errorf("Cash = %d, se esperaba %d: caer en la salida no paga", p.Cash, cashBefore)
	}
}

func TestLandingOnInteriorPaydayPays(t *testing.T) {
	e := newTestEngine(t, "Ana", "Beto")
	p := e.state.CurrentPlayer()

	p.Position = 6
	cashBefore := p.Cash
	e.moveBy(p, 2) // 7, 8 (día de pago interior)

	if p.Position != 8 {
		t.Fatalf("Position = %d, se esperaba 8", p.Position)
	}
	if want := cashBefore + p.NetCashflow(); p.Cash != want {
		t.Errorf("Cash = %d, se esperaba %d", p.Cash, want)
	}
}

func TestForcePayTakesAutomaticLoan(t *testing.T) {
	e := newTestEngine(t, "Ana", "Beto")
	p := e.state.CurrentPlayer()
	p.Cash = 500

	if ok := e.forcePay(p, 1500, "banco", "test"); !ok {
		t.Fatal("forcePay devolvió false con capacidad de préstamo disponible")
	}
	if p.Cash != 0 {
		t.Errorf("Cash = %d, se esperaba 0 (500 + préstamo 1000 - pago 1500)", p.Cash)
	}
	if p.LoanDebt != 1000 {
		t.Errorf("LoanDebt = %d, se esperaba 1000 (déficit redondeado al millar)", p.LoanDebt)
	}
	if p.Expenses != 2300 {
		t.Errorf("Expenses = %d, se esperaba 2300 (interés mensual de 100)", p.Expenses)
	}
}

func TestForcePayTriggersBankruptcyRecovery(t *testing.T) {
	e := newTestEngine(t, "Ana", "Beto")
	p := e.state.CurrentPlayer()

	// Sin flujo neto el banco rechaza cualquier préstamo
	p.Salary = 1000
	p.Expenses = 1000
	p.Cash = 200
	p.Position = 5
	p.ChildrenCount = 2

	if ok := e.forcePay(p, 5000, "banco", "test"); ok {
		t.Fatal("forcePay devolvió true sin efectivo ni crédito")
	}
	if p.Cash != 1100 || p.Salary != 3300 || p.Expenses != 2200 {
		t.Errorf("finanzas tras bancarrota = (%d, %d, %d), se esperaba el respaldo inicial (1100, 3300, 2200)",
			p.Cash, p.Salary, p.Expenses)
	}
	if p.LoanLimitFactor != 0.5 {
		t.Errorf("LoanLimitFactor = %v, se esperaba 0.5", p.LoanLimitFactor)
	}
	if p.Position != 0 || p.ChildrenCount != 0 {
		t.Error("la bancarrota no reinició posición e hijos")
	}
	if p.IsBankrupted {
		t.Error("la recuperación de bancarrota no elimina al jugador")
	}
}

func TestBankruptcyDuringPassOverStopsMovement(t *testing.T) {
	e := newTestEngine(t, "Ana", "Beto")
	p := e.state.CurrentPlayer()

	// Flujo negativo y sin crédito: sobrepasar la salida lo quiebra
	p.Salary = 0
	p.Expenses = 5000
	p.Cash = 100
	p.Position = 22

	e.moveBy(p, 3) // 23, 0 (día de pago impagable), el resto se cancela

	if p.LoanLimitFactor != 0.5 {
		t.Fatalf("LoanLimitFactor = %v, se esperaba 0.5 (bancarrota)", p.LoanLimitFactor)
	}
	if p.Position != 0 {
		t.Errorf("Position = %d, el jugador quebrado debe quedar en la salida", p.Position)
	}
	if e.state.Phase == models.PhaseOpportunityChoice {
		t.Error("se resolvió una casilla posterior a la bancarrota")
	}
}

func TestLotteryPoolExcludesLotterySquares(t *testing.T) {
	pool := LotteryPool(NewFastTrackBoard())
	if len(pool) == 0 {
		t.Fatal("el grupo de lotería está vacío")
	}
	for _, sq := range pool {
		if sq.Category == models.SquareLottery {
			t.Errorf("la casilla %d (lotería) no debe estar en el grupo", sq.Index)
		}
	}
}

func TestBoardSizes(t *testing.T) {
	if n := len(NewRatRaceBoard()); n != 24 {
		t.Errorf("carrera de la rata: %d casillas, se esperaban 24", n)
	}
	if n := len(NewFastTrackBoard()); n != 48 {
		t.Errorf("pista rápida: %d casillas, se esperaban 48", n)
	}
}

func TestExpireActiveCardsReturnsTemplates(t *testing.T) {
	e := newTestEngine(t, "Ana", "Beto")
	p := e.state.CurrentPlayer()

	marketBefore := e.cards.DeckCounts()[models.DeckMarket].Remaining
	e.resolveLanding(p, e.state.RatRace[2]) // casilla de mercado
	if len(e.state.ActiveCards) != 1 {
		t.Fatalf("ActiveCards = %d, se esperaba 1", len(e.state.ActiveCards))
	}

	expiry := e.state.ActiveCards[0].ExpiresAt
	if changed := e.ExpireActiveCards(expiry.Add(-1)); changed {
		t.Error("ExpireActiveCards retiró una carta aún vigente")
	}
	if changed := e.ExpireActiveCards(expiry.Add(1)); !changed {
		t.Error("ExpireActiveCards no retiró la carta vencida")
	}
	if len(e.state.ActiveCards) != 0 {
		t.Errorf("ActiveCards = %d tras expirar, se esperaba 0", len(e.state.ActiveCards))
	}
	if got := e.cards.DeckCounts()[models.DeckMarket].Remaining; got != marketBefore {
		t.Errorf("el mazo de mercado tiene %d cartas, se esperaban %d (conservación)", got, marketBefore)
	}
}
