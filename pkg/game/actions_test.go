package game

import (
	"testing"
	"time"

	"github.com/backsoul/cashflow/pkg/models"
)

func TestBuyStockWeightedAverage(t *testing.T) {
	e := newTestEngine(t, "Ana", "Beto")
	p := e.state.CurrentPlayer()
	p.Cash = 1000

	e.state.CurrentCard = &models.Card{ID: "c1", Type: models.CardStock, Symbol: "ACME", Cost: 10, Deck: models.DeckSmall}
	if err := e.BuyAsset(p.UserID, "c1", 10); err != nil {
		t.Fatalf("BuyAsset: %v", err)
	}

	e.state.CurrentCard = &models.Card{ID: "c2", Type: models.CardStock, Symbol: "ACME", Cost: 20, Deck: models.DeckSmall}
	if err := e.BuyAsset(p.UserID, "c2", 10); err != nil {
		t.Fatalf("BuyAsset: %v", err)
	}

	holding := p.FindStock("ACME")
	if holding == nil {
		t.Fatal("no se creó la posición accionaria")
	}
	if holding.Quantity != 20 {
		t.Errorf("Quantity = %d, se esperaba 20 (posiciones fundidas)", holding.Quantity)
	}
	if holding.AvgCost != 15 {
		t.Errorf("AvgCost = %d, se esperaba 15 ((10*10 + 10*20) / 20)", holding.AvgCost)
	}
	if p.Cash != 1000-100-200 {
		t.Errorf("Cash = %d, se esperaba 700", p.Cash)
	}
	if len(p.Assets) != 1 {
		t.Errorf("Assets = %d, se esperaba una sola posición por símbolo", len(p.Assets))
	}
}

func TestSellStockRequiresVisiblePriceCard(t *testing.T) {
	e := newTestEngine(t, "Ana", "Beto")
	p := e.state.CurrentPlayer()
	p.Cash = 1000

	e.state.CurrentCard = &models.Card{ID: "c1", Type: models.CardStock, Symbol: "ACME", Cost: 10, Deck: models.DeckSmall}
	if err := e.BuyAsset(p.UserID, "c1", 10); err != nil {
		t.Fatalf("BuyAsset: %v", err)
	}
	cashAfterBuy := p.Cash

	// Sin carta visible del símbolo no hay precio de venta
	if err := e.SellStock(p.UserID, "ACME", 10); err != nil {
		t.Fatalf("SellStock: %v", err)
	}
	if p.Cash != cashAfterBuy || p.FindStock("ACME") == nil {
		t.Fatal("la venta procedió sin carta visible que fije el precio")
	}

	// Con una carta activa del símbolo la venta usa su precio
	e.state.ActiveCards = append(e.state.ActiveCards, &models.ActiveCard{
		ID:        "ac1",
		Card:      models.Card{ID: "mc1", Type: models.CardStock, Symbol: "ACME", Cost: 40, Deck: models.DeckMarket},
		ExpiresAt: time.Now().Add(time.Minute),
	})
	if err := e.SellStock(p.UserID, "ACME", 10); err != nil {
		t.Fatalf("SellStock: %v", err)
	}
	if want := cashAfterBuy + 400; p.Cash != want {
		t.Errorf("Cash = %d, se esperaba %d (10 acciones a $40)", p.Cash, want)
	}
	if p.FindStock("ACME") != nil {
		t.Error("la posición vendida por completo no se eliminó")
	}
}

func TestLoanRoundTrip(t *testing.T) {
	e := newTestEngine(t, "Ana", "Beto")
	p := e.state.CurrentPlayer()

	cash, expenses := p.Cash, p.Expenses

	if err := e.TakeLoan(p.UserID, 2000); err != nil {
		t.Fatalf("TakeLoan: %v", err)
	}
	if p.Cash != cash+2000 || p.LoanDebt != 2000 || p.Expenses != expenses+200 {
		t.Fatalf("tras el préstamo: cash=%d debt=%d expenses=%d", p.Cash, p.LoanDebt, p.Expenses)
	}
	found := false
	for _, l := range p.Liabilities {
		if l.Name == "Préstamo bancario" && l.Amount == 2000 && l.Payment == 200 {
			found = true
		}
	}
	if !found {
		t.Fatal("no se registró el pasivo del préstamo bancario")
	}

	if err := e.RepayLoan(p.UserID, 2000); err != nil {
		t.Fatalf("RepayLoan: %v", err)
	}
	if p.Cash != cash || p.LoanDebt != 0 || p.Expenses != expenses {
		t.Errorf("el abono no revirtió el préstamo: cash=%d debt=%d expenses=%d", p.Cash, p.LoanDebt, p.Expenses)
	}
	for _, l := range p.Liabilities {
		if l.Name == "Préstamo bancario" {
			t.Error("el pasivo del préstamo sigue presente con deuda cero")
		}
	}
}

func TestLoanRejections(t *testing.T) {
	e := newTestEngine(t, "Ana", "Beto")
	p := e.state.CurrentPlayer()

	tests := []struct {
		name  string
		setup func(p *models.PlayerState)
		loan  int
	}{
		{"monto no múltiplo de 1000", func(p *models.PlayerState) {}, 1234},
		{"interés supera el flujo neto", func(p *models.PlayerState) {
			p.Salary = 2200 // flujo neto 0
		}, 1000},
		{"sin préstamos en la pista rápida", func(p *models.PlayerState) {
			p.IsFastTrack = true
		}, 1000},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			snapshot := *p
			tc.setup(p)
			cash, debt := p.Cash, p.LoanDebt
			if err := e.TakeLoan(p.UserID, tc.loan); err != nil {
				t.Fatalf("TakeLoan: %v", err)
			}
			if p.Cash != cash || p.LoanDebt != debt {
				t.Errorf("el préstamo rechazado modificó el estado: cash=%d debt=%d", p.Cash, p.LoanDebt)
			}
			*p = snapshot
		})
	}
}

func TestMandatoryExpenseWithoutQualifyingAsset(t *testing.T) {
	e := newTestEngine(t, "Ana", "Beto")
	p := e.state.CurrentPlayer()
	cashBefore := p.Cash

	// La carta de gasto exige un inmueble que el jugador no tiene
	e.resolveLanding(p, e.state.RatRace[4])
	card := e.state.CurrentCard
	if card == nil || !card.Mandatory {
		t.Fatal("no quedó una carta obligatoria como carta actual")
	}
	if card.Cost != 0 {
		t.Fatalf("Cost = %d, se esperaba 0 sin activo que califique", card.Cost)
	}

	// Pagar la carta obligatoria cierra el turno
	if err := e.BuyAsset(p.UserID, card.ID, 0); err != nil {
		t.Fatalf("BuyAsset: %v", err)
	}
	if p.Cash != cashBefore {
		t.Errorf("Cash = %d, se esperaba %d", p.Cash, cashBefore)
	}
	if e.state.CurrentPlayer().UserID == p.UserID {
		t.Error("el gasto obligatorio no cerró el turno")
	}
	if e.state.Phase != models.PhaseRoll {
		t.Errorf("Phase = %s, se esperaba %s para el siguiente jugador", e.state.Phase, models.PhaseRoll)
	}
}

func TestMarketCardRetiredWhenAllDismiss(t *testing.T) {
	e := newTestEngine(t, "Ana", "Beto")
	p1 := e.state.Players[0]
	p2 := e.state.Players[1]

	marketBefore := e.cards.DeckCounts()[models.DeckMarket].Remaining
	e.resolveLanding(p1, e.state.RatRace[2])
	if len(e.state.ActiveCards) != 1 {
		t.Fatalf("ActiveCards = %d, se esperaba 1", len(e.state.ActiveCards))
	}
	ac := e.state.ActiveCards[0]

	if err := e.DismissCard(p1.UserID, ac.ID); err != nil {
		t.Fatalf("DismissCard: %v", err)
	}
	if len(e.state.ActiveCards) != 1 {
		t.Fatal("la carta se retiró con un jugador aún pendiente")
	}

	if err := e.DismissCard(p2.UserID, ac.ID); err != nil {
		t.Fatalf("DismissCard: %v", err)
	}
	if len(e.state.ActiveCards) != 0 {
		t.Error("la carta no se retiró cuando todos la descartaron")
	}
	if got := e.cards.DeckCounts()[models.DeckMarket].Remaining; got != marketBefore {
		t.Errorf("el mazo de mercado tiene %d cartas, se esperaban %d", got, marketBefore)
	}
}

func TestSellAssetAtMarketOffer(t *testing.T) {
	e := newTestEngine(t, "Ana", "Beto")
	p := e.state.CurrentPlayer()

	p.Assets = append(p.Assets, models.Asset{
		ID: "a1", Type: models.CardRealEstate, Title: "Casa pequeña",
		Cost: 50000, Cashflow: 200, Deck: models.DeckSmall, TemplateID: 2,
	})
	p.PassiveIncome = 200
	p.Liabilities = append(p.Liabilities, models.Liability{Name: "Hipoteca: Casa pequeña", Amount: 45000})

	e.state.ActiveCards = append(e.state.ActiveCards, &models.ActiveCard{
		ID:        "offer",
		Card:      models.Card{Type: models.CardMarket, OfferPrice: 65000, RequiresAsset: models.CardRealEstate, Deck: models.DeckMarket},
		ExpiresAt: time.Now().Add(time.Minute),
	})

	cashBefore := p.Cash
	if err := e.SellAsset(p.UserID, "a1"); err != nil {
		t.Fatalf("SellAsset: %v", err)
	}
	if want := cashBefore + 65000; p.Cash != want {
		t.Errorf("Cash = %d, se esperaba %d (precio de oferta, no el costo)", p.Cash, want)
	}
	if p.PassiveIncome != 0 {
		t.Errorf("PassiveIncome = %d, se esperaba 0", p.PassiveIncome)
	}
	if len(p.Liabilities) != 0 {
		t.Error("la hipoteca del activo vendido sigue presente")
	}
}

// drawSmallDeal roba del mazo pequeño hasta encontrar una carta del tipo
// pedido, devolviendo las demás al final del mazo
func drawSmallDeal(t *testing.T, e *Engine, cardType string) *models.Card {
	t.Helper()
	for i := 0; i < 4; i++ {
		card := e.cards.Draw(models.DeckSmall)
		if card == nil {
			break
		}
		if card.Type == cardType {
			return card
		}
		e.cards.Discard(*card)
	}
	t.Fatalf("no hay cartas de tipo %s en el mazo pequeño", cardType)
	return nil
}

func TestDeckConservedThroughPropertyOwnership(t *testing.T) {
	e := newTestEngine(t, "Ana", "Beto")
	p := e.state.CurrentPlayer()
	p.Cash = 100000

	total := e.cards.DeckCounts()[models.DeckSmall].Total
	card := drawSmallDeal(t, e, models.CardRealEstate)
	e.state.CurrentCard = card

	if err := e.BuyAsset(p.UserID, card.ID, 0); err != nil {
		t.Fatalf("BuyAsset: %v", err)
	}
	if got := e.cards.DeckCounts()[models.DeckSmall].Remaining; got != total-1 {
		t.Fatalf("Remaining = %d tras comprar, se esperaba %d: la carta queda en poder del comprador", got, total-1)
	}

	if err := e.SellAsset(p.UserID, p.Assets[0].ID); err != nil {
		t.Fatalf("SellAsset: %v", err)
	}
	if got := e.cards.DeckCounts()[models.DeckSmall].Remaining; got != total {
		t.Errorf("Remaining = %d tras vender, se esperaba %d: comprar y vender conserva el total del mazo", got, total)
	}
}

func TestStockHoldingsDoNotDuplicateDeckCards(t *testing.T) {
	e := newTestEngine(t, "Ana", "Beto")
	p := e.state.CurrentPlayer()
	p.Cash = 1000

	total := e.cards.DeckCounts()[models.DeckSmall].Total
	card := drawSmallDeal(t, e, models.CardStock)
	e.state.CurrentCard = card

	if err := e.BuyAsset(p.UserID, card.ID, 10); err != nil {
		t.Fatalf("BuyAsset: %v", err)
	}
	// La carta de precio vuelve al mazo de inmediato para seguir circulando
	if got := e.cards.DeckCounts()[models.DeckSmall].Remaining; got != total {
		t.Fatalf("Remaining = %d tras comprar acciones, se esperaba %d", got, total)
	}

	// La posición accionaria no retiene carta: perderla no duplica el mazo
	e.bankrupt(p)
	if got := e.cards.DeckCounts()[models.DeckSmall].Remaining; got != total {
		t.Errorf("Remaining = %d tras la bancarrota, se esperaba %d", got, total)
	}
}

func TestTransferDealOnlyRecipientCanBuy(t *testing.T) {
	e := newTestEngine(t, "Ana", "Beto", "Carla")
	p1 := e.state.CurrentPlayer()
	var p2, p3 *models.PlayerState
	for _, p := range e.state.Players {
		if p.UserID == p1.UserID {
			continue
		}
		if p2 == nil {
			p2 = p
		} else {
			p3 = p
		}
	}

	e.state.CurrentCard = &models.Card{
		ID: "deal", Type: models.CardRealEstate, Title: "Casa pequeña",
		Cost: 50000, DownPayment: 5000, Cashflow: 200, Deck: models.DeckSmall,
	}
	if err := e.TransferDeal(p1.UserID, p2.UserID); err != nil {
		t.Fatalf("TransferDeal: %v", err)
	}
	if e.state.CurrentCard != nil {
		t.Fatal("la carta cedida sigue como carta actual")
	}
	ac := e.state.ActiveCards[0]

	// Un tercero no puede comprarla
	p3.Cash = 100000
	if err := e.BuyAsset(p3.UserID, ac.ID, 0); err != nil {
		t.Fatalf("BuyAsset: %v", err)
	}
	if len(p3.Assets) != 0 {
		t.Fatal("un jugador ajeno compró una carta transferida")
	}

	// El destinatario sí
	p2.Cash = 100000
	if err := e.BuyAsset(p2.UserID, ac.ID, 0); err != nil {
		t.Fatalf("BuyAsset: %v", err)
	}
	if len(p2.Assets) != 1 {
		t.Fatal("el destinatario no pudo comprar la carta transferida")
	}
	if p2.PassiveIncome != 200 {
		t.Errorf("PassiveIncome = %d, se esperaba 200", p2.PassiveIncome)
	}
}
