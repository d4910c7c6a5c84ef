package game

import (
	"fmt"
	"time"

	"github.com/backsoul/cashflow/pkg/models"
	"github.com/google/uuid"
)

// ChooseDeal resuelve la elección de Oportunidad: el jugador pide un trato
// pequeño o grande y la carta robada queda como carta actual
func (e *Engine) ChooseDeal(playerID, size string) error {
	p, err := e.requireCurrent(playerID)
	if err != nil {
		return err
	}
	if e.state.Phase != models.PhaseOpportunityChoice {
		e.state.AddLog(fmt.Sprintf("⚠️ %s intentó elegir un trato fuera de fase", p.Name))
		return nil
	}

	deck := models.DeckSmall
	if size == "big" {
		deck = models.DeckBig
	}
	card := e.cards.Draw(deck)
	if card == nil {
		e.state.AddLog("⚠️ No hay cartas de oportunidad disponibles")
		return nil
	}
	e.applyRequiredAsset(p, card)
	e.state.CurrentCard = card
	e.state.Phase = models.PhaseAction
	e.state.AddLog(fmt.Sprintf("🃏 %s roba «%s» del mazo %s", p.Name, card.Title, deck))
	return nil
}

// resolveCardForBuy localiza la carta y valida quién puede comprarla:
// la carta actual solo el jugador en turno; una carta activa transferida
// solo su destinatario; una carta de mercado activa, cualquiera
func (e *Engine) resolveCardForBuy(p *models.PlayerState, cardID string) (*models.Card, *models.ActiveCard) {
	if cc := e.state.CurrentCard; cc != nil && (cc.ID == cardID || cardID == "") {
		current := e.state.CurrentPlayer()
		if current == nil || current.UserID != p.UserID {
			e.state.AddLog(fmt.Sprintf("⚠️ %s intentó comprar la carta del turno de otro jugador", p.Name))
			return nil, nil
		}
		return cc, nil
	}
	ac := e.findActiveCard(cardID)
	if ac == nil {
		e.state.AddLog(fmt.Sprintf("⚠️ %s intentó comprar una carta que ya no está disponible", p.Name))
		return nil, nil
	}
	if ac.TransferredTo != "" && ac.TransferredTo != p.UserID {
		e.state.AddLog(fmt.Sprintf("⚠️ La carta «%s» fue transferida a otro jugador", ac.Card.Title))
		return nil, nil
	}
	if ac.Dismissed(p.UserID) {
		e.state.AddLog(fmt.Sprintf("⚠️ %s ya descartó o compró «%s»", p.Name, ac.Card.Title))
		return nil, nil
	}
	return &ac.Card, ac
}

// BuyAsset compra la carta indicada: acciones (con promedio ponderado),
// pago de gasto obligatorio, o inmueble/negocio con cuota inicial
func (e *Engine) BuyAsset(playerID, cardID string, quantity int) error {
	if e.state.Phase == models.PhaseEnd {
		return ErrGameEnded
	}
	p := e.state.FindPlayer(playerID)
	if p == nil {
		return ErrUnknownPlayer
	}

	card, active := e.resolveCardForBuy(p, cardID)
	if card == nil {
		return nil
	}

	switch {
	case card.Type == models.CardStock:
		e.buyStock(p, card, active, quantity)
	case card.Mandatory:
		e.payMandatory(p, card)
	case card.SquareIndex > 0:
		e.buySquare(p, card)
	case card.Cost > 0:
		e.buyProperty(p, card, active)
	default:
		e.state.AddLog(fmt.Sprintf("⚠️ «%s» no es una carta comprable", card.Title))
	}
	return nil
}

// buyStock compra acciones; compras sucesivas del mismo símbolo se funden
// en una sola posición con costo promedio ponderado
func (e *Engine) buyStock(p *models.PlayerState, card *models.Card, active *models.ActiveCard, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	total := card.Cost * quantity
	if p.Cash < total {
		e.state.AddLog(fmt.Sprintf("⚠️ %s no tiene efectivo para %d acciones de %s ($%d)", p.Name, quantity, card.Symbol, total))
		return
	}

	p.Cash -= total
	e.state.AddTransaction(p.UserID, "mercado", total, "buyStock")

	perShareFlow := card.Cashflow
	if holding := p.FindStock(card.Symbol); holding != nil {
		newQty := holding.Quantity + quantity
		holding.AvgCost = (holding.AvgCost*holding.Quantity + total) / newQty
		holding.Quantity = newQty
		holding.Cost += total
		holding.Cashflow += perShareFlow * quantity
	} else {
		p.Assets = append(p.Assets, models.Asset{
			ID:         uuid.New().String(),
			Type:       models.CardStock,
			Title:      card.Title,
			Symbol:     card.Symbol,
			Cost:       total,
			AvgCost:    card.Cost,
			Quantity:   quantity,
			Cashflow:   perShareFlow * quantity,
			Deck:       card.Deck,
			TemplateID: card.TemplateID,
		})
	}
	p.PassiveIncome += perShareFlow * quantity

	e.state.AddLog(fmt.Sprintf("📊 %s compra %d acciones de %s a $%d", p.Name, quantity, card.Symbol, card.Cost))
	e.consumeCard(card, active, p.UserID)
}

// payMandatory cobra una carta de pago obligatorio y cierra el turno
func (e *Engine) payMandatory(p *models.PlayerState, card *models.Card) {
	paid := e.forcePay(p, card.Cost, "banco", "expense")
	e.state.CurrentCard = nil
	e.cards.Discard(*card)
	if paid {
		e.state.AddLog(fmt.Sprintf("💸 %s pagó el gasto obligatorio «%s»", p.Name, card.Title))
	}
	e.advanceTurn()
}

// buyProperty compra un inmueble o negocio de mazo: descuenta la cuota
// inicial, agrega el pasivo por el saldo y suma el flujo al ingreso pasivo
func (e *Engine) buyProperty(p *models.PlayerState, card *models.Card, active *models.ActiveCard) {
	down := card.DownPayment
	if down == 0 {
		down = card.Cost
	}
	if p.Cash < down {
		e.state.AddLog(fmt.Sprintf("⚠️ %s no tiene efectivo para la cuota inicial de «%s» ($%d)", p.Name, card.Title, down))
		return
	}

	p.Cash -= down
	e.state.AddTransaction(p.UserID, "banco", down, "buyAsset")

	asset := models.Asset{
		ID:         uuid.New().String(),
		Type:       card.Type,
		Title:      card.Title,
		Cost:       card.Cost,
		Cashflow:   card.Cashflow,
		Deck:       card.Deck,
		TemplateID: card.TemplateID,
	}
	p.Assets = append(p.Assets, asset)
	p.PassiveIncome += card.Cashflow

	if remainder := card.Cost - down; remainder > 0 {
		p.Liabilities = append(p.Liabilities, models.Liability{
			Name:   "Hipoteca: " + card.Title,
			Amount: remainder,
		})
	}

	e.state.AddLog(fmt.Sprintf("🏠 %s compra «%s»: cuota $%d, flujo +$%d", p.Name, card.Title, down, card.Cashflow))
	e.consumeCard(card, active, p.UserID)
	e.checkWin(p)
}

// consumeCard retira una carta comprada de su lugar de exhibición. Solo las
// cartas de acciones vuelven al mazo de inmediato para seguir circulando;
// las demás quedan en poder del comprador y regresan al mazo cuando el
// activo se vende o se pierde, conservando el total de cada mazo.
func (e *Engine) consumeCard(card *models.Card, active *models.ActiveCard, buyerID string) {
	recirculate := card.Type == models.CardStock
	if active == nil {
		e.state.CurrentCard = nil
		if recirculate {
			e.cards.Discard(*card)
		}
		return
	}
	if active.TransferredTo != "" {
		e.removeActiveCard(active.ID)
		if recirculate {
			e.cards.Discard(active.Card)
		}
		return
	}
	// Las cartas de mercado siguen visibles hasta que todos los jugadores
	// activos las descarten o expiren
	active.PurchasedBy = append(active.PurchasedBy, buyerID)
	e.retireActiveCardIfDone(active)
}

// SellAsset vende una posesión: al precio de oferta de una carta de mercado
// visible que aplique, o en su defecto al costo del activo
func (e *Engine) SellAsset(playerID, assetID string) error {
	if e.state.Phase == models.PhaseEnd {
		return ErrGameEnded
	}
	p := e.state.FindPlayer(playerID)
	if p == nil {
		return ErrUnknownPlayer
	}
	asset := p.FindAsset(assetID)
	if asset == nil {
		e.state.AddLog(fmt.Sprintf("⚠️ %s intentó vender un activo que no posee", p.Name))
		return nil
	}
	if asset.Type == models.CardStock {
		e.state.AddLog(fmt.Sprintf("⚠️ Las acciones de %s se venden con la acción de venta de acciones", asset.Symbol))
		return nil
	}

	price := asset.Cost
	if offer := e.findOfferFor(asset.Type); offer != nil {
		price = offer.OfferPrice
	}

	sold := p.RemoveAsset(assetID)
	p.Cash += price
	p.PassiveIncome -= sold.Cashflow
	p.RemoveLiability("Hipoteca: " + sold.Title)
	e.returnAssetCard(*sold)

	e.state.AddTransaction("mercado", p.UserID, price, "sellAsset")
	e.state.AddLog(fmt.Sprintf("🏷️ %s vende «%s» por $%d", p.Name, sold.Title, price))
	return nil
}

// findOfferFor busca una carta de mercado visible que ofrezca comprar
// activos del tipo dado
func (e *Engine) findOfferFor(assetType string) *models.Card {
	if cc := e.state.CurrentCard; cc != nil && cc.OfferPrice > 0 && cc.RequiresAsset == assetType {
		return cc
	}
	for _, ac := range e.state.ActiveCards {
		if ac.Card.OfferPrice > 0 && ac.Card.RequiresAsset == assetType {
			return &ac.Card
		}
	}
	return nil
}

// findStockPrice busca una carta de acciones visible del símbolo dado; las
// cartas son la única fuente de precio para vender acciones
func (e *Engine) findStockPrice(symbol string) *models.Card {
	if cc := e.state.CurrentCard; cc != nil && cc.Type == models.CardStock && cc.Symbol == symbol {
		return cc
	}
	for _, ac := range e.state.ActiveCards {
		if ac.Card.Type == models.CardStock && ac.Card.Symbol == symbol {
			return &ac.Card
		}
	}
	return nil
}

// SellStock vende acciones al precio de la carta visible del mismo símbolo,
// retirando flujo y costo de forma proporcional
func (e *Engine) SellStock(playerID, symbol string, quantity int) error {
	if e.state.Phase == models.PhaseEnd {
		return ErrGameEnded
	}
	p := e.state.FindPlayer(playerID)
	if p == nil {
		return ErrUnknownPlayer
	}
	holding := p.FindStock(symbol)
	if holding == nil {
		e.state.AddLog(fmt.Sprintf("⚠️ %s no tiene acciones de %s", p.Name, symbol))
		return nil
	}
	priceCard := e.findStockPrice(symbol)
	if priceCard == nil {
		e.state.AddLog(fmt.Sprintf("⚠️ No hay carta visible de %s que fije un precio de venta", symbol))
		return nil
	}
	if quantity < 1 || quantity > holding.Quantity {
		quantity = holding.Quantity
	}

	proceeds := priceCard.Cost * quantity
	flowRemoved := holding.Cashflow * quantity / holding.Quantity
	costRemoved := holding.Cost * quantity / holding.Quantity

	p.Cash += proceeds
	p.PassiveIncome -= flowRemoved
	holding.Cashflow -= flowRemoved
	holding.Cost -= costRemoved
	holding.Quantity -= quantity
	if holding.Quantity == 0 {
		p.RemoveAsset(holding.ID)
	}

	e.state.AddTransaction("mercado", p.UserID, proceeds, "sellStock")
	e.state.AddLog(fmt.Sprintf("📊 %s vende %d acciones de %s a $%d", p.Name, quantity, symbol, priceCard.Cost))
	return nil
}

// TransferAsset mueve una posesión entre dos jugadores sin cerrar el turno
// de ninguno; las acciones admiten traspaso parcial
func (e *Engine) TransferAsset(fromID, toID, assetID string, quantity int) error {
	if e.state.Phase == models.PhaseEnd {
		return ErrGameEnded
	}
	from := e.state.FindPlayer(fromID)
	to := e.state.FindPlayer(toID)
	if from == nil || to == nil {
		return ErrUnknownPlayer
	}
	asset := from.FindAsset(assetID)
	if asset == nil {
		e.state.AddLog(fmt.Sprintf("⚠️ %s intentó transferir un activo que no posee", from.Name))
		return nil
	}

	if asset.Type == models.CardStock && quantity > 0 && quantity < asset.Quantity {
		flowMoved := asset.Cashflow * quantity / asset.Quantity
		costMoved := asset.Cost * quantity / asset.Quantity
		asset.Quantity -= quantity
		asset.Cashflow -= flowMoved
		asset.Cost -= costMoved
		from.PassiveIncome -= flowMoved

		if holding := to.FindStock(asset.Symbol); holding != nil {
			newQty := holding.Quantity + quantity
			holding.AvgCost = (holding.AvgCost*holding.Quantity + costMoved) / newQty
			holding.Quantity = newQty
			holding.Cost += costMoved
			holding.Cashflow += flowMoved
		} else {
			to.Assets = append(to.Assets, models.Asset{
				ID:         uuid.New().String(),
				Type:       models.CardStock,
				Title:      asset.Title,
				Symbol:     asset.Symbol,
				Cost:       costMoved,
				AvgCost:    asset.AvgCost,
				Quantity:   quantity,
				Cashflow:   flowMoved,
				Deck:       asset.Deck,
				TemplateID: asset.TemplateID,
			})
		}
		to.PassiveIncome += flowMoved
		e.state.AddLog(fmt.Sprintf("🤝 %s transfiere %d acciones de %s a %s", from.Name, quantity, asset.Symbol, to.Name))
		return nil
	}

	moved := from.RemoveAsset(assetID)
	from.PassiveIncome -= moved.Cashflow
	if lia := from.RemoveLiability("Hipoteca: " + moved.Title); lia != nil {
		to.Liabilities = append(to.Liabilities, *lia)
	}
	to.Assets = append(to.Assets, *moved)
	to.PassiveIncome += moved.Cashflow

	if moved.SquareIndex > 0 && moved.SquareIndex < len(e.state.FastTrack) {
		e.state.FastTrack[moved.SquareIndex].OwnerID = to.UserID
		e.state.FastTrackOwners[moved.SquareIndex] = to.UserID
	}

	e.state.AddLog(fmt.Sprintf("🤝 %s transfiere «%s» a %s", from.Name, moved.Title, to.Name))
	e.checkWin(to)
	return nil
}

// TransferFunds mueve efectivo entre dos jugadores
func (e *Engine) TransferFunds(fromID, toID string, amount int) error {
	if e.state.Phase == models.PhaseEnd {
		return ErrGameEnded
	}
	from := e.state.FindPlayer(fromID)
	to := e.state.FindPlayer(toID)
	if from == nil || to == nil {
		return ErrUnknownPlayer
	}
	if amount <= 0 || from.Cash < amount {
		e.state.AddLog(fmt.Sprintf("⚠️ %s no puede transferir $%d", from.Name, amount))
		return nil
	}
	from.Cash -= amount
	to.Cash += amount
	e.state.AddTransaction(from.UserID, to.UserID, amount, "transfer")
	e.state.AddLog(fmt.Sprintf("💵 %s transfiere $%d a %s", from.Name, amount, to.Name))
	return nil
}

// TransferDeal cede la oportunidad del turno a otro jugador: la carta
// actual pasa a ser una carta activa que solo el destinatario puede comprar
func (e *Engine) TransferDeal(fromID, toID string) error {
	p, err := e.requireCurrent(fromID)
	if err != nil {
		return err
	}
	to := e.state.FindPlayer(toID)
	if to == nil {
		return ErrUnknownPlayer
	}
	card := e.state.CurrentCard
	if card == nil || card.Mandatory {
		e.state.AddLog(fmt.Sprintf("⚠️ %s no tiene una oportunidad transferible", p.Name))
		return nil
	}

	e.state.ActiveCards = append(e.state.ActiveCards, &models.ActiveCard{
		ID:            uuid.New().String(),
		Card:          *card,
		DrawnBy:       p.UserID,
		TransferredTo: to.UserID,
		ExpiresAt:     time.Now().Add(models.TransferCardSecs * time.Second),
	})
	e.state.CurrentCard = nil
	e.state.AddLog(fmt.Sprintf("🤝 %s cede «%s» a %s", p.Name, card.Title, to.Name))
	return nil
}

// DismissCard registra el descarte individual de una carta activa. La carta
// se retira (y su plantilla vuelve al mazo) solo cuando todos los jugadores
// activos la descartaron o compraron, o cuando expira.
func (e *Engine) DismissCard(playerID, cardID string) error {
	if e.state.Phase == models.PhaseEnd {
		return ErrGameEnded
	}
	p := e.state.FindPlayer(playerID)
	if p == nil {
		return ErrUnknownPlayer
	}
	ac := e.findActiveCard(cardID)
	if ac == nil {
		e.state.AddLog(fmt.Sprintf("⚠️ %s intentó descartar una carta que ya no está", p.Name))
		return nil
	}
	if !ac.Dismissed(p.UserID) {
		ac.DismissedBy = append(ac.DismissedBy, p.UserID)
		e.state.AddLog(fmt.Sprintf("🙅 %s descarta «%s»", p.Name, ac.Card.Title))
	}
	e.retireActiveCardIfDone(ac)
	return nil
}

// retireActiveCardIfDone retira la carta activa si todos los jugadores
// elegibles ya la descartaron o compraron
func (e *Engine) retireActiveCardIfDone(ac *models.ActiveCard) {
	for _, p := range e.state.Players {
		if p.IsEligible() && !ac.Dismissed(p.UserID) {
			return
		}
	}
	e.removeActiveCard(ac.ID)
	e.cards.Discard(ac.Card)
	e.state.AddLog(fmt.Sprintf("🗑️ «%s» sale de juego y vuelve al mazo", ac.Card.Title))
}

// loanRejection devuelve la razón por la que el banco rechaza un préstamo,
// o cadena vacía si lo acepta
func (e *Engine) loanRejection(p *models.PlayerState, amount int) string {
	if amount <= 0 || amount%models.LoanStep != 0 {
		return fmt.Sprintf("el monto debe ser un múltiplo positivo de %d", models.LoanStep)
	}
	if p.IsBankrupted {
		return "jugador fuera de juego"
	}
	if p.IsFastTrack {
		return "no hay préstamos bancarios en la pista rápida"
	}
	interest := amount * models.LoanInterestRate / 100
	if float64(p.NetCashflow())*p.LoanLimitFactor-float64(interest) < 0 {
		return "el interés supera tu capacidad de endeudamiento"
	}
	return ""
}

// grantLoan aplica un préstamo aceptado: suma efectivo y deuda, y carga el
// interés mensual a los gastos
func (e *Engine) grantLoan(p *models.PlayerState, amount int) {
	interest := amount * models.LoanInterestRate / 100
	p.Cash += amount
	p.LoanDebt += amount
	p.Expenses += interest
	e.upsertLoanLiability(p)
	e.state.AddTransaction("banco", p.UserID, amount, "loan")
}

func (e *Engine) upsertLoanLiability(p *models.PlayerState) {
	payment := p.LoanDebt * models.LoanInterestRate / 100
	for i := range p.Liabilities {
		if p.Liabilities[i].Name == "Préstamo bancario" {
			if p.LoanDebt == 0 {
				p.Liabilities = append(p.Liabilities[:i], p.Liabilities[i+1:]...)
				return
			}
			p.Liabilities[i].Amount = p.LoanDebt
			p.Liabilities[i].Payment = payment
			return
		}
	}
	if p.LoanDebt > 0 {
		p.Liabilities = append(p.Liabilities, models.Liability{
			Name:    "Préstamo bancario",
			Amount:  p.LoanDebt,
			Payment: payment,
		})
	}
}

// TakeLoan solicita un préstamo bancario voluntario
func (e *Engine) TakeLoan(playerID string, amount int) error {
	if e.state.Phase == models.PhaseEnd {
		return ErrGameEnded
	}
	p := e.state.FindPlayer(playerID)
	if p == nil {
		return ErrUnknownPlayer
	}
	if reason := e.loanRejection(p, amount); reason != "" {
		e.state.AddLog(fmt.Sprintf("🏦 Préstamo rechazado para %s: %s", p.Name, reason))
		return nil
	}
	e.grantLoan(p, amount)
	e.state.AddLog(fmt.Sprintf("🏦 %s toma un préstamo de $%d (interés mensual $%d)", p.Name, amount, amount*models.LoanInterestRate/100))
	return nil
}

// RepayLoan abona a la deuda bancaria; nunca paga de más y revierte el
// interés de forma simétrica al préstamo
func (e *Engine) RepayLoan(playerID string, amount int) error {
	if e.state.Phase == models.PhaseEnd {
		return ErrGameEnded
	}
	p := e.state.FindPlayer(playerID)
	if p == nil {
		return ErrUnknownPlayer
	}
	if amount <= 0 || amount%models.LoanStep != 0 {
		e.state.AddLog(fmt.Sprintf("⚠️ El abono de %s debe ser múltiplo positivo de %d", p.Name, models.LoanStep))
		return nil
	}
	if amount > p.LoanDebt {
		amount = p.LoanDebt
	}
	if amount == 0 {
		e.state.AddLog(fmt.Sprintf("⚠️ %s no tiene deuda bancaria que abonar", p.Name))
		return nil
	}
	if p.Cash < amount {
		e.state.AddLog(fmt.Sprintf("⚠️ %s no tiene efectivo para abonar $%d", p.Name, amount))
		return nil
	}

	interest := amount * models.LoanInterestRate / 100
	p.Cash -= amount
	p.LoanDebt -= amount
	p.Expenses -= interest
	e.upsertLoanLiability(p)
	e.state.AddTransaction(p.UserID, "banco", amount, "repayLoan")
	e.state.AddLog(fmt.Sprintf("🏦 %s abona $%d a su préstamo (deuda restante $%d)", p.Name, amount, p.LoanDebt))
	return nil
}
