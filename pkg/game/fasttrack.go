package game

import (
	"fmt"

	"github.com/backsoul/cashflow/pkg/models"
	"github.com/google/uuid"
)

// resolveOwnedSquare maneja la caída en una casilla de negocio o sueño de
// la pista rápida: sin dueño se ofrece en venta, propia no pasa nada, y
// ajena obliga a comprarla al doble pagándole al dueño actual
func (e *Engine) resolveOwnedSquare(p *models.PlayerState, sq *models.BoardSquare) {
	switch sq.OwnerID {
	case "":
		cardType := models.CardBusiness
		if sq.Category == models.SquareDream {
			cardType = models.CardDream
		}
		e.state.CurrentCard = &models.Card{
			ID:          uuid.New().String(),
			Type:        cardType,
			Title:       sq.Title,
			Cost:        sq.Cost,
			Cashflow:    sq.Cashflow,
			SquareIndex: sq.Index,
		}
		e.state.AddLog(fmt.Sprintf("🏢 «%s» está disponible por $%d (flujo $%d)", sq.Title, sq.Cost, sq.Cashflow))

	case p.UserID:
		e.state.AddLog(fmt.Sprintf("🏢 %s visita su propiedad «%s»", p.Name, sq.Title))

	default:
		e.forceBuyout(p, sq)
	}
}

// buySquare compra una casilla libre de la pista rápida con la carta
// sintetizada como carta actual
func (e *Engine) buySquare(p *models.PlayerState, card *models.Card) {
	if card.SquareIndex < 0 || card.SquareIndex >= len(e.state.FastTrack) {
		return
	}
	sq := e.state.FastTrack[card.SquareIndex]
	if sq.OwnerID != "" {
		e.state.AddLog(fmt.Sprintf("⚠️ «%s» ya tiene dueño", sq.Title))
		return
	}
	if p.Cash < card.Cost {
		e.state.AddLog(fmt.Sprintf("⚠️ %s no tiene efectivo para comprar «%s» ($%d)", p.Name, sq.Title, card.Cost))
		return
	}

	p.Cash -= card.Cost
	e.state.AddTransaction(p.UserID, "banco", card.Cost, "buySquare")
	e.grantSquare(p, sq)
	e.state.CurrentCard = nil
	e.state.AddLog(fmt.Sprintf("🏢 %s compra «%s» por $%d", p.Name, sq.Title, card.Cost))
	e.checkWin(p)
}

// forceBuyout ejecuta la compra forzada al doble del precio de lista,
// pagada directamente al dueño actual, que pierde el activo y su flujo
func (e *Engine) forceBuyout(p *models.PlayerState, sq *models.BoardSquare) {
	owner := e.state.FindPlayer(sq.OwnerID)
	price := sq.Cost * models.BuyoutMultiplier
	e.state.AddLog(fmt.Sprintf("⚔️ %s cae en «%s» de %s: compra forzada por $%d", p.Name, sq.Title, ownerName(owner), price))

	if !e.forcePay(p, price, sq.OwnerID, "buyout") {
		return
	}
	if owner != nil {
		owner.Cash += price
		e.revokeSquare(owner, sq)
	}
	e.grantSquare(p, sq)
	e.state.AddLog(fmt.Sprintf("⚔️ «%s» ahora pertenece a %s", sq.Title, p.Name))
	e.checkWin(p)
}

func ownerName(owner *models.PlayerState) string {
	if owner == nil {
		return "otro jugador"
	}
	return owner.Name
}

// grantSquare entrega una casilla al jugador: registra dueño, activo y flujo
func (e *Engine) grantSquare(p *models.PlayerState, sq *models.BoardSquare) {
	sq.OwnerID = p.UserID
	e.state.FastTrackOwners[sq.Index] = p.UserID

	assetType := models.CardBusiness
	if sq.Category == models.SquareDream {
		assetType = models.CardDream
	}
	p.Assets = append(p.Assets, models.Asset{
		ID:          uuid.New().String(),
		Type:        assetType,
		Title:       sq.Title,
		Cost:        sq.Cost,
		Cashflow:    sq.Cashflow,
		SquareIndex: sq.Index,
	})
	p.PassiveIncome += sq.Cashflow
}

// revokeSquare quita una casilla a su dueño junto con su flujo
func (e *Engine) revokeSquare(owner *models.PlayerState, sq *models.BoardSquare) {
	for i := range owner.Assets {
		if owner.Assets[i].SquareIndex == sq.Index {
			owner.PassiveIncome -= owner.Assets[i].Cashflow
			owner.Assets = append(owner.Assets[:i], owner.Assets[i+1:]...)
			break
		}
	}
	sq.OwnerID = ""
	delete(e.state.FastTrackOwners, sq.Index)
}

// resolveLoss aplica la casilla de pérdida según su subtipo: auditoría y
// divorcio cuestan la mitad del efectivo, el robo todo, el incendio quita
// el activo de menor flujo y el allanamiento el de mayor flujo
func (e *Engine) resolveLoss(p *models.PlayerState, sq *models.BoardSquare) {
	switch sq.LossKind {
	case models.LossAudit, models.LossDivorce:
		loss := p.Cash / 2
		p.Cash -= loss
		e.state.AddTransaction(p.UserID, "pérdida", loss, sq.LossKind)
		e.state.AddLog(fmt.Sprintf("🔥 «%s»: %s pierde la mitad de su efectivo ($%d)", sq.Title, p.Name, loss))

	case models.LossTheft:
		loss := p.Cash
		p.Cash = 0
		e.state.AddTransaction(p.UserID, "pérdida", loss, sq.LossKind)
		e.state.AddLog(fmt.Sprintf("🔥 «%s»: %s pierde todo su efectivo ($%d)", sq.Title, p.Name, loss))

	case models.LossFire:
		e.loseAssetByCashflow(p, sq, false)

	case models.LossRaid:
		e.loseAssetByCashflow(p, sq, true)
	}
}

// loseAssetByCashflow quita el activo de menor o mayor flujo del jugador
func (e *Engine) loseAssetByCashflow(p *models.PlayerState, sq *models.BoardSquare, highest bool) {
	if len(p.Assets) == 0 {
		e.state.AddLog(fmt.Sprintf("🔥 «%s»: %s no tiene activos que perder", sq.Title, p.Name))
		return
	}
	target := 0
	for i := range p.Assets {
		if highest && p.Assets[i].Cashflow > p.Assets[target].Cashflow {
			target = i
		}
		if !highest && p.Assets[i].Cashflow < p.Assets[target].Cashflow {
			target = i
		}
	}
	lost := p.Assets[target]
	p.Assets = append(p.Assets[:target], p.Assets[target+1:]...)
	p.PassiveIncome -= lost.Cashflow
	p.RemoveLiability("Hipoteca: " + lost.Title)
	e.returnAssetCard(lost)
	e.state.AddLog(fmt.Sprintf("🔥 «%s»: %s pierde «%s» (flujo -$%d)", sq.Title, p.Name, lost.Title, lost.Cashflow))
}

// CanEnterFastTrack evalúa la puerta de entrada a la pista rápida: ingreso
// pasivo suficiente, sin deuda bancaria y con el efectivo mínimo
func (e *Engine) CanEnterFastTrack(p *models.PlayerState) bool {
	return !p.IsFastTrack &&
		p.PassiveIncome >= models.FastTrackMinPassive &&
		p.LoanDebt == 0 &&
		p.Cash >= models.FastTrackMinCash
}

// EnterFastTrack pasa al jugador a la pista rápida: el efectivo se pone en
// cero, el ingreso pasivo se multiplica como nuevo ingreso fijo, se acredita
// un primer día de flujo y los activos de la carrera vuelven a sus mazos
func (e *Engine) EnterFastTrack(playerID string, dreamSquare int) error {
	p, err := e.requireCurrent(playerID)
	if err != nil {
		return err
	}
	if e.state.Phase != models.PhaseRoll && e.state.Phase != models.PhaseAction {
		e.state.AddLog(fmt.Sprintf("⚠️ %s intentó entrar a la pista rápida fuera de su momento", p.Name))
		return nil
	}
	if !e.CanEnterFastTrack(p) {
		e.state.AddLog(fmt.Sprintf("⚠️ %s aún no cumple los requisitos de la pista rápida (pasivo $%d, deuda $%d, efectivo $%d)", p.Name, p.PassiveIncome, p.LoanDebt, p.Cash))
		return nil
	}

	for _, a := range p.Assets {
		e.returnAssetCard(a)
	}

	baseline := p.PassiveIncome
	newIncome := baseline * models.FastTrackMultiplier

	p.FastTrackBaseline = baseline
	p.PassiveIncome = newIncome
	p.Salary = 0
	p.Expenses = 0
	p.Cash = newIncome // Efectivo en cero más el primer día de flujo
	p.Assets = nil
	p.Liabilities = nil
	p.IsFastTrack = true
	p.Position = 0
	if dreamSquare > 0 && dreamSquare < len(e.state.FastTrack) &&
		e.state.FastTrack[dreamSquare].Category == models.SquareDream {
		p.DreamSquare = dreamSquare
	}

	e.state.AddTransaction("banco", p.UserID, newIncome, "fastTrackEntry")
	e.state.AddLog(fmt.Sprintf("🚀 ¡%s entra a la pista rápida! Ingreso fijo $%d (base $%d)", p.Name, newIncome, baseline))
	return nil
}

// checkWin evalúa la victoria en la pista rápida: crecer el ingreso pasivo
// por encima de la base de entrada, o poseer el sueño elegido y al menos
// dos negocios
func (e *Engine) checkWin(p *models.PlayerState) {
	if !p.IsFastTrack || p.HasWon {
		return
	}

	if p.PassiveGain() >= models.FastTrackWinGain {
		e.declareWinner(p, fmt.Sprintf("aumentó su ingreso pasivo en $%d", p.PassiveGain()))
		return
	}

	businesses := 0
	ownsDream := false
	for _, a := range p.Assets {
		switch a.Type {
		case models.CardBusiness:
			businesses++
		case models.CardDream:
			if p.DreamSquare == 0 || a.SquareIndex == p.DreamSquare {
				ownsDream = true
			}
		}
	}
	if ownsDream && businesses >= 2 {
		e.declareWinner(p, "cumplió su sueño con dos negocios propios")
	}
}

// declareWinner marca al ganador; queda fuera de la rotación pero visible
// en el ranking
func (e *Engine) declareWinner(p *models.PlayerState, reason string) {
	p.HasWon = true
	e.state.AddLog(fmt.Sprintf("🏆 ¡%s ganó la partida: %s!", p.Name, reason))
}
