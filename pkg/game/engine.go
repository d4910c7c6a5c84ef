package game

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/backsoul/cashflow/pkg/models"
	"github.com/google/uuid"
)

// Errores de guardia: el coordinador los convierte en un evento de error
// hacia el cliente infractor. Las jugadas inválidas normales no son errores
// de Go: se registran en el log acotado y dejan el estado sin cambios.
var (
	ErrNotYourTurn   = errors.New("no es tu turno")
	ErrUnknownPlayer = errors.New("jugador no encontrado en la sala")
	ErrNotHost       = errors.New("solo el anfitrión puede ejecutar esta acción")
	ErrGameEnded     = errors.New("la partida ya terminó")
)

// Engine es la máquina de estados de una sala. Lógica pura: no hace I/O y
// solo la toca el coordinador, una acción a la vez.
type Engine struct {
	state *models.GameState
	cards *CardManager
	rng   *rand.Rand
}

// NewEngine crea la partida de una sala: baraja el orden de los jugadores,
// arma los tableros y los mazos y deja la fase en ROLL para el primero
func NewEngine(roomID, hostID string, players []*models.PlayerState, templates models.CardTemplates, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	shuffled := append([]*models.PlayerState{}, players...)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	state := &models.GameState{
		RoomID:             roomID,
		HostID:             hostID,
		Players:            shuffled,
		CurrentPlayerIndex: 0,
		Phase:              models.PhaseRoll,
		RatRace:            NewRatRaceBoard(),
		FastTrack:          NewFastTrackBoard(),
		FastTrackOwners:    make(map[int]string),
		TurnExpiresAt:      time.Now().Add(models.TurnSeconds * time.Second),
		StartedAt:          time.Now(),
	}

	e := &Engine{
		state: state,
		cards: NewCardManager(templates, rng),
		rng:   rng,
	}

	state.AddLog(fmt.Sprintf("🎲 Partida iniciada con %d jugadores. Empieza %s", len(shuffled), shuffled[0].Name))
	return e
}

// RestoreEngine rehidrata un motor desde un estado persistido. Los tableros
// siempre se reaplican desde el código; solo los dueños de casillas de la
// pista rápida se restauran del snapshot.
func RestoreEngine(state *models.GameState, templates models.CardTemplates, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	state.RatRace = NewRatRaceBoard()
	state.FastTrack = NewFastTrackBoard()
	if state.FastTrackOwners == nil {
		state.FastTrackOwners = make(map[int]string)
	}
	for idx, owner := range state.FastTrackOwners {
		if idx >= 0 && idx < len(state.FastTrack) {
			state.FastTrack[idx].OwnerID = owner
		}
	}

	e := &Engine{
		state: state,
		cards: RestoreCardManager(templates, state.Decks, rng),
		rng:   rng,
	}
	state.AddLog("🔁 Sala restaurada tras reinicio del servidor")
	return e
}

// State devuelve el estado autoritativo de la sala
func (e *Engine) State() *models.GameState {
	return e.state
}

// Snapshot completa el estado con el orden de los mazos y lo devuelve listo
// para serializar
func (e *Engine) Snapshot() *models.GameState {
	e.state.Decks = e.cards.Snapshot()
	return e.state
}

// DeckCounts expone los contadores de mazos para la UI
func (e *Engine) DeckCounts() map[string]models.DeckCount {
	return e.cards.DeckCounts()
}

// requireCurrent valida que el actor tenga el turno activo
func (e *Engine) requireCurrent(playerID string) (*models.PlayerState, error) {
	if e.state.Phase == models.PhaseEnd {
		return nil, ErrGameEnded
	}
	p := e.state.FindPlayer(playerID)
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	current := e.state.CurrentPlayer()
	if current == nil || current.UserID != playerID {
		return nil, ErrNotYourTurn
	}
	return p, nil
}

func (e *Engine) rollDie() int {
	return e.rng.Intn(6) + 1
}

// RollDice lanza los dados y mueve al jugador. Fuera de la fase ROLL es una
// no-operación que solo deja constancia en el log.
func (e *Engine) RollDice(playerID string, diceCount int) error {
	p, err := e.requireCurrent(playerID)
	if err != nil {
		return err
	}
	if e.state.Phase != models.PhaseRoll {
		e.state.AddLog(fmt.Sprintf("⚠️ %s intentó lanzar dados fuera de fase", p.Name))
		return nil
	}

	// Un turno castigado no mueve: se consume y el jugador cierra manualmente
	if p.SkippedTurns > 0 {
		p.SkippedTurns--
		e.state.Phase = models.PhaseAction
		e.state.AddLog(fmt.Sprintf("⏸️ %s pierde este turno (le quedan %d castigados)", p.Name, p.SkippedTurns))
		return nil
	}

	maxDice := 1
	if p.IsFastTrack {
		maxDice = 2
	}
	if p.CharityTurns > 0 {
		maxDice++
	}
	if diceCount < 1 {
		diceCount = 1
	}
	if diceCount > maxDice {
		diceCount = maxDice
	}
	if p.CharityTurns > 0 {
		p.CharityTurns--
	}

	total := 0
	for i := 0; i < diceCount; i++ {
		total += e.rollDie()
	}

	e.state.Phase = models.PhaseAction
	e.state.AddLog(fmt.Sprintf("🎲 %s lanza %d dado(s) y saca %d", p.Name, diceCount, total))
	e.moveBy(p, total)
	return nil
}

// moveBy avanza al jugador por su tablero pagando cada día de pago que
// sobrepasa, y resuelve la casilla donde cae. Una bancarrota a mitad del
// recorrido reinicia al jugador y cancela el resto del movimiento.
func (e *Engine) moveBy(p *models.PlayerState, steps int) {
	board := e.state.Board(p)
	n := len(board)
	for i := 1; i <= steps; i++ {
		p.Position = (p.Position + 1) % n
		if i < steps && board[p.Position].Category == models.SquarePayday {
			if !e.payCashflow(p) {
				return
			}
		}
	}
	e.resolveLanding(p, board[p.Position])
}

// resolveLanding despacha según la categoría de la casilla. La lotería
// reingresa aquí de forma recursiva con una casilla sorteada.
func (e *Engine) resolveLanding(p *models.PlayerState, sq *models.BoardSquare) {
	switch sq.Category {
	case models.SquarePayday:
		// La casilla de salida solo paga al sobrepasarla; pagar también al
		// caer duplicaría el día de pago en la vuelta completa
		if sq.Index == 0 {
			e.state.AddLog(fmt.Sprintf("🏁 %s cae en la salida", p.Name))
			return
		}
		e.payCashflow(p)

	case models.SquareDeal:
		e.state.Phase = models.PhaseOpportunityChoice
		e.state.AddLog(fmt.Sprintf("💼 %s cayó en Oportunidad: elige trato pequeño o grande", p.Name))

	case models.SquareMarket:
		card := e.cards.Draw(models.DeckMarket)
		if card == nil {
			e.state.AddLog("⚠️ No hay cartas de mercado disponibles")
			return
		}
		e.state.ActiveCards = append(e.state.ActiveCards, &models.ActiveCard{
			ID:        uuid.New().String(),
			Card:      *card,
			DrawnBy:   p.UserID,
			ExpiresAt: time.Now().Add(models.ActiveCardSecs * time.Second),
		})
		e.state.AddLog(fmt.Sprintf("🏪 Mercado: «%s» visible para todos por %d segundos", card.Title, models.ActiveCardSecs))

	case models.SquareExpense:
		card := e.cards.Draw(models.DeckExpense)
		if card == nil {
			e.state.AddLog("⚠️ No hay cartas de gasto disponibles")
			return
		}
		card.Mandatory = true
		e.applyRequiredAsset(p, card)
		e.state.CurrentCard = card
		e.state.AddLog(fmt.Sprintf("💸 Gasto obligatorio para %s: «%s» por $%d", p.Name, card.Title, card.Cost))

	case models.SquareBaby:
		if p.ChildrenCount >= models.MaxChildren {
			e.state.AddLog(fmt.Sprintf("👶 %s ya tiene %d hijos, la cigüeña pasa de largo", p.Name, p.ChildrenCount))
			return
		}
		e.state.Phase = models.PhaseBabyRoll
		e.state.AddLog(fmt.Sprintf("👶 %s espera un bebé: lanza el dado", p.Name))

	case models.SquareDownsized:
		e.state.Phase = models.PhaseDownsizedDecision
		e.state.AddLog(fmt.Sprintf("📉 %s fue despedido: debe decidir cómo pagar", p.Name))

	case models.SquareCharity:
		e.state.Phase = models.PhaseCharityChoice
		e.state.AddLog(fmt.Sprintf("❤️ %s puede donar a la caridad para lanzar dados extra", p.Name))

	case models.SquareBusiness, models.SquareDream:
		e.resolveOwnedSquare(p, sq)

	case models.SquareLoss:
		e.resolveLoss(p, sq)

	case models.SquareStockExchange:
		roll := e.rollDie()
		if roll >= 5 {
			p.Cash += models.StockExchangeBonus
			e.state.AddTransaction("bolsa", p.UserID, models.StockExchangeBonus, "stockExchange")
			e.state.AddLog(fmt.Sprintf("📈 %s sacó %d en la bolsa y gana $%d", p.Name, roll, models.StockExchangeBonus))
		} else {
			e.state.AddLog(fmt.Sprintf("📉 %s sacó %d en la bolsa: sin premio", p.Name, roll))
		}

	case models.SquareLottery:
		pool := LotteryPool(e.state.FastTrack)
		if len(pool) == 0 {
			return
		}
		chosen := pool[e.rng.Intn(len(pool))]
		e.state.AddLog(fmt.Sprintf("🎰 Lotería: %s resuelve «%s» (casilla %d)", p.Name, chosen.Title, chosen.Index))
		e.resolveLanding(p, chosen)
	}
}

// applyRequiredAsset pone en cero el costo de una carta obligatoria si el
// jugador no posee ningún activo del tipo que la carta exige
func (e *Engine) applyRequiredAsset(p *models.PlayerState, card *models.Card) {
	if card.RequiresAsset == "" {
		return
	}
	for _, a := range p.Assets {
		if a.Type == card.RequiresAsset {
			return
		}
	}
	card.Cost = 0
	e.state.AddLog(fmt.Sprintf("ℹ️ «%s» no aplica para %s: costo en $0", card.Title, p.Name))
}

// payCashflow acredita el flujo mensual neto. Un flujo negativo se cobra
// como pago forzoso y puede terminar en bancarrota; devuelve false si el
// jugador quebró al cubrirlo.
func (e *Engine) payCashflow(p *models.PlayerState) bool {
	amount := p.NetCashflow()
	if amount >= 0 {
		p.Cash += amount
		e.state.AddTransaction("banco", p.UserID, amount, "payday")
		e.state.AddLog(fmt.Sprintf("💰 Día de pago: %s recibe $%d", p.Name, amount))
		return true
	}
	e.state.AddLog(fmt.Sprintf("💰 Día de pago: %s debe cubrir un flujo negativo de $%d", p.Name, -amount))
	return e.forcePay(p, -amount, "banco", "payday")
}

// forcePay cobra un monto obligatorio. Si el efectivo no alcanza intenta un
// préstamo automático; si tampoco alcanza, el jugador entra en recuperación
// de bancarrota. Devuelve true si el pago se completó.
func (e *Engine) forcePay(p *models.PlayerState, amount int, to, category string) bool {
	if amount <= 0 {
		return true
	}
	if p.Cash < amount {
		deficit := amount - p.Cash
		loan := ((deficit + models.LoanStep - 1) / models.LoanStep) * models.LoanStep
		if reason := e.loanRejection(p, loan); reason == "" {
			e.grantLoan(p, loan)
			e.state.AddLog(fmt.Sprintf("🏦 Préstamo automático de $%d para %s", loan, p.Name))
		} else {
			e.state.AddLog(fmt.Sprintf("🏦 El banco rechaza el préstamo automático de %s: %s", p.Name, reason))
			e.bankrupt(p)
			return false
		}
	}
	p.Cash -= amount
	e.state.AddTransaction(p.UserID, to, amount, category)
	e.state.AddLog(fmt.Sprintf("💸 %s paga $%d (%s)", p.Name, amount, category))
	return true
}

// bankrupt reinicia al jugador a las finanzas iniciales de su profesión.
// No es eliminación: sigue jugando con la capacidad de préstamo reducida a
// la mitad de forma permanente.
func (e *Engine) bankrupt(p *models.PlayerState) {
	for _, a := range p.Assets {
		e.returnAssetCard(a)
	}

	start := p.StartFinances
	p.Cash = start.Cash
	p.Salary = start.Salary
	p.Expenses = start.Expenses
	p.PassiveIncome = 0
	p.Assets = nil
	p.Liabilities = nil
	p.LoanDebt = 0
	p.ChildrenCount = 0
	p.SkippedTurns = 0
	p.CharityTurns = 0
	p.Position = 0
	p.IsFastTrack = false
	p.DreamSquare = 0
	p.FastTrackBaseline = 0
	p.LoanLimitFactor = 0.5

	e.state.Phase = models.PhaseAction
	e.state.AddLog(fmt.Sprintf("💥 %s quebró: vuelve a empezar como %s con la mitad de capacidad de préstamo", p.Name, p.Profession))
}

// returnAssetCard devuelve al mazo de origen la carta detrás de un activo y
// libera la casilla si era de la pista rápida
func (e *Engine) returnAssetCard(a models.Asset) {
	// Las posiciones accionarias no retienen carta: la carta de precio ya
	// volvió a circular al comprarlas
	if a.Type == models.CardStock {
		return
	}
	if a.SquareIndex > 0 && a.SquareIndex < len(e.state.FastTrack) {
		sq := e.state.FastTrack[a.SquareIndex]
		if sq.OwnerID != "" {
			sq.OwnerID = ""
			delete(e.state.FastTrackOwners, a.SquareIndex)
		}
		return
	}
	if a.Deck == "" {
		return
	}
	e.cards.Discard(models.Card{
		TemplateID: a.TemplateID,
		Deck:       a.Deck,
		Type:       a.Type,
		Title:      a.Title,
		Cost:       a.Cost,
		Cashflow:   a.Cashflow,
		Symbol:     a.Symbol,
	})
}

// ExpireActiveCards retira las cartas compartidas vencidas y devuelve sus
// plantillas al mazo. Devuelve true si algo cambió.
func (e *Engine) ExpireActiveCards(now time.Time) bool {
	changed := false
	kept := e.state.ActiveCards[:0]
	for _, ac := range e.state.ActiveCards {
		if now.After(ac.ExpiresAt) {
			e.cards.Discard(ac.Card)
			e.state.AddLog(fmt.Sprintf("⌛ La carta «%s» expiró y vuelve al mazo", ac.Card.Title))
			changed = true
			continue
		}
		kept = append(kept, ac)
	}
	e.state.ActiveCards = kept
	return changed
}

// TurnExpired indica si el plazo del turno actual ya venció
func (e *Engine) TurnExpired(now time.Time) bool {
	return e.state.Phase != models.PhaseEnd && now.After(e.state.TurnExpiresAt)
}

func (e *Engine) findActiveCard(cardID string) *models.ActiveCard {
	for _, ac := range e.state.ActiveCards {
		if ac.ID == cardID || ac.Card.ID == cardID {
			return ac
		}
	}
	return nil
}

func (e *Engine) removeActiveCard(cardID string) {
	for i, ac := range e.state.ActiveCards {
		if ac.ID == cardID {
			e.state.ActiveCards = append(e.state.ActiveCards[:i], e.state.ActiveCards[i+1:]...)
			return
		}
	}
}
