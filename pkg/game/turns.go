package game

import (
	"fmt"
	"time"

	"github.com/backsoul/cashflow/pkg/models"
)

// EndTurn cierra el turno del jugador actual a petición suya
func (e *Engine) EndTurn(playerID string) error {
	_, err := e.requireCurrent(playerID)
	if err != nil {
		return err
	}
	e.advanceTurn()
	return nil
}

// ForceEndTurn cierra el turno cuando el plazo venció; lo invoca el tick
// global del coordinador como una acción serializada más
func (e *Engine) ForceEndTurn() {
	current := e.state.CurrentPlayer()
	if current != nil {
		e.state.AddLog(fmt.Sprintf("⏰ Se agotó el tiempo del turno de %s", current.Name))
	}
	e.advanceTurn()
}

// advanceTurn descarta la carta pendiente, pasa el turno al siguiente
// jugador elegible y reinicia fase y plazo. Un reintento acotado a dos
// vueltas completas evita ciclos infinitos si nadie es elegible.
func (e *Engine) advanceTurn() {
	if e.state.Phase == models.PhaseEnd {
		return
	}

	if card := e.state.CurrentCard; card != nil {
		e.cards.Discard(*card)
		e.state.CurrentCard = nil
	}

	n := len(e.state.Players)
	idx := e.state.CurrentPlayerIndex
	for attempt := 0; attempt < 2*n; attempt++ {
		idx = (idx + 1) % n
		candidate := e.state.Players[idx]
		if !candidate.IsEligible() {
			continue
		}
		if candidate.SkippedTurns > 0 {
			// Los castigados se saltan al rotar, consumiendo un turno
			candidate.SkippedTurns--
			e.state.AddLog(fmt.Sprintf("⏸️ %s pierde su turno en la rotación (quedan %d)", candidate.Name, candidate.SkippedTurns))
			continue
		}
		e.state.CurrentPlayerIndex = idx
		e.state.Phase = models.PhaseRoll
		e.state.TurnExpiresAt = time.Now().Add(models.TurnSeconds * time.Second)
		e.state.AddLog(fmt.Sprintf("➡️ Turno de %s", candidate.Name))
		return
	}

	// Nadie es elegible: si alguien ya ganó la partida termina, si no el
	// estado queda intacto
	for _, p := range e.state.Players {
		if p.HasWon {
			e.finishGame()
			return
		}
	}
	e.state.AddLog("⚠️ No hay jugadores elegibles para recibir el turno")
}

// finishGame cierra la partida y deja el ranking final en el log
func (e *Engine) finishGame() {
	if e.state.Phase == models.PhaseEnd {
		return
	}
	e.state.Phase = models.PhaseEnd
	rankings := e.CalculateFinalRankings()
	if len(rankings) > 0 {
		e.state.AddLog(fmt.Sprintf("🏁 Partida terminada. Primer lugar: %s", rankings[0].Name))
	} else {
		e.state.AddLog("🏁 Partida terminada")
	}
}

// Charity resuelve la decisión de caridad: donar otorga turnos con dados
// extra; donar o declinar cierran el turno
func (e *Engine) Charity(playerID string, donate bool) error {
	p, err := e.requireCurrent(playerID)
	if err != nil {
		return err
	}
	if e.state.Phase != models.PhaseCharityChoice {
		e.state.AddLog(fmt.Sprintf("⚠️ %s intentó decidir caridad fuera de fase", p.Name))
		return nil
	}

	if donate {
		amount := p.TotalIncome() / 10
		if p.IsFastTrack {
			amount = models.CharityFastTrack
		}
		if p.Cash < amount {
			e.state.AddLog(fmt.Sprintf("⚠️ %s no tiene efectivo para donar $%d", p.Name, amount))
			return nil
		}
		p.Cash -= amount
		p.CharityTurns = models.CharityTurnsGained
		e.state.AddTransaction(p.UserID, "caridad", amount, "charity")
		e.state.AddLog(fmt.Sprintf("❤️ %s dona $%d y jugará %d turnos con dados extra", p.Name, amount, models.CharityTurnsGained))
	} else {
		e.state.AddLog(fmt.Sprintf("🙅 %s declina donar a la caridad", p.Name))
	}
	e.advanceTurn()
	return nil
}

// RollBaby lanza el dado del bebé: 1-4 nace (hijo, gasto mensual y regalo
// único), 5-6 no pasa nada; siempre vuelve a ACTION
func (e *Engine) RollBaby(playerID string) error {
	p, err := e.requireCurrent(playerID)
	if err != nil {
		return err
	}
	if e.state.Phase != models.PhaseBabyRoll {
		e.state.AddLog(fmt.Sprintf("⚠️ %s intentó lanzar el dado del bebé fuera de fase", p.Name))
		return nil
	}

	roll := e.rollDie()
	if roll <= 4 && p.ChildrenCount < models.MaxChildren {
		p.ChildrenCount++
		p.Expenses += models.ChildExpense
		p.Cash += models.ChildGift
		e.state.AddTransaction("familia", p.UserID, models.ChildGift, "baby")
		e.state.AddLog(fmt.Sprintf("👶 ¡Nació el bebé de %s! (sacó %d) Gastos +$%d, regalo $%d", p.Name, roll, models.ChildExpense, models.ChildGift))
	} else {
		e.state.AddLog(fmt.Sprintf("👶 %s sacó %d: esta vez no hubo bebé", p.Name, roll))
	}
	e.state.Phase = models.PhaseAction
	return nil
}

// Opciones de la decisión de despido
const (
	DownsizedPayOnce  = "payOnce"  // Paga 1x gastos y pierde 2 turnos
	DownsizedPayTwice = "payTwice" // Paga 2x gastos sin perder turnos
)

// DecideDownsized resuelve el despido. Si el jugador no puede cubrir el
// pago ni con préstamo automático, entra en recuperación de bancarrota.
func (e *Engine) DecideDownsized(playerID, option string) error {
	p, err := e.requireCurrent(playerID)
	if err != nil {
		return err
	}
	if e.state.Phase != models.PhaseDownsizedDecision {
		e.state.AddLog(fmt.Sprintf("⚠️ %s intentó decidir el despido fuera de fase", p.Name))
		return nil
	}

	amount := p.Expenses
	skip := 2
	if option == DownsizedPayTwice {
		amount = p.Expenses * 2
		skip = 0
	}

	if e.forcePay(p, amount, "banco", "downsized") {
		p.SkippedTurns += skip
		if skip > 0 {
			e.state.AddLog(fmt.Sprintf("📉 %s paga $%d y pierde %d turnos", p.Name, amount, skip))
		} else {
			e.state.AddLog(fmt.Sprintf("📉 %s paga $%d y conserva sus turnos", p.Name, amount))
		}
	}
	e.advanceTurn()
	return nil
}

// SendChat agrega un mensaje al chat acotado de la sala
func (e *Engine) SendChat(playerID, text string) error {
	p := e.state.FindPlayer(playerID)
	if p == nil {
		return ErrUnknownPlayer
	}
	if text == "" {
		return nil
	}
	e.state.AddChat(p.UserID, p.Name, text)
	return nil
}

// requireHost valida que el actor sea el anfitrión de la sala
func (e *Engine) requireHost(playerID string) error {
	if e.state.HostID != playerID {
		return ErrNotHost
	}
	return nil
}

// HostSkipTurn fuerza el cierre del turno actual (solo anfitrión)
func (e *Engine) HostSkipTurn(hostID string) error {
	if err := e.requireHost(hostID); err != nil {
		return err
	}
	current := e.state.CurrentPlayer()
	if current != nil {
		e.state.AddLog(fmt.Sprintf("🛑 El anfitrión saltó el turno de %s", current.Name))
	}
	e.advanceTurn()
	return nil
}

// HostGiveCash regala efectivo a un jugador (solo anfitrión)
func (e *Engine) HostGiveCash(hostID, targetID string, amount int) error {
	if err := e.requireHost(hostID); err != nil {
		return err
	}
	target := e.state.FindPlayer(targetID)
	if target == nil {
		return ErrUnknownPlayer
	}
	if amount <= 0 {
		e.state.AddLog("⚠️ El monto del regalo debe ser positivo")
		return nil
	}
	target.Cash += amount
	e.state.AddTransaction("anfitrión", target.UserID, amount, "gift")
	e.state.AddLog(fmt.Sprintf("🎁 El anfitrión regala $%d a %s", amount, target.Name))
	return nil
}

// HostForceEndGame termina la partida de inmediato (solo anfitrión)
func (e *Engine) HostForceEndGame(hostID string) error {
	if err := e.requireHost(hostID); err != nil {
		return err
	}
	e.state.AddLog("🛑 El anfitrión terminó la partida")
	e.finishGame()
	return nil
}

// HostReshuffleDecks baraja las cartas restantes de los mazos (solo anfitrión)
func (e *Engine) HostReshuffleDecks(hostID string) error {
	if err := e.requireHost(hostID); err != nil {
		return err
	}
	e.cards.Reshuffle()
	e.state.AddLog("🔀 El anfitrión barajó los mazos")
	return nil
}

// HostKickPlayer expulsa a un jugador: queda fuera de la rotación pero
// visible en el ranking final
func (e *Engine) HostKickPlayer(hostID, targetID string) error {
	if err := e.requireHost(hostID); err != nil {
		return err
	}
	target := e.state.FindPlayer(targetID)
	if target == nil {
		return ErrUnknownPlayer
	}
	for _, a := range target.Assets {
		e.returnAssetCard(a)
	}
	target.Assets = nil
	target.IsBankrupted = true
	e.state.AddLog(fmt.Sprintf("🥾 El anfitrión expulsó a %s", target.Name))

	current := e.state.CurrentPlayer()
	if current != nil && current.UserID == targetID {
		e.advanceTurn()
	}
	return nil
}
