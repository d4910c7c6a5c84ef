package game

import (
	"math/rand"

	"github.com/backsoul/cashflow/pkg/models"
	"github.com/google/uuid"
)

// CardManager mantiene los cuatro mazos mutables de una sala. Cada motor
// tiene su propia instancia; no hay mazos compartidos entre salas.
type CardManager struct {
	templates models.CardTemplates
	small     []models.Card
	big       []models.Card
	market    []models.Card
	expense   []models.Card
	rng       *rand.Rand
}

// NewCardManager crea los mazos como copias barajadas de las plantillas
func NewCardManager(templates models.CardTemplates, rng *rand.Rand) *CardManager {
	cm := &CardManager{templates: templates, rng: rng}
	cm.small = cm.shuffled(templates.SmallDeals, models.DeckSmall)
	cm.big = cm.shuffled(templates.BigDeals, models.DeckBig)
	cm.market = cm.shuffled(templates.Market, models.DeckMarket)
	cm.expense = cm.shuffled(templates.Expenses, models.DeckExpense)
	return cm
}

// RestoreCardManager reconstruye los mazos desde un estado persistido
func RestoreCardManager(templates models.CardTemplates, decks *models.DeckState, rng *rand.Rand) *CardManager {
	if decks == nil {
		return NewCardManager(templates, rng)
	}
	return &CardManager{
		templates: templates,
		small:     append([]models.Card{}, decks.Small...),
		big:       append([]models.Card{}, decks.Big...),
		market:    append([]models.Card{}, decks.Market...),
		expense:   append([]models.Card{}, decks.Expense...),
		rng:       rng,
	}
}

func (cm *CardManager) shuffled(templates []models.Card, deck string) []models.Card {
	out := make([]models.Card, len(templates))
	copy(out, templates)
	for i := range out {
		out[i].Deck = deck
	}
	cm.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Draw roba la primera carta del mazo indicado. Un mazo agotado se rellena
// desde las plantillas antes de robar: robar nunca falla mientras existan
// plantillas.
func (cm *CardManager) Draw(deck string) *models.Card {
	pile := cm.pile(deck)
	if len(*pile) == 0 {
		*pile = cm.shuffled(cm.templatesFor(deck), deck)
	}
	if len(*pile) == 0 {
		return nil
	}
	card := (*pile)[0]
	*pile = (*pile)[1:]
	card.ID = uuid.New().String()
	return &card
}

// Discard devuelve una carta al final del mazo de su categoría original.
// Las cartas de acciones también regresan para que vuelvan a circular.
func (cm *CardManager) Discard(card models.Card) {
	card.ID = ""
	pile := cm.pile(card.Deck)
	if pile == nil {
		return
	}
	*pile = append(*pile, card)
}

// Reshuffle baraja las cartas restantes de los cuatro mazos
func (cm *CardManager) Reshuffle() {
	for _, deck := range []string{models.DeckSmall, models.DeckBig, models.DeckMarket, models.DeckExpense} {
		pile := cm.pile(deck)
		cm.rng.Shuffle(len(*pile), func(i, j int) { (*pile)[i], (*pile)[j] = (*pile)[j], (*pile)[i] })
	}
}

// DeckCounts reporta cartas restantes y totales por mazo para la UI
func (cm *CardManager) DeckCounts() map[string]models.DeckCount {
	return map[string]models.DeckCount{
		models.DeckSmall:   {Remaining: len(cm.small), Total: len(cm.templates.SmallDeals)},
		models.DeckBig:     {Remaining: len(cm.big), Total: len(cm.templates.BigDeals)},
		models.DeckMarket:  {Remaining: len(cm.market), Total: len(cm.templates.Market)},
		models.DeckExpense: {Remaining: len(cm.expense), Total: len(cm.templates.Expenses)},
	}
}

// Snapshot serializa el orden restante de los mazos para persistencia
func (cm *CardManager) Snapshot() *models.DeckState {
	return &models.DeckState{
		Small:   append([]models.Card{}, cm.small...),
		Big:     append([]models.Card{}, cm.big...),
		Market:  append([]models.Card{}, cm.market...),
		Expense: append([]models.Card{}, cm.expense...),
	}
}

func (cm *CardManager) pile(deck string) *[]models.Card {
	switch deck {
	case models.DeckSmall:
		return &cm.small
	case models.DeckBig:
		return &cm.big
	case models.DeckMarket:
		return &cm.market
	case models.DeckExpense:
		return &cm.expense
	}
	return nil
}

func (cm *CardManager) templatesFor(deck string) []models.Card {
	switch deck {
	case models.DeckSmall:
		return cm.templates.SmallDeals
	case models.DeckBig:
		return cm.templates.BigDeals
	case models.DeckMarket:
		return cm.templates.Market
	case models.DeckExpense:
		return cm.templates.Expenses
	}
	return nil
}
