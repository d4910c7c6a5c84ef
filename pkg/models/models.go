package models

import "time"

// Constantes económicas del juego
const (
	LoanStep            = 1000   // Los préstamos siempre son múltiplos de 1000
	LoanInterestRate    = 10     // Interés mensual: 10% del principal
	CharityTurnsGained  = 3      // Turnos con dados extra tras donar a la caridad
	CharityFastTrack    = 100000 // Donación fija en la pista rápida
	MaxChildren         = 3      // Máximo de hijos por jugador
	ChildExpense        = 1000   // Gasto mensual adicional por hijo
	ChildGift           = 5000   // Regalo único al nacer un hijo
	StockExchangeBonus  = 50000  // Bono de la bolsa al sacar 5 o 6
	FastTrackMinPassive = 10000  // Ingreso pasivo mínimo para entrar a la pista rápida
	FastTrackMinCash    = 200000 // Efectivo mínimo para entrar a la pista rápida
	FastTrackWinGain    = 50000  // Crecimiento de ingreso pasivo que gana el juego
	FastTrackMultiplier = 10     // El ingreso pasivo se multiplica al entrar
	BuyoutMultiplier    = 2      // Compra forzada de casillas ajenas: 2x el costo
)

// Mazos disponibles
const (
	DeckSmall   = "small"
	DeckBig     = "big"
	DeckMarket  = "market"
	DeckExpense = "expense"
)

// Tipos de carta (unión etiquetada: cada tipo usa sus propios campos)
const (
	CardStock      = "stock"
	CardRealEstate = "realEstate"
	CardBusiness   = "business"
	CardMarket     = "market"
	CardExpense    = "expense"
	CardDream      = "dream"
)

// Card es una plantilla inmutable de carta; al robarse recibe un ID de instancia
type Card struct {
	ID            string `json:"id,omitempty"`
	TemplateID    int    `json:"templateId"`
	Deck          string `json:"deck"`
	Type          string `json:"type"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	Cost          int    `json:"cost,omitempty"`
	DownPayment   int    `json:"downPayment,omitempty"`
	Cashflow      int    `json:"cashflow,omitempty"`
	OfferPrice    int    `json:"offerPrice,omitempty"`
	Symbol        string `json:"symbol,omitempty"`
	Mandatory     bool   `json:"mandatory,omitempty"`
	RequiresAsset string `json:"requiresAsset,omitempty"` // Tipo de activo que exige una carta obligatoria
	SquareIndex   int    `json:"squareIndex,omitempty"`   // Solo cartas sintetizadas desde casillas de la pista rápida
}

// CardTemplates agrupa los cuatro juegos de plantillas de un tablero
type CardTemplates struct {
	SmallDeals []Card `json:"smallDeals"`
	BigDeals   []Card `json:"bigDeals"`
	Market     []Card `json:"market"`
	Expenses   []Card `json:"expenses"`
}

// CardsData estructura del archivo JSON de cartas
type CardsData struct {
	Templates CardTemplates `json:"templates"`
	Metadata  struct {
		Version     string `json:"version"`
		LastUpdated string `json:"lastUpdated"`
		Description string `json:"description"`
	} `json:"metadata"`
}

// ActiveCard es una carta visible para varios jugadores, con expiración
// y descartes independientes por jugador
type ActiveCard struct {
	ID            string    `json:"id"`
	Card          Card      `json:"card"`
	DrawnBy       string    `json:"drawnBy"`
	TransferredTo string    `json:"transferredTo,omitempty"`
	PurchasedBy   []string  `json:"purchasedBy,omitempty"`
	DismissedBy   []string  `json:"dismissedBy,omitempty"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// Dismissed indica si el jugador ya descartó o compró esta carta
func (ac *ActiveCard) Dismissed(playerID string) bool {
	for _, id := range ac.DismissedBy {
		if id == playerID {
			return true
		}
	}
	for _, id := range ac.PurchasedBy {
		if id == playerID {
			return true
		}
	}
	return false
}

// Categorías de casillas del tablero
const (
	SquarePayday        = "payday"
	SquareDeal          = "deal"
	SquareMarket        = "market"
	SquareExpense       = "expense"
	SquareBaby          = "baby"
	SquareCharity       = "charity"
	SquareDownsized     = "downsized"
	SquareBusiness      = "business"
	SquareDream         = "dream"
	SquareLoss          = "loss"
	SquareStockExchange = "stockExchange"
	SquareLottery       = "lottery"
)

// Subtipos de las casillas de pérdida
const (
	LossAudit   = "audit"
	LossDivorce = "divorce"
	LossTheft   = "theft"
	LossFire    = "fire"
	LossRaid    = "raid"
)

// BoardSquare es una casilla estática del tablero; en la pista rápida las
// casillas de negocio/sueño llevan un dueño mutable compartido por la sala
type BoardSquare struct {
	Index    int    `json:"index"`
	Category string `json:"category"`
	Title    string `json:"title"`
	Cost     int    `json:"cost,omitempty"`
	Cashflow int    `json:"cashflow,omitempty"`
	LossKind string `json:"lossKind,omitempty"`
	OwnerID  string `json:"ownerId,omitempty"`
}

// Transaction es una entrada inmutable del libro de movimientos de efectivo
type Transaction struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Amount    int       `json:"amount"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
}

// Profession define las finanzas iniciales de un jugador
type Profession struct {
	Name     string `json:"name"`
	Salary   int    `json:"salary"`
	Expenses int    `json:"expenses"`
	Cash     int    `json:"cash"`
}

// ProfessionsData estructura del archivo JSON de profesiones
type ProfessionsData struct {
	Professions []Profession `json:"professions"`
}

// APIResponse estructura estándar para respuestas de API
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}
