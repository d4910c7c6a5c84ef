package models

import "time"

// Fases del turno
const (
	PhaseRoll              = "ROLL"
	PhaseAction            = "ACTION"
	PhaseOpportunityChoice = "OPPORTUNITY_CHOICE"
	PhaseCharityChoice     = "CHARITY_CHOICE"
	PhaseBabyRoll          = "BABY_ROLL"
	PhaseDownsizedDecision = "DOWNSIZED_DECISION"
	PhaseEnd               = "END"
)

// Límites de las listas acotadas del estado
const (
	MaxLogEntries    = 200
	MaxTransactions  = 50
	MaxChatMessages  = 100
	TurnSeconds      = 120 // Plazo de cada turno
	ActiveCardSecs   = 60  // Vida de una carta de mercado compartida
	TransferCardSecs = 120 // Vida de una oportunidad transferida a otro jugador
)

// LogEntry es una línea legible del registro de eventos de la sala
type LogEntry struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatMessage es un mensaje del chat de la sala
type ChatMessage struct {
	PlayerID  string    `json:"playerId"`
	Name      string    `json:"name"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// DeckState es el orden restante de los cuatro mazos, persistido junto con
// el estado para sobrevivir reinicios del proceso
type DeckState struct {
	Small   []Card `json:"small"`
	Big     []Card `json:"big"`
	Market  []Card `json:"market"`
	Expense []Card `json:"expense"`
}

// DeckCount reporta cartas restantes y totales de un mazo para la UI
type DeckCount struct {
	Remaining int `json:"remaining"`
	Total     int `json:"total"`
}

// GameState es el estado autoritativo de una sala en juego; lo muta
// exclusivamente su motor a través del coordinador
type GameState struct {
	RoomID             string         `json:"roomId"`
	HostID             string         `json:"hostId"`
	Players            []*PlayerState `json:"players"`
	CurrentPlayerIndex int            `json:"currentPlayerIndex"`
	Phase              string         `json:"phase"`

	// Los tableros se reconstruyen desde el código al rehidratar; solo los
	// dueños de casillas de la pista rápida se persisten
	RatRace         []*BoardSquare `json:"-"`
	FastTrack       []*BoardSquare `json:"-"`
	FastTrackOwners map[int]string `json:"fastTrackOwners,omitempty"`

	CurrentCard *Card         `json:"currentCard,omitempty"`
	ActiveCards []*ActiveCard `json:"activeCards,omitempty"`
	Decks       *DeckState    `json:"decks,omitempty"`

	Log          []LogEntry    `json:"log"`
	Transactions []Transaction `json:"transactions"`
	Chat         []ChatMessage `json:"chat"`

	TurnExpiresAt time.Time `json:"turnExpiresAt"`
	StartedAt     time.Time `json:"startedAt"`
}

// Board devuelve el tablero que corresponde al jugador
func (g *GameState) Board(p *PlayerState) []*BoardSquare {
	if p.IsFastTrack {
		return g.FastTrack
	}
	return g.RatRace
}

// CurrentPlayer devuelve el jugador con el turno activo
func (g *GameState) CurrentPlayer() *PlayerState {
	if g.CurrentPlayerIndex < 0 || g.CurrentPlayerIndex >= len(g.Players) {
		return nil
	}
	return g.Players[g.CurrentPlayerIndex]
}

// FindPlayer busca un jugador por ID de usuario
func (g *GameState) FindPlayer(userID string) *PlayerState {
	for _, p := range g.Players {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

// AddLog agrega una entrada al registro acotado (FIFO)
func (g *GameState) AddLog(message string) {
	g.Log = append(g.Log, LogEntry{Message: message, Timestamp: time.Now()})
	if len(g.Log) > MaxLogEntries {
		g.Log = g.Log[len(g.Log)-MaxLogEntries:]
	}
}

// AddTransaction registra un movimiento de efectivo en el libro acotado
func (g *GameState) AddTransaction(from, to string, amount int, category string) {
	g.Transactions = append(g.Transactions, Transaction{
		From:      from,
		To:        to,
		Amount:    amount,
		Category:  category,
		Timestamp: time.Now(),
	})
	if len(g.Transactions) > MaxTransactions {
		g.Transactions = g.Transactions[len(g.Transactions)-MaxTransactions:]
	}
}

// AddChat agrega un mensaje al chat acotado
func (g *GameState) AddChat(playerID, name, text string) {
	g.Chat = append(g.Chat, ChatMessage{
		PlayerID:  playerID,
		Name:      name,
		Text:      text,
		Timestamp: time.Now(),
	})
	if len(g.Chat) > MaxChatMessages {
		g.Chat = g.Chat[len(g.Chat)-MaxChatMessages:]
	}
}
