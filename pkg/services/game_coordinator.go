package services

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/backsoul/cashflow/pkg/game"
	"github.com/backsoul/cashflow/pkg/models"
	"github.com/backsoul/cashflow/pkg/websocket"
)

// GameRoom es una partida en memoria; su mutex serializa todas las acciones
// que tocan el motor
type GameRoom struct {
	mu     sync.Mutex
	engine *game.Engine
}

// Action es una acción de juego recibida por WebSocket
type Action struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// GameCoordinator mantiene las partidas activas en memoria, despacha las
// acciones de los jugadores y persiste los estados en Redis
type GameCoordinator struct {
	mu    sync.RWMutex
	rooms map[string]*GameRoom

	roomService       *RoomService
	deckService       *DeckService
	professionService *ProfessionService
	userService       *UserService
	hub               *websocket.Hub
}

// NewGameCoordinator crea una nueva instancia del coordinador de partidas
func NewGameCoordinator(roomService *RoomService, deckService *DeckService, professionService *ProfessionService, userService *UserService, hub *websocket.Hub) *GameCoordinator {
	return &GameCoordinator{
		rooms:             make(map[string]*GameRoom),
		roomService:       roomService,
		deckService:       deckService,
		professionService: professionService,
		userService:       userService,
		hub:               hub,
	}
}

// StartGame arranca la partida de una sala en espera: asigna profesiones,
// construye el motor y pasa la sala a estado "playing"
func (c *GameCoordinator) StartGame(roomID, hostID string) error {
	room, err := c.roomService.GetRoom(roomID)
	if err != nil {
		return err
	}
	if room.HostID != hostID {
		return game.ErrNotHost
	}
	if room.Status != models.RoomWaiting {
		return fmt.Errorf("la sala ya está en estado %s", room.Status)
	}
	if len(room.Players) < models.MinPlayers {
		return fmt.Errorf("se necesitan al menos %d jugadores", models.MinPlayers)
	}
	if !room.AllReady() {
		return fmt.Errorf("todos los jugadores deben estar listos")
	}

	templates, err := c.deckService.GetTemplates()
	if err != nil {
		return fmt.Errorf("error cargando cartas: %v", err)
	}

	players := make([]*models.PlayerState, 0, len(room.Players))
	for _, rp := range room.Players {
		profession, err := c.professionService.GetRandom()
		if err != nil {
			return fmt.Errorf("error asignando profesión: %v", err)
		}
		players = append(players, models.NewPlayerState(rp.ID, rp.Name, *profession))

		if err := c.userService.RecordGame(rp.ID); err != nil {
			log.Printf("⚠️ Error registrando partida de %s: %v", rp.Name, err)
		}
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	engine := game.NewEngine(roomID, hostID, players, templates, rng)

	c.mu.Lock()
	c.rooms[roomID] = &GameRoom{engine: engine}
	c.mu.Unlock()

	if err := c.roomService.SetStatus(room, models.RoomPlaying); err != nil {
		return fmt.Errorf("error actualizando sala: %v", err)
	}

	log.Printf("🎲 Partida iniciada en la sala %s con %d jugadores", room.Name, len(players))
	c.publish(roomID, engine)
	return nil
}

// Dispatch ejecuta una acción de juego sobre la partida de una sala. Los
// errores de guardia vuelven al remitente; las acciones inválidas suaves
// solo dejan rastro en el log de la partida.
func (c *GameCoordinator) Dispatch(roomID, playerID string, action Action) error {
	gr := c.room(roomID)
	if gr == nil {
		return fmt.Errorf("no hay partida activa en la sala %s", roomID)
	}

	gr.mu.Lock()
	defer gr.mu.Unlock()

	e := gr.engine
	var err error

	switch action.Type {
	case "rollDice":
		var p struct {
			DiceCount int `json:"diceCount"`
		}
		json.Unmarshal(action.Data, &p)
		err = e.RollDice(playerID, p.DiceCount)

	case "chooseDeal":
		var p struct {
			Size string `json:"size"`
		}
		json.Unmarshal(action.Data, &p)
		err = e.ChooseDeal(playerID, p.Size)

	case "buyAsset":
		var p struct {
			CardID   string `json:"cardId"`
			Quantity int    `json:"quantity"`
		}
		json.Unmarshal(action.Data, &p)
		err = e.BuyAsset(playerID, p.CardID, p.Quantity)

	case "sellAsset":
		var p struct {
			AssetID string `json:"assetId"`
		}
		json.Unmarshal(action.Data, &p)
		err = e.SellAsset(playerID, p.AssetID)

	case "sellStock":
		var p struct {
			Symbol   string `json:"symbol"`
			Quantity int    `json:"quantity"`
		}
		json.Unmarshal(action.Data, &p)
		err = e.SellStock(playerID, p.Symbol, p.Quantity)

	case "dismissCard":
		var p struct {
			CardID string `json:"cardId"`
		}
		json.Unmarshal(action.Data, &p)
		err = e.DismissCard(playerID, p.CardID)

	case "transferDeal":
		var p struct {
			ToPlayerID string `json:"toPlayerId"`
		}
		json.Unmarshal(action.Data, &p)
		err = e.TransferDeal(playerID, p.ToPlayerID)

	case "transferAsset":
		var p struct {
			ToPlayerID string `json:"toPlayerId"`
			AssetID    string `json:"assetId"`
			Quantity   int    `json:"quantity"`
		}
		json.Unmarshal(action.Data, &p)
		err = e.TransferAsset(playerID, p.ToPlayerID, p.AssetID, p.Quantity)

	case "transferFunds":
		var p struct {
			ToPlayerID string `json:"toPlayerId"`
			Amount     int    `json:"amount"`
		}
		json.Unmarshal(action.Data, &p)
		err = e.TransferFunds(playerID, p.ToPlayerID, p.Amount)

	case "takeLoan":
		var p struct {
			Amount int `json:"amount"`
		}
		json.Unmarshal(action.Data, &p)
		err = e.TakeLoan(playerID, p.Amount)

	case "repayLoan":
		var p struct {
			Amount int `json:"amount"`
		}
		json.Unmarshal(action.Data, &p)
		err = e.RepayLoan(playerID, p.Amount)

	case "charity":
		var p struct {
			Donate bool `json:"donate"`
		}
		json.Unmarshal(action.Data, &p)
		err = e.Charity(playerID, p.Donate)

	case "rollBaby":
		err = e.RollBaby(playerID)

	case "decideDownsized":
		var p struct {
			Option string `json:"option"`
		}
		json.Unmarshal(action.Data, &p)
		err = e.DecideDownsized(playerID, p.Option)

	case "enterFastTrack":
		var p struct {
			DreamSquare int `json:"dreamSquare"`
		}
		json.Unmarshal(action.Data, &p)
		err = e.EnterFastTrack(playerID, p.DreamSquare)

	case "endTurn":
		err = e.EndTurn(playerID)

	case "chat":
		var p struct {
			Text string `json:"text"`
		}
		json.Unmarshal(action.Data, &p)
		err = e.SendChat(playerID, p.Text)

	case "hostSkipTurn":
		err = e.HostSkipTurn(playerID)

	case "hostGiveCash":
		var p struct {
			TargetID string `json:"targetId"`
			Amount   int    `json:"amount"`
		}
		json.Unmarshal(action.Data, &p)
		err = e.HostGiveCash(playerID, p.TargetID, p.Amount)

	case "hostKickPlayer":
		var p struct {
			TargetID string `json:"targetId"`
		}
		json.Unmarshal(action.Data, &p)
		err = e.HostKickPlayer(playerID, p.TargetID)

	case "hostReshuffleDecks":
		err = e.HostReshuffleDecks(playerID)

	case "hostForceEndGame":
		err = e.HostForceEndGame(playerID)

	default:
		return fmt.Errorf("acción desconocida: %s", action.Type)
	}

	if err != nil {
		return err
	}

	c.afterAction(roomID, e)
	return nil
}

// GetState serializa el estado de la partida bajo el candado de la sala y
// devuelve los bytes, desacoplados de cualquier mutación posterior
func (c *GameCoordinator) GetState(roomID string) (json.RawMessage, error) {
	gr := c.room(roomID)
	if gr == nil {
		return nil, fmt.Errorf("no hay partida activa en la sala %s", roomID)
	}
	gr.mu.Lock()
	defer gr.mu.Unlock()
	stateJSON, err := json.Marshal(gr.engine.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("error serializando estado de la sala %s: %v", roomID, err)
	}
	return stateJSON, nil
}

// GetRankings devuelve el ranking actual de la partida
func (c *GameCoordinator) GetRankings(roomID string) ([]game.RankingEntry, error) {
	gr := c.room(roomID)
	if gr == nil {
		return nil, fmt.Errorf("no hay partida activa en la sala %s", roomID)
	}
	gr.mu.Lock()
	defer gr.mu.Unlock()
	return gr.engine.CalculateRankings(), nil
}

// RunTicker revisa cada segundo los plazos de turno y las cartas activas de
// todas las partidas. Se lanza como goroutine al arrancar el servidor.
func (c *GameCoordinator) RunTicker() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for now := range ticker.C {
		c.mu.RLock()
		ids := make([]string, 0, len(c.rooms))
		for id := range c.rooms {
			ids = append(ids, id)
		}
		c.mu.RUnlock()

		for _, roomID := range ids {
			c.tickRoom(roomID, now)
		}
	}
}

func (c *GameCoordinator) tickRoom(roomID string, now time.Time) {
	gr := c.room(roomID)
	if gr == nil {
		return
	}

	gr.mu.Lock()
	defer gr.mu.Unlock()

	changed := gr.engine.ExpireActiveCards(now)
	if gr.engine.TurnExpired(now) {
		gr.engine.ForceEndTurn()
		changed = true
	}
	if changed {
		c.afterAction(roomID, gr.engine)
	}
}

// RehydrateRooms reconstruye en memoria las partidas en curso tras un
// reinicio del servidor. Las que no se pueden recuperar quedan registradas
// pero no detienen el arranque.
func (c *GameCoordinator) RehydrateRooms() error {
	rooms, err := c.roomService.ListByStatus(models.RoomPlaying)
	if err != nil {
		return fmt.Errorf("error listando partidas en curso: %v", err)
	}

	templates, err := c.deckService.GetTemplates()
	if err != nil {
		return fmt.Errorf("error cargando cartas: %v", err)
	}

	restored := 0
	for _, room := range rooms {
		if len(room.GameState) == 0 {
			log.Printf("⚠️ Sala %s sin estado guardado, se omite", room.ID)
			continue
		}

		var state models.GameState
		if err := json.Unmarshal(room.GameState, &state); err != nil {
			log.Printf("⚠️ Estado corrupto en la sala %s: %v", room.ID, err)
			continue
		}

		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		engine := game.RestoreEngine(&state, templates, rng)

		c.mu.Lock()
		c.rooms[room.ID] = &GameRoom{engine: engine}
		c.mu.Unlock()
		restored++
	}

	log.Printf("♻️ %d partidas restauradas desde Redis", restored)
	return nil
}

// Métodos privados auxiliares

func (c *GameCoordinator) room(roomID string) *GameRoom {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rooms[roomID]
}

// afterAction publica el estado y lo persiste; se invoca con el mutex de la
// partida tomado
func (c *GameCoordinator) afterAction(roomID string, e *game.Engine) {
	state := e.Snapshot()

	if state.Phase == models.PhaseEnd {
		c.finishRoom(roomID, e)
	}

	c.publishState(roomID, state)
	c.persistAsync(roomID, state)
}

func (c *GameCoordinator) publish(roomID string, e *game.Engine) {
	state := e.Snapshot()
	c.publishState(roomID, state)
	c.persistAsync(roomID, state)
}

func (c *GameCoordinator) publishState(roomID string, state *models.GameState) {
	c.hub.BroadcastToRoom(roomID, "gameState", state)
}

// persistAsync guarda el estado en Redis sin bloquear la acción; un fallo
// solo deja rastro en el log del servidor
func (c *GameCoordinator) persistAsync(roomID string, state *models.GameState) {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		log.Printf("❌ Error serializando estado de la sala %s: %v", roomID, err)
		return
	}
	go func() {
		if err := c.roomService.SaveGameState(roomID, stateJSON); err != nil {
			log.Printf("⚠️ Error persistiendo estado de la sala %s: %v", roomID, err)
		}
	}()
}

// finishRoom registra victorias y pasa la sala a "finished"
func (c *GameCoordinator) finishRoom(roomID string, e *game.Engine) {
	for _, winner := range e.Winners() {
		if err := c.userService.RecordWin(winner.UserID); err != nil {
			log.Printf("⚠️ Error registrando victoria de %s: %v", winner.Name, err)
		}
	}

	room, err := c.roomService.GetRoom(roomID)
	if err == nil && room.Status == models.RoomPlaying {
		if err := c.roomService.SetStatus(room, models.RoomFinished); err != nil {
			log.Printf("⚠️ Error cerrando la sala %s: %v", roomID, err)
		}
	}

	c.hub.BroadcastToRoom(roomID, "gameOver", e.CalculateFinalRankings())

	c.mu.Lock()
	delete(c.rooms, roomID)
	c.mu.Unlock()
	log.Printf("🏁 Partida de la sala %s finalizada", roomID)
}
