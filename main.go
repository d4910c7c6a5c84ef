package main

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/backsoul/cashflow/pkg/handlers"
	"github.com/backsoul/cashflow/pkg/redis"
	"github.com/backsoul/cashflow/pkg/services"
	"github.com/backsoul/cashflow/pkg/websocket"
	"github.com/joho/godotenv"
	"github.com/valyala/fasthttp"
)

var (
	redisClient       *redis.RedisClient
	deckService       *services.DeckService
	professionService *services.ProfessionService
	roomService       *services.RoomService
	userService       *services.UserService
	coordinator       *services.GameCoordinator
	roomHandler       *handlers.RoomHandler
	gameHandler       *handlers.GameHandler
	deckHandler       *handlers.DeckHandler
	hub               *websocket.Hub
)

func main() {
	log.Println("🚀 Iniciando servidor CashFlow")

	// Cargar variables de entorno desde .env si existe
	if err := godotenv.Load(); err != nil {
		log.Println("💡 No se encontró archivo .env, usando variables del sistema")
	}

	initRedis()
	initServices()
	seedInitialData()
	rehydrateGames()

	port := getEnv("PORT", "8080")
	server := &fasthttp.Server{
		Handler: requestHandler,
		Name:    "CashFlow Server",
	}

	log.Println("🎲 Servidor CashFlow iniciado")
	log.Printf("📱 API: http://localhost:%s/api/rooms", port)
	log.Printf("🔌 WebSocket: ws://localhost:%s/ws?roomId=...&playerId=...", port)
	log.Printf("🔧 Health: http://localhost:%s/api/health", port)
	log.Println("🔄 Presiona Ctrl+C para detener el servidor")

	if err := server.ListenAndServe(":" + port); err != nil {
		log.Fatalf("Error al iniciar el servidor: %v", err)
	}
}

func initRedis() {
	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	redisPassword := getEnv("REDIS_PASSWORD", "")
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		redisDB = 0
	}

	log.Printf("🔌 Conectando a Redis en %s...", redisAddr)
	redisClient = redis.NewRedisClient(redisAddr, redisPassword, redisDB)
}

func initServices() {
	log.Println("⚙️  Inicializando servicios...")
	deckService = services.NewDeckService(redisClient)
	professionService = services.NewProfessionService(redisClient)
	roomService = services.NewRoomService(redisClient)
	userService = services.NewUserService(redisClient)

	// Inicializar WebSocket Hub
	hub = websocket.NewHub()
	go hub.Run()

	// Inicializar coordinador de partidas y su tick de plazos
	coordinator = services.NewGameCoordinator(roomService, deckService, professionService, userService, hub)
	go coordinator.RunTicker()

	// Inicializar handlers
	publicURL := getEnv("PUBLIC_URL", "http://localhost:8080")
	roomHandler = handlers.NewRoomHandler(roomService, userService, coordinator, publicURL)
	gameHandler = handlers.NewGameHandler(coordinator, hub)
	deckHandler = handlers.NewDeckHandler(deckService, professionService, redisClient, cardsPath())
}

func seedInitialData() {
	log.Println("📚 Cargando datos iniciales...")

	if err := deckService.SeedFromFile(cardsPath()); err != nil {
		log.Printf("⚠️ Error cargando cartas: %v", err)
		log.Println("💡 El servidor continuará. Puedes cargarlas con POST /api/cards/reload")
	}
	if err := professionService.SeedFromFile(getEnv("PROFESSIONS_FILE", "data/professions.json")); err != nil {
		log.Printf("⚠️ Error cargando profesiones: %v", err)
	}
}

func rehydrateGames() {
	if err := coordinator.RehydrateRooms(); err != nil {
		log.Printf("⚠️ Error restaurando partidas en curso: %v", err)
	}
}

func cardsPath() string {
	return getEnv("CARDS_FILE", "data/cards.json")
}

func requestHandler(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	method := string(ctx.Method())

	log.Printf("📡 %s %s", method, path)

	ctx.Response.Header.Set("Server", "CashFlow-FastHTTP/1.0")
	ctx.Response.Header.Set("Cache-Control", "no-cache")

	// Headers CORS para desarrollo
	ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
	ctx.Response.Header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	ctx.Response.Header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if method == "OPTIONS" {
		ctx.SetStatusCode(fasthttp.StatusOK)
		return
	}

	switch {
	// API Routes - Health y datos
	case path == "/api/health":
		deckHandler.HealthCheck(ctx)
	case path == "/api/cards/metadata" && method == "GET":
		deckHandler.GetCardsMetadata(ctx)
	case path == "/api/cards/reload" && method == "POST":
		deckHandler.ReloadCards(ctx)
	case path == "/api/professions" && method == "GET":
		deckHandler.GetProfessions(ctx)

	// API Routes - Salas
	case path == "/api/rooms" && method == "POST":
		roomHandler.CreateRoom(ctx)
	case path == "/api/rooms" && method == "GET":
		roomHandler.ListRooms(ctx)
	case path == "/api/leaderboard" && method == "GET":
		roomHandler.GetLeaderboard(ctx)

	// WebSocket Route
	case path == "/ws":
		gameHandler.HandleWebSocket(ctx)

	// API Routes - Salas individuales (con parámetros)
	case strings.HasPrefix(path, "/api/rooms/") && method == "GET":
		handleRoomGetRoutes(ctx, path)
	case strings.HasPrefix(path, "/api/rooms/") && method == "POST":
		handleRoomPostRoutes(ctx, path)

	default:
		serve404(ctx)
	}
}

func handleRoomGetRoutes(ctx *fasthttp.RequestCtx, path string) {
	parts := strings.Split(path, "/")

	// /api/rooms/{id}
	if len(parts) == 4 && parts[1] == "api" && parts[2] == "rooms" {
		ctx.SetUserValue("id", parts[3])
		roomHandler.GetRoom(ctx)
		return
	}

	// /api/rooms/{id}/{qr|state|rankings}
	if len(parts) == 5 && parts[1] == "api" && parts[2] == "rooms" {
		ctx.SetUserValue("id", parts[3])
		switch parts[4] {
		case "qr":
			roomHandler.GetRoomQR(ctx)
		case "state":
			gameHandler.GetGameState(ctx)
		case "rankings":
			gameHandler.GetRankings(ctx)
		default:
			serve404(ctx)
		}
		return
	}

	serve404(ctx)
}

func handleRoomPostRoutes(ctx *fasthttp.RequestCtx, path string) {
	parts := strings.Split(path, "/")

	// /api/rooms/{id}/{join|ready|leave|start}
	if len(parts) == 5 && parts[1] == "api" && parts[2] == "rooms" {
		ctx.SetUserValue("id", parts[3])
		switch parts[4] {
		case "join":
			roomHandler.JoinRoom(ctx)
		case "ready":
			roomHandler.SetReady(ctx)
		case "leave":
			roomHandler.LeaveRoom(ctx)
		case "start":
			roomHandler.StartGame(ctx)
		default:
			serve404(ctx)
		}
		return
	}

	serve404(ctx)
}

func serve404(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusNotFound)
	ctx.SetContentType("application/json")
	ctx.SetBodyString(`{"success": false, "error": "Ruta no encontrada"}`)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
