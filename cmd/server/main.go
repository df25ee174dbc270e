package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"gluebot/internal/config"
	"gluebot/internal/handlers"
	"gluebot/internal/intent"
	"gluebot/internal/knowledge"
	"gluebot/internal/llm"
	"gluebot/internal/logging"
	"gluebot/internal/middleware"
	"gluebot/internal/scripts"
	"gluebot/internal/services"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting GlueBot Server...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// Load configuration
	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s, Knowledge: %s)", cfg.Port, cfg.KnowledgePath)

	// Initialize the knowledge store
	store := knowledge.NewStore(cfg.KnowledgePath)
	if entries, err := store.Load(); err != nil {
		log.Printf("⚠️  Knowledge file could not be parsed, starting with an empty store: %v", err)
	} else {
		log.Printf("📚 Knowledge store loaded (%d entries)", len(entries))
	}

	// Watch the knowledge file so curator edits take effect without restart
	if err := store.StartWatcher(); err != nil {
		log.Printf("⚠️  Knowledge file watcher disabled: %v", err)
	} else {
		log.Printf("👁️  Watching %s for curator edits (hot-reload enabled)", cfg.KnowledgePath)
	}

	// Select the LLM fallback provider from configuration
	fallback := llm.NewFromConfig(cfg)
	if fallback.Available() {
		log.Printf("🤖 LLM fallback enabled (model: %s)", fallback.Model())
	} else {
		log.Println("⚠️  No LLM API key configured - unknown questions get static fallback replies")
	}

	// Initialize metrics and the routing chain
	services.InitMetrics()
	router := services.NewRouter(store, intent.NewClassifier(), scripts.NewMatcher(), fallback)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "GlueBot v1.0",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    1 * 1024 * 1024, // 1MB is plenty for a chat message
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())

	// Prometheus metrics middleware
	prometheus := fiberprometheus.New("gluebot")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)
	log.Println("📊 Prometheus metrics endpoint enabled at /metrics")

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(store)
	chatHandler := handlers.NewChatHandler(router)

	// Routes
	app.Get("/", healthHandler.HandleRoot)
	app.Get("/health", healthHandler.Handle)
	app.Post("/chat", middleware.ChatRateLimiter(cfg.ChatRateMax), chatHandler.Handle)
	log.Printf("🛡️  [RATE-LIMIT] /chat limited to %d requests/min per IP", cfg.ChatRateMax)

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\n🛑 Shutting down server...")

		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️ Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
