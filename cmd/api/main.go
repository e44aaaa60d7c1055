package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"pressroom_ai_go_backend/cmd/api/config"
	"pressroom_ai_go_backend/internal/api"
	"pressroom_ai_go_backend/internal/database"
	"pressroom_ai_go_backend/internal/services"
	"pressroom_ai_go_backend/internal/wsocket"

	"github.com/gorilla/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	genaiAPIKey := os.Getenv("GOOGLE_AI_STUDIO_API_KEY")
	if genaiAPIKey == "" {
		log.Fatal("GOOGLE_AI_STUDIO_API_KEY is not set in the environment")
	}

	ctx := context.Background()

	database.InitDB()
	cfg := config.NewConfig()
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	genaiClient, err := genai.NewClient(ctx, option.WithAPIKey(genaiAPIKey))
	if err != nil {
		log.Fatalf("Failed to create GenAI client: %v", err)
	}
	defer genaiClient.Close()

	modelName := os.Getenv("GENERATION_MODEL")
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	// Initialize internal services
	conversationStore := services.NewConversationStore(database.DB)
	promptStore := services.NewPromptStore(database.DB)
	usageStore := services.NewUsageStore(database.DB)

	conversationService := services.NewConversationService(conversationStore, cfg)
	usageService := services.NewUsageService(usageStore, cfg, logger)
	generator := services.NewGenAIGenerator(genaiClient, modelName)
	assembler := services.NewPromptAssembler(cfg)

	registry := wsocket.NewRegistry()
	chatStreamService := services.NewChatStreamService(
		conversationStore,
		promptStore,
		usageService,
		generator,
		assembler,
		registry,
		registry,
		cfg,
		logger,
	)

	r := gin.Default()

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:5173" // Default to your local frontend
	}

	// CORS middleware configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(allowedOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// WebSocket upgrader
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true // TODO: Implement a more secure check in production
		},
	}

	wsHandler := wsocket.NewHandler(chatStreamService, registry, upgrader, cfg, logger)

	api.SetupRoutes(r, conversationService, promptStore, usageService)

	r.GET("/ws", func(c *gin.Context) {
		wsHandler.HandleWebSocket(c.Writer, c.Request)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
