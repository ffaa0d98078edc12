package main

import (
	"log"
	"net/http"
	"os"

	"github.com/flashgen/flashgen-api/config"
	"github.com/flashgen/flashgen-api/handlers"
	"github.com/flashgen/flashgen-api/llm"
	"github.com/flashgen/flashgen-api/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func init() {
	// Load .env file if not in production environment
	if os.Getenv("RAILWAY_ENVIRONMENT_NAME") == "" {
		err := godotenv.Load()
		if err != nil {
			log.Printf("Warning: .env file not found, environment variables might not be loaded: %v", err)
		}
	}
}

func main() {
	// Initialize database connection
	config.Connect()
	authMiddleware := middleware.EnsureValidToken()

	generator := llm.NewOpenAIGenerator(os.Getenv("OPENAI_API_KEY"))
	h := handlers.New(config.Database, generator, config.Env)

	mux := http.NewServeMux()

	// Generation sessions
	mux.HandleFunc("POST /api/generations", middleware.SyncUserMiddleware(h.CreateGeneration))
	mux.HandleFunc("GET /api/generations/{sessionID}/candidates", middleware.SyncUserMiddleware(h.GetSessionCandidates))
	mux.HandleFunc("POST /api/generations/{sessionID}/actions", middleware.SyncUserMiddleware(h.ProcessActions))

	// Pending candidates
	mux.HandleFunc("GET /api/candidates/pending", middleware.SyncUserMiddleware(h.GetAllPending))
	mux.HandleFunc("GET /api/candidates/pending/other", middleware.SyncUserMiddleware(h.GetOtherPending))

	// Orphan maintenance
	mux.HandleFunc("GET /api/candidates/orphaned", middleware.SyncUserMiddleware(h.GetOrphaned))
	mux.HandleFunc("DELETE /api/candidates/orphaned", middleware.SyncUserMiddleware(h.DeleteOrphaned))

	// Configure CORS with specific options
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "https://app.flashgen.dev"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin"},
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler(authMiddleware(mux))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // fallback port for local development
	}
	serverAddr := "0.0.0.0:" + port

	http.ListenAndServe(serverAddr, corsHandler)
}
