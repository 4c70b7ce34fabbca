package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/dkovac/renthub/internal/config"
	"github.com/dkovac/renthub/internal/database"
	"github.com/dkovac/renthub/internal/notify"
	postgresrepo "github.com/dkovac/renthub/internal/repository/postgres"
	"github.com/dkovac/renthub/internal/service"
	"github.com/dkovac/renthub/internal/transport/http/handlers"
	"github.com/dkovac/renthub/internal/transport/http/middleware"
)

func main() {
	cfg := config.Load()

	// Database
	pool, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()
	log.Println("Connected to database")

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	propertyRepo := postgresrepo.NewPropertyRepo(pool)
	convRepo := postgresrepo.NewConversationRepo(pool)
	messageRepo := postgresrepo.NewMessageRepo(pool)

	// Services
	convService := service.NewConversationService(convRepo, userRepo, propertyRepo)
	msgService := service.NewMessageService(messageRepo, convRepo)
	msgService.SetNotifier(notify.NewLogNotifier())

	// Handlers
	convHandler := handlers.NewConversationHandler(convService, msgService)
	msgHandler := handlers.NewMessageHandler(msgService)

	// Middleware
	auth := middleware.Auth(cfg.JWTSecret)
	sendLimiter := middleware.NewLimiterStore(cfg.SendLimitPerMinute, cfg.SendBurst, 5*time.Minute)
	limitSends := middleware.RateLimit(sendLimiter)

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})

	// Protected - Conversations
	mux.Handle("POST /api/v1/conversations", auth(http.HandlerFunc(convHandler.CreateOrGet)))
	mux.Handle("GET /api/v1/conversations", auth(http.HandlerFunc(convHandler.List)))
	mux.Handle("GET /api/v1/conversations/{id}", auth(http.HandlerFunc(convHandler.Get)))
	mux.Handle("GET /api/v1/conversations/{id}/messages", auth(http.HandlerFunc(msgHandler.ListByConversation)))
	mux.Handle("DELETE /api/v1/conversations/{id}", auth(http.HandlerFunc(convHandler.Delete)))

	// Protected - Messages
	mux.Handle("POST /api/v1/messages", auth(limitSends(http.HandlerFunc(msgHandler.Send))))
	mux.Handle("DELETE /api/v1/messages/{id}", auth(http.HandlerFunc(msgHandler.Delete)))

	// Start server with CORS
	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("Starting server on %s", addr)
	log.Fatal(http.ListenAndServe(addr, middleware.CORS(mux)))
}
