package main

import (
	"log"

	_ "teamhub/docs"
	"teamhub/internal/config"
	"teamhub/internal/server"
)

// @title           TeamHub API
// @version         1.0
// @description     API for team events, task boards and chats.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	cfg := config.Load()

	s, err := server.Init(cfg)
	if err != nil {
		log.Fatalf("❌ Server initialization failed: %v", err)
	}

	s.Run()
}
