package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/gearguard/gearguard/internal/auth"
	"github.com/gearguard/gearguard/internal/db"
	"github.com/gearguard/gearguard/internal/events"
	"github.com/gearguard/gearguard/internal/handlers"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Info("Loaded configuration from .env")
	}
	log.SetFormatter(&log.JSONFormatter{})

	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	log.Info("Connected to MongoDB")

	authService, err := auth.NewService()
	if err != nil {
		log.WithError(err).Fatal("Failed to create auth service")
	}

	collections := db.NewCollections(client)
	publisher := events.NewPublisher()
	router := handlers.NewRouter(authService, collections, publisher)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.WithField("port", port).Info("HTTP server listening")
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.WithError(err).Fatal("HTTP server stopped")
	}
}
