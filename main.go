// main.go
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/rs/cors"

	"github.com/fow830/flyplaza/aviasales"
	"github.com/fow830/flyplaza/config"
	"github.com/fow830/flyplaza/database"
	"github.com/fow830/flyplaza/handlers"
	"github.com/fow830/flyplaza/services"
)

// newDestinationProber reads the token at call time, same as the search
// endpoint, so the probe fallback follows the current environment.
func newDestinationProber() services.DestinationProber {
	token := config.APIToken()
	if token == "" {
		return nil
	}
	return aviasales.New(config.AppConfig.Aviasales, token)
}

func main() {
	log.Println("Starting flyplaza backend...")

	configPath := "config/config.yaml"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		configPath = "config.yaml"
		if _, errFallback := os.Stat(configPath); os.IsNotExist(errFallback) {
			log.Fatalf("Config file not found at default paths. Error: %v", errFallback)
		}
	}

	err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	log.Printf("Configuration loaded. Server port: %s, API base: %s",
		config.AppConfig.Server.Port, config.AppConfig.Aviasales.APIBaseURL)

	// Search history store is optional; the service runs without it.
	if config.AppConfig.Database.Host != "" {
		if err := database.InitDB(config.AppConfig.Database); err != nil {
			log.Printf("WARN: Search history store unavailable: %v", err)
		}
		defer database.CloseDB()
	} else {
		log.Println("No database configured; search history disabled.")
	}

	if config.APIToken() == "" {
		log.Printf("WARN: Neither %s nor %s is set; price searches will fail until one is.",
			config.EnvTokenPrimary, config.EnvTokenFallback)
	}

	flightsHandler := handlers.NewFlightsHandler()
	airportsHandler := handlers.NewAirportsHandler(services.NewAirportService(newDestinationProber))

	// --- Setup HTTP routes ---
	mux := http.NewServeMux()

	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if database.Enabled() {
			if err := database.DB.Ping(); err != nil {
				http.Error(w, `{"status": "error", "message": "database connection error"}`, http.StatusInternalServerError)
				log.Printf("Health check failed: DB ping error: %v", err)
				return
			}
		}
		fmt.Fprintln(w, `{"status": "ok", "message": "flyplaza backend is healthy"}`)
	})

	mux.HandleFunc("/api/flights/search", flightsHandler.SearchFlights)
	mux.HandleFunc("/api/airports/search", airportsHandler.SearchAirports)
	mux.HandleFunc("/api/airports/validate", airportsHandler.ValidateAirport)
	mux.HandleFunc("/api/history", handlers.GetSearchHistoryHandler)

	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}).Handler(mux)

	serverAddr := ":" + config.AppConfig.Server.Port
	log.Printf("Server starting on http://localhost%s\n", serverAddr)
	err = http.ListenAndServe(serverAddr, handler)
	if err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}
