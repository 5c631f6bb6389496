package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"hackball/internal/api"
	"hackball/internal/config"
	"hackball/internal/game"
	"hackball/internal/room"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("no .env file found, using environment variables only")
	}

	cfg := config.Load()

	log.Printf("hackball server starting")
	log.Printf("config: %d TPS, %s matches, %d players/room, field %.0fx%.0f",
		cfg.Match.TickRate, cfg.Match.Duration, cfg.Match.MaxPlayers,
		cfg.Field.Width, cfg.Field.Height)

	events := room.NewEventLog()
	if cfg.Match.EventLogPath != "" {
		if err := events.Start(cfg.Match.EventLogPath); err != nil {
			log.Printf("event log disabled: %v", err)
			events = nil
		} else {
			log.Printf("event log: %s", cfg.Match.EventLogPath)
		}
	} else {
		events = nil
	}

	if os.Getenv("DISABLE_DEBUG_SERVER") != "true" {
		if err := api.StartDebugServer(api.DefaultObservabilityConfig()); err != nil {
			log.Printf("debug server disabled: %v", err)
		}
	}

	registry := room.NewRegistry(room.Options{
		TickRate:      cfg.Match.TickRate,
		MatchDuration: cfg.Match.Duration,
		MaxPlayers:    cfg.Match.MaxPlayers,
		DestroyOnEnd:  cfg.Match.DestroyOnEnd,
		Field: game.Field{
			Width:     cfg.Field.Width,
			Height:    cfg.Field.Height,
			GoalMouth: cfg.Field.GoalMouth,
		},
	}, events, api.Metrics{})

	server := api.NewServer(api.ServerConfig{
		Port:          cfg.Server.Port,
		MaxConns:      cfg.Server.MaxConns,
		MaxConnsPerIP: cfg.Server.MaxConnsPerIP,
	}, registry, events)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("server ready, press Ctrl+C to stop")
	<-quit

	log.Println("shutting down")
	server.Stop()
	registry.Shutdown()
	events.Stop()
	log.Println("goodbye")
}
