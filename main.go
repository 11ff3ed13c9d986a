package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wfunc/oddroll/config"
	"github.com/wfunc/oddroll/logger"
	"github.com/wfunc/oddroll/persistence"
	"github.com/wfunc/oddroll/room"
	"github.com/wfunc/oddroll/server"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Init(false)
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Init(cfg.Log.Debug)
	defer logger.Sync()

	// Initialize Database
	db, err := persistence.Open(cfg.Database)
	if err != nil {
		logger.Log.Fatalf("Failed to open %s database: %v", cfg.Database.Driver, err)
	}
	defer db.Close()
	logger.Log.Infof("Match history stored in %s database.", cfg.Database.Driver)

	gameServer := server.NewGameServer(*cfg, db, room.Options{})

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	logger.Log.Infof("Starting game server on %s", cfg.Server.HTTPAddress)
	if err := serve(gameServer, stop); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
	logger.Log.Info("Game server stopped.")
}

// serve runs gameServer until stop fires, then returns only after Shutdown has
// drained sessions and pending match records.
func serve(gameServer *server.GameServer, stop <-chan os.Signal) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-stop
		logger.Log.Info("Shutting down game server.")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := gameServer.Shutdown(ctx); err != nil {
			logger.Log.Errorf("Shutdown: %v", err)
		}
	}()

	if err := gameServer.Start(); err != nil {
		return err
	}
	<-done
	return nil
}
