package main

import (
	"fmt"
	"os"

	"github.com/annothub/annothub-backend/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer a.Log.Sync()

	if err := a.Scheduler.Start(); err != nil {
		a.Log.Fatal("Failed to start scheduler", "error", err)
	}
	defer a.Scheduler.Stop()

	a.Log.Info("Server listening", "port", a.Cfg.Port)
	if err := a.Router.Run(":" + a.Cfg.Port); err != nil {
		a.Log.Fatal("Server exited", "error", err)
	}
}
