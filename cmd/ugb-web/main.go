package main

import (
	"log/slog"
	"os"

	"ugbmonitor/internal/app"
)

// Set at build time: -ldflags "-X main.buildTime=..."
var buildTime string

func main() {
	app.BuildTime = buildTime

	application, err := app.NewApplication()
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
