package main

import (
	"huddle_backend/internal/app"
	"huddle_backend/internal/logger"
)

func main() {
	application, err := app.New()
	if err != nil {
		logger.Fatal("failed to start", "error", err)
	}
	if err := application.Run(); err != nil {
		logger.Fatal("server stopped", "error", err)
	}
}
