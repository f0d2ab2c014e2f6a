package main

import (
	"review-scheduler/core/logger"
	"review-scheduler/core/server"
)

// @title Review Scheduler API
// @version 1.0
// @description Availability resolution and review booking backend for graduation project reviews

// @host localhost:7070
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Example: "Bearer {token}"

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", err)
	}
}
