package main

import (
	"context"
	"os"

	"github.com/mosc/eventadmin/internal/pkg/logger"
	"github.com/mosc/eventadmin/internal/server"
)

//go:generate swag init -g cmd/api/main.go -o docs -d ../../

// @title Event Admin API
// @version 1.0
// @description Admin API for the Giving Hope event platform: backend proxy, media, sponsors, polls and WhatsApp campaigns.

// @contact.name Platform Team
// @contact.email admin@givinghope.org

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey SessionAuth
// @in cookie
// @name __session
// @description Session JWT issued by the sign-in page. A Bearer Authorization header is also accepted.

func main() {
	srv, err := server.NewServer(context.Background())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
