package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Azechum30/npresec-app/internal/bootstrap"
	"github.com/Azechum30/npresec-app/internal/pkg/logger"
	"github.com/Azechum30/npresec-app/internal/server"
)

// @title NPRESEC School Management API
// @version 1.0
// @description Administration API for students, teachers, staff, classes, courses, departments, users and roles.

// @contact.name NPRESEC ICT Office
// @contact.email ict@npresec.edu.gh

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description "Bearer <access token>"; the admin pages send the same token in the access_token cookie

func main() {
	var configPath string
	cmd := &cobra.Command{
		Use:           "api",
		Short:         "Serve the NPRESEC school management API and admin pages",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", bootstrap.DefaultConfigPath, "path to the YAML configuration file")

	if err := cmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}
	logger.Info().Msg("Application finished gracefully.")
}

func serve(configPath string) error {
	srv, err := server.NewServer(configPath)
	if err != nil {
		return err
	}
	// Run blocks until shutdown
	return srv.Run()
}
