package main

import (
	"context"
	"log"

	"enefviz/adapters/api"
	"enefviz/adapters/chart"
	"enefviz/internal/config"
	"enefviz/internal/container"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	if err := appContainer.InitDashboard(context.Background()); err != nil {
		// crosstab and catalog still work without the wave files
		log.Printf("Dashboard data unavailable, series endpoints disabled: %v", err)
	}

	server := api.NewServer(api.Config{
		Port:          appConfig.Server.APIPort,
		GinMode:       appConfig.Server.GinMode,
		ReadTimeout:   appConfig.Server.ReadTimeout,
		WriteTimeout:  appConfig.Server.WriteTimeout,
		Catalog:       appContainer.Catalog,
		Dashboard:     appContainer.Dashboard,
		Reports:       appContainer.Reports,
		ReportRequest: appContainer.ReportRequest(chart.PNG, false),
	})
	log.Fatal(server.Start())
}
