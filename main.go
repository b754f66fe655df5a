package main

import (
	"context"
	"log"
	"net/http"
	_ "net/http/pprof"

	"enefviz/adapters/chart"
	"enefviz/internal/config"
	"enefviz/internal/container"
	"enefviz/ui"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
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
		log.Fatalf("Failed to load dashboard data: %v", err)
	}
	if appConfig.Survey.File == "" {
		log.Println("SURVEY_FILE is not set, the report page will stay empty")
	}

	app, err := ui.NewApp(ui.Config{
		Port:          appConfig.Server.Port,
		ReadTimeout:   appConfig.Server.ReadTimeout,
		WriteTimeout:  appConfig.Server.WriteTimeout,
		Dashboard:     appContainer.Dashboard,
		Reports:       appContainer.Reports,
		ReportRequest: appContainer.ReportRequest(chart.PNG, false),
	})
	if err != nil {
		log.Fatalf("Failed to initialize UI: %v", err)
	}

	// Start pprof server for performance profiling
	if appConfig.Profiling.Enabled {
		go func() {
			log.Printf("Profiling server starting on :%s", appConfig.Profiling.Port)
			if err := http.ListenAndServe(":"+appConfig.Profiling.Port, nil); err != nil {
				log.Printf("pprof server failed: %v", err)
			}
		}()
	}

	log.Fatal(app.Start())
}
