package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/jpuchoc/st-report/pkg/api"
	"github.com/jpuchoc/st-report/pkg/report"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	_ "time/tzdata"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	if os.Getenv("STREPORT_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("STREPORT_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "st-report",
		Description: "Facility trip dwell time reports from asset telemetry",

		Commands: []*cli.Command{
			report.RegisterCLI(),
			api.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
