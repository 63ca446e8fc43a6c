package api

import (
	"github.com/jpuchoc/st-report/pkg/report"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Serves the trip report over HTTP",
		Flags: []cli.Flag{report.ConfigFlag},
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "listen",
						Value:   ":8080",
						Usage:   "listen target for the web server",
						EnvVars: []string{"STREPORT_LISTEN"},
					},
				},
				Action: func(c *cli.Context) error {
					service, _, err := report.Setup(c)
					if err != nil {
						return err
					}

					return SetupServer(c.String("listen"), service)
				},
			},
		},
	}
}
