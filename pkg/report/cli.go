package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jpuchoc/st-report/pkg/archiver"
	"github.com/jpuchoc/st-report/pkg/config"
	"github.com/jpuchoc/st-report/pkg/database"
	"github.com/jpuchoc/st-report/pkg/elastic_client"
	"github.com/jpuchoc/st-report/pkg/redis_client"
	"github.com/jpuchoc/st-report/pkg/trips"
	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

const IndexPrefix = "trip-summaries"

// ConfigFlag is shared by every command that builds a Service.
var ConfigFlag = &cli.StringFlag{
	Name:    "config",
	Usage:   "YAML configuration file",
	EnvVars: []string{"STREPORT_CONFIG"},
}

// Setup loads the configuration named by the config flag, connects the
// optional Redis cache and builds the Service.
func Setup(c *cli.Context) (*Service, config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, cfg, err
	}

	if err := redis_client.Connect(false); err != nil {
		return nil, cfg, err
	}

	service, err := NewService(cfg, NewFetcher(cfg))
	return service, cfg, err
}

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Summarise facility trips from telemetry",
		Flags: []cli.Flag{ConfigFlag},
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the pipeline once and export the summary table",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "window",
						Value: "all",
						Usage: "time window on exit time (current-shift, previous-shift, last-24h, PT6H, ...)",
					},
					&cli.StringFlag{
						Name:  "format",
						Value: "wide",
						Usage: "output format: wide, long or json",
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "file to write to, defaults to stdout",
					},
					&cli.BoolFlag{
						Name:  "archive",
						Usage: "upsert the summaries into MongoDB and index them in Elasticsearch",
					},
					&cli.StringFlag{
						Name:  "bundle-directory",
						Usage: "also write a compressed bundle of the summaries to this directory",
					},
					&cli.StringFlag{
						Name:  "bundle-bucket",
						Usage: "upload the bundle to this Cloud Storage bucket",
					},
					&cli.BoolFlag{
						Name:  "enqueue",
						Usage: "queue the summaries for the archive worker instead of archiving inline",
					},
				},
				Action: func(c *cli.Context) error {
					service, cfg, err := Setup(c)
					if err != nil {
						return err
					}

					result := service.Run(c.Context)
					if result.Status == trips.StatusDataUnavailable {
						return result.Err
					}

					result.Table, err = service.Window(result.Table, c.String("window"))
					if err != nil {
						return err
					}

					if err := writeResult(c, result, cfg); err != nil {
						return err
					}

					if c.Bool("enqueue") {
						return enqueue(result.Table)
					}

					if c.Bool("archive") || c.String("bundle-directory") != "" {
						return archive(c, result.Table)
					}

					return nil
				},
			},
			{
				Name:  "archive-worker",
				Usage: "consume queued summaries and archive them",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "consumers",
						Value: 1,
						Usage: "number of batch consumers",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Value: 100,
						Usage: "summaries stored per batch",
					},
					&cli.DurationFlag{
						Name:  "batch-timeout",
						Value: 5 * time.Second,
						Usage: "longest wait before a partial batch is stored",
					},
					&cli.StringFlag{
						Name:  "bundle-directory",
						Usage: "also write a compressed bundle of every batch to this directory",
					},
				},
				Action: func(c *cli.Context) error {
					if err := redis_client.Connect(true); err != nil {
						return err
					}
					if err := database.Connect(); err != nil {
						return err
					}
					if err := elastic_client.Connect(false); err != nil {
						return err
					}

					a := &archiver.Archiver{
						WriteDatabase:   true,
						OutputDirectory: c.String("bundle-directory"),
						WriteBundle:     c.String("bundle-directory") != "",
					}
					if elastic_client.Client != nil {
						a.IndexPrefix = IndexPrefix
					}

					ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
					defer stop()

					worker := &archiver.Worker{
						Connection:      redis_client.QueueConnection,
						Archiver:        a,
						NumberConsumers: c.Int("consumers"),
						BatchSize:       c.Int("batch-size"),
						Timeout:         c.Duration("batch-timeout"),
					}

					return worker.Run(ctx)
				},
			},
			{
				Name:  "inspect",
				Usage: "print the disambiguated visits of one trip",
				Flags: []cli.Flag{
					&cli.Int64Flag{
						Name:     "trip",
						Usage:    "trip id to inspect",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					service, _, err := Setup(c)
					if err != nil {
						return err
					}

					visits, diagnostics, err := service.Inspect(c.Context, c.Int64("trip"))
					if err != nil {
						return err
					}

					pretty.Println(diagnostics)
					for _, visit := range visits {
						fmt.Printf("%s %-28s %-28s %6.2f min\n", visit.LocalTime.Format("2006-01-02 15:04:05"), strconv.Quote(visit.Zone), strconv.Quote(visit.VisitLabel), visit.DurationMinutes)
					}

					return nil
				},
			},
		},
	}
}

func writeResult(c *cli.Context, result trips.Result, cfg config.Config) error {
	var w io.Writer = os.Stdout

	if output := c.String("output"); output != "" {
		file, err := os.Create(output)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}

	switch c.String("format") {
	case "wide":
		return WriteWideCSV(w, trips.Project(result.Table, cfg.Display))
	case "long":
		return WriteLongCSV(w, result.Table)
	case "json":
		return WriteJSON(w, result)
	default:
		return fmt.Errorf("unknown format %q", c.String("format"))
	}
}

func enqueue(table trips.SummaryTable) error {
	if redis_client.QueueConnection == nil {
		return errors.New("enqueue needs STREPORT_REDIS_ADDRESS to be set")
	}

	queued, err := archiver.Publish(redis_client.QueueConnection, table, time.Now())
	if err != nil {
		return err
	}

	log.Info().Int("trips", queued).Str("queue", archiver.QueueName).Msg("Trip summaries queued")

	return nil
}

func archive(c *cli.Context, table trips.SummaryTable) error {
	a := &archiver.Archiver{
		OutputDirectory: c.String("bundle-directory"),
		WriteBundle:     c.String("bundle-directory") != "",
		CloudUpload:     c.String("bundle-bucket") != "",
		CloudBucketName: c.String("bundle-bucket"),
	}

	if c.Bool("archive") {
		if err := database.Connect(); err != nil {
			return err
		}
		if err := elastic_client.Connect(false); err != nil {
			return err
		}

		a.WriteDatabase = true
		if elastic_client.Client != nil {
			a.IndexPrefix = IndexPrefix
		}
	}

	if err := a.Perform(c.Context, table); err != nil {
		return err
	}

	log.Info().Int("trips", table.Len()).Msg("Trip summaries archived")

	return nil
}
