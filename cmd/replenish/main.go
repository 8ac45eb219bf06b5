package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/shelfstock/backend-go/internal/app"
	"github.com/andresuchdata/shelfstock/backend-go/internal/config"
	"github.com/andresuchdata/shelfstock/backend-go/internal/service"
	"github.com/andresuchdata/shelfstock/backend-go/pkg/logger"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

type ctxKey struct{}

func initApp(c *cli.Context) error {
	a, err := app.New(c.Context, config.Load())
	if err != nil {
		return err
	}
	c.Context = context.WithValue(c.Context, ctxKey{}, a)
	return nil
}

func closeApp(c *cli.Context) error {
	if a, ok := c.Context.Value(ctxKey{}).(*app.App); ok && a != nil {
		return a.Close()
	}
	return nil
}

func appFrom(c *cli.Context) *app.App {
	return c.Context.Value(ctxKey{}).(*app.App)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cliApp := &cli.App{
		Name:   "replenish",
		Usage:  "Run replenishment pipeline steps against the configured store",
		Before: initApp,
		After:  closeApp,
		Commands: []*cli.Command{
			{
				Name:  "predict",
				Usage: "Predict shelf depletion and raise alerts",
				Action: func(c *cli.Context) error {
					result, err := appFrom(c).Services.Replenishment.PredictDepletion(c.Context)
					if err != nil {
						return err
					}
					return printJSON(result)
				},
			},
			{
				Name:  "create-requests",
				Usage: "Turn open alerts into stock requests",
				Action: func(c *cli.Context) error {
					summaries, err := appFrom(c).Services.Replenishment.CreateRequestsFromAlerts(c.Context)
					if err != nil {
						return err
					}
					return printJSON(summaries)
				},
			},
			{
				Name:  "assign-tasks",
				Usage: "Assign restock tasks for delivered stock",
				Action: func(c *cli.Context) error {
					result, err := appFrom(c).Services.Restock.AssignTasksFromDeliveredStock(c.Context)
					if err != nil {
						return err
					}
					return printJSON(result)
				},
			},
			{
				Name:  "watch",
				Usage: "Run the depletion scan on an interval until interrupted",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:    "interval",
						Usage:   "Time between scans",
						Value:   15 * time.Minute,
						EnvVars: []string{"REPLENISHMENT_SCAN_INTERVAL"},
					},
				},
				Action: func(c *cli.Context) error {
					interval := c.Duration("interval")
					if interval <= 0 {
						return fmt.Errorf("--interval must be positive")
					}
					service.NewScanner(appFrom(c).Services.Replenishment, interval).Run(c.Context)
					return nil
				},
			},
		},
	}

	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("replenish failed")
	}
}
