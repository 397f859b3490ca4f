// Command workflowengine starts the telco workflow engine's HTTP API and
// its scheduled-trigger ticker.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/telcoflow/workflowengine/internal/api"
	"github.com/telcoflow/workflowengine/pkg/log"
	"github.com/telcoflow/workflowengine/pkg/runtime"
)

const defaultPort = 9091

func main() {
	cmd := &cli.Command{
		Name:                  "workflowengine",
		Usage:                 "Compile and run telecom workflow definitions",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the HTTP API on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "at-username",
				Usage:   "Telecom provider account username",
				Sources: cli.EnvVars("AT_USERNAME"),
			},
			&cli.StringFlag{
				Name:    "at-api-key",
				Usage:   "Telecom provider API key",
				Sources: cli.EnvVars("AT_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "at-environment",
				Usage:   "Telecom provider environment (sandbox, production)",
				Value:   "sandbox",
				Sources: cli.EnvVars("AT_ENVIRONMENT"),
			},
			&cli.IntFlag{
				Name:    "session-ttl-seconds",
				Usage:   "Lifetime of created sessions in seconds, counted from creation (0 = no expiry)",
				Value:   0,
				Sources: cli.EnvVars("SESSION_TTL_SECONDS"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis address (host:port); empty selects the in-memory session store",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}

func run(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))
	logger := log.WithModule("workflowengine")

	cfg := runtime.Config{
		SessionTTL:    time.Duration(command.Int("session-ttl-seconds")) * time.Second,
		RedisURL:      command.String("redis-url"),
		ATUsername:    command.String("at-username"),
		ATAPIKey:      command.String("at-api-key"),
		ATEnvironment: command.String("at-environment"),
	}

	rt, err := runtime.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("build runtime: %w", err)
	}

	rt.Scheduler.Start()
	defer func() {
		stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		rt.Scheduler.Stop(stopCtx)
	}()

	app := api.NewApp(rt, logger)
	port := command.Int("port")
	logger.InfoContext(ctx, "starting workflow engine API", "port", port, "at_environment", cfg.ATEnvironment)

	return app.Listen(":" + strconv.Itoa(port))
}
