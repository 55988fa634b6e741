// Command nabla checks and builds Nabla configuration files.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

var version = "dev"

func main() {
	app := &cli.Command{
		Name:    "nabla",
		Version: version,
		Usage:   "Nabla configuration language CLI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn, or error",
				Sources: cli.EnvVars("NABLA_LOG_LEVEL"),
				Value:   "info",
			},
		},
		Commands: []*cli.Command{
			checkCommand(),
			buildCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
