package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/nabla-lang/nabla/internal/format"
	"github.com/nabla-lang/nabla/internal/lang/nabla"
)

func buildCommand() *cli.Command {
	return &cli.Command{
		Name:      "build",
		Usage:     "Check a Nabla file and serialize its first init value",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "target",
				Aliases: []string{"t"},
				Usage:   "json, yaml, toml, or xml",
				Value:   "json",
			},
		},
		Action: runBuild,
	}
}

func runBuild(_ context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return cli.Exit("build: missing <file> argument", 2)
	}

	target, err := format.ParseTarget(cmd.String("target"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("build: %v", err), 2)
	}

	source, err := os.ReadFile(path) //#nosec G304 -- path comes from user args
	if err != nil {
		return cli.Exit(fmt.Sprintf("build: %v", err), 2)
	}

	result := nabla.Analyze(string(source))
	for _, e := range result.Errors {
		span := nabla.RangeOf(string(source), result.Tokens, e)
		fmt.Fprintf(os.Stderr, "%s:%d:%d: %s\n", path, span.Start.Line+1, span.Start.Char+1, e.Error())
	}

	if !result.Ok() {
		return cli.Exit("", 1)
	}

	if len(result.Inits) == 0 {
		return cli.Exit("build: file has no init value to serialize", 1)
	}

	out, err := format.Marshal(target, result.Inits[0])
	if err != nil {
		return cli.Exit(fmt.Sprintf("build: %v", err), 1)
	}

	os.Stdout.Write(out)
	fmt.Println()

	return nil
}
