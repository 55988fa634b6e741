package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/nabla-lang/nabla/internal/lang/nabla"
)

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Check a Nabla file for lexical, syntactic, and semantic errors",
		ArgsUsage: "<file>",
		Action:    runCheck,
	}
}

func runCheck(_ context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return cli.Exit("check: missing <file> argument", 2)
	}

	source, err := os.ReadFile(path) //#nosec G304 -- path comes from user args
	if err != nil {
		return cli.Exit(fmt.Sprintf("check: %v", err), 2)
	}

	result := nabla.Analyze(string(source))
	for _, e := range result.Errors {
		span := nabla.RangeOf(string(source), result.Tokens, e)
		fmt.Fprintf(os.Stderr, "%s:%d:%d: %s\n", path, span.Start.Line+1, span.Start.Char+1, e.Error())
	}

	if !result.Ok() {
		return cli.Exit("", 1)
	}

	fmt.Printf("%s: ok\n", path)

	return nil
}
