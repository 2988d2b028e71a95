// Package main is the entry point for the todo CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/runoshun/todo/internal/app"
	"github.com/runoshun/todo/internal/cli"
)

// version is set at build time using -ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:])
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) (err error) {
	// The store location depends on --config, so it is read before cobra parses flags.
	container, err := app.New(ctx, configPathFromArgs(args))
	if err != nil {
		return runWithoutContainer(args, fmt.Errorf("failed to initialize: %w", err))
	}
	defer func() {
		err = errors.Join(err, container.Close(ctx))
	}()

	rootCmd := cli.NewRootCommand(container, version)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// runWithoutContainer lets help and version work when the store cannot be opened.
func runWithoutContainer(args []string, initErr error) error {
	if !canRunWithoutContainer(args) {
		return initErr
	}
	rootCmd := cli.NewRootCommand(nil, version)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func canRunWithoutContainer(args []string) bool {
	if len(args) > 0 && args[0] == "help" {
		return true
	}
	for _, arg := range args {
		if arg == "--version" || arg == "-v" || arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}

// configPathFromArgs extracts the value of --config from raw arguments.
func configPathFromArgs(args []string) string {
	flag := "--" + cli.ConfigFlag
	for i, arg := range args {
		if arg == "--" {
			break
		}
		if arg == flag && i+1 < len(args) {
			return args[i+1]
		}
		if v, ok := strings.CutPrefix(arg, flag+"="); ok {
			return v
		}
	}
	return ""
}
