package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/gridwork/internal/app"
	"github.com/vk/gridwork/internal/cli"
	"github.com/vk/gridwork/internal/graphspec"
)

// main is the entrypoint for the gridwork binary.
func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling, mirroring the teacher's cmd/cli/main.go run().
func run(outW io.Writer, args []string) (err error) {
	cfg, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// app.New and the graph loading below panic on a fatal startup problem
	// the CLI's own flag validation could not have caught (e.g. an
	// unparseable graph file); recover here so the user sees a clean message
	// instead of a stack trace.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	a := app.New(outW, cfg)

	if cfg.GraphPath != "" {
		g, loadErr := graphspec.Load(cfg.GraphPath)
		if loadErr != nil {
			panic(loadErr)
		}
		if _, sc := graphspec.ApplyToScheduler(a.Scheduler(), g, noopFactories); !sc.IsOK() {
			panic(sc.Error())
		}
	}

	ctx := context.Background()
	if runErr := a.Run(ctx); runErr != nil {
		return runErr
	}
	return a.Shutdown(ctx)
}
