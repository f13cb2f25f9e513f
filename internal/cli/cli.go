package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/vk/gridwork/internal/app"
)

// ExitError carries a specific process exit code, so main can translate a
// parse failure into the right os.Exit call without string-matching errors.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

// Parse processes command-line arguments into an app.Config. It returns
// (nil, true, nil) when the program should exit cleanly (e.g. -h), and an
// *ExitError when argument parsing or validation failed.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("gridwork", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
gridwork - a parallel computation-graph engine.

Usage:
  gridwork [options] [GRAPH_PATH]

Arguments:
  GRAPH_PATH
    Optional path to an .hcl file describing elements to create and wire
    before running.

Options:
`)
		flagSet.PrintDefaults()
	}

	graphFlag := flagSet.String("graph", "", "Path to the .hcl graph description (shorthand: positional argument).")
	workersFlag := flagSet.Int("workers", 4, "Starting number of worker-pool threads.")
	maxWorkersFlag := flagSet.Int("max-workers", 0, "Upper bound for elastic pool growth. 0 disables elasticity beyond --workers.")
	batchFlag := flagSet.Int("pool-batch-size", 8, "Maximum tasks drained per batched queue pop.")
	shutdownFlag := flagSet.String("shutdown-policy", "drain", "Pool shutdown policy. Options: 'drain' or 'discard'.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health/metrics server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Log level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	graphPath := *graphFlag
	if graphPath == "" && flagSet.NArg() > 0 {
		graphPath = flagSet.Arg(0)
	}

	cfg, err := app.NewConfig(app.Config{
		WorkerCount:      *workersFlag,
		MaxWorkerCount:   *maxWorkersFlag,
		MaxPoolBatchSize: *batchFlag,
		ShutdownPolicy:   strings.ToLower(*shutdownFlag),
		GraphPath:        graphPath,
		HealthcheckPort:  *healthPortFlag,
		LogFormat:        strings.ToLower(*logFormatFlag),
		LogLevel:         strings.ToLower(*logLevelFlag),
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return cfg, false, nil
}
