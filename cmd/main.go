package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/trackdex/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:     "trackdex",
		Usage:    "Catalog proxy for the Spotify Web API and ReccoBeats audio features",
		Version:  "0.1.0",
		Flags:    rootFlags(),
		Before:   runner.Configure,
		Commands: runner.register(),
	}

	err := app.Run(context.Background(), os.Args)
	if closeErr := runner.Close(); closeErr != nil {
		logger.Warn("failed to release resources", "error", closeErr)
	}

	if err != nil {
		if errors.Is(err, shared.ErrInvalidInput) || errors.Is(err, shared.ErrMissingArgument) {
			logger.Error(err.Error())
			os.Exit(2)
		}
		logger.Fatalf("application error: %v", err)
	}
}
