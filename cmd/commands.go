// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func idArgument() []cli.Argument {
	return []cli.Argument{
		&cli.StringArg{
			Name:      "id",
			UsageText: "22 character Spotify ID",
		},
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "raw",
			Usage: "Print the upstream body exactly as received",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: true,
		},
	}
}

// rootFlags are shared by every subcommand.
func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.StringFlag{
			Name:  "env-file",
			Usage: "Path to a .env file with SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET",
			Value: ".env",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level (debug, info, warn, error)",
			Value: "info",
		},
	}
}

// serveCommand starts the HTTP proxy
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the catalog proxy and serve the app shell",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Interface to listen on (overrides server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides server.port)",
			},
			&cli.StringFlag{
				Name:  "assets",
				Usage: "Directory with the built app (overrides server.assets_dir)",
			},
			&cli.StringFlag{
				Name:  "prefix",
				Usage: "API path prefix (overrides server.prefix)",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand initializes config and database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml if missing, initialize the database and run migrations",
		Action: r.Setup,
	}
}

// tokenCommand prints an upstream bearer token
func tokenCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Mint (or reuse a cached) Spotify access token",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Token,
	}
}

// trackCommand looks up a track
func trackCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "track",
		Usage:     "Fetch a track from the Spotify Web API",
		Arguments: idArgument(),
		Flags:     outputFlags(),
		Action:    r.Track,
	}
}

// artistCommand looks up an artist
func artistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "artist",
		Usage:     "Fetch an artist from the Spotify Web API",
		Arguments: idArgument(),
		Flags:     outputFlags(),
		Action:    r.Artist,
	}
}

// featuresCommand looks up audio features
func featuresCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "features",
		Usage:     "Fetch audio features for a track from ReccoBeats",
		Arguments: idArgument(),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
				Value: true,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (json, csv, text)",
				Value:   "json",
			},
		},
		Action: r.Features,
	}
}

// cacheCommand manages the persistent token cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the SQLite token cache",
		Commands: []*cli.Command{
			{
				Name:   "clear",
				Usage:  "Delete every cached token",
				Action: r.CacheClear,
			},
			{
				Name:   "purge",
				Usage:  "Delete expired tokens",
				Action: r.CachePurge,
			},
		},
	}
}
