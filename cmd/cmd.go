// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles session identity operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the session identity",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Persist a bearer token and user record for counted engagement",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "token",
						Usage: "Bearer token issued by the counter service",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to a .sh file containing a cURL command to extract the token from",
					},
					&cli.StringFlag{
						Name:     "user",
						Usage:    "User id the token belongs to",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Display name for the user record",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Clear the stored identity, demoting the session to guest",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Report the current identity and counter service health",
				Action: r.AuthStatus,
			},
		},
	}
}

// likeCommand toggles the viewer's like on an item.
func likeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "like",
		Usage: "Toggle your like on an item",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Action: r.LikeToggle,
	}
}

// playCommand runs a one-shot playback session for a track.
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Play a track, counting the play when signed in",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Action: r.Play,
	}
}

// itemsCommand lists items with their engagement counts.
func itemsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "items",
		Usage: "List items with like counts",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.ListItems,
	}
}

// tracksCommand lists tracks with their play counts.
func tracksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tracks",
		Usage: "List tracks with play counts",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.ListTracks,
	}
}

// refreshCommand re-fetches authoritative counts into the local cache.
func refreshCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "refresh",
		Usage: "Refresh authoritative counts from the counter service",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Number of concurrent refresh workers",
				Value: 5,
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Maximum requests per second",
				Value: 5.0,
			},
			&cli.BoolFlag{
				Name:  "skip-cache",
				Usage: "Skip writing refreshed counts to the local cache",
			},
		},
		Action: r.Refresh,
	}
}

// exportCommand writes an engagement snapshot to disk.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export an engagement snapshot",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (json, csv, markdown, txt)",
				Value:   "json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory",
			},
			&cli.BoolFlag{
				Name:  "refresh",
				Usage: "Refresh authoritative counts before exporting",
			},
		},
		Action: r.Export,
	}
}

// serveCommand runs the development counter service.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run a local counter service for development",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind to",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "Path to the server database (defaults to in-memory)",
				Value: ":memory:",
			},
			&cli.BoolFlag{
				Name:  "seed",
				Usage: "Seed demo items, tracks, and a demo token",
			},
		},
		Action: r.Serve,
	}
}

// apiCommand handles direct counter service calls for debugging
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct API calls to the counter service",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET to the counter service, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
			{
				Name:  "dump",
				Usage: "Full counter service state dump (health, items, tracks)",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
					&cli.BoolFlag{
						Name:  "save",
						Usage: "Save dump to api_dump.json",
						Value: false,
					},
				},
				Action: r.APIDump,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for the interactive player.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive player",
		Action:  r.TUI,
	}
}
