package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/mrlokans/readtrack/internal/config"
	"github.com/mrlokans/readtrack/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	app := &cli.App{
		Name:    "readtrack",
		Usage:   "Reading tracker with Goodreads library import",
		Version: fmt.Sprintf("%s (%s)", Version, Commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-file",
				Usage:   "dotenv `FILE` loaded before reading the environment",
				Value:   config.DefaultEnvFile,
				EnvVars: []string{"READTRACK_ENV_FILE"},
			},
		},
		Before: func(c *cli.Context) error {
			return config.LoadEnvFile(c.String("env-file"), c.IsSet("env-file"))
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server (default)",
				Action: serve,
			},
			{
				Name:  "import",
				Usage: "Import a Goodreads library export",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Goodreads export `FILE` (CSV)",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "token",
						Usage:   "API token of the importing user; the local user when empty",
						EnvVars: []string{"READTRACK_TOKEN"},
					},
				},
				Action: importExport,
			},
			{
				Name:  "parse",
				Usage: "Print the normalized rows of a Goodreads export as JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Goodreads export `FILE` (CSV)",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					return entrypoint.ParseFile(c.String("file"), c.App.Writer)
				},
			},
			{
				Name:  "create-user",
				Usage: "Create an account and print its API token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Required: true},
					&cli.StringFlag{Name: "email"},
				},
				Action: func(c *cli.Context) error {
					token, err := entrypoint.CreateUser(config.NewConfig(), c.String("username"), c.String("email"))
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, token)
					return nil
				},
			},
			{
				Name:  "rotate-token",
				Usage: "Replace a user's API token and print the new one",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Required: true},
				},
				Action: func(c *cli.Context) error {
					token, err := entrypoint.RotateToken(config.NewConfig(), c.String("username"))
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, token)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serve(c *cli.Context) error {
	return entrypoint.Run(config.NewConfig(), Version)
}

func importExport(c *cli.Context) error {
	summary, err := entrypoint.ImportFile(c.Context, config.NewConfig(), c.String("file"), c.String("token"))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
