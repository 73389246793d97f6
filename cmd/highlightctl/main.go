package main

import (
	"fmt"
	"os"

	apperrors "highlight-saver/pkg/errors"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	// A missing .env is fine for the CLI.
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "highlightctl: %s\n", errorText(err))
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "highlightctl",
		Usage: "manage saved highlights through a running highlight server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Value:   "http://localhost:8080",
				Usage:   "highlight server base URL",
				EnvVars: []string{"HIGHLIGHT_SERVER"},
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "extension token sent with every request",
				EnvVars: []string{"EXTENSION_TOKEN"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list highlights, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "search", Aliases: []string{"q"}, Usage: "case-insensitive text/title/url filter"},
					&cli.StringFlag{Name: "site", Usage: "hostname glob, e.g. *.wikipedia.org"},
				},
				Action: ListAction,
			},
			{
				Name:  "add",
				Usage: "save a highlight",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "text", Required: true},
					&cli.StringFlag{Name: "url", Required: true},
					&cli.StringFlag{Name: "title"},
					&cli.StringFlag{Name: "context"},
				},
				Action: AddAction,
			},
			{
				Name:      "delete",
				Usage:     "delete a highlight by id",
				ArgsUsage: "<id>",
				Action:    DeleteAction,
			},
			{
				Name:  "clear",
				Usage: "delete every highlight",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "confirm deleting all highlights"},
				},
				Action: ClearAction,
			},
			{
				Name:  "key",
				Usage: "show or set the Gemini API key",
				Subcommands: []*cli.Command{
					{Name: "get", Usage: "print the stored key (masked)", Action: KeyGetAction},
					{Name: "set", ArgsUsage: "<key>", Usage: "store a new key", Action: KeySetAction},
				},
			},
			{
				Name:  "summarize",
				Usage: "summarize highlights with Gemini",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "id", Usage: "highlight id to summarize (repeatable, default all)"},
				},
				Action: SummarizeAction,
			},
			{
				Name:  "export",
				Usage: "write all highlights as JSON or YAML",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "json or yaml"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (default stdout)"},
				},
				Action: ExportAction,
			},
			{
				Name:   "browse",
				Usage:  "open the interactive highlight list",
				Action: BrowseAction,
			},
		},
	}
}

func errorText(err error) string {
	if msg := apperrors.UserMessage(err); msg != "Unexpected error" {
		return msg
	}
	return err.Error()
}
