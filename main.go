package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ytget/ytd/internal/download"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.ytget.ytd"
	AppName = "ytd"
)

func main() {
	app := &cli.App{
		Name:    AppName,
		Usage:   "download video or audio from a URL with yt-dlp",
		Version: version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  flagWeb,
				Usage: "serve the web front end instead of the terminal session",
			},
			&cli.StringFlag{
				Name:  flagAddr,
				Usage: "address for the web front end (default 127.0.0.1:8000)",
			},
			&cli.StringFlag{
				Name:    flagOutput,
				Aliases: []string{"o"},
				Usage:   "output directory, the platform default when empty",
			},
			&cli.StringFlag{
				Name:  flagConfig,
				Usage: "yaml config file (default $YTD_CONFIG_FILE or ~/.config/ytd.yaml)",
			},
			&cli.StringFlag{
				Name:  flagLogLevel,
				Usage: "debug, info, warn or error",
			},
		},
		Action: withRuntime(runRoot),
		Commands: []*cli.Command{{
			Name:      "get",
			Usage:     "download a single URL and exit",
			ArgsUsage: "URL",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:    flagAudio,
					Aliases: []string{"a"},
					Usage:   "extract audio instead of video",
				},
			},
			Action: withRuntime(runGet),
		}, {
			Name:      "playlist",
			Usage:     "list the entries of a playlist URL",
			ArgsUsage: "URL",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  flagURLs,
					Usage: "print one entry URL per line instead of JSON",
				},
			},
			Action: withRuntime(runPlaylist),
		}, {
			Name:  "desktop",
			Usage: "open the desktop window",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  flagLang,
					Value: "en",
					Usage: "interface language, en or ru",
				},
			},
			Action: withRuntime(runDesktop),
		}, {
			Name:  "install",
			Usage: "download the yt-dlp executable if it is missing",
			Action: func(c *cli.Context) error {
				path, err := download.EnsureInstalled(c.Context)
				if err != nil {
					return cli.Exit(fmt.Sprintf("installing yt-dlp: %v", err), 1)
				}
				fmt.Fprintf(c.App.Writer, "yt-dlp ready: %s\n", path)
				return nil
			},
		}},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
