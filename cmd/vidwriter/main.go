// Package main provides the CLI entry point for vidwriter.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, l10n.F("Error: %s", err))
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "vidwriter",
		Usage:   l10n.T("Encode frames into video files"),
		Version: version,
		Description: l10n.T("vidwriter encodes still images or a synthetic test pattern into a video file. " +
			"The container is chosen from the output extension and the encoder from the container."),
		Commands: []*cli.Command{
			encodeCommand(),
			testsrcCommand(),
			probeCommand(),
			encodersCommand(),
			formatsCommand(),
		},
	}
}
