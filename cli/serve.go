// ABOUTME: Web and terminal UI subcommands
// ABOUTME: Starts the JSON API server or the interactive pipeline board
package cli

import (
	"context"
	"flag"

	"go.uber.org/zap"

	"github.com/harperreed/dealflow/pipeline"
	"github.com/harperreed/dealflow/store"
	"github.com/harperreed/dealflow/tui"
	"github.com/harperreed/dealflow/web"
)

// ServeCommand runs the HTTP API until ctx is cancelled.
func ServeCommand(ctx context.Context, source store.Source, engine *pipeline.Engine, logger *zap.Logger, defaultPort int, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.Int("port", defaultPort, "Port to listen on")
	_ = fs.Parse(args)

	server := web.NewServer(source, engine, logger)
	return server.Start(ctx, *port)
}

// TUICommand opens the interactive pipeline board.
func TUICommand(ctx context.Context, source store.Source, engine *pipeline.Engine, logger *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("tui", flag.ExitOnError)
	_ = fs.Parse(args)

	return tui.Run(ctx, source, engine, logger)
}
