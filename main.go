package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"sitepages/internal/app"
	"sitepages/internal/config"
	"sitepages/internal/logging"
)

const usage = `usage: sitepages <command> [flags]

commands:
  serve    serve rendered pages and the editor API over HTTP
  mcp      serve the page editor as an MCP server on stdin/stdout
  import   load collection items from a JSON file into the local store
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "sitepages: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, args []string) error {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	configPath := fs.String("config", "sitepages.yaml", "path to the YAML config file")

	var imp app.ImportOptions
	if command == "import" {
		fs.StringVar(&imp.Entity, "entity", "", "collection to import into, e.g. news")
		fs.StringVar(&imp.File, "file", "", "JSON file holding an array of items")
		fs.StringVar(&imp.DataPath, "data-path", "", "dot path to the array inside the file")
		fs.IntVar(&imp.Limit, "limit", 1000, "maximum number of items to import")
		fs.StringVar(&imp.Fields.Title, "title-field", "", "source field for the title")
		fs.StringVar(&imp.Fields.Content, "content-field", "", "source field for the content")
		fs.StringVar(&imp.Fields.PublishedAt, "date-field", "", "source field for the publication date")
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	log := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	switch command {
	case "serve":
		return app.Serve(ctx, cfg, *configPath, log)
	case "mcp":
		return app.ServeMCP(ctx, cfg, *configPath, log)
	case "import":
		_, err := app.Import(ctx, cfg, imp, log)
		return err
	}
	fmt.Fprint(os.Stderr, usage)
	return fmt.Errorf("unknown command %q", command)
}
