package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"wilhelm/internal"
	"wilhelm/internal/expansion"
	pkgconfig "wilhelm/pkg/config"
	"wilhelm/ui/console"
	"wilhelm/ui/tui"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	c := *cfg
	if cmd.IsSet("port") {
		c = c.WithHTTPPort(int(cmd.Int("port")))
	}
	if cmd.IsSet("neo4j-uri") {
		c = c.WithNeo4jURI(cmd.String("neo4j-uri"))
	}
	if cmd.IsSet("parallelism") {
		c = c.WithParallelism(int(cmd.Int("parallelism")))
	}
	if cmd.IsSet("timeout") {
		c = c.WithExpansionTimeout(cmd.Duration("timeout"))
	}
	if cmd.Bool("no-history") {
		c = c.WithHistory(false)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &c, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg))
}

// openForCLI opens the shared components with logs sent to w.
func openForCLI(ctx context.Context, cmd *cli.Command, w io.Writer) (*internal.Components, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return internal.Open(ctx, cfg, internal.NewLogger(cfg, w))
}

func explore(ctx context.Context, cmd *cli.Command) error {
	// The alternate screen owns the terminal; logs would corrupt it.
	comps, err := openForCLI(ctx, cmd, io.Discard)
	if err != nil {
		return err
	}
	defer comps.Close(context.Background())
	return tui.Start(ctx, comps.Vocab)
}

func expand(ctx context.Context, cmd *cli.Command) error {
	word := cmd.Args().First()
	if word == "" {
		return fmt.Errorf("usage: wilhelm expand [--strategy bounded|unbounded|recursive] <word>")
	}
	comps, err := openForCLI(ctx, cmd, os.Stderr)
	if err != nil {
		return err
	}
	defer comps.Close(context.Background())

	strategy := cmd.String("strategy")
	start := time.Now()
	var expandErr error
	summary := console.Summary{Word: word, Strategy: strategy}
	switch strategy {
	case "bounded":
		g, err := comps.Vocab.ExpandApoc(ctx, word, int(cmd.Int("max-hops")))
		summary.Elapsed, expandErr = time.Since(start), err
		if err == nil {
			console.PrintGraph(os.Stdout, summary, g)
		}
	case "unbounded":
		g, err := comps.Vocab.ExpandApoc(ctx, word, expansion.Unbounded)
		summary.Elapsed, expandErr = time.Since(start), err
		if err == nil {
			console.PrintGraph(os.Stdout, summary, g)
		}
	case "recursive":
		g, err := comps.Vocab.ExpandRecursive(ctx, word)
		summary.Elapsed, expandErr = time.Since(start), err
		if err == nil {
			console.PrintGraph(os.Stdout, summary, g)
		}
	default:
		return fmt.Errorf("unknown strategy %q: use bounded, unbounded or recursive", strategy)
	}
	if expandErr != nil {
		console.PrintError(os.Stderr, expandErr)
		return expandErr
	}
	return nil
}

func search(ctx context.Context, cmd *cli.Command) error {
	keyword := cmd.Args().First()
	if keyword == "" {
		return fmt.Errorf("usage: wilhelm search <keyword>")
	}
	comps, err := openForCLI(ctx, cmd, os.Stderr)
	if err != nil {
		return err
	}
	defer comps.Close(context.Background())

	rows, err := comps.Vocab.Search(ctx, keyword)
	if err != nil {
		console.PrintError(os.Stderr, err)
		return err
	}
	console.PrintRows(os.Stdout, "search "+keyword, rows)
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "wilhelm",
		Usage:  "Vocabulary graph service: expands the connected subgraph around a word",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("WILHELM_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "neo4j-uri",
				Usage:   "Override neo4j.uri",
				Sources: cli.EnvVars("NEO4J_URI"),
			},
			&cli.IntFlag{
				Name:  "parallelism",
				Usage: "Override expansion.parallelism",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Override expansion.timeout",
			},
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Do not record expansions in DuckDB",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the REST API",
				Action: serve,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Override app.http.port"},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve the MCP tools over stdio",
				Action: serveMCP,
			},
			{
				Name:   "explore",
				Usage:  "Browse expansions interactively",
				Action: explore,
			},
			{
				Name:      "expand",
				Usage:     "Expand a word and print the subgraph",
				ArgsUsage: "<word>",
				Action:    expand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "strategy", Aliases: []string{"s"}, Value: "recursive", Usage: "bounded, unbounded or recursive"},
					&cli.IntFlag{Name: "max-hops", Value: 3, Usage: "hop bound for the bounded strategy"},
				},
			},
			{
				Name:      "search",
				Usage:     "Find nodes whose label contains a keyword",
				ArgsUsage: "<keyword>",
				Action:    search,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
