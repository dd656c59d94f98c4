// Command pubid parses, normalizes and catalogs IEEE-family standards
// identifiers.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/pubid/core/catalog"
	"github.com/FocuswithJustin/pubid/core/grammar"
	"github.com/FocuswithJustin/pubid/core/legacy"
	"github.com/FocuswithJustin/pubid/core/pubid"
	"github.com/FocuswithJustin/pubid/core/sqlite"
	"github.com/FocuswithJustin/pubid/internal/api"
	"github.com/FocuswithJustin/pubid/internal/archive"
	"github.com/FocuswithJustin/pubid/internal/batch"
	"github.com/FocuswithJustin/pubid/internal/logging"
)

const version = "0.1.0"

// Globals are flags shared by every command.
type Globals struct {
	Rules     string `name:"rules" help:"Legacy rules file (.rules or .yaml) replacing the built-in table" env:"PUBID_RULES" type:"path"`
	LogLevel  string `name:"log-level" help:"Log level" default:"warn" enum:"debug,info,warn,error" env:"PUBID_LOG_LEVEL"`
	LogFormat string `name:"log-format" help:"Log format" default:"text" enum:"text,json" env:"PUBID_LOG_FORMAT"`
}

// CLI defines the command-line interface for pubid.
type CLI struct {
	Globals

	Parse   ParseCmd   `cmd:"" help:"Parse identifiers and print their canonical form"`
	Batch   BatchCmd   `cmd:"" help:"Normalize a citation list, one identifier per line"`
	Rules   RulesCmd   `cmd:"" help:"Print the active legacy rules table"`
	Catalog CatalogCmd `cmd:"" help:"Query a batch catalog"`
	Serve   ServeCmd   `cmd:"" help:"Start the HTTP API server"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// Env carries process state into commands.
type Env struct {
	Ctx    context.Context
	Stdout io.Writer
}

func (g *Globals) initLogging() error {
	level, err := logging.ParseLevel(g.LogLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(g.LogFormat)
	if err != nil {
		return err
	}
	logging.InitLogger(level, format)
	return nil
}

// table returns the legacy table selected by --rules.
func (g *Globals) table() (*legacy.Table, error) {
	if g.Rules == "" {
		t := legacy.Default()
		logging.RulesLoaded("builtin", t.Len())
		return t, nil
	}
	t, err := legacy.LoadFile(g.Rules)
	if err != nil {
		return nil, err
	}
	logging.RulesLoaded(g.Rules, t.Len())
	return t, nil
}

func (g *Globals) parser() (*pubid.Parser, error) {
	t, err := g.table()
	if err != nil {
		return nil, err
	}
	return pubid.NewParser(t), nil
}

// ParseCmd parses identifiers given on the command line.
type ParseCmd struct {
	Identifiers []string `arg:"" help:"Identifiers to parse"`
	Full        bool     `help:"Print the full form, including draft status wording"`
	JSON        bool     `name:"json" help:"Print the decoded structure as JSON"`
	Tree        bool     `help:"Print the parse tree instead of the rendering"`
}

func (c *ParseCmd) Run(g *Globals, env *Env) error {
	p, err := g.parser()
	if err != nil {
		return err
	}

	failed := 0
	for _, s := range c.Identifiers {
		if c.Tree {
			node, err := grammar.Parse(p.Table().Normalize(s))
			if err != nil {
				failed++
				fmt.Fprintf(env.Stdout, "%s: %v\n", s, err)
				continue
			}
			fmt.Fprintln(env.Stdout, node)
			continue
		}

		id, err := p.Parse(s)
		if err != nil {
			failed++
			fmt.Fprintf(env.Stdout, "%s: %v\n", s, err)
			continue
		}
		switch {
		case c.JSON:
			data, err := json.MarshalIndent(id, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintf(env.Stdout, "%s\n", data)
		case c.Full:
			fmt.Fprintln(env.Stdout, id.Full())
		default:
			fmt.Fprintln(env.Stdout, id)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d identifiers failed to parse", failed, len(c.Identifiers))
	}
	return nil
}

// BatchCmd normalizes a citation list.
type BatchCmd struct {
	Input     string `arg:"" optional:"" default:"-" help:"Input file (.gz and .xz are decompressed; - for stdin)"`
	Output    string `short:"o" default:"-" help:"Output file (.gz and .xz are compressed; - for stdout)"`
	Format    string `default:"text" enum:"text,json" help:"Output format"`
	Full      bool   `help:"Write the full form in text output"`
	Workers   int    `short:"w" help:"Concurrent parsers (0 = number of CPUs)"`
	ChunkSize int    `name:"chunk-size" help:"Lines parsed between output flushes"`
	Catalog   string `help:"SQLite catalog recording this run" type:"path" env:"PUBID_CATALOG"`
	XPath     string `name:"xpath" help:"Treat the input as XML and normalize the text of nodes matching this XPath"`
	CacheSize int    `name:"cache-size" default:"4096" help:"Parsed identifiers kept in memory"`
}

func (c *BatchCmd) Run(g *Globals, env *Env) error {
	p, err := g.parser()
	if err != nil {
		return err
	}

	in, err := archive.Open(c.Input)
	if err != nil {
		return err
	}
	defer in.Close()

	var src io.Reader = in
	if c.XPath != "" {
		if src, err = batch.FromXML(in, c.XPath); err != nil {
			return err
		}
	}

	out, err := c.openOutput(env)
	if err != nil {
		return err
	}
	// Covers early returns; the Close after Run reports flush errors.
	defer out.Close()

	text, err := batch.NewWriterSink(out, batch.Format(c.Format), c.Full)
	if err != nil {
		return err
	}
	var sink batch.Sink = text
	cfg := batch.Config{Workers: c.Workers, ChunkSize: c.ChunkSize}

	var store *catalog.Store
	var run catalog.Run
	if c.Catalog != "" {
		if store, err = catalog.Open(c.Catalog); err != nil {
			return err
		}
		defer store.Close()
		if run, err = store.BeginRun(env.Ctx, c.source()); err != nil {
			return err
		}
		cfg.RunID = run.ID
		sink = batch.MultiSink(text, batch.NewCatalogSink(store, run.ID))
	}

	sum, err := batch.Run(env.Ctx, cfg, pubid.NewCachedParser(p, c.CacheSize), src, sink)
	if err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	if store != nil {
		if err := store.FinishRun(env.Ctx, run.ID, sum.Parsed, sum.Failed); err != nil {
			return err
		}
	}

	logging.Info("batch complete",
		"run_id", run.ID,
		"parsed", sum.Parsed,
		"failed", sum.Failed,
		"duration_ms", sum.Duration.Milliseconds())
	return nil
}

func (c *BatchCmd) source() string {
	if c.Input == "-" {
		return "stdin"
	}
	if abs, err := filepath.Abs(c.Input); err == nil {
		return abs
	}
	return c.Input
}

func (c *BatchCmd) openOutput(env *Env) (*archive.Writer, error) {
	if c.Output == "-" {
		return archive.NewWriter(env.Stdout, archive.None)
	}
	return archive.Create(c.Output)
}

// RulesCmd prints the active legacy table.
type RulesCmd struct{}

func (c *RulesCmd) Run(g *Globals, env *Env) error {
	t, err := g.table()
	if err != nil {
		return err
	}
	_, err = io.WriteString(env.Stdout, t.String())
	return err
}

// CatalogCmd groups catalog queries.
type CatalogCmd struct {
	Path string `name:"path" required:"" help:"SQLite catalog file" type:"existingfile" env:"PUBID_CATALOG"`

	Lookup  CatalogLookupCmd  `cmd:"" help:"Show the latest recorded result for a raw citation"`
	Runs    CatalogRunsCmd    `cmd:"" help:"List recorded batch runs"`
	Entries CatalogEntriesCmd `cmd:"" help:"List the citations of one run"`
}

func (c *CatalogCmd) open() (*catalog.Store, error) {
	return catalog.OpenReadOnly(c.Path)
}

// CatalogLookupCmd prints one entry.
type CatalogLookupCmd struct {
	Raw string `arg:"" help:"Citation as it appeared in the input"`
}

func (c *CatalogLookupCmd) Run(cat *CatalogCmd, env *Env) error {
	store, err := cat.open()
	if err != nil {
		return err
	}
	defer store.Close()

	e, err := store.Lookup(env.Ctx, c.Raw)
	if err != nil {
		return err
	}
	printEntry(env.Stdout, e)
	return nil
}

// CatalogRunsCmd lists runs, most recent first.
type CatalogRunsCmd struct{}

func (c *CatalogRunsCmd) Run(cat *CatalogCmd, env *Env) error {
	store, err := cat.open()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Runs(env.Ctx)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(env.Stdout, "No runs recorded.")
		return nil
	}
	for _, r := range runs {
		status := "unfinished"
		if !r.FinishedAt.IsZero() {
			status = fmt.Sprintf("%d parsed, %d failed", r.Parsed, r.Failed)
		}
		fmt.Fprintf(env.Stdout, "%s  %s  %s  %s\n", r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Source, status)
	}
	return nil
}

// CatalogEntriesCmd lists the entries of one run in input order.
type CatalogEntriesCmd struct {
	RunID string `arg:"" name:"run-id" help:"Run identifier"`
}

func (c *CatalogEntriesCmd) Run(cat *CatalogCmd, env *Env) error {
	store, err := cat.open()
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := store.Run(env.Ctx, c.RunID); err != nil {
		return err
	}
	entries, err := store.Entries(env.Ctx, c.RunID)
	if err != nil {
		return err
	}
	for _, e := range entries {
		printEntry(env.Stdout, e)
	}
	return nil
}

func printEntry(w io.Writer, e catalog.Entry) {
	if e.Error != "" {
		fmt.Fprintf(w, "%d\t%s\terror: %s\n", e.Seq, e.Raw, e.Error)
		return
	}
	fmt.Fprintf(w, "%d\t%s\t%s\n", e.Seq, e.Raw, e.Canonical)
}

// ServeCmd starts the HTTP API server.
type ServeCmd struct {
	Port           int      `help:"HTTP server port" default:"8081" env:"PUBID_PORT"`
	Catalog        string   `help:"SQLite catalog served read-only by the lookup endpoints" type:"existingfile" env:"PUBID_CATALOG"`
	CacheSize      int      `name:"cache-size" default:"4096" help:"Parsed identifiers kept in memory"`
	RateLimit      int      `name:"rate-limit" help:"Requests per minute per client (0 = disabled)"`
	RateBurst      int      `name:"rate-burst" help:"Burst size for rate limiting"`
	AllowedOrigins []string `name:"allowed-origins" help:"Origins allowed for CORS and websocket (empty = all)"`
}

func (c *ServeCmd) Run(g *Globals) error {
	p, err := g.parser()
	if err != nil {
		return err
	}

	var store *catalog.Store
	if c.Catalog != "" {
		if store, err = catalog.OpenReadOnly(c.Catalog); err != nil {
			return err
		}
		defer store.Close()
	}

	cfg := api.Config{
		Port:              c.Port,
		RateLimitRequests: c.RateLimit,
		RateLimitBurst:    c.RateBurst,
		AllowedOrigins:    c.AllowedOrigins,
	}
	return api.Start(cfg, pubid.NewCachedParser(p, c.CacheSize), store)
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run(env *Env) error {
	fmt.Fprintf(env.Stdout, "pubid version %s (sqlite driver %s)\n", version, sqlite.DriverType())
	return nil
}

func newCLI(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("pubid"),
		kong.Description("Parse and normalize IEEE-family standards identifiers"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	}, options...)
	return kong.New(cli, options...)
}

// run parses args and executes the selected command.
func run(ctx context.Context, args []string, stdout io.Writer, options ...kong.Option) error {
	var cli CLI
	k, err := newCLI(&cli, options...)
	if err != nil {
		return err
	}
	kctx, err := k.Parse(args)
	if err != nil {
		return err
	}
	if err := cli.initLogging(); err != nil {
		return err
	}
	return kctx.Run(&cli.Globals, &Env{Ctx: ctx, Stdout: stdout})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "pubid: %s\n", strings.TrimSpace(err.Error()))
		stop()
		os.Exit(1)
	}
}
