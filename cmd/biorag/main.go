package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/biorag"
	"github.com/fwojciec/biorag/anthropic"
	"github.com/fwojciec/biorag/collect"
	"github.com/fwojciec/biorag/fs"
	"github.com/fwojciec/biorag/gemini"
	"github.com/fwojciec/biorag/goquery"
	"github.com/fwojciec/biorag/htmltomarkdown"
	biohttp "github.com/fwojciec/biorag/http"
	"github.com/fwojciec/biorag/index"
	"github.com/fwojciec/biorag/qa"
	"github.com/fwojciec/biorag/readability"
	"github.com/fwojciec/biorag/rod"
	bioslog "github.com/fwojciec/biorag/slog"
	"github.com/fwojciec/biorag/sqlite"
	"github.com/fwojciec/biorag/toml"
	"github.com/fwojciec/biorag/trafilatura"
	"github.com/subosito/gotenv"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// A missing .env is fine; variables already set win.
	_ = gotenv.Load()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path used when --db is not given. Set before calling Run().
	DBPath string

	// Config file read for flag defaults.
	ConfigPath string

	// Getenv looks up API keys. Defaults to os.Getenv.
	Getenv func(string) string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath:     defaultDBPath(),
		ConfigPath: defaultConfigPath(),
		Getenv:     os.Getenv,
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	for i := len(m.closers) - 1; i >= 0; i-- {
		_ = m.closers[i].Close()
	}
	m.closers = nil
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("biorag"),
		kong.Description("Converse with historical figures grounded in their own words."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Configuration(toml.Loader, m.ConfigPath),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no person specified. Run 'biorag --help' for usage")
	}
	switch args[0] {
	case "help", "--help", "-h":
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	if err := cli.Validate(); err != nil {
		return err
	}
	cli.normalizeMode()

	// Fail fast on missing keys before touching the database or network.
	geminiKey := m.Getenv("GEMINI_API_KEY")
	if cli.needsEmbeddings() && geminiKey == "" {
		fmt.Fprintln(stderr, "Hint: get an API key at https://aistudio.google.com/apikey")
		return biorag.Errorf(biorag.EUNAUTHORIZED, "GEMINI_API_KEY is not set")
	}
	anthropicKey := m.Getenv("ANTHROPIC_API_KEY")
	if cli.QA && cli.Provider == "anthropic" && anthropicKey == "" {
		return biorag.Errorf(biorag.EUNAUTHORIZED, "ANTHROPIC_API_KEY is not set")
	}

	logger := slog.New(slog.DiscardHandler)
	if cli.Verbose {
		logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	defer m.Close()

	if cli.Scrape {
		collector, err := m.newCollector(cli, logger)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: --browser needs Chrome or Chromium installed")
			return fmt.Errorf("failed to start fetcher: %w", err)
		}
		deps.Collector = collector
	}

	if cli.needsEmbeddings() {
		client, err := gemini.NewClient(ctx, geminiKey, "")
		if err != nil {
			fmt.Fprintln(stderr, "Hint: check that GEMINI_API_KEY is valid")
			return fmt.Errorf("failed to connect to Gemini API: %w", err)
		}

		dbPath := cli.DB
		if dbPath == "" {
			dbPath = m.DBPath
		}
		if dir := filepath.Dir(dbPath); dir != "." {
			_ = os.MkdirAll(dir, 0o755)
		}
		m.DB = sqlite.NewDB(dbPath)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintln(stderr, "Hint: set BIORAG_DB or --db to use a different database path")
			return fmt.Errorf("failed to open database at %q: %w", dbPath, err)
		}

		var embedder biorag.Embedder = gemini.NewEmbedder(client)
		var completer biorag.Completer
		if cli.QA {
			completer, err = newCompleter(client, cli, anthropicKey)
			if err != nil {
				return err
			}
		}
		if cli.Verbose {
			embedder = bioslog.NewLoggingEmbedder(embedder, logger)
			if completer != nil {
				completer = bioslog.NewLoggingCompleter(completer, logger)
			}
		}

		records := sqlite.NewRecordService(m.DB)
		deps.Records = records
		deps.Indexer = index.NewIndexer(fs.NewDocumentService(cli.OutputDir), records, embedder)
		if completer != nil {
			answerer := qa.NewAnswerer(embedder, records, completer)
			answerer.Limit = cli.TopK
			deps.Answerer = answerer
		}
	}

	return kongCtx.Run(deps)
}

// newCollector wires the scraping pipeline. Every fetch, search pages
// included, waits on the per-host rate limit.
func (m *Main) newCollector(cli *CLI, logger *slog.Logger) (*collect.Collector, error) {
	httpOpts := []biohttp.Option{biohttp.WithTimeout(cli.Timeout)}
	rodOpts := []rod.Option{rod.WithFetchTimeout(cli.Timeout)}
	if cli.UserAgent != "" {
		httpOpts = append(httpOpts, biohttp.WithUserAgent(cli.UserAgent))
		rodOpts = append(rodOpts, rod.WithUserAgent(cli.UserAgent))
	}
	httpFetcher := biohttp.NewFetcher(httpOpts...)

	var pageFetcher biorag.Fetcher = httpFetcher
	if cli.Browser {
		rf, err := rod.NewFetcher(rodOpts...)
		if err != nil {
			return nil, err
		}
		pageFetcher = rf
	}
	m.closers = append(m.closers, pageFetcher)

	var webFetcher biorag.Fetcher = httpFetcher
	if cli.Verbose {
		webFetcher = bioslog.NewLoggingFetcher(webFetcher, logger)
		pageFetcher = bioslog.NewLoggingFetcher(pageFetcher, logger)
	}
	limiter := collect.NewDomainLimiter(collect.DefaultRequestsPerSecond)
	webFetcher = collect.NewRateLimitedFetcher(webFetcher, limiter)
	pageFetcher = collect.NewRateLimitedFetcher(pageFetcher, limiter)

	var web biorag.WebSearcher = goquery.NewSearcher(webFetcher)
	var wikisource biorag.WebSearcher = biohttp.NewWikisourceSearcher(webFetcher)
	if cli.Verbose {
		web = bioslog.NewLoggingSearcher(web, collect.SearcherWeb, logger)
		wikisource = bioslog.NewLoggingSearcher(wikisource, collect.SearcherWikisource, logger)
	}

	var converter biorag.Converter = goquery.NewTextConverter()
	if cli.Format == "markdown" {
		converter = htmltomarkdown.NewConverter()
	}

	c := &collect.Collector{
		Searchers: map[string]biorag.WebSearcher{
			collect.SearcherWeb:        web,
			collect.SearcherWikisource: wikisource,
		},
		Fetcher: pageFetcher,
		Sites:   goquery.NewDefaultRegistry(),
		Extractor: biorag.ExtractorChain{
			goquery.NewGenericExtractor(),
			trafilatura.NewExtractor(),
			readability.NewExtractor(),
		},
		Converter:         converter,
		Store:             fs.NewFileStore(cli.OutputDir, cli.Person),
		MaxDocuments:      cli.MaxDocuments,
		SearchConcurrency: cli.SearchConcurrency,
	}

	// Token counts are informational; scraping works without them.
	if tc, err := gemini.NewTokenCounter(""); err == nil {
		c.TokenCounter = tc
	} else {
		logger.Warn("token counter unavailable", "err", err)
	}
	return c, nil
}

func newCompleter(client *genai.Client, cli *CLI, anthropicKey string) (biorag.Completer, error) {
	if cli.Provider == "anthropic" {
		c, err := anthropic.NewCompleter(anthropicKey, cli.Model)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return gemini.NewCompleter(client, cli.Model), nil
}

func defaultDBPath() string {
	if path := os.Getenv("BIORAG_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "biorag.db"
	}
	return filepath.Join(home, ".biorag", "biorag.db")
}

func defaultConfigPath() string {
	if path := os.Getenv("BIORAG_CONFIG"); path != "" {
		return path
	}
	return "~/.biorag/config.toml"
}
