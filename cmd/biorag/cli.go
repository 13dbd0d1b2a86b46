package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/biorag"
	"github.com/fwojciec/biorag/collect"
	"github.com/go-playground/validator/v10"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
	Collector *collect.Collector
	Indexer   biorag.Indexer
	Records   biorag.VectorStore
	Answerer  biorag.Answerer
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Person string `arg:"" help:"Name of the historical figure" validate:"required"`

	Scrape   bool   `help:"Collect source documents from the web"`
	QA       bool   `name:"qa" help:"Answer questions about the person (default mode)"`
	Question string `short:"q" help:"Answer a single question and exit"`

	OutputDir         string          `default:"scraped_content" type:"path" help:"Directory for scraped documents" validate:"required"`
	DB                string          `name:"db" type:"path" help:"Vector database path (default ~/.biorag/biorag.db, env BIORAG_DB)"`
	MaxDocuments      int             `default:"10" help:"Maximum documents to save per scrape" validate:"min=1,max=100"`
	ChunkSize         int             `default:"1000" help:"Chunk size in characters" validate:"min=100,max=8000"`
	TopK              int             `name:"top-k" default:"3" help:"Passages retrieved per question" validate:"min=1,max=20"`
	Provider          string          `default:"gemini" enum:"gemini,anthropic" help:"Completion provider (gemini, anthropic)" validate:"oneof=gemini anthropic"`
	Model             string          `help:"Completion model (default depends on provider)"`
	Format            string          `default:"text" enum:"text,markdown" help:"Scraped document format (text, markdown)" validate:"oneof=text markdown"`
	Browser           bool            `help:"Fetch pages with headless Chrome"`
	UserAgent         string          `help:"User-Agent header for search and page requests (default a desktop browser)"`
	NoIndex           bool            `help:"Skip embedding scraped documents"`
	SearchConcurrency int             `default:"1" help:"Searches run at once" validate:"min=1,max=8"`
	Timeout           time.Duration   `default:"10s" help:"Page fetch timeout" validate:"gt=0"`
	Config            kong.ConfigFlag `help:"TOML file with flag defaults (default ~/.biorag/config.toml, env BIORAG_CONFIG)"`
	Verbose           bool            `short:"v" help:"Log external calls to stderr"`
}

// Validate checks flag values after parsing.
func (c *CLI) Validate() error {
	c.Person = strings.TrimSpace(c.Person)
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			if f.Field() == "Person" {
				return biorag.Errorf(biorag.EINVALID, "person name required")
			}
			return biorag.Errorf(biorag.EINVALID, "invalid %s: must satisfy %s", flagName(f.Field()), validationRule(f))
		}
		return biorag.Errorf(biorag.EINVALID, "invalid flags: %v", err)
	}
	return nil
}

// normalizeMode selects Q&A when no mode flag was given.
func (c *CLI) normalizeMode() {
	if !c.Scrape && !c.QA {
		c.QA = true
	}
}

// needsEmbeddings reports whether the run calls the embedding API.
func (c *CLI) needsEmbeddings() bool {
	return c.QA || (c.Scrape && !c.NoIndex)
}

// Run executes the selected modes: scrape first, then Q&A.
func (c *CLI) Run(deps *Dependencies) error {
	indexed := false
	if c.Scrape {
		var err error
		if indexed, err = c.runScrape(deps); err != nil {
			return err
		}
	}
	if c.QA {
		if !indexed && !c.NoIndex {
			if err := c.ensureIndex(deps); err != nil {
				return err
			}
		}
		if c.Question != "" {
			return c.answerOnce(deps, c.Question)
		}
		return c.runInteractive(deps)
	}
	return nil
}

func flagName(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return "--" + b.String()
}

func validationRule(f validator.FieldError) string {
	if f.Param() == "" {
		return f.Tag()
	}
	return fmt.Sprintf("%s=%s", f.Tag(), f.Param())
}
