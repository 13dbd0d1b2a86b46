package main

import (
	"fmt"

	"github.com/fwojciec/biorag"
	"github.com/fwojciec/biorag/collect"
)

// runScrape collects documents for the person and, unless indexing is
// disabled, embeds them with pruning of chunks from the previous scrape.
// It reports whether the index was brought up to date.
func (c *CLI) runScrape(deps *Dependencies) (bool, error) {
	fmt.Fprintf(deps.Stdout, "Collecting sources for %s\n", c.Person)

	progress := func(event collect.ProgressEvent) {
		switch event.Type {
		case collect.ProgressSearched:
			fmt.Fprintf(deps.Stdout, "  %q: %d results\n", event.Query, event.Count)
		case collect.ProgressSearchFailed:
			fmt.Fprintf(deps.Stderr, "  search %q failed: %v\n", event.Query, event.Error)
		case collect.ProgressSaved:
			fmt.Fprintf(deps.Stdout, "  [%d] %s\n", event.Saved, collect.TruncateURL(event.URL, 70))
		case collect.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", collect.TruncateURL(event.URL, 70), event.Error)
		}
	}

	result, err := deps.Collector.Collect(deps.Ctx, c.Person, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error collecting: %s\n", biorag.ErrorMessage(err))
		return false, err
	}

	if result.Saved == 0 {
		fmt.Fprintf(deps.Stdout, "No documents saved; previous sources for %s are kept\n", c.Person)
		return false, nil
	}
	fmt.Fprintf(deps.Stdout, "Saved %d documents (%s, %s), %d failed\n",
		result.Saved, collect.FormatBytes(result.Bytes), collect.FormatTokens(result.Tokens), result.Failed)

	if c.NoIndex {
		return false, nil
	}
	if err := c.runIndex(deps, true); err != nil {
		return false, err
	}
	return true, nil
}

// ensureIndex brings the index up to date before answering. Records left
// from an earlier run are enough when the scraped documents are gone.
func (c *CLI) ensureIndex(deps *Dependencies) error {
	err := c.runIndex(deps, false)
	if err == nil || biorag.ErrorCode(err) != biorag.ENOTFOUND {
		return err
	}

	key := biorag.PersonKey(c.Person)
	n, countErr := deps.Records.CountRecords(deps.Ctx, key)
	if countErr != nil {
		return fmt.Errorf("count records: %w", countErr)
	}
	if n == 0 {
		fmt.Fprintf(deps.Stderr, "error: %s\n", biorag.ErrorMessage(err))
		return err
	}

	records, findErr := deps.Records.FindRecords(deps.Ctx, biorag.RecordFilter{Person: &key})
	if findErr != nil {
		return fmt.Errorf("find records: %w", findErr)
	}
	sources := indexedSources(records)
	fmt.Fprintf(deps.Stderr, "warning: no scraped documents for %s; using %d indexed passages from %d sources\n",
		c.Person, n, len(sources))
	for _, u := range sources {
		fmt.Fprintf(deps.Stderr, "  %s\n", collect.TruncateURL(u, 70))
	}
	return nil
}

// indexedSources returns the distinct source URLs of records in order.
func indexedSources(records []*biorag.Record) []string {
	seen := make(map[string]bool)
	var urls []string
	for _, r := range records {
		if seen[r.SourceURL] {
			continue
		}
		seen[r.SourceURL] = true
		urls = append(urls, r.SourceURL)
	}
	return urls
}

func (c *CLI) runIndex(deps *Dependencies, prune bool) error {
	result, err := deps.Indexer.IndexPerson(deps.Ctx, c.Person, biorag.IndexOptions{
		ChunkSize: c.ChunkSize,
		Prune:     prune,
	})
	if err != nil {
		if biorag.ErrorCode(err) != biorag.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error indexing: %s\n", biorag.ErrorMessage(err))
		}
		return err
	}

	fmt.Fprintf(deps.Stdout, "Indexed %d documents: %d chunks, %d embedded, %d unchanged",
		result.Documents, result.Chunks, result.Embedded, result.Skipped)
	if result.Pruned > 0 {
		fmt.Fprintf(deps.Stdout, ", %d removed", result.Pruned)
	}
	fmt.Fprintln(deps.Stdout)
	return nil
}
