package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/fwojciec/biorag"
)

var (
	promptColor = color.New(color.FgCyan, color.Bold)
	answerColor = color.New(color.FgGreen)
	sourceColor = color.New(color.Faint)
	errorColor  = color.New(color.FgRed)
)

// answerOnce answers a single question and prints the answer with its sources.
func (c *CLI) answerOnce(deps *Dependencies, question string) error {
	answer, err := deps.Answerer.Answer(deps.Ctx, c.Person, question)
	if err != nil {
		errorColor.Fprintf(deps.Stderr, "error: %s\n", biorag.ErrorMessage(err))
		return err
	}
	printAnswer(deps, c.Person, answer)
	return nil
}

// runInteractive reads questions from stdin until exit, quit, q or EOF.
// A failed question is reported and the loop continues.
func (c *CLI) runInteractive(deps *Dependencies) error {
	fmt.Fprintf(deps.Stdout, "Ask %s a question. Type 'exit' to quit.\n", c.Person)

	scanner := bufio.NewScanner(deps.Stdin)
	for {
		promptColor.Fprint(deps.Stdout, "\n> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		switch strings.ToLower(question) {
		case "exit", "quit", "q":
			return nil
		}
		if err := c.answerOnce(deps, question); err != nil {
			if deps.Ctx.Err() != nil {
				return deps.Ctx.Err()
			}
		}
	}
	fmt.Fprintln(deps.Stdout)
	return scanner.Err()
}

func printAnswer(deps *Dependencies, person string, answer *biorag.Answer) {
	fmt.Fprintf(deps.Stdout, "\n%s:\n", person)
	answerColor.Fprintln(deps.Stdout, answer.Text)
	urls := answer.SourceURLs()
	if len(urls) == 0 {
		return
	}
	fmt.Fprintln(deps.Stdout, "\nSources:")
	for i, u := range urls {
		sourceColor.Fprintf(deps.Stdout, "  [%d] %s\n", i+1, u)
	}
}
