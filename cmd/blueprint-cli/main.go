// Command blueprint-cli runs generations from the terminal against the
// configured LLM provider, without a database. Useful for checking
// prompts and the file parser.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"terraai/internal/capabilities"
	"terraai/internal/config"
	"terraai/internal/service/blueprint"
	serviceLLM "terraai/internal/service/llm"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorBlue   = "\033[34m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

type cli struct {
	gateway *serviceLLM.Gateway
	history serviceLLM.History
	state   blueprint.State
	scanner *bufio.Scanner
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, closer, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	if closer != nil {
		defer closer.Close()
	}

	caps, err := capabilities.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load capabilities: %v", err)
	}
	gateway, err := serviceLLM.SetupGateway(cfg, caps, logger)
	if err != nil {
		log.Fatalf("Failed to set up gateway: %v", err)
	}

	c := &cli{
		gateway: gateway,
		state:   blueprint.NewState(),
		scanner: bufio.NewScanner(os.Stdin),
	}
	c.scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	c.run()
}

func (c *cli) run() {
	fmt.Printf("\n%s── terraai blueprint cli ──%s\n", colorCyan, colorReset)
	fmt.Printf("%sprovider: %s | model: %s%s\n", colorBlue, c.gateway.ProviderName(), c.gateway.Model(), colorReset)
	fmt.Println("Type a prompt, or /files /save <dir> /validate /bundle /reset /quit")

	for {
		fmt.Print("\n> ")
		if !c.scanner.Scan() {
			return
		}
		line := strings.TrimSpace(c.scanner.Text())
		cmd, arg, _ := strings.Cut(line, " ")

		switch cmd {
		case "":
		case "/quit", "/exit":
			fmt.Printf("%s✓ Goodbye!%s\n", colorGreen, colorReset)
			return
		case "/files":
			c.listFiles()
		case "/save":
			c.save(strings.TrimSpace(arg))
		case "/validate":
			c.validate()
		case "/bundle":
			fmt.Println(blueprint.Bundle(c.state.Files))
		case "/reset":
			c.state = blueprint.NewState()
			c.history = serviceLLM.History{}
			fmt.Printf("%s✓ New chat%s\n", colorGreen, colorReset)
		default:
			c.generate(line)
		}
	}
}

func (c *cli) generate(prompt string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c.state = c.state.WithPrompt(prompt)
	c.history = c.history.WithUser(prompt)

	chunks, err := c.gateway.Stream(ctx, c.history)
	if err != nil {
		c.state = c.state.Fail()
		fmt.Printf("%s❌ %v%s\n", colorRed, err, colorReset)
		return
	}

	var text strings.Builder
	for chunk := range chunks {
		if chunk.Err != nil {
			err = chunk.Err
			continue
		}
		text.WriteString(chunk.Text)
		fmt.Print(chunk.Text)
	}
	fmt.Println()

	if err != nil {
		c.state = c.state.Apply(text.String(), true).Fail()
		if errors.Is(err, context.Canceled) {
			fmt.Printf("%s⚠ Interrupted%s\n", colorYellow, colorReset)
			return
		}
		fmt.Printf("%s❌ %v%s\n", colorRed, err, colorReset)
		return
	}

	c.state = c.state.Apply(text.String(), false)
	c.history = c.history.WithAssistant(text.String())

	res := blueprint.Parse(text.String(), false)
	fmt.Printf("%s✓ %d file(s) in this reply, %d total%s\n", colorGreen, len(res.Files), len(c.state.Files), colorReset)
	if len(res.Suggestions) > 0 {
		fmt.Printf("%ssuggestions: %s%s\n", colorCyan, strings.Join(res.Suggestions, " | "), colorReset)
	}
}

func (c *cli) listFiles() {
	if len(c.state.Files) == 0 {
		fmt.Printf("%s⚠ No files yet%s\n", colorYellow, colorReset)
		return
	}
	for _, name := range c.state.Files.Names() {
		fmt.Printf("  %s (%d bytes)\n", name, len(c.state.Files[name]))
	}
}

func (c *cli) validate() {
	for name, res := range blueprint.ValidateAll(c.state.Files) {
		if res.Valid {
			fmt.Printf("  %s✓ %s%s\n", colorGreen, name, colorReset)
			continue
		}
		fmt.Printf("  %s✗ %s%s\n", colorRed, name, colorReset)
		for _, e := range res.Errors {
			fmt.Printf("      %s\n", e)
		}
	}
}

func (c *cli) save(dir string) {
	if dir == "" {
		fmt.Printf("%s⚠ Usage: /save <dir>%s\n", colorYellow, colorReset)
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Printf("%s❌ %v%s\n", colorRed, err, colorReset)
		return
	}
	for _, name := range c.state.Files.Names() {
		// names are restricted to [A-Za-z0-9_.-] by the parser
		path := filepath.Join(dir, filepath.Base(name))
		if err := os.WriteFile(path, []byte(c.state.Files[name]), 0o644); err != nil {
			fmt.Printf("%s❌ %v%s\n", colorRed, err, colorReset)
			return
		}
	}
	fmt.Printf("%s✓ Wrote %d file(s) to %s%s\n", colorGreen, len(c.state.Files), dir, colorReset)
}
