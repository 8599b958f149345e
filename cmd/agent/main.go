package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	json "github.com/goccy/go-json"

	"github.com/petasbytes/form-agent/internal/config"
	"github.com/petasbytes/form-agent/internal/provider"
	"github.com/petasbytes/form-agent/internal/runner"
	"github.com/petasbytes/form-agent/internal/telemetry"
	"github.com/petasbytes/form-agent/session"
	"github.com/petasbytes/form-agent/tools"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (default $AGT_CONFIG)")
	envFile := flag.String("env", ".env", "dotenv file loaded before the environment")
	sessionID := flag.String("session", "", "resume an existing session")
	lang := flag.String("lang", session.LanguageEN, "session language for new sessions (en|de)")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Provider == "anthropic" && cfg.AnthropicAPIKey == "" {
		fmt.Println("Missing ANTHROPIC_API_KEY; export it before running.")
		os.Exit(1)
	}
	logger := cfg.NewLogger(os.Stderr)
	telemetry.Configure(cfg.ObserveJSON, cfg.EventsPath)

	model, err := provider.New(cfg.ModelConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "provider: %v\n", err)
		os.Exit(1)
	}
	r := runner.New(model, tools.Registry())
	r.MaxSteps = cfg.MaxSteps
	r.MaxTokens = cfg.MaxTokens
	r.Logger = logger

	ttl, _ := cfg.TTL()
	store, err := session.NewFileStore(cfg.DataDir, ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "session store: %v\n", err)
		os.Exit(1)
	}

	// Graceful shutdown on Ctrl-C (SIGINT) / SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sess, err := openSession(ctx, store, *sessionID, *lang)
	if err != nil {
		fmt.Fprintf(os.Stderr, "session: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Session %s (schema v%d). Commands: /schema, /quit\n", sess.ID, sess.SchemaState.Version)
	printClarification(sess.PendingClarification)

	scanner := bufio.NewScanner(os.Stdin)
	inputCh := make(chan string)
	go func() {
		for scanner.Scan() {
			inputCh <- scanner.Text()
		}
		close(inputCh)
	}()

outer:
	for {
		fmt.Print("\u001b[94mYou\u001b[0m: ")
		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			fmt.Println("\nExiting...")
			break outer
		case line, ok = <-inputCh:
			if !ok {
				break outer
			}
		}
		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "/quit":
			break outer
		case "/schema":
			printSchema(sess)
			continue
		}

		res, err := r.RunTurn(ctx, sess, line)
		sess = res.Session
		// Edits committed before a failure are persisted as well
		if serr := store.Save(context.Background(), sess); serr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to save session: %v\n", serr)
		}
		for _, t := range res.Tools {
			printOutcome(t)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		if res.Text != "" {
			fmt.Printf("\u001b[93mAgent\u001b[0m: %s\n", res.Text)
		}
		printClarification(sess.PendingClarification)
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: stdin read error: %v\n", err)
	}
}

func openSession(ctx context.Context, store session.Store, id, lang string) (session.Session, error) {
	if id != "" {
		sess, err := store.Get(ctx, id)
		if errors.Is(err, session.ErrNotFound) {
			return session.Session{}, fmt.Errorf("session %s not found", id)
		}
		return sess, err
	}
	sess := session.New(lang)
	return sess, store.Save(ctx, sess)
}

func printOutcome(t runner.ToolOutcome) {
	switch {
	case t.Skipped:
		fmt.Printf("\u001b[92mtool\u001b[0m: %s skipped\n", t.Name)
	case t.OK:
		fmt.Printf("\u001b[92mtool\u001b[0m: %s ok (v%d)\n", t.Name, t.Version)
	default:
		fmt.Printf("\u001b[91mtool\u001b[0m: %s failed: %s\n", t.Name, t.Error)
	}
}

func printClarification(c *session.Clarification) {
	if c == nil {
		return
	}
	fmt.Printf("\u001b[93mQuestion\u001b[0m: %s\n", c.Question)
	for i, o := range c.Options {
		fmt.Printf("  %d. %s\n", i+1, o)
	}
}

func printSchema(sess session.Session) {
	b, err := json.MarshalIndent(sess.SchemaState, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	fmt.Println(string(b))
}
