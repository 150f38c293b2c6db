package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/LuanAssis01/sgi-maraba/internal/config"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

type command struct {
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"seed":          {"write every key, optionally resetting to the defaults", runSeed},
	"dump":          {"print stored blobs as JSON", runDump},
	"list":          {"list requests, filtered by status, priority or reporter", runList},
	"stats":         {"count requests per status", runStats},
	"report":        {"file a new request as a citizen", runReport},
	"dispatch":      {"assign a team to a pending request", runDispatch},
	"complete":      {"complete a request in progress", runComplete},
	"cancel":        {"cancel a request as an administrator", runCancel},
	"notifications": {"list notifications and mark them read", runNotifications},
	"search":        {"rank suggestions for a query and optionally select one", runSearch},
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if len(os.Args) < 2 || os.Args[1] == "help" || os.Args[1] == "--help" || os.Args[1] == "-h" {
		printUsage()
		return nil
	}
	name, args := os.Args[1], os.Args[2:]

	if name == "migrate" {
		return runGooseMigrations(cfg)
	}

	cmd, ok := commands[name]
	if !ok {
		printUsage()
		return fmt.Errorf("unknown command: %s", name)
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to start session", zap.Error(err))
		return err
	}
	defer a.Close()

	return cmd.run(ctx, a, args)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: sgi-maraba <command> [flags]\n\nCommands:\n")
	fmt.Fprintf(os.Stderr, "  %-14s %s\n", "migrate", "apply database migrations (postgres backend)")
	for _, name := range []string{"seed", "dump", "list", "stats", "report", "dispatch", "complete", "cancel", "notifications", "search"} {
		fmt.Fprintf(os.Stderr, "  %-14s %s\n", name, commands[name].summary)
	}
	fmt.Fprintf(os.Stderr, "\nConfiguration is read from the environment and an optional .env file.\n")
}

func newFlagSet(name string) *pflag.FlagSet {
	return pflag.NewFlagSet(name, pflag.ContinueOnError)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
