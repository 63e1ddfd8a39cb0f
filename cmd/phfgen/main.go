// Command phfgen generates perfect hash tables from key lists.
//
// Usage:
//
//	phfgen [flags] [input]
//
// Each input line is a key, or a key and a value literal separated by a
// tab. Defaults for several flags come from PHFGEN_* environment variables
// (optionally loaded from a .env file).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := execute(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "phfgen failed: %v\n", err)
		os.Exit(1)
	}
}

func execute(ctx context.Context) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}

	var log *zap.Logger
	if env.Environment == EnvDev {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	// Sync returns EINVAL on terminals.
	defer func() { _ = log.Sync() }()

	return newRootCommand(env, log).ExecuteContext(ctx)
}
