// Command budgetwise-admin provisions users and mints development tokens.
//
//	budgetwise-admin add-user alice@example.com
//	budgetwise-admin token -ttl 72h alice@example.com
//	budgetwise-admin schema-version
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"budgetwise/internal/auth"
	"budgetwise/internal/cli"
	"budgetwise/internal/config"
	"budgetwise/internal/storage"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)
	os.Exit(run(cfg, logger, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one subcommand and returns the process exit code. Deferred
// cleanups run before it returns.
func run(cfg *config.Config, logger *slog.Logger, args []string, stdout, stderr io.Writer) int {
	usage := func() int {
		fmt.Fprintln(stderr, "usage: budgetwise-admin <add-user|token|schema-version> [flags] [email]")
		return exitUsage
	}
	if len(args) < 1 {
		return usage()
	}
	cmd, args := args[0], args[1:]

	switch cmd {
	case "add-user":
		fs := flag.NewFlagSet("add-user", flag.ContinueOnError)
		fs.SetOutput(stderr)
		if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
			return usage()
		}
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to open database", "error", err, "path", cfg.SQLiteDBPath)
			return exitError
		}
		defer repo.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		u, err := repo.CreateUser(ctx, fs.Arg(0))
		if err != nil {
			logger.Error("Failed to create user", "error", err, "email", fs.Arg(0))
			return exitError
		}
		fmt.Fprintf(stdout, "created user %d <%s>\n", u.ID, u.Email)

	case "token":
		fs := flag.NewFlagSet("token", flag.ContinueOnError)
		fs.SetOutput(stderr)
		ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
		if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
			return usage()
		}
		tok, err := auth.NewTokenResolver(cfg.JWTSecret, cfg.JWTIssuer).Issue(fs.Arg(0), *ttl)
		if err != nil {
			logger.Error("Failed to sign token", "error", err)
			return exitError
		}
		fmt.Fprintln(stdout, tok)

	case "schema-version":
		version, dirty, err := storage.SchemaVersion(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to read schema version", "error", err, "path", cfg.SQLiteDBPath)
			return exitError
		}
		fmt.Fprintf(stdout, "schema version %d (dirty=%t)\n", version, dirty)

	default:
		return usage()
	}
	return exitOK
}
