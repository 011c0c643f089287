package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/ecoles/schoolmanager/internal/app"
)

const usage = `schoolmanager-server: authorization backend for the school platform.

Usage:
  schoolmanager-server [command] [flags]

Commands:
  serve              run the HTTP API (default)
  init-permissions   register the permission catalog and default roles
  create-user        create a local account and its profile
  assign-role        assign a role to an existing account

Run "schoolmanager-server <command> --help" for command flags.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	command := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command, args = args[0], args[1:]
	}

	switch command {
	case "serve":
		return runServe(ctx, args)
	case "init-permissions":
		return runInitPermissions(ctx, args, out)
	case "create-user":
		return runCreateUser(ctx, args, out)
	case "assign-role":
		return runAssignRole(ctx, args, out)
	case "help":
		fmt.Fprint(out, usage)
		return nil
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

// newFlagSet returns a flag set carrying the shared --config flag.
func newFlagSet(name string, out io.Writer, configPath *string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVarP(configPath, "config", "c", "", "path to configuration directory or file")
	return fs
}

func loadApplicationConfig(path string) (*app.Config, error) {
	if strings.TrimSpace(path) == "" {
		return app.LoadConfig()
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config path %q does not exist", path)
		}
		return nil, fmt.Errorf("stat config path: %w", err)
	}
	if info.IsDir() {
		return app.LoadConfig(path)
	}
	return app.LoadConfig(filepath.Dir(path))
}

// prepareConfig loads configuration, fills runtime secrets and configures logging.
func prepareConfig(path string) (*app.Config, map[string]bool, error) {
	cfg, err := loadApplicationConfig(path)
	if err != nil {
		return nil, nil, err
	}

	generated, err := app.ApplyRuntimeDefaults(cfg)
	if err != nil {
		return nil, nil, err
	}

	if err := app.ConfigureLogging(cfg.Server.LogLevel, cfg.Server.LogFormat); err != nil {
		return nil, nil, fmt.Errorf("configure logging: %w", err)
	}
	return cfg, generated, nil
}
