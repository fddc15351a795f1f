package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/angelmondragon/vendorkyc-backend/pkg/config"
	"github.com/angelmondragon/vendorkyc-backend/pkg/db"
	"github.com/angelmondragon/vendorkyc-backend/pkg/logger"
	"github.com/angelmondragon/vendorkyc-backend/pkg/migrate"
)

const serviceName = "migrate"

// gooseCommands are passed straight through to goose against the database.
var gooseCommands = map[string]bool{
	"up":     true,
	"down":   true,
	"redo":   true,
	"status": true,
}

type options struct {
	cmd     string
	dir     string
	name    string
	version string
}

func parseOptions(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet(serviceName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.cmd, "cmd", "up", "migration command: up|down|redo|status|version|create|validate")
	fs.StringVar(&opts.dir, "dir", migrate.DefaultDir, "goose migrations directory")
	fs.StringVar(&opts.name, "name", "", "migration name, required by create")
	fs.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS), required by version")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	switch {
	case opts.cmd == "create" && opts.name == "":
		return opts, errors.New("-name is required for create")
	case opts.cmd == "version" && opts.version == "":
		return opts, errors.New("-version is required for version")
	case opts.cmd != "create" && opts.cmd != "validate" && opts.cmd != "version" && !gooseCommands[opts.cmd]:
		return opts, fmt.Errorf("unknown -cmd %q", opts.cmd)
	}
	return opts, nil
}

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})
	ctx := context.Background()

	opts, err := parseOptions(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logg.Error(ctx, "invalid arguments", err)
		os.Exit(2)
	}

	// create and validate only touch the migrations directory.
	if err := runOffline(opts); err != errNeedsDatabase {
		if err != nil {
			logg.Error(logg.WithField(ctx, "cmd", opts.cmd), "migration command failed", err)
			os.Exit(1)
		}
		return
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{
		"env": cfg.App.Env,
		"cmd": opts.cmd,
		"dir": opts.dir,
	})

	if err := runOnline(ctx, cfg, logg, opts); err != nil {
		logg.Error(ctx, "migration command failed", err)
		os.Exit(1)
	}
	logg.Info(ctx, "migrate.done")
}

var errNeedsDatabase = errors.New("command needs database")

func runOffline(opts options) error {
	switch opts.cmd {
	case "create":
		path, err := migrate.CreateSQLMigration(opts.dir, opts.name)
		if err != nil {
			return err
		}
		fmt.Println("created migration:", path)
		return nil
	case "validate":
		if err := migrate.ValidateDir(opts.dir); err != nil {
			return err
		}
		fmt.Println("migration validation passed")
		return nil
	}
	return errNeedsDatabase
}

func runOnline(ctx context.Context, cfg *config.Config, logg *logger.Logger, opts options) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		return err
	}

	if opts.cmd == "version" {
		return migrate.MigrateToVersion(ctx, sqlDB, opts.dir, opts.version)
	}
	return migrate.Run(ctx, sqlDB, opts.dir, opts.cmd)
}
