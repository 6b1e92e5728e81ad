// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command authctl runs operator tasks against the Sentinel database.
//
// # Usage
//
//	authctl seed <accounts.yaml>   Provision accounts; existing emails are skipped.
//	authctl sweep                  Delete expired sessions.
//	authctl migrate up             Apply pending migrations.
//	authctl migrate down [steps]   Roll back migrations (default 1 step).
//
// Configuration is read from the same environment variables as the API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/taibuivan/sentinel/internal/platform/config"
	"github.com/taibuivan/sentinel/internal/platform/constants"
	"github.com/taibuivan/sentinel/internal/platform/ctxutil"
	"github.com/taibuivan/sentinel/internal/platform/migration"
	pgstore "github.com/taibuivan/sentinel/internal/platform/postgres"
	redisstore "github.com/taibuivan/sentinel/internal/platform/redis"
	"github.com/taibuivan/sentinel/internal/platform/sec"
	"github.com/taibuivan/sentinel/internal/users/account"
	"github.com/taibuivan/sentinel/internal/users/session"
)

// commandTimeout bounds a single authctl invocation.
const commandTimeout = 2 * time.Minute

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stderr, nil)).With(slog.String("app", "sentinel-authctl"))

	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error("startup_failure", slog.String("context", "load configuration"), slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	ctx = ctxutil.WithLogger(ctx, log)

	args := flag.Args()
	switch args[0] {
	case "seed":
		if len(args) != 2 {
			usage()
			os.Exit(2)
		}
		err = runSeed(ctx, cfg, log, args[1])
	case "sweep":
		err = runSweep(ctx, cfg, log)
	case "migrate":
		err = runMigrate(cfg, log, args[1:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Error("command_failed", slog.String("command", args[0]), slog.Any("error", err))
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: authctl seed <accounts.yaml> | sweep | migrate up | migrate down [steps]")
}

// runSeed provisions every account in the seed file.
func runSeed(ctx context.Context, cfg *config.Config, log *slog.Logger, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer file.Close()

	seed, err := ParseSeed(file)
	if err != nil {
		return err
	}

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	service := account.NewService(account.NewPostgresRepository(pool), sec.NewHasher(cfg.BcryptCost))

	report, err := Provision(ctx, service, seed)
	if err != nil {
		return err
	}

	log.Info("seed_completed",
		slog.Int("created", report.Created),
		slog.Int("skipped", report.Skipped),
	)
	return nil
}

// runSweep deletes expired sessions from the configured store.
func runSweep(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	var store session.Store = session.NewPostgresStore(pool)
	if cfg.UsesRedisSessions() {
		rdb, err := redisstore.NewClient(ctx, cfg.RedisURL, log)
		if err != nil {
			return err
		}
		defer rdb.Close()
		store = session.NewRedisStore(rdb)
	}

	removed, err := session.NewManager(store, constants.SessionTTL, nil).SweepExpired(ctx)
	if err != nil {
		return err
	}

	log.Info("sweep_completed", slog.String("store", cfg.SessionStore), slog.Int64("removed", removed))
	return nil
}

// runMigrate applies or rolls back schema migrations.
func runMigrate(cfg *config.Config, log *slog.Logger, args []string) error {
	if len(args) == 0 {
		return errors.New("migrate: expected 'up' or 'down'")
	}

	switch args[0] {
	case "up":
		return migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log)
	case "down":
		steps := 1
		if len(args) > 1 {
			parsed, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("migrate: invalid step count %q: %w", args[1], err)
			}
			steps = parsed
		}
		return migration.RunDown(cfg.DatabaseURL, cfg.MigrationPath, steps, log)
	default:
		return fmt.Errorf("migrate: unknown direction %q", args[0])
	}
}
