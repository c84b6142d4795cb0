package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pressly/goose/v3"

	"dzkitab/db"
	"dzkitab/internal/httpx"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, version, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	loadEnvFiles()
	httpx.InitLogger(os.Getenv("LOG_LEVEL"))

	if err := run(context.Background(), *command, *name); err != nil {
		slog.Error("migrate failed", "command", *command, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command, name string) error {
	dir := migrationsDir()

	if command == "create" {
		if name == "" {
			return fmt.Errorf("name is required for 'create' command")
		}
		if err := goose.Create(nil, dir, name, "sql"); err != nil {
			return fmt.Errorf("create migration: %w", err)
		}
		slog.Info("migration created", "name", name, "dir", dir)
		return nil
	}

	pool, err := pgxpool.New(ctx, databaseDSN())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	sqlDB := db.OpenSQL(pool)
	defer sqlDB.Close()

	if dir == db.MigrationsDir {
		goose.SetBaseFS(db.Migrations)
	} else {
		goose.SetBaseFS(nil)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	switch command {
	case "up":
		err = goose.UpContext(ctx, sqlDB, dir)
	case "down":
		err = goose.DownContext(ctx, sqlDB, dir)
	case "status":
		err = goose.StatusContext(ctx, sqlDB, dir)
	case "version":
		err = goose.VersionContext(ctx, sqlDB, dir)
	default:
		return fmt.Errorf("unknown command %q, use: up, down, status, version, create", command)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", command, err)
	}
	slog.Info("migrations done", "command", command)
	return nil
}
