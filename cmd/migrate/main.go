package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"wiki-quiz/internal/config"
	"wiki-quiz/internal/database"
	"wiki-quiz/internal/logger"

	"go.uber.org/zap"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: migrate [up | down [-all] | version]\n")
	flag.PrintDefaults()
}

func main() {
	all := flag.Bool("all", false, "with down, revert every migration instead of one step")
	flag.Usage = usage
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	l := logger.Get()
	defer logger.Sync()

	ctx := context.Background()
	command := flag.Arg(0)
	if command == "" {
		command = "up"
	}

	switch command {
	case "up":
		err = database.Run(ctx, cfg.DB, database.Up)
	case "down":
		dir := database.Down
		if *all {
			dir = database.DownAll
		}
		err = database.Run(ctx, cfg.DB, dir)
	case "version":
		version, ok, verr := database.Version(ctx, cfg.DB)
		if verr != nil {
			l.Fatal("Failed to read migration version", zap.Error(verr))
		}
		if !ok {
			fmt.Println("no migrations applied")
			return
		}
		fmt.Println(version)
		return
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		l.Fatal("Migration failed", zap.String("command", command), zap.String("driver", cfg.DB.Driver), zap.Error(err))
	}
	l.Info("Migration finished", zap.String("command", command), zap.String("driver", cfg.DB.Driver))
}
