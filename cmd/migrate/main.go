package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/AlibekovAA/estate-hub/internal/common/logger"
	"github.com/AlibekovAA/estate-hub/internal/common/migrate"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: migrate [up|down|status|version]\n")
	}
	flag.Parse()

	command := migrate.CommandUp
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	log, err := logger.New(os.Getenv("LOG_DIR"), "migrate", os.Getenv("LOG_LEVEL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatalf("DATABASE_URL is required")
	}

	db, err := migrate.Open(databaseURL)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := migrate.Run(context.Background(), log, db, command); err != nil {
		log.Fatalf("migrate %s failed: %v", command, err)
	}
}
