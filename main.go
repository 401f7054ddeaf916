package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"guildkeeper/cmd"
	"guildkeeper/config"
	"guildkeeper/database"
)

func main() {
	// The migrate subcommands read the environment directly, so .env has to
	// be in place before dispatching
	if err := config.LoadEnvFile(); err != nil {
		log.Printf("Ignoring unreadable .env file: %v", err)
	}

	// Check for migration subcommands
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := handleMigrationCommand(); err != nil {
			log.Fatal("Migration error:", err)
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	if err := cmd.Run(ctx); err != nil {
		log.Fatal("Application error:", err)
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: guildkeeper migrate [up|down|status|import-files] [args...]")
	}

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	case "import-files":
		n, err := cmd.ImportFiles(context.Background())
		if err != nil {
			return err
		}
		log.Printf("Imported %d document(s)", n)
		return nil
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}
