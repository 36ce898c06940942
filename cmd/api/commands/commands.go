package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/gptdir/core/internal/domain/entities"
	"github.com/gptdir/core/internal/infrastructure/config"
	"github.com/gptdir/core/internal/infrastructure/jsonstore"
	"github.com/gptdir/core/internal/infrastructure/logger"
	"github.com/gptdir/core/internal/infrastructure/server"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the GPTDir API server",
		Long:  "Start the GPTDir API server with all configured routes and middleware",
		Run: func(cmd *cobra.Command, args []string) {
			runServer()
		},
	}
}

// NewPinCommand creates the admin PIN management command
func NewPinCommand() *cobra.Command {
	pinCmd := &cobra.Command{
		Use:   "pin",
		Short: "Admin PIN commands",
		Long:  "Generate the bcrypt hash the server expects in ADMIN_PIN_HASH",
	}

	hashCmd := &cobra.Command{
		Use:   "hash",
		Short: "Hash an admin PIN",
		Run: func(cmd *cobra.Command, args []string) {
			pin, _ := cmd.Flags().GetString("pin")
			if pin == "" {
				log.Fatal("PIN is required")
			}
			if len(pin) < 4 {
				log.Fatal("PIN must be at least 4 characters")
			}

			hashPin(pin)
		},
	}

	hashCmd.Flags().String("pin", "", "Admin PIN to hash (required)")

	pinCmd.AddCommand(hashCmd)
	return pinCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print GPTDir version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("GPTDir Core v1.0.0")
			fmt.Println("Build Date: 2024-01-01")
			fmt.Println("Git Commit: development")
		},
	}
}

func runServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	storeOpts := []jsonstore.Option{
		jsonstore.WithLogger(appLogger),
		jsonstore.WithQueueSize(cfg.Store.QueueSize),
	}

	catalogStore, err := jsonstore.Open(cfg.Store.CatalogPath(), entities.NewDocument, storeOpts...)
	if err != nil {
		appLogger.Fatalw("Failed to open catalog store", "error", err)
	}

	leadsStore, err := jsonstore.Open(cfg.Store.LeadsPath(), entities.NewLeads, storeOpts...)
	if err != nil {
		catalogStore.Close()
		appLogger.Fatalw("Failed to open leads store", "error", err)
	}

	srv, err := server.New(cfg, catalogStore, leadsStore, appLogger)
	if err != nil {
		appLogger.Fatalw("Failed to initialize server", "error", err)
	}

	appLogger.Infow("Starting GPTDir API server",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
		"catalog", catalogStore.Path(),
		"leads", leadsStore.Path(),
	)

	go func() {
		if err := srv.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
			appLogger.Infow("Server stopped", "reason", err)
		}
	}()

	// Quit on SIGINT/SIGTERM, then drain in-flight requests and flush
	// the stores before exiting.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Infow("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Errorw("Server shutdown failed", "error", err)
	}

	if err := catalogStore.Close(); err != nil {
		appLogger.Errorw("Catalog store close failed", "error", err)
	}
	if err := leadsStore.Close(); err != nil {
		appLogger.Errorw("Leads store close failed", "error", err)
	}

	appLogger.Infow("Server exited")
}

func hashPin(pin string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash PIN: %v", err)
	}

	fmt.Printf("PIN hash generated successfully:\n")
	fmt.Printf("  ADMIN_PIN_HASH=%s\n", string(hash))
}
