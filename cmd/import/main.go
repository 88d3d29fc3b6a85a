package main

import (
	"context"
	"fmt"
	"log"
	"net/http/cookiejar"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ikkim/storefront/config"
	"github.com/ikkim/storefront/internal/importer"
	"github.com/ikkim/storefront/pkg/logger"
	"github.com/ikkim/storefront/pkg/storefrontapi"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run ./cmd/import <xlsx_file_path>  (ADMIN_USERNAME / ADMIN_PASSWORD from env)")
	}
	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.Initialize(logger.Config{
		Level:       "info",
		Format:      "console",
		EnableColor: true,
	})

	username, password := os.Getenv("ADMIN_USERNAME"), os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		log.Fatal("ADMIN_USERNAME and ADMIN_PASSWORD must be set")
	}

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX:", err)
	}
	defer f.Close()

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	rows, skipped, err := importer.ReadProducts(f)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}
	for _, s := range skipped {
		fmt.Printf("  skipped row %d: %s\n", s.Line, s.Reason)
	}
	fmt.Printf("Total products to import: %d (skipped %d)\n", len(rows), len(skipped))
	if len(rows) == 0 {
		return
	}

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	base, err := storefrontapi.NewClient(storefrontapi.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	})
	if err != nil {
		log.Fatal("Failed to create API client:", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		log.Fatal("Failed to create cookie jar:", err)
	}
	api := base.WithJar(jar)

	if err := api.Login(ctx, username, password); err != nil {
		log.Fatal("Login failed: ", storefrontapi.Message(err))
	}

	result := importer.Import(ctx, api, rows, filepath.Dir(filePath))
	for _, failed := range result.Failed {
		fmt.Printf("  failed row %d: %s\n", failed.Line, failed.Reason)
	}

	fmt.Println("Import completed.")
	fmt.Printf("Total products imported: %d, failed: %d\n", result.Created, len(result.Failed))
	if len(result.Failed) > 0 {
		os.Exit(1)
	}
}
