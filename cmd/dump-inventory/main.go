package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/officercg/rockcrest-inventory-api/internal/catalog"
	"github.com/officercg/rockcrest-inventory-api/internal/config"
	"github.com/officercg/rockcrest-inventory-api/internal/shopify"
)

// Prints the flattened inventory rows as JSON, the same shape /inventory
// serves. Handy for checking metafield normalization against the live shop.
func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../../.env")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	client := shopify.NewClient(cfg.Shopify, cfg.Fetch, logger)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Fetch.RequestTimeout)
	defer cancel()

	fmt.Fprintln(os.Stderr, "Fetching all products...")
	products, err := client.ListProducts(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list products: %v\n", err)
		os.Exit(1)
	}

	ids := make([]int64, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	metafields, err := client.FetchMetafields(ctx, ids)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to fetch metafields: %v\n", err)
		os.Exit(1)
	}

	filter := catalog.Filter{
		ShowOutOfStock:   true,
		ExcludeSubstring: cfg.Fetch.ExcludeTagSubstring,
	}
	mapper := catalog.NewMapper(cfg.Fields, cfg.Storefront.BaseURL)
	rows := mapper.Rows(products, catalog.BuildMetafieldIndex(metafields), filter)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode rows: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Total: %d rows from %d products\n", len(rows), len(products))
}
