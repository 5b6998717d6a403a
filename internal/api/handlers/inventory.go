package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/officercg/rockcrest-inventory-api/internal/catalog"
	"github.com/officercg/rockcrest-inventory-api/internal/config"
	"github.com/officercg/rockcrest-inventory-api/internal/shopify"
	apperrors "github.com/officercg/rockcrest-inventory-api/pkg/errors"
)

// HandleGetInventory handles GET /inventory: fetches the full product tree
// from the admin API, flattens and filters it, and serves the embed feed.
func HandleGetInventory(cfg *config.Config, client *shopify.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Fail fast before any network call when credentials are absent.
		if cfg.Shopify.ShopDomain == "" || cfg.Shopify.AccessToken == "" {
			err := &apperrors.MisconfiguredError{Field: "SHOPIFY_SHOP_DOMAIN / SHOPIFY_ACCESS_TOKEN"}
			logger.Error("Inventory request refused", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.Fetch.RequestTimeout)
		defer cancel()

		products, err := client.ListProducts(ctx)
		if err != nil {
			respondFetchError(c, logger, "list products", err)
			return
		}

		productIDs := make([]int64, len(products))
		for i, p := range products {
			productIDs[i] = p.ID
		}
		metafields, err := client.FetchMetafields(ctx, productIDs)
		if err != nil {
			respondFetchError(c, logger, "fetch metafields", err)
			return
		}

		filter := catalog.Filter{
			ShowOutOfStock:   boolParam(c, "showOutOfStock"),
			ProductType:      strings.TrimSpace(c.Query("productType")),
			Tag:              strings.TrimSpace(c.Query("tag")),
			ExcludeSubstring: cfg.Fetch.ExcludeTagSubstring,
			Limit:            intParam(c, "limit"),
			IncludeMeta:      boolParam(c, "debugMeta"),
		}
		if override := strings.TrimSpace(c.Query("exclude")); override != "" {
			filter.ExcludeSubstring = override
		}

		mapper := catalog.NewMapper(cfg.Fields, cfg.Storefront.BaseURL)
		rows := mapper.Rows(products, catalog.BuildMetafieldIndex(metafields), filter)

		var items interface{} = rows
		if boolParam(c, "minimal") {
			items = catalog.Minimize(rows)
		}

		c.Header("Cache-Control", fmt.Sprintf("public, s-maxage=%d, stale-while-revalidate=%d",
			cfg.Cache.SMaxAgeSeconds, cfg.Cache.StaleWhileRevalidateSeconds))
		c.JSON(http.StatusOK, gin.H{
			"ok":          true,
			"count":       len(rows),
			"generatedAt": time.Now().UTC().Format(time.RFC3339),
			"items":       items,
		})
	}
}

// respondFetchError logs the full upstream failure and surfaces a short
// message: status code for upstream errors, nothing structured beyond that.
func respondFetchError(c *gin.Context, logger *zap.Logger, op string, err error) {
	logger.Error("Inventory fetch failed", zap.String("op", op), zap.Error(err))

	msg := "failed to fetch inventory"
	var upstream *apperrors.UpstreamError
	var rateLimited *apperrors.RateLimitError
	switch {
	case errors.As(err, &upstream):
		msg = fmt.Sprintf("upstream API error (status %d)", upstream.Status)
	case errors.As(err, &rateLimited):
		msg = "upstream rate limit exceeded"
	case errors.Is(err, context.DeadlineExceeded):
		msg = "upstream fetch timed out"
	}
	c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": msg})
}

func boolParam(c *gin.Context, name string) bool {
	switch strings.ToLower(c.Query(name)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func intParam(c *gin.Context, name string) int {
	if v := c.Query(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 0
}
