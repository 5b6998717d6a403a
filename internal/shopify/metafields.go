package shopify

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// FetchMetafields loads the metafields of every given product, keyed by
// product id. Products are fetched in small concurrent batches with a fixed
// delay between batches so the admin API's bucket is not drained; completion
// order within a batch does not matter since results merge into the map.
func (c *Client) FetchMetafields(ctx context.Context, productIDs []int64) (map[int64][]Metafield, error) {
	result := make(map[int64][]Metafield, len(productIDs))
	var (
		mu       sync.Mutex
		firstErr error
	)

	for start := 0; start < len(productIDs); start += c.metafieldConcurrency {
		end := start + c.metafieldConcurrency
		if end > len(productIDs) {
			end = len(productIDs)
		}

		var wg sync.WaitGroup
		for _, id := range productIDs[start:end] {
			wg.Add(1)
			go func(productID int64) {
				defer wg.Done()
				metafields, err := c.productMetafields(ctx, productID)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					if firstErr == nil {
						firstErr = fmt.Errorf("metafields for product %d: %w", productID, err)
					}
					return
				}
				result[productID] = metafields
			}(id)
		}
		wg.Wait()

		if firstErr != nil {
			return nil, firstErr
		}
		if end < len(productIDs) && c.batchDelay > 0 {
			if err := sleepCtx(ctx, c.batchDelay); err != nil {
				return nil, err
			}
		}
	}

	c.logger.Debug("Fetched metafields", zap.Int("products", len(productIDs)))
	return result, nil
}

func (c *Client) productMetafields(ctx context.Context, productID int64) ([]Metafield, error) {
	var body struct {
		Metafields []Metafield `json:"metafields"`
	}
	url := c.apiURL(fmt.Sprintf("products/%d/metafields.json", productID))
	if _, err := c.getJSON(ctx, url, &body); err != nil {
		return nil, err
	}
	return body.Metafields, nil
}
