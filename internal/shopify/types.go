package shopify

import (
	"encoding/json"
	"strings"
)

// Product is the admin REST shape of a product. The API returns tags as a
// single comma-separated string.
type Product struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Handle      string    `json:"handle"`
	ProductType string    `json:"product_type"`
	Tags        string    `json:"tags"`
	Images      []Image   `json:"images"`
	Variants    []Variant `json:"variants"`
}

// TagList splits the comma-separated tag string into trimmed tags.
func (p Product) TagList() []string {
	if strings.TrimSpace(p.Tags) == "" {
		return nil
	}
	parts := strings.Split(p.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, t := range parts {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

type Image struct {
	ID  int64  `json:"id"`
	Src string `json:"src"`
}

type Variant struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	SKU   string `json:"sku"`
	Price string `json:"price"`
	// InventoryQuantity is absent (nil) for variants not tracked by Shopify.
	InventoryQuantity *int `json:"inventory_quantity"`
}

// Metafield is a vendor-defined key/value attribute attached to a product or
// variant. Value is kept raw here; decoding the heterogeneous encodings is
// the catalog package's job.
type Metafield struct {
	ID            int64           `json:"id"`
	Namespace     string          `json:"namespace"`
	Key           string          `json:"key"`
	Value         json.RawMessage `json:"value"`
	Type          string          `json:"type"`
	OwnerID       int64           `json:"owner_id"`
	OwnerResource string          `json:"owner_resource"`
}
