package catalog

import (
	"fmt"
	"strings"

	"github.com/officercg/rockcrest-inventory-api/internal/config"
	"github.com/officercg/rockcrest-inventory-api/internal/shopify"
)

// Default display units for the two measurement fields. A metafield that
// carries its own unit always wins.
const (
	defaultHeightUnit  = "ft"
	defaultCaliperUnit = "in"
)

// sentinel variant title Shopify assigns to single-variant products
const defaultVariantTitle = "Default Title"

// Row is one flattened (product, variant) record as served to the embed.
type Row struct {
	Title       string            `json:"title"`
	Cultivar    string            `json:"cultivar,omitempty"`
	Height      string            `json:"height,omitempty"`
	Caliper     string            `json:"caliper,omitempty"`
	Sun         string            `json:"sun,omitempty"`
	GrowthRate  string            `json:"growthRate,omitempty"`
	SKU         string            `json:"sku"`
	Price       string            `json:"price"`
	Qty         int               `json:"qty"`
	URL         string            `json:"url"`
	Image       string            `json:"image,omitempty"`
	Tags        []string          `json:"tags"`
	ProductType string            `json:"productType,omitempty"`
	Meta        map[string]string `json:"meta,omitempty"`
}

// Filter selects which rows are emitted. Exclusion and stock filtering
// happen here, before any shaping, so excluded rows never appear in any
// output form.
type Filter struct {
	ShowOutOfStock   bool
	ProductType      string
	Tag              string
	ExcludeSubstring string
	Limit            int
	IncludeMeta      bool
}

type fieldKeys struct {
	commonName  FieldKey
	height      FieldKey
	caliper     FieldKey
	sun         FieldKey
	growthRate  FieldKey
	excludeFlag FieldKey
}

// Mapper flattens the product tree into rows.
type Mapper struct {
	fields         fieldKeys
	storefrontBase string
}

func NewMapper(fields config.FieldConfig, storefrontBase string) *Mapper {
	return &Mapper{
		fields: fieldKeys{
			commonName:  ParseFieldKey(fields.CommonName),
			height:      ParseFieldKey(fields.Height),
			caliper:     ParseFieldKey(fields.Caliper),
			sun:         ParseFieldKey(fields.Sun),
			growthRate:  ParseFieldKey(fields.GrowthRate),
			excludeFlag: ParseFieldKey(fields.ExcludeFlag),
		},
		storefrontBase: strings.TrimRight(storefrontBase, "/"),
	}
}

// Rows produces one row per variant of every non-excluded product. Every row
// traces to exactly one (product, variant) pair.
func (m *Mapper) Rows(products []shopify.Product, idx *MetafieldIndex, f Filter) []Row {
	rows := make([]Row, 0, len(products))
	for _, p := range products {
		if m.Excluded(p, idx, f.ExcludeSubstring) {
			continue
		}
		if f.ProductType != "" && !strings.EqualFold(p.ProductType, f.ProductType) {
			continue
		}
		if f.Tag != "" && !hasTag(p.TagList(), f.Tag) {
			continue
		}

		for _, v := range p.Variants {
			qty := 0
			if v.InventoryQuantity != nil {
				qty = *v.InventoryQuantity
			}
			if !f.ShowOutOfStock && qty <= 0 {
				continue
			}
			rows = append(rows, m.row(p, v, qty, idx, f.IncludeMeta))
			if f.Limit > 0 && len(rows) >= f.Limit {
				return rows
			}
		}
	}
	return rows
}

// Excluded reports whether a whole product is held back from the embed: its
// exclusion metafield is true, or any tag case-insensitively contains the
// configured substring. The two checks are independent.
func (m *Mapper) Excluded(p shopify.Product, idx *MetafieldIndex, tagSubstring string) bool {
	if v := idx.Lookup("product", p.ID, m.fields.excludeFlag); v.Kind == Boolean && v.Bool {
		return true
	}
	if tagSubstring != "" {
		needle := strings.ToLower(tagSubstring)
		for _, t := range p.TagList() {
			if strings.Contains(strings.ToLower(t), needle) {
				return true
			}
		}
	}
	return false
}

func (m *Mapper) row(p shopify.Product, v shopify.Variant, qty int, idx *MetafieldIndex, includeMeta bool) Row {
	row := Row{
		Title:       p.Title,
		Cultivar:    m.field(p, v, idx, m.fields.commonName, ""),
		Height:      m.field(p, v, idx, m.fields.height, defaultHeightUnit),
		Caliper:     m.field(p, v, idx, m.fields.caliper, defaultCaliperUnit),
		Sun:         m.field(p, v, idx, m.fields.sun, ""),
		GrowthRate:  m.field(p, v, idx, m.fields.growthRate, ""),
		SKU:         skuFor(v),
		Price:       v.Price,
		Qty:         qty,
		URL:         m.productURL(p, v),
		Tags:        p.TagList(),
		ProductType: p.ProductType,
	}
	if len(p.Images) > 0 {
		row.Image = p.Images[0].Src
	}
	if includeMeta {
		row.Meta = map[string]string{
			"productId": fmt.Sprintf("%d", p.ID),
			"variantId": fmt.Sprintf("%d", v.ID),
		}
	}
	return row
}

// field resolves a metafield for a row: the variant's own value wins, the
// product's value is the fallback.
func (m *Mapper) field(p shopify.Product, v shopify.Variant, idx *MetafieldIndex, key FieldKey, defaultUnit string) string {
	if val := idx.Lookup("variant", v.ID, key); val.Kind != Absent {
		return val.Display(defaultUnit)
	}
	return idx.Lookup("product", p.ID, key).Display(defaultUnit)
}

// skuFor falls back to the variant's display title when upstream has no SKU.
// The sentinel single-variant title is not a useful label, so it stays blank.
func skuFor(v shopify.Variant) string {
	if sku := strings.TrimSpace(v.SKU); sku != "" {
		return sku
	}
	if v.Title != "" && v.Title != defaultVariantTitle {
		return v.Title
	}
	return ""
}

func (m *Mapper) productURL(p shopify.Product, v shopify.Variant) string {
	return fmt.Sprintf("%s/products/%s?variant=%d", m.storefrontBase, p.Handle, v.ID)
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, want) {
			return true
		}
	}
	return false
}
