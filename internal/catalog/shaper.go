package catalog

// MinimalRow is the reduced projection served when the embed asks for
// minimal=1. It carries only what the site builder's grid renders.
type MinimalRow struct {
	Title    string `json:"title"`
	Cultivar string `json:"cultivar,omitempty"`
	SKU      string `json:"sku"`
	Price    string `json:"price"`
	Qty      int    `json:"qty"`
	Height   string `json:"height,omitempty"`
	Caliper  string `json:"caliper,omitempty"`
	URL      string `json:"url"`
}

// Minimize is a pure projection: no filtering, one minimal row per full row.
func Minimize(rows []Row) []MinimalRow {
	out := make([]MinimalRow, len(rows))
	for i, r := range rows {
		out[i] = MinimalRow{
			Title:    r.Title,
			Cultivar: r.Cultivar,
			SKU:      r.SKU,
			Price:    r.Price,
			Qty:      r.Qty,
			Height:   r.Height,
			Caliper:  r.Caliper,
			URL:      r.URL,
		}
	}
	return out
}
