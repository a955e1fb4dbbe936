package domain

// Product is a catalog entry as returned by the catalog search provider.
// The engine never mutates products; it only ranks, filters and caches
// references to them within a session.
type Product struct {
	SKU      string            `json:"sku"`
	Name     string            `json:"name"`
	Price    float64           `json:"price"`
	Stock    int               `json:"stock"`
	Category string            `json:"category,omitempty"`
	Color    string            `json:"color,omitempty"`
	Material string            `json:"material,omitempty"`
	ImageURL string            `json:"image_url,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
}
