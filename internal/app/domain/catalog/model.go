package catalog

import "time"

// Product is a catalog entry. The ID is assigned by the store on creation and
// stays stable for the lifetime of the record. SalesCount only ever grows
// through checkout; it is never decremented by the application.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Rate        float64   `json:"rate"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"image_url,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	SalesCount  int64     `json:"sales_count"`
}
