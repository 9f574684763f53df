package platform

// SquareCatalogListResponse is the catalog list envelope
type SquareCatalogListResponse struct {
	Objects []SquareCatalogObject `json:"objects"`
	Cursor  string                `json:"cursor"`
	Errors  []SquareError         `json:"errors"`
}

// SquareCatalogObjectResponse is the single-object envelope
type SquareCatalogObjectResponse struct {
	Object *SquareCatalogObject `json:"object"`
	Errors []SquareError        `json:"errors"`
}

// SquareCatalogObject is one catalog object (ITEM or ITEM_VARIATION)
type SquareCatalogObject struct {
	Type          string               `json:"type"`
	ID            string               `json:"id"`
	ItemData      *SquareItemData      `json:"item_data,omitempty"`
	VariationData *SquareVariationData `json:"item_variation_data,omitempty"`
}

// SquareItemData is the payload of an ITEM object
type SquareItemData struct {
	Name       string                `json:"name"`
	Variations []SquareCatalogObject `json:"variations"`
}

// SquareVariationData is the payload of an ITEM_VARIATION object
type SquareVariationData struct {
	ItemID string `json:"item_id"`
	Name   string `json:"name"`
	SKU    string `json:"sku"`
}

// SquareInventoryCountsRequest is the batch inventory counts request
type SquareInventoryCountsRequest struct {
	CatalogObjectIDs []string `json:"catalog_object_ids"`
	LocationIDs      []string `json:"location_ids,omitempty"`
	Cursor           string   `json:"cursor,omitempty"`
}

// SquareInventoryCountsResponse is the batch inventory counts envelope
type SquareInventoryCountsResponse struct {
	Counts []SquareInventoryCount `json:"counts"`
	Cursor string                 `json:"cursor"`
	Errors []SquareError          `json:"errors"`
}

// SquareInventoryCount is one stock count. Quantity arrives as a decimal
// string.
type SquareInventoryCount struct {
	CatalogObjectID string `json:"catalog_object_id"`
	State           string `json:"state"`
	LocationID      string `json:"location_id"`
	Quantity        string `json:"quantity"`
}

// SquareError is one entry of the errors array
type SquareError struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Detail   string `json:"detail"`
}
