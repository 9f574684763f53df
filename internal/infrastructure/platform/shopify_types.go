package platform

// ShopifyProductsResponse is the Admin API product list envelope
type ShopifyProductsResponse struct {
	Products []ShopifyProduct `json:"products"`
}

// ShopifyProductResponse is the single-product envelope
type ShopifyProductResponse struct {
	Product *ShopifyProduct `json:"product"`
}

// ShopifyProduct is a product with its variants and option definitions
type ShopifyProduct struct {
	ID       int64            `json:"id"`
	Title    string           `json:"title"`
	Status   string           `json:"status"`
	Variants []ShopifyVariant `json:"variants"`
	Options  []ShopifyOption  `json:"options"`
}

// ShopifyVariant is one sellable variant of a product
type ShopifyVariant struct {
	ID                int64  `json:"id"`
	ProductID         int64  `json:"product_id"`
	Title             string `json:"title"`
	SKU               string `json:"sku"`
	InventoryQuantity int64  `json:"inventory_quantity"`
	InventoryItemID   int64  `json:"inventory_item_id"`
	Option1           string `json:"option1"`
	Option2           string `json:"option2"`
	Option3           string `json:"option3"`
}

// OptionValues returns the variant's option values in declaration order
func (v *ShopifyVariant) OptionValues() []string {
	values := make([]string, 0, 3)
	for _, val := range []string{v.Option1, v.Option2, v.Option3} {
		if val != "" {
			values = append(values, val)
		}
	}
	return values
}

// ShopifyOption is a product-level option definition (e.g. Size, Color)
type ShopifyOption struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// ShopifyErrorResponse is the Admin API error envelope
type ShopifyErrorResponse struct {
	Errors any `json:"errors"`
}

// ShopifyWebhookSubscription is one webhook registration
type ShopifyWebhookSubscription struct {
	ID      int64  `json:"id,omitempty"`
	Topic   string `json:"topic"`
	Address string `json:"address"`
	Format  string `json:"format,omitempty"`
}

// ShopifyWebhookResponse is the single-subscription envelope
type ShopifyWebhookResponse struct {
	Webhook *ShopifyWebhookSubscription `json:"webhook"`
}

// ShopifyWebhooksResponse is the subscription list envelope
type ShopifyWebhooksResponse struct {
	Webhooks []ShopifyWebhookSubscription `json:"webhooks"`
}
