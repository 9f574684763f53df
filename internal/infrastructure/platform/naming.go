package platform

import (
	"fmt"
	"strings"
)

// shopifyDefaultVariantTitle is what Shopify reports for a product with no
// real variants
const shopifyDefaultVariantTitle = "Default Title"

// squareDefaultVariationName is what Square reports for a plain item
const squareDefaultVariationName = "Regular"

// ShopifyDisplayName renders the ledger name for a product variant:
// "{product} ({option1}: {value1}, ...)". A single default variant collapses
// to the bare product title.
func ShopifyDisplayName(productTitle string, variant ShopifyVariant, options []ShopifyOption) string {
	title := strings.TrimSpace(productTitle)
	if variant.Title == "" || variant.Title == shopifyDefaultVariantTitle {
		return title
	}

	values := variant.OptionValues()
	if len(values) == 0 {
		return fmt.Sprintf("%s (%s)", title, variant.Title)
	}

	pairs := make([]string, 0, len(values))
	for i, value := range values {
		if i < len(options) && options[i].Name != "" {
			pairs = append(pairs, fmt.Sprintf("%s: %s", options[i].Name, value))
		} else {
			pairs = append(pairs, value)
		}
	}
	return fmt.Sprintf("%s (%s)", title, strings.Join(pairs, ", "))
}

// SquareDisplayName renders the ledger name for an item variation:
// "{item} ({variation})", collapsing for the default variation.
func SquareDisplayName(itemName, variationName string) string {
	name := strings.TrimSpace(itemName)
	variation := strings.TrimSpace(variationName)
	if variation == "" || variation == squareDefaultVariationName {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, variation)
}
