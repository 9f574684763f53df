// Package webhook implements push-based ingestion of platform deliveries.
// Each provider processor runs the same per-delivery pipeline: verify
// signature, filter scope, resolve tenant, suppress duplicates, then take
// the delete or upsert path.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	syncapp "github.com/stocksync/backend/internal/application/sync"
)

// Delivery is one raw webhook delivery as received off the wire
type Delivery struct {
	// Body is the raw request body; signatures are computed over these exact
	// bytes
	Body []byte
	// Signature is the provider's signature header value
	Signature string
	// Scope is the event scope/topic header value
	Scope string
	// DeliveryID uniquely identifies this delivery for duplicate suppression
	DeliveryID string
	// ShopDomain is the store-domain header, when the provider sends one
	ShopDomain string
}

// Status is the terminal state a delivery reached
type Status string

const (
	// StatusProcessed means the upsert path ran
	StatusProcessed Status = "processed"
	// StatusDeleted means the delete path ran
	StatusDeleted Status = "deleted"
	// StatusIgnored means the scope was outside the allow-list
	StatusIgnored Status = "ignored"
	// StatusDuplicate means the delivery id was already seen
	StatusDuplicate Status = "duplicate"
)

// Outcome is the acknowledgement produced for a delivery. Every reachable
// terminal state produces one; only rejected signatures and unresolvable
// tenants error instead.
type Outcome struct {
	Status  Status                   `json:"status"`
	Message string                   `json:"message,omitempty"`
	Removed int64                    `json:"removed,omitempty"`
	Result  *syncapp.ReconcileResult `json:"result,omitempty"`
	Summary string                   `json:"summary,omitempty"`
}

// verifySignature computes HMAC-SHA256 over body with secret and compares it
// in constant time against the base64-encoded signature header.
func verifySignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
