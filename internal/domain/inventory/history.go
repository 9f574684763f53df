package inventory

import (
	"github.com/google/uuid"

	"github.com/stocksync/backend/internal/domain/shared"
)

// ChangeType identifies what kind of operation produced a history entry
type ChangeType string

const (
	// ChangeTypeSync is a pull-based catalog reconciliation
	ChangeTypeSync ChangeType = "sync"
	// ChangeTypeWebhook is a push-based delivery from a platform
	ChangeTypeWebhook ChangeType = "webhook"
	// ChangeTypeManual is an operator-initiated adjustment
	ChangeTypeManual ChangeType = "manual"
)

// IsValid returns true if the change type is valid
func (t ChangeType) IsValid() bool {
	switch t {
	case ChangeTypeSync, ChangeTypeWebhook, ChangeTypeManual:
		return true
	default:
		return false
	}
}

// String returns the string representation of ChangeType
func (t ChangeType) String() string {
	return string(t)
}

// HistoryEntry is an append-only audit record of a quantity change.
// Entries are never updated or deleted after creation. One is written only
// when the computed delta is non-zero, and suppressed when an equivalent
// entry (same tenant, item, resulting quantity, source) was written within
// the dedup window. The window bounds duplicate audit rows, not duplicate
// quantity mutations.
type HistoryEntry struct {
	shared.TenantEntity
	ItemID           uuid.UUID `gorm:"type:uuid;not null;index:idx_history_entries_tenant_item,priority:2"`
	ItemName         string    `gorm:"not null"`
	SKU              string
	PreviousQuantity int64      `gorm:"not null"`
	NewQuantity      int64      `gorm:"not null"`
	QuantityChange   int64      `gorm:"not null"`
	ChangeType       ChangeType `gorm:"not null"`
	Source           string     `gorm:"not null"`
}

// TableName returns the table name for GORM
func (HistoryEntry) TableName() string {
	return "history_entries"
}

// NewHistoryEntry records a quantity transition for a ledger row
func NewHistoryEntry(record *InventoryRecord, previousQuantity int64, changeType ChangeType, source string) *HistoryEntry {
	return &HistoryEntry{
		TenantEntity:     shared.NewTenantEntity(record.TenantID),
		ItemID:           record.ID,
		ItemName:         record.Name,
		SKU:              record.SKU,
		PreviousQuantity: previousQuantity,
		NewQuantity:      record.Quantity,
		QuantityChange:   record.Quantity - previousQuantity,
		ChangeType:       changeType,
		Source:           source,
	}
}
