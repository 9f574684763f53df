package integration

import "context"

// LabelStatus is the outcome reported by the labeling collaborator
type LabelStatus string

const (
	// LabelStatusOK means a category/label pair was produced
	LabelStatusOK LabelStatus = "ok"
	// LabelStatusInsufficientData means the name alone was not enough
	LabelStatusInsufficientData LabelStatus = "insufficient_data"
)

// LabelResult is the enrichment returned for an item name
type LabelResult struct {
	Status   LabelStatus
	Category string
	Label    string
}

// Labeler is the external labeling collaborator, consumed only through this
// interface. Enrichment is best-effort: a failure or insufficient-data
// response never blocks a sync.
type Labeler interface {
	Label(ctx context.Context, name string) (*LabelResult, error)
}
