package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stocksync/backend/internal/domain/integration"
	"github.com/stocksync/backend/internal/infrastructure/platform"
)

// ImportRequest describes one generic API import
type ImportRequest struct {
	Source         string
	APIURL         string
	APIKey         string
	ItemsPath      string
	FieldMapping   map[string]string
	EnableLabeling bool
}

// ImportService pulls items from an arbitrary JSON API through the generic
// adapter and delegates to the reconciliation engine. Per-item mapping
// failures are folded into the result as failed items so one malformed row
// never aborts the import.
type ImportService struct {
	reconcile *ReconcileService
	logger    *zap.Logger

	// providerTimeout bounds the outbound fetch
	providerTimeout time.Duration
}

// NewImportService creates a generic import service
func NewImportService(reconcile *ReconcileService, providerTimeout time.Duration, logger *zap.Logger) *ImportService {
	return &ImportService{
		reconcile:       reconcile,
		logger:          logger,
		providerTimeout: providerTimeout,
	}
}

// Import fetches, maps, and reconciles one external API snapshot
func (s *ImportService) Import(ctx context.Context, tenantID uuid.UUID, req ImportRequest) (*PlatformSyncResult, error) {
	adapter := platform.NewGenericAdapter(req.APIURL, req.ItemsPath, req.FieldMapping, s.providerTimeout)

	items, itemErrs, err := adapter.FetchCatalogWithErrors(ctx, integration.Credentials{AccessToken: req.APIKey})
	if err != nil {
		s.logger.Warn("generic import fetch failed",
			zap.String("tenant_id", tenantID.String()),
			zap.String("source", req.Source),
			zap.Error(err),
		)
		return nil, err
	}

	source := req.Source
	if source == "" {
		source = integration.PlatformCodeGeneric.SourceName()
	}

	result, err := s.reconcile.Reconcile(ctx, tenantID, source, items, req.EnableLabeling)
	if err != nil {
		return nil, err
	}

	// Mapping failures count as failed items alongside reconciliation ones
	for _, itemErr := range itemErrs {
		result.Failed++
		result.Errors = append(result.Errors, itemErr.Error())
	}

	return &PlatformSyncResult{
		ReconcileResult: *result,
		Imported:        len(items),
	}, nil
}
