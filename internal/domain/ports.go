package domain

import (
	"context"
	"time"
)

// CruiseRepository is the read-only catalog store.
type CruiseRepository interface {
	// Search
	SearchSailings(ctx context.Context, q SailingSearch, pg PageRequest) ([]SailingSummary, int64, error)
	LatestSync(ctx context.Context) (*time.Time, error)

	// Facets. Each list honours only the line/active narrowing.
	FacetLines(ctx context.Context, lineID string) ([]FacetOption, error)
	FacetShips(ctx context.Context, lineID string) ([]FacetOption, error)
	FacetRegions(ctx context.Context, lineID string) ([]FacetOption, error)
	FacetEmbarkPorts(ctx context.Context, lineID string) ([]FacetOption, error)
	FacetDisembarkPorts(ctx context.Context, lineID string) ([]FacetOption, error)
	FacetPortsOfCall(ctx context.Context, lineID string) ([]PortFacetOption, error)
	CatalogRanges(ctx context.Context) (Ranges, error)

	// Detail
	GetSailing(ctx context.Context, id string) (SailingRecord, error)
	GetPort(ctx context.Context, id string) (PortRecord, error)
	ListSailingRegions(ctx context.Context, sailingID string) ([]RegionView, error)
	ListStops(ctx context.Context, sailingID string) ([]StopRecord, error)
	ListCabinPrices(ctx context.Context, sailingID string) ([]CabinPrice, error)

	// Ancillary
	ShipExists(ctx context.Context, shipID string) (bool, error)
	ListShipImages(ctx context.Context, shipID string, pg PageRequest) ([]ShipImage, int64, error)
	ListShipDecks(ctx context.Context, shipID string) ([]DeckRecord, error)
	SailingExists(ctx context.Context, id string) (bool, error)
	ListAlternates(ctx context.Context, sailingID string) ([]AlternateSailing, error)
	CabinTypeExists(ctx context.Context, id string) (bool, error)
	ListCabinImages(ctx context.Context, cabinTypeID string) ([]CabinImage, error)

	// Warm-up
	ListLineIDs(ctx context.Context) ([]string, error)
	ListUpcomingSailingIDs(ctx context.Context, from time.Time, limit int) ([]string, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// SyncStatusProvider exposes the import orchestrator's process-wide flag.
// The catalog only reads it.
type SyncStatusProvider interface {
	IsSyncInProgress(ctx context.Context) bool
}
