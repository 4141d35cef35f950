package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"cruise_catalog/internal/domain"
)

// facetFillTimeout bounds a shared facet fill once it is detached from its caller.
const facetFillTimeout = 30 * time.Second

type QueryService struct {
	repo     domain.CruiseRepository
	cache    domain.Cache
	sync     domain.SyncStatusProvider
	cacheTTL time.Duration
	now      func() time.Time
	fills    singleflight.Group
}

type Option func(*QueryService)

// WithClock overrides the clock used for price staleness.
func WithClock(now func() time.Time) Option {
	return func(s *QueryService) { s.now = now }
}

func NewQueryService(r domain.CruiseRepository, c domain.Cache, sp domain.SyncStatusProvider, ttl time.Duration, opts ...Option) *QueryService {
	s := &QueryService{repo: r, cache: c, sync: sp, cacheTTL: ttl, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *QueryService) ttlSeconds() int { return int(s.cacheTTL.Seconds()) }

/********** search **********/

func (s *QueryService) Search(ctx context.Context, q domain.SailingSearch) (domain.SailingsPage, error) {
	pg := domain.NewPageRequest(q.Page, q.PageSize, domain.DefaultPageSize, domain.MaxSailingPageSize)
	q.Filter.CabinCategory = domain.ParseCabinCategory(string(q.Filter.CabinCategory))

	items, total, err := s.repo.SearchSailings(ctx, q, pg)
	if err != nil {
		return domain.SailingsPage{}, fmt.Errorf("search sailings: %w", err)
	}
	if items == nil {
		items = []domain.SailingSummary{}
	}
	now := s.now()
	for i := range items {
		items[i].PricesUpdating = domain.IsStale(items[i].LastSyncedAt, now)
	}

	last, err := s.repo.LatestSync(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("latest sync lookup failed")
		last = nil
	}

	return domain.SailingsPage{
		Items:      items,
		Pagination: pg.Paginate(total),
		Sync: domain.SyncInfo{
			SyncInProgress: s.sync.IsSyncInProgress(ctx),
			LastSyncedAt:   last,
		},
	}, nil
}

/********** facets **********/

func facetsKey(lineID string) string {
	if lineID == "" {
		return "facets:all"
	}
	return "facets:" + lineID
}

// Facets only look at the filter's cruise line; see the repository's facet scope.
func (s *QueryService) Facets(ctx context.Context, f domain.SailingFilter) (domain.Facets, error) {
	lineID := strings.TrimSpace(f.CruiseLineID)
	key := facetsKey(lineID)

	var out domain.Facets
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	// The fill is shared by every caller on this key, so it must outlive the
	// caller that happened to start it.
	ch := s.fills.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), facetFillTimeout)
		defer cancel()

		fc, err := s.computeFacets(fctx, lineID)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(fctx, key, fc, s.ttlSeconds()); err != nil {
			log.Debug().Err(err).Str("key", key).Msg("cache set failed")
		}
		return fc, nil
	})

	select {
	case <-ctx.Done():
		return domain.Facets{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.Facets{}, res.Err
		}
		return res.Val.(domain.Facets), nil
	}
}

// RefreshFacets recomputes and stores the facets for one line ("" for the whole catalog).
func (s *QueryService) RefreshFacets(ctx context.Context, lineID string) error {
	fc, err := s.computeFacets(ctx, lineID)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, facetsKey(lineID), fc, s.ttlSeconds())
}

func (s *QueryService) computeFacets(ctx context.Context, lineID string) (domain.Facets, error) {
	var fc domain.Facets
	g, gctx := errgroup.WithContext(ctx)

	options := func(dst *[]domain.FacetOption, name string, fn func(context.Context, string) ([]domain.FacetOption, error)) {
		g.Go(func() error {
			opts, err := fn(gctx, lineID)
			if err != nil {
				return fmt.Errorf("facet %s: %w", name, err)
			}
			if opts == nil {
				opts = []domain.FacetOption{}
			}
			*dst = opts
			return nil
		})
	}
	options(&fc.Lines, "lines", s.repo.FacetLines)
	options(&fc.Ships, "ships", s.repo.FacetShips)
	options(&fc.Regions, "regions", s.repo.FacetRegions)
	options(&fc.EmbarkPorts, "embark_ports", s.repo.FacetEmbarkPorts)
	options(&fc.DisembarkPorts, "disembark_ports", s.repo.FacetDisembarkPorts)

	g.Go(func() error {
		ports, err := s.repo.FacetPortsOfCall(gctx, lineID)
		if err != nil {
			return fmt.Errorf("facet ports_of_call: %w", err)
		}
		if ports == nil {
			ports = []domain.PortFacetOption{}
		}
		fc.PortsOfCall = ports
		return nil
	})
	g.Go(func() error {
		r, err := s.repo.CatalogRanges(gctx)
		if err != nil {
			return fmt.Errorf("facet ranges: %w", err)
		}
		fc.Ranges = r
		return nil
	})

	if err := g.Wait(); err != nil {
		return domain.Facets{}, err
	}
	return fc, nil
}

/********** ancillary **********/

func (s *QueryService) ShipImages(ctx context.Context, shipID string, page, pageSize int) (domain.ShipImagesPage, error) {
	if err := s.mustExist(ctx, "ship", shipID, s.repo.ShipExists); err != nil {
		return domain.ShipImagesPage{}, err
	}
	pg := domain.NewPageRequest(page, pageSize, domain.DefaultShipImagesPageSize, domain.MaxShipImagesPageSize)
	items, total, err := s.repo.ListShipImages(ctx, shipID, pg)
	if err != nil {
		return domain.ShipImagesPage{}, fmt.Errorf("ship images: %w", err)
	}
	if items == nil {
		items = []domain.ShipImage{}
	}
	return domain.ShipImagesPage{Items: items, Pagination: pg.Paginate(total)}, nil
}

func (s *QueryService) ShipDecks(ctx context.Context, shipID string) ([]domain.ShipDeck, error) {
	if err := s.mustExist(ctx, "ship", shipID, s.repo.ShipExists); err != nil {
		return nil, err
	}
	recs, err := s.repo.ListShipDecks(ctx, shipID)
	if err != nil {
		return nil, fmt.Errorf("ship decks: %w", err)
	}
	out := make([]domain.ShipDeck, 0, len(recs))
	for _, r := range recs {
		out = append(out, domain.ShipDeck{
			ID:             r.ID,
			Name:           r.Name,
			DeckNumber:     r.DeckNumber,
			ImageURL:       r.ImageURL,
			DisplayOrder:   r.DisplayOrder,
			CabinLocations: cabinLocations(r.ID, r.Meta),
		})
	}
	return out, nil
}

// Alternates keeps rows whose sailing was never imported; their Sailing is nil.
func (s *QueryService) Alternates(ctx context.Context, sailingID string) ([]domain.AlternateSailing, error) {
	if err := s.mustExist(ctx, "sailing", sailingID, s.repo.SailingExists); err != nil {
		return nil, err
	}
	alts, err := s.repo.ListAlternates(ctx, sailingID)
	if err != nil {
		return nil, fmt.Errorf("alternates: %w", err)
	}
	if alts == nil {
		return []domain.AlternateSailing{}, nil
	}
	now := s.now()
	for i := range alts {
		if sl := alts[i].Sailing; sl != nil {
			sl.PricesUpdating = domain.IsStale(sl.LastSyncedAt, now)
		}
	}
	return alts, nil
}

func (s *QueryService) CabinImages(ctx context.Context, cabinTypeID string) ([]domain.CabinImage, error) {
	if err := s.mustExist(ctx, "cabin_type", cabinTypeID, s.repo.CabinTypeExists); err != nil {
		return nil, err
	}
	imgs, err := s.repo.ListCabinImages(ctx, cabinTypeID)
	if err != nil {
		return nil, fmt.Errorf("cabin images: %w", err)
	}
	if imgs == nil {
		imgs = []domain.CabinImage{}
	}
	return imgs, nil
}

func (s *QueryService) mustExist(ctx context.Context, resource, id string, exists func(context.Context, string) (bool, error)) error {
	ok, err := exists(ctx, id)
	if err != nil {
		return fmt.Errorf("%s lookup: %w", resource, err)
	}
	if !ok {
		return domain.NewNotFound(resource, id)
	}
	return nil
}
