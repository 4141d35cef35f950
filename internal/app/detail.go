package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"cruise_catalog/internal/domain"
)

const unknownPort = "Unknown"

func detailKey(id string) string { return "sailing:" + id }

// Detail serves the merged sailing record. Staleness is recomputed on every read,
// cached copies included.
func (s *QueryService) Detail(ctx context.Context, id string) (domain.SailingDetail, error) {
	key := detailKey(id)
	var d domain.SailingDetail
	if ok, _ := s.cache.Get(ctx, key, &d); !ok {
		var err error
		if d, err = s.aggregate(ctx, id); err != nil {
			return domain.SailingDetail{}, err
		}
		if err := s.cache.Set(ctx, key, d, s.ttlSeconds()); err != nil {
			log.Debug().Err(err).Str("key", key).Msg("cache set failed")
		}
	}
	d.PricesUpdating = domain.IsStale(d.LastSyncedAt, s.now())
	return d, nil
}

// RefreshDetail rebuilds and stores one sailing's detail record.
func (s *QueryService) RefreshDetail(ctx context.Context, id string) error {
	d, err := s.aggregate(ctx, id)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, detailKey(id), d, s.ttlSeconds())
}

func (s *QueryService) aggregate(ctx context.Context, id string) (domain.SailingDetail, error) {
	rec, err := s.repo.GetSailing(ctx, id)
	if err != nil {
		return domain.SailingDetail{}, err
	}

	var (
		embark, disembark *domain.PortView
		regions           []domain.RegionView
		stops             []domain.StopRecord
		prices            []domain.CabinPrice
	)

	g, gctx := errgroup.WithContext(ctx)
	if rec.EmbarkPortID != nil {
		g.Go(func() (err error) {
			embark, err = s.port(gctx, *rec.EmbarkPortID)
			return err
		})
	}
	if rec.DisembarkPortID != nil {
		g.Go(func() (err error) {
			disembark, err = s.port(gctx, *rec.DisembarkPortID)
			return err
		})
	}
	g.Go(func() (err error) {
		if regions, err = s.repo.ListSailingRegions(gctx, id); err != nil {
			return fmt.Errorf("regions: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if stops, err = s.repo.ListStops(gctx, id); err != nil {
			return fmt.Errorf("itinerary: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if prices, err = s.repo.ListCabinPrices(gctx, id); err != nil {
			return fmt.Errorf("cabin prices: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.SailingDetail{}, fmt.Errorf("detail %s: %w", id, err)
	}

	if regions == nil {
		regions = []domain.RegionView{}
	}
	if prices == nil {
		prices = []domain.CabinPrice{}
	}

	return domain.SailingDetail{
		ID:                 rec.ID,
		Provider:           rec.Provider,
		ProviderIdentifier: rec.ProviderIdentifier,
		Name:               rec.Name,
		SailDate:           rec.SailDate,
		EndDate:            rec.EndDate,
		Nights:             rec.Nights,
		Ship:               shipView(rec),
		Line:               lineView(rec),
		EmbarkPort:         embark,
		EmbarkPortName:     portName(embark, rec.EmbarkPortName),
		DisembarkPort:      disembark,
		DisembarkPortName:  portName(disembark, rec.DisembarkPortName),
		Regions:            regions,
		Itinerary:          itinerary(stops),
		CabinPrices:        prices,
		Prices:             rec.Prices,
		Market:             rec.Market,
		NoFly:              rec.NoFly,
		DepartUK:           rec.DepartUK,
		LastSyncedAt:       rec.LastSyncedAt,
	}, nil
}

// port resolves a canonical port; a dangling id is not an error.
func (s *QueryService) port(ctx context.Context, id string) (*domain.PortView, error) {
	p, err := s.repo.GetPort(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("port %s: %w", id, err)
	}
	return portView(p.ID, p.Name, p.Meta), nil
}

// portName: canonical name, then the sailing's denormalized name, then Unknown.
func portName(p *domain.PortView, denormalized *string) string {
	if p != nil && p.Name != "" {
		return p.Name
	}
	if n := strings.TrimSpace(deref(denormalized)); n != "" {
		return n
	}
	return unknownPort
}

func itinerary(stops []domain.StopRecord) []domain.StopView {
	out := make([]domain.StopView, 0, len(stops))
	for _, st := range stops {
		name := strings.TrimSpace(deref(st.PortName))
		v := domain.StopView{
			SequenceOrder: st.SequenceOrder,
			DayNumber:     st.DayNumber,
			IsSeaDay:      st.IsSeaDay,
			PortName:      name,
			ArrivalTime:   st.ArrivalTime,
			DepartureTime: st.DepartureTime,
		}
		if st.PortID != nil {
			v.Port = portView(*st.PortID, name, st.PortMeta)
		}
		if v.PortName == "" && !st.IsSeaDay {
			v.PortName = unknownPort
		}
		out = append(out, v)
	}
	return out
}
